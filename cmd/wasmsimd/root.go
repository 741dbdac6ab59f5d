package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	flagChainID      = "chain-id"
	flagBech32Prefix = "bech32-prefix"
	flagLogLevel     = "log-level"
)

// NewRootCmd builds the wasmsimd command tree. Flags can also be set through
// the environment with the WASMSIM_ prefix.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wasmsimd",
		Short: "In-process CosmWasm execution simulator",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			viper.SetEnvPrefix("WASMSIM")
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			viper.AutomaticEnv()
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.InheritedFlags())
		},
	}
	rootCmd.PersistentFlags().String(flagChainID, "wasmsim-1", "chain id reported to contracts")
	rootCmd.PersistentFlags().String(flagBech32Prefix, "cosmwasm", "bech32 prefix for contract addresses")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level: debug|info|warn|error")

	rootCmd.AddCommand(
		newServeCmd(),
		newAddressCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	level, err := zap.ParseAtomicLevel(viper.GetString(flagLogLevel))
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	return cfg.Build()
}
