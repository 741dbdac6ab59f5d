package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/CosmWasm/wasmsim/app"
	"github.com/CosmWasm/wasmsim/server"
	"github.com/CosmWasm/wasmsim/x/wasm/devvm"
)

const flagListenAddr = "laddr"

// newServeCmd starts a REST API over a fresh simulator running the scripted
// dev engine.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a simulator chain over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			cfg := app.DefaultConfig()
			cfg.ChainID = viper.GetString(flagChainID)
			cfg.Bech32Prefix = viper.GetString(flagBech32Prefix)

			a := app.New(cfg, devvm.Factory, app.WithLogger(logger))
			srv := server.New(a, logger)

			laddr := viper.GetString(flagListenAddr)
			logger.Info("serving simulator API",
				zap.String("laddr", laddr),
				zap.String("chain_id", cfg.ChainID),
			)
			return http.ListenAndServe(laddr, srv.Router())
		},
	}
	cmd.Flags().String(flagListenAddr, "localhost:1317", "listen address")
	return cmd
}
