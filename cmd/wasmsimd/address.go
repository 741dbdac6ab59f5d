package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	wasmkeeper "github.com/CosmWasm/wasmsim/x/wasm/keeper"
)

// newAddressCmd derives the deterministic contract address for a code id and
// instance id pair.
func newAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address [code-id] [instance-id]",
		Short: "Derive the deterministic contract address for (code-id, instance-id)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			codeID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("code-id: %w", err)
			}
			instanceID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("instance-id: %w", err)
			}
			addr, err := wasmkeeper.EncodeBech32(
				viper.GetString(flagBech32Prefix),
				wasmkeeper.BuildContractAddressClassic(codeID, instanceID),
			)
			if err != nil {
				return err
			}
			cmd.Println(addr)
			return nil
		},
	}
}
