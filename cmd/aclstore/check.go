package main

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/vheiberg/aclstore"
	"github.com/vheiberg/aclstore/eth"
)

func newCheckCmd(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] public document",
		Short: "Run a single permission check against the on-chain registry",
		Args:  cobra.ExactArgs(2),
	}

	var (
		rpcURL      string
		registryHex string
	)

	flags := cmd.Flags()
	flags.StringVar(&rpcURL, "rpc", "http://localhost:8545", "JSON-RPC endpoint of the chain node")
	flags.StringVar(&registryHex, "registry", "", "address of the name registry contract")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		public, err := aclstore.PublicFromHex(args[0])
		if err != nil {
			return err
		}
		document, err := aclstore.DocumentAddressFromHex(args[1])
		if err != nil {
			return err
		}
		if !common.IsHexAddress(registryHex) {
			return fmt.Errorf("invalid registry address: %q", registryHex)
		}

		client, err := eth.Dial(ctx, rpcURL, common.HexToAddress(registryHex))
		if err != nil {
			return err
		}
		defer client.Close()

		storage := aclstore.NewOnchainStorage(client)
		allowed, err := storage.Check(ctx, public, document)
		if err != nil {
			return err
		}
		log.Info("permission check finished",
			slog.String("public", public.String()),
			slog.String("document", document.String()),
			slog.Bool("allowed", allowed))
		if allowed {
			fmt.Fprintln(cmd.OutOrStdout(), "allowed")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "denied")
		}
		return nil
	}

	return cmd
}
