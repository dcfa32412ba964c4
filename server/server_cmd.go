package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/vheiberg/aclstore"
	"github.com/vheiberg/aclstore/eth"
	pebblestorage "github.com/vheiberg/aclstore/storage/pebble"
)

func NewServerCmd(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server [flags]",
		Short: "Serve permission checks over HTTP",
	}

	var (
		port        int
		backend     string
		pebbleDir   string
		rpcURL      string
		registryHex string
	)

	flags := cmd.Flags()
	flags.IntVar(&port, "port", 4000, "port the server is listening on")
	flags.StringVar(&backend, "backend", "memory", "storage backend: memory, pebble or onchain")
	flags.StringVar(&pebbleDir, "pebble-dir", "./pebble", "directory of the pebble denial list")
	flags.StringVar(&rpcURL, "rpc", "http://localhost:8545", "JSON-RPC endpoint of the chain node")
	flags.StringVar(&registryHex, "registry", "", "address of the name registry contract")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		storage, err := newStorage(ctx, backend, pebbleDir, rpcURL, registryHex)
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/v1/check", NewCheckHandler(log.WithGroup("handler"), storage))

		server := http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: h2c.NewHandler(mux, &http2.Server{}),
			BaseContext: func(l net.Listener) context.Context {
				return ctx
			},
		}

		// Start HTTP server at :4000.
		log.Info(fmt.Sprintf("started server on 0.0.0.0:%d, http://localhost:%d", port, port))
		go func() {
			err := server.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("server gracefully closed")
			} else if err != nil {
				log.Error("error listening on server", slog.Any("error", err))
			}
		}()

		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer func() {
			cancel()
		}()

		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error("error on server shutdown", slog.Any("error", err))
			return err
		}
		return nil
	}

	return cmd
}

func newStorage(ctx context.Context, backend, pebbleDir, rpcURL, registryHex string) (aclstore.Storage, error) {
	switch backend {
	case "memory":
		return aclstore.NewMemoryStorage(), nil
	case "pebble":
		return pebblestorage.NewPebbleStorage(pebbleDir)
	case "onchain":
		if !common.IsHexAddress(registryHex) {
			return nil, fmt.Errorf("invalid registry address: %q", registryHex)
		}
		client, err := eth.Dial(ctx, rpcURL, common.HexToAddress(registryHex))
		if err != nil {
			return nil, err
		}
		return aclstore.NewOnchainStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}
