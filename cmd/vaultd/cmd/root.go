package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/openalpha/yield-vault/api"
)

var (
	flagHost          string
	flagPort          int
	flagOwner         string
	flagBlockInterval time.Duration
	flagAccrualBps    int64
	flagNoFaucet      bool
)

// NewRootCmd creates the root command for vaultd
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vaultd",
		Short: "Yield vault daemon",
		Long: `vaultd runs a standalone yield vault node: pooled single-asset custody
with share-based accounting, a simulated yield strategy, and a REST plus
WebSocket API surface.`,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the vault node and API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	serveCmd.Flags().StringVar(&flagHost, "host", "0.0.0.0", "API listen host")
	serveCmd.Flags().IntVar(&flagPort, "port", 8080, "API listen port")
	serveCmd.Flags().StringVar(&flagOwner, "owner", "", "vault owner address (default: built-in dev owner)")
	serveCmd.Flags().DurationVar(&flagBlockInterval, "block-interval", 2*time.Second, "simulated block interval")
	serveCmd.Flags().Int64Var(&flagAccrualBps, "accrual-bps", 5, "per-block strategy yield in basis points")
	serveCmd.Flags().BoolVar(&flagNoFaucet, "no-faucet", false, "disable the dev faucet endpoint")

	return serveCmd
}

func runServe() error {
	logger := log.NewLogger(os.Stderr)

	config := api.DefaultConfig()
	config.Host = flagHost
	config.Port = flagPort
	config.EnableFaucet = !flagNoFaucet
	config.Node.BlockInterval = flagBlockInterval
	config.Node.AccrualBps = flagAccrualBps
	if flagOwner != "" {
		config.Node.Owner = flagOwner
	}

	server, err := api.NewServer(config, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Stop(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vaultd version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("vaultd v1.0.0")
		},
	}
}
