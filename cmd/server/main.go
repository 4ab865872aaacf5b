package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lol-draft-series/internal/config"
	"github.com/DoyleJ11/lol-draft-series/internal/logging"
)

var (
	cfg config.Config
	log *zap.Logger
)

func newRootCmd() *cobra.Command {
	var (
		addr  string
		store string
	)
	rootCmd := &cobra.Command{
		Use:   "draft-server",
		Short: "Fearless draft series server",
		Long: `draft-server runs ban/pick drafts for best-of series over HTTP and
websockets, enforcing fearless champion exclusion across games.

Settings come from the environment (and an optional .env file); flags
override them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				loaded.HTTPAddr = addr
			}
			if store != "" {
				loaded.Store = config.StoreKind(store)
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded

			log, err = logging.New(cfg.LogLevel, cfg.LogFormat)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "HTTP listen address (env: DRAFT_HTTP_ADDR)")
	rootCmd.PersistentFlags().StringVar(&store, "store", "", "Store backend: memory, postgres, sqlite, redis (env: DRAFT_STORE)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCleanupCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
