package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/lol-draft-series/internal/config"
	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/httpapi"
	"github.com/DoyleJ11/lol-draft-series/internal/hub"
	"github.com/DoyleJ11/lol-draft-series/internal/janitor"
	"github.com/DoyleJ11/lol-draft-series/internal/lobby"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var origins []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, log, origins)
		},
	}
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "Allowed websocket origin patterns, e.g. localhost:*")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger, origins []string) (err error) {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(st))

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	eng := engine.New(cat, st, cfg.Timer)
	h := hub.NewHub(ctx, lobby.Deps{Engine: eng, Store: st, Logger: log})
	jan := janitor.New(st, h, cfg.SessionMaxAge, log.Named("janitor"))

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Engine:         eng,
			Store:          st,
			Hub:            h,
			Logger:         log,
			OriginPatterns: origins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", string(cfg.Store)),
			zap.Int("champions", cat.Len()))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return jan.Run(gctx, cfg.CleanupInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return multierr.Combine(srv.Shutdown(shutdownCtx), h.Shutdown(shutdownCtx))
	})
	return g.Wait()
}
