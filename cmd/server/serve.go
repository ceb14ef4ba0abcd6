package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DoyleJ11/seat-roulette/internal/config"
	"github.com/DoyleJ11/seat-roulette/internal/engine"
	"github.com/DoyleJ11/seat-roulette/internal/httpapi"
	"github.com/DoyleJ11/seat-roulette/internal/roster"
	"github.com/DoyleJ11/seat-roulette/internal/session"
	"github.com/DoyleJ11/seat-roulette/internal/store"
	"github.com/DoyleJ11/seat-roulette/internal/store/kv"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// withSync flushes the logger. Sync fails on stdout/stderr for some
// terminals, so its error is only reported alongside a real one.
func withSync(err error, sync func() error) error {
	syncErr := sync()
	if err != nil {
		return multierr.Append(err, syncErr)
	}
	return nil
}

func loadRoster(cfg *config.Config) (*roster.Roster, error) {
	if cfg.RosterFile != "" {
		return roster.LoadFile(cfg.RosterFile)
	}
	return roster.Sequential(cfg.RosterSize, cfg.Threshold)
}

func serve(ctx context.Context, cfg *config.Config) (err error) {
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() {
		err = withSync(err, log.Sync)
	}()

	r, err := loadRoster(cfg)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	backend, err := kv.Open(ctx, cfg.StoreOptions(), log.Named("kv"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		err = multierr.Append(err, backend.Close())
	}()

	alloc, err := engine.NewAllocator(r, cfg.Layout(), nil)
	if err != nil {
		return err
	}

	sess, err := session.New(ctx, session.Config{
		Allocator: alloc,
		Store:     store.New(backend, cfg.StoreKey, log.Named("store")),
		Spin:      cfg.Spin(),
		Log:       log.Named("session"),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.SetupRoutes(sess, log.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.Int("members", r.Len()),
			zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 5*time.Second)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		// Resolves and saves any draw still spinning.
		sess.Close()
		return err
	})

	return g.Wait()
}
