// backend-mock sirve la API admin de referencia que consume la consola
// (login, permission-info, diccionarios y CRUD de puestos).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/adminconsole/internal/backend"
	"github.com/dropDatabas3/adminconsole/internal/backend/password"
	"github.com/dropDatabas3/adminconsole/internal/backend/store"
	"github.com/dropDatabas3/adminconsole/internal/backend/tokens"
	"github.com/dropDatabas3/adminconsole/internal/config"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("CONSOLE_CONFIG"), "ruta al YAML de configuración")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "backend-mock"})
	log := logger.L()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("backend-mock failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.L()

	seed, err := store.DefaultSeed(password.Default)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	var st store.Store
	switch cfg.Mock.Driver {
	case "postgres", "pg":
		pg, err := store.NewPG(ctx, cfg.Mock.DSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if cfg.Mock.Seed {
			if err := pg.ApplySeed(ctx, seed); err != nil {
				pg.Close()
				return fmt.Errorf("apply seed: %w", err)
			}
		}
		st = pg
	default:
		st = store.NewMemory(seed)
	}
	defer st.Close()

	keys, err := tokens.NewEd25519(fmt.Sprintf("mock-%d", time.Now().Unix()))
	if err != nil {
		return err
	}
	iss := tokens.NewIssuer(cfg.Mock.Issuer, keys, config.Duration(cfg.Mock.AccessTTL, 30*time.Minute))

	srv, err := backend.New(backend.Config{
		Store:      st,
		Issuer:     iss,
		RefreshTTL: config.Duration(cfg.Mock.RefreshTTL, 30*24*time.Hour),
		Logger:     log,
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Mock.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("backend-mock listening", logger.String("addr", cfg.Mock.Addr), logger.String("driver", cfg.Mock.Driver))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancel()
	return httpSrv.Shutdown(sctx)
}
