package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/adminconsole/internal/app"
	"github.com/dropDatabas3/adminconsole/internal/config"
)

func main() {
	// .env opcional (dev); en prod las variables vienen del entorno
	_ = godotenv.Load()

	cfgPath := flag.String("config", envOr("CONSOLE_CONFIG", ""), "ruta al YAML de configuración (env CONSOLE_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(cfg).Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
