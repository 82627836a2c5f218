package main

import (
	"log/slog"
	"os"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/observability"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(observability.NewLogger(cfg.Env))

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
