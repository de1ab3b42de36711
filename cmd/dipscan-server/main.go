// cmd/dipscan-server/main.go
//
// Entry point for the analysis service. Serves /api/analyze and
// /api/status over the market source until interrupted.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dipscan/internal/config"
	"dipscan/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to dipscan.yaml (defaults to ./dipscan.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dipscan-server: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "dipscan-server ", log.LstdFlags)

	source := server.NewCoinGeckoSource(cfg.Server.MarketAPIBaseURL,
		server.WithSourcePaging(cfg.Server.MarketPages, cfg.Server.MarketPerPage),
		server.WithSourceLogger(logger),
	)
	srv := server.NewServer(server.SettingsFromConfig(cfg), source,
		server.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Fatalf("start: %v", err)
	}

	<-ctx.Done()
	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
