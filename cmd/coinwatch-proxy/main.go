// coinwatch-proxy serves the quote endpoints the dashboard client polls.
// It forwards requests to the market-data provider with the API key
// attached server-side.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinwatch/internal/config"
	"coinwatch/internal/proxy"
	"coinwatch/internal/util"
)

func main() {
	cfgPath := "config/coinwatch.yaml"
	if p := os.Getenv("COINWATCH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) && os.Getenv("COINWATCH_CONFIG") == "" {
			cfg = config.Default()
		} else {
			log.Fatalf("loading config: %v", err)
		}
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	// Credentials are checked per request, not here: the proxy starts fine
	// without a key and serves errors until one is configured.
	srv := proxy.NewServer(cfg.Upstream, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("proxy listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down proxy")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
