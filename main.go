package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"StockDesk/app/config"
	"StockDesk/app/database"
	"StockDesk/app/logger"
	"StockDesk/app/realtime"
	"StockDesk/app/remote"
	"StockDesk/app/store"
)

func main() {
	watch := flag.Bool("watch", false, "stay connected to the realtime change feed")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Logging.Level,
		Environment: cfg.Logging.Environment,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	defer log.Sync()

	backend, err := openBackend(cfg, log)
	if err != nil {
		log.Fatal("backend init failed", zap.Error(err))
	}

	s := store.New(backend, log)

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.LoadAll(loadCtx); err != nil {
		log.Fatal("initial load failed", zap.Error(err))
	}

	printDashboard(s)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		log.Info("metrics served", zap.String("addr", *metricsAddr))
	}

	if *watch && cfg.Realtime.URL != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub := realtime.NewSubscriber(cfg.Realtime.URL, s, log)
		if err := sub.Run(ctx); err != nil && err != context.Canceled {
			log.Error("change feed stopped", zap.Error(err))
		}
	}

	s.Clear()
}

func openBackend(cfg *config.AppConfig, log *zap.Logger) (remote.Backend, error) {
	switch cfg.Backend.Mode {
	case config.ModeLocal:
		return database.OpenSQLite(cfg.Backend.SQLitePath, cfg.UserID)
	case config.ModePostgres:
		return database.OpenPostgres(cfg.Backend.Postgres.DSN(), cfg.UserID)
	case config.ModeRest:
		return remote.NewRESTBackend(cfg.Backend.RestURL, cfg.Backend.ServiceKey, log), nil
	}
	return nil, fmt.Errorf("unknown backend mode %q", cfg.Backend.Mode)
}

func printDashboard(s *store.Store) {
	snapshot := struct {
		Dashboard any `json:"dashboard"`
		Top       any `json:"top_products"`
		Revenue   any `json:"revenue_7d"`
	}{
		Dashboard: s.Dashboard(time.Now()),
		Top:       s.TopProducts(5),
		Revenue:   s.RevenueSeries(time.Now(), 7),
	}
	out, _ := json.MarshalIndent(snapshot, "", "  ")
	fmt.Println(string(out))
}
