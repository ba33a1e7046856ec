package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tinoosan/bankcore/internal/config"
	"github.com/tinoosan/bankcore/internal/events"
	kafkapub "github.com/tinoosan/bankcore/internal/events/kafka"
	httpapi "github.com/tinoosan/bankcore/internal/httpapi/v1"
	"github.com/tinoosan/bankcore/internal/service/ledger"
	pgstore "github.com/tinoosan/bankcore/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	// Event publisher: kafka when brokers are configured, no-op otherwise.
	var pub events.Publisher = events.Noop{}
	var closePub func()
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafkapub.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		pub = kp
		closePub = func() {
			if err := kp.Close(); err != nil {
				logger.Error("kafka close error", "err", err)
			}
		}
		logger.Info("event publisher: kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("event publisher: noop")
	}

	svc := ledger.New(logger, pub, time.Now)

	// Snapshot backend: postgres when DATABASE_URL is provided, the CSV
	// file pair otherwise.
	var snap ledger.SnapshotStore
	var closeStore func()
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		pg, err := pgstore.Open(ctx, dsn, logger)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		snap = pg
		closeStore = pg.Close
		logger.Info("snapshot backend: postgres")
	} else {
		logger.Info("snapshot backend: csv files",
			"accounts_file", cfg.AccountsFile, "transactions_file", cfg.TransactionsFile)
	}

	if cfg.LoadOnStart {
		var (
			loaded bool
			err    error
		)
		if snap != nil {
			loaded, err = svc.LoadSnapshot(ctx, snap)
		} else {
			loaded, err = svc.LoadFromFiles(cfg.AccountsFile, cfg.TransactionsFile)
		}
		if err != nil {
			logger.Error("initial load failed", "err", err)
			os.Exit(1)
		}
		if !loaded {
			logger.Info("no existing ledger data loaded")
		}
	}

	srvMux := httpapi.New(svc, snap, cfg.AccountsFile, cfg.TransactionsFile, logger).Handler()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srvMux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}

	// Persist the ledger before teardown so a restart picks up where we
	// left off.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var err error
	if snap != nil {
		err = svc.SaveSnapshot(saveCtx, snap)
	} else {
		err = svc.SaveToFiles(cfg.AccountsFile, cfg.TransactionsFile)
	}
	if err != nil {
		logger.Error("final save failed", "err", err)
	}
	svc.Teardown()
	if closeStore != nil {
		closeStore()
	}
	if closePub != nil {
		closePub()
	}
}

// parseLogLevel maps config values to slog.Leveler.
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "ERR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if strings.ToLower(cfg.LogFormat) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
