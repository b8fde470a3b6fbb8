package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "net/http/pprof"

	"github.com/NoahBjongHoKim/trafficsim/internal/config"
	"github.com/NoahBjongHoKim/trafficsim/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	log := newLogger(settings.LogLevel, settings.LogFormat)

	if settings.MetricsAddr != "" {
		go func() {
			listener, err := net.Listen("tcp", settings.MetricsAddr)
			if err != nil {
				log.Error("failed to start metrics server listener", "error", err)
				return
			}
			log.Info("prometheus metrics server listening", "address", listener.Addr().String())
			http.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, nil); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	err = pipeline.Run(ctx, pipeline.Config{
		Settings: settings,
		Log:      log,
		Registry: prometheus.DefaultRegisterer,
	})
	log.Info("pipeline run finished", "duration", time.Since(start), "error", err)
	return err
}

func newLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel}))
}
