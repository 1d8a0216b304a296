// Command server runs the TalkShalk HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talkshalk/internal/bootstrap"
	"talkshalk/internal/config"
	"talkshalk/internal/observability"
	"talkshalk/internal/server"
)

func main() {
	seedDemo := flag.Bool("seed-demo", false, "Seed demo content when the database is empty")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.Logger = observability.NewLogger(cfg.Env)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "talkshalk-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedDemo: *seedDemo})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Blobs)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	app := srv.NewApp()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		observability.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := srv.Shutdown(ctx); err != nil {
			observability.Logger.Error("server resource shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			observability.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	observability.Logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
