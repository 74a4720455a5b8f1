// Package main is the entry point for the lesson gateway server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edugate/config"
	"edugate/internal/app"
	"edugate/internal/logging"
	"edugate/internal/providers"
	"edugate/internal/providers/anthropic"
	"edugate/internal/providers/gemini"
	"edugate/internal/providers/google"
	"edugate/internal/providers/openai"
	"edugate/internal/providers/stability"
)

func main() {
	// Setup structured logging
	slog.SetDefault(logging.New(os.Stdout, logging.OptionsFromEnv()))

	slog.Info("starting edugate")

	// Load configuration
	result, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	application, err := app.New(ctx, app.Config{
		AppConfig: result,
		Factory:   newFactory(),
	})
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := application.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := application.Start(":" + result.Config.Server.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	// Start returns as soon as the listener closes; wait for the ledger flush.
	<-done
}

// newFactory registers every collaborator variant.
func newFactory() *providers.Factory {
	f := providers.NewFactory()

	f.Text.Add(openai.TextRegistration)
	f.Text.Add(anthropic.Registration)
	f.Text.Add(gemini.Registration)

	f.Speech.Add(google.SpeechRegistration)
	f.Speech.Add(openai.SpeechRegistration)

	f.Recognition.Add(google.RecognitionRegistration)
	f.Recognition.Add(openai.RecognitionRegistration)

	f.Image.Add(openai.ImageRegistration)
	f.Image.Add(stability.Registration)

	return f
}
