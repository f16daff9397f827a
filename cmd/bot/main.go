package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/discord-research-agent/internal/adapters/discord"
	"github.com/kirillkom/discord-research-agent/internal/bootstrap"
	"github.com/kirillkom/discord-research-agent/internal/config"
	"github.com/kirillkom/discord-research-agent/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN environment variable not set")
	}

	logger := logging.NewJSONLogger("bot", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, logger, "bot")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	bot, err := discord.New(cfg.DiscordToken, app.Runner, app.Transcriber, discord.Options{
		AllowedChannelIDs: cfg.AllowedChannelIDs,
		RatePerMinute:     cfg.ChannelRatePerMinute,
	}, logger)
	if err != nil {
		log.Fatalf("discord error: %v", err)
	}
	if err := bot.Open(); err != nil {
		log.Fatalf("discord gateway error: %v", err)
	}
	defer bot.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: app.Metrics.Handler(),
	}
	go func() {
		logger.Info("metrics_listening", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	logger.Info("bot_ready",
		"ollama_url", cfg.OllamaURL,
		"model", cfg.OllamaModel,
		"allowed_channels", len(cfg.AllowedChannelIDs),
	)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics_shutdown_error", "error", err)
	}
}
