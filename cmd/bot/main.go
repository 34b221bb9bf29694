// The bot binary runs the interactive Telegram bot with the monitoring
// endpoints on the side.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tradeoracle/signal-bot/cmd/common"
	"github.com/tradeoracle/signal-bot/internal/config"
	"github.com/tradeoracle/signal-bot/internal/format"
	"github.com/tradeoracle/signal-bot/internal/journal"
	"github.com/tradeoracle/signal-bot/internal/logger"
	"github.com/tradeoracle/signal-bot/internal/monitoring"
	"github.com/tradeoracle/signal-bot/internal/notifications"
	"github.com/tradeoracle/signal-bot/internal/telegram"
)

const shutdownGrace = 10 * time.Second

func main() {
	envFile := flag.String("env", ".env", "Environment file path")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		common.PrintVersion("signal-bot")
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogDir, cfg.Debug)
	log := logger.Component("main")
	log.Info("starting signal bot", zap.String("version", common.GetFullVersion()))

	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal("telegram credentials missing", zap.Error(err))
	}

	table, err := common.LoadRules(cfg.RulesPath, log)
	if err != nil {
		log.Fatal("could not load rules", zap.Error(err))
	}
	log.Info("rules loaded", zap.Strings("assets", table.Assets()))
	monitoring.SetRuleTableSize(len(table.Assets()), table.RuleCount())

	health := monitoring.NewHealthChecker()

	var hook *notifications.WebhookNotifier
	if wh := notifications.NewWebhookNotifier(cfg.Webhook.URL); wh.Configured() {
		hook = wh
		log.Info("webhook forwarding enabled", zap.String("url", cfg.Webhook.URL))
	}

	opts := telegram.Options{
		Pipeline:  common.NewPipeline(table),
		Formatter: format.New(cfg.MessageStyle, cfg.Signature),
		Journal:   journal.New(cfg.JournalPath),
		ChannelID: cfg.Telegram.ChannelID,
		Health:    health,
	}
	if hook != nil {
		opts.Webhook = hook
	}

	bot, err := telegram.New(cfg.Telegram.BotToken, opts)
	if err != nil {
		log.Fatal("could not connect to telegram", zap.Error(err))
	}

	go serveMonitoring(cfg.MetricsPort, health, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigChan:
		log.Info("shutdown signal received", zap.String("signal", s.String()))
		cancel()
		select {
		case <-done:
		case <-time.After(shutdownGrace):
			log.Warn("bot did not stop within grace period")
		}
	case err := <-done:
		if err != nil {
			log.Fatal("bot stopped unexpectedly", zap.Error(err))
		}
	}

	log.Info("bot stopped cleanly")
}

// serveMonitoring exposes the health check and Prometheus metrics on a
// side port, away from the public webhook surface.
func serveMonitoring(port int, health *monitoring.HealthChecker, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/health", health)
	mux.Handle("/metrics", monitoring.NewMetricsHandler())

	log.Info("monitoring server listening", zap.Int("port", port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		log.Error("monitoring server error", zap.Error(err))
	}
}
