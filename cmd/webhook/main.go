// The webhook binary serves the TradingView relay and raw-text webhook
// endpoints over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tradeoracle/signal-bot/cmd/common"
	"github.com/tradeoracle/signal-bot/internal/config"
	"github.com/tradeoracle/signal-bot/internal/format"
	"github.com/tradeoracle/signal-bot/internal/journal"
	"github.com/tradeoracle/signal-bot/internal/logger"
	"github.com/tradeoracle/signal-bot/internal/monitoring"
	"github.com/tradeoracle/signal-bot/internal/notifications"
	"github.com/tradeoracle/signal-bot/internal/server"
)

func main() {
	envFile := flag.String("env", ".env", "Environment file path")
	port := flag.Int("port", 0, "Listen port (overrides PORT)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		common.PrintVersion("signal-webhook")
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Webhook.Port = *port
	}

	logger.Init(cfg.LogDir, cfg.Debug)
	log := logger.Component("main")
	log.Info("starting webhook server", zap.String("version", common.GetFullVersion()))

	table, err := common.LoadRules(cfg.RulesPath, log)
	if err != nil {
		log.Fatal("could not load rules", zap.Error(err))
	}
	monitoring.SetRuleTableSize(len(table.Assets()), table.RuleCount())

	opts := server.Options{
		Pipeline:           common.NewPipeline(table),
		Formatter:          format.New(format.StylePremium, cfg.Signature),
		Journal:            journal.New(cfg.JournalPath),
		Secret:             cfg.Webhook.Secret,
		Signature:          cfg.Signature,
		TelegramConfigured: cfg.TelegramConfigured(),
		ChannelConfigured:  cfg.ChannelConfigured(),
	}
	if notifier := notifications.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChannelID); notifier.Configured() {
		opts.Telegram = notifier
	} else {
		log.Warn("telegram not configured, alerts will be accepted but not relayed")
	}

	srv := server.New(opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, cfg.Webhook.Port); err != nil {
		log.Fatal("webhook server failed", zap.Error(err))
	}
	log.Info("webhook server stopped cleanly")
}
