/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// discordbot is the MontrealBot gateway process: it connects to
// Discord, dispatches chat commands, and runs the live tournament
// result trackers.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ConfusedSammie/MontrealBot/internal/config"
	"github.com/ConfusedSammie/MontrealBot/slippi"
	"github.com/ConfusedSammie/MontrealBot/startgg"
	"github.com/ConfusedSammie/MontrealBot/store"
	"github.com/ConfusedSammie/MontrealBot/tracker"
)

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("discordbot: unable to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("discordbot: unable to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		sugar.Fatalw("unable to initialize discord client", "error", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	slippiClient := slippi.NewClient(cfg.SlippiURL)
	startggClient := startgg.NewClient(ctx, cfg.StartggURL,
		cfg.StartggBearer, cfg.CacheBucket, logger)

	tags := store.NewTagStore(cfg.DataDir)
	events := store.NewEventStore(cfg.DataDir)
	snapshots := store.NewSnapshotStore(cfg.DataDir)

	registry := tracker.NewRegistry(startggClient, embedSender{session},
		cfg.PollInterval(), logger)
	defer registry.StopAll()

	b := newBot(ctx, cfg, logger, session, slippiClient, startggClient,
		tags, events, snapshots, registry)
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			sugar.Infow("serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				sugar.Errorw("metrics server failed", "error", err)
			}
		}()
	}

	if err := session.Open(); err != nil {
		sugar.Fatalw("unable to connect to discord", "error", err)
	}
	defer session.Close()

	sugar.Infow("discordbot running", "channel", cfg.AllowedChannelID)
	<-ctx.Done()
	sugar.Infow("discordbot shutting down")
}
