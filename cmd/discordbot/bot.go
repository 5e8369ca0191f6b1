/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ConfusedSammie/MontrealBot/internal/config"
	"github.com/ConfusedSammie/MontrealBot/slippi"
	"github.com/ConfusedSammie/MontrealBot/startgg"
	"github.com/ConfusedSammie/MontrealBot/store"
	"github.com/ConfusedSammie/MontrealBot/tracker"
)

// replyWindow is how long interactive prompts wait for the user's
// follow-up message.
const replyWindow = 15 * time.Second

type cmdHandler func(ctx context.Context, m *discordgo.MessageCreate)

type bot struct {
	cfg     *config.Config
	logger  *zap.SugaredLogger
	session *discordgo.Session

	// runCtx outlives individual commands; trackers started by
	// !results are tied to it.
	runCtx context.Context

	slippi    *slippi.Client
	startgg   *startgg.Client
	tags      *store.TagStore
	events    *store.EventStore
	snapshots *store.SnapshotStore
	registry  *tracker.Registry

	handlers map[string]cmdHandler

	pendingMtx sync.Mutex
	pending    map[string]*pendingReply
}

type pendingReply struct {
	match func(content string) bool
	ch    chan string
}

func newBot(runCtx context.Context, cfg *config.Config, logger *zap.Logger,
	session *discordgo.Session, slippiClient *slippi.Client,
	startggClient *startgg.Client, tags *store.TagStore,
	events *store.EventStore, snapshots *store.SnapshotStore,
	registry *tracker.Registry) *bot {

	b := &bot{
		cfg:       cfg,
		logger:    logger.Sugar(),
		session:   session,
		runCtx:    runCtx,
		slippi:    slippiClient,
		startgg:   startggClient,
		tags:      tags,
		events:    events,
		snapshots: snapshots,
		registry:  registry,
		pending:   make(map[string]*pendingReply),
	}
	b.handlers = map[string]cmdHandler{
		"!tag":         b.handleTag,
		"!predict":     b.handlePredict,
		"!leaderboard": b.handleLeaderboard,
		"!results":     b.handleResults,
		"!stopresults": b.handleStopResults,
		"!link":        b.handleLink,
		"!upsets":      b.handleUpsets,
		"!remove":      b.handleRemove,
		"!events":      b.handleEvents,
		"!addevent":    b.handleAddEvent,
		"!deleteevent": b.handleDeleteEvent,
		"!commands":    b.handleCommands,
	}

	return b
}

func (b *bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Infow("logged in", "user", r.User.String())
}

// onMessageCreate is the gateway entry point for all commands. Each
// invocation runs on its own goroutine, so handlers may block on
// interactive prompts.
func (b *bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	isAdmin := m.Author.ID == b.cfg.AdminUserID
	if m.ChannelID != b.cfg.AllowedChannelID && !isAdmin {
		return
	}

	// Interactive prompts get first claim on the author's messages.
	if b.deliverReply(m) {
		return
	}

	fields := strings.Fields(m.Content)
	if len(fields) == 0 {
		return
	}
	handler, ok := b.handlers[strings.ToLower(fields[0])]
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	handler(ctx, m)
}

func pendingKey(channelID, userID string) string {
	return channelID + ":" + userID
}

// deliverReply routes a message to a waiting prompt, if any. Messages
// that do not satisfy the prompt's filter fall through to normal
// dispatch.
func (b *bot) deliverReply(m *discordgo.MessageCreate) bool {
	key := pendingKey(m.ChannelID, m.Author.ID)

	b.pendingMtx.Lock()
	waiter, ok := b.pending[key]
	if !ok || !waiter.match(strings.TrimSpace(m.Content)) {
		b.pendingMtx.Unlock()
		return false
	}
	delete(b.pending, key)
	b.pendingMtx.Unlock()

	waiter.ch <- strings.TrimSpace(m.Content)
	return true
}

// awaitReply blocks until the user sends a message in the channel that
// satisfies match, or the reply window elapses.
func (b *bot) awaitReply(channelID, userID string,
	match func(content string) bool) (string, bool) {

	key := pendingKey(channelID, userID)
	waiter := &pendingReply{match: match, ch: make(chan string, 1)}

	b.pendingMtx.Lock()
	b.pending[key] = waiter
	b.pendingMtx.Unlock()

	select {
	case content := <-waiter.ch:
		return content, true
	case <-time.After(replyWindow):
		b.pendingMtx.Lock()
		delete(b.pending, key)
		b.pendingMtx.Unlock()
		// Drain a reply that raced the timeout.
		select {
		case content := <-waiter.ch:
			return content, true
		default:
			return "", false
		}
	}
}

// reply posts a plain text response to the command's channel.
func (b *bot) reply(m *discordgo.MessageCreate, content string) {
	_, err := b.session.ChannelMessageSendReply(m.ChannelID, content,
		m.Reference())
	if err != nil {
		b.logger.Warnw("unable to reply", "channel", m.ChannelID, "error", err)
	}
}

func (b *bot) sendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warnw("unable to send embed", "channel", channelID,
			"error", err)
	}
}

// embedSender adapts the Discord session to the tracker's Sender: live
// results go out as blue embeds.
type embedSender struct {
	session *discordgo.Session
}

func (s embedSender) Send(channelID, content string) error {
	_, err := s.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Color:       0x3498db,
		Description: content,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
	return err
}
