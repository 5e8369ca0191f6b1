/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ConfusedSammie/MontrealBot/leaderboard"
	"github.com/ConfusedSammie/MontrealBot/slippi"
	"github.com/ConfusedSammie/MontrealBot/startgg"
	"github.com/ConfusedSammie/MontrealBot/store"
	"github.com/ConfusedSammie/MontrealBot/tracker"
)

var (
	eventURLRe   = regexp.MustCompile(`(?i)start\.gg/(tournament/[^/]+(?:/[^/]+)*/event/[^/\s]+)`)
	bracketURLRe = regexp.MustCompile(`brackets/\d+/(\d+)`)
	addEventRe   = regexp.MustCompile(`\[(.+?)\]\s*\|\s*(.+?)\s*\|\s*(.+?)\s*\|\s*(https?://\S+?)(?:\s*\|\s*(\d{4}-\d{2}-\d{2}))?$`)
)

// parseEventURL extracts the event slug from a start.gg event URL.
func parseEventURL(url string) (string, bool) {
	match := eventURLRe.FindStringSubmatch(url)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// parseBracketURL extracts the phase group id from a start.gg bracket
// URL (".../brackets/<phaseId>/<phaseGroupId>").
func parseBracketURL(url string) (int64, bool) {
	match := bracketURLRe.FindStringSubmatch(url)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseAddEvent parses "!addevent [Title] | Date | Location | URL"
// with an optional trailing "| YYYY-MM-DD" sort date.
func parseAddEvent(args string) (store.CommunityEvent, bool) {
	match := addEventRe.FindStringSubmatch(args)
	if match == nil {
		return store.CommunityEvent{}, false
	}
	return store.CommunityEvent{
		Title:    match[1],
		Date:     match[2],
		Location: match[3],
		URL:      match[4],
		SortDate: match[5],
	}, true
}

// numberFilter accepts a reply consisting of a number in [1, max].
func numberFilter(max int) func(string) bool {
	return func(content string) bool {
		n, err := strconv.Atoi(content)
		return err == nil && n >= 1 && n <= max
	}
}

func yesNoFilter(content string) bool {
	lower := strings.ToLower(content)
	return lower == "yes" || lower == "no"
}

func (b *bot) handleTag(ctx context.Context, m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	if len(fields) < 2 || !strings.Contains(fields[1], "#") {
		b.reply(m, "Usage: `!tag MEOW#83`")
		return
	}

	tag := fields[1]
	if err := b.tags.Add(m.Author.ID, tag); err != nil {
		b.logger.Errorw("unable to save tag", "error", err)
		b.reply(m, "❌ Failed to save your tag.")
		return
	}
	b.reply(m, fmt.Sprintf("✅ Slippi tag `%v` saved for <@%v>", tag,
		m.Author.ID))
}

const predictUsage = "Usage: `!predict OPPONENT#000` or `!predict PLAYER1#000 PLAYER2#000`"

func (b *bot) handlePredict(ctx context.Context, m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)

	switch len(fields) {
	case 2:
		opponentTag := slippi.NormalizeTag(fields[1])
		if !strings.Contains(opponentTag, "#") {
			b.reply(m, predictUsage)
			return
		}

		yourTags, err := b.tags.Get(m.Author.ID)
		if err != nil {
			b.logger.Errorw("unable to load tags", "error", err)
			b.reply(m, "❌ Failed to load your tags.")
			return
		}
		if len(yourTags) == 0 {
			b.reply(m, "⚠️ You must register your Slippi tag first using `!tag YOURTAG#000`")
			return
		}

		playerTag := yourTags[0]
		if len(yourTags) > 1 {
			selected, ok := b.promptTagChoice(m, yourTags)
			if !ok {
				return
			}
			playerTag = selected
		}
		b.replyPrediction(ctx, m, playerTag, opponentTag)

	case 3:
		tag1 := slippi.NormalizeTag(fields[1])
		tag2 := slippi.NormalizeTag(fields[2])
		if !strings.Contains(tag1, "#") || !strings.Contains(tag2, "#") {
			b.reply(m, predictUsage)
			return
		}
		b.replyPrediction(ctx, m, tag1, tag2)

	default:
		b.reply(m, predictUsage)
	}
}

// promptTagChoice asks a multi-tag user which of their tags to predict
// with.
func (b *bot) promptTagChoice(m *discordgo.MessageCreate,
	yourTags []string) (string, bool) {

	var prompt strings.Builder
	prompt.WriteString("⚠️ You have multiple tags saved. Please reply with " +
		"the number of the tag you'd like to use:\n")
	for idx, tag := range yourTags {
		fmt.Fprintf(&prompt, "**%d.** `%v`\n", idx+1, tag)
	}
	prompt.WriteString("\n_Pro tip: next time you can just use " +
		"`!predict YOURTAG#000 OPPONENT#000` to skip this._")
	b.reply(m, prompt.String())

	content, ok := b.awaitReply(m.ChannelID, m.Author.ID,
		numberFilter(len(yourTags)))
	if !ok {
		b.reply(m, "❌ You didn’t respond in time. Try the command again.")
		return "", false
	}

	selected, _ := strconv.Atoi(content)
	return yourTags[selected-1], true
}

func (b *bot) replyPrediction(ctx context.Context, m *discordgo.MessageCreate,
	playerTag, opponentTag string) {

	prediction, err := b.slippi.Predict(ctx, playerTag, opponentTag)
	if err != nil {
		b.reply(m, fmt.Sprintf("Prediction failed: %v", err))
		return
	}
	b.reply(m, formatPrediction(prediction))
}

// formatPrediction renders a prediction as a three line summary, with
// promotion and demotion notes only when the tier would change.
func formatPrediction(p *slippi.Prediction) string {
	promoNote := ""
	if p.Promotes() {
		promoNote = fmt.Sprintf(" | 🟢 **Promotes to** %s %s",
			rankEmoji(p.WinRank), p.WinRank)
	}
	demoNote := ""
	if p.Demotes() {
		demoNote = fmt.Sprintf(" | 🔴 **Demotes to** %s %s",
			rankEmoji(p.LossRank), p.LossRank)
	}

	return fmt.Sprintf(
		"**%s** (%.1f) %s vs **%s** (%.1f) %s\n"+
			"Win: +%.1f%s\n"+
			"Loss: %.1f%s",
		p.Player, p.PlayerOrdinal, rankEmoji(p.CurrentRank),
		p.Opponent, p.OpponentOrdinal, rankEmoji(p.OpponentRank),
		p.DeltaWin, promoNote,
		p.DeltaLoss, demoNote)
}

func (b *bot) handleLeaderboard(ctx context.Context, m *discordgo.MessageCreate) {
	registrations, err := b.tags.All()
	if err != nil {
		b.logger.Errorw("unable to load tags", "error", err)
		b.reply(m, "❌ Failed to generate leaderboard.")
		return
	}
	previous, err := b.snapshots.Load()
	if err != nil {
		b.logger.Errorw("unable to load leaderboard snapshot", "error", err)
		b.reply(m, "❌ Failed to generate leaderboard.")
		return
	}

	entries, snapshot := leaderboard.Build(ctx, b.slippi, registrations,
		previous, b.logger.Desugar())
	if err := b.snapshots.Save(snapshot); err != nil {
		b.logger.Errorw("unable to save leaderboard snapshot", "error", err)
	}

	lines := make([]string, len(entries))
	for idx, entry := range entries {
		lines[idx] = leaderboardLine(idx, entry)
	}

	for page, description := range tracker.ChunkLines(lines,
		tracker.MaxMessageLength) {

		title := "🏆 Slippi Leaderboard"
		if page > 0 {
			title = fmt.Sprintf("%v — Page %d", title, page+1)
		}
		b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Color:       0x3498db,
			Title:       title,
			Description: description,
		})
	}
}

// leaderboardLine renders one standings row:
// "**#3** <emoji> @user 🔺 (+4.2) 🔼 — TAG#123 — 1842.5 (W:10 / L:4) <chars>"
func leaderboardLine(index int, entry leaderboard.Entry) string {
	annotation := "🆕"
	if entry.PrevOrdinal != nil {
		diff := entry.Ordinal - *entry.PrevOrdinal
		switch {
		case diff > 0:
			annotation = fmt.Sprintf("🔺 (+%.1f)", diff)
		case diff < 0:
			annotation = fmt.Sprintf("🔻 (%.1f)", diff)
		default:
			annotation = ""
		}
	}
	if entry.PrevPlacement != nil {
		movement := *entry.PrevPlacement - index
		switch {
		case movement > 0:
			annotation += " 🔼"
		case movement < 0:
			annotation += " 🔽"
		default:
			annotation += " "
		}
	}

	characters := make([]string, len(entry.Characters))
	for idx, character := range entry.Characters {
		characters[idx] = characterEmoji(character)
	}

	return fmt.Sprintf("**#%d** %s <@%s> %s — %s — %.1f (W:%d / L:%d) %s",
		index+1, rankEmoji(entry.Rank), entry.DiscordID, annotation,
		startgg.EscapeMarkdown(entry.Tag), entry.Ordinal,
		entry.Wins, entry.Losses, strings.Join(characters, " "))
}

func (b *bot) handleResults(ctx context.Context, m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	if len(fields) < 2 {
		b.reply(m, "Provide a StartGG event URL.")
		return
	}

	slug, ok := parseEventURL(fields[1])
	if !ok {
		b.reply(m, "Invalid StartGG URL format.")
		return
	}

	eventID, err := b.startgg.ResolveEventSlug(ctx, slug)
	if err != nil {
		b.logger.Warnw("unable to resolve event slug", "slug", slug,
			"error", err)
		b.reply(m, "Failed to fetch results from StartGG.")
		return
	}

	// The confirmation goes out from the tracker goroutine before its
	// first poll, so it always precedes the first results batch.
	err = b.registry.Track(b.runCtx, m.ChannelID, eventID, func() {
		b.reply(m, fmt.Sprintf("Tracking results for event ID: %v", eventID))
	})
	if err == tracker.ErrAlreadyTracking {
		b.reply(m, "Already live updating this event in this channel.")
		return
	}
	if err != nil {
		b.logger.Errorw("unable to start tracking", "event", eventID,
			"error", err)
		b.reply(m, "Failed to fetch results from StartGG.")
	}
}

func (b *bot) handleStopResults(ctx context.Context, m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	if len(fields) < 2 {
		b.reply(m, "Usage: `!stopresults <eventID>`")
		return
	}
	eventID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		b.reply(m, "Usage: `!stopresults <eventID>`")
		return
	}

	if b.registry.Stop(m.ChannelID, eventID) != nil {
		b.reply(m, fmt.Sprintf(
			"No active tracking for event ID %v in this channel.", eventID))
		return
	}
	b.reply(m, fmt.Sprintf("Stopped tracking event ID %v.", eventID))
}

func (b *bot) handleLink(ctx context.Context, m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	if len(fields) != 2 || !strings.Contains(fields[1], "#") {
		b.reply(m, "Usage: `!link TAG#000`")
		return
	}

	// Slippi profile URLs are lowercase with a dash.
	slug := strings.ToLower(strings.Replace(fields[1], "#", "-", 1))
	b.reply(m, fmt.Sprintf("<https://slippi.gg/user/%v>", slug))
}

func (b *bot) handleUpsets(ctx context.Context, m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	if len(fields) < 2 {
		b.reply(m, "Usage: `!upsets start.gg/event_link`")
		return
	}
	url := fields[1]

	phaseGroupID, isBracket := parseBracketURL(url)
	slug, hasSlug := parseEventURL(url)
	if !isBracket && !hasSlug {
		b.reply(m, "❌ Missing valid event slug from the URL.")
		return
	}

	eventName := "Unknown Event"
	var entrants map[startgg.ID]startgg.SeededEntrant

	if hasSlug {
		eventID, err := b.startgg.ResolveEventSlug(ctx, slug)
		if err != nil {
			b.logger.Warnw("unable to resolve event slug", "slug", slug,
				"error", err)
			b.reply(m, "❌ Could not resolve event from this URL.")
			return
		}

		eventName, entrants, err = b.startgg.Entrants(ctx, eventID)
		if err != nil {
			b.logger.Warnw("unable to fetch entrants", "event", eventID,
				"error", err)
			b.reply(m, "❌ Failed to fetch entrants.")
			return
		}

		if !isBracket {
			sets, err := b.startgg.EventWinnerSets(ctx, eventID)
			if err != nil {
				b.logger.Warnw("unable to fetch sets", "event", eventID,
					"error", err)
				b.reply(m, "❌ Failed to fetch event sets.")
				return
			}
			b.sendUpsets(m, eventName, false, entrants, sets)
			return
		}
	}

	sets, err := b.startgg.PhaseGroupWinnerSets(ctx, phaseGroupID)
	if err != nil {
		b.logger.Warnw("unable to fetch phase group sets",
			"phaseGroup", phaseGroupID, "error", err)
		b.reply(m, "❌ Failed to fetch phase group sets.")
		return
	}
	b.sendUpsets(m, eventName, true, entrants, sets)
}

func (b *bot) sendUpsets(m *discordgo.MessageCreate, eventName string,
	phaseOnly bool, entrants map[startgg.ID]startgg.SeededEntrant,
	sets []startgg.WinnerSet) {

	upsets := startgg.ComputeUpsets(entrants, sets)
	if len(upsets) == 0 {
		b.reply(m, "✅ No upsets found in this bracket.")
		return
	}

	lines := make([]string, len(upsets))
	for idx, upset := range upsets {
		flame := ""
		if upset.Big() {
			flame = " 🔥"
		}
		lines[idx] = fmt.Sprintf("**%s** (Seed %d) upset **%s** (Seed %d)%s",
			upset.WinnerName, upset.WinnerSeed,
			upset.LoserName, upset.LoserSeed, flame)
	}

	title := fmt.Sprintf("🎯 Upsets — %v", eventName)
	if phaseOnly {
		title += " (Phase)"
	}

	const linesPerPage = 100
	pageCount := (len(lines) + linesPerPage - 1) / linesPerPage
	for page := 0; page < pageCount; page++ {
		last := (page + 1) * linesPerPage
		if last > len(lines) {
			last = len(lines)
		}
		b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Color:       0xe74c3c,
			Title:       title,
			Description: strings.Join(lines[page*linesPerPage:last], "\n"),
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Page %d of %d", page+1, pageCount),
			},
		})
	}
}

func (b *bot) handleRemove(ctx context.Context, m *discordgo.MessageCreate) {
	yourTags, err := b.tags.Get(m.Author.ID)
	if err != nil {
		b.logger.Errorw("unable to load tags", "error", err)
		b.reply(m, "❌ Failed to load your tags.")
		return
	}
	if len(yourTags) == 0 {
		b.reply(m, "❌ You don’t have any tags saved.")
		return
	}

	if len(yourTags) == 1 {
		b.reply(m, fmt.Sprintf("⚠️ You only have one tag saved: `%v`.\n"+
			"Are you sure you want to delete it? Reply with `yes` to "+
			"confirm or `no` to cancel.", yourTags[0]))

		content, ok := b.awaitReply(m.ChannelID, m.Author.ID, yesNoFilter)
		if !ok {
			b.reply(m, "❌ You didn’t respond in time. Try `!remove` again.")
			return
		}
		if strings.ToLower(content) != "yes" {
			b.reply(m, "❌ Deletion cancelled.")
			return
		}

		if _, err := b.tags.Remove(m.Author.ID, 0); err != nil {
			b.logger.Errorw("unable to remove tag", "error", err)
			b.reply(m, "❌ Failed to remove your tag.")
			return
		}
		b.reply(m, "✅ Your only tag was deleted.")
		return
	}

	var prompt strings.Builder
	prompt.WriteString("🗑️ You have multiple tags saved. Reply with the " +
		"number of the tag you'd like to remove:\n")
	for idx, tag := range yourTags {
		fmt.Fprintf(&prompt, "**%d.** `%v`\n", idx+1, tag)
	}
	b.reply(m, prompt.String())

	content, ok := b.awaitReply(m.ChannelID, m.Author.ID,
		numberFilter(len(yourTags)))
	if !ok {
		b.reply(m, "❌ You didn’t respond in time. Try `!remove` again.")
		return
	}

	selected, _ := strconv.Atoi(content)
	removed, err := b.tags.Remove(m.Author.ID, selected-1)
	if err != nil {
		b.logger.Errorw("unable to remove tag", "error", err)
		b.reply(m, "❌ Failed to remove your tag.")
		return
	}
	b.reply(m, fmt.Sprintf("✅ Removed tag `%v` from your saved list.", removed))
}

func (b *bot) handleEvents(ctx context.Context, m *discordgo.MessageCreate) {
	events, err := b.events.List()
	if err != nil {
		b.logger.Errorw("unable to load events", "error", err)
		b.reply(m, "❌ Failed to load events.")
		return
	}
	if len(events) == 0 {
		b.reply(m, "📭 No upcoming events found.")
		return
	}

	lines := make([]string, len(events))
	for idx, event := range events {
		lines[idx] = fmt.Sprintf("%d. [%v | %v | %v](%v)", idx+1,
			event.Title, event.Date, event.Location, event.URL)
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Color:       0x00bfff,
		Title:       "📅 Upcoming Events",
		Description: strings.Join(lines, "\n"),
	})
}

func (b *bot) handleAddEvent(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author.ID != b.cfg.AdminUserID {
		b.reply(m, "❌ You are not authorized to add events.")
		return
	}

	args := strings.TrimSpace(strings.TrimPrefix(m.Content, "!addevent"))
	event, ok := parseAddEvent(args)
	if !ok {
		b.reply(m, "⚠️ Invalid format.\nUse: `!addevent [Title] | Date | "+
			"Location | URL | YYYY-MM-DD` (last part optional)")
		return
	}

	if err := b.events.Add(event); err != nil {
		b.logger.Errorw("unable to save event", "error", err)
		b.reply(m, "❌ Failed to save the event.")
		return
	}

	confirmation := fmt.Sprintf("✅ Added event: **%v** | %v | %v",
		event.Title, event.Date, event.Location)
	if event.SortDate != "" {
		confirmation += fmt.Sprintf(" | 🗓️ %v", event.SortDate)
	}
	b.reply(m, confirmation)
}

func (b *bot) handleDeleteEvent(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author.ID != b.cfg.AdminUserID {
		b.reply(m, "❌ You are not authorized to delete events.")
		return
	}

	events, err := b.events.All()
	if err != nil {
		b.logger.Errorw("unable to load events", "error", err)
		b.reply(m, "❌ Failed to load events.")
		return
	}
	if len(events) == 0 {
		b.reply(m, "📭 No events to delete.")
		return
	}

	var prompt strings.Builder
	prompt.WriteString("🗑️ Reply with the number of the event you want to delete:\n")
	for idx, event := range events {
		fmt.Fprintf(&prompt, "**%d.** [%v | %v | %v](%v)\n", idx+1,
			event.Title, event.Date, event.Location, event.URL)
	}
	b.reply(m, prompt.String())

	content, ok := b.awaitReply(m.ChannelID, m.Author.ID,
		numberFilter(len(events)))
	if !ok {
		b.reply(m, "❌ You didn’t respond in time. Try `!deleteevent` again.")
		return
	}

	selected, _ := strconv.Atoi(content)
	deleted, err := b.events.Delete(selected - 1)
	if err != nil {
		b.logger.Errorw("unable to delete event", "error", err)
		b.reply(m, "❌ Failed to delete the event.")
		return
	}
	b.reply(m, fmt.Sprintf("✅ Removed event: **%v | %v | %v**",
		deleted.Title, deleted.Date, deleted.Location))
}

func (b *bot) handleCommands(ctx context.Context, m *discordgo.MessageCreate) {
	description := strings.Join([]string{
		"**__Commands__**",
		"1. Add your tag to the bot: `!tag MEOW#83` — you can have multiple tags.",
		"2. Show the current leaderboard: `!leaderboard`.",
		"3. Predict rating change vs an opponent: `!predict SAND#511`.",
		"4. Simulate ranked game between two players: `!predict MEOW#83 SAND#511` (shows result for MEOW).",
		"5. Get direct Slippi link: `!link MEOW#83`.",
		"6. Remove one of your tags: `!remove`.",
		"7. View upcoming events `!events`.",
	}, "\n")

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Color:       0x5865f2,
		Title:       "📜 Commands",
		Description: description,
	})
}
