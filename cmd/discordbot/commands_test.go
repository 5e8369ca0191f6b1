/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"strings"
	"testing"

	"github.com/ConfusedSammie/MontrealBot/leaderboard"
	"github.com/ConfusedSammie/MontrealBot/slippi"
)

func TestParseEventURL(t *testing.T) {
	cases := []struct {
		url      string
		wantSlug string
		wantOK   bool
	}{
		{
			url:      "https://www.start.gg/tournament/weekly-12/event/melee-singles",
			wantSlug: "tournament/weekly-12/event/melee-singles",
			wantOK:   true,
		},
		{
			url:      "start.gg/tournament/weekly-12/event/melee-singles/overview",
			wantSlug: "tournament/weekly-12/event/melee-singles",
			wantOK:   true,
		},
		{
			url:    "https://www.start.gg/tournament/weekly-12",
			wantOK: false,
		},
		{
			url:    "https://example.com/tournament/x/event/y",
			wantOK: false,
		},
	}

	for _, tc := range cases {
		slug, ok := parseEventURL(tc.url)
		if ok != tc.wantOK {
			t.Errorf("parseEventURL(%q): ok=%v want %v", tc.url, ok, tc.wantOK)
			continue
		}
		if ok && slug != tc.wantSlug {
			t.Errorf("parseEventURL(%q): slug=%q want %q", tc.url,
				slug, tc.wantSlug)
		}
	}
}

func TestParseBracketURL(t *testing.T) {
	url := "https://www.start.gg/tournament/weekly-12/event/melee-singles/brackets/1111111/2222222"
	id, ok := parseBracketURL(url)
	if !ok || id != 2222222 {
		t.Errorf("got id=%v ok=%v", id, ok)
	}

	if _, ok := parseBracketURL("https://www.start.gg/tournament/weekly-12/event/melee-singles"); ok {
		t.Error("event URL should not parse as bracket URL")
	}
}

func TestParseAddEvent(t *testing.T) {
	event, ok := parseAddEvent("[Melee Monthly] | Sept 20 | Montreal | https://start.gg/m | 2026-09-20")
	if !ok {
		t.Fatal("expected match")
	}
	if event.Title != "Melee Monthly" || event.Date != "Sept 20" ||
		event.Location != "Montreal" || event.URL != "https://start.gg/m" ||
		event.SortDate != "2026-09-20" {
		t.Errorf("unexpected event: %+v", event)
	}

	event, ok = parseAddEvent("[Casual Friday] | Friday | Somewhere | https://example.com")
	if !ok {
		t.Fatal("expected match without sort date")
	}
	if event.SortDate != "" {
		t.Errorf("expected empty sort date, got %q", event.SortDate)
	}

	if _, ok := parseAddEvent("Melee Monthly | Sept 20 | Montreal"); ok {
		t.Error("missing brackets and URL should not match")
	}
}

func TestNumberFilter(t *testing.T) {
	filter := numberFilter(3)
	for content, want := range map[string]bool{
		"1":    true,
		"3":    true,
		"0":    false,
		"4":    false,
		"two":  false,
		"":     false,
		"2abc": false,
	} {
		if filter(content) != want {
			t.Errorf("numberFilter(3)(%q): got %v want %v", content,
				filter(content), want)
		}
	}
}

func TestFormatPrediction(t *testing.T) {
	p := &slippi.Prediction{
		Player:          "Mango",
		Opponent:        "Zain",
		PlayerOrdinal:   2100.04,
		OpponentOrdinal: 2200.96,
		CurrentRank:     "DIAMOND 2",
		WinRank:         "DIAMOND 3",
		LossRank:        "DIAMOND 2",
		OpponentRank:    "MASTER 1",
		DeltaWin:        12.3,
		DeltaLoss:       -8.7,
	}

	out := formatPrediction(p)
	if !strings.Contains(out, "**Mango** (2100.0)") ||
		!strings.Contains(out, "**Zain** (2201.0)") {
		t.Errorf("missing player headers: %q", out)
	}
	if !strings.Contains(out, "Win: +12.3 | 🟢 **Promotes to**") {
		t.Errorf("missing promotion note: %q", out)
	}
	if strings.Contains(out, "Demotes to") {
		t.Errorf("unchanged loss rank must not carry a demotion note: %q", out)
	}
	if !strings.Contains(out, "Loss: -8.7") {
		t.Errorf("missing loss delta: %q", out)
	}
}

func TestLeaderboardLine(t *testing.T) {
	prevOrdinal := 2090.0
	prevPlacement := 2
	entry := leaderboard.Entry{
		DiscordID:     "42",
		Tag:           "MANG#0",
		Ordinal:       2100.0,
		Rank:          "DIAMOND 2",
		Wins:          10,
		Losses:        4,
		Characters:    []string{"FALCO"},
		PrevOrdinal:   &prevOrdinal,
		PrevPlacement: &prevPlacement,
	}

	line := leaderboardLine(0, entry)
	if !strings.HasPrefix(line, "**#1**") {
		t.Errorf("missing placement prefix: %q", line)
	}
	if !strings.Contains(line, "<@42>") {
		t.Errorf("missing mention: %q", line)
	}
	if !strings.Contains(line, "🔺 (+10.0) 🔼") {
		t.Errorf("missing delta and movement annotation: %q", line)
	}
	if !strings.Contains(line, "2100.0 (W:10 / L:4)") {
		t.Errorf("missing record: %q", line)
	}

	// First appearance gets the new marker and no movement arrow.
	entry.PrevOrdinal = nil
	entry.PrevPlacement = nil
	line = leaderboardLine(0, entry)
	if !strings.Contains(line, "🆕") {
		t.Errorf("missing new marker: %q", line)
	}
}

func TestRankEmoji(t *testing.T) {
	if got := rankEmoji("BRONZE 1"); got != "<:BRONZE1:1369526027327635496>" {
		t.Errorf("got %q", got)
	}
	if got := rankEmoji(slippi.RankUnranked); got != "<:NONE:1369526309570740395>" {
		t.Errorf("got %q", got)
	}
}

func TestCharacterEmoji(t *testing.T) {
	if got := characterEmoji("FALCO"); got != "<:falco_default:1369555374327332895>" {
		t.Errorf("got %q", got)
	}
	if got := characterEmoji("RIDLEY"); got != "❓" {
		t.Errorf("unknown character should fall back, got %q", got)
	}
}
