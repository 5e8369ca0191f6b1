/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package leaderboard builds the ranked standings of all registered
// players from their live Slippi profiles.
package leaderboard

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ConfusedSammie/MontrealBot/slippi"
	"github.com/ConfusedSammie/MontrealBot/store"
)

// ProfileFetcher is the slice of the Slippi client the leaderboard
// needs.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, tag string) (*slippi.Profile, error)
}

// Entry is one leaderboard row, annotated against the previous
// snapshot. PrevOrdinal is nil for a player's first appearance;
// PrevPlacement is nil when the row had no position last time.
type Entry struct {
	DiscordID  string
	Tag        string
	Ordinal    float64
	Rank       slippi.Rank
	Wins       int
	Losses     int
	Characters []string

	PrevOrdinal   *float64
	PrevPlacement *int
}

// Build fetches every registered tag's profile, ranks the results by
// ordinal descending, and annotates each row with deltas against the
// previous snapshot. Profiles that fail to fetch are skipped with a
// log. The returned snapshot reflects the rows actually shown and
// replaces the stored one.
func Build(ctx context.Context, fetcher ProfileFetcher,
	registrations map[string]store.TagRecord, previous store.Snapshot,
	logger *zap.Logger) ([]Entry, store.Snapshot) {

	if logger == nil {
		logger = zap.NewNop()
	}
	sugar := logger.Sugar()

	discordIDs := make([]string, 0, len(registrations))
	for discordID := range registrations {
		discordIDs = append(discordIDs, discordID)
	}
	sort.Strings(discordIDs)

	var entries []Entry
	snapshot := make(store.Snapshot)

	for _, discordID := range discordIDs {
		for _, tag := range registrations[discordID].Tags {
			profile, err := fetcher.FetchProfile(ctx, tag)
			if err != nil {
				sugar.Warnw("skipping tag on leaderboard", "tag", tag,
					"error", err)
				continue
			}

			entry := Entry{
				DiscordID:  discordID,
				Tag:        tag,
				Ordinal:    profile.Ordinal,
				Rank:       profile.Rank(),
				Wins:       profile.Wins,
				Losses:     profile.Losses,
				Characters: profile.Characters,
			}
			if prevOrdinal, ok := previous[discordID][tag]; ok {
				entry.PrevOrdinal = &prevOrdinal
			}
			entries = append(entries, entry)

			if snapshot[discordID] == nil {
				snapshot[discordID] = make(map[string]float64)
			}
			snapshot[discordID][tag] = profile.Ordinal
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Ordinal > entries[j].Ordinal
	})

	annotatePlacements(entries, previous)

	return entries, snapshot
}

// annotatePlacements assigns each entry its position in the previous
// snapshot's ordinal ordering.
func annotatePlacements(entries []Entry, previous store.Snapshot) {
	type prevRow struct {
		discordID string
		tag       string
		ordinal   float64
	}

	var rows []prevRow
	for discordID, tags := range previous {
		for tag, ordinal := range tags {
			rows = append(rows, prevRow{discordID, tag, ordinal})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ordinal != rows[j].ordinal {
			return rows[i].ordinal > rows[j].ordinal
		}
		if rows[i].discordID != rows[j].discordID {
			return rows[i].discordID < rows[j].discordID
		}
		return rows[i].tag < rows[j].tag
	})

	placements := make(map[string]int, len(rows))
	for index, row := range rows {
		placements[row.discordID+"::"+row.tag] = index
	}

	for idx := range entries {
		entry := &entries[idx]
		if placement, ok := placements[entry.DiscordID+"::"+entry.Tag]; ok {
			prev := placement
			entry.PrevPlacement = &prev
		}
	}
}
