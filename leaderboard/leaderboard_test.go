/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package leaderboard

import (
	"context"
	"errors"
	"testing"

	"github.com/ConfusedSammie/MontrealBot/slippi"
	"github.com/ConfusedSammie/MontrealBot/store"
)

type fakeFetcher map[string]*slippi.Profile

func (f fakeFetcher) FetchProfile(ctx context.Context,
	tag string) (*slippi.Profile, error) {

	profile, ok := f[tag]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return profile, nil
}

func TestBuild(t *testing.T) {
	fetcher := fakeFetcher{
		"MANG#0": {Name: "Mango", Ordinal: 2100, Wins: 50, Losses: 10,
			Characters: []string{"FALCO"}},
		"ZAIN#0": {Name: "Zain", Ordinal: 2200, Wins: 60, Losses: 5,
			Characters: []string{"MARTH"}},
		"NEW#1": {Name: "Newcomer", Ordinal: 900},
	}
	registrations := map[string]store.TagRecord{
		"user1": {Tags: []string{"MANG#0"}},
		"user2": {Tags: []string{"ZAIN#0"}},
		"user3": {Tags: []string{"NEW#1", "GONE#404"}},
	}
	// Last time Mango was first with 2150 and Zain second with 2050.
	previous := store.Snapshot{
		"user1": {"MANG#0": 2150},
		"user2": {"ZAIN#0": 2050},
	}

	entries, snapshot := Build(context.Background(), fetcher,
		registrations, previous, nil)

	if len(entries) != 3 {
		t.Fatalf("got %v entries want 3 (failed fetch skipped): %+v",
			len(entries), entries)
	}
	if entries[0].Tag != "ZAIN#0" || entries[1].Tag != "MANG#0" ||
		entries[2].Tag != "NEW#1" {
		t.Fatalf("unexpected order: %v %v %v",
			entries[0].Tag, entries[1].Tag, entries[2].Tag)
	}

	zain := entries[0]
	if zain.PrevOrdinal == nil || *zain.PrevOrdinal != 2050 {
		t.Errorf("unexpected previous ordinal: %v", zain.PrevOrdinal)
	}
	if zain.PrevPlacement == nil || *zain.PrevPlacement != 1 {
		t.Errorf("unexpected previous placement: %v", zain.PrevPlacement)
	}

	newcomer := entries[2]
	if newcomer.PrevOrdinal != nil || newcomer.PrevPlacement != nil {
		t.Errorf("newcomer should have no history: %+v", newcomer)
	}

	if snapshot["user2"]["ZAIN#0"] != 2200 {
		t.Errorf("snapshot not updated: %v", snapshot)
	}
	if _, ok := snapshot["user3"]["GONE#404"]; ok {
		t.Error("failed fetch must not enter the snapshot")
	}
}

func TestBuildEmpty(t *testing.T) {
	entries, snapshot := Build(context.Background(), fakeFetcher{},
		nil, nil, nil)
	if len(entries) != 0 || len(snapshot) != 0 {
		t.Fatalf("expected empty results, got %v / %v", entries, snapshot)
	}
}
