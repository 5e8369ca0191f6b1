/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTagStoreAddGetRemove(t *testing.T) {
	dir := t.TempDir()
	tagStore := NewTagStore(dir)

	if err := tagStore.Add("user1", "mang#0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Duplicate registration in a different case is a no-op.
	if err := tagStore.Add("user1", "MANG#0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tagStore.Add("user1", "ALT#123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tags, err := tagStore.Get("user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 || tags[0] != "MANG#0" || tags[1] != "ALT#123" {
		t.Fatalf("unexpected tags: %v", tags)
	}

	all, err := tagStore.All()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all["user1"].Timbucks != StartingTimbucks {
		t.Errorf("got %v timbucks want %v", all["user1"].Timbucks,
			StartingTimbucks)
	}

	removed, err := tagStore.Remove("user1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != "MANG#0" {
		t.Errorf("removed %q want MANG#0", removed)
	}

	// Removing the last tag deletes the whole record.
	if _, err := tagStore.Remove("user1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags, err = tagStore.Get("user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tags != nil {
		t.Fatalf("expected no tags, got %v", tags)
	}

	if _, err := tagStore.Remove("user1", 0); !errors.Is(err, ErrNoSuchTag) {
		t.Fatalf("got %v want ErrNoSuchTag", err)
	}
}

func TestTagStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	if err := NewTagStore(dir).Add("user1", "TAG#1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tags, err := NewTagStore(dir).Get("user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 1 || tags[0] != "TAG#1" {
		t.Fatalf("unexpected tags after reopen: %v", tags)
	}
}

func TestTagStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tags.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewTagStore(dir).Get("user1"); err == nil {
		t.Fatal("expected error on corrupt file")
	}
}

func TestEventStoreSortsBySortDate(t *testing.T) {
	dir := t.TempDir()
	eventStore := NewEventStore(dir)

	add := func(title, sortDate string) {
		t.Helper()
		err := eventStore.Add(CommunityEvent{
			Title:    title,
			Date:     "whenever",
			Location: "Montreal",
			URL:      "https://example.com",
			SortDate: sortDate,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	add("later", "2026-10-01")
	add("undated", "")
	add("sooner", "September 5, 2026")

	events, err := eventStore.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %v events want 3", len(events))
	}
	if events[0].Title != "sooner" || events[1].Title != "later" ||
		events[2].Title != "undated" {
		t.Errorf("unexpected order: %v %v %v",
			events[0].Title, events[1].Title, events[2].Title)
	}
}

func TestEventStoreDelete(t *testing.T) {
	dir := t.TempDir()
	eventStore := NewEventStore(dir)

	if err := eventStore.Add(CommunityEvent{Title: "one"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deleted, err := eventStore.Delete(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted.Title != "one" {
		t.Errorf("deleted %q want one", deleted.Title)
	}

	if _, err := eventStore.Delete(0); !errors.Is(err, ErrNoSuchEvent) {
		t.Fatalf("got %v want ErrNoSuchEvent", err)
	}
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snapStore := NewSnapshotStore(dir)

	empty, err := snapStore.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty snapshot, got %v", empty)
	}

	saved := Snapshot{"user1": {"MANG#0": 1842.5}}
	if err := snapStore.Save(saved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := snapStore.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded["user1"]["MANG#0"] != 1842.5 {
		t.Fatalf("unexpected snapshot: %v", loaded)
	}
}
