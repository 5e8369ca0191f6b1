/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package store

import "path/filepath"

// Snapshot is the previous leaderboard state: user id to tag to the
// ordinal last shown. Used to annotate the next leaderboard with deltas
// and movement.
type Snapshot map[string]map[string]float64

// SnapshotStore persists the previous leaderboard in
// last_leaderboard.json.
type SnapshotStore struct {
	file *jsonFile[Snapshot]
}

func NewSnapshotStore(dataDir string) *SnapshotStore {
	return &SnapshotStore{
		file: newJSONFile[Snapshot](filepath.Join(dataDir, "last_leaderboard.json")),
	}
}

// Load returns the previous snapshot, empty when none was saved yet.
func (s *SnapshotStore) Load() (Snapshot, error) {
	snapshot := make(Snapshot)
	err := s.file.view(func(stored Snapshot) {
		for id, tags := range stored {
			copied := make(map[string]float64, len(tags))
			for tag, ordinal := range tags {
				copied[tag] = ordinal
			}
			snapshot[id] = copied
		}
	})
	return snapshot, err
}

// Save replaces the stored snapshot.
func (s *SnapshotStore) Save(snapshot Snapshot) error {
	return s.file.update(func(stored *Snapshot) error {
		*stored = snapshot
		return nil
	})
}
