/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package store

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoSuchTag is returned when a removal index does not match a
// registered tag.
var ErrNoSuchTag = errors.New("no tag registered at that position")

// StartingTimbucks is the balance a player starts with when their first
// tag is registered.
const StartingTimbucks = 1000

// TagRecord is one user's registered connect codes and currency
// balance.
type TagRecord struct {
	Tags     []string `json:"tags"`
	Timbucks int      `json:"timbucks"`
}

// TagStore persists user to tag registrations in tags.json.
type TagStore struct {
	file *jsonFile[map[string]TagRecord]
}

func NewTagStore(dataDir string) *TagStore {
	return &TagStore{
		file: newJSONFile[map[string]TagRecord](filepath.Join(dataDir, "tags.json")),
	}
}

// Add registers a tag for a user. Tags are stored uppercase and
// de-duplicated; a user's first tag also opens their currency balance.
func (s *TagStore) Add(discordID, tag string) error {
	normalized := strings.ToUpper(tag)

	return s.file.update(func(records *map[string]TagRecord) error {
		if *records == nil {
			*records = make(map[string]TagRecord)
		}

		record, ok := (*records)[discordID]
		if !ok {
			(*records)[discordID] = TagRecord{
				Tags:     []string{normalized},
				Timbucks: StartingTimbucks,
			}
			return nil
		}

		for _, existing := range record.Tags {
			if existing == normalized {
				return nil
			}
		}
		record.Tags = append(record.Tags, normalized)
		(*records)[discordID] = record
		return nil
	})
}

// Get returns a user's registered tags, or nil when they have none.
func (s *TagStore) Get(discordID string) ([]string, error) {
	var tags []string
	err := s.file.view(func(records map[string]TagRecord) {
		if record, ok := records[discordID]; ok {
			tags = append([]string(nil), record.Tags...)
		}
	})
	return tags, err
}

// All returns every registration keyed by user id.
func (s *TagStore) All() (map[string]TagRecord, error) {
	all := make(map[string]TagRecord)
	err := s.file.view(func(records map[string]TagRecord) {
		for id, record := range records {
			record.Tags = append([]string(nil), record.Tags...)
			all[id] = record
		}
	})
	return all, err
}

// Remove deletes the user's tag at the given zero-based index and
// returns it. The whole record goes away with the last tag; the
// currency balance does not survive that.
func (s *TagStore) Remove(discordID string, index int) (string, error) {
	var removed string

	err := s.file.update(func(records *map[string]TagRecord) error {
		record, ok := (*records)[discordID]
		if !ok || index < 0 || index >= len(record.Tags) {
			return ErrNoSuchTag
		}

		removed = record.Tags[index]
		record.Tags = append(record.Tags[:index], record.Tags[index+1:]...)

		if len(record.Tags) == 0 {
			delete(*records, discordID)
		} else {
			(*records)[discordID] = record
		}
		return nil
	})

	return removed, err
}
