/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package store

import (
	"errors"
	"path/filepath"
	"sort"
	"time"

	"github.com/araddon/dateparse"
)

// ErrNoSuchEvent is returned when a deletion index is out of range.
var ErrNoSuchEvent = errors.New("no event at that position")

// CommunityEvent is one locally organized event on the community
// calendar. Date is the display string; SortDate, when present, is a
// machine-sortable date.
type CommunityEvent struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Location string `json:"location"`
	URL      string `json:"url"`
	SortDate string `json:"sortDate,omitempty"`
}

// EventStore persists the community event calendar in events.json.
type EventStore struct {
	file *jsonFile[[]CommunityEvent]
}

func NewEventStore(dataDir string) *EventStore {
	return &EventStore{
		file: newJSONFile[[]CommunityEvent](filepath.Join(dataDir, "events.json")),
	}
}

// Add appends an event to the calendar.
func (s *EventStore) Add(event CommunityEvent) error {
	return s.file.update(func(events *[]CommunityEvent) error {
		*events = append(*events, event)
		return nil
	})
}

// All returns the calendar in insertion order; Delete indexes match
// this ordering.
func (s *EventStore) All() ([]CommunityEvent, error) {
	var events []CommunityEvent
	err := s.file.view(func(stored []CommunityEvent) {
		events = append([]CommunityEvent(nil), stored...)
	})
	return events, err
}

// Delete removes the event at the given zero-based index, counted in
// insertion order, and returns it.
func (s *EventStore) Delete(index int) (CommunityEvent, error) {
	var deleted CommunityEvent

	err := s.file.update(func(events *[]CommunityEvent) error {
		if index < 0 || index >= len(*events) {
			return ErrNoSuchEvent
		}
		deleted = (*events)[index]
		*events = append((*events)[:index], (*events)[index+1:]...)
		return nil
	})

	return deleted, err
}

// List returns the calendar sorted by SortDate ascending. SortDate
// accepts most common date formats; events without a parseable
// SortDate sort to the end in insertion order.
func (s *EventStore) List() ([]CommunityEvent, error) {
	var events []CommunityEvent
	err := s.file.view(func(stored []CommunityEvent) {
		events = append([]CommunityEvent(nil), stored...)
	})
	if err != nil {
		return nil, err
	}

	sortTimes := make([]time.Time, len(events))
	parsed := make([]bool, len(events))
	for idx, event := range events {
		if event.SortDate == "" {
			continue
		}
		when, err := dateparse.ParseAny(event.SortDate)
		if err != nil {
			continue
		}
		sortTimes[idx] = when
		parsed[idx] = true
	}

	indexes := make([]int, len(events))
	for idx := range indexes {
		indexes[idx] = idx
	}
	sort.SliceStable(indexes, func(i, j int) bool {
		a, b := indexes[i], indexes[j]
		if parsed[a] != parsed[b] {
			return parsed[a]
		}
		return sortTimes[a].Before(sortTimes[b])
	})

	sorted := make([]CommunityEvent, len(events))
	for pos, idx := range indexes {
		sorted[pos] = events[idx]
	}
	return sorted, nil
}
