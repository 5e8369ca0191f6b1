/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package tracker polls start.gg events for newly completed sets and
// announces them to chat channels.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/ConfusedSammie/MontrealBot/startgg"
)

// DefaultPollInterval is how often a tracked event is polled for new
// results.
const DefaultPollInterval = 15 * time.Second

const perPage = 20

var (
	ErrAlreadyTracking = errors.New("event is already being tracked in this channel")
	ErrNotTracking     = errors.New("event is not being tracked in this channel")
)

var (
	pollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "montrealbot_result_polls_total",
		Help: "Number of result polling ticks executed.",
	})
	pollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "montrealbot_result_poll_errors_total",
		Help: "Number of polling ticks aborted by a fetch error.",
	})
	setsAnnouncedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "montrealbot_sets_announced_total",
		Help: "Number of completed sets announced to channels.",
	})
)

// Sender delivers announcement messages to a channel. The Discord
// session satisfies this through a thin adapter in the command layer.
type Sender interface {
	Send(channelID, content string) error
}

// ResultsAPI is the slice of the start.gg client the poller needs.
type ResultsAPI interface {
	EventSets(ctx context.Context, eventID int64,
		page, perPage int) (*startgg.EventSetsPage, error)
}

// Registry owns all live event trackers, keyed by (channel, event).
// Safe for concurrent use; gateway handlers run on multiple goroutines.
type Registry struct {
	api      ResultsAPI
	sender   Sender
	interval time.Duration
	logger   *zap.SugaredLogger

	mtx     sync.Mutex
	tracked map[string]context.CancelFunc

	// seen holds ids of sets already announced per key. Parse failures
	// are deliberately not recorded so a later fixed score is still
	// announced. Entries outlive Stop and completion eviction: a set is
	// announced to a channel at most once for the life of the process,
	// even across stop and re-track.
	seen map[string]map[startgg.ID]bool
}

func NewRegistry(api ResultsAPI, sender Sender, interval time.Duration,
	logger *zap.Logger) *Registry {

	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		api:      api,
		sender:   sender,
		interval: interval,
		logger:   logger.Sugar(),
		tracked:  make(map[string]context.CancelFunc),
		seen:     make(map[string]map[startgg.ID]bool),
	}
}

func trackKey(channelID string, eventID int64) string {
	return fmt.Sprintf("%v:%v", channelID, eventID)
}

// Track starts polling eventID and announcing new results into
// channelID. started, when non-nil, runs from the tracker goroutine
// after the key is claimed but before the first poll, so a caller can
// confirm tracking ahead of the first results batch. The first poll
// runs immediately; after that the event is polled on the registry's
// interval until the event completes or Stop is called.
func (reg *Registry) Track(ctx context.Context, channelID string,
	eventID int64, started func()) error {

	key := trackKey(channelID, eventID)

	reg.mtx.Lock()
	if _, ok := reg.tracked[key]; ok {
		reg.mtx.Unlock()
		return ErrAlreadyTracking
	}
	pollCtx, cancel := context.WithCancel(ctx)
	reg.tracked[key] = cancel
	seen := reg.seen[key]
	if seen == nil {
		seen = make(map[startgg.ID]bool)
		reg.seen[key] = seen
	}
	reg.mtx.Unlock()

	reg.logger.Infow("tracking event", "channel", channelID, "event", eventID)
	go reg.run(pollCtx, channelID, eventID, seen, started)

	return nil
}

// Stop cancels tracking for the given key.
func (reg *Registry) Stop(channelID string, eventID int64) error {
	key := trackKey(channelID, eventID)

	reg.mtx.Lock()
	cancel, ok := reg.tracked[key]
	if ok {
		delete(reg.tracked, key)
	}
	reg.mtx.Unlock()

	if !ok {
		return ErrNotTracking
	}

	cancel()
	reg.logger.Infow("stopped tracking event", "channel", channelID,
		"event", eventID)
	return nil
}

// StopAll cancels every live tracker; used at shutdown.
func (reg *Registry) StopAll() {
	reg.mtx.Lock()
	defer reg.mtx.Unlock()

	for key, cancel := range reg.tracked {
		cancel()
		delete(reg.tracked, key)
	}
}

// evict removes a key without cancelling; called from the tracker's own
// goroutine when the event completes.
func (reg *Registry) evict(channelID string, eventID int64) {
	reg.mtx.Lock()
	delete(reg.tracked, trackKey(channelID, eventID))
	reg.mtx.Unlock()
}

func (reg *Registry) run(ctx context.Context, channelID string,
	eventID int64, seen map[startgg.ID]bool, started func()) {

	if started != nil {
		started()
	}

	if done := reg.pollOnce(ctx, channelID, eventID, seen); done {
		return
	}

	ticker := time.NewTicker(reg.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := reg.pollOnce(ctx, channelID, eventID, seen); done {
				return
			}
		}
	}
}

// pollOnce runs a single polling tick: paginate all sets, announce the
// newly completed ones, and handle event completion. Returns true when
// tracking should end.
func (reg *Registry) pollOnce(ctx context.Context, channelID string,
	eventID int64, seen map[startgg.ID]bool) bool {

	pollsTotal.Inc()

	allSets, eventState, err := reg.fetchAllSets(ctx, eventID)
	if err != nil {
		pollErrorsTotal.Inc()
		reg.logger.Warnw("unable to poll event results", "event", eventID,
			"error", err)
		return false
	}

	completed := eventState == startgg.EventStateCompleted
	if completed {
		reg.evict(channelID, eventID)
		reg.logger.Infow("event completed; stopping tracking",
			"channel", channelID, "event", eventID)
		notice := fmt.Sprintf("✅ Event has ended. Final results shown. "+
			"Tracking for event ID %v has stopped.", eventID)
		if err := reg.sender.Send(channelID, notice); err != nil {
			reg.logger.Warnw("unable to send ended notice",
				"channel", channelID, "error", err)
		}
	}

	reg.announceNewSets(channelID, allSets, seen)

	return completed
}

// fetchAllSets paginates the event's sets until an empty page. The
// event state is captured from the first page.
func (reg *Registry) fetchAllSets(ctx context.Context,
	eventID int64) ([]startgg.Set, string, error) {

	var allSets []startgg.Set
	var eventState string

	for page := 1; ; page++ {
		setsPage, err := reg.api.EventSets(ctx, eventID, page, perPage)
		if err != nil {
			return nil, "", err
		}
		if page == 1 {
			eventState = setsPage.EventState
		}
		if len(setsPage.Sets) == 0 {
			break
		}
		allSets = append(allSets, setsPage.Sets...)
	}

	return allSets, eventState, nil
}

func (reg *Registry) announceNewSets(channelID string,
	sets []startgg.Set, seen map[startgg.ID]bool) {

	groups := newResultGroups()
	announced := 0

	// A stopped tracker can still be draining a poll when the key is
	// re-tracked; the lock keeps the shared seen map consistent.
	reg.mtx.Lock()
	for idx := range sets {
		set := &sets[idx]
		if set.State != startgg.SetStateComplete || seen[set.ID] {
			continue
		}

		line, err := set.ResultLine()
		if err != nil {
			// Walkovers and in-progress scores; leave unseen so a
			// corrected score is picked up on a later tick.
			reg.logger.Warnw("skipping set with unparseable score",
				"set", set.ID, "error", err)
			continue
		}

		seen[set.ID] = true
		announced++
		groups.add(set.PhaseName(), set.PoolName(), line)
	}
	reg.mtx.Unlock()

	if announced == 0 {
		return
	}
	setsAnnouncedTotal.Add(float64(announced))

	for _, message := range ChunkLines(groups.render(), MaxMessageLength) {
		if err := reg.sender.Send(channelID, message); err != nil {
			reg.logger.Warnw("unable to send results message",
				"channel", channelID, "error", err)
		}
	}
}
