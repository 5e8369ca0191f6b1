/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package startgg is a client for the start.gg GraphQL tournament API:
// event slug resolution, paginated set results, entrant seeds, and upset
// analysis.
package startgg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ConfusedSammie/MontrealBot/internal"
	"github.com/ConfusedSammie/MontrealBot/internal/webcache"
)

// DefaultAPIURL is the production start.gg GraphQL endpoint.
const DefaultAPIURL = "https://api.start.gg/gql/alpha"

// EventStateCompleted is the terminal event state sentinel reported by
// the API.
const EventStateCompleted = "COMPLETED"

type Client struct {
	apiURL string
	bearer string

	// httpClient serves live queries (set results, entrants).
	httpClient *http.Client

	// cachedClient serves slug resolution; a slug to event-id mapping is
	// immutable so it is cached with a long TTL.
	cachedClient *http.Client
}

// NewClient returns a start.gg client. cacheBucket optionally backs the
// slug-resolution cache with S3; when empty the cache is in-memory.
func NewClient(ctx context.Context, apiURL, bearer, cacheBucket string,
	logger *zap.Logger) *Client {

	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL:       apiURL,
		bearer:       bearer,
		httpClient:   http.DefaultClient,
		cachedClient: webcache.NewClient(ctx, cacheBucket, 30*24*time.Hour, logger),
	}
}

type gqlError struct {
	Message string `json:"message"`
}

// do posts a GraphQL query and decodes the response envelope into out,
// which must carry a `data` field of the appropriate shape.
func (client *Client) do(ctx context.Context, hc *http.Client,
	query string, variables map[string]any, out any) error {

	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("unable to query startgg (marshal): %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", client.apiURL,
		bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("unable to query startgg (new): %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+client.bearer)
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("unable to query startgg (do): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unable to query startgg (http): %v: %s",
			resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to parse startgg response: %w", err)
	}

	return nil
}

const eventSlugQuery = `
query EventBySlug($slug: String) {
  event(slug: $slug) {
    id
    name
  }
}`

// ResolveEventSlug resolves a human-readable event slug such as
// "tournament/foo-weekly-12/event/melee-singles" to its numeric event id.
func (client *Client) ResolveEventSlug(ctx context.Context,
	slug string) (int64, error) {

	var decoded struct {
		Data struct {
			Event *struct {
				ID   ID     `json:"id"`
				Name string `json:"name"`
			} `json:"event"`
		} `json:"data"`
		Errors []gqlError `json:"errors"`
	}
	err := client.do(ctx, client.cachedClient, eventSlugQuery,
		map[string]any{"slug": slug}, &decoded)
	if err != nil {
		return 0, err
	}
	if len(decoded.Errors) > 0 {
		return 0, fmt.Errorf("startgg slug query failed: %v",
			decoded.Errors[0].Message)
	}
	if decoded.Data.Event == nil {
		return 0, fmt.Errorf("no event found for slug %v", slug)
	}

	id, err := decoded.Data.Event.ID.Int64()
	if err != nil {
		return 0, fmt.Errorf("unable to parse event id for slug %v: %w",
			slug, err)
	}
	return id, nil
}

const eventSetsQuery = `
query EventSets($eventId: ID!, $page: Int!, $perPage: Int!) {
  event(id: $eventId) {
    state
    sets(page: $page, perPage: $perPage, sortType: RECENT) {
      nodes {
        id
        state
        fullRoundText
        phaseGroup {
          displayIdentifier
          phase {
            name
          }
        }
        displayScore
        slots {
          entrant {
            id
            name
          }
        }
      }
    }
  }
}`

// EventSetsPage is one page of an event's sets plus the overall event
// state captured with the same fetch.
type EventSetsPage struct {
	EventState string
	Sets       []Set
}

// EventSets fetches one page of sets for an event, most recent first.
func (client *Client) EventSets(ctx context.Context, eventID int64,
	page, perPage int) (*EventSetsPage, error) {

	var decoded struct {
		Data struct {
			Event *struct {
				State string `json:"state"`
				Sets  struct {
					Nodes []Set `json:"nodes"`
				} `json:"sets"`
			} `json:"event"`
		} `json:"data"`
		Errors []gqlError `json:"errors"`
	}
	err := client.do(ctx, client.httpClient, eventSetsQuery, map[string]any{
		"eventId": eventID,
		"page":    page,
		"perPage": perPage,
	}, &decoded)
	if err != nil {
		return nil, err
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("startgg sets query failed: %v",
			decoded.Errors[0].Message)
	}
	if decoded.Data.Event == nil {
		return nil, fmt.Errorf("no event found for id %v", eventID)
	}

	return &EventSetsPage{
		EventState: decoded.Data.Event.State,
		Sets:       decoded.Data.Event.Sets.Nodes,
	}, nil
}

const entrantsQuery = `
query Entrants($eventId: ID!) {
  event(id: $eventId) {
    name
    entrants(query: { perPage: 500 }) {
      nodes {
        id
        name
        seeds {
          seedNum
        }
      }
    }
  }
}`

// Entrants fetches an event's name and its entrants keyed by entrant id,
// with seed numbers. Entrants missing a seed get UnseededSeed.
func (client *Client) Entrants(ctx context.Context,
	eventID int64) (string, map[ID]SeededEntrant, error) {

	var decoded struct {
		Data struct {
			Event *struct {
				Name     string `json:"name"`
				Entrants struct {
					Nodes []struct {
						ID    ID     `json:"id"`
						Name  string `json:"name"`
						Seeds []struct {
							SeedNum int `json:"seedNum"`
						} `json:"seeds"`
					} `json:"nodes"`
				} `json:"entrants"`
			} `json:"event"`
		} `json:"data"`
		Errors []gqlError `json:"errors"`
	}
	err := client.do(ctx, client.httpClient, entrantsQuery,
		map[string]any{"eventId": eventID}, &decoded)
	if err != nil {
		return "", nil, err
	}
	if len(decoded.Errors) > 0 {
		return "", nil, fmt.Errorf("startgg entrants query failed: %v",
			decoded.Errors[0].Message)
	}
	if decoded.Data.Event == nil {
		return "", nil, fmt.Errorf("no event found for id %v", eventID)
	}

	entrants := make(map[ID]SeededEntrant, len(decoded.Data.Event.Entrants.Nodes))
	for _, node := range decoded.Data.Event.Entrants.Nodes {
		seed := UnseededSeed
		if len(node.Seeds) > 0 {
			seed = node.Seeds[0].SeedNum
		}
		entrants[node.ID] = SeededEntrant{Name: node.Name, Seed: seed}
	}

	return decoded.Data.Event.Name, entrants, nil
}

const eventWinnerSetsQuery = `
query Sets($eventId: ID!) {
  event(id: $eventId) {
    sets(perPage: 500, page: 1) {
      nodes {
        id
        winnerId
        slots {
          entrant { id name }
        }
      }
    }
  }
}`

const phaseGroupWinnerSetsQuery = `
query Sets($phaseGroupId: ID!) {
  phaseGroup(id: $phaseGroupId) {
    sets(perPage: 500, page: 1) {
      nodes {
        id
        winnerId
        slots {
          entrant { id name }
        }
      }
    }
  }
}`

type winnerSetsEnvelope struct {
	Sets struct {
		Nodes []WinnerSet `json:"nodes"`
	} `json:"sets"`
}

// EventWinnerSets fetches decided sets (with winner ids) for an event.
func (client *Client) EventWinnerSets(ctx context.Context,
	eventID int64) ([]WinnerSet, error) {

	var decoded struct {
		Data struct {
			Event *winnerSetsEnvelope `json:"event"`
		} `json:"data"`
		Errors []gqlError `json:"errors"`
	}
	err := client.do(ctx, client.httpClient, eventWinnerSetsQuery,
		map[string]any{"eventId": eventID}, &decoded)
	if err != nil {
		return nil, err
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("startgg sets query failed: %v",
			decoded.Errors[0].Message)
	}
	if decoded.Data.Event == nil {
		return nil, fmt.Errorf("no event found for id %v", eventID)
	}

	return decoded.Data.Event.Sets.Nodes, nil
}

// PhaseGroupWinnerSets fetches decided sets for a single bracket phase
// group.
func (client *Client) PhaseGroupWinnerSets(ctx context.Context,
	phaseGroupID int64) ([]WinnerSet, error) {

	var decoded struct {
		Data struct {
			PhaseGroup *winnerSetsEnvelope `json:"phaseGroup"`
		} `json:"data"`
		Errors []gqlError `json:"errors"`
	}
	err := client.do(ctx, client.httpClient, phaseGroupWinnerSetsQuery,
		map[string]any{"phaseGroupId": phaseGroupID}, &decoded)
	if err != nil {
		return nil, err
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("startgg sets query failed: %v",
			decoded.Errors[0].Message)
	}
	if decoded.Data.PhaseGroup == nil {
		return nil, fmt.Errorf("no phase group found for id %v", phaseGroupID)
	}

	return decoded.Data.PhaseGroup.Sets.Nodes, nil
}
