/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package startgg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ConfusedSammie/MontrealBot/internal/webcache"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	client := &Client{
		apiURL:       ts.URL,
		bearer:       "test-token",
		httpClient:   ts.Client(),
		cachedClient: ts.Client(),
	}
	return client, ts
}

func TestResolveEventSlug(t *testing.T) {
	var gotAuth string
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("unable to decode request: %v", err)
		}
		if req.Variables["slug"] != "tournament/weekly-12/event/melee-singles" {
			t.Errorf("unexpected slug variable: %v", req.Variables["slug"])
		}

		w.Write([]byte(`{"data":{"event":{"id":123456,"name":"Melee Singles"}}}`))
	})
	defer ts.Close()

	id, err := client.ResolveEventSlug(context.Background(),
		"tournament/weekly-12/event/melee-singles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 123456 {
		t.Errorf("got id %v want 123456", id)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("got auth header %q", gotAuth)
	}
}

func TestResolveEventSlugCached(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			hits++
			var req gqlRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("unable to decode request: %v", err)
			}
			w.Write([]byte(`{"data":{"event":{"id":777,"name":"Melee Singles"}}}`))
		}))
	defer ts.Close()

	// Resolve through the same cached client production builds; the
	// GraphQL POST must come back from the cache on repeat lookups.
	client := &Client{
		apiURL:     ts.URL,
		bearer:     "test-token",
		httpClient: ts.Client(),
		cachedClient: webcache.NewClient(context.Background(), "",
			time.Hour, nil),
	}

	for i := 0; i < 3; i++ {
		id, err := client.ResolveEventSlug(context.Background(),
			"tournament/weekly-12/event/melee-singles")
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if id != 777 {
			t.Errorf("resolve %d: got id %v want 777", i, id)
		}
	}
	if hits != 1 {
		t.Errorf("origin hit %d times for one slug; want 1", hits)
	}

	// Distinct slugs must not collide on a cache entry.
	if _, err := client.ResolveEventSlug(context.Background(),
		"tournament/weekly-13/event/melee-singles"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 2 {
		t.Errorf("origin hit %d times for two slugs; want 2", hits)
	}
}

func TestResolveEventSlugNotFound(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"event":null}}`))
	})
	defer ts.Close()

	_, err := client.ResolveEventSlug(context.Background(),
		"tournament/nope/event/nope")
	if err == nil {
		t.Fatal("expected error for unknown slug")
	}
}

func TestEventSetsPagination(t *testing.T) {
	pages := map[float64]string{
		1: `{"data":{"event":{"state":"ACTIVE","sets":{"nodes":[
			{"id":"11","state":3,"fullRoundText":"Round 1",
			 "displayScore":"A 2 - B 0",
			 "phaseGroup":{"displayIdentifier":"A1","phase":{"name":"Bracket Pools"}},
			 "slots":[{"entrant":{"id":"1","name":"A"}},
			          {"entrant":{"id":"2","name":"B"}}]}]}}}}`,
		2: `{"data":{"event":{"state":"ACTIVE","sets":{"nodes":[]}}}}`,
	}
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("unable to decode request: %v", err)
		}
		page, _ := req.Variables["page"].(float64)
		w.Write([]byte(pages[page]))
	})
	defer ts.Close()

	page1, err := client.EventSets(context.Background(), 123456, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page1.EventState != "ACTIVE" {
		t.Errorf("got event state %q", page1.EventState)
	}
	if len(page1.Sets) != 1 {
		t.Fatalf("got %v sets want 1", len(page1.Sets))
	}
	set := page1.Sets[0]
	if set.PhaseName() != "Bracket Pools" || set.PoolName() != "A1" {
		t.Errorf("got phase %q pool %q", set.PhaseName(), set.PoolName())
	}

	page2, err := client.EventSets(context.Background(), 123456, 2, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page2.Sets) != 0 {
		t.Errorf("got %v sets on empty page", len(page2.Sets))
	}
}

func TestEntrants(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"event":{"name":"Melee Singles",
			"entrants":{"nodes":[
			{"id":"1","name":"C9 | Mango","seeds":[{"seedNum":1}]},
			{"id":"2","name":"Newcomer","seeds":[]}]}}}}`))
	})
	defer ts.Close()

	name, entrants, err := client.Entrants(context.Background(), 123456)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Melee Singles" {
		t.Errorf("got event name %q", name)
	}
	if entrants["1"].Seed != 1 {
		t.Errorf("got seed %v want 1", entrants["1"].Seed)
	}
	if entrants["2"].Seed != UnseededSeed {
		t.Errorf("got seed %v want %v for unseeded entrant",
			entrants["2"].Seed, UnseededSeed)
	}
}

func TestWinnerSetsDispatch(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("unable to decode request: %v", err)
		}
		payload := `{"sets":{"nodes":[{"id":"5","winnerId":"2",
			"slots":[{"entrant":{"id":"1","name":"A"}},
			         {"entrant":{"id":"2","name":"B"}}]}]}}`
		if strings.Contains(req.Query, "phaseGroup(") {
			w.Write([]byte(`{"data":{"phaseGroup":` + payload + `}}`))
		} else {
			w.Write([]byte(`{"data":{"event":` + payload + `}}`))
		}
	})
	defer ts.Close()

	for _, fetch := range []func() ([]WinnerSet, error){
		func() ([]WinnerSet, error) {
			return client.EventWinnerSets(context.Background(), 123456)
		},
		func() ([]WinnerSet, error) {
			return client.PhaseGroupWinnerSets(context.Background(), 777)
		},
	} {
		sets, err := fetch()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sets) != 1 || sets[0].WinnerID != "2" {
			t.Fatalf("unexpected sets: %+v", sets)
		}
	}
}

func TestGraphQLErrorSurface(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"rate limited"}]}`))
	})
	defer ts.Close()

	_, err := client.EventSets(context.Background(), 123456, 1, 20)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected surfaced graphql error, got %v", err)
	}
}

func TestHTTPErrorSurface(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	})
	defer ts.Close()

	_, err := client.ResolveEventSlug(context.Background(),
		"tournament/t/event/e")
	if err == nil {
		t.Fatal("expected error on http 503")
	}
	var gerr *json.SyntaxError
	if errors.As(err, &gerr) {
		t.Fatalf("http status error should not be a decode error: %v", err)
	}
}
