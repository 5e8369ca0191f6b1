/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package slippi queries the Slippi ranked netplay GraphQL gateway for
// player profiles and computes hypothetical rating changes.
package slippi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ConfusedSammie/MontrealBot/internal"
)

// DefaultAPIURL is the production Slippi GraphQL gateway.
const DefaultAPIURL = "https://gql-gateway-dot-slippi.uc.r.appspot.com/graphql"

// ErrProfileNotFound indicates the tag has no ranked profile (new or
// unranked player). User-correctable; never a system fault.
var ErrProfileNotFound = errors.New("ranked profile not found")

type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient returns a Slippi client. Profile fetches are intentionally
// uncached: every prediction and leaderboard row wants the current
// rating, not a snapshot.
func NewClient(apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL:     apiURL,
		httpClient: http.DefaultClient,
	}
}

// Profile is a player's current ranked standing.
type Profile struct {
	Name              string
	Mu                float64
	Sigma             float64
	Ordinal           float64
	RegionalPlacement int
	GlobalPlacement   int
	Wins              int
	Losses            int
	Characters        []string
}

const profileQuery = `
query ConnectCodeProfile($code: String!) {
  getConnectCode(code: $code) {
    user {
      displayName
      rankedNetplayProfile {
        ratingMu
        ratingSigma
        ratingOrdinal
        dailyRegionalPlacement
        dailyGlobalPlacement
        wins
        losses
        characters {
          character
        }
      }
    }
  }
}`

type profileResponse struct {
	Data struct {
		GetConnectCode *struct {
			User *struct {
				DisplayName          string `json:"displayName"`
				RankedNetplayProfile *struct {
					RatingMu               float64 `json:"ratingMu"`
					RatingSigma            float64 `json:"ratingSigma"`
					RatingOrdinal          float64 `json:"ratingOrdinal"`
					DailyRegionalPlacement int     `json:"dailyRegionalPlacement"`
					DailyGlobalPlacement   int     `json:"dailyGlobalPlacement"`
					Wins                   int     `json:"wins"`
					Losses                 int     `json:"losses"`
					Characters             []struct {
						Character string `json:"character"`
					} `json:"characters"`
				} `json:"rankedNetplayProfile"`
			} `json:"user"`
		} `json:"getConnectCode"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NormalizeTag uppercases a connect code for lookup; tags are
// case-insensitive and the dash form TAG-000 is accepted as TAG#000.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.Replace(tag, "-", "#", 1))
}

// FetchProfile retrieves the current ranked profile for a connect code
// such as "MEOW#83". Returns ErrProfileNotFound when the service reports
// no ranked profile for the tag.
func (client *Client) FetchProfile(ctx context.Context,
	tag string) (*Profile, error) {

	tag = NormalizeTag(tag)

	payload, err := json.Marshal(map[string]any{
		"query":     profileQuery,
		"variables": map[string]any{"code": tag},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch slippi profile (marshal): %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", client.apiURL,
		bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("unable to fetch slippi profile (new): %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch slippi profile (do): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unable to fetch slippi profile (http): %v: %s",
			resp.StatusCode, body)
	}

	var decoded profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("unable to parse slippi profile: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("slippi profile query failed: %v",
			decoded.Errors[0].Message)
	}

	cc := decoded.Data.GetConnectCode
	if cc == nil || cc.User == nil || cc.User.RankedNetplayProfile == nil {
		return nil, fmt.Errorf("%w for %v", ErrProfileNotFound, tag)
	}

	rp := cc.User.RankedNetplayProfile
	profile := &Profile{
		Name:              cc.User.DisplayName,
		Mu:                rp.RatingMu,
		Sigma:             rp.RatingSigma,
		Ordinal:           rp.RatingOrdinal,
		RegionalPlacement: rp.DailyRegionalPlacement,
		GlobalPlacement:   rp.DailyGlobalPlacement,
		Wins:              rp.Wins,
		Losses:            rp.Losses,
	}
	for _, c := range rp.Characters {
		profile.Characters = append(profile.Characters, c.Character)
	}

	return profile, nil
}

// Rank classifies the profile's current ordinal using its own daily
// placements.
func (p *Profile) Rank() Rank {
	return GetRank(p.Ordinal, p.RegionalPlacement, p.GlobalPlacement)
}
