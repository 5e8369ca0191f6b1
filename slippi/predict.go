/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package slippi

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ConfusedSammie/MontrealBot/skill"
)

// predictOpts are the production update options: tau models day-to-day
// drift, and both sigma guards are on because the update is a what-if
// calculator — a simulated match must never inflate uncertainty.
var predictOpts = skill.Options{
	Tau:                  0.3,
	LimitSigma:           true,
	PreventSigmaIncrease: true,
}

// Prediction is the hypothetical outcome of a ranked set between two
// players, computed from their current public ratings.
type Prediction struct {
	Player          string
	Opponent        string
	PlayerOrdinal   float64
	OpponentOrdinal float64

	CurrentRank  Rank
	WinRank      Rank
	LossRank     Rank
	OpponentRank Rank

	// DeltaWin >= 0 >= DeltaLoss under the sigma guards; raw, unclamped.
	DeltaWin  float64
	DeltaLoss float64
}

// Promotes reports whether winning would change the player's tier.
func (p *Prediction) Promotes() bool {
	return p.WinRank != p.CurrentRank
}

// Demotes reports whether losing would change the player's tier.
func (p *Prediction) Demotes() bool {
	return p.LossRank != p.CurrentRank
}

// Predict fetches both profiles and computes the player's hypothetical
// post-win and post-loss ratings. Both fetches run concurrently; the
// first failure aborts the prediction and is returned as-is, so callers
// can distinguish ErrProfileNotFound from transport faults.
func (client *Client) Predict(ctx context.Context,
	playerTag, opponentTag string) (*Prediction, error) {

	var player, opponent *Profile

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := client.FetchProfile(gctx, playerTag)
		if err != nil {
			return err
		}
		player = p
		return nil
	})
	g.Go(func() error {
		p, err := client.FetchProfile(gctx, opponentTag)
		if err != nil {
			return err
		}
		opponent = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	playerRating := skill.Rating{Mu: player.Mu, Sigma: player.Sigma}
	opponentRating := skill.Rating{Mu: opponent.Mu, Sigma: opponent.Sigma}

	// Two independent one-shot updates from the same pre-match ratings;
	// the win outcome is never chained into the loss outcome.
	win, _ := skill.Rate1v1(playerRating, opponentRating, predictOpts)
	_, loss := skill.Rate1v1(opponentRating, playerRating, predictOpts)

	winOrdinal := Ordinal(win)
	lossOrdinal := Ordinal(loss)

	return &Prediction{
		Player:          player.Name,
		Opponent:        opponent.Name,
		PlayerOrdinal:   player.Ordinal,
		OpponentOrdinal: opponent.Ordinal,
		CurrentRank: GetRank(player.Ordinal,
			player.RegionalPlacement, player.GlobalPlacement),
		WinRank: GetRank(winOrdinal,
			player.RegionalPlacement, player.GlobalPlacement),
		LossRank: GetRank(lossOrdinal,
			player.RegionalPlacement, player.GlobalPlacement),
		OpponentRank: opponent.Rank(),
		DeltaWin:     winOrdinal - player.Ordinal,
		DeltaLoss:    lossOrdinal - player.Ordinal,
	}, nil
}
