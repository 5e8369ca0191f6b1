/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package skill implements the two-team Plackett-Luce Bayesian rating
// update used by Slippi ranked netplay (the openskill family of models).
// Only the pairwise (two team) case is supported; that is the only shape
// the bot ever rates.
package skill

import "math"

const (
	// DefaultMu and DefaultSigma are the prior belief for a player with
	// no ranked history.
	DefaultMu    = 25.0
	DefaultSigma = 25.0 / 3.0

	beta  = 25.0 / 6.0
	kappa = 1e-4
)

// Rating is a player's skill belief distribution: mean and uncertainty.
type Rating struct {
	Mu    float64
	Sigma float64
}

// NewRating returns the prior rating for an unrated player.
func NewRating() Rating {
	return Rating{Mu: DefaultMu, Sigma: DefaultSigma}
}

// Options control a single rating update.
type Options struct {
	// Tau inflates each player's sigma by sqrt(sigma^2 + tau^2) before
	// the update, modelling skill drift between games.
	Tau float64

	// LimitSigma caps the posterior sigma at the pre-update value, so
	// tau inflation alone cannot raise a player's uncertainty.
	LimitSigma bool

	// PreventSigmaIncrease refuses any sigma increase update-over-update.
	// Together with LimitSigma this makes the update safe to use as a
	// pure what-if calculator: a simulated game can never make a rating
	// less certain.
	PreventSigmaIncrease bool
}

// Rate computes the posterior ratings for a two-team game. The first
// team won. Team ratings are never mutated; fresh slices are returned in
// the same member order.
func Rate(winners, losers []Rating, opts Options) ([]Rating, []Rating) {
	w := inflate(winners, opts.Tau)
	l := inflate(losers, opts.Tau)

	muW, ssW := teamAggregate(w)
	muL, ssL := teamAggregate(l)

	c := math.Sqrt(ssW + ssL + 2*beta*beta)
	expW := math.Exp(muW / c)
	expL := math.Exp(muL / c)

	// Winner team only sums over itself (no team placed ahead of it).
	qw := expW / (expW + expL)
	omegaW := (1 - qw) * ssW / c
	deltaW := qw * (1 - qw) * ssW / (c * c) * math.Sqrt(ssW) / c

	// Loser team sums over the winner's placing and its own; the own
	// term's quotient is exactly 1 and contributes nothing.
	ql := expL / (expW + expL)
	omegaL := -ql * ssL / c
	deltaL := ql * (1 - ql) * ssL / (c * c) * math.Sqrt(ssL) / c

	outW := applyTeam(w, ssW, omegaW, deltaW)
	outL := applyTeam(l, ssL, omegaL, deltaL)

	if opts.LimitSigma || opts.PreventSigmaIncrease {
		clampSigma(outW, winners)
		clampSigma(outL, losers)
	}

	return outW, outL
}

// Rate1v1 is the singles convenience wrapper: winner first.
func Rate1v1(winner, loser Rating, opts Options) (Rating, Rating) {
	w, l := Rate([]Rating{winner}, []Rating{loser}, opts)
	return w[0], l[0]
}

func inflate(team []Rating, tau float64) []Rating {
	out := make([]Rating, len(team))
	copy(out, team)
	if tau <= 0 {
		return out
	}
	tauSq := tau * tau
	for i := range out {
		out[i].Sigma = math.Sqrt(out[i].Sigma*out[i].Sigma + tauSq)
	}
	return out
}

func teamAggregate(team []Rating) (mu float64, sigmaSq float64) {
	for _, r := range team {
		mu += r.Mu
		sigmaSq += r.Sigma * r.Sigma
	}
	return mu, sigmaSq
}

func applyTeam(team []Rating, teamSigmaSq, omega, delta float64) []Rating {
	out := make([]Rating, len(team))
	for i, r := range team {
		sigmaSq := r.Sigma * r.Sigma
		out[i].Mu = r.Mu + sigmaSq/teamSigmaSq*omega
		out[i].Sigma = r.Sigma *
			math.Sqrt(math.Max(1-sigmaSq/teamSigmaSq*delta, kappa))
	}
	return out
}

func clampSigma(out []Rating, original []Rating) {
	for i := range out {
		if out[i].Sigma > original[i].Sigma {
			out[i].Sigma = original[i].Sigma
		}
	}
}
