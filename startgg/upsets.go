/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package startgg

// UnseededSeed sorts entrants without a seed number behind everyone.
const UnseededSeed = 9999

// BigUpsetDifferential is the seed gap that flags an upset as notable.
const BigUpsetDifferential = 20

// SeededEntrant is an event entrant with bracket seed.
type SeededEntrant struct {
	Name string
	Seed int
}

// Upset is a decided set won by the worse-seeded entrant.
type Upset struct {
	WinnerName string
	WinnerSeed int
	LoserName  string
	LoserSeed  int
}

// Differential returns the seed gap covered by the winner.
func (u Upset) Differential() int {
	return u.WinnerSeed - u.LoserSeed
}

// Big reports whether the upset crosses the notable threshold.
func (u Upset) Big() bool {
	return u.Differential() >= BigUpsetDifferential
}

// ComputeUpsets scans decided sets against the seeding and returns every
// set won by the worse seed, in input order. Sets with a missing
// entrant, an unknown winner, or entrants absent from the seeding are
// skipped.
func ComputeUpsets(entrants map[ID]SeededEntrant, sets []WinnerSet) []Upset {
	var upsets []Upset

	for _, set := range sets {
		if len(set.Slots) < 2 ||
			set.Slots[0].Entrant == nil || set.Slots[1].Entrant == nil {
			continue
		}

		p1, ok1 := entrants[set.Slots[0].Entrant.ID]
		p2, ok2 := entrants[set.Slots[1].Entrant.ID]
		winner, okW := entrants[set.WinnerID]
		if !ok1 || !ok2 || !okW {
			continue
		}

		loser := p1
		if set.WinnerID == set.Slots[0].Entrant.ID {
			loser = p2
		}

		if winner.Seed > loser.Seed {
			upsets = append(upsets, Upset{
				WinnerName: winner.Name,
				WinnerSeed: winner.Seed,
				LoserName:  loser.Name,
				LoserSeed:  loser.Seed,
			})
		}
	}

	return upsets
}
