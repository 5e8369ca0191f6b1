/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package slippi

import (
	"math"
	"strings"

	"github.com/ConfusedSammie/MontrealBot/skill"
)

const (
	ordinalScaling = 25.0
	ordinalOffset  = 1100.0
)

// Ordinal converts a rating belief to Slippi's displayed scalar rating:
// 25*(mu - 3*sigma) + 1100. This must match the formula the Slippi
// service publishes, since server-reported ordinals and locally computed
// hypothetical ordinals are compared against each other.
func Ordinal(r skill.Rating) float64 {
	return ordinalScaling*(r.Mu-3*r.Sigma) + ordinalOffset
}

// Rank is a discrete Slippi competitive tier label.
type Rank string

const (
	RankUnranked    Rank = "UNRANKED"
	RankGrandmaster Rank = "GRANDMASTER"
)

// rankTable maps ascending ordinal breakpoints to tiers: an ordinal
// strictly below Max classifies as that row's rank. Grandmaster is a
// placement-gated carve-out handled separately, and Master 3 is the
// catch-all above the table.
var rankTable = []struct {
	Max  float64
	Rank Rank
}{
	{766, "BRONZE 1"},
	{914, "BRONZE 2"},
	{1055, "BRONZE 3"},
	{1189, "SILVER 1"},
	{1316, "SILVER 2"},
	{1436, "SILVER 3"},
	{1549, "GOLD 1"},
	{1654, "GOLD 2"},
	{1752, "GOLD 3"},
	{1843, "PLATINUM 1"},
	{1928, "PLATINUM 2"},
	{2004, "PLATINUM 3"},
	{2074, "DIAMOND 1"},
	{2137, "DIAMOND 2"},
	{2192, "DIAMOND 3"},
}

const (
	grandmasterFloor    = 2192.0
	grandmasterRegional = 100
	grandmasterGlobal   = 300

	master2Floor = 2275.0
	master3Floor = 2350.0
)

// GetRank classifies an ordinal rating into a tier. Above the Diamond 3
// ceiling, Grandmaster requires a daily placement within the regional or
// global threshold; a zero placement means the player is unplaced today
// and never qualifies. Pure function.
func GetRank(ordinal float64, regionalPlacement, globalPlacement int) Rank {
	if math.IsNaN(ordinal) {
		return RankUnranked
	}

	for _, row := range rankTable {
		if ordinal < row.Max {
			return row.Rank
		}
	}

	if (regionalPlacement > 0 && regionalPlacement <= grandmasterRegional) ||
		(globalPlacement > 0 && globalPlacement <= grandmasterGlobal) {
		return RankGrandmaster
	}
	if ordinal < master2Floor {
		return "MASTER 1"
	}
	if ordinal < master3Floor {
		return "MASTER 2"
	}
	return "MASTER 3"
}

// EmojiName returns the rank's name in the guild emoji registry, e.g.
// "BRONZE 1" -> "BRONZE1".
func (r Rank) EmojiName() string {
	return strings.ReplaceAll(string(r), " ", "")
}
