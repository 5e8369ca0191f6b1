/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"fmt"
	"strings"

	"github.com/ConfusedSammie/MontrealBot/slippi"
)

// Custom emoji ids from the home guild, keyed by emoji name. Rank
// emojis use the spaceless rank name; character emojis use
// "<character>_default".
var emojiIDs = map[string]string{
	"yoshi_default":          "1369555530653368321",
	"young_link_default":     "1369555522386264185",
	"zelda_default":          "1369555542451814431",
	"roy_default":            "1369555500567363584",
	"samus_default":          "1369555507001561149",
	"sheik_default":          "1369555513594875944",
	"peach_default":          "1369555472356474880",
	"pichu_default":          "1369555478472032276",
	"pikachu_default":        "1369555485249765459",
	"mewtwo_default":         "1369555459090157580",
	"game_and_watch_default": "1369555402689085472",
	"ness_default":           "1369555465448718397",
	"luigi_default":          "1369555444087001128",
	"mario_default":          "1369555445953593405",
	"marth_default":          "1369555453423386725",
	"jigglypuff_default":     "1369555493089181736",
	"kirby_default":          "1369555424726093875",
	"link_default":           "1369555431940427837",
	"fox_default":            "1369555388654948423",
	"ganondorf_default":      "1369555396426993815",
	"ice_climbers_default":   "1369555410746347571",
	"bowser_default":         "1369555350998614107",
	"donkey_kong_default":    "1369555358686908466",
	"dr_mario_default":       "1369555366412554311",
	"falco_default":          "1369555374327332895",
	"captain_falcon_default": "1369555381344407663",
	"SILVER1":                "1369526346140876892",
	"SILVER2":                "1369526354726490174",
	"SILVER3":                "1369525983404625960",
	"PLATINUM1":              "1369526324401672283",
	"PLATINUM2":              "1369526331238256731",
	"PLATINUM3":              "1369526338393870396",
	"MASTER1":                "1369526284039749673",
	"MASTER2":                "1369526294555131904",
	"MASTER3":                "1369526302146822246",
	"GOLD1":                  "1369526242684178482",
	"GOLD2":                  "1369526258651893791",
	"GOLD3":                  "1369526265832542268",
	"DIAMOND1":               "1369526216197013534",
	"DIAMOND2":               "1369526223457353849",
	"DIAMOND3":               "1369526231757754422",
	"BRONZE1":                "1369526027327635496",
	"BRONZE2":                "1369526142117347338",
	"BRONZE3":                "1369526209779859548",
	"GRANDMASTER":            "1369526273038225519",
	"NONE":                   "1369526309570740395",
}

// emojiByName returns the inline emoji markup for a named custom emoji,
// or the empty string when the name is unknown.
func emojiByName(name string) string {
	id, ok := emojiIDs[name]
	if !ok {
		return ""
	}
	return fmt.Sprintf("<:%v:%v>", name, id)
}

func rankEmoji(rank slippi.Rank) string {
	name := rank.EmojiName()
	if name == string(slippi.RankUnranked) {
		name = "NONE"
	}
	return emojiByName(name)
}

// characterEmoji maps a Slippi character name to its stock icon emoji.
func characterEmoji(character string) string {
	key := strings.ToLower(character) + "_default"
	if emoji := emojiByName(key); emoji != "" {
		return emoji
	}
	return "❓"
}
