/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package startgg

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SetStateComplete is the set state code for a finished set.
const SetStateComplete = 3

// ID is a start.gg object identifier. The API's GraphQL ID scalar
// serializes numeric ids as numbers or strings depending on the query,
// so both forms are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ID unmarshal: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Int64 converts a numeric ID.
func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// Set is one match in an event bracket.
type Set struct {
	ID            ID          `json:"id"`
	State         int         `json:"state"`
	FullRoundText string      `json:"fullRoundText"`
	PhaseGroup    *PhaseGroup `json:"phaseGroup"`
	DisplayScore  string      `json:"displayScore"`
	Slots         []Slot      `json:"slots"`
}

type PhaseGroup struct {
	DisplayIdentifier string `json:"displayIdentifier"`
	Phase             *Phase `json:"phase"`
}

type Phase struct {
	Name string `json:"name"`
}

type Slot struct {
	Entrant *Entrant `json:"entrant"`
}

type Entrant struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// WinnerSet is the slimmer set shape used for upset analysis.
type WinnerSet struct {
	ID       ID     `json:"id"`
	WinnerID ID     `json:"winnerId"`
	Slots    []Slot `json:"slots"`
}

// PhaseName returns the set's phase name, or a placeholder.
func (s *Set) PhaseName() string {
	if s.PhaseGroup != nil && s.PhaseGroup.Phase != nil &&
		s.PhaseGroup.Phase.Name != "" {
		return s.PhaseGroup.Phase.Name
	}
	return "Unknown Phase"
}

// PoolName returns the set's pool identifier, or a placeholder.
func (s *Set) PoolName() string {
	if s.PhaseGroup != nil && s.PhaseGroup.DisplayIdentifier != "" {
		return s.PhaseGroup.DisplayIdentifier
	}
	return "Unknown Pool"
}

func (s *Set) entrantName(slot int) string {
	if slot < len(s.Slots) && s.Slots[slot].Entrant != nil {
		return s.Slots[slot].Entrant.Name
	}
	return ""
}

// ShortName strips the sponsor prefix from an entrant name:
// "TSM | Leffen" -> "Leffen".
func ShortName(entrantName string) string {
	parts := strings.Split(entrantName, "|")
	name := strings.TrimSpace(parts[len(parts)-1])
	if name == "" {
		return "Unknown"
	}
	return name
}

// ParseScore extracts both entrants' game counts from a displayScore of
// the form "<name1> N - <name2> M". A walkover/DQ or any score that does
// not yield two integers is a parse failure.
func (s *Set) ParseScore() (int, int, error) {
	parts := strings.SplitN(s.DisplayScore, " - ", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unparseable display score %q", s.DisplayScore)
	}

	score1, err := parseSideScore(parts[0], s.entrantName(0))
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable display score %q: %w",
			s.DisplayScore, err)
	}
	score2, err := parseSideScore(parts[1], s.entrantName(1))
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable display score %q: %w",
			s.DisplayScore, err)
	}

	return score1, score2, nil
}

func parseSideScore(side, entrantName string) (int, error) {
	if entrantName != "" {
		side = strings.Replace(side, entrantName, "", 1)
	}
	return strconv.Atoi(strings.TrimSpace(side))
}

var namedRoundRe = regexp.MustCompile(`(?i)^(Winners|Losers|Grand)`)

// ResultLine formats a completed set as one announcement line:
// "**<round>** | <p1> <s1> - <s2> <p2>", the round prefix only for
// bracket rounds (Winners/Losers/Grands).
func (s *Set) ResultLine() (string, error) {
	score1, score2, err := s.ParseScore()
	if err != nil {
		return "", err
	}

	player1 := EscapeMarkdown(ShortName(s.entrantName(0)))
	player2 := EscapeMarkdown(ShortName(s.entrantName(1)))

	line := fmt.Sprintf("%s %d - %d %s", player1, score1, score2, player2)
	if namedRoundRe.MatchString(s.FullRoundText) {
		line = fmt.Sprintf("**%s** | %s", s.FullRoundText, line)
	}

	return line, nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"|", `\|`,
	">", `\>`,
	"#", `\#`,
)

// EscapeMarkdown escapes Discord markdown metacharacters in player names.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
