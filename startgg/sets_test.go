/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package startgg

import (
	"encoding/json"
	"testing"
)

func twoSlotSet(name1, name2, displayScore, round string) Set {
	return Set{
		State:         SetStateComplete,
		FullRoundText: round,
		DisplayScore:  displayScore,
		Slots: []Slot{
			{Entrant: &Entrant{ID: "1", Name: name1}},
			{Entrant: &Entrant{ID: "2", Name: name2}},
		},
	}
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		name    string
		set     Set
		want1   int
		want2   int
		wantErr bool
	}{
		{
			name:  "plain names",
			set:   twoSlotSet("Mango", "Zain", "Mango 3 - Zain 1", "Grand Final"),
			want1: 3,
			want2: 1,
		},
		{
			name:  "sponsored names with spaces",
			set:   twoSlotSet("C9 | Mango", "TSM | Leffen", "C9 | Mango 2 - TSM | Leffen 3", "Winners Final"),
			want1: 2,
			want2: 3,
		},
		{
			name:    "walkover",
			set:     twoSlotSet("Mango", "Zain", "DQ", "Round 1"),
			wantErr: true,
		},
		{
			name:    "non numeric side",
			set:     twoSlotSet("Mango", "Zain", "Mango W - Zain L", "Round 1"),
			wantErr: true,
		},
		{
			name:    "empty",
			set:     twoSlotSet("Mango", "Zain", "", "Round 1"),
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s1, s2, err := tc.set.ParseScore()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d-%d", s1, s2)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s1 != tc.want1 || s2 != tc.want2 {
				t.Fatalf("got %d-%d want %d-%d", s1, s2, tc.want1, tc.want2)
			}
		})
	}
}

func TestResultLine(t *testing.T) {
	set := twoSlotSet("C9 | Mango", "Zain", "C9 | Mango 3 - Zain 2", "Winners Semi-Final")
	line, err := set.ResultLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "**Winners Semi-Final** | Mango 3 - 2 Zain"
	if line != want {
		t.Errorf("got %q want %q", line, want)
	}

	// Pool rounds carry no round prefix.
	set = twoSlotSet("A", "B", "A 2 - B 0", "Round 3")
	line, err = set.ResultLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "A 2 - 0 B" {
		t.Errorf("got %q want %q", line, "A 2 - 0 B")
	}
}

func TestShortName(t *testing.T) {
	cases := map[string]string{
		"TSM | Leffen": "Leffen",
		"Zain":         "Zain",
		"A | B | Plup": "Plup",
		"":             "Unknown",
		"Sponsor | ":   "Unknown",
	}
	for in, want := range cases {
		if got := ShortName(in); got != want {
			t.Errorf("ShortName(%q): got %q want %q", in, got, want)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := EscapeMarkdown("a*b_c|d"); got != `a\*b\_c\|d` {
		t.Errorf("got %q", got)
	}
}

func TestIDUnmarshal(t *testing.T) {
	var s struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal([]byte(`{"id": 12345}`), &s); err != nil {
		t.Fatalf("numeric id: %v", err)
	}
	if n, err := s.ID.Int64(); err != nil || n != 12345 {
		t.Fatalf("numeric id: got %v err %v", n, err)
	}

	if err := json.Unmarshal([]byte(`{"id": "preview_77"}`), &s); err != nil {
		t.Fatalf("string id: %v", err)
	}
	if s.ID != "preview_77" {
		t.Fatalf("string id: got %v", s.ID)
	}
}
