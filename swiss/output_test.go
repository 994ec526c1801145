/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func TestBuildPairingsOutput(t *testing.T) {
	ps := []Participant{
		{ID: "a", Name: "Alice Alekhine", Rating: 1850, Score: 1.5, Active: true},
		{ID: "b", Name: "Bob Botvinnik", Rating: 1720, Score: 1.5, Active: true},
		{ID: "c", Name: "Carol Capablanca", Score: 0.5, Active: true},
	}
	snap := mustSnapshot(t, ps, nil)
	rp := &RoundPairings{
		Round:    3,
		Pairings: []Pairing{{Board: 1, White: "b", Black: "a"}},
		Bye:      "c",
	}

	out := BuildPairingsOutput(snap, rp)
	for _, want := range []string{
		"Round 3 Pairings:",
		"Bob Botvinnik(1720 1½)",
		"Alice Alekhine(1850 1½)",
		"Carol Capablanca(unrated ½)",
		"BYE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[2], "Board") || !strings.HasPrefix(lines[3], "1.") {
		t.Errorf("unexpected table layout:\n%s", out)
	}

	empty := BuildPairingsOutput(snap, &RoundPairings{Round: 4})
	if !strings.Contains(empty, "No pairings") {
		t.Errorf("unexpected empty output %q", empty)
	}
}

func sampleStandings() []Standing {
	return []Standing{
		{Rank: 1, ID: "a", Name: "Alice", Rating: 1850, Score: 2.5, Active: true,
			Tiebreaks: []TiebreakValue{{Kind: Buchholz, Value: 4.5},
				{Kind: SonnebornBerger, Value: 3.25}},
			Performance: intPtr(1960), PreviousRank: 2, RankDelta: 1},
		{Rank: 1, ID: "b", Name: "Bob", Rating: 1720, Score: 2.5, Active: true,
			Tiebreaks: []TiebreakValue{{Kind: Buchholz, Value: 4.5},
				{Kind: SonnebornBerger, Value: 3.25}},
			Performance: intPtr(1900), PreviousRank: 1, RankDelta: 0},
		{Rank: 3, ID: "c", Name: "Carol", Score: 0, Active: false,
			Tiebreaks: []TiebreakValue{{Kind: Buchholz, Value: 5},
				{Kind: SonnebornBerger, Value: 0}}},
	}
}

func TestBuildStandingsOutput(t *testing.T) {
	cascade := []TiebreakKind{Buchholz, SonnebornBerger}
	out := BuildStandingsOutput(3, sampleStandings(), cascade)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "Standings after Round 3:" {
		t.Errorf("unexpected title %q", lines[0])
	}
	header := lines[2]
	for _, col := range []string{"Place", "Name", "Score", "Buch", "S-B", "Perf", "+/-"} {
		if !strings.Contains(header, col) {
			t.Errorf("header missing %q: %q", col, header)
		}
	}
	if !strings.HasPrefix(lines[3], "1.") || !strings.Contains(lines[3], "+1") {
		t.Errorf("unexpected first row %q", lines[3])
	}
	// a shared rank is printed once
	if strings.HasPrefix(lines[4], "1.") {
		t.Errorf("tied rank repeated: %q", lines[4])
	}
	if !strings.Contains(lines[5], "3.") || !strings.Contains(lines[5], "(w/d)") {
		t.Errorf("unexpected last row %q", lines[5])
	}
	if !strings.Contains(lines[3], "2½") {
		t.Errorf("score not rendered with ½: %q", lines[3])
	}

	if BuildStandingsOutput(1, nil, cascade) != "No standings available\n" {
		t.Errorf("unexpected empty output")
	}
}

func TestWriteStandingsCSV(t *testing.T) {
	var buf bytes.Buffer
	cascade := []TiebreakKind{Buchholz, SonnebornBerger}
	if err := WriteStandingsCSV(&buf, sampleStandings(), cascade); err != nil {
		t.Fatalf("WriteStandingsCSV: %v", err)
	}

	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv read: %v", err)
	}
	want := [][]string{
		{"Rank", "Name", "Rating", "Score", "Buchholz", "Sonneborn-Berger", "Performance"},
		{"1", "Alice", "1850", "2.5", "4.5", "3.25", "1960"},
		{"1", "Bob", "1720", "2.5", "4.5", "3.25", "1900"},
		{"3", "Carol", "", "0", "5", "0", ""},
	}
	if len(recs) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(recs))
	}
	for i := range want {
		if strings.Join(recs[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("record %d: got %v want %v", i, recs[i], want[i])
		}
	}
}
