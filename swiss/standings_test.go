/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"errors"
	"testing"
)

func intPtr(v int) *int {
	return &v
}

func TestStandingsSharedRankSkipsPosition(t *testing.T) {
	ps := []Participant{
		{ID: "c", Score: 1, Rating: 1500, Active: true},
		{ID: "b", Score: 2, Rating: 1500, Active: true},
		{ID: "a", Score: 2, Rating: 1500, Active: true},
		{ID: "d", Score: 0.5, Rating: 1500, Active: true},
	}
	snap := mustSnapshot(t, ps, nil)
	tb := map[PlayerID]TiebreakSet{
		"a": {Buchholz: 3, SonnebornBerger: 2},
		"b": {Buchholz: 3, SonnebornBerger: 2},
		"c": {Buchholz: 5, SonnebornBerger: 4},
		"d": {Buchholz: 1},
	}

	st, err := BuildStandings(snap, tb, []TiebreakKind{Buchholz, SonnebornBerger}, nil)
	if err != nil {
		t.Fatalf("BuildStandings: %v", err)
	}
	wantIDs := []PlayerID{"a", "b", "c", "d"}
	wantRanks := []int{1, 1, 3, 4}
	for i := range st {
		if st[i].ID != wantIDs[i] || st[i].Rank != wantRanks[i] {
			t.Errorf("position %d: got %v rank %d, want %v rank %d", i,
				st[i].ID, st[i].Rank, wantIDs[i], wantRanks[i])
		}
		if st[i].PreviousRank != 0 || st[i].RankDelta != 0 {
			t.Errorf("%v: delta without previous standings", st[i].ID)
		}
	}
	if len(st[0].Tiebreaks) != 2 || st[0].Tiebreaks[0].Kind != Buchholz ||
		st[0].Tiebreaks[0].Value != 3 {
		t.Errorf("unexpected tiebreak values %+v", st[0].Tiebreaks)
	}
}

func TestStandingsCascadeOrder(t *testing.T) {
	ps := []Participant{
		{ID: "a", Score: 2, Active: true},
		{ID: "b", Score: 2, Active: true},
	}
	snap := mustSnapshot(t, ps, nil)
	tb := map[PlayerID]TiebreakSet{
		"a": {Buchholz: 4, SonnebornBerger: 1},
		"b": {Buchholz: 3, SonnebornBerger: 2},
	}

	st, err := BuildStandings(snap, tb, []TiebreakKind{Buchholz, SonnebornBerger}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st[0].ID != "a" || st[1].Rank != 2 {
		t.Errorf("Buchholz first: got %v", st)
	}

	st, err = BuildStandings(snap, tb, []TiebreakKind{SonnebornBerger, Buchholz}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st[0].ID != "b" || st[1].Rank != 2 {
		t.Errorf("Sonneborn-Berger first: got %v", st)
	}

	// no cascade: tied on score, ordered by id
	st, err = BuildStandings(snap, tb, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st[0].ID != "a" || st[0].Rank != 1 || st[1].Rank != 1 {
		t.Errorf("no cascade: got %v", st)
	}
}

func TestStandingsAbsentPerformanceRanksLast(t *testing.T) {
	ps := []Participant{
		{ID: "a", Score: 1, Active: true},
		{ID: "b", Score: 1, Active: true},
		{ID: "c", Score: 1, Active: true},
	}
	snap := mustSnapshot(t, ps, nil)
	tb := map[PlayerID]TiebreakSet{
		"a": {},
		"b": {Performance: intPtr(1200)},
		"c": {Performance: intPtr(1400)},
	}
	st, err := BuildStandings(snap, tb, []TiebreakKind{Performance}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st[0].ID != "c" || st[1].ID != "b" || st[2].ID != "a" {
		t.Errorf("unexpected order %v %v %v", st[0].ID, st[1].ID, st[2].ID)
	}
	if !st[2].Tiebreaks[0].Absent || st[2].Performance != nil {
		t.Errorf("absent performance not flagged: %+v", st[2])
	}
	if st[0].Performance == nil || *st[0].Performance != 1400 {
		t.Errorf("performance not carried: %+v", st[0])
	}
}

func TestStandingsRankDelta(t *testing.T) {
	ps := []Participant{
		{ID: "a", Score: 1, Active: true},
		{ID: "b", Score: 2, Active: true},
		{ID: "c", Score: 0, Active: true},
		{ID: "late", Score: 0.5, Active: true},
	}
	previous := []Standing{
		{Rank: 1, ID: "a"},
		{Rank: 2, ID: "b"},
		{Rank: 3, ID: "c"},
	}
	st, err := BuildStandings(mustSnapshot(t, ps, nil), nil, nil, previous)
	if err != nil {
		t.Fatal(err)
	}
	want := map[PlayerID]struct{ prev, delta int }{
		"b":    {2, 1},
		"a":    {1, -1},
		"late": {0, 0},
		"c":    {3, -1},
	}
	for _, s := range st {
		w := want[s.ID]
		if s.PreviousRank != w.prev || s.RankDelta != w.delta {
			t.Errorf("%v: prev %d delta %d, want %d %d", s.ID, s.PreviousRank,
				s.RankDelta, w.prev, w.delta)
		}
	}
}

func TestStandingsRejectsUnknownKind(t *testing.T) {
	snap := mustSnapshot(t, roster(2), nil)
	_, err := BuildStandings(snap, nil, []TiebreakKind{"KOYA"}, nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestStandingsIncludesWithdrawn(t *testing.T) {
	ps := roster(3)
	ps[1].Active = false
	st, err := BuildStandings(mustSnapshot(t, ps, nil), nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(st) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(st))
	}
	for _, s := range st {
		if s.ID == "p02" && s.Active {
			t.Errorf("withdrawn participant reported active")
		}
	}
}

// dominates reports whether a is at least as good as b on score and every
// cascade value, and strictly better on at least one.
func dominates(a, b Standing) bool {
	strict := false
	if a.Score < b.Score {
		return false
	}
	if a.Score > b.Score {
		strict = true
	}
	for i := range a.Tiebreaks {
		av, bv := a.Tiebreaks[i], b.Tiebreaks[i]
		if av.Absent && !bv.Absent {
			return false
		}
		if !av.Absent && bv.Absent {
			strict = true
			continue
		}
		if av.Value < bv.Value {
			return false
		}
		if av.Value > bv.Value {
			strict = true
		}
	}
	return strict
}

func TestStandingsRankMonotonicity(t *testing.T) {
	cfg := DefaultConfig()
	cascade := []TiebreakKind{Buchholz, SonnebornBerger, MedianBuchholz,
		Cumulative, Progressive, Performance}
	snap := mustSnapshot(t, roster(12), nil)

	for r := 1; r <= 5; r++ {
		snap, _ = playRound(t, snap, cfg)
		tb, err := ComputeTiebreaks(snap, nil, cfg)
		if err != nil {
			t.Fatal(err)
		}
		st, err := BuildStandings(snap, tb, cascade, nil)
		if err != nil {
			t.Fatal(err)
		}
		for i := range st {
			if i > 0 && st[i].Rank < st[i-1].Rank {
				t.Errorf("round %d: ranks decrease at %d", r, i)
			}
			for j := range st {
				if dominates(st[i], st[j]) && st[i].Rank > st[j].Rank {
					t.Errorf("round %d: %v dominates %v but ranks %d > %d", r,
						st[i].ID, st[j].ID, st[i].Rank, st[j].Rank)
				}
			}
		}
	}
}
