/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"fmt"
	"testing"
)

// roster returns n active participants p01..pNN with distinct ratings in
// descending order.
func roster(n int) []Participant {
	ps := make([]Participant, 0, n)
	for i := 0; i < n; i++ {
		ps = append(ps, Participant{
			ID:     PlayerID(fmt.Sprintf("p%02d", i+1)),
			Name:   fmt.Sprintf("Player %d", i+1),
			Rating: 2300 - 37*i,
			Active: true,
		})
	}
	return ps
}

// decide is a deterministic stand-in for playing a game: the higher rated
// side wins unless the ratings are close, which is a draw.
func decide(snap *Snapshot, w, b PlayerID) Result {
	pw, _ := snap.Participant(w)
	pb, _ := snap.Participant(b)
	diff := pw.Rating - pb.Rating
	switch {
	case diff >= 60:
		return ResultWhiteWin
	case diff <= -60:
		return ResultBlackWin
	}
	return ResultDraw
}

func mustSnapshot(t *testing.T, ps []Participant, history []Match) *Snapshot {
	t.Helper()
	snap, err := BuildSnapshot(ps, history)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	return snap
}

// playRound pairs and settles one round.
func playRound(t *testing.T, snap *Snapshot, cfg Config) (*Snapshot, *RoundPairings) {
	t.Helper()
	rp, err := Pair(snap, cfg)
	if err != nil {
		t.Fatalf("Pair round %d: %v", snap.Round()+1, err)
	}
	cr := CompletedRound{Number: rp.Round, Bye: rp.Bye}
	for _, p := range rp.Pairings {
		cr.Games = append(cr.Games, Match{Round: rp.Round, Board: p.Board,
			White: p.White, Black: p.Black, Result: decide(snap, p.White, p.Black)})
	}
	next, err := ApplyResults(snap, cr, cfg)
	if err != nil {
		t.Fatalf("ApplyResults round %d: %v", rp.Round, err)
	}
	return next, rp
}
