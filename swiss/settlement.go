/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"fmt"
)

// ApplyResults settles a completed round against snap and returns the next
// snapshot. Every board is validated before any ledger row changes, so on
// error nothing has been applied and snap is untouched either way.
//
// The engine does not lock. Callers persisting the result must write the whole
// returned snapshot in one transaction and must not settle the same round
// twice; the round number check below catches the latter for in-process
// callers.
func ApplyResults(snap *Snapshot, cr CompletedRound, cfg Config) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cr.Number != snap.Round()+1 {
		return nil, fmt.Errorf("%w: cannot settle round %d, last completed round is %d",
			ErrDataIntegrity, cr.Number, snap.Round())
	}

	games, bye, err := normalizeRound(snap, cr)
	if err != nil {
		return nil, err
	}

	next := &Snapshot{
		round:        cr.Number,
		participants: snap.Participants(),
		matches:      snap.Matches(),
		index:        make(map[PlayerID]int, len(snap.index)),
	}
	for id, i := range snap.index {
		next.index[id] = i
	}

	for _, g := range games {
		next.matches = append(next.matches, g)
		if !g.Played() {
			continue
		}
		w := next.participant(g.White)
		b := next.participant(g.Black)
		wp, bp := cfg.pointsFor(g.Result)
		w.Score += wp
		b.Score += bp
		w.Opponents = append(w.Opponents, b.ID)
		w.Colors = append(w.Colors, White)
		b.Opponents = append(b.Opponents, w.ID)
		b.Colors = append(b.Colors, Black)
	}
	if bye != NoPlayer {
		p := next.participant(bye)
		p.Score += cfg.ByePoints
		p.Byes = append(p.Byes, cr.Number)
		next.matches = append(next.matches, Match{Round: cr.Number, White: bye,
			Result: ResultBye})
	}
	sortMatches(next.matches)

	return next, nil
}

// normalizeRound validates a completed round and folds any bye expressed as a
// board into the single bye slot.
func normalizeRound(snap *Snapshot, cr CompletedRound) ([]Match, PlayerID, error) {
	seen := make(map[PlayerID]bool)
	mark := func(id PlayerID) error {
		if seen[id] {
			return fmt.Errorf("%w: %v appears more than once in round %d",
				ErrDataIntegrity, id, cr.Number)
		}
		seen[id] = true
		return nil
	}

	bye := cr.Bye
	games := make([]Match, 0, len(cr.Games))
	for _, g := range cr.Games {
		if g.Round == 0 {
			g.Round = cr.Number
		}
		if g.Round != cr.Number {
			return nil, NoPlayer, fmt.Errorf("%w: board %v-%v belongs to round %d, not %d",
				ErrDataIntegrity, g.White, g.Black, g.Round, cr.Number)
		}
		if err := snap.checkMatch(g); err != nil {
			return nil, NoPlayer, err
		}
		if g.IsBye() {
			if bye != NoPlayer && bye != g.White {
				return nil, NoPlayer, fmt.Errorf("%w: round %d has more than one bye",
					ErrDataIntegrity, cr.Number)
			}
			bye = g.White
			continue
		}
		if err := mark(g.White); err != nil {
			return nil, NoPlayer, err
		}
		if err := mark(g.Black); err != nil {
			return nil, NoPlayer, err
		}
		games = append(games, g)
	}
	if bye != NoPlayer {
		if !snap.has(bye) {
			return nil, NoPlayer, fmt.Errorf("%w: round %d bye for unknown participant %v",
				ErrDataIntegrity, cr.Number, bye)
		}
		if err := mark(bye); err != nil {
			return nil, NoPlayer, err
		}
	}

	return games, bye, nil
}
