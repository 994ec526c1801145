/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"fmt"
	"sort"
)

// Snapshot is the score ledger plus the full match history as of the start of
// a round. It is never mutated once built; accessors hand out copies and
// settlement produces a new Snapshot.
type Snapshot struct {
	round        int
	participants []Participant
	matches      []Match
	index        map[PlayerID]int
}

// BuildSnapshot validates the collaborator-supplied ledger rows and history
// and freezes them into a Snapshot. Byes recorded in history are merged into
// the recipients' Byes so eligibility holds even when the rows omit them.
func BuildSnapshot(participants []Participant, history []Match) (*Snapshot, error) {
	snap := &Snapshot{
		participants: make([]Participant, 0, len(participants)),
		matches:      make([]Match, 0, len(history)),
		index:        make(map[PlayerID]int, len(participants)),
	}

	for _, p := range participants {
		if p.ID == NoPlayer {
			return nil, fmt.Errorf("%w: participant with empty id", ErrDataIntegrity)
		}
		if _, dup := snap.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate participant %v",
				ErrDataIntegrity, p.ID)
		}
		if p.Score < 0 {
			return nil, fmt.Errorf("%w: participant %v has negative score %v",
				ErrDataIntegrity, p.ID, p.Score)
		}
		if len(p.Opponents) != len(p.Colors) {
			return nil, fmt.Errorf("%w: participant %v has %d opponents but %d colors",
				ErrDataIntegrity, p.ID, len(p.Opponents), len(p.Colors))
		}
		snap.index[p.ID] = len(snap.participants)
		snap.participants = append(snap.participants, p.clone())
	}

	for _, p := range snap.participants {
		for _, o := range p.Opponents {
			if o == p.ID {
				return nil, fmt.Errorf("%w: participant %v lists itself as an opponent",
					ErrDataIntegrity, p.ID)
			}
			if _, ok := snap.index[o]; !ok {
				return nil, fmt.Errorf("%w: participant %v has unknown opponent %v",
					ErrDataIntegrity, p.ID, o)
			}
		}
		for _, r := range p.Byes {
			if r > snap.round {
				snap.round = r
			}
		}
		if n := len(p.Opponents) + len(p.Byes); n > snap.round {
			snap.round = n
		}
	}

	for _, m := range history {
		if err := snap.checkMatch(m); err != nil {
			return nil, err
		}
		if m.Round > snap.round {
			snap.round = m.Round
		}
		if m.IsBye() {
			snap.participants[snap.index[m.White]].addBye(m.Round)
		}
		snap.matches = append(snap.matches, m)
	}
	sortMatches(snap.matches)

	return snap, nil
}

func (p *Participant) addBye(round int) {
	for _, r := range p.Byes {
		if r == round {
			return
		}
	}
	p.Byes = append(p.Byes, round)
	sort.Ints(p.Byes)
}

func (s *Snapshot) checkMatch(m Match) error {
	if m.Round < 1 {
		return fmt.Errorf("%w: match %v-%v has invalid round %d",
			ErrDataIntegrity, m.White, m.Black, m.Round)
	}
	if _, ok := s.index[m.White]; !ok {
		return fmt.Errorf("%w: round %d references unknown participant %v",
			ErrDataIntegrity, m.Round, m.White)
	}
	if m.IsBye() {
		if m.Result != ResultBye {
			return fmt.Errorf("%w: round %d bye for %v carries result %v",
				ErrDataIntegrity, m.Round, m.White, m.Result)
		}
		return nil
	}
	if m.Result == ResultBye {
		return fmt.Errorf("%w: round %d board %v-%v marked as bye",
			ErrDataIntegrity, m.Round, m.White, m.Black)
	}
	if _, ok := s.index[m.Black]; !ok {
		return fmt.Errorf("%w: round %d references unknown participant %v",
			ErrDataIntegrity, m.Round, m.Black)
	}
	if m.White == m.Black {
		return fmt.Errorf("%w: round %d pairs %v against itself",
			ErrDataIntegrity, m.Round, m.White)
	}
	return nil
}

func sortMatches(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Round != ms[j].Round {
			return ms[i].Round < ms[j].Round
		}
		// byes sort after boards
		bi, bj := ms[i].IsBye(), ms[j].IsBye()
		if bi != bj {
			return bj
		}
		if ms[i].Board != ms[j].Board {
			return ms[i].Board < ms[j].Board
		}
		return ms[i].White < ms[j].White
	})
}

// Round is the number of the last completed round (0 before round 1).
func (s *Snapshot) Round() int {
	return s.round
}

func (s *Snapshot) Len() int {
	return len(s.participants)
}

// Participants returns a copy of every ledger row in input order.
func (s *Snapshot) Participants() []Participant {
	out := make([]Participant, len(s.participants))
	for i, p := range s.participants {
		out[i] = p.clone()
	}
	return out
}

func (s *Snapshot) Participant(id PlayerID) (Participant, bool) {
	i, ok := s.index[id]
	if !ok {
		return Participant{}, false
	}
	return s.participants[i].clone(), true
}

// Matches returns a copy of the history ordered by round then board.
func (s *Snapshot) Matches() []Match {
	return append([]Match(nil), s.matches...)
}

// RoundMatches returns the history of a single round.
func (s *Snapshot) RoundMatches(round int) []Match {
	var out []Match
	for _, m := range s.matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

func (s *Snapshot) has(id PlayerID) bool {
	_, ok := s.index[id]
	return ok
}

// participant is the non-copying internal accessor.
func (s *Snapshot) participant(id PlayerID) *Participant {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return &s.participants[i]
}

// Replay rebuilds a snapshot from scratch: every participant is reset to an
// empty ledger row and history is settled round by round. Participant name,
// rating and active flag are taken from the input.
func Replay(participants []Participant, history []Match, cfg Config) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := make([]Participant, len(participants))
	for i, p := range participants {
		base[i] = Participant{ID: p.ID, Name: p.Name, Rating: p.Rating,
			Active: p.Active}
	}
	snap, err := BuildSnapshot(base, nil)
	if err != nil {
		return nil, err
	}
	// validate references before settling anything
	for _, m := range history {
		if err := snap.checkMatch(m); err != nil {
			return nil, err
		}
	}

	byRound := make(map[int]*CompletedRound)
	var rounds []int
	for _, m := range history {
		cr, ok := byRound[m.Round]
		if !ok {
			cr = &CompletedRound{Number: m.Round}
			byRound[m.Round] = cr
			rounds = append(rounds, m.Round)
		}
		if m.IsBye() {
			if cr.Bye != NoPlayer {
				return nil, fmt.Errorf("%w: round %d has more than one bye",
					ErrDataIntegrity, m.Round)
			}
			cr.Bye = m.White
			continue
		}
		cr.Games = append(cr.Games, m)
	}
	sort.Ints(rounds)

	for i, r := range rounds {
		if r != i+1 {
			return nil, fmt.Errorf("%w: history skips from round %d to %d",
				ErrDataIntegrity, i, r)
		}
		snap, err = ApplyResults(snap, *byRound[r], cfg)
		if err != nil {
			return nil, err
		}
	}

	return snap, nil
}
