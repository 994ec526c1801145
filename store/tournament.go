/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package store

import (
	"fmt"
	"time"

	"github.com/mikeb26/swiss-tdbot/swiss"
)

// Tournament is everything persisted for one event.
type Tournament struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Config swiss.Config `json:"config"`
	// ledger rows as of the last settled round
	Participants []swiss.Participant `json:"participants"`
	History      []swiss.Match       `json:"history"`
	Pending      *PendingRound       `json:"pending,omitempty"`
	// standings after each settled round, keyed by round number
	Standings map[int][]swiss.Standing `json:"standings,omitempty"`
	// US Chess member ids keyed by participant
	UscfIDs   map[swiss.PlayerID]string `json:"uscfIds,omitempty"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// PendingRound is a paired round awaiting results.
type PendingRound struct {
	Pairings swiss.RoundPairings `json:"pairings"`
	// reported results keyed by board number
	Results  map[int]swiss.Result `json:"results,omitempty"`
	PlayedAt map[int]time.Time    `json:"playedAt,omitempty"`
}

// Settlement is what SettleRound returns.
type Settlement struct {
	Round     int
	Results   []swiss.Match
	Pairings  swiss.RoundPairings
	Standings []swiss.Standing
}

func (t *Tournament) Snapshot() (*swiss.Snapshot, error) {
	return swiss.BuildSnapshot(t.Participants, t.History)
}

// CompletedRounds is the number of settled rounds.
func (t *Tournament) CompletedRounds() int {
	last := 0
	for _, m := range t.History {
		if m.Round > last {
			last = m.Round
		}
	}
	return last
}

// LatestStandings returns the standings after the most recent settled round.
func (t *Tournament) LatestStandings() ([]swiss.Standing, int) {
	round := t.CompletedRounds()
	return t.Standings[round], round
}

func (t *Tournament) Participant(id swiss.PlayerID) (*swiss.Participant, error) {
	for i := range t.Participants {
		if t.Participants[i].ID == id {
			return &t.Participants[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %v in %v", ErrUnknownParticipant, id, t.ID)
}

// missingBoards lists boards of the pending round that have no result yet.
func (p *PendingRound) missingBoards() []int {
	var missing []int
	for _, pr := range p.Pairings.Pairings {
		if _, ok := p.Results[pr.Board]; !ok {
			missing = append(missing, pr.Board)
		}
	}
	return missing
}

// completedRound converts the pending round and its reported results into
// settlement input.
func (p *PendingRound) completedRound() swiss.CompletedRound {
	cr := swiss.CompletedRound{
		Number: p.Pairings.Round,
		Bye:    p.Pairings.Bye,
	}
	for _, pr := range p.Pairings.Pairings {
		cr.Games = append(cr.Games, swiss.Match{
			Round:    p.Pairings.Round,
			Board:    pr.Board,
			White:    pr.White,
			Black:    pr.Black,
			Result:   p.Results[pr.Board],
			PlayedAt: p.PlayedAt[pr.Board],
		})
	}
	return cr
}
