/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/mikeb26/swiss-tdbot/swiss"
)

// SectionImport is a crosstable expressed as engine history.
type SectionImport struct {
	Participants []swiss.Participant
	History      []swiss.Match
	// US Chess member ids keyed by participant
	UscfIDs map[swiss.PlayerID]string
	// rounds the engine has no way to represent, plus any score that came
	// out different from the published one
	Notes []string
}

// ParticipantID is the member id for members and "p<pair number>" for
// entrants without one.
func (e *CrossTableEntry) ParticipantID() swiss.PlayerID {
	if e.PlayerId > 0 {
		return swiss.PlayerID(strconv.Itoa(int(e.PlayerId)))
	}
	return swiss.PlayerID(fmt.Sprintf("p%d", e.PairNum))
}

// Import converts the crosstable into participants and history. Each game is
// emitted once, from white's side when the colour is known and otherwise
// with the lower pair number as white. Forfeits become unplayed boards, the
// first full-point bye of a round becomes that round's bye and half-point
// byes are dropped; each of those is reported in Notes.
func (xt *CrossTable) Import(cfg swiss.Config) (*SectionImport, error) {
	entries := append([]CrossTableEntry(nil), xt.PlayerEntries...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PairNum < entries[j].PairNum
	})

	imp := &SectionImport{UscfIDs: make(map[swiss.PlayerID]string)}
	byPair := make(map[int]*CrossTableEntry, len(entries))
	for i := range entries {
		e := &entries[i]
		if _, dup := byPair[e.PairNum]; dup {
			return nil, fmt.Errorf("%w: pair number %d appears twice in %v",
				swiss.ErrDataIntegrity, e.PairNum, xt.SectionName)
		}
		byPair[e.PairNum] = e
		id := e.ParticipantID()
		imp.Participants = append(imp.Participants, swiss.Participant{
			ID:     id,
			Name:   e.PlayerName,
			Rating: e.RatingPre,
			Active: true,
		})
		if e.PlayerId > 0 {
			imp.UscfIDs[id] = strconv.Itoa(int(e.PlayerId))
		}
	}

	for r := 1; r <= xt.NumRounds; r++ {
		board := 0
		emitted := make(map[[2]int]bool)
		bye := false
		for i := range entries {
			e := &entries[i]
			if len(e.Results) < r {
				continue
			}
			res := e.Results[r-1]
			switch res.Outcome {
			case OutcomeWin, OutcomeLoss, OutcomeDraw, OutcomeWinByForfeit,
				OutcomeLossByForfeit:

				opp, ok := byPair[res.OpponentPairNum]
				if !ok {
					return nil, fmt.Errorf("%w: round %d: %v played unknown pair number %d",
						swiss.ErrDataIntegrity, r, e.PlayerName, res.OpponentPairNum)
				}
				key := [2]int{min(e.PairNum, opp.PairNum), max(e.PairNum, opp.PairNum)}
				if emitted[key] {
					continue
				}
				emitted[key] = true
				board++
				imp.History = append(imp.History,
					importGame(r, board, e, opp, res))
				if res.Outcome == OutcomeWinByForfeit || res.Outcome == OutcomeLossByForfeit {
					imp.Notes = append(imp.Notes, fmt.Sprintf(
						"round %d: forfeit between %v and %v imported as unplayed",
						r, e.PlayerName, opp.PlayerName))
				}
			case OutcomeFullBye:
				if bye {
					imp.Notes = append(imp.Notes, fmt.Sprintf(
						"round %d: additional full-point bye for %v dropped",
						r, e.PlayerName))
					continue
				}
				bye = true
				imp.History = append(imp.History, swiss.Match{Round: r,
					White: e.ParticipantID(), Result: swiss.ResultBye})
			case OutcomeHalfBye:
				imp.Notes = append(imp.Notes, fmt.Sprintf(
					"round %d: half-point bye for %v dropped", r, e.PlayerName))
			case OutcomeUnknown:
				imp.Notes = append(imp.Notes, fmt.Sprintf(
					"round %d: unrecognized outcome for %v dropped", r, e.PlayerName))
			}
		}
	}

	snap, err := swiss.Replay(imp.Participants, imp.History, cfg)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		p, _ := snap.Participant(e.ParticipantID())
		if math.Abs(p.Score-e.TotalPoints) > 1e-9 {
			imp.Notes = append(imp.Notes, fmt.Sprintf(
				"%v: published score %v, imported score %v", e.PlayerName,
				e.TotalPoints, p.Score))
		}
	}

	return imp, nil
}

// importGame builds the board between e and opp as seen from e's row.
func importGame(round, board int, e, opp *CrossTableEntry, res RoundResult) swiss.Match {
	eWhite := res.Color == "white" || (res.Color == "" && e.PairNum < opp.PairNum)
	m := swiss.Match{Round: round, Board: board, White: e.ParticipantID(),
		Black: opp.ParticipantID()}
	if !eWhite {
		m.White, m.Black = m.Black, m.White
	}

	switch res.Outcome {
	case OutcomeDraw:
		m.Result = swiss.ResultDraw
	case OutcomeWin:
		m.Result = swiss.ResultWhiteWin
		if !eWhite {
			m.Result = swiss.ResultBlackWin
		}
	case OutcomeLoss:
		m.Result = swiss.ResultBlackWin
		if !eWhite {
			m.Result = swiss.ResultWhiteWin
		}
	default:
		m.Result = swiss.ResultUnplayed
	}

	return m
}
