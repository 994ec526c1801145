/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"fmt"
	"math"
	"sort"
)

// scores and tiebreaks closer than this are considered equal
const scoreEpsilon = 1e-9

type TiebreakValue struct {
	Kind  TiebreakKind `json:"kind"`
	Value float64      `json:"value"`
	// set for a performance rating that could not be computed
	Absent bool `json:"absent,omitempty"`
}

type Standing struct {
	Rank         int             `json:"rank"`
	ID           PlayerID        `json:"id"`
	Name         string          `json:"name"`
	Rating       int             `json:"rating"`
	Score        float64         `json:"score"`
	Tiebreaks    []TiebreakValue `json:"tiebreaks"`
	Performance  *int            `json:"performance,omitempty"`
	PreviousRank int             `json:"previousRank,omitempty"`
	// positive when the participant moved up
	RankDelta    int  `json:"rankDelta"`
	RoundsPlayed int  `json:"roundsPlayed"`
	Active       bool `json:"active"`
}

// BuildStandings orders every participant by score, then by each tiebreak in
// cascade, then by id. Participants equal on score and the whole cascade share
// a rank and the next group's rank is its position ("1,1,3").
func BuildStandings(snap *Snapshot, tiebreaks map[PlayerID]TiebreakSet,
	cascade []TiebreakKind, previous []Standing) ([]Standing, error) {

	for _, k := range cascade {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: unknown tiebreak %q", ErrConfiguration, k)
		}
	}

	prevRank := make(map[PlayerID]int, len(previous))
	for _, s := range previous {
		prevRank[s.ID] = s.Rank
	}

	out := make([]Standing, 0, snap.Len())
	for _, p := range snap.participants {
		tb := tiebreaks[p.ID]
		st := Standing{
			ID:           p.ID,
			Name:         p.DisplayName(),
			Rating:       p.Rating,
			Score:        p.Score,
			Tiebreaks:    make([]TiebreakValue, 0, len(cascade)),
			Performance:  tb.Performance,
			RoundsPlayed: p.RoundsPlayed(),
			Active:       p.Active,
		}
		for _, k := range cascade {
			v, ok := tb.Value(k)
			st.Tiebreaks = append(st.Tiebreaks, TiebreakValue{Kind: k, Value: v,
				Absent: !ok})
		}
		out = append(out, st)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := compareStanding(out[i], out[j]); c != 0 {
			return c > 0
		}
		return out[i].ID < out[j].ID
	})

	for i := range out {
		if i > 0 && compareStanding(out[i-1], out[i]) == 0 {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
		if prev, ok := prevRank[out[i].ID]; ok && prev > 0 {
			out[i].PreviousRank = prev
			out[i].RankDelta = prev - out[i].Rank
		}
	}

	return out, nil
}

// compareStanding returns >0 when a ranks ahead of b, <0 when behind and 0
// when they are tied on score and every tiebreak.
func compareStanding(a, b Standing) int {
	if c := compareFloat(a.Score, b.Score); c != 0 {
		return c
	}
	for i := range a.Tiebreaks {
		ta, tb := a.Tiebreaks[i], b.Tiebreaks[i]
		if ta.Absent != tb.Absent {
			// an absent value ranks below any present one
			if ta.Absent {
				return -1
			}
			return 1
		}
		if c := compareFloat(ta.Value, tb.Value); c != 0 {
			return c
		}
	}
	return 0
}

func compareFloat(a, b float64) int {
	if math.Abs(a-b) < scoreEpsilon {
		return 0
	}
	if a > b {
		return 1
	}
	return -1
}
