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

// performance = average opponent rating + perfScale * (score - n/2) / n
const perfScale = 800.0

// TiebreakSet holds every secondary statistic for one participant.
type TiebreakSet struct {
	Buchholz        float64 `json:"buchholz"`
	MedianBuchholz  float64 `json:"medianBuchholz"`
	SonnebornBerger float64 `json:"sonnebornBerger"`
	Cumulative      float64 `json:"cumulative"`
	Progressive     float64 `json:"progressive"`
	// nil when the participant has no games against rated opponents
	Performance *int `json:"performance,omitempty"`
}

// Value returns the statistic for kind. ok is false for an absent performance
// rating or an unknown kind.
func (t TiebreakSet) Value(kind TiebreakKind) (float64, bool) {
	switch kind {
	case Buchholz:
		return t.Buchholz, true
	case MedianBuchholz:
		return t.MedianBuchholz, true
	case SonnebornBerger:
		return t.SonnebornBerger, true
	case Cumulative:
		return t.Cumulative, true
	case Progressive:
		return t.Progressive, true
	case Performance:
		if t.Performance == nil {
			return 0, false
		}
		return float64(*t.Performance), true
	}
	return 0, false
}

type gameRecord struct {
	opponent PlayerID
	// 1, 0.5 or 0 regardless of the configured point values
	value float64
}

type tbState struct {
	games        []gameRecord
	byes         int
	running      float64
	cumulative   float64
	progressive  float64
	oppRatingSum int
	ratedGames   int
	ratedValue   float64
}

// Accumulator computes tiebreaks incrementally, one settled round at a time.
// Feeding it rounds 1..N yields exactly what ComputeTiebreaks does for a
// history of N rounds.
type Accumulator struct {
	cfg     Config
	rounds  int
	order   []PlayerID
	ratings map[PlayerID]int
	state   map[PlayerID]*tbState
}

func NewAccumulator(participants []Participant, cfg Config) (*Accumulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	acc := &Accumulator{
		cfg:     cfg,
		ratings: make(map[PlayerID]int, len(participants)),
		state:   make(map[PlayerID]*tbState, len(participants)),
	}
	for _, p := range participants {
		if _, dup := acc.state[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate participant %v",
				ErrDataIntegrity, p.ID)
		}
		acc.order = append(acc.order, p.ID)
		acc.ratings[p.ID] = p.Rating
		acc.state[p.ID] = &tbState{}
	}

	return acc, nil
}

// Rounds is the number of rounds added so far.
func (acc *Accumulator) Rounds() int {
	return acc.rounds
}

// AddRound folds one round of results in. round must be the next round
// number; on error the accumulator is unchanged.
func (acc *Accumulator) AddRound(round int, matches []Match) error {
	if round != acc.rounds+1 {
		return fmt.Errorf("%w: expected round %d, got %d", ErrDataIntegrity,
			acc.rounds+1, round)
	}

	seen := make(map[PlayerID]bool)
	for _, m := range matches {
		if m.Round != round {
			return fmt.Errorf("%w: match %v-%v belongs to round %d, not %d",
				ErrDataIntegrity, m.White, m.Black, m.Round, round)
		}
		ids := []PlayerID{m.White}
		if !m.IsBye() {
			ids = append(ids, m.Black)
		}
		for _, id := range ids {
			if _, ok := acc.state[id]; !ok {
				return fmt.Errorf("%w: round %d references unknown participant %v",
					ErrDataIntegrity, round, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: %v appears more than once in round %d",
					ErrDataIntegrity, id, round)
			}
			seen[id] = true
		}
	}

	earned := make(map[PlayerID]float64)
	for _, m := range matches {
		if m.IsBye() {
			if m.Result != ResultBye {
				continue
			}
			acc.state[m.White].byes++
			earned[m.White] += acc.cfg.ByePoints
			continue
		}
		if !m.Played() {
			continue
		}
		wp, bp := acc.cfg.pointsFor(m.Result)
		earned[m.White] += wp
		earned[m.Black] += bp

		wv, bv := resultValues(m.Result)
		acc.recordGame(m.White, m.Black, wv)
		acc.recordGame(m.Black, m.White, bv)
	}

	acc.rounds = round
	half := acc.cfg.halfPoints(round)
	for _, id := range acc.order {
		st := acc.state[id]
		st.running += earned[id]
		st.cumulative += st.running
		if st.running-half > scoreEpsilon {
			st.progressive += st.running
		}
	}

	return nil
}

func (acc *Accumulator) recordGame(id, opp PlayerID, value float64) {
	st := acc.state[id]
	st.games = append(st.games, gameRecord{opponent: opp, value: value})
	if r := acc.ratings[opp]; r != RatingUnrated {
		st.oppRatingSum += r
		st.ratedGames++
		st.ratedValue += value
	}
}

func resultValues(r Result) (white float64, black float64) {
	switch r {
	case ResultWhiteWin:
		return 1, 0
	case ResultBlackWin:
		return 0, 1
	case ResultDraw:
		return 0.5, 0.5
	}
	return 0, 0
}

// halfPoints is a 50% score over the given number of rounds: half way between
// losing and winning every game.
func (c Config) halfPoints(rounds int) float64 {
	return float64(rounds) * (c.WinPoints + c.LossPoints) / 2
}

// ByeBuchholz is what a bye contributes to Buchholz after the given number of
// rounds: the score of a virtual opponent who made exactly 50%.
func (c Config) ByeBuchholz(rounds int) float64 {
	return c.halfPoints(rounds)
}

// Tiebreaks evaluates the statistics against the supplied final scores.
// Participants missing from scores count as zero.
func (acc *Accumulator) Tiebreaks(scores map[PlayerID]float64) map[PlayerID]TiebreakSet {
	byeValue := acc.cfg.ByeBuchholz(acc.rounds)
	out := make(map[PlayerID]TiebreakSet, len(acc.state))

	for _, id := range acc.order {
		st := acc.state[id]
		var tb TiebreakSet

		contrib := make([]float64, 0, len(st.games)+st.byes)
		for _, g := range st.games {
			s := scores[g.opponent]
			contrib = append(contrib, s)
			tb.SonnebornBerger += s * g.value
		}
		for i := 0; i < st.byes; i++ {
			contrib = append(contrib, byeValue)
		}
		for _, c := range contrib {
			tb.Buchholz += c
		}
		tb.MedianBuchholz = medianBuchholz(contrib, tb.Buchholz)
		tb.Cumulative = st.cumulative
		tb.Progressive = st.progressive
		if st.ratedGames > 0 {
			n := float64(st.ratedGames)
			avg := float64(st.oppRatingSum) / n
			perf := int(math.Round(avg + perfScale*(st.ratedValue-n/2)/n))
			tb.Performance = &perf
		}
		out[id] = tb
	}

	return out
}

// medianBuchholz drops the single highest and lowest contribution; with
// fewer than three contributions it is plain Buchholz.
func medianBuchholz(contrib []float64, total float64) float64 {
	if len(contrib) < 3 {
		return total
	}
	sorted := append([]float64(nil), contrib...)
	sort.Float64s(sorted)
	return total - sorted[0] - sorted[len(sorted)-1]
}

// ComputeTiebreaks recomputes every statistic from scratch. A nil history
// means the snapshot's own match history.
func ComputeTiebreaks(snap *Snapshot, history []Match,
	cfg Config) (map[PlayerID]TiebreakSet, error) {

	if history == nil {
		history = snap.matches
	}
	acc, err := NewAccumulator(snap.participants, cfg)
	if err != nil {
		return nil, err
	}

	byRound := make(map[int][]Match)
	last := snap.Round()
	for _, m := range history {
		if err := snap.checkMatch(m); err != nil {
			return nil, err
		}
		byRound[m.Round] = append(byRound[m.Round], m)
		if m.Round > last {
			last = m.Round
		}
	}
	for r := 1; r <= last; r++ {
		if err := acc.AddRound(r, byRound[r]); err != nil {
			return nil, err
		}
	}

	scores := make(map[PlayerID]float64, len(snap.participants))
	for _, p := range snap.participants {
		scores[p.ID] = p.Score
	}

	return acc.Tiebreaks(scores), nil
}
