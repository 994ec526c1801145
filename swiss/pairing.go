/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"fmt"
	"log"
	"sort"
)

// upper bound on the number of nodes visited by a single backtracking search;
// a search that runs out is treated as having found nothing
var searchBudget = 250000

type pair struct {
	a, b *Participant
}

type pairer struct {
	cfg   Config
	round int
	// position of each pool member in the score/rating/id order
	rank  map[PlayerID]int
	steps int
	// set once any search gave up on the budget rather than proving there
	// was no pairing
	exhausted bool
}

// Pair produces the pairings for the round following snap. The result is a
// pure function of snap and cfg; callers must make sure at most one pairing
// computation per tournament is in flight.
func Pair(snap *Snapshot, cfg Config) (*RoundPairings, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pg := &pairer{
		cfg:   cfg,
		round: snap.Round() + 1,
		rank:  make(map[PlayerID]int),
	}
	rp := &RoundPairings{Round: pg.round, Pairings: make([]Pairing, 0)}

	pool := activePool(snap)
	for i, p := range pool {
		pg.rank[p.ID] = i
	}
	if len(pool) == 0 {
		return rp, nil
	}

	if len(pool)%2 == 1 {
		bye := pg.chooseBye(pool)
		rp.Bye = bye.ID
		pool = removeParticipant(pool, bye.ID)
	}

	pairs, residue := pg.pairGroups(pool)
	if len(residue)%2 == 1 {
		return nil, fmt.Errorf("%w: round %d left an odd residue of %d",
			ErrUnpairablePool, pg.round, len(residue))
	}
	if len(residue) > 0 {
		var relaxed []Relaxation
		var err error
		pairs, relaxed, err = pg.resolveResidue(pool, pairs, residue)
		if err != nil {
			return nil, err
		}
		rp.Relaxations = relaxed
	}
	pg.repairColors(pairs)

	for i, pr := range pairs {
		w, b := assignColors(pr.a, pr.b)
		rp.Pairings = append(rp.Pairings, Pairing{Board: i + 1, White: w.ID,
			Black: b.ID})
	}

	return rp, nil
}

// activePool returns pointers into snap ordered by score desc, rating desc
// then id. Callers must treat the rows as read-only.
func activePool(snap *Snapshot) []*Participant {
	pool := make([]*Participant, 0, len(snap.participants))
	for i := range snap.participants {
		if snap.participants[i].Active {
			pool = append(pool, &snap.participants[i])
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.ID < b.ID
	})

	return pool
}

func removeParticipant(pool []*Participant, id PlayerID) []*Participant {
	out := make([]*Participant, 0, len(pool))
	for _, p := range pool {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// chooseBye picks the lowest scored, then lowest rated, participant that is
// still eligible for a bye. Remaining ties go to whoever sorts last.
func (pg *pairer) chooseBye(pool []*Participant) *Participant {
	eligible := make([]*Participant, 0, len(pool))
	for _, p := range pool {
		if len(p.Byes) < pg.cfg.MaxByes {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		log.Printf("swiss.Pair: round %d: every participant has %d bye(s); choosing from the whole field",
			pg.round, pg.cfg.MaxByes)
		eligible = pool
	}

	var pick *Participant
	for _, p := range eligible {
		if pick == nil || p.Score < pick.Score ||
			(p.Score == pick.Score && p.Rating <= pick.Rating) {
			pick = p
		}
	}

	return pick
}

// scoreGroups splits an ordered pool into maximal runs of equal score.
func scoreGroups(pool []*Participant) [][]*Participant {
	var groups [][]*Participant
	for i := 0; i < len(pool); {
		j := i + 1
		for j < len(pool) && pool[j].Score == pool[i].Score {
			j++
		}
		groups = append(groups, pool[i:j])
		i = j
	}
	return groups
}

// pairGroups pairs each score group top to bottom. Whoever has no legal
// opponent left in its group floats into the next one; floats still unpaired
// after the last group are returned as the residue.
func (pg *pairer) pairGroups(pool []*Participant) ([]pair, []*Participant) {
	var pairs []pair
	var floats []*Participant

	for _, group := range scoreGroups(pool) {
		members := make([]*Participant, 0, len(floats)+len(group))
		members = append(members, floats...)
		members = append(members, group...)
		floats = nil

		paired := make([]bool, len(members))
		for i, p := range members {
			if paired[i] {
				continue
			}
			best := -1
			for j := i + 1; j < len(members); j++ {
				if paired[j] || p.HasPlayed(members[j].ID) {
					continue
				}
				if best < 0 || pg.groupLess(p, members[j], members[best]) {
					best = j
				}
			}
			if best < 0 {
				floats = append(floats, p)
				continue
			}
			paired[i] = true
			paired[best] = true
			pairs = append(pairs, pair{p, members[best]})
		}
	}

	return pairs, floats
}

// groupLess reports whether x is a better opponent for p than y within a
// score group: colour compatibility first, then rating proximity.
func (pg *pairer) groupLess(p, x, y *Participant) bool {
	cx, cy := colorPenalty(p, x), colorPenalty(p, y)
	if cx != cy {
		return cx < cy
	}
	dx, dy := ratingGap(p, x), ratingGap(p, y)
	if dx != dy {
		return dx < dy
	}
	return pg.rank[x.ID] < pg.rank[y.ID]
}

// resolveResidue handles floats left over after the lowest score group.
// Rematches are only accepted once no rematch-free pairing exists either for
// the residue or for the whole field.
func (pg *pairer) resolveResidue(pool []*Participant, pairs []pair,
	residue []*Participant) ([]pair, []Relaxation, error) {

	if extra, ok := pg.search(residue, false); ok {
		return append(pairs, extra...), nil, nil
	}
	if all, ok := pg.search(pool, false); ok {
		log.Printf("swiss.Pair: round %d: re-paired whole field to avoid a rematch among %d floats",
			pg.round, len(residue))
		return all, nil, nil
	}
	if !pg.cfg.AllowRematches {
		return nil, nil, fmt.Errorf("%w: round %d: no rematch-free pairing for %d remaining participants",
			ErrUnpairablePool, pg.round, len(residue))
	}

	reason := fmt.Sprintf("no rematch-free pairing among %d remaining participants",
		len(residue))
	if pg.exhausted {
		reason = fmt.Sprintf("search budget of %d steps ran out before a rematch-free pairing among %d remaining participants was found",
			searchBudget, len(residue))
	}

	extra, ok := pg.search(residue, true)
	if !ok {
		return nil, nil, fmt.Errorf("%w: round %d: unable to pair %d remaining participants",
			ErrUnpairablePool, pg.round, len(residue))
	}
	var relaxed []Relaxation
	for _, pr := range extra {
		if !pr.a.HasPlayed(pr.b.ID) {
			continue
		}
		r := Relaxation{
			Round:  pg.round,
			A:      pr.a.ID,
			B:      pr.b.ID,
			Reason: reason,
		}
		log.Printf("swiss.Pair: round %d: forced rematch %v vs %v: %v", pg.round,
			r.A, r.B, reason)
		relaxed = append(relaxed, r)
	}

	return append(pairs, extra...), relaxed, nil
}

// search finds a perfect matching of ps by backtracking, always expanding the
// first unmatched participant in order.
func (pg *pairer) search(ps []*Participant, rematches bool) ([]pair, bool) {
	pg.steps = 0
	used := make([]bool, len(ps))
	out := make([]pair, 0, len(ps)/2)
	if !pg.searchFrom(ps, used, &out, rematches) {
		if pg.steps > searchBudget {
			pg.exhausted = true
			log.Printf("swiss.Pair: round %d: search over %d participants gave up after %d steps",
				pg.round, len(ps), searchBudget)
		}
		return nil, false
	}
	return out, true
}

func (pg *pairer) searchFrom(ps []*Participant, used []bool, out *[]pair,
	rematches bool) bool {

	first := -1
	for i := range ps {
		if !used[i] {
			first = i
			break
		}
	}
	if first < 0 {
		return true
	}
	pg.steps++
	if pg.steps > searchBudget {
		return false
	}

	used[first] = true
	for _, j := range pg.candidates(ps, used, first, rematches) {
		used[j] = true
		*out = append(*out, pair{ps[first], ps[j]})
		if pg.searchFrom(ps, used, out, rematches) {
			return true
		}
		*out = (*out)[:len(*out)-1]
		used[j] = false
		if pg.steps > searchBudget {
			break
		}
	}
	used[first] = false

	return false
}

// candidates lists the unused opponents for ps[i] in order of preference:
// fresh opponents, closest score, colour compatibility, closest rating.
func (pg *pairer) candidates(ps []*Participant, used []bool, i int,
	rematches bool) []int {

	p := ps[i]
	var out []int
	for j := range ps {
		if used[j] {
			continue
		}
		if !rematches && p.HasPlayed(ps[j].ID) {
			continue
		}
		out = append(out, j)
	}
	sort.SliceStable(out, func(x, y int) bool {
		a, b := ps[out[x]], ps[out[y]]
		ra, rb := p.HasPlayed(a.ID), p.HasPlayed(b.ID)
		if ra != rb {
			return rb
		}
		sa, sb := absFloat(p.Score-a.Score), absFloat(p.Score-b.Score)
		if sa != sb {
			return sa < sb
		}
		return pg.groupLess(p, a, b)
	})

	return out
}

// repairColors swaps opponents between pairs so that no pair has both sides
// bound to the same colour, as long as a swap exists that creates no rematch,
// no new clash and no wider score gap. Pairs that are rematches are left
// alone so recorded relaxations stay accurate.
func (pg *pairer) repairColors(pairs []pair) {
	for i := range pairs {
		if colorPenalty(pairs[i].a, pairs[i].b) < 2 || isRematch(pairs[i]) {
			continue
		}
		for j := range pairs {
			if j == i || isRematch(pairs[j]) {
				continue
			}
			if x, y, ok := swapPairs(pairs[i], pairs[j]); ok {
				log.Printf("swiss.Pair: round %d: swapped %v-%v and %v-%v to avoid a third colour in a row",
					pg.round, pairs[i].a.ID, pairs[i].b.ID, pairs[j].a.ID,
					pairs[j].b.ID)
				pairs[i], pairs[j] = x, y
				break
			}
		}
	}
}

// swapPairs tries both ways of exchanging opponents between p and q.
func swapPairs(p, q pair) (pair, pair, bool) {
	gap := scoreGap(p) + scoreGap(q)
	options := [][2]pair{
		{{p.a, q.a}, {p.b, q.b}},
		{{p.a, q.b}, {p.b, q.a}},
	}
	for _, o := range options {
		x, y := o[0], o[1]
		if isRematch(x) || isRematch(y) {
			continue
		}
		if colorPenalty(x.a, x.b) == 2 || colorPenalty(y.a, y.b) == 2 {
			continue
		}
		if scoreGap(x)+scoreGap(y) > gap {
			continue
		}
		return x, y, true
	}
	return p, q, false
}

func isRematch(pr pair) bool {
	return pr.a.HasPlayed(pr.b.ID)
}

func scoreGap(pr pair) float64 {
	return absFloat(pr.a.Score - pr.b.Score)
}

func ratingGap(a, b *Participant) int {
	d := a.Rating - b.Rating
	if d < 0 {
		return -d
	}
	return d
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
