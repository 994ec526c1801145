/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

// mustPlay returns the colour p has to take so as not to play a third
// consecutive game with the same colour.
func mustPlay(p *Participant) (Color, bool) {
	n := len(p.Colors)
	if n >= 2 && p.Colors[n-1] == p.Colors[n-2] {
		return p.Colors[n-1].Opposite(), true
	}
	return White, false
}

// colorBalance is whites minus blacks.
func colorBalance(p *Participant) int {
	bal := 0
	for _, c := range p.Colors {
		if c == White {
			bal++
		} else {
			bal--
		}
	}
	return bal
}

func preferredColor(p *Participant) (Color, bool) {
	if c, ok := mustPlay(p); ok {
		return c, true
	}
	bal := colorBalance(p)
	if bal < 0 {
		return White, true
	} else if bal > 0 {
		return Black, true
	}
	return White, false
}

func playedWhiteLast(p *Participant) bool {
	n := len(p.Colors)
	return n > 0 && p.Colors[n-1] == White
}

// colorPenalty scores how badly two participants clash on colour: 2 when both
// would otherwise play the same colour three times running, 1 when both merely
// prefer the same colour.
func colorPenalty(a, b *Participant) int {
	ca, fa := mustPlay(a)
	cb, fb := mustPlay(b)
	if fa && fb && ca == cb {
		return 2
	}
	pa, oka := preferredColor(a)
	pb, okb := preferredColor(b)
	if oka && okb && pa == pb {
		return 1
	}
	return 0
}

// assignColors decides who takes white. In order: nobody plays a colour three
// times running when the other side can absorb it; the side with more blacks
// than whites gets white; the side that did not have white last round gets
// white; the lower score gets white; the lower id gets white.
func assignColors(a, b *Participant) (white *Participant, black *Participant) {
	ca, fa := mustPlay(a)
	cb, fb := mustPlay(b)
	switch {
	case fa && !(fb && ca == cb):
		if ca == White {
			return a, b
		}
		return b, a
	case fb && !fa:
		if cb == White {
			return b, a
		}
		return a, b
	}

	if ba, bb := colorBalance(a), colorBalance(b); ba != bb {
		if ba < bb {
			return a, b
		}
		return b, a
	}
	if wa, wb := playedWhiteLast(a), playedWhiteLast(b); wa != wb {
		if wb {
			return a, b
		}
		return b, a
	}
	if a.Score != b.Score {
		if a.Score < b.Score {
			return a, b
		}
		return b, a
	}
	if a.ID < b.ID {
		return a, b
	}
	return b, a
}
