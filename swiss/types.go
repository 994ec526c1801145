/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type PlayerID string

// NoPlayer is the empty side of a bye.
const NoPlayer PlayerID = ""

const RatingUnrated = 0

type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "white"
	} else if c == Black {
		return "black"
	} else {
		return "?"
	}
}

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) MarshalText() ([]byte, error) {
	if c != White && c != Black {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "white", "w":
		*c = White
	case "black", "b":
		*c = Black
	default:
		return fmt.Errorf("invalid color %q", string(b))
	}
	return nil
}

// Result represents the outcome of a single board.
type Result int

const (
	ResultUnplayed Result = iota
	ResultWhiteWin
	ResultBlackWin
	ResultDraw
	ResultBye
)

var resultNames = map[Result]string{
	ResultUnplayed: "unplayed",
	ResultWhiteWin: "white-win",
	ResultBlackWin: "black-win",
	ResultDraw:     "draw",
	ResultBye:      "bye",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return "?"
}

// ParseResult accepts the canonical names as well as the usual scoresheet
// shorthands ("1-0", "0-1", "½-½").
func ParseResult(s string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unplayed", "":
		return ResultUnplayed, nil
	case "white-win", "white_win", "1-0":
		return ResultWhiteWin, nil
	case "black-win", "black_win", "0-1":
		return ResultBlackWin, nil
	case "draw", "½-½", "1/2-1/2", "0.5-0.5":
		return ResultDraw, nil
	case "bye":
		return ResultBye, nil
	}
	return ResultUnplayed, fmt.Errorf("unknown result %q", s)
}

func (r Result) MarshalText() ([]byte, error) {
	s, ok := resultNames[r]
	if !ok {
		return nil, fmt.Errorf("invalid result %d", int(r))
	}
	return []byte(s), nil
}

func (r *Result) UnmarshalText(b []byte) error {
	v, err := ParseResult(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Participant is one entrant's ledger row as of the start of a round.
type Participant struct {
	ID        PlayerID   `json:"id"`
	Name      string     `json:"name"`
	Score     float64    `json:"score"`
	Rating    int        `json:"rating"`
	Active    bool       `json:"active"`
	Opponents []PlayerID `json:"opponents,omitempty"`
	Colors    []Color    `json:"colors,omitempty"`
	// round numbers in which a bye was received
	Byes []int `json:"byes,omitempty"`
}

func (p Participant) IsRated() bool {
	return p.Rating != RatingUnrated
}

func (p Participant) RoundsPlayed() int {
	return len(p.Opponents)
}

func (p Participant) HasPlayed(id PlayerID) bool {
	for _, o := range p.Opponents {
		if o == id {
			return true
		}
	}
	return false
}

// DisplayName falls back to the id for entrants registered without a name.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.ID)
}

func (p Participant) clone() Participant {
	c := p
	c.Opponents = append([]PlayerID(nil), p.Opponents...)
	c.Colors = append([]Color(nil), p.Colors...)
	c.Byes = append([]int(nil), p.Byes...)
	return c
}

// Match is one board (or bye) of a round.
type Match struct {
	Round    int       `json:"round"`
	Board    int       `json:"board,omitempty"`
	White    PlayerID  `json:"white"`
	Black    PlayerID  `json:"black,omitempty"`
	Result   Result    `json:"result"`
	PlayedAt time.Time `json:"playedAt,omitempty"`
}

func (m Match) IsBye() bool {
	return m.Black == NoPlayer
}

func (m Match) Involves(id PlayerID) bool {
	return m.White == id || (!m.IsBye() && m.Black == id)
}

// Played reports whether the board was actually contested over the board.
func (m Match) Played() bool {
	return !m.IsBye() && m.Result != ResultUnplayed && m.Result != ResultBye
}

// Pairing is a confirmed board for the next round.
type Pairing struct {
	Board int      `json:"board"`
	White PlayerID `json:"white"`
	Black PlayerID `json:"black"`
}

// Relaxation records a rematch the generator had to accept.
type Relaxation struct {
	Round  int      `json:"round"`
	A      PlayerID `json:"a"`
	B      PlayerID `json:"b"`
	Reason string   `json:"reason"`
}

// RoundPairings is the generator's output for one round.
type RoundPairings struct {
	Round       int          `json:"round"`
	Pairings    []Pairing    `json:"pairings"`
	Bye         PlayerID     `json:"bye,omitempty"`
	Relaxations []Relaxation `json:"relaxations,omitempty"`
}

func (rp RoundPairings) HasBye() bool {
	return rp.Bye != NoPlayer
}

// Matches converts the pairings into unplayed boards ready for results.
func (rp RoundPairings) Matches() []Match {
	out := make([]Match, 0, len(rp.Pairings)+1)
	for _, p := range rp.Pairings {
		out = append(out, Match{Round: rp.Round, Board: p.Board,
			White: p.White, Black: p.Black, Result: ResultUnplayed})
	}
	if rp.HasBye() {
		out = append(out, Match{Round: rp.Round, White: rp.Bye,
			Result: ResultBye})
	}
	return out
}

// CompletedRound is the input to settlement.
type CompletedRound struct {
	Number int      `json:"number"`
	Games  []Match  `json:"games"`
	Bye    PlayerID `json:"bye,omitempty"`
}

// String is handy in log lines.
func (rp RoundPairings) String() string {
	b, _ := json.Marshal(rp)
	return string(b)
}
