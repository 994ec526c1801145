/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mikeb26/swiss-tdbot/internal"
)

// BuildPairingsOutput formats a round's pairings into an aligned table. snap
// is the ledger the round was paired from and supplies names, ratings and
// scores.
func BuildPairingsOutput(snap *Snapshot, rp *RoundPairings) string {
	var sb strings.Builder

	if len(rp.Pairings) == 0 && !rp.HasBye() {
		sb.WriteString(fmt.Sprintf("No pairings for round %v\n", rp.Round))
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Round %v Pairings:\n\n", rp.Round))

	describe := func(id PlayerID) string {
		p, ok := snap.Participant(id)
		if !ok {
			return string(id)
		}
		return fmt.Sprintf("%s(%v %v)", p.DisplayName(),
			internal.RatingToString(p.Rating), internal.ScoreToString(p.Score))
	}

	type row struct{ board, white, black string }
	var rows []row
	for _, p := range rp.Pairings {
		rows = append(rows, row{
			board: fmt.Sprintf("%d.", p.Board),
			white: describe(p.White),
			black: describe(p.Black),
		})
	}
	if rp.HasBye() {
		rows = append(rows, row{
			board: "n/a",
			white: describe(rp.Bye),
			black: "BYE",
		})
	}

	maxB, maxW, maxBl := len("Board"), len("White"), len("Black")
	for _, r := range rows {
		if l := len(r.board); l > maxB {
			maxB = l
		}
		if l := len(r.white); l > maxW {
			maxW = l
		}
		if l := len(r.black); l > maxBl {
			maxBl = l
		}
	}

	sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxB, "Board", maxW,
		"White", maxBl, "Black"))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxB, r.board,
			maxW, r.white, maxBl, r.black))
	}
	for _, r := range rp.Relaxations {
		sb.WriteString(fmt.Sprintf("\n* %v and %v meet again: %v", r.A, r.B,
			r.Reason))
	}
	if len(rp.Relaxations) > 0 {
		sb.WriteString("\n")
	}

	return sb.String()
}

// BuildStandingsOutput formats standings after round into an aligned table.
// Tied ranks are printed once, on the first row of the tie.
func BuildStandingsOutput(round int, standings []Standing,
	cascade []TiebreakKind) string {

	var sb strings.Builder
	if len(standings) == 0 {
		return "No standings available\n"
	}
	sb.WriteString(fmt.Sprintf("Standings after Round %v:\n\n", round))

	headers := []string{"Place", "Name", "Score"}
	for _, k := range cascade {
		headers = append(headers, k.Label())
	}
	headers = append(headers, "Perf", "+/-")

	rows := make([][]string, 0, len(standings))
	for i, st := range standings {
		place := ""
		if i == 0 || standings[i-1].Rank != st.Rank {
			place = fmt.Sprintf("%v.", st.Rank)
		}
		name := st.Name
		if !st.Active {
			name += " (w/d)"
		}
		r := []string{place, name, internal.ScoreToString(st.Score)}
		for _, k := range cascade {
			r = append(r, formatTiebreak(st, k))
		}
		r = append(r, formatPerformance(st.Performance), formatDelta(st))
		rows = append(rows, r)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if l := len([]rune(c)); l > widths[i] {
				widths[i] = l
			}
		}
	}

	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			// pad by runes so ½ lines up
			sb.WriteString(c)
			if i < len(cells)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-len([]rune(c))))
			}
		}
		sb.WriteString("\n")
	}
	writeRow(headers)
	for _, r := range rows {
		writeRow(r)
	}

	return sb.String()
}

func formatTiebreak(st Standing, k TiebreakKind) string {
	for _, tv := range st.Tiebreaks {
		if tv.Kind != k {
			continue
		}
		if tv.Absent {
			return "-"
		}
		if k == Performance {
			return strconv.Itoa(int(tv.Value))
		}
		return strconv.FormatFloat(tv.Value, 'f', -1, 64)
	}
	return "-"
}

func formatPerformance(perf *int) string {
	if perf == nil {
		return "-"
	}
	return strconv.Itoa(*perf)
}

func formatDelta(st Standing) string {
	if st.PreviousRank == 0 || st.RankDelta == 0 {
		return ""
	}
	if st.RankDelta > 0 {
		return fmt.Sprintf("+%d", st.RankDelta)
	}
	return strconv.Itoa(st.RankDelta)
}

// WriteStandingsCSV exports standings with one column per tiebreak in
// cascade, in the order Rank, Name, Rating, Score, tiebreaks, Performance.
func WriteStandingsCSV(w io.Writer, standings []Standing,
	cascade []TiebreakKind) error {

	cw := csv.NewWriter(w)
	header := []string{"Rank", "Name", "Rating", "Score"}
	for _, k := range cascade {
		header = append(header, tiebreakTitle(k))
	}
	header = append(header, "Performance")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, st := range standings {
		rating := ""
		if st.Rating != RatingUnrated {
			rating = strconv.Itoa(st.Rating)
		}
		rec := []string{
			strconv.Itoa(st.Rank),
			st.Name,
			rating,
			strconv.FormatFloat(st.Score, 'f', -1, 64),
		}
		for _, k := range cascade {
			v := formatTiebreak(st, k)
			if v == "-" {
				v = ""
			}
			rec = append(rec, v)
		}
		perf := ""
		if st.Performance != nil {
			perf = strconv.Itoa(*st.Performance)
		}
		rec = append(rec, perf)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

func tiebreakTitle(k TiebreakKind) string {
	switch k {
	case Buchholz:
		return "Buchholz"
	case MedianBuchholz:
		return "Median-Buchholz"
	case SonnebornBerger:
		return "Sonneborn-Berger"
	case Cumulative:
		return "Cumulative"
	case Progressive:
		return "Progressive"
	case Performance:
		return "Performance Tiebreak"
	}
	return string(k)
}
