/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bcc

import (
	"regexp"
	"strconv"
	"strings"
)

type Source int

const (
	SourceAPI Source = iota
	SourceWebsite
)

func (s Source) String() string {
	if s == SourceAPI {
		return "api"
	} else if s == SourceWebsite {
		return "website"
	} else {
		return "?"
	}
}

func strRatingToInt(rating string) int {
	r := 0
	if rating != "" {
		// handle formats like "559/24"
		if idx := strings.Index(rating, "/"); idx != -1 {
			rating = rating[:idx]
		}
		if v, err := strconv.Atoi(strings.TrimSpace(rating)); err == nil {
			r = v
		}
	}

	return r
}

// SectionSorter orders "Open" first, then "Championship", then U<Number>
// sections descending by number, then everything else lexicographically.
type SectionSorter []string

func (s SectionSorter) Len() int { return len(s) }

func (s SectionSorter) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s SectionSorter) Less(i, j int) bool {
	a, b := s[i], s[j]
	for _, first := range []string{"Open", "Championship"} {
		if a == first && b != first {
			return true
		}
		if b == first && a != first {
			return false
		}
	}
	ua, ub := strings.HasPrefix(a, "U"), strings.HasPrefix(b, "U")
	if ua && ub {
		ai, errA := strconv.Atoi(strings.TrimPrefix(a, "U"))
		bi, errB := strconv.Atoi(strings.TrimPrefix(b, "U"))
		if errA == nil && errB == nil {
			return ai > bi
		}
	}
	if ua != ub {
		return ua
	}
	return a < b
}

var (
	numOnlyRe   = regexp.MustCompile(`^\d+$`)
	roundListRe = regexp.MustCompile(`(?i)\b(?:round|rnd|rounds|rnds|rd|rds)\b[\s:]*((?:\d+(?:\s*[,&;/]\s*\d+)*))`)
	digitsRe    = regexp.MustCompile(`\d+`)
)

// ByeRequestedRounds extracts the round numbers from a free text bye request
// such as "1", "round 1,5" or "rnds 1&4".
func ByeRequestedRounds(req string) []int {
	s := strings.TrimSpace(req)
	if s == "" {
		return nil
	}
	var list string
	if numOnlyRe.MatchString(s) {
		list = s
	} else if m := roundListRe.FindStringSubmatch(s); m != nil {
		list = m[1]
	}

	var rounds []int
	for _, d := range digitsRe.FindAllString(list, -1) {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			rounds = append(rounds, n)
		}
	}
	return rounds
}

func ByeRequested(req string, round int) bool {
	for _, r := range ByeRequestedRounds(req) {
		if r == round {
			return true
		}
	}
	return false
}
