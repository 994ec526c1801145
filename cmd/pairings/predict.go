/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mikeb26/swiss-tdbot/bcc"
	"github.com/mikeb26/swiss-tdbot/internal"
	"github.com/mikeb26/swiss-tdbot/swiss"
	"github.com/mikeb26/swiss-tdbot/uschess"
)

type ratingLookup func(ids []uschess.MemID) (map[uschess.MemID]int, error)

// predictSection pairs round 1 of one section. Ratings are refreshed through
// lookup when it is non-nil; entrants who asked for a round 1 bye sit out.
func predictSection(entries []bcc.Entry, section string,
	lookup ratingLookup) (string, error) {

	roster, err := bcc.BuildRoster(entries, section)
	if err != nil {
		return "", err
	}

	confirmed := 0
	if lookup != nil {
		byMember := make(map[uschess.MemID]swiss.PlayerID)
		var ids []uschess.MemID
		for pid, raw := range roster.UscfIDs {
			if memID, err := uschess.ParseMemID(raw); err == nil {
				byMember[memID] = pid
				ids = append(ids, memID)
			}
		}
		ratings, err := lookup(ids)
		if err != nil {
			log.Printf("rating lookup failed, using reported ratings: %v", err)
		}
		index := make(map[swiss.PlayerID]int, len(roster.Participants))
		for i, p := range roster.Participants {
			index[p.ID] = i
		}
		for memID, r := range ratings {
			roster.Participants[index[byMember[memID]]].Rating = r
			confirmed++
		}
	}

	var requested []swiss.Participant
	for i := range roster.Participants {
		p := &roster.Participants[i]
		for _, r := range roster.ByeRequests[p.ID] {
			if r == 1 {
				p.Active = false
				requested = append(requested, *p)
			}
		}
	}

	snap, err := swiss.BuildSnapshot(roster.Participants, nil)
	if err != nil {
		return "", err
	}
	rp, err := swiss.Pair(snap, swiss.DefaultConfig())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if section != "" {
		sb.WriteString(fmt.Sprintf("Section: %s\n", section))
	}
	sb.WriteString(swiss.BuildPairingsOutput(snap, rp))
	if len(requested) > 0 {
		sort.Slice(requested, func(i, j int) bool {
			return requested[i].Rating > requested[j].Rating
		})
		sb.WriteString("Requested byes:\n")
		for _, p := range requested {
			sb.WriteString(fmt.Sprintf("  %s (%s)\n", p.DisplayName(),
				internal.RatingToString(p.Rating)))
		}
	}
	if lookup != nil {
		sb.WriteString(fmt.Sprintf("%d of %d ratings confirmed with US Chess\n",
			confirmed, len(roster.Participants)))
	}
	sb.WriteString("\n")

	return sb.String(), nil
}
