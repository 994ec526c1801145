/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/mikeb26/swiss-tdbot/bcc"
	"github.com/mikeb26/swiss-tdbot/uschess"
)

var testEntries = []bcc.Entry{
	{FirstName: "Alice", LastName: "Able", UscfID: 11, PrimaryRating: "2000"},
	{FirstName: "Bob", LastName: "Brown", UscfID: 12, PrimaryRating: "1800",
		ByeRequests: "1"},
	{FirstName: "Carol", LastName: "Cruz", UscfID: 13, PrimaryRating: "1600"},
	{FirstName: "Dan", LastName: "Dole", PrimaryRating: "1400"},
	{FirstName: "Eve", LastName: "Echo"},
}

func TestPredictSection(t *testing.T) {
	var asked []uschess.MemID
	lookup := func(ids []uschess.MemID) (map[uschess.MemID]int, error) {
		asked = ids
		return map[uschess.MemID]int{11: 2100, 13: 1650}, nil
	}

	out, err := predictSection(testEntries, "", lookup)
	if err != nil {
		t.Fatalf("predictSection returned error: %v", err)
	}
	if len(asked) != 3 {
		t.Errorf("expected 3 members looked up, got %v", asked)
	}
	if !strings.Contains(out, "Round 1 Pairings:") {
		t.Errorf("expected round 1 pairings:\n%v", out)
	}
	if !strings.Contains(out, "Alice Able(2100 0)") {
		t.Errorf("expected Alice's refreshed rating:\n%v", out)
	}
	if strings.Count(out, "Bob Brown") != 1 ||
		!strings.Contains(out, "Requested byes:\n  Bob Brown (1800)\n") {
		t.Errorf("expected Bob listed only as a requested bye:\n%v", out)
	}
	if strings.Contains(out, "BYE") {
		t.Errorf("four active players should not need a bye:\n%v", out)
	}
	if !strings.Contains(out, "2 of 5 ratings confirmed") {
		t.Errorf("expected a confirmation count:\n%v", out)
	}
}

func TestPredictSectionLookupFailure(t *testing.T) {
	lookup := func(ids []uschess.MemID) (map[uschess.MemID]int, error) {
		return nil, errors.New("ratings api down")
	}

	out, err := predictSection(testEntries[:3], "", lookup)
	if err != nil {
		t.Fatalf("predictSection returned error: %v", err)
	}
	// Bob sits out, leaving two reported ratings and no bye
	if !strings.Contains(out, "Alice Able(2000 0)") || strings.Contains(out, "BYE") {
		t.Errorf("expected reported ratings and no bye:\n%v", out)
	}
	if !strings.Contains(out, "0 of 3 ratings confirmed") {
		t.Errorf("expected no confirmed ratings:\n%v", out)
	}
}

func TestPredictSectionOddField(t *testing.T) {
	out, err := predictSection(testEntries[2:], "", nil)
	if err != nil {
		t.Fatalf("predictSection returned error: %v", err)
	}
	if !strings.Contains(out, "Eve Echo(unrated 0)  BYE") {
		t.Errorf("expected the unrated entrant to get the bye:\n%v", out)
	}
	if strings.Contains(out, "confirmed") {
		t.Errorf("no lookup means no confirmation line:\n%v", out)
	}
}
