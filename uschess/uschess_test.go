/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mikeb26/swiss-tdbot/swiss"
)

var fixtures = map[string]string{
	"/members/12689073": `{"id":"12689073","firstName":"MICHAEL","lastName":"BROWN",
		"ratings":[{"rating":1712,"ratingSystem":"R"},{"rating":1650,"ratingSystem":"Q"},
		{"rating":0,"ratingSystem":"B"}]}`,
	"/members/16438266": `{"id":"16438266","firstName":"rufus","lastName":"behr",
		"ratings":[{"rating":1751,"ratingSystem":"R"}]}`,
	"/rated-events/202506242722": `{"id":"202506242722","name":"Tuesday Night Swiss",
		"endDate":"2025-06-24","sections":[{"id":"a","number":1,"name":"Open"},
		{"id":"b","number":2,"name":"Under 1600"}]}`,
	"/rated-events/202506242722/sections/1/standings": `{"items":[
		{"ordinal":1,"memberId":"101","firstName":"ANN","lastName":"ALPHA","score":2,
		 "ratings":[{"preRating":1800,"postRating":1810,"ratingSystem":"R"}],
		 "roundOutcomes":[{"roundNumber":1,"outcome":"Win","color":"White","opponentOrdinal":4},
		                  {"roundNumber":2,"outcome":"Win","color":"Black","opponentOrdinal":5}]},
		{"ordinal":2,"memberId":"102","firstName":"BEN","lastName":"BRAVO","score":1.5,
		 "ratings":[{"preRating":1700,"postRating":1705,"ratingSystem":"R"}],
		 "roundOutcomes":[{"roundNumber":1,"outcome":"Draw","color":"White","opponentOrdinal":3},
		                  {"roundNumber":2,"outcome":"WinByForfeit","opponentOrdinal":4}]},
		{"ordinal":3,"memberId":"103","firstName":"CY","lastName":"CHARLIE","score":1,
		 "ratings":[{"preRating":1600,"postRating":1601,"ratingSystem":"R"}],
		 "roundOutcomes":[{"roundNumber":1,"outcome":"Draw","color":"Black","opponentOrdinal":2},
		                  {"roundNumber":2,"outcome":"ByeHalf"}]},
		{"ordinal":4,"memberId":"104","firstName":"DEE","lastName":"DELTA","score":0,
		 "ratings":[{"preRating":1500,"postRating":1490,"ratingSystem":"R"}],
		 "roundOutcomes":[{"roundNumber":1,"outcome":"Loss","color":"Black","opponentOrdinal":1},
		                  {"roundNumber":2,"outcome":"LossByForfeit","opponentOrdinal":2}]},
		{"ordinal":5,"memberId":"","firstName":"EVE","lastName":"ECHO","score":1,
		 "roundOutcomes":[{"roundNumber":1,"outcome":"ByeFull"},
		                  {"roundNumber":2,"outcome":"Loss","color":"White","opponentOrdinal":1}]}]}`,
	"/rated-events/202506242722/sections/2/standings": `{"items":[]}`,
}

func newTestClient(t *testing.T) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		hits.Add(1)
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("request for %v without a User-Agent", r.URL.Path)
		}
		body, ok := fixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewClientWithHTTP(srv.Client(), srv.URL), &hits
}

func TestFetchPlayer(t *testing.T) {
	client, _ := newTestClient(t)

	player, err := client.FetchPlayer(context.Background(), 12689073)
	if err != nil {
		t.Fatalf("FetchPlayer error: %v", err)
	}
	if player.Name != "Michael Brown" {
		t.Errorf("expected name 'Michael Brown' but got '%v'", player.Name)
	}
	if got := player.Rating(RatingTypeRegular); got != 1712 {
		t.Errorf("expected regular rating 1712, got %v", got)
	}
	if got := player.Rating(RatingTypeQuick); got != 1650 {
		t.Errorf("expected quick rating 1650, got %v", got)
	}
	if got := player.Rating(RatingTypeBlitz); got != 0 {
		t.Errorf("expected unrated blitz, got %v", got)
	}

	_, err = client.FetchPlayer(context.Background(), 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown member, got %v", err)
	}
}

func TestLookupRatings(t *testing.T) {
	client, hits := newTestClient(t)

	ratings, err := client.LookupRatings(context.Background(),
		[]MemID{12689073, 16438266, 99}, RatingTypeRegular)
	if err != nil {
		t.Fatalf("LookupRatings error: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 lookups, got %v", hits.Load())
	}
	if len(ratings) != 2 {
		t.Fatalf("expected 2 ratings, got %v", ratings)
	}
	if ratings[12689073] != 1712 || ratings[16438266] != 1751 {
		t.Errorf("unexpected ratings %v", ratings)
	}
	if _, ok := ratings[99]; ok {
		t.Errorf("unknown member should be left out")
	}
}

func TestFetchCrossTables(t *testing.T) {
	client, _ := newTestClient(t)

	ev, err := client.FetchCrossTables(context.Background(), 202506242722)
	if err != nil {
		t.Fatalf("FetchCrossTables error: %v", err)
	}
	if ev.Event.Name != "Tuesday Night Swiss" || ev.Event.EndDate.IsZero() {
		t.Errorf("unexpected event %+v", ev.Event)
	}
	if len(ev.CrossTables) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(ev.CrossTables))
	}
	if ev.CrossTables[0].SectionNum != 1 || ev.CrossTables[1].SectionNum != 2 {
		t.Errorf("sections out of order")
	}

	if _, err := ev.Section(""); err == nil {
		t.Errorf("expected an error choosing among several sections")
	}
	if _, err := ev.Section("masters"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	xt, err := ev.Section("open")
	if err != nil {
		t.Fatalf("Section error: %v", err)
	}
	if xt.NumRounds != 2 || len(xt.PlayerEntries) != 5 {
		t.Fatalf("unexpected section shape: %d rounds %d players", xt.NumRounds,
			len(xt.PlayerEntries))
	}
	e := xt.PlayerEntries[0]
	if e.PlayerName != "Ann Alpha" || e.PlayerId != 101 || e.RatingPre != 1800 ||
		e.RatingPost != 1810 {
		t.Errorf("unexpected entry %+v", e)
	}
	if r := e.Results[0]; r.Outcome != OutcomeWin || r.OpponentPairNum != 4 ||
		r.Color != "white" {
		t.Errorf("round 1: expected win against 4 with white, got %+v", r)
	}
	if r := xt.PlayerEntries[4].Results[0]; r.Outcome != OutcomeFullBye {
		t.Errorf("round 1: expected full bye, got %+v", r)
	}
}

func TestCrossTableImport(t *testing.T) {
	client, _ := newTestClient(t)
	ev, err := client.FetchCrossTables(context.Background(), 202506242722)
	if err != nil {
		t.Fatalf("FetchCrossTables error: %v", err)
	}
	xt, _ := ev.Section("open")

	imp, err := xt.Import(swiss.DefaultConfig())
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}

	expected := []swiss.Match{
		{Round: 1, Board: 1, White: "101", Black: "104", Result: swiss.ResultWhiteWin},
		{Round: 1, Board: 2, White: "102", Black: "103", Result: swiss.ResultDraw},
		{Round: 1, White: "p5", Result: swiss.ResultBye},
		{Round: 2, Board: 1, White: "p5", Black: "101", Result: swiss.ResultBlackWin},
		{Round: 2, Board: 2, White: "102", Black: "104", Result: swiss.ResultUnplayed},
	}
	if len(imp.History) != len(expected) {
		t.Fatalf("expected %d matches, got %+v", len(expected), imp.History)
	}
	for i := range expected {
		if imp.History[i] != expected[i] {
			t.Errorf("match %d: expected %+v, got %+v", i, expected[i], imp.History[i])
		}
	}

	if len(imp.Participants) != 5 || imp.Participants[4].ID != "p5" {
		t.Errorf("unexpected participants %+v", imp.Participants)
	}
	if imp.UscfIDs["101"] != "101" {
		t.Errorf("expected member id for 101, got %v", imp.UscfIDs)
	}
	if _, ok := imp.UscfIDs["p5"]; ok {
		t.Errorf("entrant without a member id should have no USCF id")
	}

	// forfeit, half bye and the two scores they change
	if len(imp.Notes) != 4 {
		t.Errorf("expected 4 notes, got %q", imp.Notes)
	}
	var mismatch int
	for _, n := range imp.Notes {
		if strings.Contains(n, "published score") {
			mismatch++
		}
	}
	if mismatch != 2 {
		t.Errorf("expected 2 score mismatches, got %q", imp.Notes)
	}

	snap, err := swiss.Replay(imp.Participants, imp.History, swiss.DefaultConfig())
	if err != nil {
		t.Fatalf("Replay error: %v", err)
	}
	if p, _ := snap.Participant("101"); p.Score != 2 {
		t.Errorf("expected 2 points for 101, got %v", p.Score)
	}
}

func TestCrossTableImportUnknownOpponent(t *testing.T) {
	xt := &CrossTable{
		SectionName: "Open",
		NumRounds:   1,
		PlayerEntries: []CrossTableEntry{
			{PairNum: 1, PlayerName: "Ann Alpha", Results: []RoundResult{
				{OpponentPairNum: 9, Outcome: OutcomeWin, Color: "white"}}},
		},
	}
	_, err := xt.Import(swiss.DefaultConfig())
	if !errors.Is(err, swiss.ErrDataIntegrity) {
		t.Errorf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestConvertOutcome(t *testing.T) {
	tests := []struct {
		in       string
		expected Outcome
	}{
		{"Win", OutcomeWin},
		{"LossForfeit", OutcomeLossByForfeit},
		{"WinForfeit", OutcomeWinByForfeit},
		{"Unpaired", OutcomeUnplayed},
		{"ByeHalf", OutcomeHalfBye},
		{"Resigned", OutcomeUnknown},
	}
	for _, tt := range tests {
		if got := convertOutcome(tt.in); got != tt.expected {
			t.Errorf("convertOutcome(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestParseIDs(t *testing.T) {
	if id, err := ParseMemID(" 12689073 "); err != nil || id != 12689073 {
		t.Errorf("ParseMemID: got %v, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "-4"} {
		if _, err := ParseMemID(bad); err == nil {
			t.Errorf("ParseMemID(%q): expected error", bad)
		}
	}
	if _, err := ParseEventID("x"); err == nil {
		t.Errorf("ParseEventID: expected error")
	}
	if rt, err := ParseRatingType("Quick"); err != nil || rt != RatingTypeQuick {
		t.Errorf("ParseRatingType: got %v, %v", rt, err)
	}
}
