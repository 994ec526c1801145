/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/mikeb26/swiss-tdbot/internal"
	"golang.org/x/sync/errgroup"
)

type EventID int

func ParseEventID(s string) (EventID, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid rated event id %q", s)
	}
	return EventID(id), nil
}

type Event struct {
	EndDate time.Time
	Name    string
	ID      EventID
}

// Outcome is one round of one crosstable row.
type Outcome int

const (
	OutcomeWin Outcome = iota
	OutcomeLoss
	OutcomeDraw
	OutcomeFullBye
	OutcomeHalfBye
	OutcomeLossByForfeit
	OutcomeWinByForfeit
	OutcomeUnplayed
	OutcomeUnknown
)

type RoundResult struct {
	// 0 for byes and unplayed rounds
	OpponentPairNum int
	Outcome         Outcome
	Color           string
}

type CrossTableEntry struct {
	PairNum    int
	PlayerName string
	PlayerId   MemID
	RatingPre  int
	RatingPost int
	// as published, which is what the import is checked against
	TotalPoints float64
	Results     []RoundResult
}

// CrossTable holds one section of a rated event.
type CrossTable struct {
	SectionNum    int
	SectionName   string
	NumRounds     int
	RType         RatingType
	PlayerEntries []CrossTableEntry
}

type RatedEvent struct {
	Event       Event
	CrossTables []*CrossTable
}

// Section returns the cross table whose name contains name (case
// insensitive), or the only section when name is empty.
func (ev *RatedEvent) Section(name string) (*CrossTable, error) {
	if name == "" {
		if len(ev.CrossTables) == 1 {
			return ev.CrossTables[0], nil
		}
		return nil, fmt.Errorf("event %v has %d sections; pick one",
			ev.Event.ID, len(ev.CrossTables))
	}
	for _, xt := range ev.CrossTables {
		if strings.Contains(strings.ToUpper(xt.SectionName), strings.ToUpper(name)) {
			return xt, nil
		}
	}
	return nil, fmt.Errorf("event %v has no section matching %q: %w",
		ev.Event.ID, name, ErrNotFound)
}

type apiRatedEventResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Sections  []struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Name   string `json:"name"`
	} `json:"sections"`
}

type apiStandingsResponse struct {
	Items []apiStandingItem `json:"items"`
}

type apiStandingItem struct {
	Ordinal       int               `json:"ordinal"`
	PairingNumber int               `json:"pairingNumber"`
	MemberID      string            `json:"memberId"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Score         float64           `json:"score"`
	RoundOutcomes []apiRoundOutcome `json:"roundOutcomes"`
	Ratings       []apiRatingChange `json:"ratings"`
}

type apiRoundOutcome struct {
	RoundNumber     int    `json:"roundNumber"`
	Outcome         string `json:"outcome"`
	Color           string `json:"color"`
	OpponentOrdinal int    `json:"opponentOrdinal"`
}

type apiRatingChange struct {
	PreRating    int    `json:"preRating"`
	PostRating   int    `json:"postRating"`
	RatingSystem string `json:"ratingSystem"`
}

// FetchCrossTables retrieves every section of a rated event. Sections are
// fetched concurrently and returned in section order.
func (client *Client) FetchCrossTables(ctx context.Context,
	id EventID) (*RatedEvent, error) {

	var eventData apiRatedEventResponse
	err := client.getJSON(ctx, client.httpClient30day,
		fmt.Sprintf("/rated-events/%v", id), &eventData)
	if err != nil {
		return nil, err
	}

	xts := make([]*CrossTable, len(eventData.Sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, section := range eventData.Sections {
		g.Go(func() error {
			var standings apiStandingsResponse
			err := client.getJSON(gctx, client.httpClient30day,
				fmt.Sprintf("/rated-events/%v/sections/%d/standings", id,
					section.Number), &standings)
			if err != nil {
				return fmt.Errorf("section %d: %w", section.Number, err)
			}
			xts[i] = convertStandingsToCrossTable(&standings, section.Number,
				section.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	endDate, err := internal.ParseDateOrZero(eventData.EndDate)
	if err != nil {
		log.Printf("uschess.FetchCrossTables: warning: unable to parse event end date %v: %v",
			eventData.EndDate, err)
	}

	return &RatedEvent{
		Event: Event{
			EndDate: endDate,
			Name:    eventData.Name,
			ID:      id,
		},
		CrossTables: xts,
	}, nil
}

func convertStandingsToCrossTable(standings *apiStandingsResponse,
	sectionNum int, sectionName string) *CrossTable {

	xt := &CrossTable{
		SectionNum:  sectionNum,
		SectionName: sectionName,
		RType:       sectionRatingType(standings),
	}

	for _, item := range standings.Items {
		entry := CrossTableEntry{
			PairNum:     item.Ordinal,
			PlayerName:  internal.NormalizeName(item.FirstName + " " + item.LastName),
			TotalPoints: item.Score,
		}
		if item.MemberID != "" {
			memberID, err := strconv.Atoi(item.MemberID)
			if err != nil {
				log.Printf("uschess.FetchCrossTables: warning: bad member id %q for %v",
					item.MemberID, entry.PlayerName)
			}
			entry.PlayerId = MemID(memberID)
		}
		for _, rating := range item.Ratings {
			if rt, ok := ratingSystemType(rating.RatingSystem); ok && rt == xt.RType {
				entry.RatingPre = rating.PreRating
				entry.RatingPost = rating.PostRating
				break
			}
		}

		// the API lists outcomes by round number, possibly with gaps
		for _, outcome := range item.RoundOutcomes {
			if outcome.RoundNumber < 1 {
				continue
			}
			for len(entry.Results) < outcome.RoundNumber {
				entry.Results = append(entry.Results,
					RoundResult{Outcome: OutcomeUnplayed})
			}
			entry.Results[outcome.RoundNumber-1] = RoundResult{
				OpponentPairNum: outcome.OpponentOrdinal,
				Outcome:         convertOutcome(outcome.Outcome),
				Color:           convertColor(outcome.Color),
			}
		}
		if len(entry.Results) > xt.NumRounds {
			xt.NumRounds = len(entry.Results)
		}
		xt.PlayerEntries = append(xt.PlayerEntries, entry)
	}

	return xt
}

// sectionRatingType looks at the first rated row. Dual-rated sections count
// as regular.
func sectionRatingType(standings *apiStandingsResponse) RatingType {
	for _, item := range standings.Items {
		if len(item.Ratings) == 0 {
			continue
		}
		for _, rating := range item.Ratings {
			if rt, ok := ratingSystemType(rating.RatingSystem); ok && rt == RatingTypeRegular {
				return rt
			}
		}
		if rt, ok := ratingSystemType(item.Ratings[0].RatingSystem); ok {
			return rt
		}
		break
	}
	return RatingTypeRegular
}

func convertOutcome(outcome string) Outcome {
	switch outcome {
	case "Win":
		return OutcomeWin
	case "Loss":
		return OutcomeLoss
	case "Draw":
		return OutcomeDraw
	case "ByeFull":
		return OutcomeFullBye
	case "ByeHalf":
		return OutcomeHalfBye
	case "LossByForfeit", "LossForfeit":
		return OutcomeLossByForfeit
	case "WinByForfeit", "WinForfeit":
		return OutcomeWinByForfeit
	case "Unplayed", "Unpaired":
		return OutcomeUnplayed
	default:
		return OutcomeUnknown
	}
}

func convertColor(color string) string {
	switch strings.ToLower(color) {
	case "white":
		return "white"
	case "black":
		return "black"
	default:
		return ""
	}
}
