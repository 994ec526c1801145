/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/mikeb26/swiss-tdbot/internal"
	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("not found")

// at most this many member lookups are in flight at once
const lookupConcurrency = 8

type MemID int

func ParseMemID(s string) (MemID, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid USCF member id %q", s)
	}
	return MemID(id), nil
}

type RatingType int

const (
	RatingTypeRegular RatingType = iota
	RatingTypeQuick
	RatingTypeBlitz
)

func ParseRatingType(s string) (RatingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "r", "regular":
		return RatingTypeRegular, nil
	case "q", "quick":
		return RatingTypeQuick, nil
	case "b", "blitz":
		return RatingTypeBlitz, nil
	}
	return RatingTypeRegular, fmt.Errorf("unknown rating type %q", s)
}

// ratingSystemType maps the API's ratingSystem codes. "D" is the regular
// rating of a dual-rated event.
func ratingSystemType(sys string) (RatingType, bool) {
	switch sys {
	case "R", "D":
		return RatingTypeRegular, true
	case "Q":
		return RatingTypeQuick, true
	case "B":
		return RatingTypeBlitz, true
	}
	return RatingTypeRegular, false
}

// Player holds information about a USCF member.
type Player struct {
	MemberID MemID
	Name     string
	// unrated systems are absent
	Ratings map[RatingType]int
}

// Rating returns 0 when the member is unrated in rt.
func (p *Player) Rating(rt RatingType) int {
	return p.Ratings[rt]
}

type apiMemberResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Ratings   []struct {
		Rating       int    `json:"rating"`
		RatingSystem string `json:"ratingSystem"`
	} `json:"ratings"`
}

// FetchPlayer retrieves the member profile for memberID.
func (client *Client) FetchPlayer(ctx context.Context,
	memberID MemID) (*Player, error) {

	var memberData apiMemberResponse
	err := client.getJSON(ctx, client.httpClient1day,
		fmt.Sprintf("/members/%v", memberID), &memberData)
	if err != nil {
		return nil, err
	}

	player := &Player{
		MemberID: memberID,
		Name:     internal.NormalizeName(memberData.FirstName + " " + memberData.LastName),
		Ratings:  make(map[RatingType]int),
	}
	for _, rating := range memberData.Ratings {
		if rating.Rating <= 0 {
			continue
		}
		rt, ok := ratingSystemType(rating.RatingSystem)
		if !ok {
			continue
		}
		if _, dup := player.Ratings[rt]; dup {
			continue
		}
		player.Ratings[rt] = rating.Rating
	}

	return player, nil
}

// LookupRatings fetches the current rt rating of every member in ids
// concurrently. Members the API does not know are logged and left out of the
// result; any other failure aborts the whole lookup.
func (client *Client) LookupRatings(ctx context.Context, ids []MemID,
	rt RatingType) (map[MemID]int, error) {

	var mu sync.Mutex
	ratings := make(map[MemID]int, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			p, err := client.FetchPlayer(gctx, id)
			if errors.Is(err, ErrNotFound) {
				log.Printf("uschess.LookupRatings: member %v not found", id)
				return nil
			}
			if err != nil {
				return fmt.Errorf("member %v: %w", id, err)
			}
			mu.Lock()
			ratings[id] = p.Rating(rt)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ratings, nil
}
