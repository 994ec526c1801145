/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bcc

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikeb26/swiss-tdbot/internal"
	"github.com/mikeb26/swiss-tdbot/swiss"
)

// GetEntries returns the registrations for an event. The JSON API and the
// public entries page are fetched concurrently and the API is preferred;
// the page is only used when the API fails or has no entries.
func (c *Client) GetEntries(ctx context.Context, eventId int64) ([]Entry, Source, error) {
	var wg sync.WaitGroup
	var detail *EventDetail
	var webEntries []Entry
	var apiErr, webErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		detail, apiErr = c.GetEventDetail(ctx, eventId)
	}()
	go func() {
		defer wg.Done()
		webEntries, webErr = c.getEntriesViaWeb(ctx, eventId)
	}()
	wg.Wait()

	if apiErr == nil && len(detail.Entries) > 0 {
		return detail.Entries, SourceAPI, nil
	}
	if webErr == nil && len(webEntries) > 0 {
		return webEntries, SourceWebsite, nil
	}
	if apiErr != nil {
		return nil, SourceAPI, apiErr
	}
	if webErr != nil {
		return nil, SourceWebsite, webErr
	}

	return nil, SourceAPI, fmt.Errorf("event %d has no entries", eventId)
}

func (c *Client) getEntriesViaWeb(ctx context.Context, eventId int64) ([]Entry, error) {
	url := fmt.Sprintf("%v/tournament/entries/%d", c.siteBase, eventId)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch entries page: %w", err)
	}
	defer resp.Body.Close()

	return ParseEntriesPage(resp.Body)
}

var memberLinkRe = regexp.MustCompile(`MbrDtlMain\.php\?(\d{6,8})`)

// ParseEntriesPage extracts entries from the table#members table of the
// public entries page. Columns are located by their header; without one the
// order is number, name, rating, USCF id.
func ParseEntriesPage(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse entries page: %w", err)
	}
	table := doc.Find("table#members").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("entries table not found")
	}

	cols := map[string]int{"num": 0, "name": 1, "rating": 2, "id": 3,
		"section": -1, "byes": -1}
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(th.Text())) {
		case "#", "no", "no.":
			cols["num"] = i
		case "name":
			cols["name"] = i
		case "rating":
			cols["rating"] = i
		case "uscf id", "id":
			cols["id"] = i
		case "section":
			cols["section"] = i
		case "byes":
			cols["byes"] = i
		}
	})
	cell := func(cells *goquery.Selection, col string) *goquery.Selection {
		if cols[col] < 0 || cols[col] >= cells.Length() {
			return nil
		}
		return cells.Eq(cols[col])
	}
	text := func(cells *goquery.Selection, col string) string {
		if c := cell(cells, col); c != nil {
			return strings.TrimSpace(c.Text())
		}
		return ""
	}

	var entries []Entry
	table.Find("tbody tr").Each(func(_ int, s *goquery.Selection) {
		cells := s.Find("td")
		if cell(cells, "name") == nil {
			return
		}
		num, _ := strconv.Atoi(text(cells, "num"))
		name := internal.NormalizeName(text(cells, "name"))
		if name == "" {
			return
		}

		e := Entry{
			PrimaryRating: text(cells, "rating"),
			SectionName:   text(cells, "section"),
			ByeRequests:   text(cells, "byes"),
			pairingNumber: num,
		}
		if c := cell(cells, "id"); c != nil {
			href, _ := c.Find("a").Attr("href")
			if m := memberLinkRe.FindStringSubmatch(href); m != nil {
				e.UscfID, _ = strconv.Atoi(m[1])
			} else {
				e.UscfID, _ = strconv.Atoi(strings.TrimSpace(c.Text()))
			}
		}
		parts := strings.Fields(name)
		e.FirstName = parts[0]
		if len(parts) > 1 {
			e.LastName = parts[len(parts)-1]
		}
		entries = append(entries, e)
	})

	return entries, nil
}

func (e *Entry) DisplayName() string {
	return internal.NormalizeName(e.FirstName + " " + e.LastName)
}

func (e *Entry) Rating() int {
	return strRatingToInt(e.PrimaryRating)
}

// Sections lists the distinct section names in display order.
func Sections(entries []Entry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if !seen[e.SectionName] {
			seen[e.SectionName] = true
			out = append(out, e.SectionName)
		}
	}
	sort.Sort(SectionSorter(out))
	return out
}

// Roster is a section's entries converted into tournament participants.
type Roster struct {
	Participants []swiss.Participant
	// US Chess member ids keyed by participant
	UscfIDs map[swiss.PlayerID]string
	// requested bye rounds keyed by participant
	ByeRequests map[swiss.PlayerID][]int
}

// BuildRoster converts the entries of one section (every entry when section
// is empty) into participants. Members are identified by their USCF id and
// everybody else by "p<n>", n being the pairing number when known and the
// position in the entry list otherwise.
func BuildRoster(entries []Entry, section string) (*Roster, error) {
	r := &Roster{
		UscfIDs:     make(map[swiss.PlayerID]string),
		ByeRequests: make(map[swiss.PlayerID][]int),
	}
	seen := make(map[swiss.PlayerID]bool)
	for i, e := range entries {
		if section != "" && !strings.EqualFold(e.SectionName, section) {
			continue
		}
		var id swiss.PlayerID
		if e.UscfID > 0 {
			id = swiss.PlayerID(strconv.Itoa(e.UscfID))
			r.UscfIDs[id] = strconv.Itoa(e.UscfID)
		} else if e.pairingNumber > 0 {
			id = swiss.PlayerID(fmt.Sprintf("p%d", e.pairingNumber))
		} else {
			id = swiss.PlayerID(fmt.Sprintf("p%d", i+1))
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %v is registered twice", swiss.ErrDataIntegrity, id)
		}
		seen[id] = true

		r.Participants = append(r.Participants, swiss.Participant{
			ID:     id,
			Name:   e.DisplayName(),
			Rating: e.Rating(),
			Active: true,
		})
		if rounds := ByeRequestedRounds(e.ByeRequests); len(rounds) > 0 {
			r.ByeRequests[id] = rounds
		}
	}
	if len(r.Participants) == 0 {
		return nil, fmt.Errorf("no entries in section %q", section)
	}

	return r, nil
}

// BuildEntriesOutput formats entries into grouped, aligned string output.
func BuildEntriesOutput(entries []Entry) string {
	var sb strings.Builder
	sections := Sections(entries)

	for _, sec := range sections {
		type row struct {
			player, rating, memid string
			ratingInt             int
		}
		var rows []row
		for _, e := range entries {
			if e.SectionName != sec {
				continue
			}
			memid := ""
			if e.UscfID > 0 {
				memid = strconv.Itoa(e.UscfID)
			}
			rows = append(rows, row{player: e.DisplayName(),
				rating: internal.RatingToString(e.Rating()), memid: memid,
				ratingInt: e.Rating()})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ratingInt > rows[j].ratingInt
		})

		maxP, maxR, maxM := len("Player"), len("Rating"), len("USCF memid")
		for _, r := range rows {
			maxP = max(maxP, len([]rune(r.player)))
			maxR = max(maxR, len(r.rating))
			maxM = max(maxM, len(r.memid))
		}

		if len(sections) > 1 {
			if sec == "" {
				sec = "UNNAMED"
			}
			sb.WriteString(fmt.Sprintf("%s Section\n", sec))
		}
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxP, "Player", maxR,
			"Rating", maxM, "USCF memid"))
		for _, r := range rows {
			pad := maxP - len([]rune(r.player))
			sb.WriteString(fmt.Sprintf("%s%s  %-*s  %-*s\n", r.player,
				strings.Repeat(" ", pad), maxR, r.rating, maxM, r.memid))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
