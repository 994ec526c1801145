/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mikeb26/swiss-tdbot/bcc"
	"github.com/mikeb26/swiss-tdbot/internal"
)

func readRosterFile(path string) (*bcc.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readRoster(f)
}

// readRoster parses "name,rating[,uscf id]" lines. Blank lines and lines
// starting with '#' are skipped, as is a leading "name,..." header.
func readRoster(r io.Reader) (*bcc.Roster, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var entries []bcc.Entry
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("roster line %d: expected name,rating[,uscf id]", line)
		}
		fields := strings.Fields(internal.NormalizeName(rec[0]))
		if len(fields) == 0 {
			return nil, fmt.Errorf("roster line %d: missing name", line)
		}
		e := bcc.Entry{
			FirstName:     fields[0],
			PrimaryRating: strings.TrimSpace(rec[1]),
		}
		if len(fields) > 1 {
			e.LastName = fields[len(fields)-1]
		}
		if rating := e.PrimaryRating; rating != "" && !strings.EqualFold(rating, "unr.") {
			if _, err := strconv.Atoi(strings.Split(rating, "/")[0]); err != nil {
				return nil, fmt.Errorf("roster line %d: invalid rating %q", line, rating)
			}
		}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			id, err := strconv.Atoi(strings.TrimSpace(rec[2]))
			if err != nil {
				return nil, fmt.Errorf("roster line %d: invalid uscf id %q", line, rec[2])
			}
			e.UscfID = id
		}
		entries = append(entries, e)
	}

	roster, err := bcc.BuildRoster(entries, "")
	if err != nil {
		return nil, err
	}
	return roster, nil
}
