/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mikeb26/swiss-tdbot/bcc"
	"github.com/mikeb26/swiss-tdbot/internal"
	"github.com/mikeb26/swiss-tdbot/internal/webcache"
	"github.com/mikeb26/swiss-tdbot/uschess"
)

func main() {
	eventID := flag.Int("eventid", 0, "Club event ID (instead of <url>)")
	section := flag.String("section", "", "Only predict this section")
	noLookup := flag.Bool("reported", false, "Use reported ratings without asking US Chess")
	flag.Usage = usage
	flag.Parse()
	if (*eventID <= 0) == (flag.NArg() != 1) {
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	settings, err := internal.LoadSettings()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	var entries []bcc.Entry
	if *eventID > 0 {
		client := bcc.NewClient(ctx, settings.CacheBucket)
		entries, _, err = client.GetEntries(ctx, int64(*eventID))
	} else {
		entries, err = fetchEntriesPage(ctx, settings.CacheBucket, flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("%v: Failed to retrieve entries: %v", os.Args[0], err)
	}

	var lookup ratingLookup
	if !*noLookup {
		client := uschess.NewClient(ctx, settings.CacheBucket)
		lookup = func(ids []uschess.MemID) (map[uschess.MemID]int, error) {
			return client.LookupRatings(ctx, ids, uschess.RatingTypeRegular)
		}
	}

	sections := bcc.Sections(entries)
	if *section != "" {
		sections = []string{*section}
	}
	fmt.Printf("Predicted Pairings:\n")
	for _, sec := range sections {
		out, err := predictSection(entries, sec, lookup)
		if err != nil {
			log.Printf("%v: section %q: %v", os.Args[0], sec, err)
			continue
		}
		fmt.Print(out)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage:\n\n%v [--section S] [--reported] (<url> | --eventid N)\n\nFetch tournament registrations and predict first round pairings.\n\n",
		os.Args[0])
	flag.PrintDefaults()
}

func fetchEntriesPage(ctx context.Context, cacheBucket, url string) ([]bcc.Entry, error) {
	httpClient := webcache.NewCachedHttpClient(ctx, cacheBucket, 5*time.Minute)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s", resp.Status)
	}

	return bcc.ParseEntriesPage(resp.Body)
}
