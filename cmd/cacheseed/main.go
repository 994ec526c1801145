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
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mikeb26/swiss-tdbot/internal"
	"github.com/mikeb26/swiss-tdbot/store"
	"github.com/mikeb26/swiss-tdbot/uschess"
)

// this program exists just to seed the shared http cache with the US Chess
// member records of every stored participant, plus any rated events named on
// the command line, ahead of a round

// avoid pegging the US Chess API
const seedDelay = 2 * time.Second

func main() {
	events := flag.String("events", "", "Comma separated US Chess event ids to seed")
	flag.Parse()

	settings, err := internal.LoadSettings()
	if err != nil {
		log.Fatalf("cacheseed: failed to load settings: %v", err)
	}
	if settings.CacheBucket == "" {
		log.Fatalf("cacheseed: SWISSTD_CACHE_BUCKET is not set; nothing would persist")
	}

	ctx := context.Background()
	client := uschess.NewClient(ctx, settings.CacheBucket)

	ids, err := storedMemberIDs(settings.DBPath)
	if err != nil {
		log.Fatalf("cacheseed: %v", err)
	}
	for _, id := range ids {
		player, err := client.FetchPlayer(ctx, id)
		time.Sleep(seedDelay)
		if err != nil {
			// best effort
			log.Printf("cacheseed: member %v: %v", id, err)
			continue
		}

		fmt.Printf("seeded %v player data\n", player.Name)
	}

	for _, s := range strings.Split(*events, ",") {
		if strings.TrimSpace(s) == "" {
			continue
		}
		eid, err := uschess.ParseEventID(s)
		if err != nil {
			log.Printf("cacheseed: %v", err)
			continue
		}
		ev, err := client.FetchCrossTables(ctx, eid)
		time.Sleep(seedDelay)
		if err != nil {
			// best effort
			log.Printf("cacheseed: event %v: %v", eid, err)
			continue
		}

		fmt.Printf("seeded ev:%v\n", ev.Event.Name)
	}
}

// storedMemberIDs returns the distinct US Chess ids across every stored
// tournament. A missing database yields no ids.
func storedMemberIDs(dbPath string) ([]uschess.MemID, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil
	}
	st, err := store.OpenReadOnly(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	tids, err := st.List()
	if err != nil {
		return nil, err
	}
	seen := make(map[uschess.MemID]bool)
	var out []uschess.MemID
	for _, tid := range tids {
		t, err := st.Get(tid)
		if err != nil {
			return nil, err
		}
		for _, raw := range t.UscfIDs {
			id, err := uschess.ParseMemID(raw)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}
