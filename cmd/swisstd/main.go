/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mikeb26/swiss-tdbot/bcc"
	"github.com/mikeb26/swiss-tdbot/internal"
	"github.com/mikeb26/swiss-tdbot/s3store"
	"github.com/mikeb26/swiss-tdbot/store"
	"github.com/mikeb26/swiss-tdbot/swiss"
	"github.com/mikeb26/swiss-tdbot/uschess"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, env *cmdEnv, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":           handleHelp,
	"create":         handleCreate,
	"list":           handleList,
	"delete":         handleDelete,
	"pair":           handlePair,
	"unpair":         handleUnpair,
	"result":         handleResult,
	"settle":         handleSettle,
	"standings":      handleStandings,
	"export":         handleExport,
	"withdraw":       handleWithdraw,
	"reinstate":      handleReinstate,
	"add":            handleAdd,
	"ratings":        handleRatings,
	"import-uschess": handleImportUSChess,
	"archive":        handleArchive,
}

type cmdEnv struct {
	settings *internal.Settings
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	settings, err := internal.LoadSettings()
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}
	env := &cmdEnv{settings: settings}

	cmd := os.Args[1]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, env, os.Args[2:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, env *cmdEnv, args []string) {
	usage()
}

func (env *cmdEnv) openStore() *store.Store {
	st, err := store.Open(env.settings.DBPath)
	if err != nil {
		log.Fatalf("Error opening %v: %v", env.settings.DBPath, err)
	}
	return st
}

// parseWithID parses args and insists on a --id flag.
func parseWithID(fs *flag.FlagSet, args []string) string {
	id := fs.String("id", "", "Tournament ID")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *id == "" {
		fmt.Fprintln(os.Stderr, "Please provide a valid --id.")
		fs.Usage()
		os.Exit(1)
	}
	return *id
}

func handleCreate(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	configPath := fs.String("config", "", "JSON file with scoring and tiebreak settings")
	playersPath := fs.String("players", "", "CSV roster: name,rating[,uscf id]")
	eventID := fs.Int("eventid", 0, "Import the roster from a club event")
	section := fs.String("section", "", "Section of the club event")
	id := parseWithID(fs, args)

	cfg := swiss.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			log.Fatalf("Error opening %v: %v", *configPath, err)
		}
		cfg, err = swiss.LoadConfig(f)
		f.Close()
		if err != nil {
			log.Fatalf("Error loading %v: %v", *configPath, err)
		}
	}

	var roster *bcc.Roster
	var err error
	switch {
	case *playersPath != "" && *eventID > 0:
		log.Fatalf("--players and --eventid are mutually exclusive")
	case *playersPath != "":
		roster, err = readRosterFile(*playersPath)
	case *eventID > 0:
		client := bcc.NewClient(ctx, env.settings.CacheBucket)
		var entries []bcc.Entry
		var src bcc.Source
		entries, src, err = client.GetEntries(ctx, int64(*eventID))
		if err == nil {
			log.Printf("fetched %d entries for event %d via %v", len(entries),
				*eventID, src)
			roster, err = bcc.BuildRoster(entries, *section)
		}
	default:
		log.Fatalf("Please provide either --players or --eventid")
	}
	if err != nil {
		log.Fatalf("Error building roster: %v", err)
	}

	t := &store.Tournament{
		ID:           id,
		Name:         *name,
		Config:       cfg,
		Participants: roster.Participants,
		UscfIDs:      roster.UscfIDs,
	}
	st := env.openStore()
	defer st.Close()
	if err := st.Create(t); err != nil {
		log.Fatalf("Error creating %v: %v", id, err)
	}
	fmt.Printf("Created %v with %d participants\n", id, len(t.Participants))
}

func handleList(ctx context.Context, env *cmdEnv, args []string) {
	st := env.openStore()
	defer st.Close()

	ids, err := st.List()
	if err != nil {
		log.Fatalf("Error listing tournaments: %v", err)
	}
	for _, id := range ids {
		t, err := st.Get(id)
		if err != nil {
			log.Fatalf("Error loading %v: %v", id, err)
		}
		status := fmt.Sprintf("%d rounds settled", t.CompletedRounds())
		if t.Pending != nil {
			status += fmt.Sprintf(", round %d pending", t.Pending.Pairings.Round)
		}
		fmt.Printf("%v  %v  (%d players, %v)\n", id, t.Name,
			len(t.Participants), status)
	}
}

func handleDelete(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := parseWithID(fs, args)

	st := env.openStore()
	defer st.Close()
	if err := st.Delete(id); err != nil {
		log.Fatalf("Error deleting %v: %v", id, err)
	}
}

func handlePair(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("pair", flag.ExitOnError)
	id := parseWithID(fs, args)

	st := env.openStore()
	defer st.Close()
	rp, err := st.PairNextRound(id)
	if err != nil {
		log.Fatalf("Error pairing %v: %v", id, err)
	}
	t, err := st.Get(id)
	if err != nil {
		log.Fatalf("Error loading %v: %v", id, err)
	}
	snap, err := t.Snapshot()
	if err != nil {
		log.Fatalf("Error loading %v: %v", id, err)
	}
	fmt.Print(swiss.BuildPairingsOutput(snap, rp))
}

func handleUnpair(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("unpair", flag.ExitOnError)
	id := parseWithID(fs, args)

	st := env.openStore()
	defer st.Close()
	if err := st.UnpairRound(id); err != nil {
		log.Fatalf("Error unpairing %v: %v", id, err)
	}
}

func handleResult(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("result", flag.ExitOnError)
	board := fs.Int("board", 0, "Board number")
	resultStr := fs.String("result", "", "1-0, 0-1, ½-½ (or 1/2-1/2) or unplayed")
	dateStr := fs.String("date", "", "When the game was played (any common format)")
	id := parseWithID(fs, args)

	result, err := swiss.ParseResult(*resultStr)
	if err != nil || *resultStr == "" {
		log.Fatalf("Please provide a valid --result: %v", err)
	}
	playedAt, err := internal.ParseDateOrZero(*dateStr)
	if err != nil {
		log.Fatalf("Unable to parse --date %q: %v", *dateStr, err)
	}

	st := env.openStore()
	defer st.Close()
	if err := st.RecordResult(id, *board, result, playedAt); err != nil {
		log.Fatalf("Error recording result: %v", err)
	}
}

func handleSettle(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("settle", flag.ExitOnError)
	id := parseWithID(fs, args)

	st := env.openStore()
	defer st.Close()
	t, err := st.Get(id)
	if err != nil {
		log.Fatalf("Error loading %v: %v", id, err)
	}
	settlement, err := st.SettleRound(id)
	if errors.Is(err, store.ErrResultsIncomplete) {
		log.Fatalf("Round not finished: %v", err)
	} else if err != nil {
		log.Fatalf("Error settling %v: %v", id, err)
	}
	fmt.Print(swiss.BuildStandingsOutput(settlement.Round, settlement.Standings,
		t.Config.Tiebreaks))

	if env.settings.ArchiveBucket == "" {
		return
	}
	bucket := s3store.New(ctx, env.settings.ArchiveBucket, false, true)
	if err := bucket.Init(); err != nil {
		log.Fatalf("Round %d settled but archive bucket is unavailable: %v",
			settlement.Round, err)
	}
	err = bucket.PutRound(ctx, &s3store.RoundRecord{
		Tournament: id,
		Round:      settlement.Round,
		Pairings:   &settlement.Pairings,
		Results:    settlement.Results,
		Standings:  settlement.Standings,
	})
	if err != nil {
		log.Fatalf("Round %d settled but not archived: %v", settlement.Round, err)
	}
	fmt.Printf("Archived round %d to s3://%v\n", settlement.Round, bucket.Name())
}

func handleStandings(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("standings", flag.ExitOnError)
	round := fs.Int("round", 0, "Standings after this round (default latest)")
	id := parseWithID(fs, args)

	standings, r, cascade := loadStandings(env, id, *round)
	fmt.Print(swiss.BuildStandingsOutput(r, standings, cascade))
}

func loadStandings(env *cmdEnv, id string, round int) ([]swiss.Standing, int,
	[]swiss.TiebreakKind) {

	st := env.openStore()
	defer st.Close()
	t, err := st.Get(id)
	if err != nil {
		log.Fatalf("Error loading %v: %v", id, err)
	}
	if round > 0 {
		standings, ok := t.Standings[round]
		if !ok {
			log.Fatalf("No standings stored for round %d of %v", round, id)
		}
		return standings, round, t.Config.Tiebreaks
	}
	standings, r, err := st.Standings(id)
	if err != nil {
		log.Fatalf("Error computing standings for %v: %v", id, err)
	}
	return standings, r, t.Config.Tiebreaks
}

func handleExport(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	round := fs.Int("round", 0, "Standings after this round (default latest)")
	out := fs.String("out", "", "Output file (default stdout)")
	id := parseWithID(fs, args)

	standings, _, cascade := loadStandings(env, id, *round)
	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("Error creating %v: %v", *out, err)
		}
		defer f.Close()
		w = f
	}
	if err := swiss.WriteStandingsCSV(w, standings, cascade); err != nil {
		log.Fatalf("Error writing standings: %v", err)
	}
}

func handleWithdraw(ctx context.Context, env *cmdEnv, args []string) {
	setActive(env, "withdraw", args, false)
}

func handleReinstate(ctx context.Context, env *cmdEnv, args []string) {
	setActive(env, "reinstate", args, true)
}

func setActive(env *cmdEnv, name string, args []string, active bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	player := fs.String("player", "", "Participant ID")
	id := parseWithID(fs, args)
	if *player == "" {
		log.Fatalf("Please provide a valid --player.")
	}

	st := env.openStore()
	defer st.Close()
	var err error
	if active {
		err = st.Reinstate(id, swiss.PlayerID(*player))
	} else {
		err = st.Withdraw(id, swiss.PlayerID(*player))
	}
	if err != nil {
		log.Fatalf("Error updating %v: %v", *player, err)
	}
}

func handleAdd(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	player := fs.String("player", "", "Participant ID")
	name := fs.String("name", "", "Participant name")
	rating := fs.Int("rating", 0, "Rating (0 for unrated)")
	id := parseWithID(fs, args)
	if *player == "" {
		log.Fatalf("Please provide a valid --player.")
	}

	st := env.openStore()
	defer st.Close()
	err := st.AddParticipant(id, swiss.Participant{ID: swiss.PlayerID(*player),
		Name: internal.NormalizeName(*name), Rating: *rating})
	if err != nil {
		log.Fatalf("Error adding %v: %v", *player, err)
	}
}

func handleRatings(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("ratings", flag.ExitOnError)
	rtype := fs.String("type", "regular", "Rating type: regular, quick or blitz")
	id := parseWithID(fs, args)

	rt, err := uschess.ParseRatingType(*rtype)
	if err != nil {
		log.Fatalf("Invalid --type: %v", err)
	}
	st := env.openStore()
	defer st.Close()
	t, err := st.Get(id)
	if err != nil {
		log.Fatalf("Error loading %v: %v", id, err)
	}

	byMember := make(map[uschess.MemID]swiss.PlayerID)
	var memIDs []uschess.MemID
	for pid, raw := range t.UscfIDs {
		memID, err := uschess.ParseMemID(raw)
		if err != nil {
			log.Printf("skipping %v: %v", pid, err)
			continue
		}
		byMember[memID] = pid
		memIDs = append(memIDs, memID)
	}
	client := uschess.NewClient(ctx, env.settings.CacheBucket)
	ratings, err := client.LookupRatings(ctx, memIDs, rt)
	if err != nil {
		log.Fatalf("Error looking up ratings: %v", err)
	}

	updates := make(map[swiss.PlayerID]int, len(ratings))
	for memID, r := range ratings {
		updates[byMember[memID]] = r
	}
	if err := st.SetRatings(id, updates); err != nil {
		log.Fatalf("Error updating ratings: %v", err)
	}
	fmt.Printf("Updated %d of %d ratings\n", len(updates), len(t.Participants))
}

func handleImportUSChess(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("import-uschess", flag.ExitOnError)
	eventStr := fs.String("event", "", "US Chess rated event ID")
	section := fs.String("section", "", "Section name (required for multi-section events)")
	name := fs.String("name", "", "Tournament name (default the event name)")
	id := parseWithID(fs, args)

	eventID, err := uschess.ParseEventID(*eventStr)
	if err != nil {
		log.Fatalf("Please provide a valid --event: %v", err)
	}
	client := uschess.NewClient(ctx, env.settings.CacheBucket)
	ev, err := client.FetchCrossTables(ctx, eventID)
	if err != nil {
		log.Fatalf("Error fetching event %v: %v", eventID, err)
	}
	xt, err := ev.Section(*section)
	if err != nil {
		log.Fatalf("Error choosing section: %v", err)
	}
	cfg := swiss.DefaultConfig()
	imp, err := xt.Import(cfg)
	if err != nil {
		log.Fatalf("Error importing %v: %v", xt.SectionName, err)
	}
	for _, n := range imp.Notes {
		fmt.Printf("note: %v\n", n)
	}

	if *name == "" {
		*name = strings.TrimSpace(ev.Event.Name + " " + xt.SectionName)
	}
	t := &store.Tournament{
		ID:           id,
		Name:         *name,
		Config:       cfg,
		Participants: imp.Participants,
		History:      imp.History,
		UscfIDs:      imp.UscfIDs,
	}
	st := env.openStore()
	defer st.Close()
	if err := st.Import(t); err != nil {
		log.Fatalf("Error storing %v: %v", id, err)
	}
	fmt.Printf("Imported %v: %d players, %d rounds\n", id, len(t.Participants),
		t.CompletedRounds())
}

func handleArchive(ctx context.Context, env *cmdEnv, args []string) {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	round := fs.Int("round", 0, "Show this archived round (default list rounds)")
	id := parseWithID(fs, args)

	if env.settings.ArchiveBucket == "" {
		log.Fatalf("SWISSTD_ARCHIVE_BUCKET is not set")
	}
	bucket := s3store.New(ctx, env.settings.ArchiveBucket, false, true)
	if err := bucket.Init(); err != nil {
		log.Fatalf("Archive bucket is unavailable: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if *round == 0 {
		rounds, err := bucket.ArchivedRounds(ctx, id)
		if err != nil {
			log.Fatalf("Error listing archive: %v", err)
		}
		for _, r := range rounds {
			fmt.Printf("round %d\n", r)
		}
		return
	}

	rec, err := bucket.GetRound(ctx, id, *round)
	if errors.Is(err, s3store.ErrRoundNotArchived) {
		log.Fatalf("Round %d of %v has not been archived", *round, id)
	} else if err != nil {
		log.Fatalf("Error reading archive: %v", err)
	}
	var cascade []swiss.TiebreakKind
	if len(rec.Standings) > 0 {
		for _, tv := range rec.Standings[0].Tiebreaks {
			cascade = append(cascade, tv.Kind)
		}
	}
	fmt.Printf("Archived %v\n\n", rec.ArchivedAt.Format(time.RFC1123))
	fmt.Print(swiss.BuildStandingsOutput(rec.Round, rec.Standings, cascade))
}
