/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/swiss-tdbot/store"
	"github.com/mikeb26/swiss-tdbot/swiss"
)

type TdSubCommand string

const (
	TdAboutCmd     TdSubCommand = "about"
	TdHelpCmd      TdSubCommand = "help"
	TdListCmd      TdSubCommand = "list"
	TdPairingsCmd  TdSubCommand = "pairings"
	TdStandingsCmd TdSubCommand = "standings"
)

type CmdHandler func(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse

func (b *bot) tdCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := CmdHandler(tdHelpCmdHandler)
	if len(data.Options) > 0 {
		if subName := data.Options[0].Name; subName != "" {
			h, ok := b.subCmds[TdSubCommand(subName)]
			if ok {
				hdlr = h
			}
		}
	}
	return hdlr(ctx, inter)
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

// subOptions holds the options of the invoked /td subcommand.
type subOptions struct {
	tournament string
	round      int
	broadcast  bool
}

func parseSubOptions(inter *discordgo.Interaction) subOptions {
	var opts subOptions
	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return opts
	}
	for _, opt := range data.Options[0].Options {
		switch opt.Name {
		case "tournament":
			opts.tournament = strings.TrimSpace(opt.StringValue())
		case "round":
			opts.round = int(opt.IntValue())
		case "broadcast":
			opts.broadcast = opt.BoolValue()
		}
	}
	return opts
}

//go:embed about.txt
var aboutText string

func tdAboutCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(aboutText)
	return resp
}

//go:embed help.md
var helpText string

func tdHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

// withTournament opens the database read-only for the duration of fn so the
// bot never holds the writer lock the director's CLI needs.
func (b *bot) withTournament(id string,
	fn func(t *store.Tournament) error) error {

	st, err := store.OpenReadOnly(b.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	t, err := st.Get(id)
	if err != nil {
		return err
	}
	return fn(t)
}

func (b *bot) tdListCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts := parseSubOptions(inter)

	st, err := store.OpenReadOnly(b.dbPath)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error opening tournaments: %v", err)
		log.Printf("discordbot.list: %v", resp.Data.Content)
		return resp
	}
	defer st.Close()

	ids, err := st.List()
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error listing tournaments: %v", err)
		log.Printf("discordbot.list: %v", resp.Data.Content)
		return resp
	}
	if len(ids) == 0 {
		resp.Data.Content = "No tournaments found."
		return resp
	}

	var sb strings.Builder
	for _, id := range ids {
		t, err := st.Get(id)
		if err != nil {
			log.Printf("discordbot.list: skipping %v: %v", id, err)
			continue
		}
		status := fmt.Sprintf("%d round(s) complete", t.CompletedRounds())
		if t.Pending != nil {
			status += fmt.Sprintf(", round %d in progress",
				t.Pending.Pairings.Round)
		}
		sb.WriteString(fmt.Sprintf("- **%v** (id:%v) %v, %d players\n", t.Name,
			t.ID, status, len(t.Participants)))
	}
	sb.WriteString("\nRun /td standings <id> or /td pairings <id> for details\n")
	resp.Data.Content = truncateContent(sb.String())

	if opts.broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// tdPairingsCmdHandler handles the /td pairings command to display the
// pairings of the round awaiting results
func (b *bot) tdPairingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts := parseSubOptions(inter)
	if opts.tournament == "" {
		resp.Data.Content = "Please provide a tournament id."
		log.Printf("discordbot.pairings: %v", resp.Data.Content)
		return resp
	}

	var out string
	err := b.withTournament(opts.tournament, func(t *store.Tournament) error {
		if t.Pending == nil {
			out = fmt.Sprintf("No pairings in progress for %v; round %d is complete.\n",
				t.Name, t.CompletedRounds())
			return nil
		}
		snap, err := t.Snapshot()
		if err != nil {
			return err
		}
		out = fmt.Sprintf("%v\n%v", t.Name,
			swiss.BuildPairingsOutput(snap, &t.Pending.Pairings))
		return nil
	})
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching pairings for %v: %v",
			opts.tournament, err)
		log.Printf("discordbot.pairings: %v", resp.Data.Content)
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(out))

	if opts.broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// tdStandingsCmdHandler handles the /td standings command to display
// standings after the latest or a given round
func (b *bot) tdStandingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts := parseSubOptions(inter)
	if opts.tournament == "" {
		resp.Data.Content = "Please provide a tournament id."
		log.Printf("discordbot.standings: %v", resp.Data.Content)
		return resp
	}

	var out string
	err := b.withTournament(opts.tournament, func(t *store.Tournament) error {
		round := opts.round
		var standings []swiss.Standing
		if round > 0 {
			var ok bool
			standings, ok = t.Standings[round]
			if !ok {
				return fmt.Errorf("no standings stored for round %d", round)
			}
		} else {
			standings, round = t.LatestStandings()
		}
		out = fmt.Sprintf("%v\n%v", t.Name,
			swiss.BuildStandingsOutput(round, standings, t.Config.Tiebreaks))
		return nil
	})
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching standings for %v: %v",
			opts.tournament, err)
		log.Printf("discordbot.standings: %v", resp.Data.Content)
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(out))

	if opts.broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
