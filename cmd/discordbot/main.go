/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/swiss-tdbot/internal"
)

type TopLevelCommand string

const (
	TdCmd TopLevelCommand = "td"
)

const interactionPath = "/DiscordBot/Interaction"

type bot struct {
	dbPath   string
	pubKey   ed25519.PublicKey
	topLevel map[TopLevelCommand]CmdHandler
	subCmds  map[TdSubCommand]CmdHandler
	session  *discordgo.Session
	appID    string
}

func newBot(dbPath string, pubKey ed25519.PublicKey) *bot {
	b := &bot{
		dbPath: dbPath,
		pubKey: pubKey,
	}
	b.topLevel = map[TopLevelCommand]CmdHandler{
		TdCmd: b.tdCmdHandler,
	}
	b.subCmds = map[TdSubCommand]CmdHandler{
		TdAboutCmd:     tdAboutCmdHandler,
		TdHelpCmd:      tdHelpCmdHandler,
		TdListCmd:      b.tdListCmdHandler,
		TdPairingsCmd:  b.tdPairingsCmdHandler,
		TdStandingsCmd: b.tdStandingsCmdHandler,
	}

	return b
}

func (b *bot) interactionHandler(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, b.pubKey) {
		log.Printf("discordbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("discordbot.int: failed to read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.Printf("discordbot.int: failed to unmarshal interaction: err:%v body:%v",
			err, string(body))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := &discordgo.InteractionResponse{}
	if inter.Type == discordgo.InteractionPing {
		resp.Type = discordgo.InteractionResponsePong
	} else if inter.Type == discordgo.InteractionApplicationCommand {
		name := inter.ApplicationCommandData().Name
		hdlr, ok := b.topLevel[TopLevelCommand(name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'", name),
				Flags:   discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(r.Context(), &inter)
		}
	} else {
		log.Printf("discordbot.int: unimplemented interaction type %v", inter.Type)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("discordbot.int: failed to marshal resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(rawResp); err != nil {
		log.Printf("discordbot.int: failed to write resp: err:%v", err)
	}
}

func tournamentOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "tournament",
		Description: "Tournament id (as returned by list)",
		Required:    required,
	}
}

func broadcastOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}
}

func tdCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        string(TdCmd),
		Description: "Tournament director commands; try /td help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdHelpCmd),
				Description: "Show usage for td",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdAboutCmd),
				Description: "Show information about swiss-tdbot",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdListCmd),
				Description: "List tournaments",
				Options: []*discordgo.ApplicationCommandOption{
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdPairingsCmd),
				Description: "Get pairings for the round in progress",
				Options: []*discordgo.ApplicationCommandOption{
					tournamentOption(true),
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdStandingsCmd),
				Description: "Get standings for a tournament",
				Options: []*discordgo.ApplicationCommandOption{
					tournamentOption(true),
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "round",
						Description: "Standings after this round (default is the latest)",
						Required:    false,
					},
					broadcastOption(),
				},
			},
		},
	}
}

// registerSlashCommands creates /td, or edits it in place when it is
// already registered.
func (b *bot) registerSlashCommands() {
	tdCmd := tdCommand()

	existing, err := b.session.ApplicationCommands(b.appID, "")
	if err != nil {
		log.Printf("discordbot.reg: failed to list commands: %v", err)
		return
	}
	for _, cmd := range existing {
		if cmd.Name != tdCmd.Name {
			continue
		}
		updated, err := b.session.ApplicationCommandEdit(b.appID, "", cmd.ID,
			tdCmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to update %v: %v", tdCmd.Name,
				err)
			return
		}
		log.Printf("discordbot.reg: updated %v(cmdID:%v)", updated.Name,
			updated.ID)
		return
	}

	cmd, err := b.session.ApplicationCommandCreate(b.appID, "", tdCmd)
	if err != nil {
		log.Printf("discordbot.reg: failed to register %v: %v", tdCmd.Name, err)
		return
	}
	log.Printf("discordbot.reg: registered %v(cmdID:%v)", cmd.Name, cmd.ID)
}

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	settings, err := internal.LoadSettings()
	if err != nil {
		log.Fatalf("discordbot.main: failed to load settings: %v", err)
	}
	if err := settings.RequireDiscord(); err != nil {
		log.Fatalf("discordbot.main: %v", err)
	}

	pubKeyBytes, err := hex.DecodeString(strings.TrimSpace(settings.DiscordPublicKey))
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		log.Fatalf("discordbot.main: failed to parse public key: %v", err)
	}

	b := newBot(settings.DBPath, ed25519.PublicKey(pubKeyBytes))
	b.appID = strings.TrimSpace(settings.DiscordAppID)
	b.session, err = discordgo.New("Bot " + strings.TrimSpace(settings.DiscordToken))
	if err != nil {
		log.Fatalf("discordbot.main: failed to initialize discord client: %v", err)
	}
	b.session.UserAgent = internal.UserAgent

	go b.registerSlashCommands()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("discordbot.main: starting server on %v%v serving %v",
		hostname, settings.ListenAddr, settings.DBPath)

	mux := http.NewServeMux()
	mux.HandleFunc(interactionPath, b.interactionHandler)
	if err := http.ListenAndServe(settings.ListenAddr, mux); err != nil {
		log.Fatalf("discordbot.main: Serve failed: %v", err)
	}

	log.Printf("discordbot.main: exiting")
}
