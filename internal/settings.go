/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Settings is the process configuration shared by the binaries under cmd/.
type Settings struct {
	DBPath           string
	ArchiveBucket    string
	CacheBucket      string
	DiscordToken     string
	DiscordPublicKey string
	DiscordAppID     string
	ListenAddr       string
}

// LoadSettings reads the environment after loading the given dotenv files
// (".env" when none are given). Variables already set in the environment win
// over the files. A missing file is not an error.
func LoadSettings(files ...string) (*Settings, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %v: %w", f, err)
		}
	}

	s := &Settings{
		DBPath:           getenvDefault("SWISSTD_DB", DefaultDBPath),
		ArchiveBucket:    os.Getenv("SWISSTD_ARCHIVE_BUCKET"),
		CacheBucket:      os.Getenv("SWISSTD_CACHE_BUCKET"),
		DiscordToken:     os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordPublicKey: os.Getenv("DISCORD_PUBLIC_KEY"),
		DiscordAppID:     os.Getenv("DISCORD_APP_ID"),
		ListenAddr:       getenvDefault("DISCORD_LISTEN_ADDR", DefaultListenAddr),
	}

	return s, nil
}

// RequireDiscord reports which of the Discord settings are missing.
func (s *Settings) RequireDiscord() error {
	var missing []string
	if s.DiscordToken == "" {
		missing = append(missing, "DISCORD_BOT_TOKEN")
	}
	if s.DiscordPublicKey == "" {
		missing = append(missing, "DISCORD_PUBLIC_KEY")
	}
	if s.DiscordAppID == "" {
		missing = append(missing, "DISCORD_APP_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %v", missing)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
