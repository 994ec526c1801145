/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type TiebreakKind string

const (
	Buchholz        TiebreakKind = "BUCHHOLZ"
	MedianBuchholz  TiebreakKind = "MEDIAN_BUCHHOLZ"
	SonnebornBerger TiebreakKind = "SONNEBORN_BERGER"
	Cumulative      TiebreakKind = "CUMULATIVE"
	Progressive     TiebreakKind = "PROGRESSIVE"
	Performance     TiebreakKind = "PERFORMANCE"
)

var tiebreakLabels = map[TiebreakKind]string{
	Buchholz:        "Buch",
	MedianBuchholz:  "MBuch",
	SonnebornBerger: "S-B",
	Cumulative:      "Cum",
	Progressive:     "Prog",
	Performance:     "Perf",
}

func (k TiebreakKind) Valid() bool {
	_, ok := tiebreakLabels[k]
	return ok
}

// Label is the short column header used in rendered tables.
func (k TiebreakKind) Label() string {
	if l, ok := tiebreakLabels[k]; ok {
		return l
	}
	return string(k)
}

// ParseTiebreakKind is lenient about case and separators so that
// "median-buchholz" and "MEDIAN_BUCHHOLZ" are the same thing.
func ParseTiebreakKind(s string) (TiebreakKind, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "SB", "SONNEBORN":
		norm = string(SonnebornBerger)
	case "MEDIAN":
		norm = string(MedianBuchholz)
	}
	k := TiebreakKind(norm)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown tiebreak %q", ErrConfiguration, s)
	}
	return k, nil
}

// Config holds the per-tournament options the engine recognizes.
type Config struct {
	WinPoints  float64        `json:"pointsWin"`
	DrawPoints float64        `json:"pointsDraw"`
	LossPoints float64        `json:"pointsLoss"`
	ByePoints  float64        `json:"pointsBye"`
	Tiebreaks  []TiebreakKind `json:"tiebreaks"`
	// permit rematches once no rematch-free pairing of the residue exists
	AllowRematches bool `json:"allowRematches"`
	MaxByes        int  `json:"maxByes"`
}

func DefaultConfig() Config {
	return Config{
		WinPoints:      1.0,
		DrawPoints:     0.5,
		LossPoints:     0.0,
		ByePoints:      1.0,
		Tiebreaks:      []TiebreakKind{Buchholz, SonnebornBerger},
		AllowRematches: true,
		MaxByes:        1,
	}
}

func (c Config) Validate() error {
	if c.WinPoints < 0 || c.DrawPoints < 0 || c.LossPoints < 0 ||
		c.ByePoints < 0 {
		return fmt.Errorf("%w: point values must be non-negative", ErrConfiguration)
	}
	if c.WinPoints <= c.LossPoints {
		return fmt.Errorf("%w: win (%v) must be worth more than loss (%v)",
			ErrConfiguration, c.WinPoints, c.LossPoints)
	}
	if c.DrawPoints > c.WinPoints || c.DrawPoints < c.LossPoints {
		return fmt.Errorf("%w: draw (%v) must lie between loss (%v) and win (%v)",
			ErrConfiguration, c.DrawPoints, c.LossPoints, c.WinPoints)
	}
	if c.MaxByes < 1 {
		return fmt.Errorf("%w: maxByes must be at least 1, got %d",
			ErrConfiguration, c.MaxByes)
	}
	seen := make(map[TiebreakKind]bool)
	for _, k := range c.Tiebreaks {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown tiebreak %q", ErrConfiguration, k)
		}
		if seen[k] {
			return fmt.Errorf("%w: tiebreak %q listed twice", ErrConfiguration, k)
		}
		seen[k] = true
	}
	return nil
}

// pointsFor returns the points each side earns for a result.
func (c Config) pointsFor(r Result) (white float64, black float64) {
	switch r {
	case ResultWhiteWin:
		return c.WinPoints, c.LossPoints
	case ResultBlackWin:
		return c.LossPoints, c.WinPoints
	case ResultDraw:
		return c.DrawPoints, c.DrawPoints
	case ResultBye:
		return c.ByePoints, 0
	}
	return 0, 0
}

// LoadConfig decodes a JSON config over the defaults and validates it. Unset
// fields keep their default value.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	aux := struct {
		Config
		Tiebreaks []string `json:"tiebreaks"`
		ByePoints *float64 `json:"pointsBye"`
	}{Config: cfg}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&aux); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cfg = aux.Config
	if aux.ByePoints != nil {
		cfg.ByePoints = *aux.ByePoints
	} else {
		cfg.ByePoints = cfg.WinPoints
	}
	if aux.Tiebreaks != nil {
		cfg.Tiebreaks = make([]TiebreakKind, 0, len(aux.Tiebreaks))
		for _, s := range aux.Tiebreaks {
			k, err := ParseTiebreakKind(s)
			if err != nil {
				return cfg, err
			}
			cfg.Tiebreaks = append(cfg.Tiebreaks, k)
		}
	}

	return cfg, cfg.Validate()
}
