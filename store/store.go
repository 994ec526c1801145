/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mikeb26/swiss-tdbot/swiss"
	"go.etcd.io/bbolt"
)

const tournamentsBucket = "tournaments"

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTournamentExists    = errors.New("tournament already exists")
	ErrRoundPending        = errors.New("a round is already paired and awaiting results")
	ErrNoPendingRound      = errors.New("no round is awaiting results")
	ErrResultsIncomplete   = errors.New("results missing for some boards")
	ErrUnknownBoard        = errors.New("no such board in the pending round")
	ErrUnknownParticipant  = errors.New("no such participant")
	ErrParticipantIsActive = errors.New("participant is already active")
)

// Store persists tournaments in a bbolt database. Every mutating operation
// is one read-modify-write transaction; bbolt admits a single writer at a
// time, which is what serializes pairing and settlement per tournament.
type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	return open(path, &bbolt.Options{Timeout: 5 * time.Second})
}

// OpenReadOnly opens an existing database without taking the writer lock, for
// processes that only display state.
func OpenReadOnly(path string) (*Store, error) {
	return open(path, &bbolt.Options{Timeout: 5 * time.Second, ReadOnly: true})
}

func open(path string, opts *bbolt.Options) (*Store, error) {
	if !opts.ReadOnly {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := bbolt.Open(path, 0600, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	if opts.ReadOnly {
		return &Store{db: db}, nil
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(tournamentsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func load(tx *bbolt.Tx, id string) (*Tournament, error) {
	bucket := tx.Bucket([]byte(tournamentsBucket))
	if bucket == nil {
		return nil, fmt.Errorf("%w: %v", ErrTournamentNotFound, id)
	}
	data := bucket.Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %v", ErrTournamentNotFound, id)
	}

	var t Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %v: %w", id, err)
	}
	return &t, nil
}

func save(tx *bbolt.Tx, t *Tournament) error {
	t.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %v: %w", t.ID, err)
	}
	return tx.Bucket([]byte(tournamentsBucket)).Put([]byte(t.ID), data)
}

// update runs fn against the stored tournament and writes it back, all in one
// transaction. Nothing is written when fn fails.
func (s *Store) update(id string, fn func(t *Tournament) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		t, err := load(tx, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		return save(tx, t)
	})
}

// Create stores a new tournament. Participants must not carry any history.
func (s *Store) Create(t *Tournament) error {
	if t.ID == "" {
		return fmt.Errorf("tournament id must not be empty")
	}
	if err := t.Config.Validate(); err != nil {
		return err
	}
	if _, err := t.Snapshot(); err != nil {
		return err
	}
	for _, p := range t.Participants {
		if p.Score != 0 || len(p.Opponents) > 0 || len(p.Byes) > 0 {
			return fmt.Errorf("%w: new participant %v already has results",
				swiss.ErrDataIntegrity, p.ID)
		}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tournamentsBucket))
		if bucket.Get([]byte(t.ID)) != nil {
			return fmt.Errorf("%w: %v", ErrTournamentExists, t.ID)
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		if t.Standings == nil {
			t.Standings = make(map[int][]swiss.Standing)
		}
		return save(tx, t)
	})
}

// Import stores a tournament that already has history, rebuilding every
// ledger row from the history so scores cannot disagree with results.
func (s *Store) Import(t *Tournament) error {
	if err := t.Config.Validate(); err != nil {
		return err
	}
	snap, err := swiss.Replay(t.Participants, t.History, t.Config)
	if err != nil {
		return err
	}
	t.Participants = snap.Participants()
	t.History = snap.Matches()
	t.Standings = make(map[int][]swiss.Standing)
	if snap.Round() > 0 {
		standings, err := computeStandings(snap, t.Config, nil)
		if err != nil {
			return err
		}
		t.Standings[snap.Round()] = standings
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(tournamentsBucket)).Get([]byte(t.ID)) != nil {
			return fmt.Errorf("%w: %v", ErrTournamentExists, t.ID)
		}
		t.CreatedAt = time.Now().UTC()
		return save(tx, t)
	})
}

func (s *Store) Get(id string) (*Tournament, error) {
	var t *Tournament
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		t, err = load(tx, id)
		return err
	})
	return t, err
}

// List returns the ids of every stored tournament in key order.
func (s *Store) List() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tournamentsBucket))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tournamentsBucket))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %v", ErrTournamentNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// PairNextRound pairs the next round and marks it pending. Only one round
// may be pending at a time, so two concurrent callers cannot both pair.
func (s *Store) PairNextRound(id string) (*swiss.RoundPairings, error) {
	var rp *swiss.RoundPairings
	err := s.update(id, func(t *Tournament) error {
		if t.Pending != nil {
			return fmt.Errorf("%w: round %d of %v", ErrRoundPending,
				t.Pending.Pairings.Round, id)
		}
		snap, err := t.Snapshot()
		if err != nil {
			return err
		}
		rp, err = swiss.Pair(snap, t.Config)
		if err != nil {
			return err
		}
		t.Pending = &PendingRound{
			Pairings: *rp,
			Results:  make(map[int]swiss.Result),
			PlayedAt: make(map[int]time.Time),
		}
		for _, r := range rp.Relaxations {
			log.Printf("store.pair: %v round %d: %v vs %v rematched: %v", id,
				r.Round, r.A, r.B, r.Reason)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rp, nil
}

// UnpairRound discards the pending round's pairings and any results already
// reported for it.
func (s *Store) UnpairRound(id string) error {
	return s.update(id, func(t *Tournament) error {
		if t.Pending == nil {
			return fmt.Errorf("%w: %v", ErrNoPendingRound, id)
		}
		t.Pending = nil
		return nil
	})
}

// RecordResult reports the result of one board of the pending round. A
// result may be corrected any number of times before settlement.
func (s *Store) RecordResult(id string, board int, result swiss.Result,
	playedAt time.Time) error {

	if result == swiss.ResultBye {
		return fmt.Errorf("%w: byes are assigned by pairing, not reported",
			swiss.ErrDataIntegrity)
	}
	return s.update(id, func(t *Tournament) error {
		if t.Pending == nil {
			return fmt.Errorf("%w: %v", ErrNoPendingRound, id)
		}
		found := false
		for _, pr := range t.Pending.Pairings.Pairings {
			if pr.Board == board {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: board %d of round %d", ErrUnknownBoard, board,
				t.Pending.Pairings.Round)
		}
		if t.Pending.Results == nil {
			t.Pending.Results = make(map[int]swiss.Result)
		}
		if t.Pending.PlayedAt == nil {
			t.Pending.PlayedAt = make(map[int]time.Time)
		}
		t.Pending.Results[board] = result
		if !playedAt.IsZero() {
			t.Pending.PlayedAt[board] = playedAt
		}
		return nil
	})
}

// SettleRound applies every result of the pending round, recomputes
// standings and clears the pending round in a single transaction: either all
// participants are updated or none are.
func (s *Store) SettleRound(id string) (*Settlement, error) {
	var out *Settlement
	err := s.update(id, func(t *Tournament) error {
		if t.Pending == nil {
			return fmt.Errorf("%w: %v", ErrNoPendingRound, id)
		}
		if missing := t.Pending.missingBoards(); len(missing) > 0 {
			return fmt.Errorf("%w: round %d boards %v", ErrResultsIncomplete,
				t.Pending.Pairings.Round, missing)
		}
		snap, err := t.Snapshot()
		if err != nil {
			return err
		}
		cr := t.Pending.completedRound()
		next, err := swiss.ApplyResults(snap, cr, t.Config)
		if err != nil {
			return err
		}
		standings, err := computeStandings(next, t.Config,
			t.Standings[snap.Round()])
		if err != nil {
			return err
		}

		t.Participants = next.Participants()
		t.History = next.Matches()
		if t.Standings == nil {
			t.Standings = make(map[int][]swiss.Standing)
		}
		t.Standings[cr.Number] = standings
		out = &Settlement{
			Round:     cr.Number,
			Results:   next.RoundMatches(cr.Number),
			Pairings:  t.Pending.Pairings,
			Standings: standings,
		}
		t.Pending = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func computeStandings(snap *swiss.Snapshot, cfg swiss.Config,
	previous []swiss.Standing) ([]swiss.Standing, error) {

	tb, err := swiss.ComputeTiebreaks(snap, nil, cfg)
	if err != nil {
		return nil, err
	}
	return swiss.BuildStandings(snap, tb, cfg.Tiebreaks, previous)
}

// Standings returns the standings after the last settled round. Before any
// round is settled they are computed on the fly (everyone on zero).
func (s *Store) Standings(id string) ([]swiss.Standing, int, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, 0, err
	}
	if standings, round := t.LatestStandings(); standings != nil {
		return standings, round, nil
	}
	snap, err := t.Snapshot()
	if err != nil {
		return nil, 0, err
	}
	standings, err := computeStandings(snap, t.Config, nil)
	return standings, snap.Round(), err
}

// Withdraw excludes a participant from future pairings; its history stays.
func (s *Store) Withdraw(id string, pid swiss.PlayerID) error {
	return s.setActive(id, pid, false)
}

func (s *Store) Reinstate(id string, pid swiss.PlayerID) error {
	return s.setActive(id, pid, true)
}

func (s *Store) setActive(id string, pid swiss.PlayerID, active bool) error {
	return s.update(id, func(t *Tournament) error {
		p, err := t.Participant(pid)
		if err != nil {
			return err
		}
		if active && p.Active {
			return fmt.Errorf("%w: %v", ErrParticipantIsActive, pid)
		}
		p.Active = active
		return nil
	})
}

// AddParticipant registers a late entry on zero points.
func (s *Store) AddParticipant(id string, p swiss.Participant) error {
	return s.update(id, func(t *Tournament) error {
		if _, err := t.Participant(p.ID); err == nil {
			return fmt.Errorf("%w: duplicate participant %v",
				swiss.ErrDataIntegrity, p.ID)
		}
		t.Participants = append(t.Participants, swiss.Participant{
			ID:     p.ID,
			Name:   p.Name,
			Rating: p.Rating,
			Active: true,
		})
		_, err := t.Snapshot()
		return err
	})
}

// SetRatings overwrites participant ratings, e.g. after a refresh from the
// ratings service. Unknown ids are an error and nothing is changed.
func (s *Store) SetRatings(id string, ratings map[swiss.PlayerID]int) error {
	return s.update(id, func(t *Tournament) error {
		ids := make([]string, 0, len(ratings))
		for pid := range ratings {
			ids = append(ids, string(pid))
		}
		sort.Strings(ids)
		for _, pid := range ids {
			p, err := t.Participant(swiss.PlayerID(pid))
			if err != nil {
				return err
			}
			p.Rating = ratings[swiss.PlayerID(pid)]
		}
		return nil
	})
}
