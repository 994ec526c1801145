/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mikeb26/swiss-tdbot/store"
	"github.com/mikeb26/swiss-tdbot/swiss"
	"github.com/mikeb26/swiss-tdbot/uschess"
)

func TestStoredMemberIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "td.db")

	ids, err := storedMemberIDs(path)
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected no ids for a missing database, got %v %v", ids, err)
	}

	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, tid := range []string{"a", "b"} {
		tourney := &store.Tournament{ID: tid, Name: tid,
			Config: swiss.DefaultConfig(),
			Participants: []swiss.Participant{
				{ID: "x", Name: "X", Rating: 1500, Active: true},
				{ID: "y", Name: "Y", Rating: 1400, Active: true},
			},
			UscfIDs: map[swiss.PlayerID]string{
				"x": "30000002",
				"y": "not-a-number",
			},
		}
		if tid == "b" {
			tourney.UscfIDs["y"] = "12345678"
		}
		if err := st.Create(tourney); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	st.Close()

	ids, err = storedMemberIDs(path)
	if err != nil {
		t.Fatalf("storedMemberIDs: %v", err)
	}
	want := []uschess.MemID{12345678, 30000002}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}
