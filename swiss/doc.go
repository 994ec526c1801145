/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package swiss pairs Swiss system rounds and ranks participants.
//
// Everything here is a pure function of a Snapshot: the score ledger plus the
// full match history at the start of a round. Snapshots are never mutated;
// ApplyResults returns a new one. Any number of goroutines may call into the
// package as long as each works from its own snapshot.
//
// The package performs no locking and no I/O besides logging relaxations.
// Callers persisting tournaments must:
//
//   - write a settled round as a single transaction, so that either every
//     participant's score and history is updated or none is;
//   - allow at most one pairing computation per tournament at a time.
//
// The store package does both on top of bbolt.
package swiss
