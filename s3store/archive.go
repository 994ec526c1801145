/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mikeb26/swiss-tdbot/swiss"
)

const archivePrefix = "archive"

var (
	ErrRoundNotArchived     = errors.New("round not archived")
	ErrRoundAlreadyArchived = errors.New("round already archived")
)

// RoundRecord is the immutable record written once a round is settled.
type RoundRecord struct {
	Tournament string               `json:"tournament"`
	Round      int                  `json:"round"`
	Pairings   *swiss.RoundPairings `json:"pairings,omitempty"`
	Results    []swiss.Match        `json:"results"`
	Standings  []swiss.Standing     `json:"standings"`
	ArchivedAt time.Time            `json:"archivedAt"`
}

func roundKey(tournament string, round int) string {
	return fmt.Sprintf("%v/%v/round-%03d.json", archivePrefix, tournament, round)
}

// PutRound writes rec unless the round has already been archived; archived
// rounds are never overwritten.
func (b *Bucket) PutRound(ctx context.Context, rec *RoundRecord) error {
	if rec.Tournament == "" || rec.Round < 1 {
		return fmt.Errorf("s3store.putround: invalid record %v/%v",
			rec.Tournament, rec.Round)
	}
	if rec.ArchivedAt.IsZero() {
		rec.ArchivedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("s3store.putround: %w", err)
	}

	key := roundKey(rec.Tournament, rec.Round)
	_, err = b.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("%w: %v", ErrRoundAlreadyArchived, key)
		}
		return fmt.Errorf("s3store.putround: put %v failed: %w", key, err)
	}

	return nil
}

func (b *Bucket) GetRound(ctx context.Context, tournament string,
	round int) (*RoundRecord, error) {

	key := roundKey(tournament, round)
	resp, err := b.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %v", ErrRoundNotArchived, key)
		}
		return nil, fmt.Errorf("s3store.getround: get %v failed: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("s3store.getround: read %v failed: %w", key, err)
	}
	var rec RoundRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("s3store.getround: decode %v failed: %w", key, err)
	}

	return &rec, nil
}

// ArchivedRounds lists the archived round numbers of a tournament in
// ascending order.
func (b *Bucket) ArchivedRounds(ctx context.Context, tournament string) ([]int, error) {
	prefix := fmt.Sprintf("%v/%v/", archivePrefix, tournament)
	paginator := s3.NewListObjectsV2Paginator(b.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(prefix),
	})

	var rounds []int
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3store.rounds: list %v failed: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			name = strings.TrimSuffix(strings.TrimPrefix(name, "round-"), ".json")
			if n, err := strconv.Atoi(name); err == nil {
				rounds = append(rounds, n)
			}
		}
	}
	sort.Ints(rounds)

	return rounds, nil
}
