/* Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package s3store

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gregjones/httpcache/test"
	"github.com/mikeb26/swiss-tdbot/swiss"
)

const testBucket = "swisstd-test"

// fakeS3 implements just enough of the path-style S3 REST API for the
// operations this package issues.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/"+testBucket)
	key := strings.TrimPrefix(path, "/")

	switch {
	case r.Method == http.MethodGet && key == "":
		f.list(w, r.URL.Query().Get("prefix"))
	case r.Method == http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			writeS3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		w.Write(data)
	case r.Method == http.MethodPut:
		if _, ok := f.objects[key]; ok && r.Header.Get("If-None-Match") == "*" {
			writeS3Error(w, http.StatusPreconditionFailed, "PreconditionFailed")
			return
		}
		data, _ := io.ReadAll(r.Body)
		f.objects[key] = data
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeS3Error(w, http.StatusNotImplemented, "NotImplemented")
	}
}

func (f *fakeS3) list(w http.ResponseWriter, prefix string) {
	type content struct {
		Key  string `xml:"Key"`
		Size int    `xml:"Size"`
	}
	type result struct {
		XMLName     xml.Name  `xml:"ListBucketResult"`
		Name        string    `xml:"Name"`
		Prefix      string    `xml:"Prefix"`
		KeyCount    int       `xml:"KeyCount"`
		IsTruncated bool      `xml:"IsTruncated"`
		Contents    []content `xml:"Contents"`
	}
	res := result{Name: testBucket, Prefix: prefix}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		res.Contents = append(res.Contents, content{Key: k, Size: len(f.objects[k])})
	}
	res.KeyCount = len(res.Contents)

	w.Header().Set("Content-Type", "application/xml")
	xml.NewEncoder(w).Encode(res)
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<Error><Code>%v</Code><Message>%v</Message></Error>", code, code)
}

func newTestBucket(t *testing.T, gzip bool) (*Bucket, *fakeS3) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	b := New(context.Background(), testBucket, gzip, true)
	b.Client = s3.New(s3.Options{
		Region:                     "us-east-1",
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		Credentials:                aws.AnonymousCredentials{},
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})

	return b, fake
}

func TestCacheConformance(t *testing.T) {
	b, _ := newTestBucket(t, false)
	test.Cache(t, b)
}

func TestCacheConformanceWithGzip(t *testing.T) {
	b, fake := newTestBucket(t, true)
	test.Cache(t, b)

	b.Set("gz-key", []byte("payload"))
	fake.mu.Lock()
	defer fake.mu.Unlock()
	found := false
	for k := range fake.objects {
		if strings.HasSuffix(k, ".gz") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a .gz object in the bucket")
	}
}

// TestCacheRealBucket runs against a real bucket when one is configured.
func TestCacheRealBucket(t *testing.T) {
	name := os.Getenv("SWISSTD_CACHE_BUCKET")
	if name == "" {
		t.Skip("SWISSTD_CACHE_BUCKET not set")
	}
	b := New(context.Background(), name, true, true)
	if err := b.Init(); err != nil {
		t.Skip(fmt.Sprintf("Skipping test due to lack of access to %v: %v",
			name, err))
	}

	test.Cache(t, b)
}

func TestCacheKeyToObjectKey(t *testing.T) {
	plain := New(context.Background(), testBucket, false, false)
	gz := New(context.Background(), testBucket, true, false)

	k1 := plain.cacheKeyToObjectKey("https://example.com/a")
	k2 := plain.cacheKeyToObjectKey("https://example.com/b")
	if k1 == k2 {
		t.Errorf("distinct keys mapped to the same object %v", k1)
	}
	if !strings.HasPrefix(k1, cachePrefix+"/") {
		t.Errorf("object key %v lacks prefix", k1)
	}
	if gz.cacheKeyToObjectKey("https://example.com/a") != k1+".gz" {
		t.Errorf("gzip key should be plain key plus .gz")
	}
}

func TestRoundArchive(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBucket(t, false)

	_, err := b.GetRound(ctx, "spring", 1)
	if !errors.Is(err, ErrRoundNotArchived) {
		t.Fatalf("expected ErrRoundNotArchived, got %v", err)
	}

	perf := 1650
	rec := &RoundRecord{
		Tournament: "spring",
		Round:      1,
		Pairings: &swiss.RoundPairings{Round: 1, Pairings: []swiss.Pairing{
			{Board: 1, White: "a", Black: "b"}}},
		Results: []swiss.Match{{Round: 1, Board: 1, White: "a", Black: "b",
			Result: swiss.ResultWhiteWin}},
		Standings: []swiss.Standing{
			{Rank: 1, ID: "a", Score: 1, Performance: &perf},
			{Rank: 2, ID: "b", Score: 0},
		},
	}
	if err := b.PutRound(ctx, rec); err != nil {
		t.Fatalf("PutRound: %v", err)
	}
	if rec.ArchivedAt.IsZero() {
		t.Errorf("ArchivedAt not stamped")
	}

	err = b.PutRound(ctx, rec)
	if !errors.Is(err, ErrRoundAlreadyArchived) {
		t.Errorf("expected ErrRoundAlreadyArchived on overwrite, got %v", err)
	}

	got, err := b.GetRound(ctx, "spring", 1)
	if err != nil {
		t.Fatalf("GetRound: %v", err)
	}
	if got.Round != 1 || len(got.Standings) != 2 ||
		got.Results[0].Result != swiss.ResultWhiteWin {
		t.Errorf("unexpected record %+v", got)
	}
	if got.Standings[0].Performance == nil || *got.Standings[0].Performance != perf {
		t.Errorf("performance not preserved")
	}

	rec2 := *rec
	rec2.Round = 2
	if err := b.PutRound(ctx, &rec2); err != nil {
		t.Fatalf("PutRound round 2: %v", err)
	}
	rounds, err := b.ArchivedRounds(ctx, "spring")
	if err != nil {
		t.Fatalf("ArchivedRounds: %v", err)
	}
	if len(rounds) != 2 || rounds[0] != 1 || rounds[1] != 2 {
		t.Errorf("expected rounds [1 2], got %v", rounds)
	}
}

func TestPutRoundRejectsInvalid(t *testing.T) {
	b, _ := newTestBucket(t, false)
	if err := b.PutRound(context.Background(), &RoundRecord{Round: 1}); err == nil {
		t.Errorf("expected error for record without tournament")
	}
}
