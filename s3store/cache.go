/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package s3store keeps the bot's S3 backed state: an httpcache.Cache for
 * upstream ratings lookups and the per-round tournament archive. The cache is
 * based on the original github.com/sourcegraph/s3cache but updated to use
 * aws-sdk-go-v2.
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const cachePrefix = "s3cache"

// Bucket stores cache entries and archived rounds in one S3 bucket.
type Bucket struct {
	// Client is initialized by Init() from the default AWS config; callers
	// (tests in particular) may set their own instead of calling Init().
	Client *s3.Client

	name string

	// gzip cache entries; keys get a ".gz" suffix
	gzip bool

	logErrors bool

	// used for the httpcache.Cache methods which carry no context
	ctx context.Context
}

// New returns a Bucket for the named S3 bucket. Callers must invoke Init()
// (or set Client) before use.
func New(ctx context.Context, name string, gzipIn bool, logErrors bool) *Bucket {
	return &Bucket{
		ctx:       ctx,
		name:      name,
		gzip:      gzipIn,
		logErrors: logErrors,
	}
}

func (b *Bucket) Name() string {
	return b.name
}

// Init loads credentials from the default sources (environment, shared
// config files) and verifies the bucket is reachable and listable.
func (b *Bucket) Init() error {
	cfg, err := config.LoadDefaultConfig(b.ctx)
	if err != nil {
		return fmt.Errorf("s3store.init: failed to load AWS config: %w", err)
	}
	b.Client = s3.NewFromConfig(cfg)

	if _, err = b.Client.HeadBucket(b.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.name),
	}); err != nil {
		return fmt.Errorf("s3store.init: head bucket failed for %s: %w", b.name, err)
	}
	if _, err = b.Client.ListObjectsV2(b.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.name),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3store.init: list objects failed for %s: %w", b.name, err)
	}

	return nil
}

// Get implements httpcache.Cache.
func (b *Bucket) Get(key string) ([]byte, bool) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.cacheKeyToObjectKey(key)),
	}

	resp, err := b.Client.GetObject(b.ctx, input)
	if err != nil {
		// no such key just indicates a cache miss
		if b.logErrors && !isNoSuchKey(err) {
			log.Printf("s3store.get: failed to get object %v%v: %v", *input.Bucket,
				*input.Key, err)
		}
		return nil, false
	}
	defer resp.Body.Close()

	rdr := resp.Body
	if b.gzip {
		rdr, err = gzip.NewReader(rdr)
		if err != nil {
			if b.logErrors {
				log.Printf("s3store.get: failed to open compressed object %v%v: %v",
					*input.Bucket, *input.Key, err)
			}
			return nil, false
		}
		defer rdr.Close()
	}
	data, err := io.ReadAll(rdr)
	if err != nil && b.logErrors {
		log.Printf("s3store.get: failed to read object %v%v: %v",
			*input.Bucket, *input.Key, err)
	}

	return data, err == nil
}

// Set implements httpcache.Cache.
func (b *Bucket) Set(key string, data []byte) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.cacheKeyToObjectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if b.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		_, err := gw.Write(data)
		if err == nil {
			err = gw.Close()
		}
		if err != nil {
			if b.logErrors {
				log.Printf("s3store.set: failed to gzip data for %v%v: %v",
					*input.Bucket, *input.Key, err)
			}
			return
		}
		input.Body = bytes.NewReader(buf.Bytes())
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := b.Client.PutObject(b.ctx, input); err != nil && b.logErrors {
		log.Printf("s3store.set: put failed for %v%v: %v", *input.Bucket,
			*input.Key, err)
	}
}

// Delete implements httpcache.Cache.
func (b *Bucket) Delete(key string) {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.cacheKeyToObjectKey(key)),
	}

	if _, err := b.Client.DeleteObject(b.ctx, input); err != nil && b.logErrors {
		log.Printf("s3store.delete: delete failed: %v", err)
	}
}

func (b *Bucket) cacheKeyToObjectKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	objKey := fmt.Sprintf("%v/%v", cachePrefix, hex.EncodeToString(h.Sum(nil)))
	if b.gzip {
		objKey += ".gz"
	}

	return objKey
}

func isNoSuchKey(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) &&
		(apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound")
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed"
}
