/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mikeb26/swiss-tdbot/internal"
	"github.com/mikeb26/swiss-tdbot/internal/webcache"
)

const DefaultBaseURL = "https://ratings-api.uschess.org/api/v1"

type Client struct {
	baseURL string
	// rated events are rarely (if ever) updated
	httpClient30day *http.Client
	httpClient1day  *http.Client
}

// NewClient returns a client whose responses are cached in cacheBucket, or in
// memory when cacheBucket is empty.
func NewClient(ctx context.Context, cacheBucket string) *Client {
	return &Client{
		baseURL:         DefaultBaseURL,
		httpClient30day: webcache.NewCachedHttpClient(ctx, cacheBucket, 30*24*time.Hour),
		httpClient1day:  webcache.NewCachedHttpClient(ctx, cacheBucket, 24*time.Hour),
	}
}

// NewClientWithHTTP is NewClient for callers that bring their own transport
// and endpoint, e.g. a mirror of the ratings API.
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		baseURL:         baseURL,
		httpClient30day: httpClient,
		httpClient1day:  httpClient,
	}
}

func (client *Client) getJSON(ctx context.Context, httpClient *http.Client,
	path string, out any) error {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		client.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request for %v: %w", path, err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing HTTP GET %v: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%v: %w", path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d for %v: %s", resp.StatusCode,
			path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %v JSON: %w", path, err)
	}

	return nil
}
