/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bcc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikeb26/swiss-tdbot/internal"
	"github.com/mikeb26/swiss-tdbot/internal/webcache"
)

const (
	DefaultAPIBase  = "https://beta.boylstonchess.org/api"
	DefaultSiteBase = "https://boylstonchess.org"
)

// registrations change by the minute right before round 1
const entriesMaxAge = 5 * time.Minute

type Client struct {
	apiBase    string
	siteBase   string
	httpClient *http.Client
}

func NewClient(ctx context.Context, cacheBucket string) *Client {
	return &Client{
		apiBase:    DefaultAPIBase,
		siteBase:   DefaultSiteBase,
		httpClient: webcache.NewCachedHttpClient(ctx, cacheBucket, entriesMaxAge),
	}
}

func NewClientWithHTTP(httpClient *http.Client, apiBase, siteBase string) *Client {
	return &Client{
		apiBase:    apiBase,
		siteBase:   siteBase,
		httpClient: httpClient,
	}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}

	return resp, nil
}

// fetchDoc gets the HTML document at the given URL.
func (c *Client) fetchDoc(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return goquery.NewDocumentFromReader(resp.Body)
}
