// Package fetch downloads remote challenge data: the JSON dataset and the
// HTML challenge calendar.
//
// Every call is bounded by the timeout passed in, on top of the caller's
// context, so one slow upstream cannot hold a scheduled job or a chat
// command indefinitely.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 4 << 20

// Fetcher is the read-only network collaborator used by the challenge resolver.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
	FetchHTML(ctx context.Context, url string, timeout time.Duration) (*html.Node, error)
}

// Client implements Fetcher over net/http.
type Client struct {
	http      *http.Client
	userAgent string
}

// compile-time check that *Client implements Fetcher
var _ Fetcher = (*Client)(nil)

// NewClient returns a Client. A nil httpClient uses a fresh http.Client.
func NewClient(httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient, userAgent: userAgent}
}

// FetchJSON returns the raw body of a 200 response. Decoding is left to the caller.
func (c *Client) FetchJSON(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.get(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: reading %s: %w", url, err)
	}
	return body, nil
}

// FetchHTML downloads and parses an HTML page.
func (c *Client) FetchHTML(ctx context.Context, url string, timeout time.Duration) (*html.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.get(ctx, url, "text/html")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: parsing %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: requesting %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch: %s returned status %d", url, resp.StatusCode)
	}
	return resp, nil
}
