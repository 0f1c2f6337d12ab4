package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// revisionHeader carries the last-known list revision on every mutating call.
// The service rejects mutations made against a stale revision.
const revisionHeader = "X-Last-Known-Revision"

// Client talks to the remote list service. Every successful call updates the
// shared revision counter; callers are expected to serialize mutating calls
// (the reconciler funnels them through a single worker).
type Client struct {
	baseURL string
	httpc   *http.Client

	mu       sync.Mutex
	revision int64
}

// NewClient creates a gateway for the service at baseURL. httpc should carry
// the bearer credential (see NewHTTPClient); nil falls back to the default
// client.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

// Revision returns the last revision the service reported.
func (c *Client) Revision() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

func (c *Client) setRevision(rev int64) {
	c.mu.Lock()
	c.revision = rev
	c.mu.Unlock()
}

// LoadAll fetches the full remote list and refreshes the revision counter.
func (c *Client) LoadAll(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load remote list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError("GET /list", resp)
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("malformed list response: %w", err)
	}
	if out.Status != "ok" {
		return nil, fmt.Errorf("list service returned status %q", out.Status)
	}

	c.setRevision(out.Revision)
	return out.List, nil
}

// Create adds a new record to the remote list.
func (c *Client) Create(ctx context.Context, rec Record) error {
	return c.mutate(ctx, http.MethodPost, "/list", &rec)
}

// Update replaces the remote record with the same id. It fails if the record
// does not exist remotely yet; callers may retry with Create.
func (c *Client) Update(ctx context.Context, rec Record) error {
	return c.mutate(ctx, http.MethodPut, "/list/"+rec.ID, &rec)
}

// Delete removes the remote record with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/list/"+id, nil)
}

func (c *Client) mutate(ctx context.Context, method, path string, rec *Record) error {
	var body io.Reader
	if rec != nil {
		payload, err := json.Marshal(elementRequest{Element: *rec})
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(revisionHeader, strconv.FormatInt(c.Revision(), 10))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(method+" "+path, resp)
	}

	var out elementResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("malformed response for %s %s: %w", method, path, err)
	}
	if out.Status != "ok" {
		return fmt.Errorf("%s %s: service returned status %q", method, path, out.Status)
	}

	c.setRevision(out.Revision)
	return nil
}

func httpError(call string, resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: HTTP %d: %s", call, resp.StatusCode, strings.TrimSpace(string(detail)))
}
