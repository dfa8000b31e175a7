// Package radar talks to an iNav Radar ground node over its HTTP status API.
package radar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"radarmap/internal/model"
)

const (
	statusPath = "/system/status"
	peersPath  = "/peermanager/status"

	maxBodyBytes = 1 << 20
)

// ErrMalformedReport is returned when the node answers with a payload that is not a peer report.
var ErrMalformedReport = errors.New("malformed peer report")

// StatusError is a non-2xx answer from the node. The node is reachable, the request failed.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("radar %s: unexpected status %d", e.Path, e.Code)
}

// Client reads status and peer data from a radar node.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a traced client for the node at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Status checks that the node answers. Any HTTP response counts as online.
func (c *Client) Status(ctx context.Context) error {
	resp, err := c.get(ctx, statusPath)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

// Peers fetches and decodes the peer manager report.
func (c *Client) Peers(ctx context.Context) (*model.PeerReport, error) {
	resp, err := c.get(ctx, peersPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Path: peersPath, Code: resp.StatusCode}
	}

	var report model.PeerReport
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if report.Peers == nil {
		report.Peers = []model.Peer{}
	}
	return &report, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("radar %s: %w", path, err)
	}
	return resp, nil
}
