// Package sam is a typed client for the external opportunity search
// endpoint. The endpoint requires a bounded date window on every query and
// has a known defect: its solicitation-number filter parameter is accepted
// but silently ignored server-side, so identifier search by that field has
// to fetch broadly and filter client-side. Nothing in this package relies
// on that filter.
package sam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bidlens.app/resolver/internal/model"
)

var (
	// ErrTransport covers network failures, timeouts and non-2xx status
	// codes. Callers treat it as a tier miss, never a hard failure.
	ErrTransport = errors.New("remote transport error")

	// ErrParse covers malformed response bodies. Same recovery as
	// ErrTransport.
	ErrParse = errors.New("remote parse error")
)

const (
	// DefaultPageSize is the per-request record limit used when paging.
	DefaultPageSize = 1000

	// MaxRecords caps a full accumulation. The remote system cannot
	// filter some fields server-side, so "fetch everything in range"
	// is the only correct strategy; the cap keeps it bounded.
	MaxRecords = 20000

	requestTimeout = 30 * time.Second
)

// PageResult is one page of remote records plus the endpoint's total count.
type PageResult struct {
	Records      []model.ContractRecord
	TotalRecords int
}

// Searcher is the remote search surface the resolver depends on. It exists
// so the full-scan workaround for the broken server-side filter can be
// deleted wholesale if the endpoint is ever fixed upstream.
type Searcher interface {
	Page(ctx context.Context, window model.SearchWindow, offset, limit int) (PageResult, error)
	FetchAll(ctx context.Context, window model.SearchWindow) ([]model.ContractRecord, error)
	ByNoticeID(ctx context.Context, window model.SearchWindow, noticeID string) ([]model.ContractRecord, error)
}

// Config holds the client's endpoint settings. The API key is injected
// here at construction; resolution logic never reads the environment.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client talks to the remote opportunity search endpoint. Stateless per
// request; safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a remote search client with the fixed request timeout.
func New(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Page fetches one page of opportunities within the window. Zero results is
// success; transport and parse failures come back as distinct errors.
func (c *Client) Page(ctx context.Context, window model.SearchWindow, offset, limit int) (PageResult, error) {
	return c.search(ctx, window, offset, limit, "")
}

// ByNoticeID fetches opportunities scoped to a single canonical id.
func (c *Client) ByNoticeID(ctx context.Context, window model.SearchWindow, noticeID string) ([]model.ContractRecord, error) {
	result, err := c.search(ctx, window, 0, 10, noticeID)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// FetchAll accumulates every record in the window: sequential offsets, stop
// on a short page or at MaxRecords. Offsets must be requested in order —
// the endpoint has no stable cursor.
func (c *Client) FetchAll(ctx context.Context, window model.SearchWindow) ([]model.ContractRecord, error) {
	var all []model.ContractRecord
	for offset := 0; len(all) < MaxRecords; offset += DefaultPageSize {
		limit := DefaultPageSize
		if remaining := MaxRecords - len(all); remaining < limit {
			limit = remaining
		}

		page, err := c.Page(ctx, window, offset, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)

		if len(page.Records) < limit {
			break
		}
	}

	slog.DebugContext(ctx, "remote fetch complete", "window", window.String(), "records", len(all))
	return all, nil
}

func (c *Client) search(ctx context.Context, window model.SearchWindow, offset, limit int, noticeID string) (PageResult, error) {
	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("postedFrom", window.FromParam())
	params.Set("postedTo", window.ToParam())
	if noticeID != "" {
		params.Set("noticeid", noticeID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return PageResult{}, fmt.Errorf("%w: building request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return PageResult{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return PageResult{}, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, body)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return PageResult{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	slog.DebugContext(ctx, "remote page fetched",
		"window", window.String(),
		"offset", offset,
		"limit", limit,
		"records", len(parsed.OpportunitiesData),
		"total", parsed.TotalRecords,
		"duration_ms", time.Since(start).Milliseconds())

	return PageResult{
		Records:      toRecords(parsed.OpportunitiesData),
		TotalRecords: parsed.TotalRecords,
	}, nil
}
