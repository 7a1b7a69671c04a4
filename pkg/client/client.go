// Package client is the HTTP client of the reaper API, used by the
// operator CLI to run Find and drive the batch scheduler.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/contentools/reaper/pkg/persistence"
	"github.com/contentools/reaper/pkg/scheduler"
	"github.com/contentools/reaper/pkg/web"
)

const requestTimeout = 30 * time.Second

// Client talks to one reaper API deployment as one acting user. Every
// dispatch is a single bounded request, no retries.
type Client struct {
	baseURL    string
	token      string
	user       string
	httpClient *http.Client
}

func New(baseURL, token, user string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		user:    user,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Find resolves the selection on the server and returns the matched
// items in processing order.
func (c *Client) Find(ctx context.Context, req web.FindRequest) (*web.FindResponse, error) {
	var response web.FindResponse

	err := c.post(ctx, "/operations/find", req, &response, nil)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

// Dispatch sends one batch for execution. An HTTP 422 still carries the
// full counts payload and is returned as a structured outcome, not a
// transport failure.
func (c *Client) Dispatch(ctx context.Context, ids []int64, isLastBatch bool) (*scheduler.BatchOutcome, error) {
	var response web.BatchResponse

	err := c.post(ctx, "/operations/batch", web.BatchRequest{IDs: ids, IsLastBatch: isLastBatch}, &response,
		[]int{http.StatusOK, http.StatusUnprocessableEntity})
	if err != nil {
		return nil, err
	}

	return &scheduler.BatchOutcome{
		Deleted:      response.DeletedCount,
		Errors:       response.ErrorCount,
		Details:      response.Details,
		FinalMessage: response.FinalOperationMessage,
	}, nil
}

// Logs lists activity-log entries, newest first.
func (c *Client) Logs(ctx context.Context, filter persistence.LogFilter) (*web.LogsResponse, error) {
	query := url.Values{}
	if filter.Action != "" {
		query.Set("action", string(filter.Action))
	}

	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}

	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}

	path := "/logs"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response web.LogsResponse

	err := c.get(ctx, path, &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

// PurgeLogs triggers the manual retention purge and returns the number
// of entries removed.
func (c *Client) PurgeLogs(ctx context.Context) (int64, error) {
	var response web.PurgeResponse

	err := c.post(ctx, "/logs/purge", nil, &response, nil)
	if err != nil {
		return 0, err
	}

	return response.Removed, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any, acceptStatuses []int) error {
	var body io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out, acceptStatuses)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	return c.do(req, out, nil)
}

func (c *Client) do(req *http.Request, out any, acceptStatuses []int) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if c.user != "" {
		req.Header.Set(web.UserHeader, c.user)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if acceptStatuses == nil {
		acceptStatuses = []int{http.StatusOK}
	}

	accepted := false

	for _, status := range acceptStatuses {
		if resp.StatusCode == status {
			accepted = true

			break
		}
	}

	if !accepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

		return fmt.Errorf("%s returned HTTP %d: %s", req.URL.Path, resp.StatusCode, bytes.TrimSpace(detail))
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}

	return nil
}
