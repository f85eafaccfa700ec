// Package judgepad provides a Go client for the judgepad API.
//
// Usage:
//
//	client := judgepad.New("http://localhost:8080")
//
//	sess, err := client.Sessions.Create(ctx)
//	res, err := client.Runs.RunSync(ctx, sess.SessionID)
//	fmt.Println(res.StatusLine)
package judgepad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client is the judgepad API client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	Sessions  *SessionsService
	Runs      *RunsService
	Assistant *AssistantService
	Languages *LanguagesService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client. baseURL is the root URL of the server
// (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	c.Sessions = &SessionsService{c: c}
	c.Runs = &RunsService{c: c}
	c.Assistant = &AssistantService{c: c}
	c.Languages = &LanguagesService{c: c}
	return c
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) (*StatusResponse, error) {
	return doRequest[StatusResponse](ctx, c, http.MethodGet, "/healthz", nil, http.StatusOK)
}

// --- internal helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("judgepad: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doRequest[T any](ctx context.Context, c *Client, method, path string, body any, expectedStatuses ...int) (*T, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	for _, s := range expectedStatuses {
		if resp.StatusCode == s {
			var out T
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return nil, fmt.Errorf("judgepad: decode response: %w", err)
			}
			return &out, nil
		}
	}
	return nil, parseError(resp)
}

func parseError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error      string `json:"error"`
		HTTPStatus int    `json:"http_status"`
		Body       string `json:"body"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		e.Message = body.Error
		e.BackendStatus = body.HTTPStatus
		e.BackendBody = body.Body
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
