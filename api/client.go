package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-order-portal/internal/errors"
)

const maxErrorBody = 1 << 20

// Request describes one call relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Client sends JSON requests to the API gateway.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs the request and decodes a bare JSON body into out (which may be nil).
// Non-2xx statuses become *errors.APIError.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("[api.Do] decode %s %s: %w", r.Method, r.Path, err)
	}
	return nil
}

// Call performs the request and unwraps an Envelope. success=false is an error
// even when the HTTP status is 2xx.
func Call[T any](ctx context.Context, c *Client, r Request) (T, error) {
	var zero T

	resp, err := c.send(ctx, r)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return zero, decodeError(resp)
	}

	var env Envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, fmt.Errorf("[api.Call] decode %s %s: %w", r.Method, r.Path, err)
	}
	if !env.Success {
		return zero, errors.NewAPIError(resp.StatusCode, env.Message)
	}
	return env.Data, nil
}

func (c *Client) send(ctx context.Context, r Request) (*http.Response, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", errors.ErrTransport, r.Method, r.Path, err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("[api] marshal body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("[api] create request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decodeError turns a failed response into an APIError, keeping the backend
// message when the body carries one.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(data, &body); err == nil {
		message = body.Message
		if message == "" {
			message = body.Error
		}
	}
	return errors.NewAPIError(resp.StatusCode, message)
}
