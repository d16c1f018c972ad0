package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Requester is the transport used by the gateway clients. Implementations
// are bound to a single tenant country.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

type httpStatusError struct {
	Code   int
	Method string
	URL    string
	Body   string
}

func (e *httpStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d calling %s %s", e.Code, e.Method, e.URL)
	}
	return fmt.Sprintf("HTTP %d calling %s %s: %s", e.Code, e.Method, e.URL, e.Body)
}

// Client talks JSON to the API gateway in front of the remote services and
// tags every request with the tenant country.
type Client struct {
	session *http.Client
	baseURL string
	country string
}

func NewClient(session *http.Client, baseURL, country string) *Client {
	return &Client{
		session: session,
		baseURL: strings.TrimRight(baseURL, "/"),
		country: country,
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	if body == nil {
		body = struct{}{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) newRequest(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body io.Reader,
) (*http.Request, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Country", c.country)

	return req, nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &httpStatusError{
			Code:   resp.StatusCode,
			Method: req.Method,
			URL:    req.URL.Scheme + "://" + req.URL.Host + req.URL.Path,
			Body:   strings.TrimSpace(string(b)),
		}
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(b), nil
}
