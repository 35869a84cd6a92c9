// Package client talks to the calendar HTTP API and keeps a local mirror of
// the event list.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/and161185/calendar/internal/model"
	"github.com/and161185/calendar/internal/repository"
)

// MsgUnexpected is used when the server gives no message.
const MsgUnexpected = "Unexpected error, please try again"

// APIError is the single error kind surfaced to callers for failed requests.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Client is a thin JSON client for /api/event.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL (e.g. http://localhost:8080).
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) Create(ctx context.Context, in model.EventInput) (model.Event, error) {
	var ev model.Event
	err := c.do(ctx, http.MethodPost, "/api/event/create", nil, in, &ev)
	return ev, err
}

func (c *Client) List(ctx context.Context, r repository.Range) ([]model.Event, error) {
	var out []model.Event
	if err := c.do(ctx, http.MethodGet, "/api/event", rangeQuery(r), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Event{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (model.Event, error) {
	var ev model.Event
	err := c.do(ctx, http.MethodGet, "/api/event/"+url.PathEscape(id), nil, nil, &ev)
	return ev, err
}

func (c *Client) Update(ctx context.Context, id string, p model.EventPatch) (model.Event, error) {
	var ev model.Event
	err := c.do(ctx, http.MethodPut, "/api/event/"+url.PathEscape(id), nil, p, &ev)
	return ev, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/event/"+url.PathEscape(id), nil, nil, nil)
}

// Export streams the iCalendar feed into w.
func (c *Client) Export(ctx context.Context, r repository.Range, w io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, "/api/event/export.ics", rangeQuery(r), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// Health checks /health.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	resp, err := c.send(ctx, method, path, q, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, in any) (*http.Response, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

func decodeError(resp *http.Response) error {
	var env envelope
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env)
	msg := strings.TrimSpace(env.Message)
	if msg == "" {
		msg = MsgUnexpected
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func rangeQuery(r repository.Range) url.Values {
	if !r.Bounded() {
		return nil
	}
	return url.Values{
		"start": {r.Start.UTC().Format(time.RFC3339)},
		"end":   {r.End.UTC().Format(time.RFC3339)},
	}
}
