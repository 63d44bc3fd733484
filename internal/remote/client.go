// Package remote implements the task store and breakdown capability against
// a todump server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/todump/todump/internal/breakdown"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/server"
)

// Client talks to the /api surface with a bearer token. It satisfies
// store.Store and breakdown.Breaker.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the server at baseURL.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	var out server.TodosResponse
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &out); err != nil {
		return nil, err
	}
	if out.Todos == nil {
		out.Todos = []domain.Task{}
	}
	return out.Todos, nil
}

func (c *Client) Create(ctx context.Context, in domain.NewTask) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, err
	}
	var out server.TodoResponse
	if err := c.do(ctx, http.MethodPost, "/api/todos", in, &out); err != nil {
		return domain.Task{}, err
	}
	return out.Todo, nil
}

func (c *Client) CreateMany(ctx context.Context, in []domain.NewTask) ([]domain.Task, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one todo is required", domain.ErrValidation)
	}
	for i := range in {
		if err := in[i].Validate(); err != nil {
			return nil, err
		}
	}
	var out server.TodosResponse
	if err := c.do(ctx, http.MethodPost, "/api/todos/bulk", server.BulkRequest{Todos: in}, &out); err != nil {
		return nil, err
	}
	return out.Todos, nil
}

func (c *Client) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	if err := domain.ValidateID(id); err != nil {
		return domain.Task{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Task{}, err
	}
	var out server.TodoResponse
	body := server.UpdateRequest{ID: id, Text: patch.Text, Completed: patch.Completed}
	if err := c.do(ctx, http.MethodPatch, "/api/todos", body, &out); err != nil {
		return domain.Task{}, err
	}
	return out.Todo, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/todos?id="+url.QueryEscape(id), nil, nil)
}

// Breakdown asks the server to expand text into steps. Transport failures
// are reported as breakdown.ErrExternalService.
func (c *Client) Breakdown(ctx context.Context, text string) ([]string, error) {
	var out server.BreakdownResponse
	err := c.do(ctx, http.MethodPost, "/api/breakdown", server.BreakdownRequest{Text: text}, &out)
	if err != nil {
		if _, ok := err.(*transportError); ok {
			return nil, fmt.Errorf("%w: %w", breakdown.ErrExternalService, err)
		}
		return nil, err
	}
	return out.Steps, nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{err: fmt.Errorf("reading response: %w", err)}
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError maps an error response back onto the shared sentinels.
func decodeError(status int, data []byte) error {
	var body server.ErrorBody
	_ = json.Unmarshal(data, &body)
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	var sentinel error
	switch body.Code {
	case server.CodeValidation:
		sentinel = domain.ErrValidation
	case server.CodeUnauthorized:
		sentinel = domain.ErrUnauthorized
	case server.CodeNotFound:
		sentinel = domain.ErrNotFound
	case server.CodeConfiguration:
		sentinel = breakdown.ErrConfiguration
	case server.CodeExternalService:
		sentinel = breakdown.ErrExternalService
	case server.CodeParse:
		sentinel = breakdown.ErrParse
	default:
		switch status {
		case http.StatusBadRequest:
			sentinel = domain.ErrValidation
		case http.StatusUnauthorized, http.StatusForbidden:
			sentinel = domain.ErrUnauthorized
		case http.StatusNotFound:
			sentinel = domain.ErrNotFound
		default:
			return fmt.Errorf("server returned %d: %s", status, msg)
		}
	}
	return &remoteError{sentinel: sentinel, msg: msg}
}

// remoteError carries the server's message while matching its sentinel.
type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }
