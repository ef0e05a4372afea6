// Package artifacts is a client for the Artifacts MMO HTTP API.
package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/artifactsbot/internal/config"
	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 32 << 20

// Status is the server status document.
type Status struct {
	Status           string         `json:"status"`
	Version          string         `json:"version"`
	MaxLevel         int            `json:"max_level"`
	CharactersOnline int            `json:"characters_online"`
	ServerTime       string         `json:"server_time"`
	Announcements    []Announcement `json:"announcements"`
}

// Announcement is a message posted by the game operators.
type Announcement struct {
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type single[T any] struct {
	Data T `json:"data"`
}

type page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client talks to the game API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	http       *http.Client
	pageSize   int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient builds a Client from cfg.
//
// Precondition: cfg has passed config validation; logger must be non-nil.
func NewClient(cfg config.ArtifactsConfig, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       &http.Client{Timeout: cfg.RequestTimeout},
		pageSize:   cfg.PageSize,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
	if c.pageSize <= 0 {
		c.pageSize = 100
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current server status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out single[Status]
	if err := c.get(ctx, "/", nil, &out); err != nil {
		return Status{}, fmt.Errorf("fetching server status: %w", err)
	}
	return out.Data, nil
}

// Items returns every item, following pagination.
func (c *Client) Items(ctx context.Context) ([]catalog.Item, error) {
	items, err := fetchAll[catalog.Item](ctx, c, "/items")
	if err != nil {
		return nil, fmt.Errorf("fetching items: %w", err)
	}
	return items, nil
}

// Monsters returns every monster, following pagination.
func (c *Client) Monsters(ctx context.Context) ([]catalog.Monster, error) {
	monsters, err := fetchAll[catalog.Monster](ctx, c, "/monsters")
	if err != nil {
		return nil, fmt.Errorf("fetching monsters: %w", err)
	}
	return monsters, nil
}

// Character returns a character by its exact, case-sensitive name.
//
// Postcondition: returns an error wrapping ErrCharacterNotFound when the API
// answers 404 or 422.
func (c *Client) Character(ctx context.Context, name string) (catalog.Character, error) {
	var out single[catalog.Character]
	err := c.get(ctx, "/characters/"+url.PathEscape(name), nil, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusUnprocessableEntity) {
			return catalog.Character{}, fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
		}
		return catalog.Character{}, fmt.Errorf("fetching character %q: %w", name, err)
	}
	return out.Data, nil
}

func fetchAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for n := 1; ; n++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(n))
		q.Set("size", strconv.Itoa(c.pageSize))

		var p page[T]
		if err := c.get(ctx, path, q, &p); err != nil {
			return nil, fmt.Errorf("page %d: %w", n, err)
		}
		if all == nil && p.Total > 0 {
			all = make([]T, 0, p.Total)
		}
		all = append(all, p.Data...)
		if n >= p.Pages || len(p.Data) == 0 {
			return all, nil
		}
	}
}

// get performs a GET with retries and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	attempts := 0
	permanent := false
	operation := func() error {
		attempts++
		err := c.attempt(ctx, target, out)
		if err == nil {
			return nil
		}
		var perm *backoff.PermanentError
		var apiErr *APIError
		switch {
		case errors.As(err, &perm):
			permanent = true
			return err
		case errors.As(err, &apiErr) && !apiErr.Retryable():
			permanent = true
			return backoff.Permanent(err)
		case ctx.Err() != nil:
			permanent = true
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.maxRetries-1)),
		ctx,
	)
	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		c.logger.Warn("retrying artifacts request",
			zap.String("url", target),
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	if err == nil {
		return nil
	}
	if permanent || ctx.Err() != nil {
		return err
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrOutOfRetries, attempts, err)
}

func (c *Client) attempt(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
