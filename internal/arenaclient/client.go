package arenaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/Cheese-chess-arena/pkg/chessdto"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// APIError is a non-2xx response from the arena API.
type APIError struct {
	Status int
	Err    chessdto.DomainError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arena api error: status=%d code=%s message=%s", e.Status, e.Err.Code, e.Err.Message)
}

// Code returns the domain error code carried by err, if any.
func Code(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Err.Code
	}
	return ""
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithPlayerID sends id as the X-Player-ID header.
func WithPlayerID(id string) Option {
	return WithHeaderProvider(func() map[string]string { return map[string]string{"X-Player-ID": id} })
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, fasthttp.MethodGet, "/healthz", nil, nil, true)
}

func (c *Client) Profiles(ctx context.Context) (*chessdto.ProfilesResponse, error) {
	var out chessdto.ProfilesResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/profiles", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, id string) (*chessdto.Profile, error) {
	var out chessdto.Profile
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/profiles/"+url.PathEscape(id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StartGame(ctx context.Context, req chessdto.StartGameRequest) (*chessdto.MoveSummary, error) {
	var out chessdto.MoveSummary
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/games", req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) State(ctx context.Context, gameID string) (*chessdto.GameState, error) {
	var out chessdto.GameState
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID, ""), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Move(ctx context.Context, gameID, move string) (*chessdto.MoveSummary, error) {
	var out chessdto.MoveSummary
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "moves"), chessdto.MoveRequest{Move: move}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EngineMove(ctx context.Context, gameID string) (*chessdto.MoveSummary, error) {
	var out chessdto.MoveSummary
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "engine-move"), nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Undo(ctx context.Context, gameID string) (*chessdto.StateResponse, error) {
	var out chessdto.StateResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "undo"), nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Resign(ctx context.Context, gameID string) (*chessdto.StateResponse, error) {
	var out chessdto.StateResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "resign"), nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Hint(ctx context.Context, gameID string) (*chessdto.Hint, error) {
	var out chessdto.Hint
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID, "hint"), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context, limit int) (*chessdto.HistoryResponse, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out chessdto.HistoryResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Record(ctx context.Context, id int64) (*chessdto.ChessGame, error) {
	var out chessdto.ChessGame
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/history/"+strconv.FormatInt(id, 10), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Player(ctx context.Context) (*chessdto.PlayerProfile, error) {
	var out chessdto.PlayerProfile
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/player", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func gamePath(gameID, action string) string {
	p := "/api/games/" + url.PathEscape(gameID)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			if attempt == attempts || !retry {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			err := decodeError(status, resp.Body())
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func decodeError(status int, body []byte) error {
	var payload chessdto.ErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Code == "" {
		return &APIError{Status: status, Err: chessdto.DomainError{Code: "http_" + strconv.Itoa(status), Message: truncate(string(body), 512)}}
	}
	return &APIError{Status: status, Err: payload.Error}
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
