// Package gateway is the console's only way to talk to the Order API. Reads
// are cached per tag and deduplicated; every mutation invalidates exactly
// the tags it affects.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"haulage/internal/gateway/loading"
	"haulage/internal/gateway/tagcache"
)

// LoginPath is where a 401 sends the user.
const LoginPath = "/login"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnsupported  = errors.New("operation not supported for this resource")
)

// Credentials supplies the bearer token and user id for each request.
// *session.Store implements it.
type Credentials interface {
	Credentials(ctx context.Context) (token, userID string, err error)
}

// Navigator performs client-side navigation, such as the login redirect
// after a 401.
type Navigator interface {
	Redirect(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) { f(path) }

// APIError is a failed request. Message is the server's message when it
// sent one, otherwise a "Failed to <verb> <noun>" fallback.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
}

type Client struct {
	baseURL   string
	http      *http.Client
	creds     Credentials
	nav       Navigator
	tracker   *loading.Tracker
	limiter   *rate.Limiter
	cache     *tagcache.Cache
	logger    *zap.Logger
	anonymous func(error) bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTracker(t *loading.Tracker) Option {
	return func(c *Client) { c.tracker = t }
}

func WithCache(cache *tagcache.Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithAnonymous tells the client which credential errors mean "not logged
// in" rather than a failure. Such requests go out without auth headers.
func WithAnonymous(match func(error) bool) Option {
	return func(c *Client) { c.anonymous = match }
}

func New(cfg Config, creds Credentials, nav Navigator, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway base URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: cfg.Timeout},
		creds:     creds,
		nav:       nav,
		tracker:   loading.Default,
		cache:     tagcache.New(),
		logger:    logger,
		anonymous: func(error) bool { return false },
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Cache() *tagcache.Cache {
	return c.cache
}

func (c *Client) Tracker() *loading.Tracker {
	return c.tracker
}

// request is one HTTP exchange. verb and noun build the fallback message.
type request struct {
	method string
	path   string
	body   any
	verb   string
	noun   string
}

func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	release := c.tracker.Acquire()
	defer release()

	start := time.Now()
	status, body, err := c.roundTrip(ctx, req)
	requestsTotal.WithLabelValues(req.method, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(req.method).Observe(time.Since(start).Seconds())
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, req request) (int, []byte, error) {
	fallback := fmt.Sprintf("Failed to %s %s", req.verb, req.noun)
	logger := c.logger.With(zap.String("method", req.method), zap.String("path", req.path))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, &APIError{Message: fallback, Err: err}
		}
	}

	var payload io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, &APIError{Message: fallback, Err: err}
		}
		payload = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, payload)
	if err != nil {
		return 0, nil, &APIError{Message: fallback, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, httpReq); err != nil {
		return 0, nil, &APIError{Message: fallback, Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Warn("request failed", zap.Error(err))
		return 0, nil, &APIError{Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &APIError{Status: resp.StatusCode, Message: fallback, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		logger.Info("unauthorized, redirecting to login")
		c.nav.Redirect(LoginPath)
		return resp.StatusCode, nil, &APIError{
			Status:  resp.StatusCode,
			Message: serverMessage(body, "Session expired, please log in again"),
			Err:     ErrUnauthorized,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("request rejected", zap.Int("status", resp.StatusCode))
		return resp.StatusCode, nil, &APIError{Status: resp.StatusCode, Message: serverMessage(body, fallback)}
	}

	return resp.StatusCode, body, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.creds == nil {
		return nil
	}
	token, userID, err := c.creds.Credentials(ctx)
	if err != nil {
		if c.anonymous(err) {
			return nil
		}
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}
	return nil
}

// serverMessage pulls "message" (or "error") out of an error body.
func serverMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.Error != "":
		return payload.Error
	}
	return fallback
}
