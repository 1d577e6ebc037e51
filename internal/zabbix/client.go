// Package zabbix is a small JSON-RPC client for the Zabbix API calls the
// weathermap needs: item values, map topology and image upload.
//
// The client reads apiinfo.version before logging in and adapts to the
// server. Zabbix 6.4 and later get the session token in an
// "Authorization: Bearer" header; older servers get it in the request
// body. user.login sends "username" from 5.4 on and "user" before.
package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/mod/semver"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when a lookup expected one match and got more.
	ErrAmbiguous = errors.New("expected exactly one result")
)

// APIError is an error object returned by the Zabbix API.
type APIError struct {
	Method  string
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zabbix %s: %s (%d): %s", e.Method, e.Message, e.Code, e.Data)
}

// Client talks to one Zabbix frontend. It logs in lazily on the first
// authenticated call and is safe for concurrent use.
type Client struct {
	url      string
	login    string
	password string

	http *retryablehttp.Client
	log  *slog.Logger
	ids  atomic.Int64

	mu      sync.Mutex
	auth    string
	version string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger logs requests and retries to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
		c.http.Logger = l
	}
}

// WithRetry sets the retry count and the backoff bounds.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = max
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// New creates a client for the api_jsonrpc.php endpoint at url.
func New(url, login, password string, opts ...Option) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 3
	hc.Logger = nil

	c := &Client{
		url:      url,
		login:    login,
		password: password,
		http:     hc,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
	Auth    string `json:"auth,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *APIError       `json:"error"`
}

// Login reads the API version, authenticates and stores the session token.
// An unknown version is treated as current.
func (c *Client) Login(ctx context.Context) error {
	version, err := c.APIVersion(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		c.log.Debug("zabbix api version unknown", "url", c.url, "error", err)
	}

	userKey := "username"
	if !versionAtLeast(version, "v5.4") {
		userKey = "user"
	}
	var token string
	params := map[string]string{userKey: c.login, "password": c.password}
	if err := c.do(ctx, "user.login", params, "", &token); err != nil {
		return fmt.Errorf("login as %s: %w", c.login, err)
	}

	c.mu.Lock()
	c.auth = token
	c.version = version
	c.mu.Unlock()
	c.log.Debug("logged in to zabbix", "url", c.url, "user", c.login, "api", version)
	return nil
}

// APIVersion returns the version of the remote API. It needs no login.
func (c *Client) APIVersion(ctx context.Context) (string, error) {
	var v string
	if err := c.do(ctx, "apiinfo.version", []string{}, "", &v); err != nil {
		return "", err
	}
	return v, nil
}

// call performs an authenticated request, logging in first if needed.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	c.mu.Lock()
	auth := c.auth
	c.mu.Unlock()

	if auth == "" {
		if err := c.Login(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		auth = c.auth
		c.mu.Unlock()
	}
	return c.do(ctx, method, params, auth, result)
}

func (c *Client) do(ctx context.Context, method string, params any, auth string, result any) error {
	c.mu.Lock()
	bearer := versionAtLeast(c.version, "v6.4")
	c.mu.Unlock()

	rpc := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.ids.Add(1),
	}
	if !bearer {
		rpc.Auth = auth
	}
	body, err := json.Marshal(rpc)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	if bearer && auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("zabbix %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("zabbix %s: status %d: %s", method, resp.StatusCode, string(data))
	}

	var reply response
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if reply.Error != nil {
		reply.Error.Method = method
		return reply.Error
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(reply.Result, result); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

// versionAtLeast compares a Zabbix version such as "6.4.12" with min. An
// empty or unparsable version counts as the newest.
func versionAtLeast(version, min string) bool {
	v := "v" + version
	if version == "" || !semver.IsValid(v) {
		return true
	}
	return semver.Compare(v, min) >= 0
}

// flexInt decodes numbers the API sends either as JSON numbers or strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := parseInt(s)
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

// parseInt accepts integers and truncates decimal values.
func parseInt(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return int64(f), nil
}

// one returns the single element of items or a lookup error naming what.
func one[T any](items []T, what string) (T, error) {
	var zero T
	switch len(items) {
	case 0:
		return zero, fmt.Errorf("%s: %w", what, ErrNotFound)
	case 1:
		return items[0], nil
	default:
		return zero, fmt.Errorf("%s: %w, got %d", what, ErrAmbiguous, len(items))
	}
}
