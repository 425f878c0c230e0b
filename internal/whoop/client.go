// Package whoop talks to the WHOOP developer API: the OAuth dance, token
// upkeep and the recovery/sleep/workout collections.
package whoop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jkor2/lifeof/internal/logger"
)

const Scopes = "offline read:recovery read:cycles read:sleep read:workout read:profile read:body_measurement"

const (
	PathProfile  = "/user/profile/basic"
	PathBody     = "/user/measurement/body"
	PathRecovery = "/recovery"
	PathCycles   = "/cycle"
	PathSleep    = "/activity/sleep"
	PathWorkouts = "/activity/workout"
)

const DefaultPageSize = 25

var (
	ErrNotAuthorized  = errors.New("no WHOOP tokens found, please authorize first via /whoop/auth")
	ErrNoRefreshToken = errors.New("missing refresh_token, please reauthorize WHOOP with offline scope")
)

// HTTPError is a non-2xx answer from WHOOP.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("whoop returned %d: %s", e.Status, e.Body)
}

type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	APIBase      string
	Timeout      time.Duration
}

type Client struct {
	opts  Options
	http  *resty.Client
	store TokenStore
	now   func() time.Time

	refreshMu sync.Mutex
}

func NewClient(opts Options, store TokenStore) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	hc := resty.New().
		SetBaseURL(opts.APIBase).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{opts: opts, http: hc, store: store, now: time.Now}
}

func (c *Client) Store() TokenStore { return c.store }

// AuthURL is the consent page the user is sent to.
func (c *Client) AuthURL(state string) string {
	q := url.Values{
		"client_id":     {c.opts.ClientID},
		"response_type": {"code"},
		"scope":         {Scopes},
		"redirect_uri":  {c.opts.RedirectURI},
		"state":         {state},
	}
	return c.opts.AuthURL + "?" + q.Encode()
}

// Exchange trades an authorization code for a token and stores it.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := c.requestToken(ctx, map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  c.opts.RedirectURI,
		"client_id":     c.opts.ClientID,
		"client_secret": c.opts.ClientSecret,
	})
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, tok); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	logger.Info("whoop.connected", "has_refresh_token", tok.HasRefresh())
	return tok, nil
}

// Refresh swaps the refresh token for a new access token and stores it.
// A response without a refresh token keeps the previous one.
func (c *Client) Refresh(ctx context.Context, old *Token) (*Token, error) {
	if old == nil || !old.HasRefresh() {
		return nil, ErrNoRefreshToken
	}
	tok, err := c.requestToken(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": old.RefreshToken,
		"client_id":     c.opts.ClientID,
		"client_secret": c.opts.ClientSecret,
		"scope":         "offline",
	})
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = old.RefreshToken
	}
	if err := c.store.Save(ctx, tok); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	logger.Info("whoop.token_refreshed")
	return tok, nil
}

func (c *Client) requestToken(ctx context.Context, form map[string]string) (*Token, error) {
	var tok Token
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&tok).
		Post(c.opts.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, &HTTPError{Status: resp.StatusCode(), Body: resp.String()}
	}
	if tok.AccessToken == "" {
		return nil, &HTTPError{Status: http.StatusBadGateway, Body: "token response without access_token"}
	}
	tok.stamp(c.now())
	return &tok, nil
}

// EnsureToken returns a usable token, refreshing an expired one first.
func (c *Client) EnsureToken(ctx context.Context) (*Token, error) {
	tok, err := c.store.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}
	if tok.Expired(c.now()) {
		logger.Info("whoop.token_expired")
		return c.refreshOnce(ctx, tok)
	}
	return tok, nil
}

// refreshOnce serialises refreshes so parallel callers holding the same
// stale token trigger a single exchange.
func (c *Client) refreshOnce(ctx context.Context, stale *Token) (*Token, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if cur, err := c.store.Load(ctx); err == nil && cur.AccessToken != stale.AccessToken && !cur.Expired(c.now()) {
		return cur, nil
	}
	return c.Refresh(ctx, stale)
}

// Response is a raw WHOOP answer. Callers decide how to treat non-2xx.
type Response struct {
	Status int
	Body   []byte
}

func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Get performs an authenticated GET against the API base. On 401 it
// refreshes the token and tries exactly once more.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (*Response, error) {
	tok, err := c.EnsureToken(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, tok, path, query)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == 401 {
		logger.Warn("whoop.unauthorized", "path", path)
		if tok, err = c.refreshOnce(ctx, tok); err != nil {
			return nil, err
		}
		if resp, err = c.get(ctx, tok, path, query); err != nil {
			return nil, err
		}
	}
	logger.Debug("whoop.get", "path", path, "status", resp.StatusCode())
	return &Response{Status: resp.StatusCode(), Body: resp.Body()}, nil
}

func (c *Client) get(ctx context.Context, tok *Token, path string, query map[string]string) (*resty.Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok.AccessToken).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return resp, nil
}

// GetJSON decodes a 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &HTTPError{Status: resp.Status, Body: string(resp.Body)}
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Latest returns the newest record of a collection, nil when it is empty.
func (c *Client) Latest(ctx context.Context, path string) (json.RawMessage, error) {
	var page Page
	if err := c.GetJSON(ctx, path, map[string]string{"limit": "1"}, &page); err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, nil
	}
	return page.Records[0], nil
}

// Collect walks every page of a collection. Records gathered before a
// failing page are returned alongside the error.
func (c *Client) Collect(ctx context.Context, path string, limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	var (
		all  []json.RawMessage
		next string
	)
	for {
		q := map[string]string{"limit": strconv.Itoa(limit)}
		if next != "" {
			q["nextToken"] = next
		}
		var page Page
		if err := c.GetJSON(ctx, path, q, &page); err != nil {
			return all, err
		}
		all = append(all, page.Records...)
		if page.NextToken == "" {
			break
		}
		next = page.NextToken
	}
	logger.Info("whoop.collected", "path", path, "records", len(all))
	return all, nil
}
