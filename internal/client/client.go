// Package client talks to the LifeOf API for the terminal front end.
//
// Write calls return *APIError on any non-2xx answer. List reads never
// fail: on error they log and hand back empty data so screens still render.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/model"
)

const DefaultBaseURL = "http://localhost:8000"

// APIError is a non-2xx answer. Detail is the server's message when it sent one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string { return e.Detail }

type Client struct {
	http  *resty.Client
	state *State
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	h := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: h}
}

// SetToken sends token as a bearer credential on every request.
func (c *Client) SetToken(token string) { c.http.SetAuthToken(token) }

// OnTokenRenewed calls fn with the replacement token the server hands out
// when the current one is close to expiry.
func (c *Client) OnTokenRenewed(fn func(string)) {
	c.http.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		if tok := r.Header().Get("X-New-Token"); tok != "" {
			c.http.SetAuthToken(tok)
			fn(tok)
		}
		return nil
	})
}

// WithState makes created entries and the chosen period persist in s.
func (c *Client) WithState(s *State) *Client {
	c.state = s
	return c
}

func (c *Client) State() *State { return c.state }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func apiError(resp *resty.Response) *APIError {
	e := &APIError{Status: resp.StatusCode()}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			e.Detail = s
		}
	}
	if e.Detail == "" {
		e.Detail = fmt.Sprintf("Request failed (%d)", e.Status)
	}
	return e
}

// list fetches a JSON array. Anything but a decodable array yields nil.
func list[T any](ctx context.Context, c *Client, path string, query map[string]string) []T {
	resp, err := c.http.R().SetContext(ctx).SetQueryParams(query).Get(path)
	if err == nil && resp.IsError() {
		err = apiError(resp)
	}
	if err != nil {
		logger.Warn("client.read_failed", "path", path, "err", err)
		return nil
	}
	var out []T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		logger.Warn("client.read_malformed", "path", path, "err", err)
		return nil
	}
	return out
}

func (c *Client) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	var out model.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", model.LoginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Attributes(ctx context.Context) []model.AttributeDefinition {
	return list[model.AttributeDefinition](ctx, c, "/attribute-definitions", nil)
}

func (c *Client) CreateAttribute(ctx context.Context, in model.AttributeDefinitionInput) (*model.AttributeDefinition, error) {
	var out model.AttributeDefinition
	if err := c.do(ctx, http.MethodPost, "/attribute-definitions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAttribute(ctx context.Context, id string, in model.AttributeDefinitionInput) (*model.AttributeDefinition, error) {
	var out model.AttributeDefinition
	if err := c.do(ctx, http.MethodPut, "/attribute-definitions/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAttribute(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/attribute-definitions/"+id, nil, nil)
}

// Entries lists entries, optionally only those with the given visibility.
func (c *Client) Entries(ctx context.Context, visibility string) []model.Entry {
	var q map[string]string
	if visibility != "" {
		q = map[string]string{"visibility": visibility}
	}
	return list[model.Entry](ctx, c, "/entries/", q)
}

func (c *Client) Entry(ctx context.Context, id string) (*model.Entry, error) {
	var out model.Entry
	if err := c.do(ctx, http.MethodGet, "/entries/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEntry saves a new entry and remembers its id and period.
func (c *Client) CreateEntry(ctx context.Context, in model.EntryInput) (*model.Entry, error) {
	var out model.EntryCreatedResponse
	if err := c.do(ctx, http.MethodPost, "/entries/", in, &out); err != nil {
		return nil, err
	}
	if c.state != nil {
		c.state.CurrentEntryID = out.ID
		c.state.LastPeriod = out.DayPeriod
		if err := c.state.Save(); err != nil {
			logger.Warn("client.state_save_failed", "err", err)
		}
	}
	return &out.Entry, nil
}

func (c *Client) UpdateEntry(ctx context.Context, id string, in model.EntryInput) (*model.Entry, error) {
	var out model.Entry
	if err := c.do(ctx, http.MethodPut, "/entries/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetVisibility(ctx context.Context, id, visibility string) error {
	return c.do(ctx, http.MethodPatch, "/entries/"+id+"/visibility", model.VisibilityRequest{Visibility: visibility}, nil)
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/entries/"+id, nil, nil)
}

// AddNote attaches a note to entryID, or to the last created entry when
// entryID is empty. Nothing is sent when neither is known.
func (c *Client) AddNote(ctx context.Context, entryID, content string) (*model.Note, error) {
	var fallback string
	if c.state != nil {
		fallback = c.state.CurrentEntryID
	}
	target, err := lifelog.NoteTarget(entryID, fallback, content)
	if err != nil {
		return nil, err
	}
	var out model.NoteResponse
	if err := c.do(ctx, http.MethodPost, "/entries/"+target+"/notes", model.NoteRequest{Content: content}, &out); err != nil {
		return nil, err
	}
	return &out.Note, nil
}

// Export downloads the entries spreadsheet.
func (c *Client) Export(ctx context.Context, visibility string) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if visibility != "" {
		req.SetQueryParam("visibility", visibility)
	}
	resp, err := req.Get("/entries/export.xlsx")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return resp.Body(), nil
}

func (c *Client) WhoopStatus(ctx context.Context) (*model.WhoopStatus, error) {
	var out model.WhoopStatus
	if err := c.do(ctx, http.MethodGet, "/whoop/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WhoopData returns the raw JSON per collection, empty on error.
func (c *Client) WhoopData(ctx context.Context) map[string]json.RawMessage {
	out := map[string]json.RawMessage{}
	if err := c.do(ctx, http.MethodGet, "/whoop/data", nil, &out); err != nil {
		logger.Warn("client.read_failed", "path", "/whoop/data", "err", err)
		return map[string]json.RawMessage{}
	}
	return out
}

func (c *Client) WhoopAuthURL(ctx context.Context) (string, error) {
	var out model.WhoopAuthURL
	if err := c.do(ctx, http.MethodGet, "/whoop/auth", nil, &out); err != nil {
		return "", err
	}
	return out.AuthURL, nil
}

func (c *Client) SyncLatest(ctx context.Context) (*model.SyncResponse, error) {
	var out model.SyncResponse
	if err := c.do(ctx, http.MethodPost, "/whoop/sync/latest", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FullSync(ctx context.Context) (*model.FullSyncResponse, error) {
	var out model.FullSyncResponse
	if err := c.do(ctx, http.MethodGet, "/whoop/data/full", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Charts fetches the overview for rangeToken. Errors give an empty overview.
func (c *Client) Charts(ctx context.Context, rangeToken string) model.ChartsOverview {
	var out model.ChartsOverview
	req := c.http.R().SetContext(ctx)
	if rangeToken != "" {
		req.SetQueryParam("range", rangeToken)
	}
	resp, err := req.Get("/charts/overview")
	if err == nil && resp.IsError() {
		err = apiError(resp)
	}
	if err == nil {
		err = json.Unmarshal(resp.Body(), &out)
	}
	if err != nil {
		logger.Warn("client.read_failed", "path", "/charts/overview", "err", err)
		return model.ChartsOverview{}
	}
	return out
}
