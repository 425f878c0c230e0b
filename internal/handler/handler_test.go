package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jkor2/lifeof/internal/config"
	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/service"
	"github.com/jkor2/lifeof/internal/testutil"
	"github.com/jkor2/lifeof/internal/whoop"
)

func init() { gin.SetMode(gin.TestMode) }

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	token  string
}

func newAPI(t *testing.T, auth config.AuthConfig) *testAPI {
	db := testutil.NewDB(t)
	cfg := &config.Config{Auth: auth, Server: config.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}}}

	store := whoop.NewFileTokenStore(filepath.Join(t.TempDir(), "whoop_tokens.json"))
	client := whoop.NewClient(whoop.Options{
		ClientID:    "id",
		RedirectURI: "http://localhost:8000/whoop/auth/whoop/callback",
		AuthURL:     "http://whoop.invalid/oauth/auth",
		TokenURL:    "http://whoop.invalid/oauth/token",
		APIBase:     "http://whoop.invalid/api",
	}, store)

	entries := service.NewEntryService(db)
	r := NewRouter(Deps{
		Config:     cfg,
		DB:         db,
		Auth:       service.NewAuthService(auth),
		Attributes: service.NewAttributeService(db),
		Entries:    entries,
		Export:     service.NewExportService(entries),
		Whoop:      service.NewWhoopService(db, client, nil),
		Charts:     service.NewChartService(db, nil),
	})
	return &testAPI{t: t, router: r, db: db}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, w)["detail"]
}

func TestRootAndHealth(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})
	w := api.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "LifeOf API ready", decode[map[string]string](t, w)["message"])

	w = api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
}

func TestAttributeDefinitions(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})

	w := api.do(http.MethodPost, "/attribute-definitions", map[string]any{"label": "Resting HR", "unit": "bpm"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[model.AttributeDefinition](t, w)
	assert.Equal(t, "resting_hr", created.Name)
	assert.True(t, created.Active)
	assert.Equal(t, "am", created.DayPeriod)

	w = api.do(http.MethodGet, "/attribute-definitions/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.AttributeDefinition](t, w), 1)

	w = api.do(http.MethodPut, "/attribute-definitions/"+created.ID, map[string]any{"label": "Resting HR", "day_period": "pm", "active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.AttributeDefinition](t, w)
	assert.Equal(t, "pm", updated.DayPeriod)
	assert.False(t, updated.Active)

	w = api.do(http.MethodPost, "/attribute-definitions", map[string]any{"label": "x", "day_period": "noon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodDelete, "/attribute-definitions/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodDelete, "/attribute-definitions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Attribute not found", detail(t, w))
}

func TestEntryLifecycle(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})

	w := api.do(http.MethodPost, "/entries", map[string]any{
		"date":       "2024-01-15",
		"day_period": "pm",
		"attributes": []map[string]any{{"name": "mood", "value": "7"}, {"name": "resting_hr", "value": "52", "unit": "bpm"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[model.EntryCreatedResponse](t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Entry created successfully", created.Message)
	assert.Equal(t, model.VisibilityPrivate, created.Visibility)

	w = api.do(http.MethodGet, "/entries?visibility=public", nil)
	assert.Empty(t, decode[[]model.Entry](t, w))

	w = api.do(http.MethodPatch, "/entries/"+created.ID+"/visibility", map[string]string{"visibility": "public"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "public", decode[map[string]string](t, w)["visibility"])

	w = api.do(http.MethodGet, "/entries?visibility=public", nil)
	public := decode[[]model.Entry](t, w)
	require.Len(t, public, 1)
	assert.Equal(t, "pm", public[0].DayPeriod)
	require.Len(t, public[0].Attributes, 2)
	assert.Equal(t, "mood", public[0].Attributes[0].Name)

	w = api.do(http.MethodPost, "/entries/"+created.ID+"/notes", map[string]string{"content": "  slept badly "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "slept badly", decode[model.NoteResponse](t, w).Note.Content)

	w = api.do(http.MethodPost, "/entries/"+created.ID+"/notes", map[string]string{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Note cannot be empty.", detail(t, w))

	w = api.do(http.MethodPut, "/entries/"+created.ID, map[string]any{
		"date": "2024-01-15", "day_period": "pm", "visibility": "public",
		"attributes": []map[string]any{{"name": "mood", "value": "8"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/entries/"+created.ID, nil)
	got := decode[model.Entry](t, w)
	require.Len(t, got.Attributes, 1)
	assert.Equal(t, "8", got.Attributes[0].Value)
	assert.Len(t, got.Notes, 1)

	w = api.do(http.MethodDelete, "/entries/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/entries/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Entry not found", detail(t, w))
}

func TestEntryValidation(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})

	w := api.do(http.MethodPost, "/entries/", map[string]any{"date": "15/01/2024"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "date must be YYYY-MM-DD", detail(t, w))

	w = api.do(http.MethodPatch, "/entries/missing/visibility", map[string]string{"visibility": "public"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/entries/missing/notes", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})
	api.do(http.MethodPost, "/entries", map[string]any{"date": "2024-01-15", "attributes": []map[string]any{{"name": "mood", "value": "7"}}})

	w := api.do(http.MethodGet, "/entries/export.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxMIME, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, w.Body.Len())
}

func TestChartsOverview(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})
	require.NoError(t, api.db.Create(&model.WhoopRecovery{CycleID: "1", RecordDate: "2024-01-15", RecoveryScore: ptr(80.0)}).Error)

	w := api.do(http.MethodGet, "/charts/overview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ov := decode[model.ChartsOverview](t, w)
	require.Len(t, ov.Recovery.Trend, 1)
	assert.Equal(t, 80.0, *ov.Recovery.Averages.RecoveryScore)

	w = api.do(http.MethodGet, "/charts/overview?range=2w", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "unknown range")
}

func TestWhoopRoutesWithoutToken(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})

	w := api.do(http.MethodGet, "/whoop/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[model.WhoopStatus](t, w).Connected)

	w = api.do(http.MethodGet, "/whoop/auth", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[model.WhoopAuthURL](t, w).AuthURL, "client_id=id")

	w = api.do(http.MethodGet, "/whoop/auth/whoop/callback", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing authorization code", detail(t, w))

	w = api.do(http.MethodGet, "/whoop/auth/whoop/callback?code=c&state=forged", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, path := range []string{"/whoop/data", "/whoop/sync/latest", "/whoop/data/full"} {
		w = api.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestWhoopImportUpload(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})

	dump := whoop.Dump{Recovery: []json.RawMessage{
		json.RawMessage(`{"cycle_id":1,"created_at":"2024-01-15T07:00:00Z","score":{"recovery_score":80}}`),
		json.RawMessage(`{"cycle_id":2,"created_at":"2024-01-16T07:00:00Z","score":{"recovery_score":40}}`),
	}}
	data, err := json.Marshal(dump)
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "whoop_full.json")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("clear", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/whoop/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[model.FullSyncResponse](t, w).Summary["recovery"])

	var n int64
	require.NoError(t, api.db.Model(&model.WhoopRecovery{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	w = api.do(http.MethodPost, "/whoop/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminAuthGuardsWrites(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	api := newAPI(t, config.AuthConfig{Username: "admin", PasswordHash: string(hash), JWTSecret: "s3cret", TokenTTLDays: 7})

	w := api.do(http.MethodPost, "/entries", map[string]any{"date": "2024-01-15"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authenticated", detail(t, w))

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/entries", nil).Code)

	w = api.do(http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	api.token = decode[model.LoginResponse](t, w).Token
	require.NotEmpty(t, api.token)

	w = api.do(http.MethodPost, "/entries", map[string]any{"date": "2024-01-15"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLoginWhenAuthDisabled(t *testing.T) {
	api := newAPI(t, config.AuthConfig{})
	w := api.do(http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrAuthDisabled.Error(), detail(t, w))
}

func ptr[T any](v T) *T { return &v }
