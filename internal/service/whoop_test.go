package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/testutil"
	"github.com/jkor2/lifeof/internal/whoop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// whoopAPI serves canned WHOOP responses; recovery pages are keyed by nextToken.
func whoopAPI(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"access_token": "tok", "refresh_token": "r", "expires_in": 3600})
	})
	mux.HandleFunc("/api/user/profile/basic", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"user_id": 7, "first_name": "Jo"})
	})
	mux.HandleFunc("/api/user/measurement/body", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream down</html>"))
	})
	mux.HandleFunc("/api/cycle", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		writeJSON(w, map[string]any{"records": []any{}})
	})
	mux.HandleFunc("/api/recovery", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("nextToken") == "p2" {
			writeJSON(w, map[string]any{"records": []any{
				map[string]any{"cycle_id": 2, "created_at": "2024-01-14T07:00:00Z", "score": map[string]any{"recovery_score": 50}},
			}})
			return
		}
		next := "p2"
		if r.URL.Query().Get("limit") == "1" {
			next = ""
		}
		writeJSON(w, map[string]any{"records": []any{
			map[string]any{"cycle_id": 1, "created_at": "2024-01-15T07:00:00Z", "score": map[string]any{"recovery_score": 80, "hrv_rmssd_milli": 60}},
		}, "next_token": next})
	})
	mux.HandleFunc("/api/activity/sleep", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"records": []any{
			map[string]any{"id": "s1", "cycle_id": 1, "start": "2024-01-14T23:00:00Z", "end": "2024-01-15T07:00:00Z",
				"score": map[string]any{"sleep_efficiency_percentage": 90, "stage_summary": map[string]any{"total_rem_sleep_time_milli": 7200000}}},
		}})
	})
	mux.HandleFunc("/api/activity/workout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"records": []any{}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newWhoopService(t *testing.T, withToken bool) (*WhoopService, *gorm.DB, *whoop.FileTokenStore) {
	srv := whoopAPI(t)
	store := whoop.NewFileTokenStore(filepath.Join(t.TempDir(), "whoop_tokens.json"))
	if withToken {
		require.NoError(t, store.Save(context.Background(), &whoop.Token{
			AccessToken: "tok", RefreshToken: "r", ExpiresAt: float64(time.Now().Add(time.Hour).Unix()),
		}))
	}
	client := whoop.NewClient(whoop.Options{
		ClientID: "cid", ClientSecret: "sec", RedirectURI: "http://localhost/cb",
		AuthURL: srv.URL + "/oauth/auth", TokenURL: srv.URL + "/oauth/token", APIBase: srv.URL + "/api",
	}, store)
	db := testutil.NewDB(t)
	return NewWhoopService(db, client, time.UTC), db, store
}

func TestWhoopStatus(t *testing.T) {
	svc, _, store := newWhoopService(t, false)
	ctx := context.Background()

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Connected)
	assert.Equal(t, "Not connected to WHOOP", st.Message)

	require.NoError(t, store.Save(ctx, &whoop.Token{AccessToken: "a", ExpiresAt: float64(time.Now().Add(-time.Minute).Unix())}))
	st, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Connected)
	assert.False(t, st.HasRefreshToken)
	assert.Negative(t, st.ExpiresIn)

	require.NoError(t, store.Save(ctx, &whoop.Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: float64(time.Now().Add(time.Hour).Unix())}))
	st, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.True(t, st.HasRefreshToken)
	assert.InDelta(t, 3600, st.ExpiresIn, 5)
}

func TestWhoopAuthAndCallback(t *testing.T) {
	svc, _, store := newWhoopService(t, false)
	ctx := context.Background()

	raw, err := svc.AuthURL()
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.Len(t, state, 32)

	_, err = svc.Callback(ctx, "", state)
	assert.True(t, IsInvalid(err))

	_, err = svc.Callback(ctx, "code", "forged")
	assert.True(t, IsInvalid(err))

	resp, err := svc.Callback(ctx, "code", state)
	require.NoError(t, err)
	assert.True(t, resp.HasRefreshToken)

	_, err = svc.Callback(ctx, "code", state)
	assert.True(t, IsInvalid(err), "state is single use")

	tok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
}

func TestStateCacheExpiry(t *testing.T) {
	c := newStateCache(time.Millisecond)
	s, err := c.issue()
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	assert.False(t, c.take(s))
}

func TestStateCacheSweepsOnIssue(t *testing.T) {
	c := newStateCache(time.Millisecond)
	old, err := c.issue()
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = c.issue()
	require.NoError(t, err)
	_, ok := c.m.Load(old)
	assert.False(t, ok)
}

func TestWhoopDataNeedsToken(t *testing.T) {
	svc, _, _ := newWhoopService(t, false)
	_, err := svc.Data(context.Background())
	assert.ErrorIs(t, err, whoop.ErrNotAuthorized)
}

func TestWhoopData(t *testing.T) {
	svc, _, _ := newWhoopService(t, true)
	data, err := svc.Data(context.Background())
	require.NoError(t, err)
	assert.Len(t, data, 6)
	for _, k := range []string{"profile", "body_measurement", "recovery", "cycles", "sleep", "workouts"} {
		assert.Contains(t, data, k)
	}
	assert.JSONEq(t, `{"user_id":7,"first_name":"Jo"}`, string(data["profile"]))

	var body map[string]string
	require.NoError(t, json.Unmarshal(data["body_measurement"], &body))
	assert.Equal(t, "Non-JSON response (502)", body["error"])
	assert.Contains(t, body["text"], "upstream down")
}

func TestWhoopSyncLatestDeduplicatesRecovery(t *testing.T) {
	svc, db, _ := newWhoopService(t, true)
	ctx := context.Background()

	resp, err := svc.SyncLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, inserted, resp.Details["recovery"].Message)
	assert.Equal(t, inserted, resp.Details["sleep"].Message)
	assert.Equal(t, "No new records", resp.Details["workouts"].Message)
	assert.NotEmpty(t, resp.Timestamp)

	resp, err = svc.SyncLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Recovery for 2024-01-15 already exists, skipped", resp.Details["recovery"].Message)
	assert.Equal(t, inserted, resp.Details["sleep"].Message, "sleep is upserted")

	var rec, sleep int64
	db.Model(&model.WhoopRecovery{}).Count(&rec)
	db.Model(&model.WhoopSleep{}).Count(&sleep)
	assert.EqualValues(t, 1, rec)
	assert.EqualValues(t, 1, sleep)
}

func TestWhoopFullSyncAndDump(t *testing.T) {
	svc, db, _ := newWhoopService(t, true)
	svc.DumpPath = filepath.Join(t.TempDir(), "whoop_full_data.json")
	ctx := context.Background()

	resp, err := svc.FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"recovery": 2, "sleep": 1, "workouts": 0}, resp.Summary)

	var rows []model.WhoopRecovery
	require.NoError(t, db.Order("record_date").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-14", rows[0].RecordDate)
	assert.Equal(t, "2", rows[0].CycleID)

	// the dump re-imports cleanly and clearing keeps counts stable
	dump := loadDump(t, svc.DumpPath)
	summary, err := svc.Import(ctx, dump, true)
	require.NoError(t, err)
	assert.Equal(t, 2, summary["recovery"])
	var n int64
	db.Model(&model.WhoopRecovery{}).Count(&n)
	assert.EqualValues(t, 2, n)
}

func TestWhoopImportSkipsBadRecords(t *testing.T) {
	svc, db, _ := newWhoopService(t, false)
	dump := &whoop.Dump{
		Recovery: []json.RawMessage{json.RawMessage(`"oops"`), json.RawMessage(`{"cycle_id": 9, "created_at": "2024-02-01T08:00:00Z"}`)},
		Sleep:    []json.RawMessage{json.RawMessage(`{"cycle_id": 9}`)},
		Workouts: []json.RawMessage{json.RawMessage(`{"id": "w", "sport_name": "cycling", "end": "2024-02-01T18:00:00Z", "score": {"strain": 12.5}}`)},
	}
	summary, err := svc.Import(context.Background(), dump, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"recovery": 1, "sleep": 0, "workouts": 1}, summary)

	var w model.WhoopWorkout
	require.NoError(t, db.First(&w, "id = ?", "w").Error)
	assert.Equal(t, 12.5, *w.Strain)
	assert.Nil(t, w.DistanceMeter)
}

func loadDump(t *testing.T, path string) *whoop.Dump {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var d whoop.Dump
	require.NoError(t, json.NewDecoder(f).Decode(&d))
	return &d
}
