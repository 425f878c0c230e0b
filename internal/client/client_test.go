package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func server(t *testing.T, h http.HandlerFunc) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestWriteErrorCarriesDetail(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "date must be YYYY-MM-DD"})
	})
	_, err := New(srv.URL).CreateEntry(context.Background(), model.EntryInput{Date: "bad"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "date must be YYYY-MM-DD", apiErr.Error())
}

func TestWriteErrorWithoutDetail(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	err := New(srv.URL).DeleteEntry(context.Background(), "e1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Request failed (502)", apiErr.Detail)
}

func TestListFallsBackToEmpty(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/attribute-definitions":
			writeJSON(w, http.StatusOK, map[string]string{"oops": "not a list"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
		}
	})
	c := New(srv.URL)
	assert.Empty(t, c.Attributes(context.Background()))
	assert.Empty(t, c.Entries(context.Background(), ""))
	assert.Empty(t, c.WhoopData(context.Background()))
	assert.Nil(t, c.Charts(context.Background(), "7d").Recovery.Trend)
}

func TestEntriesPassesVisibility(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entries/", r.URL.Path)
		assert.Equal(t, "public", r.URL.Query().Get("visibility"))
		writeJSON(w, http.StatusOK, []model.Entry{{ID: "e1", Date: "2024-01-15", Visibility: "public"}})
	})
	got := New(srv.URL).Entries(context.Background(), "public")
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}

func TestCreateEntryRemembersState(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		var in model.EntryInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusOK, model.EntryCreatedResponse{
			Entry:   model.Entry{ID: "e9", Date: in.Date, DayPeriod: in.DayPeriod, Visibility: "private"},
			Message: "Entry created successfully",
		})
	})
	path := filepath.Join(t.TempDir(), "lifeof", "state.json")
	st, err := LoadState(path)
	require.NoError(t, err)
	c := New(srv.URL).WithState(st)

	e, err := c.CreateEntry(context.Background(), model.EntryInput{Date: "2024-01-15", DayPeriod: "pm"})
	require.NoError(t, err)
	assert.Equal(t, "e9", e.ID)

	reloaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, "e9", reloaded.CurrentEntryID)
	assert.Equal(t, "pm", reloaded.Period())
}

func TestAddNoteToUnsavedEntryMakesNoCall(t *testing.T) {
	srv, calls := server(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	st, err := LoadState(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	c := New(srv.URL).WithState(st)

	_, err = c.AddNote(context.Background(), "", "felt great")
	assert.ErrorIs(t, err, lifelog.ErrEntryNotSaved)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestAddNoteUsesRememberedEntry(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entries/e9/notes", r.URL.Path)
		writeJSON(w, http.StatusOK, model.NoteResponse{Note: model.Note{ID: "n1", Content: "felt great"}})
	})
	c := New(srv.URL).WithState(&State{CurrentEntryID: "e9"})

	n, err := c.AddNote(context.Background(), "", "felt great")
	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID)
}

func TestLoginSetsTokenAndRenewal(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			writeJSON(w, http.StatusOK, model.LoginResponse{Token: "t1", ExpiresAt: 1})
		case "/attribute-definitions":
			assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
			w.Header().Set("X-New-Token", "t2")
			writeJSON(w, http.StatusOK, model.AttributeDefinition{ID: "a1", Name: "mood"})
		}
	})
	c := New(srv.URL)
	var renewed string
	c.OnTokenRenewed(func(tok string) { renewed = tok })

	_, err := c.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	d, err := c.CreateAttribute(context.Background(), model.AttributeDefinitionInput{Label: "Mood"})
	require.NoError(t, err)
	assert.Equal(t, "mood", d.Name)
	assert.Equal(t, "t2", renewed)
}

func TestLoadStateMissingFile(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, model.PeriodAM, st.Period())
	assert.Empty(t, st.CurrentEntryID)
}
