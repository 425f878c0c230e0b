package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/whoop"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ImportBatchSize = 200
	dataLimit       = "3"
	stateTTL        = 10 * time.Minute
)

// WhoopService connects the account and copies its data into the local tables.
type WhoopService struct {
	db     *gorm.DB
	client *whoop.Client
	loc    *time.Location
	states *stateCache
	now    func() time.Time

	// DumpPath, when set, receives the raw records of every full sync.
	DumpPath string
}

func NewWhoopService(db *gorm.DB, client *whoop.Client, loc *time.Location) *WhoopService {
	if loc == nil {
		loc = time.UTC
	}
	return &WhoopService{
		db:     db,
		client: client,
		loc:    loc,
		states: newStateCache(stateTTL),
		now:    time.Now,
	}
}

// stateCache remembers issued OAuth states until they are used or expire.
// Expired states are dropped whenever a new one is issued.
type stateCache struct {
	m   sync.Map // state -> issued time.Time
	ttl time.Duration
}

func newStateCache(ttl time.Duration) *stateCache {
	return &stateCache{ttl: ttl}
}

func (c *stateCache) sweep() {
	c.m.Range(func(k, v any) bool {
		if time.Since(v.(time.Time)) > c.ttl {
			c.m.Delete(k)
		}
		return true
	})
}

func (c *stateCache) issue() (string, error) {
	c.sweep()
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := hex.EncodeToString(b)
	c.m.Store(state, time.Now())
	return state, nil
}

// take consumes state; false when it was never issued or has expired.
func (c *stateCache) take(state string) bool {
	v, ok := c.m.LoadAndDelete(state)
	return ok && time.Since(v.(time.Time)) <= c.ttl
}

func (s *WhoopService) Status(ctx context.Context) (*model.WhoopStatus, error) {
	tok, err := s.client.Store().Load(ctx)
	if errors.Is(err, whoop.ErrNoToken) {
		return &model.WhoopStatus{Connected: false, Message: "Not connected to WHOOP"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load whoop token: %w", err)
	}
	now := s.now()
	st := &model.WhoopStatus{
		Connected:       !tok.Expired(now),
		Message:         "Connected to WHOOP",
		ExpiresIn:       tok.ExpiresInAt(now),
		HasRefreshToken: tok.HasRefresh(),
	}
	if !st.Connected {
		st.Message = "Token expired, reconnect required"
	}
	return st, nil
}

func (s *WhoopService) AuthURL() (string, error) {
	state, err := s.states.issue()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return s.client.AuthURL(state), nil
}

// Callback finishes the OAuth flow. A state that is present must be one
// this process issued; a missing state is let through so a code pasted by
// hand still works.
func (s *WhoopService) Callback(ctx context.Context, code, state string) (*model.WhoopCallbackResponse, error) {
	if code == "" {
		return nil, InvalidError("Missing authorization code")
	}
	if state != "" && !s.states.take(state) {
		return nil, InvalidError("Unknown or expired state")
	}
	tok, err := s.client.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return &model.WhoopCallbackResponse{
		Message:         "WHOOP connected successfully",
		HasRefreshToken: tok.HasRefresh(),
	}, nil
}

// Data fetches a small live snapshot of every collection in parallel.
// Each key holds WHOOP's JSON, or an error object when it answered with
// something else.
func (s *WhoopService) Data(ctx context.Context) (map[string]json.RawMessage, error) {
	if _, err := s.client.EnsureToken(ctx); err != nil {
		return nil, err
	}

	endpoints := []struct {
		key, path string
		limited   bool
	}{
		{"profile", whoop.PathProfile, false},
		{"body_measurement", whoop.PathBody, false},
		{"recovery", whoop.PathRecovery, true},
		{"cycles", whoop.PathCycles, true},
		{"sleep", whoop.PathSleep, true},
		{"workouts", whoop.PathWorkouts, true},
	}

	results := make([]json.RawMessage, len(endpoints))
	var wg sync.WaitGroup
	for i, ep := range endpoints {
		wg.Add(1)
		go func(i int, path string, limited bool) {
			defer wg.Done()
			var q map[string]string
			if limited {
				q = map[string]string{"limit": dataLimit}
			}
			resp, err := s.client.Get(ctx, path, q)
			if err != nil {
				results[i] = errorBlob(map[string]any{"error": err.Error()})
				return
			}
			if !json.Valid(resp.Body) {
				text := string(resp.Body)
				if len(text) > 300 {
					text = text[:300]
				}
				results[i] = errorBlob(map[string]any{
					"error": fmt.Sprintf("Non-JSON response (%d)", resp.Status),
					"text":  text,
				})
				return
			}
			results[i] = resp.Body
		}(i, ep.path, ep.limited)
	}
	wg.Wait()

	out := make(map[string]json.RawMessage, len(endpoints))
	for i, ep := range endpoints {
		out[ep.key] = results[i]
	}
	return out, nil
}

func errorBlob(v map[string]any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// FullSync pulls every page of recovery, sleep and workouts and upserts
// them. A collection that fails part way keeps what was fetched.
func (s *WhoopService) FullSync(ctx context.Context) (*model.FullSyncResponse, error) {
	if _, err := s.client.EnsureToken(ctx); err != nil {
		return nil, err
	}

	var dump whoop.Dump
	var err error
	for _, c := range []struct {
		path string
		dst  *[]json.RawMessage
	}{
		{whoop.PathRecovery, &dump.Recovery},
		{whoop.PathSleep, &dump.Sleep},
		{whoop.PathWorkouts, &dump.Workouts},
	} {
		*c.dst, err = s.client.Collect(ctx, c.path, whoop.DefaultPageSize)
		if err != nil {
			logger.Warn("whoop.collect_failed", "path", c.path, "kept", len(*c.dst), "err", err)
		}
	}

	if s.DumpPath != "" {
		if err := writeDump(s.DumpPath, &dump); err != nil {
			logger.Warn("whoop.dump_failed", "path", s.DumpPath, "err", err)
		}
	}

	summary, err := s.Import(ctx, &dump, false)
	if err != nil {
		return nil, err
	}
	return &model.FullSyncResponse{Message: "Full WHOOP history fetched", Summary: summary}, nil
}

func writeDump(path string, d *whoop.Dump) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Import loads a dump into the WHOOP tables in batches, optionally
// emptying them first. Records that do not decode are skipped.
func (s *WhoopService) Import(ctx context.Context, d *whoop.Dump, truncate bool) (map[string]int, error) {
	recovery := decodeAll(d.Recovery, s.loc, whoop.DecodeRecovery, func(r model.WhoopRecovery) bool { return r.CycleID != "0" })
	sleep := decodeAll(d.Sleep, s.loc, whoop.DecodeSleep, func(r model.WhoopSleep) bool { return r.ID != "" })
	workouts := decodeAll(d.Workouts, s.loc, whoop.DecodeWorkout, func(r model.WhoopWorkout) bool { return r.ID != "" })

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if truncate {
			for _, m := range []any{&model.WhoopRecovery{}, &model.WhoopSleep{}, &model.WhoopWorkout{}} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
					return fmt.Errorf("clear whoop table: %w", err)
				}
			}
		}
		if err := upsert(tx, recovery); err != nil {
			return fmt.Errorf("upsert recovery: %w", err)
		}
		if err := upsert(tx, sleep); err != nil {
			return fmt.Errorf("upsert sleep: %w", err)
		}
		if err := upsert(tx, workouts); err != nil {
			return fmt.Errorf("upsert workouts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := map[string]int{"recovery": len(recovery), "sleep": len(sleep), "workouts": len(workouts)}
	logger.Info("whoop.imported", "recovery", summary["recovery"], "sleep", summary["sleep"], "workouts", summary["workouts"], "cleared", truncate)
	return summary, nil
}

func decodeAll[T any](raws []json.RawMessage, loc *time.Location, decode func(json.RawMessage, *time.Location) (T, error), keep func(T) bool) []T {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		row, err := decode(raw, loc)
		if err != nil {
			logger.Warn("whoop.decode_failed", "err", err)
			continue
		}
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func upsert[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, ImportBatchSize).Error
}

// SyncLatest stores the newest record of each collection. Recovery is
// written at most once per record date.
func (s *WhoopService) SyncLatest(ctx context.Context) (*model.SyncResponse, error) {
	if _, err := s.client.EnsureToken(ctx); err != nil {
		return nil, err
	}

	details := map[string]model.SyncResult{}
	for _, c := range []struct {
		key, path string
		store     func(context.Context, json.RawMessage) (string, error)
	}{
		{"recovery", whoop.PathRecovery, s.storeRecovery},
		{"sleep", whoop.PathSleep, s.storeSleep},
		{"workouts", whoop.PathWorkouts, s.storeWorkout},
	} {
		raw, err := s.client.Latest(ctx, c.path)
		if err != nil {
			details[c.key] = model.SyncResult{Error: err.Error()}
			continue
		}
		if raw == nil {
			details[c.key] = model.SyncResult{Message: "No new records"}
			continue
		}
		msg, err := c.store(ctx, raw)
		if err != nil {
			details[c.key] = model.SyncResult{Error: err.Error()}
			continue
		}
		details[c.key] = model.SyncResult{Message: msg}
	}

	logger.Info("whoop.sync", "recovery", details["recovery"], "sleep", details["sleep"], "workouts", details["workouts"])
	return &model.SyncResponse{
		Message:   "WHOOP latest data synced successfully",
		Details:   details,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}, nil
}

const inserted = "Inserted latest record"

func (s *WhoopService) storeRecovery(ctx context.Context, raw json.RawMessage) (string, error) {
	row, err := whoop.DecodeRecovery(raw, s.loc)
	if err != nil {
		return "", fmt.Errorf("decode recovery: %w", err)
	}
	if row.RecordDate != "" {
		var n int64
		if err := s.db.WithContext(ctx).Model(&model.WhoopRecovery{}).Where("record_date = ?", row.RecordDate).Count(&n).Error; err != nil {
			return "", fmt.Errorf("lookup recovery: %w", err)
		}
		if n > 0 {
			return fmt.Sprintf("Recovery for %s already exists, skipped", row.RecordDate), nil
		}
	}
	if err := upsert(s.db.WithContext(ctx), []model.WhoopRecovery{row}); err != nil {
		return "", fmt.Errorf("insert recovery: %w", err)
	}
	return inserted, nil
}

func (s *WhoopService) storeSleep(ctx context.Context, raw json.RawMessage) (string, error) {
	row, err := whoop.DecodeSleep(raw, s.loc)
	if err != nil {
		return "", fmt.Errorf("decode sleep: %w", err)
	}
	if strings.TrimSpace(row.ID) == "" {
		return "", errors.New("sleep record without id")
	}
	if err := upsert(s.db.WithContext(ctx), []model.WhoopSleep{row}); err != nil {
		return "", fmt.Errorf("upsert sleep: %w", err)
	}
	return inserted, nil
}

func (s *WhoopService) storeWorkout(ctx context.Context, raw json.RawMessage) (string, error) {
	row, err := whoop.DecodeWorkout(raw, s.loc)
	if err != nil {
		return "", fmt.Errorf("decode workout: %w", err)
	}
	if strings.TrimSpace(row.ID) == "" {
		return "", errors.New("workout record without id")
	}
	if err := upsert(s.db.WithContext(ctx), []model.WhoopWorkout{row}); err != nil {
		return "", fmt.Errorf("upsert workout: %w", err)
	}
	return inserted, nil
}
