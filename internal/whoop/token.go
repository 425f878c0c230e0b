package whoop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNoToken is returned by a TokenStore that holds nothing yet.
var ErrNoToken = errors.New("no whoop token stored")

// Token is the OAuth token as the token endpoint returns it, plus the
// absolute expiry in unix seconds.
type Token struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	ExpiresIn    int64   `json:"expires_in"`
	ExpiresAt    float64 `json:"expires_at"`
	Scope        string  `json:"scope,omitempty"`
	TokenType    string  `json:"token_type,omitempty"`
}

const defaultExpiresIn = 3600

// stamp sets ExpiresAt from ExpiresIn relative to now.
func (t *Token) stamp(now time.Time) {
	if t.ExpiresIn <= 0 {
		t.ExpiresIn = defaultExpiresIn
	}
	t.ExpiresAt = float64(now.Unix() + t.ExpiresIn)
}

func (t *Token) Expired(now time.Time) bool {
	return float64(now.Unix()) >= t.ExpiresAt
}

// ExpiresInAt is the number of seconds left at now; negative once expired.
func (t *Token) ExpiresInAt(now time.Time) int64 {
	return int64(t.ExpiresAt) - now.Unix()
}

func (t *Token) HasRefresh() bool { return t.RefreshToken != "" }

type TokenStore interface {
	Load(ctx context.Context) (*Token, error)
	Save(ctx context.Context, t *Token) error
}

// FileTokenStore keeps the token as indented JSON on local disk.
type FileTokenStore struct {
	Path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

func (s *FileTokenStore) Load(_ context.Context) (*Token, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &t, nil
}

func (s *FileTokenStore) Save(_ context.Context, t *Token) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return os.Rename(tmp, s.Path)
}

// RedisTokenStore keeps the token under a single key, for deployments
// running more than one server process.
type RedisTokenStore struct {
	c   *redis.Client
	key string
}

func NewRedisTokenStore(c *redis.Client, key string) *RedisTokenStore {
	return &RedisTokenStore{c: c, key: key}
}

func (s *RedisTokenStore) Load(ctx context.Context) (*Token, error) {
	val, err := s.c.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var t Token
	if err := json.Unmarshal(val, &t); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &t, nil
}

// Save keeps the token without a TTL: an expired access token is still
// needed for its refresh token.
func (s *RedisTokenStore) Save(ctx context.Context, t *Token) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, s.key, data, 0).Err()
}
