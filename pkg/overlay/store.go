package overlay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	json "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

// Store kinds accepted by overlay.store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// MemoryStore keeps the map for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Load(ctx context.Context) (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Entry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, entries map[string]Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	return nil
}

// FileStore writes the map as JSON to one file per login session.
type FileStore struct {
	path string
}

// NewFileStore stores the overlay of sessionID under dir.
func NewFileStore(dir, sessionID string) *FileStore {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	return &FileStore{path: filepath.Join(dir, StorageKey+"-"+sessionID+".json")}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (map[string]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]Entry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt overlay is only a lost smoothing layer.
		logger.Warn("Discarding unreadable counter overlay", "path", s.path, "error", err)
		return make(map[string]Entry), nil
	}
	return entries, nil
}

func (s *FileStore) Save(ctx context.Context, entries map[string]Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create overlay dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove overlay: %w", err)
	}
	return nil
}

// RedisStore keeps the map under a per-session redis key that expires with
// the session.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		MaxRetries:   3,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	logger.Debug("Redis overlay store connected", "addr", addr)
	return client, nil
}

func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	return &RedisStore{client: client, key: StorageKey + ":" + sessionID, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context) (map[string]Entry, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return make(map[string]Entry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("Discarding unreadable counter overlay", "key", s.key, "error", err)
		return make(map[string]Entry), nil
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, entries map[string]Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// OpenStore builds the store selected by overlay.store for sessionID.
// The returned close func releases any connection the store holds.
func OpenStore(ctx context.Context, sessionID string) (Store, func() error, error) {
	noop := func() error { return nil }

	switch kind := config.GetString("overlay.store"); kind {
	case StoreMemory:
		return NewMemoryStore(), noop, nil
	case StoreFile, "":
		return NewFileStore(config.GetConfigDir(), sessionID), noop, nil
	case StoreRedis:
		client, err := NewRedisClient(ctx, config.GetString("overlay.redis_addr"), config.GetString("overlay.redis_password"))
		if err != nil {
			return nil, nil, err
		}
		ttl := config.GetHours("overlay.session_ttl_hours")
		return NewRedisStore(client, sessionID, ttl), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown overlay store %q (want memory, file or redis)", kind)
	}
}
