// Package store implements the durable record store backing the quest
// system: independent namespaces of JSON records, each record carrying
// an optimistic-concurrency version counter, plus an append-only change
// journal with commit checkpoints. There is no database engine behind it;
// durability comes from atomic renames, fsync and the journal.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Kind names a record namespace. Each kind persists in its own directory so
// unrelated entity kinds never contend on the same files.
type Kind string

const (
	KindQuests    Kind = "quests"
	KindProgress  Kind = "progress"
	KindStats     Kind = "stats"
	KindConfig    Kind = "config"
	KindBookmarks Kind = "bookmarks"
	KindActivity  Kind = "activity"
)

// Kinds lists every namespace, in a stable order.
var Kinds = []Kind{KindQuests, KindProgress, KindStats, KindConfig, KindBookmarks, KindActivity}

// VersionAbsent is the expected version denoting "the record does not exist
// yet" in Put calls.
const VersionAbsent int64 = 0

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("version conflict")
)

// envelope is the on-disk shape of a record: the caller's value wrapped with
// its version counter.
type envelope struct {
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Value     json.RawMessage `json:"value"`
}

const (
	defaultCacheSize = 2048
	lockStripes      = 64
)

type Store struct {
	root  string
	cache *lru.Cache
	locks [lockStripes]sync.Mutex

	// mu serializes journal appends and commits; record writes within
	// different stripes may still prepare concurrently.
	mu      sync.Mutex
	journal *os.File
	seq     int64

	now func() time.Time
}

// Open initializes the store under root, creating the namespace directories
// and the journal if they do not exist yet.
func Open(root string) (*Store, error) {
	return OpenWithCacheSize(root, defaultCacheSize)
}

func OpenWithCacheSize(root string, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	for _, kind := range Kinds {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create namespace %s: %w", kind, err)
		}
	}

	journalPath := filepath.Join(root, journalFile)
	seq, err := lastJournalSeq(journalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	journal, err := os.OpenFile(journalPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		journal.Close()
		return nil, err
	}

	slog.Info("Record store opened",
		slog.String("type", "db"),
		slog.String("root", root),
		slog.Int64("journal_seq", seq))

	return &Store{
		root:    root,
		cache:   cache,
		journal: journal,
		seq:     seq,
		now:     time.Now,
	}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Close()
}

// Get unmarshals the current value for (kind, key) into out and returns its
// version. Returns ErrNotFound for unknown keys.
func (s *Store) Get(ctx context.Context, kind Kind, key string, out any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	env, err := s.read(kind, key)
	if err != nil {
		return 0, err
	}
	if out != nil {
		if err := json.Unmarshal(env.Value, out); err != nil {
			return 0, fmt.Errorf("failed to decode %s/%s: %w", kind, key, err)
		}
	}
	return env.Version, nil
}

// Put writes value as the new current record for (kind, key) if and only if
// the stored version equals expected (VersionAbsent for a record that does
// not exist yet). Returns the new version, or ErrVersionConflict.
//
// The change is journaled first, then the record file is replaced atomically
// (temp file, fsync, rename). A failure between the two leaves the published
// record untouched; the journal entry records an intent that never landed.
func (s *Store) Put(ctx context.Context, kind Kind, key string, value any, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validKey(key); err != nil {
		return 0, err
	}

	lock := &s.locks[stripe(kind, key)]
	lock.Lock()
	defer lock.Unlock()

	current, err := s.read(kind, key)
	switch {
	case errors.Is(err, ErrNotFound):
		if expected != VersionAbsent {
			return 0, fmt.Errorf("%w: %s/%s does not exist, expected version %d", ErrVersionConflict, kind, key, expected)
		}
	case err != nil:
		return 0, err
	default:
		if current.Version != expected {
			return 0, fmt.Errorf("%w: %s/%s is at version %d, expected %d", ErrVersionConflict, kind, key, current.Version, expected)
		}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s/%s: %w", kind, key, err)
	}
	env := &envelope{
		Version:   expected + 1,
		UpdatedAt: s.now().UTC(),
		Value:     raw,
	}

	if err := s.appendChange(opPut, kind, key, env); err != nil {
		return 0, err
	}
	if err := s.write(kind, key, env); err != nil {
		return 0, err
	}
	s.cache.Add(cacheKey(kind, key), env)
	return env.Version, nil
}

// Delete removes the record for (kind, key) if and only if the stored
// version equals expected. Deleting a record that does not exist returns
// ErrNotFound.
func (s *Store) Delete(ctx context.Context, kind Kind, key string, expected int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validKey(key); err != nil {
		return err
	}

	lock := &s.locks[stripe(kind, key)]
	lock.Lock()
	defer lock.Unlock()

	current, err := s.read(kind, key)
	if err != nil {
		return err
	}
	if current.Version != expected {
		return fmt.Errorf("%w: %s/%s is at version %d, expected %d", ErrVersionConflict, kind, key, current.Version, expected)
	}

	if err := s.appendChange(opDelete, kind, key, &envelope{Version: current.Version}); err != nil {
		return err
	}
	if err := os.Remove(s.recordPath(kind, key)); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", kind, key, err)
	}
	s.cache.Remove(cacheKey(kind, key))
	return nil
}

// Keys lists every key in the namespace, sorted.
func (s *Store) Keys(ctx context.Context, kind Kind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, string(kind)))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Commit durably flushes the journal and records a checkpoint entry. Only
// one commit is in flight at a time. A crash after Commit returns never
// loses a journaled write; a crash before it leaves every previously
// committed record intact (individual record writes are atomic renames).
func (s *Store) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.checkpoint()
}

const recordExt = ".json"

func (s *Store) recordPath(kind Kind, key string) string {
	return filepath.Join(s.root, string(kind), key+recordExt)
}

func (s *Store) read(kind Kind, key string) (*envelope, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(cacheKey(kind, key)); ok {
		return cached.(*envelope), nil
	}
	raw, err := os.ReadFile(s.recordPath(kind, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", kind, key, err)
	}
	env := new(envelope)
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, fmt.Errorf("corrupt record %s/%s: %w", kind, key, err)
	}
	s.cache.Add(cacheKey(kind, key), env)
	return env, nil
}

func (s *Store) write(kind Kind, key string, env *envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope %s/%s: %w", kind, key, err)
	}

	path := s.recordPath(kind, key)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to stage %s/%s: %w", kind, key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stage %s/%s: %w", kind, key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s/%s: %w", kind, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to stage %s/%s: %w", kind, key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to publish %s/%s: %w", kind, key, err)
	}
	return nil
}

func cacheKey(kind Kind, key string) string {
	return string(kind) + "/" + key
}

func stripe(kind Kind, key string) int {
	h := fnv.New32a()
	h.Write([]byte(cacheKey(kind, key)))
	return int(h.Sum32() % lockStripes)
}

func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty record key")
	}
	if strings.ContainsAny(key, "/\\") || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return fmt.Errorf("invalid record key %q", key)
	}
	return nil
}
