package store

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/questguild/questbot/questbot/models"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	version, err := s.Put(ctx, KindQuests, "q1", &record{Name: "first", Count: 3}, VersionAbsent)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if version != 1 {
		t.Errorf("Put() version = %d, want 1", version)
	}

	var got record
	version, err = s.Get(ctx, KindQuests, "q1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if version != 1 {
		t.Errorf("Get() version = %d, want 1", version)
	}
	if want := (record{Name: "first", Count: 3}); !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)

	var got record
	if _, err := s.Get(context.Background(), KindQuests, "missing", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestPutVersionConflicts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, KindQuests, "q1", &record{Name: "v1"}, 5); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("Put() on absent record with expected=5: error = %v, want ErrVersionConflict", err)
	}

	if _, err := s.Put(ctx, KindQuests, "q1", &record{Name: "v1"}, VersionAbsent); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, KindQuests, "q1", &record{Name: "dup"}, VersionAbsent); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("Put() duplicate create: error = %v, want ErrVersionConflict", err)
	}

	version, err := s.Put(ctx, KindQuests, "q1", &record{Name: "v2"}, 1)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if version != 2 {
		t.Errorf("Put() version = %d, want 2", version)
	}
	if _, err := s.Put(ctx, KindQuests, "q1", &record{Name: "stale"}, 1); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("Put() with stale version: error = %v, want ErrVersionConflict", err)
	}

	var got record
	if _, err := s.Get(ctx, KindQuests, "q1", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "v2" {
		t.Errorf("record after failed stale write = %q, want %q", got.Name, "v2")
	}
}

func TestConcurrentPutSingleWinner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, KindQuests, "q1", &record{Name: "base"}, VersionAbsent); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	const writers = 16
	var wg sync.WaitGroup
	results := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.Put(ctx, KindQuests, "q1", &record{Name: "contender", Count: i}, 1)
		}(i)
	}
	wg.Wait()

	won := 0
	for i, err := range results {
		switch {
		case err == nil:
			won++
		case !errors.Is(err, ErrVersionConflict):
			t.Errorf("writer %d: error = %v, want ErrVersionConflict", i, err)
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}

	var got record
	version, err := s.Get(ctx, KindQuests, "q1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if version != 2 {
		t.Errorf("final version = %d, want 2", version)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	version, err := s.Put(ctx, KindProgress, "q1:u1", &record{Name: "pending"}, VersionAbsent)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := s.Delete(ctx, KindProgress, "q1:u1", version); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	var got record
	if _, err := s.Get(ctx, KindProgress, "q1:u1", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete: error = %v, want ErrNotFound", err)
	}
	keys, err := s.Keys(ctx, KindProgress)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys() after delete = %v, want empty", keys)
	}

	// The key is free again: a new record starts its own version sequence.
	version, err = s.Put(ctx, KindProgress, "q1:u1", &record{Name: "fresh"}, VersionAbsent)
	if err != nil {
		t.Fatalf("Put() after delete error = %v", err)
	}
	if version != 1 {
		t.Errorf("recreated record version = %d, want 1", version)
	}
}

func TestDeleteVersionGuards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Delete(ctx, KindProgress, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() of absent record: error = %v, want ErrNotFound", err)
	}

	if _, err := s.Put(ctx, KindProgress, "q1:u1", &record{Name: "v1"}, VersionAbsent); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Delete(ctx, KindProgress, "q1:u1", 5); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("Delete() with stale version: error = %v, want ErrVersionConflict", err)
	}

	// The guarded delete left the record in place.
	var got record
	if _, err := s.Get(ctx, KindProgress, "q1:u1", &got); err != nil {
		t.Fatalf("Get() after failed delete error = %v", err)
	}
	if got.Name != "v1" {
		t.Errorf("record after failed delete = %q, want %q", got.Name, "v1")
	}
}

func TestQuestRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rejected := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	want := &models.Quest{
		ID:           "ab12cd34",
		Title:        "Slay the lich",
		Description:  "bring back its phylactery",
		CreatorID:    "100",
		GuildID:      "guild1",
		Status:       models.StatusRejected,
		AssigneeID:   "200",
		Requirements: "party of four minimum",
		Reward:       "500 gold",
		Rank:         models.RankHard,
		Category:     "combat",
		CreatedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    rejected,
		RejectedAt:   &rejected,
	}

	if _, err := s.Put(ctx, KindQuests, want.ID, want, VersionAbsent); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got := new(models.Quest)
	if _, err := s.Get(ctx, KindQuests, want.ID, got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round-tripped quest = %+v, want %+v", got, want)
	}
}

func TestReopenPreservesRecordsAndSequence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := s.Put(ctx, KindStats, "user1", &record{Name: "stats", Count: 7}, VersionAbsent); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	var got record
	version, err := s.Get(ctx, KindStats, "user1", &got)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if version != 1 || got.Count != 7 {
		t.Errorf("after reopen got version=%d value=%+v, want version=1 count=7", version, got)
	}

	// New writes continue the journal sequence instead of restarting it.
	if _, err := s.Put(ctx, KindStats, "user1", &record{Name: "stats", Count: 8}, 1); err != nil {
		t.Fatalf("Put() after reopen error = %v", err)
	}
	history, err := s.History(KindStats, "user1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("History() entries = %d, want 2", len(history))
	}
	if history[1].Seq <= history[0].Seq {
		t.Errorf("journal sequence not monotonic: %d then %d", history[0].Seq, history[1].Seq)
	}
	if history[0].Version != 1 || history[1].Version != 2 {
		t.Errorf("history versions = %d, %d, want 1, 2", history[0].Version, history[1].Version)
	}
}

func TestKeysSortedPerKind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"qc", "qa", "qb"} {
		if _, err := s.Put(ctx, KindQuests, key, &record{Name: key}, VersionAbsent); err != nil {
			t.Fatalf("Put(%s) error = %v", key, err)
		}
	}
	if _, err := s.Put(ctx, KindStats, "other", &record{}, VersionAbsent); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	keys, err := s.Keys(ctx, KindQuests)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if want := []string{"qa", "qb", "qc"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "a/b", "..", ".hidden"} {
		if _, err := s.Put(ctx, KindQuests, key, &record{}, VersionAbsent); err == nil {
			t.Errorf("Put(%q) succeeded, want error", key)
		}
	}
}

func TestProgressStyleCompositeKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	key := "ab12cd34:99887766"
	if _, err := s.Put(ctx, KindProgress, key, &record{Name: "proof"}, VersionAbsent); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	var got record
	if _, err := s.Get(ctx, KindProgress, key, &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "proof" {
		t.Errorf("Get() = %+v, want name=proof", got)
	}
}
