package bookmarks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/store"
)

func newTestRegistry(t *testing.T) (*Registry, *time.Time) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(s, WithClock(func() time.Time { return now }))
	return r, &now
}

func questRecord(id, guildID string) *models.Quest {
	return &models.Quest{ID: id, GuildID: guildID}
}

func TestAddAndListNewestFirst(t *testing.T) {
	r, clock := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Add(ctx, "user1", questRecord("q1", "guild1"), ""); err != nil {
		t.Fatalf("Add(q1) error = %v", err)
	}
	*clock = clock.Add(time.Minute)
	if _, err := r.Add(ctx, "user1", questRecord("q2", "guild1"), "looks fun"); err != nil {
		t.Fatalf("Add(q2) error = %v", err)
	}

	got, err := r.List(ctx, "user1", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].QuestID != "q2" || got[1].QuestID != "q1" {
		t.Fatalf("List() = %+v, want q2 then q1", got)
	}
	if got[0].Notes != "looks fun" {
		t.Errorf("notes = %q, want %q", got[0].Notes, "looks fun")
	}
}

func TestListFiltersByGuild(t *testing.T) {
	r, clock := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Add(ctx, "user1", questRecord("q1", "guild1"), ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	*clock = clock.Add(time.Minute)
	if _, err := r.Add(ctx, "user1", questRecord("q2", "guild2"), ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := r.List(ctx, "user1", "guild1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].QuestID != "q1" {
		t.Errorf("List(guild1) = %+v, want q1 alone", got)
	}
}

func TestReAddRefreshesNoteAndTimestamp(t *testing.T) {
	r, clock := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Add(ctx, "user1", questRecord("q1", "guild1"), "first note"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	*clock = clock.Add(time.Hour)
	refreshed, err := r.Add(ctx, "user1", questRecord("q1", "guild1"), "second note")
	if err != nil {
		t.Fatalf("re-Add() error = %v", err)
	}
	if refreshed.Notes != "second note" {
		t.Errorf("notes = %q, want %q", refreshed.Notes, "second note")
	}

	got, err := r.List(ctx, "user1", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List() = %d entries after re-add, want 1", len(got))
	}
	if !got[0].BookmarkedAt.Equal(*clock) {
		t.Errorf("timestamp = %v, want refreshed to %v", got[0].BookmarkedAt, *clock)
	}
}

func TestRemove(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if err := r.Remove(ctx, "user1", "q1"); !errors.Is(err, ErrNotBookmarked) {
		t.Errorf("Remove() of unsaved quest: error = %v, want ErrNotBookmarked", err)
	}

	if _, err := r.Add(ctx, "user1", questRecord("q1", "guild1"), ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := r.Remove(ctx, "user1", "q1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	saved, err := r.IsBookmarked(ctx, "user1", "q1")
	if err != nil {
		t.Fatalf("IsBookmarked() error = %v", err)
	}
	if saved {
		t.Error("quest still bookmarked after Remove()")
	}
	if err := r.Remove(ctx, "user1", "q1"); !errors.Is(err, ErrNotBookmarked) {
		t.Errorf("second Remove(): error = %v, want ErrNotBookmarked", err)
	}
}

func TestBookmarksAreScopedPerUser(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Add(ctx, "user1", questRecord("q1", "guild1"), ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := r.List(ctx, "user2", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("another user's list = %+v, want empty", got)
	}
}
