package stats

import (
	"context"
	"testing"
	"time"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/store"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewAggregator(s)
}

func TestGetReturnsZeroStatsForUnknownUser(t *testing.T) {
	a := newTestAggregator(t)

	got, err := a.Get(context.Background(), "user1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "user1" || got.Accepted != 0 || got.Completed != 0 || got.Rejected != 0 {
		t.Errorf("Get() = %+v, want zero stats for user1", got)
	}
}

func TestRecordAcceptedAndOutcomes(t *testing.T) {
	a := newTestAggregator(t)
	ctx := context.Background()
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	if _, err := a.RecordAccepted(ctx, "user1", day1); err != nil {
		t.Fatalf("RecordAccepted() error = %v", err)
	}
	if _, err := a.RecordOutcome(ctx, "user1", models.DecisionApproved, day1); err != nil {
		t.Fatalf("RecordOutcome(approved) error = %v", err)
	}
	if _, err := a.RecordAccepted(ctx, "user1", day2); err != nil {
		t.Fatalf("RecordAccepted() error = %v", err)
	}
	if _, err := a.RecordOutcome(ctx, "user1", models.DecisionRejected, day2); err != nil {
		t.Fatalf("RecordOutcome(rejected) error = %v", err)
	}

	got, err := a.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Accepted != 2 || got.Completed != 1 || got.Rejected != 1 {
		t.Errorf("counters = accepted %d completed %d rejected %d, want 2/1/1",
			got.Accepted, got.Completed, got.Rejected)
	}
	if len(got.ParticipationDates) != 2 {
		t.Errorf("participation dates = %v, want two distinct days", got.ParticipationDates)
	}
}

func TestRecordOutcomeRejectsPending(t *testing.T) {
	a := newTestAggregator(t)

	if _, err := a.RecordOutcome(context.Background(), "user1", models.DecisionPending, time.Now()); err == nil {
		t.Error("RecordOutcome(pending) succeeded, want error")
	}
}

func TestUndoRestoresPreviousRecord(t *testing.T) {
	a := newTestAggregator(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, err := a.RecordAccepted(ctx, "user1", at); err != nil {
		t.Fatalf("RecordAccepted() error = %v", err)
	}
	undo, err := a.RecordOutcome(ctx, "user1", models.DecisionApproved, at)
	if err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if err := undo(ctx); err != nil {
		t.Fatalf("undo error = %v", err)
	}

	got, err := a.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Accepted != 1 || got.Completed != 0 {
		t.Errorf("after undo: accepted %d completed %d, want 1/0", got.Accepted, got.Completed)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	a := newTestAggregator(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	seed := map[string]struct{ accepted, completed int }{
		"alice": {accepted: 3, completed: 3},
		"bob":   {accepted: 5, completed: 1},
		"carol": {accepted: 2, completed: 3},
	}
	for user, counts := range seed {
		for i := 0; i < counts.accepted; i++ {
			if _, err := a.RecordAccepted(ctx, user, at); err != nil {
				t.Fatalf("RecordAccepted(%s) error = %v", user, err)
			}
		}
		for i := 0; i < counts.completed; i++ {
			if _, err := a.RecordOutcome(ctx, user, models.DecisionApproved, at); err != nil {
				t.Fatalf("RecordOutcome(%s) error = %v", user, err)
			}
		}
	}

	entries, err := a.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Leaderboard() rows = %d, want 2", len(entries))
	}
	// alice and carol tie on completed; alice has more acceptances.
	if entries[0].Stats.UserID != "alice" || entries[1].Stats.UserID != "carol" {
		t.Errorf("Leaderboard() order = %s, %s, want alice, carol",
			entries[0].Stats.UserID, entries[1].Stats.UserID)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Errorf("ranks = %d, %d, want 1, 2", entries[0].Rank, entries[1].Rank)
	}
}
