// Package stats maintains per-user quest counters. Updates go through the
// versioned record store, and every mutating call hands back an Undo that
// restores the previous record, so a caller coupling a stats update to a
// quest transition can roll back when the second write fails.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/store"
)

// Store is the slice of the record store the aggregator needs.
type Store interface {
	Get(ctx context.Context, kind store.Kind, key string, out any) (int64, error)
	Put(ctx context.Context, kind store.Kind, key string, value any, expected int64) (int64, error)
	Keys(ctx context.Context, kind store.Kind) ([]string, error)
}

// Undo restores the stats record to its state before the update that
// produced it.
type Undo func(ctx context.Context) error

type Aggregator struct {
	store Store
	now   func() time.Time
}

func NewAggregator(s Store) *Aggregator {
	return &Aggregator{store: s, now: time.Now}
}

// Get returns the user's stats, or a zero-valued record if none exist yet.
func (a *Aggregator) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	stats, _, err := a.load(ctx, userID)
	return stats, err
}

// RecordAccepted bumps the acceptance counter and the participation-date set
// for the day of at.
func (a *Aggregator) RecordAccepted(ctx context.Context, userID string, at time.Time) (Undo, error) {
	return a.update(ctx, userID, func(s *models.UserStats) {
		s.Accepted++
		s.AddParticipationDate(at)
	})
}

// RecordOutcome bumps the counter matching a terminal review decision.
func (a *Aggregator) RecordOutcome(ctx context.Context, userID string, outcome models.Decision, at time.Time) (Undo, error) {
	switch outcome {
	case models.DecisionApproved:
		return a.update(ctx, userID, func(s *models.UserStats) {
			s.Completed++
			s.AddParticipationDate(at)
		})
	case models.DecisionRejected:
		return a.update(ctx, userID, func(s *models.UserStats) {
			s.Rejected++
			s.AddParticipationDate(at)
		})
	}
	return nil, fmt.Errorf("cannot record outcome %q", outcome)
}

// Entry is one leaderboard row.
type Entry struct {
	Rank  int
	Stats *models.UserStats
}

// Leaderboard returns up to limit users ordered by completed quests, ties
// broken by acceptances then user ID.
func (a *Aggregator) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	keys, err := a.store.Keys(ctx, store.KindStats)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	all := make([]*models.UserStats, 0, len(keys))
	for _, key := range keys {
		stats := new(models.UserStats)
		if _, err := a.store.Get(ctx, store.KindStats, key, stats); err != nil {
			return nil, fmt.Errorf("failed to load stats for %s: %w", key, err)
		}
		all = append(all, stats)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Completed != all[j].Completed {
			return all[i].Completed > all[j].Completed
		}
		if all[i].Accepted != all[j].Accepted {
			return all[i].Accepted > all[j].Accepted
		}
		return all[i].UserID < all[j].UserID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	entries := make([]Entry, len(all))
	for i, stats := range all {
		entries[i] = Entry{Rank: i + 1, Stats: stats}
	}
	return entries, nil
}

func (a *Aggregator) load(ctx context.Context, userID string) (*models.UserStats, int64, error) {
	stats := new(models.UserStats)
	version, err := a.store.Get(ctx, store.KindStats, userID, stats)
	if errors.Is(err, store.ErrNotFound) {
		return &models.UserStats{UserID: userID}, store.VersionAbsent, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load stats for %s: %w", userID, err)
	}
	if err := stats.Validate(); err != nil {
		return nil, 0, err
	}
	return stats, version, nil
}

func (a *Aggregator) update(ctx context.Context, userID string, mutate func(*models.UserStats)) (Undo, error) {
	current, version, err := a.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := current.Clone()

	next := current.Clone()
	mutate(next)
	next.UpdatedAt = a.now().UTC()

	newVersion, err := a.store.Put(ctx, store.KindStats, userID, next, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update stats for %s: %w", userID, err)
	}

	undo := func(ctx context.Context) error {
		if _, err := a.store.Put(ctx, store.KindStats, userID, previous, newVersion); err != nil {
			return fmt.Errorf("failed to roll back stats for %s: %w", userID, err)
		}
		return nil
	}
	return undo, nil
}
