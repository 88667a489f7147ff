// Package quest implements the quest lifecycle: creation, acceptance,
// submission and review, with the state machine, permission checks and
// stats coupling enforced in one place. Command handlers stay thin; every
// rule lives here.
package quest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/permissions"
	"github.com/questguild/questbot/questbot/stats"
	"github.com/questguild/questbot/questbot/store"
)

// Store is the slice of the record store the manager needs.
type Store interface {
	Get(ctx context.Context, kind store.Kind, key string, out any) (int64, error)
	Put(ctx context.Context, kind store.Kind, key string, value any, expected int64) (int64, error)
	Delete(ctx context.Context, kind store.Kind, key string, expected int64) error
	Keys(ctx context.Context, kind store.Kind) ([]string, error)
	Commit(ctx context.Context) error
}

// Stats is the aggregator surface the manager drives. Both methods return an
// undo restoring the previous record, used when the paired quest write fails.
type Stats interface {
	RecordAccepted(ctx context.Context, userID string, at time.Time) (stats.Undo, error)
	RecordOutcome(ctx context.Context, userID string, outcome models.Decision, at time.Time) (stats.Undo, error)
}

// Actor is the member performing an operation, with their resolved tiers.
type Actor struct {
	ID    string
	Roles []permissions.Role
}

// Config tunes the optional lifecycle behaviors.
type Config struct {
	// AllowRetry lets a rejected quest be accepted again.
	AllowRetry bool
	// RetryCooldown is the wait after a rejection before re-acceptance.
	// Zero means immediately.
	RetryCooldown time.Duration
	// AcceptTimeout releases quests stuck in accepted back to open.
	// Zero disables expiry.
	AcceptTimeout time.Duration
}

type Manager struct {
	store Store
	stats Stats
	cfg   Config
	now   func() time.Time
	newID func() (string, error)
}

type Option func(*Manager)

// WithClock overrides the manager's time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(s Store, st Stats, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		store: s,
		stats: st,
		cfg:   cfg,
		now:   time.Now,
		newID: newQuestID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// newQuestID returns a short random hex identifier.
func newQuestID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate quest id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CreateInput carries the fields of a new quest.
type CreateInput struct {
	GuildID      string
	Title        string
	Description  string
	Requirements string
	Reward       string
	Rank         string
	Category     string
}

// CreateQuest opens a new quest authored by the actor.
func (m *Manager) CreateQuest(ctx context.Context, actor Actor, in CreateInput) (*models.Quest, error) {
	if !permissions.CanPerform(actor.Roles, permissions.ActionCreateQuest) {
		return nil, fmt.Errorf("%w: %s requires at least %s", ErrPermissionDenied,
			permissions.ActionCreateQuest, permissions.RoleQuestCreator)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, validationErr("quest title must not be empty")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, validationErr("quest description must not be empty")
	}

	now := m.now().UTC()
	q := &models.Quest{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		CreatorID:    actor.ID,
		GuildID:      in.GuildID,
		Status:       models.StatusOpen,
		Requirements: in.Requirements,
		Reward:       in.Reward,
		Rank:         in.Rank,
		Category:     in.Category,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Retry on the off chance a short id collides with a live quest.
	for attempt := 0; attempt < 5; attempt++ {
		id, err := m.newID()
		if err != nil {
			return nil, persistErr(err)
		}
		q.ID = id
		version, err := m.store.Put(ctx, store.KindQuests, q.ID, q, store.VersionAbsent)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, persistErr(err)
		}
		if err := m.store.Commit(ctx); err != nil {
			if delErr := m.store.Delete(ctx, store.KindQuests, q.ID, version); delErr != nil {
				slog.Error("Rollback failed",
					slog.String("type", "quest"),
					slog.String("target", "quest after failed create commit"),
					slog.Any("error", delErr))
			}
			return nil, persistErr(err)
		}
		slog.Info("Quest created",
			slog.String("type", "quest"),
			slog.String("quest_id", q.ID),
			slog.String("creator_id", actor.ID))
		return q.Clone(), nil
	}
	return nil, persistErr(fmt.Errorf("could not allocate a quest id"))
}

// AcceptQuest assigns an open quest to the actor. A rejected quest can be
// accepted again, by anyone, when retries are enabled and the cooldown since
// the rejection has passed. The acceptance counter update and the quest
// transition succeed or fail together.
func (m *Manager) AcceptQuest(ctx context.Context, actor Actor, questID string) (*models.Quest, error) {
	if !permissions.CanPerform(actor.Roles, permissions.ActionAcceptQuest) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, permissions.ActionAcceptQuest)
	}

	q, version, err := m.loadQuest(ctx, questID)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	switch q.Status {
	case models.StatusOpen:
	case models.StatusAccepted, models.StatusSubmitted:
		if q.AssigneeID == actor.ID {
			return nil, fmt.Errorf("%w: quest %s is already %s by you", ErrInvalidState, q.ID, q.Status)
		}
		return nil, fmt.Errorf("%w: quest %s is held by %s", ErrAlreadyAssigned, q.ID, q.AssigneeID)
	case models.StatusApproved:
		return nil, fmt.Errorf("%w: quest %s is already approved", ErrInvalidState, q.ID)
	case models.StatusRejected:
		if !m.cfg.AllowRetry {
			return nil, fmt.Errorf("%w: quest %s was rejected and retries are disabled", ErrInvalidState, q.ID)
		}
		if q.RejectedAt != nil && m.cfg.RetryCooldown > 0 {
			ready := q.RejectedAt.Add(m.cfg.RetryCooldown)
			if now.Before(ready) {
				return nil, fmt.Errorf("%w: quest %s can be retried after %s",
					ErrInvalidState, q.ID, ready.Format(time.RFC3339))
			}
		}
	}

	undoStats, err := m.stats.RecordAccepted(ctx, actor.ID, now)
	if err != nil {
		return nil, persistErr(err)
	}

	next := q.Clone()
	next.Status = models.StatusAccepted
	next.AssigneeID = actor.ID
	next.RejectedAt = nil
	next.UpdatedAt = now

	newVersion, err := m.store.Put(ctx, store.KindQuests, next.ID, next, version)
	if err != nil {
		m.rollback(ctx, undoStats, "stats after failed accept")
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		return nil, persistErr(err)
	}
	if err := m.store.Commit(ctx); err != nil {
		m.restoreQuest(ctx, q, newVersion, "quest after failed accept commit")
		m.rollback(ctx, undoStats, "stats after failed accept commit")
		return nil, persistErr(err)
	}

	slog.Info("Quest accepted",
		slog.String("type", "quest"),
		slog.String("quest_id", next.ID),
		slog.String("assignee_id", actor.ID))
	return next, nil
}

// SubmitQuest records the assignee's evidence and moves the quest to
// submitted. Only the current assignee may submit, and only from accepted.
func (m *Manager) SubmitQuest(ctx context.Context, actor Actor, questID, proofText string, proofImageURLs []string) (*models.Quest, error) {
	if !permissions.CanPerform(actor.Roles, permissions.ActionSubmitQuest) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, permissions.ActionSubmitQuest)
	}

	q, version, err := m.loadQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	if q.Status != models.StatusAccepted {
		return nil, fmt.Errorf("%w: quest %s is %s, only accepted quests can be submitted", ErrInvalidState, q.ID, q.Status)
	}
	if q.AssigneeID != actor.ID {
		return nil, fmt.Errorf("%w: quest %s belongs to %s", ErrNotAssignee, q.ID, q.AssigneeID)
	}
	if strings.TrimSpace(proofText) == "" && len(proofImageURLs) == 0 {
		return nil, validationErr("submission needs proof text or at least one image")
	}

	now := m.now().UTC()
	entry := &models.ProgressEntry{
		QuestID:        q.ID,
		UserID:         actor.ID,
		GuildID:        q.GuildID,
		ProofText:      strings.TrimSpace(proofText),
		ProofImageURLs: proofImageURLs,
		Decision:       models.DecisionPending,
		SubmittedAt:    now,
	}

	key := models.ProgressKey(q.ID, actor.ID)
	previous, prevVersion, err := m.loadProgress(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	entryVersion, err := m.store.Put(ctx, store.KindProgress, key, entry, prevVersion)
	if err != nil {
		return nil, persistErr(err)
	}

	next := q.Clone()
	next.Status = models.StatusSubmitted
	next.UpdatedAt = now

	questVersion, err := m.store.Put(ctx, store.KindQuests, next.ID, next, version)
	if err != nil {
		m.restoreProgress(ctx, key, previous, entryVersion, "progress after failed submit")
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		return nil, persistErr(err)
	}
	if err := m.store.Commit(ctx); err != nil {
		m.restoreQuest(ctx, q, questVersion, "quest after failed submit commit")
		m.restoreProgress(ctx, key, previous, entryVersion, "progress after failed submit commit")
		return nil, persistErr(err)
	}

	slog.Info("Quest submitted",
		slog.String("type", "quest"),
		slog.String("quest_id", next.ID),
		slog.String("assignee_id", actor.ID))
	return next, nil
}

// ReviewQuest applies a moderator's terminal decision to a submitted quest.
// The outcome counter, the progress verdict and the quest status move
// together: the stats write lands first, and any later failure rolls it back
// so the quest remains submitted and reviewable.
func (m *Manager) ReviewQuest(ctx context.Context, actor Actor, questID string, decision models.Decision) (*models.Quest, error) {
	if !permissions.CanPerform(actor.Roles, permissions.ActionReviewQuest) {
		return nil, fmt.Errorf("%w: %s requires at least %s", ErrPermissionDenied,
			permissions.ActionReviewQuest, permissions.RoleModerator)
	}
	if decision != models.DecisionApproved && decision != models.DecisionRejected {
		return nil, validationErr("review decision must be approved or rejected, got %q", decision)
	}

	q, version, err := m.loadQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	if q.Status != models.StatusSubmitted {
		return nil, fmt.Errorf("%w: quest %s is %s, only submitted quests can be reviewed", ErrInvalidState, q.ID, q.Status)
	}

	key := models.ProgressKey(q.ID, q.AssigneeID)
	entry, entryVersion, err := m.loadProgress(ctx, key)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	undoStats, err := m.stats.RecordOutcome(ctx, q.AssigneeID, decision, now)
	if err != nil {
		return nil, persistErr(err)
	}

	decided := entry.Clone()
	decided.Decision = decision
	decided.DecidedAt = &now
	decidedVersion, err := m.store.Put(ctx, store.KindProgress, key, decided, entryVersion)
	if err != nil {
		m.rollback(ctx, undoStats, "stats after failed review")
		return nil, persistErr(err)
	}

	next := q.Clone()
	next.UpdatedAt = now
	if decision == models.DecisionApproved {
		next.Status = models.StatusApproved
	} else {
		next.Status = models.StatusRejected
		next.RejectedAt = &now
	}

	questVersion, err := m.store.Put(ctx, store.KindQuests, next.ID, next, version)
	if err != nil {
		m.restoreProgress(ctx, key, entry, decidedVersion, "progress after failed review")
		m.rollback(ctx, undoStats, "stats after failed review")
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		return nil, persistErr(err)
	}
	if err := m.store.Commit(ctx); err != nil {
		m.restoreQuest(ctx, q, questVersion, "quest after failed review commit")
		m.restoreProgress(ctx, key, entry, decidedVersion, "progress after failed review commit")
		m.rollback(ctx, undoStats, "stats after failed review commit")
		return nil, persistErr(err)
	}

	slog.Info("Quest reviewed",
		slog.String("type", "quest"),
		slog.String("quest_id", next.ID),
		slog.String("reviewer_id", actor.ID),
		slog.String("decision", string(decision)))
	return next, nil
}

// ReleaseAssignee is the administrator override that returns a held quest to
// open, dropping its assignee. Approved quests stay closed.
func (m *Manager) ReleaseAssignee(ctx context.Context, actor Actor, questID string) (*models.Quest, error) {
	if !permissions.CanPerform(actor.Roles, permissions.ActionReleaseAssignee) {
		return nil, fmt.Errorf("%w: %s requires at least %s", ErrPermissionDenied,
			permissions.ActionReleaseAssignee, permissions.RoleAdministrator)
	}

	q, version, err := m.loadQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	switch q.Status {
	case models.StatusAccepted, models.StatusSubmitted, models.StatusRejected:
	case models.StatusOpen:
		return nil, fmt.Errorf("%w: quest %s has no assignee", ErrInvalidState, q.ID)
	case models.StatusApproved:
		return nil, fmt.Errorf("%w: quest %s is already approved", ErrInvalidState, q.ID)
	}

	released := q.AssigneeID
	next := q.Clone()
	next.Status = models.StatusOpen
	next.AssigneeID = ""
	next.RejectedAt = nil
	next.UpdatedAt = m.now().UTC()

	newVersion, err := m.store.Put(ctx, store.KindQuests, next.ID, next, version)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		return nil, persistErr(err)
	}
	if err := m.store.Commit(ctx); err != nil {
		m.restoreQuest(ctx, q, newVersion, "quest after failed release commit")
		return nil, persistErr(err)
	}

	slog.Info("Quest assignee released",
		slog.String("type", "quest"),
		slog.String("quest_id", next.ID),
		slog.String("released_id", released),
		slog.String("admin_id", actor.ID))
	return next, nil
}

// GetQuest loads one quest by id.
func (m *Manager) GetQuest(ctx context.Context, questID string) (*models.Quest, error) {
	q, _, err := m.loadQuest(ctx, questID)
	return q, err
}

// GetProgress loads the submission evidence for a (quest, user) pair.
func (m *Manager) GetProgress(ctx context.Context, questID, userID string) (*models.ProgressEntry, error) {
	entry, _, err := m.loadProgress(ctx, models.ProgressKey(questID, userID))
	return entry, err
}

// Filter narrows ListQuests. Zero fields match everything.
type Filter struct {
	Status     models.QuestStatus
	GuildID    string
	CreatorID  string
	AssigneeID string
	Rank       string
	Category   string
}

func (f Filter) matches(q *models.Quest) bool {
	if f.Status != "" && q.Status != f.Status {
		return false
	}
	if f.GuildID != "" && q.GuildID != f.GuildID {
		return false
	}
	if f.CreatorID != "" && q.CreatorID != f.CreatorID {
		return false
	}
	if f.AssigneeID != "" && q.AssigneeID != f.AssigneeID {
		return false
	}
	if f.Rank != "" && !strings.EqualFold(q.Rank, f.Rank) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(q.Category, f.Category) {
		return false
	}
	return true
}

// ListQuests returns matching quests ordered by creation time, oldest first.
func (m *Manager) ListQuests(ctx context.Context, filter Filter) ([]*models.Quest, error) {
	keys, err := m.store.Keys(ctx, store.KindQuests)
	if err != nil {
		return nil, persistErr(err)
	}
	quests := make([]*models.Quest, 0, len(keys))
	for _, key := range keys {
		q, _, err := m.loadQuest(ctx, key)
		if err != nil {
			return nil, err
		}
		if filter.matches(q) {
			quests = append(quests, q)
		}
	}
	sort.Slice(quests, func(i, j int) bool {
		if !quests[i].CreatedAt.Equal(quests[j].CreatedAt) {
			return quests[i].CreatedAt.Before(quests[j].CreatedAt)
		}
		return quests[i].ID < quests[j].ID
	})
	return quests, nil
}

// ExpireStaleAcceptances releases quests whose assignee has been sitting in
// accepted longer than the configured timeout. Returns how many were
// released. Disabled when the timeout is zero.
func (m *Manager) ExpireStaleAcceptances(ctx context.Context) (int, error) {
	if m.cfg.AcceptTimeout <= 0 {
		return 0, nil
	}
	now := m.now().UTC()
	cutoff := now.Add(-m.cfg.AcceptTimeout)

	keys, err := m.store.Keys(ctx, store.KindQuests)
	if err != nil {
		return 0, persistErr(err)
	}
	expired := 0
	for _, key := range keys {
		q, version, err := m.loadQuest(ctx, key)
		if err != nil {
			return expired, err
		}
		if q.Status != models.StatusAccepted || q.UpdatedAt.After(cutoff) {
			continue
		}
		next := q.Clone()
		next.Status = models.StatusOpen
		next.AssigneeID = ""
		next.UpdatedAt = now
		if _, err := m.store.Put(ctx, store.KindQuests, next.ID, next, version); err != nil {
			// A concurrent accept or submit won the race; skip it.
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return expired, persistErr(err)
		}
		expired++
		slog.Info("Stale acceptance expired",
			slog.String("type", "quest"),
			slog.String("quest_id", next.ID))
	}
	if expired > 0 {
		if err := m.store.Commit(ctx); err != nil {
			return expired, persistErr(err)
		}
	}
	return expired, nil
}

func (m *Manager) loadQuest(ctx context.Context, questID string) (*models.Quest, int64, error) {
	if strings.TrimSpace(questID) == "" {
		return nil, 0, validationErr("quest id must not be empty")
	}
	q := new(models.Quest)
	version, err := m.store.Get(ctx, store.KindQuests, questID, q)
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, err
	}
	if err != nil {
		return nil, 0, persistErr(err)
	}
	if err := q.Validate(); err != nil {
		return nil, 0, persistErr(err)
	}
	return q, version, nil
}

func (m *Manager) loadProgress(ctx context.Context, key string) (*models.ProgressEntry, int64, error) {
	entry := new(models.ProgressEntry)
	version, err := m.store.Get(ctx, store.KindProgress, key, entry)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.VersionAbsent, err
	}
	if err != nil {
		return nil, 0, persistErr(err)
	}
	if err := entry.Validate(); err != nil {
		return nil, 0, persistErr(err)
	}
	return entry, version, nil
}

func (m *Manager) rollback(ctx context.Context, undo stats.Undo, what string) {
	if undo == nil {
		return
	}
	if err := undo(ctx); err != nil {
		slog.Error("Rollback failed",
			slog.String("type", "quest"),
			slog.String("target", what),
			slog.Any("error", err))
	}
}

// restoreQuest writes prev back over a transition that must not stand,
// consuming the version the failed transition produced.
func (m *Manager) restoreQuest(ctx context.Context, prev *models.Quest, atVersion int64, what string) {
	if _, err := m.store.Put(ctx, store.KindQuests, prev.ID, prev, atVersion); err != nil {
		slog.Error("Rollback failed",
			slog.String("type", "quest"),
			slog.String("target", what),
			slog.Any("error", err))
	}
}

// restoreProgress puts the prior progress entry back, or deletes the fresh
// one when there was nothing before the failed operation.
func (m *Manager) restoreProgress(ctx context.Context, key string, prev *models.ProgressEntry, atVersion int64, what string) {
	var err error
	if prev == nil {
		err = m.store.Delete(ctx, store.KindProgress, key, atVersion)
	} else {
		_, err = m.store.Put(ctx, store.KindProgress, key, prev, atVersion)
	}
	if err != nil {
		slog.Error("Rollback failed",
			slog.String("type", "quest"),
			slog.String("target", what),
			slog.Any("error", err))
	}
}
