// Package bookmarks lets members save quests for later. Each user's saved
// set lives in one record in the store's bookmarks namespace.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/store"
)

// ErrNotBookmarked is returned when removing a quest the user never saved.
var ErrNotBookmarked = errors.New("quest is not bookmarked")

// Store is the slice of the record store the registry needs.
type Store interface {
	Get(ctx context.Context, kind store.Kind, key string, out any) (int64, error)
	Put(ctx context.Context, kind store.Kind, key string, value any, expected int64) (int64, error)
	Commit(ctx context.Context) error
}

type Registry struct {
	store Store
	now   func() time.Time
}

type Option func(*Registry)

// WithClock overrides the registry's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(s Store, opts ...Option) *Registry {
	r := &Registry{store: s, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add saves a quest to the user's bookmarks. Bookmarking a quest again
// refreshes the note and timestamp.
func (r *Registry) Add(ctx context.Context, userID string, quest *models.Quest, notes string) (*models.Bookmark, error) {
	list, version, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	bookmark := models.Bookmark{
		QuestID:      quest.ID,
		GuildID:      quest.GuildID,
		Notes:        notes,
		BookmarkedAt: r.now().UTC(),
	}
	replaced := false
	for i, b := range list.Bookmarks {
		if b.QuestID == quest.ID {
			list.Bookmarks[i] = bookmark
			replaced = true
			break
		}
	}
	if !replaced {
		list.Bookmarks = append(list.Bookmarks, bookmark)
	}

	if err := r.save(ctx, userID, list, version); err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// Remove drops a quest from the user's bookmarks.
func (r *Registry) Remove(ctx context.Context, userID, questID string) error {
	list, version, err := r.load(ctx, userID)
	if err != nil {
		return err
	}

	kept := list.Bookmarks[:0]
	removed := false
	for _, b := range list.Bookmarks {
		if b.QuestID == questID {
			removed = true
			continue
		}
		kept = append(kept, b)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrNotBookmarked, questID)
	}
	list.Bookmarks = kept
	return r.save(ctx, userID, list, version)
}

// List returns the user's bookmarks, newest first, optionally narrowed to
// one guild.
func (r *Registry) List(ctx context.Context, userID, guildID string) ([]models.Bookmark, error) {
	list, _, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Bookmark, 0, len(list.Bookmarks))
	for _, b := range list.Bookmarks {
		if guildID != "" && b.GuildID != guildID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookmarkedAt.Equal(out[j].BookmarkedAt) {
			return out[i].BookmarkedAt.After(out[j].BookmarkedAt)
		}
		return out[i].QuestID < out[j].QuestID
	})
	return out, nil
}

// IsBookmarked reports whether the user saved the quest.
func (r *Registry) IsBookmarked(ctx context.Context, userID, questID string) (bool, error) {
	list, _, err := r.load(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := list.Find(questID)
	return ok, nil
}

func (r *Registry) load(ctx context.Context, userID string) (*models.BookmarkList, int64, error) {
	list := new(models.BookmarkList)
	version, err := r.store.Get(ctx, store.KindBookmarks, userID, list)
	if errors.Is(err, store.ErrNotFound) {
		return &models.BookmarkList{UserID: userID}, store.VersionAbsent, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load bookmarks for %s: %w", userID, err)
	}
	if err := list.Validate(); err != nil {
		return nil, 0, err
	}
	return list, version, nil
}

func (r *Registry) save(ctx context.Context, userID string, list *models.BookmarkList, version int64) error {
	if _, err := r.store.Put(ctx, store.KindBookmarks, userID, list, version); err != nil {
		return fmt.Errorf("failed to save bookmarks for %s: %w", userID, err)
	}
	if err := r.store.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit bookmarks for %s: %w", userID, err)
	}
	return nil
}
