package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/store"
)

// Engagement tracking. Views and acceptances are counted per quest in the
// activity namespace, independent of the lifecycle records, and feed the
// popularity ranking. Writers retry a lost version race instead of failing.

const activityRetries = 3

// RecordQuestView counts one view of the quest.
func (a *Aggregator) RecordQuestView(ctx context.Context, questID, guildID string) error {
	return a.trackActivity(ctx, questID, guildID, func(act *models.QuestActivity) {
		act.Views++
	})
}

// RecordQuestAccept counts one acceptance of the quest.
func (a *Aggregator) RecordQuestAccept(ctx context.Context, questID, guildID string) error {
	return a.trackActivity(ctx, questID, guildID, func(act *models.QuestActivity) {
		act.Accepts++
	})
}

// QuestActivityFor returns the engagement counters for one quest, zero-valued
// when it was never viewed or accepted.
func (a *Aggregator) QuestActivityFor(ctx context.Context, questID string) (*models.QuestActivity, error) {
	act, _, err := a.loadActivity(ctx, questID)
	return act, err
}

// ActivityEntry is one popularity-ranking row.
type ActivityEntry struct {
	Rank     int
	Activity *models.QuestActivity
}

// PopularQuests ranks quests by engagement, acceptances weighing double.
// An empty guildID ranks across every guild.
func (a *Aggregator) PopularQuests(ctx context.Context, guildID string, limit int) ([]ActivityEntry, error) {
	keys, err := a.store.Keys(ctx, store.KindActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest activity: %w", err)
	}
	all := make([]*models.QuestActivity, 0, len(keys))
	for _, key := range keys {
		act := new(models.QuestActivity)
		if _, err := a.store.Get(ctx, store.KindActivity, key, act); err != nil {
			return nil, fmt.Errorf("failed to load activity for %s: %w", key, err)
		}
		if guildID != "" && act.GuildID != guildID {
			continue
		}
		all = append(all, act)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].PopularityScore() != all[j].PopularityScore() {
			return all[i].PopularityScore() > all[j].PopularityScore()
		}
		return all[i].QuestID < all[j].QuestID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	entries := make([]ActivityEntry, len(all))
	for i, act := range all {
		entries[i] = ActivityEntry{Rank: i + 1, Activity: act}
	}
	return entries, nil
}

func (a *Aggregator) trackActivity(ctx context.Context, questID, guildID string, mutate func(*models.QuestActivity)) error {
	var err error
	for attempt := 0; attempt < activityRetries; attempt++ {
		var (
			act     *models.QuestActivity
			version int64
		)
		act, version, err = a.loadActivity(ctx, questID)
		if err != nil {
			return err
		}
		if act.GuildID == "" {
			act.GuildID = guildID
		}
		mutate(act)
		act.UpdatedAt = a.now().UTC()

		_, err = a.store.Put(ctx, store.KindActivity, questID, act, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return fmt.Errorf("failed to track activity for %s: %w", questID, err)
		}
	}
	return fmt.Errorf("failed to track activity for %s: %w", questID, err)
}

func (a *Aggregator) loadActivity(ctx context.Context, questID string) (*models.QuestActivity, int64, error) {
	act := new(models.QuestActivity)
	version, err := a.store.Get(ctx, store.KindActivity, questID, act)
	if errors.Is(err, store.ErrNotFound) {
		return &models.QuestActivity{QuestID: questID}, store.VersionAbsent, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load activity for %s: %w", questID, err)
	}
	if err := act.Validate(); err != nil {
		return nil, 0, err
	}
	return act, version, nil
}
