package quest

import (
	"context"
	"fmt"
	"sort"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/permissions"
)

// CountRow pairs a label with how many quests carry it.
type CountRow struct {
	Label string
	Count int
}

// GuildAnalytics summarizes a guild's quest board.
type GuildAnalytics struct {
	TotalQuests     int
	OpenQuests      int
	CompletedQuests int
	RejectedQuests  int
	ActiveUsers     int
	// SuccessRate is approved over decided, in percent. Zero when nothing
	// has been decided yet.
	SuccessRate float64
	Categories  []CountRow
	Ranks       []CountRow
	TopCreators []CountRow
}

// Analytics builds the guild dashboard from the quest records. Gated to the
// quest-creator tier.
func (m *Manager) Analytics(ctx context.Context, actor Actor, guildID string) (*GuildAnalytics, error) {
	if !permissions.CanPerform(actor.Roles, permissions.ActionViewAnalytics) {
		return nil, fmt.Errorf("%w: %s requires at least %s", ErrPermissionDenied,
			permissions.ActionViewAnalytics, permissions.RoleQuestCreator)
	}

	quests, err := m.ListQuests(ctx, Filter{GuildID: guildID})
	if err != nil {
		return nil, err
	}

	out := &GuildAnalytics{TotalQuests: len(quests)}
	categories := make(map[string]int)
	ranks := make(map[string]int)
	creators := make(map[string]int)
	users := make(map[string]struct{})
	for _, q := range quests {
		switch q.Status {
		case models.StatusOpen:
			out.OpenQuests++
		case models.StatusApproved:
			out.CompletedQuests++
		case models.StatusRejected:
			out.RejectedQuests++
		}
		if q.Category != "" {
			categories[q.Category]++
		}
		if q.Rank != "" {
			ranks[q.Rank]++
		}
		creators[q.CreatorID]++
		if q.AssigneeID != "" {
			users[q.AssigneeID] = struct{}{}
		}
	}
	out.ActiveUsers = len(users)
	if decided := out.CompletedQuests + out.RejectedQuests; decided > 0 {
		out.SuccessRate = float64(out.CompletedQuests) / float64(decided) * 100
	}
	out.Categories = sortedCounts(categories)
	out.Ranks = sortedCounts(ranks)
	out.TopCreators = sortedCounts(creators)
	return out, nil
}

func sortedCounts(counts map[string]int) []CountRow {
	rows := make([]CountRow, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, CountRow{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}
