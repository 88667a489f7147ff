package quest

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/questguild/questbot/questbot/models"
)

// questSource adapts a quest slice to fuzzy matching over title and
// description.
type questSource []*models.Quest

func (s questSource) String(i int) string {
	return strings.ToLower(s[i].Title + " " + s[i].Description)
}

func (s questSource) Len() int { return len(s) }

// SearchQuests fuzzy-matches query against the titles and descriptions of
// quests passing the filter, best matches first. An empty query returns the
// filtered list unchanged.
func (m *Manager) SearchQuests(ctx context.Context, query string, filter Filter) ([]*models.Quest, error) {
	quests, err := m.ListQuests(ctx, filter)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return quests, nil
	}
	matches := fuzzy.FindFrom(query, questSource(quests))
	results := make([]*models.Quest, len(matches))
	for i, match := range matches {
		results[i] = quests[match.Index]
	}
	return results, nil
}
