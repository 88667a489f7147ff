package quest

import (
	"context"
	"fmt"

	"github.com/questguild/questbot/questbot/models"
)

// Template is a reusable quest blueprint. Creating from a template fills the
// quest fields from the blueprint; the caller may override any of them.
type Template struct {
	ID           string
	Name         string
	Description  string
	Requirements string
	Reward       string
	Rank         string
	Category     string
}

var questTemplates = []Template{
	{
		ID:           "hunting_basic",
		Name:         "Hunting Adventure",
		Description:  "Embark on a hunting quest to defeat various creatures and prove your combat prowess.",
		Requirements: "Defeat 10 monsters\nLocation: any hunting ground\nProof: screenshot of defeated enemies",
		Reward:       "50 Gold Coins",
		Rank:         models.RankEasy,
		Category:     "hunting",
	},
	{
		ID:           "gathering_basic",
		Name:         "Gathering Materials",
		Description:  "Collect valuable resources from the world to support your community.",
		Requirements: "Gather 20 resources\nLocation: any resource node\nQuality: standard or better",
		Reward:       "25 Gold Coins",
		Rank:         models.RankNormal,
		Category:     "gathering",
	},
	{
		ID:           "combat_basic",
		Name:         "Combat Challenge",
		Description:  "Test your fighting skills in intense combat scenarios.",
		Requirements: "Win 5 combat encounters\nLocation: arena or combat zone\nProof: victory screenshots",
		Reward:       "100 Gold Coins",
		Rank:         models.RankMedium,
		Category:     "combat",
	},
	{
		ID:           "social_basic",
		Name:         "Social Event",
		Description:  "Participate in community activities and build relationships with fellow adventurers.",
		Requirements: "Participate in 3 social events\nDuration: this week\nProof: event participation screenshots",
		Reward:       "Social Recognition Badge",
		Rank:         models.RankEasy,
		Category:     "social",
	},
	{
		ID:           "exploration_basic",
		Name:         "Exploration Mission",
		Description:  "Venture into uncharted territories and discover new locations.",
		Requirements: "Explore 5 new locations\nDocument findings\nProof: screenshots with coordinates",
		Reward:       "Explorer's Map",
		Rank:         models.RankNormal,
		Category:     "exploration",
	},
	{
		ID:           "building_basic",
		Name:         "Building Project",
		Description:  "Construct structures that will benefit the community.",
		Requirements: "Build 1 community structure\nMaterials: player provided\nProof: before and after screenshots",
		Reward:       "Builder's Tools",
		Rank:         models.RankMedium,
		Category:     "building",
	},
	{
		ID:           "trading_basic",
		Name:         "Trading Quest",
		Description:  "Engage in commerce and establish profitable trade relationships.",
		Requirements: "Complete 10 trade transactions\nProfit margin: positive\nProof: transaction logs",
		Reward:       "Merchant's License",
		Rank:         models.RankNormal,
		Category:     "trading",
	},
	{
		ID:           "puzzle_basic",
		Name:         "Puzzle Challenge",
		Description:  "Solve complex puzzles that test your intellect and problem-solving skills.",
		Requirements: "Solve 3 logic puzzles\nTime limit: 2 hours\nProof: solution screenshots",
		Reward:       "Wisdom Scroll",
		Rank:         models.RankHard,
		Category:     "puzzle",
	},
}

// Templates returns the built-in quest blueprints, in catalog order.
func Templates() []Template {
	out := make([]Template, len(questTemplates))
	copy(out, questTemplates)
	return out
}

// TemplateByID looks up one blueprint.
func TemplateByID(id string) (Template, bool) {
	for _, t := range questTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// CreateQuestFromTemplate creates a quest from a blueprint. Non-empty
// override fields replace the blueprint's; rank and category always come
// from the blueprint.
func (m *Manager) CreateQuestFromTemplate(ctx context.Context, actor Actor, templateID string, overrides CreateInput) (*models.Quest, error) {
	t, ok := TemplateByID(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown quest template %q", ErrValidation, templateID)
	}

	in := CreateInput{
		GuildID:      overrides.GuildID,
		Title:        t.Name,
		Description:  t.Description,
		Requirements: t.Requirements,
		Reward:       t.Reward,
		Rank:         t.Rank,
		Category:     t.Category,
	}
	if overrides.Title != "" {
		in.Title = overrides.Title
	}
	if overrides.Description != "" {
		in.Description = overrides.Description
	}
	if overrides.Requirements != "" {
		in.Requirements = overrides.Requirements
	}
	if overrides.Reward != "" {
		in.Reward = overrides.Reward
	}
	return m.CreateQuest(ctx, actor, in)
}
