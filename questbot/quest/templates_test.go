package quest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/quest"
)

func TestCreateQuestFromTemplate(t *testing.T) {
	f := newFixture(t, quest.Config{})
	ctx := context.Background()

	tpl, ok := quest.TemplateByID("combat_basic")
	if !ok {
		t.Fatal("combat_basic template missing from catalog")
	}

	q, err := f.manager.CreateQuestFromTemplate(ctx, creator, "combat_basic", quest.CreateInput{GuildID: "guild1"})
	if err != nil {
		t.Fatalf("CreateQuestFromTemplate() error = %v", err)
	}
	if q.Title != tpl.Name || q.Description != tpl.Description {
		t.Errorf("quest = title %q description %q, want blueprint values", q.Title, q.Description)
	}
	if q.Requirements != tpl.Requirements || q.Reward != tpl.Reward {
		t.Errorf("quest = requirements %q reward %q, want blueprint values", q.Requirements, q.Reward)
	}
	if q.Rank != tpl.Rank || q.Category != tpl.Category {
		t.Errorf("quest = rank %q category %q, want %q/%q", q.Rank, q.Category, tpl.Rank, tpl.Category)
	}
	if q.Status != models.StatusOpen || q.CreatorID != creator.ID || q.GuildID != "guild1" {
		t.Errorf("quest = %+v, want open, creator %s, guild1", q, creator.ID)
	}
}

func TestCreateQuestFromTemplateOverrides(t *testing.T) {
	f := newFixture(t, quest.Config{})
	ctx := context.Background()

	q, err := f.manager.CreateQuestFromTemplate(ctx, creator, "hunting_basic", quest.CreateInput{
		Title:  "Cull the wolf pack",
		Reward: "a warm cloak",
	})
	if err != nil {
		t.Fatalf("CreateQuestFromTemplate() error = %v", err)
	}
	if q.Title != "Cull the wolf pack" || q.Reward != "a warm cloak" {
		t.Errorf("overrides not applied: title %q reward %q", q.Title, q.Reward)
	}

	// Rank and category always come from the blueprint.
	tpl, _ := quest.TemplateByID("hunting_basic")
	if q.Rank != tpl.Rank || q.Category != tpl.Category {
		t.Errorf("rank/category = %q/%q, want blueprint %q/%q", q.Rank, q.Category, tpl.Rank, tpl.Category)
	}
	if q.Description != tpl.Description {
		t.Errorf("description = %q, want blueprint default", q.Description)
	}
}

func TestCreateQuestFromTemplateGuards(t *testing.T) {
	f := newFixture(t, quest.Config{})
	ctx := context.Background()

	if _, err := f.manager.CreateQuestFromTemplate(ctx, creator, "no_such_template", quest.CreateInput{}); !errors.Is(err, quest.ErrValidation) {
		t.Errorf("unknown template: error = %v, want ErrValidation", err)
	}
	if _, err := f.manager.CreateQuestFromTemplate(ctx, member, "combat_basic", quest.CreateInput{}); !errors.Is(err, quest.ErrPermissionDenied) {
		t.Errorf("member creating from template: error = %v, want ErrPermissionDenied", err)
	}
}

func TestTemplatesCatalogIsCopied(t *testing.T) {
	first := quest.Templates()
	if len(first) == 0 {
		t.Fatal("Templates() returned an empty catalog")
	}
	first[0].Name = "mutated"

	again := quest.Templates()
	if again[0].Name == "mutated" {
		t.Error("Templates() exposes the shared catalog slice")
	}
}
