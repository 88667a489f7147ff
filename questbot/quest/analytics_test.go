package quest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/quest"
)

func TestAnalyticsPermissionGate(t *testing.T) {
	f := newFixture(t, quest.Config{})

	if _, err := f.manager.Analytics(context.Background(), member, "guild1"); !errors.Is(err, quest.ErrPermissionDenied) {
		t.Errorf("Analytics() as member: error = %v, want ErrPermissionDenied", err)
	}
}

func TestAnalyticsDashboard(t *testing.T) {
	f := newFixture(t, quest.Config{})
	ctx := context.Background()

	newQuest := func(title, rank, category string) *models.Quest {
		t.Helper()
		q, err := f.manager.CreateQuest(ctx, creator, quest.CreateInput{
			GuildID:     "guild1",
			Title:       title,
			Description: "d",
			Rank:        rank,
			Category:    category,
		})
		if err != nil {
			t.Fatalf("CreateQuest(%s) error = %v", title, err)
		}
		return q
	}
	runToDecision := func(q *models.Quest, assignee quest.Actor, decision models.Decision) {
		t.Helper()
		if _, err := f.manager.AcceptQuest(ctx, assignee, q.ID); err != nil {
			t.Fatalf("AcceptQuest(%s) error = %v", q.ID, err)
		}
		if _, err := f.manager.SubmitQuest(ctx, assignee, q.ID, "proof", nil); err != nil {
			t.Fatalf("SubmitQuest(%s) error = %v", q.ID, err)
		}
		if _, err := f.manager.ReviewQuest(ctx, mod, q.ID, decision); err != nil {
			t.Fatalf("ReviewQuest(%s) error = %v", q.ID, err)
		}
	}

	approved := newQuest("approved combat", models.RankHard, "combat")
	rejected := newQuest("rejected combat", models.RankEasy, "combat")
	newQuest("still open", models.RankEasy, "gathering")
	runToDecision(approved, member, models.DecisionApproved)
	runToDecision(rejected, other, models.DecisionRejected)

	// A quest in a different guild stays out of the dashboard.
	if _, err := f.manager.CreateQuest(ctx, creator, quest.CreateInput{
		GuildID: "guild2", Title: "elsewhere", Description: "d",
	}); err != nil {
		t.Fatalf("CreateQuest() error = %v", err)
	}

	dash, err := f.manager.Analytics(ctx, creator, "guild1")
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if dash.TotalQuests != 3 || dash.OpenQuests != 1 || dash.CompletedQuests != 1 || dash.RejectedQuests != 1 {
		t.Errorf("totals = %d/%d open/%d completed/%d rejected, want 3/1/1/1",
			dash.TotalQuests, dash.OpenQuests, dash.CompletedQuests, dash.RejectedQuests)
	}
	if dash.ActiveUsers != 2 {
		t.Errorf("active users = %d, want 2", dash.ActiveUsers)
	}
	if dash.SuccessRate != 50 {
		t.Errorf("success rate = %.1f, want 50.0", dash.SuccessRate)
	}

	if len(dash.Categories) != 2 || dash.Categories[0].Label != "combat" || dash.Categories[0].Count != 2 {
		t.Errorf("categories = %+v, want combat(2) first", dash.Categories)
	}
	if len(dash.Ranks) != 2 || dash.Ranks[0].Label != models.RankEasy || dash.Ranks[0].Count != 2 {
		t.Errorf("ranks = %+v, want easy(2) first", dash.Ranks)
	}
	if len(dash.TopCreators) != 1 || dash.TopCreators[0].Label != creator.ID || dash.TopCreators[0].Count != 3 {
		t.Errorf("creators = %+v, want %s(3)", dash.TopCreators, creator.ID)
	}
}

func TestAnalyticsEmptyGuild(t *testing.T) {
	f := newFixture(t, quest.Config{})

	dash, err := f.manager.Analytics(context.Background(), creator, "guild1")
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if dash.TotalQuests != 0 || dash.SuccessRate != 0 {
		t.Errorf("empty guild dashboard = %+v, want zeros", dash)
	}
}
