package channels

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"

	"github.com/questguild/questbot/questbot/store"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewRegistry(s)
}

func TestGetUnconfiguredGuild(t *testing.T) {
	r := newTestRegistry(t)
	guild := snowflake.ID(123)

	cfg, err := r.Get(context.Background(), guild)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cfg.GuildID != guild || cfg.QuestList != 0 {
		t.Errorf("Get() = %+v, want empty config for guild", cfg)
	}
}

func TestSetAndResolve(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	guild := snowflake.ID(123)

	if _, err := r.Set(ctx, guild, StageApproval, snowflake.ID(777)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := r.Set(ctx, guild, StageNotification, snowflake.ID(888)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := r.ResolveDestination(ctx, guild, StageApproval)
	if err != nil {
		t.Fatalf("ResolveDestination(approval) error = %v", err)
	}
	if got != 777 {
		t.Errorf("approval channel = %d, want 777", got)
	}

	// Unbound stages fall back to the notification channel.
	got, err = r.ResolveDestination(ctx, guild, StageSubmission)
	if err != nil {
		t.Fatalf("ResolveDestination(submission) error = %v", err)
	}
	if got != 888 {
		t.Errorf("submission fallback = %d, want 888", got)
	}
}

func TestResolveNotConfigured(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.ResolveDestination(context.Background(), snowflake.ID(42), StageListing); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ResolveDestination() error = %v, want ErrNotConfigured", err)
	}
}

func TestConfigsAreIndependentPerGuild(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Set(ctx, snowflake.ID(1), StageListing, snowflake.ID(10)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := r.Set(ctx, snowflake.ID(2), StageListing, snowflake.ID(20)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	one, err := r.Get(ctx, snowflake.ID(1))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	two, err := r.Get(ctx, snowflake.ID(2))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if one.QuestList != 10 || two.QuestList != 20 {
		t.Errorf("configs bled across guilds: %d, %d", one.QuestList, two.QuestList)
	}
}

func TestSetRejectsUnknownStage(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.Set(context.Background(), snowflake.ID(1), Stage("bogus"), snowflake.ID(10)); err == nil {
		t.Error("Set() with unknown stage succeeded, want error")
	}
}
