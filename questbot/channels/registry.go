// Package channels maps quest workflow stages to the Discord channels a
// guild routes them through. Settings live in the record store's config
// namespace, one record per guild.
package channels

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/snowflake/v2"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/store"
)

// Stage is a quest workflow step that can be routed to its own channel.
type Stage string

const (
	StageListing      Stage = "listing"
	StageAcceptance   Stage = "acceptance"
	StageSubmission   Stage = "submission"
	StageApproval     Stage = "approval"
	StageNotification Stage = "notification"
)

var Stages = []Stage{StageListing, StageAcceptance, StageSubmission, StageApproval, StageNotification}

// ErrNotConfigured is returned when a guild has no channel bound to the
// requested stage.
var ErrNotConfigured = errors.New("no channel configured for stage")

// Store is the slice of the record store the registry needs.
type Store interface {
	Get(ctx context.Context, kind store.Kind, key string, out any) (int64, error)
	Put(ctx context.Context, kind store.Kind, key string, value any, expected int64) (int64, error)
	Commit(ctx context.Context) error
}

type Registry struct {
	store Store
}

func NewRegistry(s Store) *Registry {
	return &Registry{store: s}
}

// Get returns the guild's channel config, or an empty one if the guild was
// never configured.
func (r *Registry) Get(ctx context.Context, guildID snowflake.ID) (*models.ChannelConfig, error) {
	cfg, _, err := r.load(ctx, guildID)
	return cfg, err
}

// Set binds one workflow stage to a channel and persists the updated config.
func (r *Registry) Set(ctx context.Context, guildID snowflake.ID, stage Stage, channelID snowflake.ID) (*models.ChannelConfig, error) {
	cfg, version, err := r.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	switch stage {
	case StageListing:
		cfg.QuestList = channelID
	case StageAcceptance:
		cfg.QuestAccept = channelID
	case StageSubmission:
		cfg.QuestSubmit = channelID
	case StageApproval:
		cfg.QuestApproval = channelID
	case StageNotification:
		cfg.Notification = channelID
	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	if _, err := r.store.Put(ctx, store.KindConfig, guildID.String(), cfg, version); err != nil {
		return nil, fmt.Errorf("failed to save channel config for guild %s: %w", guildID, err)
	}
	if err := r.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit channel config for guild %s: %w", guildID, err)
	}
	return cfg, nil
}

// ResolveDestination returns the channel bound to stage, falling back to the
// notification channel, then ErrNotConfigured.
func (r *Registry) ResolveDestination(ctx context.Context, guildID snowflake.ID, stage Stage) (snowflake.ID, error) {
	cfg, _, err := r.load(ctx, guildID)
	if err != nil {
		return 0, err
	}
	var bound snowflake.ID
	switch stage {
	case StageListing:
		bound = cfg.QuestList
	case StageAcceptance:
		bound = cfg.QuestAccept
	case StageSubmission:
		bound = cfg.QuestSubmit
	case StageApproval:
		bound = cfg.QuestApproval
	case StageNotification:
		bound = cfg.Notification
	}
	if bound == 0 {
		bound = cfg.Notification
	}
	if bound == 0 {
		return 0, fmt.Errorf("%w: guild %s, stage %s", ErrNotConfigured, guildID, stage)
	}
	return bound, nil
}

func (r *Registry) load(ctx context.Context, guildID snowflake.ID) (*models.ChannelConfig, int64, error) {
	cfg := new(models.ChannelConfig)
	version, err := r.store.Get(ctx, store.KindConfig, guildID.String(), cfg)
	if errors.Is(err, store.ErrNotFound) {
		return &models.ChannelConfig{GuildID: guildID}, store.VersionAbsent, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load channel config for guild %s: %w", guildID, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	return cfg, version, nil
}
