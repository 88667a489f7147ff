package migration

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/questguild/questbot/questbot/models"
)

// Legacy Mongo document shapes from the original quest bot. Field names
// follow the old collections exactly; the importer maps them onto current
// records.
type legacyQuest struct {
	QuestID      string     `bson:"quest_id"`
	Title        string     `bson:"title"`
	Description  string     `bson:"description"`
	CreatorID    string     `bson:"creator_id"`
	GuildID      string     `bson:"guild_id"`
	Status       string     `bson:"status"`
	AssigneeID   string     `bson:"assignee_id"`
	Requirements string     `bson:"requirements"`
	Reward       string     `bson:"reward"`
	Rank         string     `bson:"rank"`
	Category     string     `bson:"category"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
	RejectedAt   *time.Time `bson:"rejected_at"`
}

type legacyProgress struct {
	QuestID        string     `bson:"quest_id"`
	UserID         string     `bson:"user_id"`
	GuildID        string     `bson:"guild_id"`
	ProofText      string     `bson:"proof_text"`
	ProofImageURLs []string   `bson:"proof_image_urls"`
	ApprovalStatus string     `bson:"approval_status"`
	SubmittedAt    time.Time  `bson:"submitted_at"`
	DecidedAt      *time.Time `bson:"decided_at"`
}

type legacyUserStats struct {
	UserID             string    `bson:"user_id"`
	QuestsAccepted     int64     `bson:"quests_accepted"`
	QuestsCompleted    int64     `bson:"quests_completed"`
	QuestsRejected     int64     `bson:"quests_rejected"`
	ParticipationDates []string  `bson:"participation_dates"`
	LastUpdated        time.Time `bson:"last_updated"`
}

type legacyChannelConfig struct {
	GuildID       string `bson:"guild_id"`
	QuestList     string `bson:"quest_list_channel"`
	QuestAccept   string `bson:"quest_accept_channel"`
	QuestSubmit   string `bson:"quest_submit_channel"`
	QuestApproval string `bson:"quest_approval_channel"`
	Notification  string `bson:"notification_channel"`
}

func (c legacyChannelConfig) toModel() (*models.ChannelConfig, error) {
	parse := func(s string) (snowflake.ID, error) {
		if s == "" {
			return 0, nil
		}
		return snowflake.Parse(s)
	}

	cfg := new(models.ChannelConfig)
	var err error
	if cfg.GuildID, err = parse(c.GuildID); err != nil {
		return nil, fmt.Errorf("bad guild_id %q: %w", c.GuildID, err)
	}
	if cfg.QuestList, err = parse(c.QuestList); err != nil {
		return nil, fmt.Errorf("bad quest_list_channel %q: %w", c.QuestList, err)
	}
	if cfg.QuestAccept, err = parse(c.QuestAccept); err != nil {
		return nil, fmt.Errorf("bad quest_accept_channel %q: %w", c.QuestAccept, err)
	}
	if cfg.QuestSubmit, err = parse(c.QuestSubmit); err != nil {
		return nil, fmt.Errorf("bad quest_submit_channel %q: %w", c.QuestSubmit, err)
	}
	if cfg.QuestApproval, err = parse(c.QuestApproval); err != nil {
		return nil, fmt.Errorf("bad quest_approval_channel %q: %w", c.QuestApproval, err)
	}
	if cfg.Notification, err = parse(c.Notification); err != nil {
		return nil, fmt.Errorf("bad notification_channel %q: %w", c.Notification, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Relational rows for the Postgres export.
type QuestRow struct {
	bun.BaseModel `bun:"table:quests"`

	ID           string     `bun:"quest_id,pk"`
	Title        string     `bun:"title,notnull"`
	Description  string     `bun:"description,notnull"`
	CreatorID    string     `bun:"creator_id,notnull"`
	GuildID      string     `bun:"guild_id"`
	Status       string     `bun:"status,notnull"`
	AssigneeID   string     `bun:"assignee_id"`
	Requirements string     `bun:"requirements"`
	Reward       string     `bun:"reward"`
	Rank         string     `bun:"rank"`
	Category     string     `bun:"category"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull"`
	RejectedAt   *time.Time `bun:"rejected_at"`
	Version      int64      `bun:"version,notnull"`
}

type ProgressRow struct {
	bun.BaseModel `bun:"table:quest_progress"`

	QuestID        string     `bun:"quest_id,pk"`
	UserID         string     `bun:"user_id,pk"`
	GuildID        string     `bun:"guild_id"`
	ProofText      string     `bun:"proof_text"`
	ProofImageURLs []string   `bun:"proof_image_urls,array"`
	Decision       string     `bun:"decision,notnull"`
	SubmittedAt    time.Time  `bun:"submitted_at,notnull"`
	DecidedAt      *time.Time `bun:"decided_at"`
	Version        int64      `bun:"version,notnull"`
}

type UserStatsRow struct {
	bun.BaseModel `bun:"table:user_stats"`

	UserID             string    `bun:"user_id,pk"`
	Accepted           int64     `bun:"quests_accepted,notnull"`
	Completed          int64     `bun:"quests_completed,notnull"`
	Rejected           int64     `bun:"quests_rejected,notnull"`
	ParticipationDates []string  `bun:"participation_dates,array"`
	UpdatedAt          time.Time `bun:"last_updated,notnull"`
	Version            int64     `bun:"version,notnull"`
}

type ChannelConfigRow struct {
	bun.BaseModel `bun:"table:channel_configs"`

	GuildID       string `bun:"guild_id,pk"`
	QuestList     string `bun:"quest_list_channel"`
	QuestAccept   string `bun:"quest_accept_channel"`
	QuestSubmit   string `bun:"quest_submit_channel"`
	QuestApproval string `bun:"quest_approval_channel"`
	Notification  string `bun:"notification_channel"`
	Version       int64  `bun:"version,notnull"`
}

// Stats tracks per-entity migration counters.
type Stats struct {
	Imported map[string]int
	Skipped  map[string]int
	Started  time.Time
}

func newStats() *Stats {
	return &Stats{
		Imported: make(map[string]int),
		Skipped:  make(map[string]int),
		Started:  time.Now(),
	}
}
