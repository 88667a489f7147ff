package questbot

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/questguild/questbot/questbot/quest"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	Bot    BotConfig    `toml:"bot"`
	Store  StoreConfig  `toml:"store"`
	Quests QuestsConfig `toml:"quests"`
	Roles  RolesConfig  `toml:"roles"`
	Spaces SpacesConfig `toml:"spaces"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type StoreConfig struct {
	Path      string `toml:"path"`
	CacheSize int    `toml:"cache_size"`
}

type QuestsConfig struct {
	AllowRetry         bool `toml:"allow_retry"`
	RetryCooldownHours int  `toml:"retry_cooldown_hours"`
	AcceptTimeoutHours int  `toml:"accept_timeout_hours"`
	ExpirySweepMinutes int  `toml:"expiry_sweep_minutes"`
}

// Lifecycle converts the config-file units into lifecycle settings.
func (c QuestsConfig) Lifecycle() quest.Config {
	return quest.Config{
		AllowRetry:    c.AllowRetry,
		RetryCooldown: time.Duration(c.RetryCooldownHours) * time.Hour,
		AcceptTimeout: time.Duration(c.AcceptTimeoutHours) * time.Hour,
	}
}

func (c QuestsConfig) SweepInterval() time.Duration {
	return time.Duration(c.ExpirySweepMinutes) * time.Minute
}

// RolesConfig binds Discord role IDs to permission tiers. Guild owners and
// members with administrator-level Discord permissions are recognized
// without configuration.
type RolesConfig struct {
	Moderator    []snowflake.ID `toml:"moderator"`
	QuestCreator []snowflake.ID `toml:"quest_creator"`
}

type SpacesConfig struct {
	Enabled bool   `toml:"enabled"`
	Key     string `toml:"key"`
	Secret  string `toml:"secret"`
	Region  string `toml:"region"`
	Bucket  string `toml:"bucket"`
	Root    string `toml:"root"`
}
