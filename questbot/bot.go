package questbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/questguild/questbot/questbot/bookmarks"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/quest"
	"github.com/questguild/questbot/questbot/services"
	"github.com/questguild/questbot/questbot/stats"
	"github.com/questguild/questbot/questbot/store"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg               Config
	Client            bot.Client
	Paginator         *paginator.Manager
	Version           string
	Commit            string
	Store             *store.Store
	QuestManager      *quest.Manager
	Stats             *stats.Aggregator
	Channels          *channels.Registry
	Bookmarks         *bookmarks.Registry
	Scheduler         *quest.Scheduler
	Evidence          *services.EvidenceArchive
	LeaderboardImages *services.LeaderboardImageService
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("QuestBot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the quest board"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
