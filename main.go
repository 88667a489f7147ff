package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/bookmarks"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/commands"
	"github.com/questguild/questbot/questbot/handlers"
	"github.com/questguild/questbot/questbot/logger"
	"github.com/questguild/questbot/questbot/quest"
	"github.com/questguild/questbot/questbot/services"
	"github.com/questguild/questbot/questbot/stats"
	"github.com/questguild/questbot/questbot/store"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting QuestBot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := questbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	storePath := cfg.Store.Path
	if storePath == "" {
		storePath = "data"
	}
	storeStart := time.Now()
	recordStore, err := store.OpenWithCacheSize(storePath, cfg.Store.CacheSize)
	if err != nil {
		slog.Error("Failed to open record store",
			slog.String("path", storePath),
			slog.Any("error", err))
		os.Exit(-1)
	}
	defer recordStore.Close()
	slog.Info("Record store ready",
		slog.String("path", storePath),
		slog.Duration("took", time.Since(storeStart)))

	b := questbot.New(*cfg, version, commit)
	b.Store = recordStore
	b.Stats = stats.NewAggregator(recordStore)
	b.QuestManager = quest.NewManager(recordStore, b.Stats, cfg.Quests.Lifecycle())
	b.Channels = channels.NewRegistry(recordStore)
	b.Bookmarks = bookmarks.NewRegistry(recordStore)
	b.LeaderboardImages = services.NewLeaderboardImageService()

	if cfg.Spaces.Enabled {
		archive, err := services.NewEvidenceArchive(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.Root,
		)
		if err != nil {
			slog.Error("Failed to initialize evidence archive", slog.Any("error", err))
			os.Exit(-1)
		}
		b.Evidence = archive
	}

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	b.Scheduler = quest.NewScheduler(b.QuestManager, cfg.Quests.SweepInterval())
	b.Scheduler.Start(schedulerCtx)

	h := handler.New()

	// System commands
	h.Command("/version", commands.VersionHandler(b))

	// Quest lifecycle
	h.Command("/questcreate", handlers.WrapWithLogging("questcreate", commands.QuestCreateHandler(b)))
	h.Command("/questtemplate", handlers.WrapWithLogging("questtemplate", commands.QuestTemplateHandler(b)))
	h.Command("/questaccept", handlers.WrapWithLogging("questaccept", commands.QuestAcceptHandler(b)))
	h.Command("/questsubmit", handlers.WrapWithLogging("questsubmit", commands.QuestSubmitHandler(b)))
	h.Command("/questreview", handlers.WrapWithLogging("questreview", commands.QuestReviewHandler(b)))
	h.Command("/questrelease", handlers.WrapWithLogging("questrelease", commands.QuestReleaseHandler(b)))

	// Browsing
	h.Command("/questlist", handlers.WrapWithLogging("questlist", commands.QuestListHandler(b)))
	h.Command("/questinfo", handlers.WrapWithLogging("questinfo", commands.QuestInfoHandler(b)))
	h.Command("/questsearch", handlers.WrapWithLogging("questsearch", commands.QuestSearchHandler(b)))
	h.Command("/questleaderboard", handlers.WrapWithLogging("questleaderboard", commands.QuestLeaderboardHandler(b)))
	h.Command("/queststats", handlers.WrapWithLogging("queststats", commands.QuestStatsHandler(b)))
	h.Command("/questanalytics", handlers.WrapWithLogging("questanalytics", commands.QuestAnalyticsHandler(b)))
	h.Command("/questbookmark", handlers.WrapWithLogging("questbookmark", commands.QuestBookmarkHandler(b)))
	h.Command("/questunbookmark", handlers.WrapWithLogging("questunbookmark", commands.QuestUnbookmarkHandler(b)))
	h.Command("/questbookmarks", handlers.WrapWithLogging("questbookmarks", commands.QuestBookmarksHandler(b)))

	// Admin
	h.Command("/setchannels", handlers.WrapWithLogging("setchannels", commands.SetChannelsHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
	b.Scheduler.Stop()
}
