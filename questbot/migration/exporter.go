package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/store"
)

// Exporter mirrors the record store into Postgres tables for offline
// analysis and reporting. Rows already exported are skipped on conflict, so
// the export can run repeatedly against a live store.
type Exporter struct {
	store     *store.Store
	db        *bun.DB
	batchSize int
}

func NewExporter(s *store.Store, db *bun.DB) *Exporter {
	return &Exporter{store: s, db: db, batchSize: 500}
}

func (ex *Exporter) createTables(ctx context.Context) error {
	for _, model := range []any{
		(*QuestRow)(nil),
		(*ProgressRow)(nil),
		(*UserStatsRow)(nil),
		(*ChannelConfigRow)(nil),
	} {
		if _, err := ex.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// ExportAll writes every namespace, the four of them in parallel.
func (ex *Exporter) ExportAll(ctx context.Context) error {
	start := time.Now()
	if err := ex.createTables(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ex.exportQuests(ctx) })
	g.Go(func() error { return ex.exportProgress(ctx) })
	g.Go(func() error { return ex.exportUserStats(ctx) })
	g.Go(func() error { return ex.exportChannelConfigs(ctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Export finished",
		slog.String("type", "db"),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (ex *Exporter) exportQuests(ctx context.Context) error {
	keys, err := ex.store.Keys(ctx, store.KindQuests)
	if err != nil {
		return fmt.Errorf("failed to list quests: %w", err)
	}
	rows := make([]QuestRow, 0, len(keys))
	for _, key := range keys {
		q := new(models.Quest)
		version, err := ex.store.Get(ctx, store.KindQuests, key, q)
		if err != nil {
			return fmt.Errorf("failed to load quest %s: %w", key, err)
		}
		rows = append(rows, QuestRow{
			ID:           q.ID,
			Title:        q.Title,
			Description:  q.Description,
			CreatorID:    q.CreatorID,
			GuildID:      q.GuildID,
			Status:       string(q.Status),
			AssigneeID:   q.AssigneeID,
			Requirements: q.Requirements,
			Reward:       q.Reward,
			Rank:         q.Rank,
			Category:     q.Category,
			CreatedAt:    q.CreatedAt,
			UpdatedAt:    q.UpdatedAt,
			RejectedAt:   q.RejectedAt,
			Version:      version,
		})
	}
	return upsertBatches(ctx, ex.db, rows, ex.batchSize, "quests", "quest_id")
}

func (ex *Exporter) exportProgress(ctx context.Context) error {
	keys, err := ex.store.Keys(ctx, store.KindProgress)
	if err != nil {
		return fmt.Errorf("failed to list progress: %w", err)
	}
	rows := make([]ProgressRow, 0, len(keys))
	for _, key := range keys {
		entry := new(models.ProgressEntry)
		version, err := ex.store.Get(ctx, store.KindProgress, key, entry)
		if err != nil {
			return fmt.Errorf("failed to load progress %s: %w", key, err)
		}
		rows = append(rows, ProgressRow{
			QuestID:        entry.QuestID,
			UserID:         entry.UserID,
			GuildID:        entry.GuildID,
			ProofText:      entry.ProofText,
			ProofImageURLs: entry.ProofImageURLs,
			Decision:       string(entry.Decision),
			SubmittedAt:    entry.SubmittedAt,
			DecidedAt:      entry.DecidedAt,
			Version:        version,
		})
	}
	return upsertBatches(ctx, ex.db, rows, ex.batchSize, "progress", "quest_id", "user_id")
}

func (ex *Exporter) exportUserStats(ctx context.Context) error {
	keys, err := ex.store.Keys(ctx, store.KindStats)
	if err != nil {
		return fmt.Errorf("failed to list stats: %w", err)
	}
	rows := make([]UserStatsRow, 0, len(keys))
	for _, key := range keys {
		stats := new(models.UserStats)
		version, err := ex.store.Get(ctx, store.KindStats, key, stats)
		if err != nil {
			return fmt.Errorf("failed to load stats %s: %w", key, err)
		}
		rows = append(rows, UserStatsRow{
			UserID:             stats.UserID,
			Accepted:           stats.Accepted,
			Completed:          stats.Completed,
			Rejected:           stats.Rejected,
			ParticipationDates: stats.ParticipationDates,
			UpdatedAt:          stats.UpdatedAt,
			Version:            version,
		})
	}
	return upsertBatches(ctx, ex.db, rows, ex.batchSize, "stats", "user_id")
}

func (ex *Exporter) exportChannelConfigs(ctx context.Context) error {
	keys, err := ex.store.Keys(ctx, store.KindConfig)
	if err != nil {
		return fmt.Errorf("failed to list channel configs: %w", err)
	}
	rows := make([]ChannelConfigRow, 0, len(keys))
	for _, key := range keys {
		cfg := new(models.ChannelConfig)
		version, err := ex.store.Get(ctx, store.KindConfig, key, cfg)
		if err != nil {
			return fmt.Errorf("failed to load channel config %s: %w", key, err)
		}
		rows = append(rows, ChannelConfigRow{
			GuildID:       cfg.GuildID.String(),
			QuestList:     cfg.QuestList.String(),
			QuestAccept:   cfg.QuestAccept.String(),
			QuestSubmit:   cfg.QuestSubmit.String(),
			QuestApproval: cfg.QuestApproval.String(),
			Notification:  cfg.Notification.String(),
			Version:       version,
		})
	}
	return upsertBatches(ctx, ex.db, rows, ex.batchSize, "config", "guild_id")
}

func upsertBatches[T any](ctx context.Context, db *bun.DB, rows []T, batchSize int, label string, pk ...string) error {
	conflict := "(" + strings.Join(pk, ", ") + ") DO NOTHING"

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		if _, err := db.NewInsert().
			Model(&batch).
			On("CONFLICT " + conflict).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to upsert %s batch: %w", label, err)
		}
	}
	slog.Info("Namespace exported",
		slog.String("type", "db"),
		slog.String("namespace", label),
		slog.Int("rows", len(rows)))
	return nil
}
