// Package migration moves quest data between the legacy Mongo deployment,
// the current file-backed record store, and a relational Postgres export for
// offline analysis.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/store"
)

// Importer copies the legacy Mongo collections into the record store.
// Records already present in the store are skipped, so re-running an
// interrupted import is safe.
type Importer struct {
	store *store.Store
	db    *mongo.Database
	stats *Stats
}

func NewImporter(s *store.Store, db *mongo.Database) *Importer {
	return &Importer{store: s, db: db, stats: newStats()}
}

// Connect opens the legacy Mongo database.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, client.Database(dbName), nil
}

// ImportAll runs every collection import and commits the store once.
func (im *Importer) ImportAll(ctx context.Context) (*Stats, error) {
	if err := im.importQuests(ctx); err != nil {
		return im.stats, err
	}
	if err := im.importProgress(ctx); err != nil {
		return im.stats, err
	}
	if err := im.importUserStats(ctx); err != nil {
		return im.stats, err
	}
	if err := im.importChannelConfigs(ctx); err != nil {
		return im.stats, err
	}
	if err := im.store.Commit(ctx); err != nil {
		return im.stats, fmt.Errorf("failed to commit imported records: %w", err)
	}

	slog.Info("Import finished",
		slog.String("type", "db"),
		slog.Any("imported", im.stats.Imported),
		slog.Any("skipped", im.stats.Skipped),
		slog.Duration("took", time.Since(im.stats.Started)))
	return im.stats, nil
}

func (im *Importer) importQuests(ctx context.Context) error {
	cursor, err := im.db.Collection("quests").Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to read quests: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc legacyQuest
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode quest document: %w", err)
		}
		q := &models.Quest{
			ID:           doc.QuestID,
			Title:        doc.Title,
			Description:  doc.Description,
			CreatorID:    doc.CreatorID,
			GuildID:      doc.GuildID,
			Status:       models.QuestStatus(doc.Status),
			AssigneeID:   doc.AssigneeID,
			Requirements: doc.Requirements,
			Reward:       doc.Reward,
			Rank:         doc.Rank,
			Category:     doc.Category,
			CreatedAt:    doc.CreatedAt,
			UpdatedAt:    doc.UpdatedAt,
			RejectedAt:   doc.RejectedAt,
		}
		if q.UpdatedAt.IsZero() {
			q.UpdatedAt = q.CreatedAt
		}
		if err := q.Validate(); err != nil {
			slog.Warn("Skipping invalid quest document",
				slog.String("quest_id", doc.QuestID),
				slog.Any("error", err))
			im.stats.Skipped["quests"]++
			continue
		}
		im.put(ctx, store.KindQuests, q.ID, q, "quests")
	}
	return cursor.Err()
}

func (im *Importer) importProgress(ctx context.Context) error {
	cursor, err := im.db.Collection("quest_progress").Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to read quest progress: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc legacyProgress
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode progress document: %w", err)
		}
		decision := models.Decision(doc.ApprovalStatus)
		if decision == "" {
			decision = models.DecisionPending
		}
		entry := &models.ProgressEntry{
			QuestID:        doc.QuestID,
			UserID:         doc.UserID,
			GuildID:        doc.GuildID,
			ProofText:      doc.ProofText,
			ProofImageURLs: doc.ProofImageURLs,
			Decision:       decision,
			SubmittedAt:    doc.SubmittedAt,
			DecidedAt:      doc.DecidedAt,
		}
		if err := entry.Validate(); err != nil {
			slog.Warn("Skipping invalid progress document",
				slog.String("quest_id", doc.QuestID),
				slog.Any("error", err))
			im.stats.Skipped["progress"]++
			continue
		}
		im.put(ctx, store.KindProgress, models.ProgressKey(entry.QuestID, entry.UserID), entry, "progress")
	}
	return cursor.Err()
}

func (im *Importer) importUserStats(ctx context.Context) error {
	cursor, err := im.db.Collection("user_stats").Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to read user stats: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc legacyUserStats
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode stats document: %w", err)
		}
		stats := &models.UserStats{
			UserID:             doc.UserID,
			Accepted:           doc.QuestsAccepted,
			Completed:          doc.QuestsCompleted,
			Rejected:           doc.QuestsRejected,
			ParticipationDates: doc.ParticipationDates,
			UpdatedAt:          doc.LastUpdated,
		}
		if err := stats.Validate(); err != nil {
			slog.Warn("Skipping invalid stats document",
				slog.String("user_id", doc.UserID),
				slog.Any("error", err))
			im.stats.Skipped["stats"]++
			continue
		}
		im.put(ctx, store.KindStats, stats.UserID, stats, "stats")
	}
	return cursor.Err()
}

func (im *Importer) importChannelConfigs(ctx context.Context) error {
	cursor, err := im.db.Collection("channel_configs").Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to read channel configs: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc legacyChannelConfig
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode channel config document: %w", err)
		}
		cfg, err := doc.toModel()
		if err != nil {
			slog.Warn("Skipping invalid channel config document",
				slog.String("guild_id", doc.GuildID),
				slog.Any("error", err))
			im.stats.Skipped["config"]++
			continue
		}
		im.put(ctx, store.KindConfig, cfg.GuildID.String(), cfg, "config")
	}
	return cursor.Err()
}

func (im *Importer) put(ctx context.Context, kind store.Kind, key string, value any, label string) {
	_, err := im.store.Put(ctx, kind, key, value, store.VersionAbsent)
	switch {
	case err == nil:
		im.stats.Imported[label]++
	case errors.Is(err, store.ErrVersionConflict):
		// Already imported on a previous run.
		im.stats.Skipped[label]++
	default:
		slog.Error("Failed to store imported record",
			slog.String("type", "db"),
			slog.String("key", key),
			slog.Any("error", err))
		im.stats.Skipped[label]++
	}
}
