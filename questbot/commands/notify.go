package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/models"
)

// notifyStage posts an embed to the channel a guild bound to the given
// workflow stage. Best-effort: unconfigured guilds and send failures are
// logged and swallowed so command replies never depend on routing.
func notifyStage(b *questbot.Bot, guildID *snowflake.ID, stage channels.Stage, embed discord.Embed) {
	if guildID == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.StoreQueryTimeout)
	defer cancel()

	channelID, err := b.Channels.ResolveDestination(ctx, *guildID, stage)
	if errors.Is(err, channels.ErrNotConfigured) {
		return
	}
	if err != nil {
		slog.Error("Failed to resolve stage channel",
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err))
		return
	}
	if _, err := b.Client.Rest().CreateMessage(channelID, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	}); err != nil {
		slog.Error("Failed to post stage notification",
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}
}

func statusEmoji(status models.QuestStatus) string {
	switch status {
	case models.StatusOpen:
		return "🟢"
	case models.StatusAccepted:
		return "🟡"
	case models.StatusSubmitted:
		return "🔵"
	case models.StatusApproved:
		return "✅"
	case models.StatusRejected:
		return "❌"
	}
	return "❔"
}

func questLine(q *models.Quest) string {
	line := fmt.Sprintf("%s `%s` **%s**", statusEmoji(q.Status), q.ID, q.Title)
	if q.Rank != "" {
		line += fmt.Sprintf(" [%s]", q.Rank)
	}
	if q.AssigneeID != "" {
		line += fmt.Sprintf(" — held by <@%s>", q.AssigneeID)
	}
	return line
}

func questEmbed(q *models.Quest, color int) discord.Embed {
	fields := []discord.EmbedField{
		{Name: "Status", Value: string(q.Status), Inline: ptr(true)},
		{Name: "Creator", Value: fmt.Sprintf("<@%s>", q.CreatorID), Inline: ptr(true)},
	}
	if q.AssigneeID != "" {
		fields = append(fields, discord.EmbedField{Name: "Assignee", Value: fmt.Sprintf("<@%s>", q.AssigneeID), Inline: ptr(true)})
	}
	if q.Rank != "" {
		fields = append(fields, discord.EmbedField{Name: "Rank", Value: q.Rank, Inline: ptr(true)})
	}
	if q.Category != "" {
		fields = append(fields, discord.EmbedField{Name: "Category", Value: q.Category, Inline: ptr(true)})
	}
	if q.Reward != "" {
		fields = append(fields, discord.EmbedField{Name: "Reward", Value: q.Reward, Inline: ptr(true)})
	}
	if q.Requirements != "" {
		fields = append(fields, discord.EmbedField{Name: "Requirements", Value: q.Requirements})
	}
	return discord.Embed{
		Title:       fmt.Sprintf("Quest %s — %s", q.ID, q.Title),
		Description: q.Description,
		Color:       color,
		Fields:      fields,
		Timestamp:   &q.UpdatedAt,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.ReviewTimeout)
}
