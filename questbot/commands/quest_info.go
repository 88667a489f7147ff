package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/quest"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestInfo = discord.SlashCommandCreate{
	Name:        "questinfo",
	Description: "Show a quest's details and submission",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest",
			Required:    true,
		},
	},
}

func QuestInfoHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		questID := e.SlashCommandInteractionData().String("quest_id")
		q, err := b.QuestManager.GetQuest(ctx, questID)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		if err := b.Stats.RecordQuestView(ctx, q.ID, q.GuildID); err != nil {
			slog.Warn("Failed to track quest view",
				slog.String("quest_id", q.ID),
				slog.Any("error", err))
		}

		embed := questEmbed(q, config.InfoColor)

		if q.AssigneeID != "" {
			entry, err := b.QuestManager.GetProgress(ctx, q.ID, q.AssigneeID)
			switch {
			case err == nil:
				value := entry.ProofText
				if value == "" {
					value = "(images only)"
				}
				if len(entry.ProofImageURLs) > 0 {
					value += fmt.Sprintf("\n%s", strings.Join(entry.ProofImageURLs, "\n"))
				}
				embed.Fields = append(embed.Fields, discord.EmbedField{
					Name:  fmt.Sprintf("Submission (%s)", entry.Decision),
					Value: value,
				})
			case errors.Is(err, quest.ErrNotFound):
				// Accepted but nothing submitted yet.
			default:
				return utils.EH.CreateQuestError(e, err)
			}
		}

		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}
