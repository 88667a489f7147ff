package commands

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestAccept = discord.SlashCommandCreate{
	Name:        "questaccept",
	Description: "Take an open quest",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest to take",
			Required:    true,
		},
	},
}

func QuestAcceptHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		questID := e.SlashCommandInteractionData().String("quest_id")
		q, err := b.QuestManager.AcceptQuest(ctx, b.ResolveActor(e), questID)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		if err := b.Stats.RecordQuestAccept(ctx, q.ID, q.GuildID); err != nil {
			slog.Warn("Failed to track quest acceptance",
				slog.String("quest_id", q.ID),
				slog.Any("error", err))
		}

		notifyStage(b, e.GuildID(), channels.StageAcceptance, discord.Embed{
			Description: fmt.Sprintf("🟡 <@%s> took quest `%s` — **%s**", q.AssigneeID, q.ID, q.Title),
			Color:       config.InfoColor,
		})
		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("You took quest `%s` — **%s**. Submit your proof with `/questsubmit` when done.", q.ID, q.Title))
	}
}
