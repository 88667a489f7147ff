package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestRelease = discord.SlashCommandCreate{
	Name:        "questrelease",
	Description: "Admin: release a quest's assignee and reopen it",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest to reopen",
			Required:    true,
		},
	},
}

func QuestReleaseHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		questID := e.SlashCommandInteractionData().String("quest_id")
		q, err := b.QuestManager.ReleaseAssignee(ctx, b.ResolveActor(e), questID)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		notifyStage(b, e.GuildID(), channels.StageListing, discord.Embed{
			Description: fmt.Sprintf("🟢 Quest `%s` — **%s** is open again.", q.ID, q.Title),
			Color:       config.InfoColor,
		})
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Quest `%s` reopened.", q.ID))
	}
}
