package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestReview = discord.SlashCommandCreate{
	Name:        "questreview",
	Description: "Approve or reject a submitted quest",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the submitted quest",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "decision",
			Description: "Review outcome",
			Required:    true,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Approve", Value: string(models.DecisionApproved)},
				{Name: "Reject", Value: string(models.DecisionRejected)},
			},
		},
	},
}

func QuestReviewHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		questID := data.String("quest_id")
		decision := models.Decision(data.String("decision"))

		q, err := b.QuestManager.ReviewQuest(ctx, b.ResolveActor(e), questID, decision)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		var notice string
		color := config.SuccessColor
		if q.Status == models.StatusApproved {
			notice = fmt.Sprintf("✅ Quest `%s` — **%s** was approved. Congratulations <@%s>!", q.ID, q.Title, q.AssigneeID)
		} else {
			color = config.WarningColor
			notice = fmt.Sprintf("❌ Quest `%s` — **%s** was rejected.", q.ID, q.Title)
			if b.Cfg.Quests.AllowRetry {
				notice += " It can be taken again"
				if b.Cfg.Quests.RetryCooldownHours > 0 {
					notice += fmt.Sprintf(" after %dh", b.Cfg.Quests.RetryCooldownHours)
				}
				notice += "."
			}
		}

		notifyStage(b, e.GuildID(), channels.StageNotification, discord.Embed{
			Description: notice,
			Color:       color,
		})
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Quest `%s` %s.", q.ID, decision))
	}
}
