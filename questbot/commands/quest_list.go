package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/quest"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestList = discord.SlashCommandCreate{
	Name:        "questlist",
	Description: "Browse the quest board",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "status",
			Description: "Only show quests in this state",
			Required:    false,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Open", Value: string(models.StatusOpen)},
				{Name: "Accepted", Value: string(models.StatusAccepted)},
				{Name: "Submitted", Value: string(models.StatusSubmitted)},
				{Name: "Approved", Value: string(models.StatusApproved)},
				{Name: "Rejected", Value: string(models.StatusRejected)},
			},
		},
		discord.ApplicationCommandOptionBool{
			Name:        "mine",
			Description: "Only show quests you hold",
			Required:    false,
		},
	},
}

func QuestListHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		filter := quest.Filter{Status: models.QuestStatus(data.String("status"))}
		if guildID := e.GuildID(); guildID != nil {
			filter.GuildID = guildID.String()
		}
		if mine, ok := data.OptBool("mine"); ok && mine {
			filter.AssigneeID = e.User().ID.String()
		}

		quests, err := b.QuestManager.ListQuests(ctx, filter)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}
		if len(quests) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No quests match. Post one with `/questcreate`.")
		}

		return paginateQuests(b, e, "Quest Board", quests)
	}
}

func paginateQuests(b *questbot.Bot, e *handler.CommandEvent, title string, quests []*models.Quest) error {
	perPage := config.QuestsPerPage
	totalPages := (len(quests) + perPage - 1) / perPage

	return b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			start := page * perPage
			end := start + perPage
			if end > len(quests) {
				end = len(quests)
			}
			var sb strings.Builder
			for _, q := range quests[start:end] {
				sb.WriteString(questLine(q))
				sb.WriteString("\n")
			}
			embed.
				SetTitle(title).
				SetDescription(sb.String()).
				SetColor(config.EmbedDefaultColor).
				SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, len(quests)), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}
