package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestStats = discord.SlashCommandCreate{
	Name:        "queststats",
	Description: "Quest counters for you or another member",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: "Whose stats to show (defaults to you)",
			Required:    false,
		},
	},
}

func QuestStatsHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("member"); ok {
			target = user
		}

		stats, err := b.Stats.Get(ctx, target.ID.String())
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		embed := discord.Embed{
			Title: fmt.Sprintf("Quest stats for %s", target.Username),
			Color: config.InfoColor,
			Fields: []discord.EmbedField{
				{Name: "Accepted", Value: fmt.Sprintf("%d", stats.Accepted), Inline: ptr(true)},
				{Name: "Completed", Value: fmt.Sprintf("%d", stats.Completed), Inline: ptr(true)},
				{Name: "Rejected", Value: fmt.Sprintf("%d", stats.Rejected), Inline: ptr(true)},
				{Name: "Active days", Value: fmt.Sprintf("%d", len(stats.ParticipationDates)), Inline: ptr(true)},
			},
		}
		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}
