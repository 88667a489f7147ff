package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/quest"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestSearch = discord.SlashCommandCreate{
	Name:        "questsearch",
	Description: "Fuzzy-search quests by title and description",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "query",
			Description: "What to look for",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "rank",
			Description: "Only quests of this difficulty",
			Required:    false,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Easy", Value: models.RankEasy},
				{Name: "Normal", Value: models.RankNormal},
				{Name: "Medium", Value: models.RankMedium},
				{Name: "Hard", Value: models.RankHard},
				{Name: "Impossible", Value: models.RankImpossible},
			},
		},
		discord.ApplicationCommandOptionString{
			Name:        "category",
			Description: "Only quests in this category",
			Required:    false,
		},
	},
}

func QuestSearchHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		query := data.String("query")
		filter := quest.Filter{
			Rank:     data.String("rank"),
			Category: data.String("category"),
		}
		if guildID := e.GuildID(); guildID != nil {
			filter.GuildID = guildID.String()
		}

		results, err := b.QuestManager.SearchQuests(ctx, query, filter)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}
		if len(results) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No quests matched your search.")
		}
		if len(results) > config.MaxSearchResults {
			results = results[:config.MaxSearchResults]
		}

		return paginateQuests(b, e, "🔍 Quest Search Results", results)
	}
}
