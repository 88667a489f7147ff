package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/models"
	"github.com/questguild/questbot/questbot/quest"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestCreate = discord.SlashCommandCreate{
	Name:        "questcreate",
	Description: "Post a new quest to the board",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "title",
			Description: "Short quest title",
			Required:    true,
			MaxLength:   ptr(config.MaxTitleLength),
		},
		discord.ApplicationCommandOptionString{
			Name:        "description",
			Description: "What needs to be done",
			Required:    true,
			MaxLength:   ptr(config.MaxDescriptionLength),
		},
		discord.ApplicationCommandOptionString{
			Name:        "requirements",
			Description: "Conditions a submission must meet",
			Required:    false,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reward",
			Description: "What the assignee gets",
			Required:    false,
		},
		discord.ApplicationCommandOptionString{
			Name:        "rank",
			Description: "Difficulty rank",
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
			Description: "Quest category",
			Required:    false,
		},
	},
}

func QuestCreateHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		in := quest.CreateInput{
			Title:        data.String("title"),
			Description:  data.String("description"),
			Requirements: data.String("requirements"),
			Reward:       data.String("reward"),
			Rank:         data.String("rank"),
			Category:     data.String("category"),
		}
		if guildID := e.GuildID(); guildID != nil {
			in.GuildID = guildID.String()
		}

		q, err := b.QuestManager.CreateQuest(ctx, b.ResolveActor(e), in)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		notifyStage(b, e.GuildID(), channels.StageListing, questEmbed(q, config.InfoColor))
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{questEmbed(q, config.SuccessColor)},
		})
	}
}
