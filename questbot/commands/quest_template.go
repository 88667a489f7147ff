package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/quest"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestTemplate = discord.SlashCommandCreate{
	Name:        "questtemplate",
	Description: "Post a new quest from a template",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "template",
			Description: "Which template to use",
			Required:    true,
			Choices:     templateChoices(),
		},
		discord.ApplicationCommandOptionString{
			Name:        "title",
			Description: "Override the template's title",
			Required:    false,
			MaxLength:   ptr(config.MaxTitleLength),
		},
		discord.ApplicationCommandOptionString{
			Name:        "description",
			Description: "Override the template's description",
			Required:    false,
			MaxLength:   ptr(config.MaxDescriptionLength),
		},
		discord.ApplicationCommandOptionString{
			Name:        "requirements",
			Description: "Override the template's requirements",
			Required:    false,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reward",
			Description: "Override the template's reward",
			Required:    false,
		},
	},
}

func templateChoices() []discord.ApplicationCommandOptionChoiceString {
	templates := quest.Templates()
	choices := make([]discord.ApplicationCommandOptionChoiceString, len(templates))
	for i, t := range templates {
		choices[i] = discord.ApplicationCommandOptionChoiceString{Name: t.Name, Value: t.ID}
	}
	return choices
}

func QuestTemplateHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		overrides := quest.CreateInput{
			Title:        data.String("title"),
			Description:  data.String("description"),
			Requirements: data.String("requirements"),
			Reward:       data.String("reward"),
		}
		if guildID := e.GuildID(); guildID != nil {
			overrides.GuildID = guildID.String()
		}

		q, err := b.QuestManager.CreateQuestFromTemplate(ctx, b.ResolveActor(e), data.String("template"), overrides)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		notifyStage(b, e.GuildID(), channels.StageListing, questEmbed(q, config.InfoColor))
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{questEmbed(q, config.SuccessColor)},
		})
	}
}
