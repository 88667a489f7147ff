package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/channels"
	"github.com/questguild/questbot/questbot/permissions"
	"github.com/questguild/questbot/questbot/utils"
)

var SetChannels = discord.SlashCommandCreate{
	Name:        "setchannels",
	Description: "Admin: route a quest workflow stage to a channel",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "stage",
			Description: "Which workflow stage to route",
			Required:    true,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Quest listing", Value: string(channels.StageListing)},
				{Name: "Acceptance", Value: string(channels.StageAcceptance)},
				{Name: "Submission", Value: string(channels.StageSubmission)},
				{Name: "Approval", Value: string(channels.StageApproval)},
				{Name: "Notifications", Value: string(channels.StageNotification)},
			},
		},
		discord.ApplicationCommandOptionChannel{
			Name:        "channel",
			Description: "Destination channel",
			Required:    true,
			ChannelTypes: []discord.ChannelType{
				discord.ChannelTypeGuildText,
			},
		},
	},
}

func SetChannelsHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works in a server.")
		}

		actor := b.ResolveActor(e)
		if !permissions.CanPerform(actor.Roles, permissions.ActionConfigureChannels) {
			return utils.EH.CreateClassifiedError(e, utils.PermissionError,
				"Only administrators can configure channels.")
		}

		data := e.SlashCommandInteractionData()
		stage := channels.Stage(data.String("stage"))
		channel := data.Channel("channel")

		if _, err := b.Channels.Set(ctx, *guildID, stage, channel.ID); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to save channel configuration.")
		}

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("Stage **%s** now posts to <#%s>.", stage, channel.ID))
	}
}
