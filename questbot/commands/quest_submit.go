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

var QuestSubmit = discord.SlashCommandCreate{
	Name:        "questsubmit",
	Description: "Submit your proof for a quest you hold",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest you are completing",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "proof",
			Description: "Describe how you completed the quest",
			Required:    false,
			MaxLength:   ptr(config.MaxProofTextLength),
		},
		discord.ApplicationCommandOptionAttachment{
			Name:        "image",
			Description: "Screenshot or photo as evidence",
			Required:    false,
		},
	},
}

func QuestSubmitHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		questID := data.String("quest_id")
		proof := data.String("proof")

		var imageURLs []string
		if attachment, ok := data.OptAttachment("image"); ok {
			imageURLs = append(imageURLs, attachment.URL)
		}

		actor := b.ResolveActor(e)
		q, err := b.QuestManager.SubmitQuest(ctx, actor, questID, proof, imageURLs)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		if b.Evidence != nil {
			entry, err := b.QuestManager.GetProgress(ctx, q.ID, actor.ID)
			if err == nil {
				if err := b.Evidence.ArchiveSubmission(ctx, entry); err != nil {
					slog.Error("Failed to archive evidence",
						slog.String("quest_id", q.ID),
						slog.Any("error", err))
				}
			}
		}

		notifyStage(b, e.GuildID(), channels.StageApproval, discord.Embed{
			Title:       fmt.Sprintf("Submission for quest %s — %s", q.ID, q.Title),
			Description: fmt.Sprintf("<@%s> submitted proof. Review with `/questreview quest_id:%s`.", actor.ID, q.ID),
			Color:       config.InfoColor,
		})
		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("Proof for quest `%s` submitted. A moderator will review it.", q.ID))
	}
}
