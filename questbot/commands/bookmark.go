package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/bookmarks"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestBookmark = discord.SlashCommandCreate{
	Name:        "questbookmark",
	Description: "Save a quest for later",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest to save",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "notes",
			Description: "A note to keep with the bookmark",
			Required:    false,
		},
	},
}

var QuestUnbookmark = discord.SlashCommandCreate{
	Name:        "questunbookmark",
	Description: "Remove a quest from your bookmarks",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "quest_id",
			Description: "ID of the quest to remove",
			Required:    true,
		},
	},
}

var QuestBookmarks = discord.SlashCommandCreate{
	Name:        "questbookmarks",
	Description: "List your bookmarked quests",
}

func QuestBookmarkHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		q, err := b.QuestManager.GetQuest(ctx, data.String("quest_id"))
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		if _, err := b.Bookmarks.Add(ctx, e.User().ID.String(), q, data.String("notes")); err != nil {
			return utils.EH.CreateQuestError(e, err)
		}
		return utils.EH.CreateEphemeralSuccessEmbed(e,
			fmt.Sprintf("Bookmarked quest `%s` — **%s**. See your list with `/questbookmarks`.", q.ID, q.Title))
	}
}

func QuestUnbookmarkHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		questID := e.SlashCommandInteractionData().String("quest_id")
		err := b.Bookmarks.Remove(ctx, e.User().ID.String(), questID)
		if errors.Is(err, bookmarks.ErrNotBookmarked) {
			return utils.EH.CreateEphemeralErrorEmbed(e,
				fmt.Sprintf("Quest `%s` is not in your bookmarks.", questID))
		}
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}
		return utils.EH.CreateEphemeralSuccessEmbed(e,
			fmt.Sprintf("Removed quest `%s` from your bookmarks.", questID))
	}
}

func QuestBookmarksHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		guildID := ""
		if id := e.GuildID(); id != nil {
			guildID = id.String()
		}
		saved, err := b.Bookmarks.List(ctx, e.User().ID.String(), guildID)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}
		if len(saved) == 0 {
			return utils.EH.CreateEphemeralInfoEmbed(e, "You have no bookmarks here. Save one with `/questbookmark`.")
		}

		var sb strings.Builder
		for _, bm := range saved {
			q, err := b.QuestManager.GetQuest(ctx, bm.QuestID)
			if err != nil {
				// The quest may have been created before a wipe; show the id.
				sb.WriteString(fmt.Sprintf("• `%s` (no longer available)\n", bm.QuestID))
				continue
			}
			sb.WriteString(questLine(q))
			if bm.Notes != "" {
				sb.WriteString(fmt.Sprintf("\n  ↳ %s", bm.Notes))
			}
			sb.WriteString("\n")
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🔖 Your Bookmarks",
				Description: sb.String(),
				Color:       config.InfoColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}
