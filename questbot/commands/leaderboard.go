package commands

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/utils"
)

var QuestLeaderboard = discord.SlashCommandCreate{
	Name:        "questleaderboard",
	Description: "Top quest completers",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionBool{
			Name:        "image",
			Description: "Render the leaderboard as an image",
			Required:    false,
		},
	},
}

func QuestLeaderboardHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		entries, err := b.Stats.Leaderboard(ctx, config.LeaderboardPerPage)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "Nobody has completed a quest yet.")
		}

		wantImage, _ := e.SlashCommandInteractionData().OptBool("image")
		if wantImage && b.LeaderboardImages != nil {
			guildName := "this server"
			if guildID := e.GuildID(); guildID != nil {
				if guild, ok := e.Client().Caches().Guild(*guildID); ok {
					guildName = guild.Name
				}
			}
			image, err := b.LeaderboardImages.GenerateLeaderboardImage(ctx, guildName, entries)
			if err == nil {
				return e.CreateMessage(discord.MessageCreate{
					Files: []*discord.File{{
						Name:   "leaderboard.png",
						Reader: bytes.NewReader(image),
					}},
				})
			}
			slog.Error("Falling back to embed leaderboard",
				slog.Any("error", err))
		}

		var sb strings.Builder
		for _, entry := range entries {
			sb.WriteString(fmt.Sprintf("**%d.** <@%s> — %d completed, %d accepted, %d rejected\n",
				entry.Rank, entry.Stats.UserID, entry.Stats.Completed, entry.Stats.Accepted, entry.Stats.Rejected))
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🏆 Quest Leaderboard",
				Description: sb.String(),
				Color:       config.InfoColor,
			}},
		})
	}
}
