package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot"
	"github.com/questguild/questbot/questbot/config"
	"github.com/questguild/questbot/questbot/quest"
	"github.com/questguild/questbot/questbot/utils"
)

const popularQuestLimit = 5

var QuestAnalytics = discord.SlashCommandCreate{
	Name:        "questanalytics",
	Description: "Show the guild's quest board analytics",
}

func QuestAnalyticsHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		guildID := ""
		if id := e.GuildID(); id != nil {
			guildID = id.String()
		}

		dash, err := b.QuestManager.Analytics(ctx, b.ResolveActor(e), guildID)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}

		overview := fmt.Sprintf(
			"Total: **%d** · Open: **%d** · Completed: **%d** · Rejected: **%d**\nActive users: **%d**",
			dash.TotalQuests, dash.OpenQuests, dash.CompletedQuests, dash.RejectedQuests, dash.ActiveUsers)
		if dash.CompletedQuests+dash.RejectedQuests > 0 {
			overview += fmt.Sprintf("\nSuccess rate: **%.1f%%**", dash.SuccessRate)
		}

		embed := discord.Embed{
			Title:       "📊 Quest Analytics",
			Description: overview,
			Color:       config.InfoColor,
		}
		if field := countField("Categories", dash.Categories, false); field != nil {
			embed.Fields = append(embed.Fields, *field)
		}
		if field := countField("Ranks", dash.Ranks, false); field != nil {
			embed.Fields = append(embed.Fields, *field)
		}
		if field := countField("Top Creators", dash.TopCreators, true); field != nil {
			embed.Fields = append(embed.Fields, *field)
		}

		popular, err := b.Stats.PopularQuests(ctx, guildID, popularQuestLimit)
		if err != nil {
			return utils.EH.CreateQuestError(e, err)
		}
		if len(popular) > 0 {
			var sb strings.Builder
			for _, entry := range popular {
				title := entry.Activity.QuestID
				if q, err := b.QuestManager.GetQuest(ctx, entry.Activity.QuestID); err == nil {
					title = fmt.Sprintf("`%s` %s", q.ID, q.Title)
				}
				sb.WriteString(fmt.Sprintf("%d. %s — %d views, %d accepts\n",
					entry.Rank, title, entry.Activity.Views, entry.Activity.Accepts))
			}
			embed.Fields = append(embed.Fields, discord.EmbedField{
				Name:  "Popular Quests",
				Value: sb.String(),
			})
		}

		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}

func countField(name string, rows []quest.CountRow, mention bool) *discord.EmbedField {
	if len(rows) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, row := range rows {
		label := row.Label
		if mention {
			label = fmt.Sprintf("<@%s>", row.Label)
		}
		sb.WriteString(fmt.Sprintf("%s — %d\n", label, row.Count))
	}
	return &discord.EmbedField{Name: name, Value: sb.String()}
}
