// Package commands defines the slash commands and their handlers. Handlers
// resolve the invoking member's permission tiers, call into the lifecycle
// manager, and render its result or error; no quest rules live here.
package commands

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	QuestCreate,
	QuestTemplate,
	QuestAccept,
	QuestSubmit,
	QuestReview,
	QuestRelease,
	QuestList,
	QuestInfo,
	QuestSearch,
	QuestLeaderboard,
	QuestStats,
	QuestAnalytics,
	QuestBookmark,
	QuestUnbookmark,
	QuestBookmarks,
	SetChannels,
	Version,
}
