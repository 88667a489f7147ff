package models

import (
	"fmt"

	"github.com/disgoorg/snowflake/v2"
)

// ChannelConfig maps a guild's quest workflow stages to channel IDs.
// Owned by the channel registry; the lifecycle core never reads it.
type ChannelConfig struct {
	GuildID       snowflake.ID `json:"guild_id"`
	QuestList     snowflake.ID `json:"quest_list_channel,omitempty"`
	QuestAccept   snowflake.ID `json:"quest_accept_channel,omitempty"`
	QuestSubmit   snowflake.ID `json:"quest_submit_channel,omitempty"`
	QuestApproval snowflake.ID `json:"quest_approval_channel,omitempty"`
	Notification  snowflake.ID `json:"notification_channel,omitempty"`
}

func (c *ChannelConfig) Validate() error {
	if c.GuildID == 0 {
		return fmt.Errorf("channel config missing guild_id")
	}
	return nil
}
