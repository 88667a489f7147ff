package questbot

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/questguild/questbot/questbot/permissions"
	"github.com/questguild/questbot/questbot/quest"
)

// ResolveActor maps the invoking member onto the permission tiers: guild
// owners and members with admin-level Discord permissions are recognized
// directly, moderator and quest-creator tiers come from the configured role
// ID lists, and everyone holds the member tier.
func (b *Bot) ResolveActor(e *handler.CommandEvent) quest.Actor {
	userID := e.User().ID
	roles := []permissions.Role{permissions.RoleMember}

	member := e.Member()
	if member == nil {
		return quest.Actor{ID: userID.String(), Roles: roles}
	}

	if guildID := e.GuildID(); guildID != nil {
		if guild, ok := e.Client().Caches().Guild(*guildID); ok && guild.OwnerID == userID {
			roles = append(roles, permissions.RoleOwner)
		}
	}

	if member.Permissions.Has(discord.PermissionAdministrator) ||
		member.Permissions.Has(discord.PermissionManageGuild) {
		roles = append(roles, permissions.RoleAdministrator)
	}

	for _, roleID := range member.RoleIDs {
		for _, modRole := range b.Cfg.Roles.Moderator {
			if roleID == modRole {
				roles = append(roles, permissions.RoleModerator)
			}
		}
		for _, creatorRole := range b.Cfg.Roles.QuestCreator {
			if roleID == creatorRole {
				roles = append(roles, permissions.RoleQuestCreator)
			}
		}
	}

	return quest.Actor{ID: userID.String(), Roles: roles}
}
