// Package permissions decides whether a member may perform a quest action.
// It is a pure lookup over an ordered role hierarchy: no I/O, no Discord
// types. Mapping a member's Discord roles onto these tiers happens at the
// command layer.
package permissions

// Role is a tier in the hierarchy. Higher values grant every action a lower
// tier grants.
type Role int

const (
	RoleMember Role = iota
	RoleQuestCreator
	RoleModerator
	RoleAdministrator
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleQuestCreator:
		return "quest creator"
	case RoleModerator:
		return "moderator"
	case RoleAdministrator:
		return "administrator"
	case RoleOwner:
		return "owner"
	}
	return "unknown"
}

// Action is a permission-gated quest operation.
type Action int

const (
	ActionCreateQuest Action = iota
	ActionAcceptQuest
	ActionSubmitQuest
	ActionReviewQuest
	ActionReleaseAssignee
	ActionConfigureChannels
	ActionViewAnalytics
)

func (a Action) String() string {
	switch a {
	case ActionCreateQuest:
		return "create quest"
	case ActionAcceptQuest:
		return "accept quest"
	case ActionSubmitQuest:
		return "submit quest"
	case ActionReviewQuest:
		return "review quest"
	case ActionReleaseAssignee:
		return "release assignee"
	case ActionConfigureChannels:
		return "configure channels"
	case ActionViewAnalytics:
		return "view analytics"
	}
	return "unknown"
}

// minimumTier is the lowest role allowed to perform each action.
var minimumTier = map[Action]Role{
	ActionCreateQuest:       RoleQuestCreator,
	ActionAcceptQuest:       RoleMember,
	ActionSubmitQuest:       RoleMember,
	ActionReviewQuest:       RoleModerator,
	ActionReleaseAssignee:   RoleAdministrator,
	ActionConfigureChannels: RoleAdministrator,
	ActionViewAnalytics:     RoleQuestCreator,
}

// MinimumTier returns the lowest role allowed to perform action.
func MinimumTier(action Action) (Role, bool) {
	tier, ok := minimumTier[action]
	return tier, ok
}

// CanPerform reports whether any of the member's roles meets the minimum
// tier for action. Unknown actions are denied.
func CanPerform(roles []Role, action Action) bool {
	tier, ok := minimumTier[action]
	if !ok {
		return false
	}
	for _, role := range roles {
		if role >= tier {
			return true
		}
	}
	return false
}

// Highest returns the strongest role held, RoleMember when none are given.
func Highest(roles []Role) Role {
	highest := RoleMember
	for _, role := range roles {
		if role > highest {
			highest = role
		}
	}
	return highest
}
