package permissions

import "testing"

func TestCanPerform(t *testing.T) {
	tests := []struct {
		name   string
		roles  []Role
		action Action
		want   bool
	}{
		{"member can accept", []Role{RoleMember}, ActionAcceptQuest, true},
		{"member can submit", []Role{RoleMember}, ActionSubmitQuest, true},
		{"member cannot create", []Role{RoleMember}, ActionCreateQuest, false},
		{"member cannot review", []Role{RoleMember}, ActionReviewQuest, false},
		{"quest creator can create", []Role{RoleQuestCreator}, ActionCreateQuest, true},
		{"quest creator cannot review", []Role{RoleQuestCreator}, ActionReviewQuest, false},
		{"moderator can review", []Role{RoleModerator}, ActionReviewQuest, true},
		{"moderator can create", []Role{RoleModerator}, ActionCreateQuest, true},
		{"moderator cannot release", []Role{RoleModerator}, ActionReleaseAssignee, false},
		{"moderator cannot configure channels", []Role{RoleModerator}, ActionConfigureChannels, false},
		{"administrator can release", []Role{RoleAdministrator}, ActionReleaseAssignee, true},
		{"administrator can configure channels", []Role{RoleAdministrator}, ActionConfigureChannels, true},
		{"member cannot view analytics", []Role{RoleMember}, ActionViewAnalytics, false},
		{"quest creator can view analytics", []Role{RoleQuestCreator}, ActionViewAnalytics, true},
		{"owner can do everything", []Role{RoleOwner}, ActionReleaseAssignee, true},
		{"strongest role wins", []Role{RoleMember, RoleModerator}, ActionReviewQuest, true},
		{"no roles denied", nil, ActionAcceptQuest, false},
		{"unknown action denied", []Role{RoleOwner}, Action(99), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPerform(tt.roles, tt.action); got != tt.want {
				t.Errorf("CanPerform(%v, %s) = %v, want %v", tt.roles, tt.action, got, tt.want)
			}
		})
	}
}

func TestHierarchyIsTotal(t *testing.T) {
	// Every action a tier may perform must also be allowed for all
	// higher tiers.
	all := []Role{RoleMember, RoleQuestCreator, RoleModerator, RoleAdministrator, RoleOwner}
	actions := []Action{
		ActionCreateQuest, ActionAcceptQuest, ActionSubmitQuest,
		ActionReviewQuest, ActionReleaseAssignee, ActionConfigureChannels,
		ActionViewAnalytics,
	}
	for _, action := range actions {
		for i, lower := range all {
			if !CanPerform([]Role{lower}, action) {
				continue
			}
			for _, higher := range all[i:] {
				if !CanPerform([]Role{higher}, action) {
					t.Errorf("%s allowed for %s but denied for %s", action, lower, higher)
				}
			}
		}
	}
}

func TestHighest(t *testing.T) {
	if got := Highest(nil); got != RoleMember {
		t.Errorf("Highest(nil) = %s, want member", got)
	}
	if got := Highest([]Role{RoleQuestCreator, RoleOwner, RoleMember}); got != RoleOwner {
		t.Errorf("Highest() = %s, want owner", got)
	}
}
