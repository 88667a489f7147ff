package models

import (
	"fmt"
	"strings"
	"time"
)

// QuestActivity counts engagement with one quest: how often it was viewed
// and how often it was accepted. Kept separate from the lifecycle state so
// tracking never contends with transitions.
type QuestActivity struct {
	QuestID   string    `json:"quest_id"`
	GuildID   string    `json:"guild_id,omitempty"`
	Views     int64     `json:"views"`
	Accepts   int64     `json:"accepts"`
	UpdatedAt time.Time `json:"last_updated"`
}

// PopularityScore weighs acceptances over plain views.
func (a *QuestActivity) PopularityScore() int64 {
	return a.Views + 2*a.Accepts
}

func (a *QuestActivity) Validate() error {
	if strings.TrimSpace(a.QuestID) == "" {
		return fmt.Errorf("activity record missing quest_id")
	}
	if a.Views < 0 || a.Accepts < 0 {
		return fmt.Errorf("activity for %s has negative counters", a.QuestID)
	}
	return nil
}

func (a *QuestActivity) Clone() *QuestActivity {
	c := *a
	return &c
}
