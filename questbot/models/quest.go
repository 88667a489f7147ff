package models

import (
	"fmt"
	"strings"
	"time"
)

// QuestStatus is the lifecycle state of a quest. Legal transitions:
// open -> accepted -> submitted -> approved|rejected, and rejected -> accepted
// when retries are enabled. approved is terminal.
type QuestStatus string

const (
	StatusOpen      QuestStatus = "open"
	StatusAccepted  QuestStatus = "accepted"
	StatusSubmitted QuestStatus = "submitted"
	StatusApproved  QuestStatus = "approved"
	StatusRejected  QuestStatus = "rejected"
)

func (s QuestStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusAccepted, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Assigned reports whether a quest in this status carries an assignee.
func (s QuestStatus) Assigned() bool {
	switch s {
	case StatusAccepted, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave this status.
func (s QuestStatus) Terminal() bool {
	return s == StatusApproved
}

// QuestRank values, opaque to the lifecycle.
const (
	RankEasy       = "easy"
	RankNormal     = "normal"
	RankMedium     = "medium"
	RankHard       = "hard"
	RankImpossible = "impossible"
)

type Quest struct {
	ID           string      `json:"quest_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CreatorID    string      `json:"creator_id"`
	GuildID      string      `json:"guild_id,omitempty"`
	Status       QuestStatus `json:"status"`
	AssigneeID   string      `json:"assignee_id,omitempty"`
	Requirements string      `json:"requirements,omitempty"`
	Reward       string      `json:"reward,omitempty"`
	Rank         string      `json:"rank,omitempty"`
	Category     string      `json:"category,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	RejectedAt   *time.Time  `json:"rejected_at,omitempty"`
}

// Validate rejects records missing required fields or breaking the
// assignee/status invariant. Called on every load from the store.
func (q *Quest) Validate() error {
	switch {
	case strings.TrimSpace(q.ID) == "":
		return fmt.Errorf("quest record missing quest_id")
	case strings.TrimSpace(q.Title) == "":
		return fmt.Errorf("quest %s missing title", q.ID)
	case strings.TrimSpace(q.Description) == "":
		return fmt.Errorf("quest %s missing description", q.ID)
	case strings.TrimSpace(q.CreatorID) == "":
		return fmt.Errorf("quest %s missing creator_id", q.ID)
	case !q.Status.Valid():
		return fmt.Errorf("quest %s has unknown status %q", q.ID, q.Status)
	case q.CreatedAt.IsZero():
		return fmt.Errorf("quest %s missing created_at", q.ID)
	}
	if q.Status.Assigned() != (q.AssigneeID != "") {
		return fmt.Errorf("quest %s: status %s inconsistent with assignee %q", q.ID, q.Status, q.AssigneeID)
	}
	return nil
}

func (q *Quest) Clone() *Quest {
	c := *q
	if q.RejectedAt != nil {
		t := *q.RejectedAt
		c.RejectedAt = &t
	}
	return &c
}
