package models

import (
	"fmt"
	"strings"
	"time"
)

// Decision is the moderator verdict on a submitted quest.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionPending, DecisionApproved, DecisionRejected:
		return true
	}
	return false
}

// ProgressEntry holds one participant's submission evidence for one quest.
// A resubmission overwrites the previous entry for the same (quest, user)
// pair; the entry is authoritative only once the quest reaches submitted.
type ProgressEntry struct {
	QuestID        string     `json:"quest_id"`
	UserID         string     `json:"user_id"`
	GuildID        string     `json:"guild_id,omitempty"`
	ProofText      string     `json:"proof_text"`
	ProofImageURLs []string   `json:"proof_image_urls,omitempty"`
	Decision       Decision   `json:"decision"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
}

// ProgressKey builds the store key for a (quest, user) pair.
func ProgressKey(questID, userID string) string {
	return questID + ":" + userID
}

func (p *ProgressEntry) Validate() error {
	switch {
	case strings.TrimSpace(p.QuestID) == "":
		return fmt.Errorf("progress record missing quest_id")
	case strings.TrimSpace(p.UserID) == "":
		return fmt.Errorf("progress record for quest %s missing user_id", p.QuestID)
	case !p.Decision.Valid():
		return fmt.Errorf("progress %s/%s has unknown decision %q", p.QuestID, p.UserID, p.Decision)
	case p.SubmittedAt.IsZero():
		return fmt.Errorf("progress %s/%s missing submitted_at", p.QuestID, p.UserID)
	}
	return nil
}

func (p *ProgressEntry) Clone() *ProgressEntry {
	c := *p
	c.ProofImageURLs = append([]string(nil), p.ProofImageURLs...)
	if p.DecidedAt != nil {
		t := *p.DecidedAt
		c.DecidedAt = &t
	}
	return &c
}
