package models

import (
	"fmt"
	"strings"
	"time"
)

// ParticipationDateLayout is the day granularity used for the
// participation-date set.
const ParticipationDateLayout = "2006-01-02"

// UserStats aggregates per-user quest counters. Mutated only by the
// statistics aggregator in response to acceptances and terminal reviews.
type UserStats struct {
	UserID             string    `json:"user_id"`
	Accepted           int64     `json:"quests_accepted"`
	Completed          int64     `json:"quests_completed"`
	Rejected           int64     `json:"quests_rejected"`
	ParticipationDates []string  `json:"participation_dates,omitempty"`
	UpdatedAt          time.Time `json:"last_updated"`
}

// AddParticipationDate inserts the day of t into the participation set.
// Inserting the same day twice has no additional effect.
func (s *UserStats) AddParticipationDate(t time.Time) bool {
	day := t.UTC().Format(ParticipationDateLayout)
	for _, d := range s.ParticipationDates {
		if d == day {
			return false
		}
	}
	s.ParticipationDates = append(s.ParticipationDates, day)
	return true
}

func (s *UserStats) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("stats record missing user_id")
	}
	if s.Accepted < 0 || s.Completed < 0 || s.Rejected < 0 {
		return fmt.Errorf("stats for %s have negative counters", s.UserID)
	}
	return nil
}

func (s *UserStats) Clone() *UserStats {
	c := *s
	c.ParticipationDates = append([]string(nil), s.ParticipationDates...)
	return &c
}
