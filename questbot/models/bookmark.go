package models

import (
	"fmt"
	"strings"
	"time"
)

// Bookmark marks one quest a user saved for later, with an optional note.
type Bookmark struct {
	QuestID      string    `json:"quest_id"`
	GuildID      string    `json:"guild_id,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	BookmarkedAt time.Time `json:"bookmarked_at"`
}

// BookmarkList is a user's saved quests, one record per user.
type BookmarkList struct {
	UserID    string     `json:"user_id"`
	Bookmarks []Bookmark `json:"bookmarks,omitempty"`
}

func (l *BookmarkList) Validate() error {
	if strings.TrimSpace(l.UserID) == "" {
		return fmt.Errorf("bookmark list missing user_id")
	}
	for _, b := range l.Bookmarks {
		if strings.TrimSpace(b.QuestID) == "" {
			return fmt.Errorf("bookmark list for %s has an entry without quest_id", l.UserID)
		}
	}
	return nil
}

func (l *BookmarkList) Clone() *BookmarkList {
	c := *l
	c.Bookmarks = append([]Bookmark(nil), l.Bookmarks...)
	return &c
}

// Find returns the bookmark for questID and whether it exists.
func (l *BookmarkList) Find(questID string) (Bookmark, bool) {
	for _, b := range l.Bookmarks {
		if b.QuestID == questID {
			return b, true
		}
	}
	return Bookmark{}, false
}
