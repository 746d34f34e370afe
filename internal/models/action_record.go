package models

import "time"

// ActionRecord stores one enforcement action taken against a flagged user:
// the community, the action, the reason, and how many comments were affected.
type ActionRecord struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Subreddit    string `gorm:"index;size:64;not null"`
	Username     string `gorm:"index;size:64;not null"`
	Action       string `gorm:"size:16;not null"`
	Reason       string `gorm:"type:text"`
	CommentCount int    `gorm:"default:0"`
	Signals      string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
