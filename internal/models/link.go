package models

import "time"

// Link represents a shortened link.
type Link struct {
	ID         uint       `gorm:"primaryKey"`
	ShortCode  string     `gorm:"uniqueIndex;size:64;not null"`
	LongURL    string     `gorm:"not null"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	ExpiresAt  *time.Time // nil means the link never expires
	ClickCount int64      `gorm:"not null;default:0"`
}

// Expired reports whether the link has an expiry in the past.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}
