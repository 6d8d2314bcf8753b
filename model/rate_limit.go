package model

import "time"

// RateLimit is a fixed-window request counter per identifier and endpoint type.
type RateLimit struct {
	ID           string     `json:"id" gorm:"primaryKey;type:text;not null"`
	Identifier   string     `json:"identifier" gorm:"not null;uniqueIndex:idx_rate_limit_key,priority:1;size:255"`
	EndpointType string     `json:"endpoint_type" gorm:"not null;uniqueIndex:idx_rate_limit_key,priority:2;size:50"`
	RequestCount int        `json:"request_count" gorm:"default:0;not null"`
	WindowStart  time.Time  `json:"window_start" gorm:"not null"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty" gorm:"index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"not null"`
}
