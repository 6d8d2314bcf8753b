package model

import "time"

type ActivityType string

const (
	ActivityMorning ActivityType = "morning"
	ActivityEvening ActivityType = "evening"
	ActivityBoth    ActivityType = "both"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityMorning, ActivityEvening, ActivityBoth:
		return true
	}
	return false
}

// UserActivity is an append-only log entry written whenever a brushing
// session advances a session streak. (user, date, time, type) is unique.
type UserActivity struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	UserID       string       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_activity_unique,priority:1;index:idx_user_activity_date,priority:1"`
	ActivityDate time.Time    `json:"activity_date" gorm:"type:date;not null;uniqueIndex:idx_user_activity_unique,priority:2;index:idx_user_activity_date,priority:2"`
	ActivityTime time.Time    `json:"activity_time" gorm:"not null;uniqueIndex:idx_user_activity_unique,priority:3"`
	ActivityType ActivityType `json:"activity_type" gorm:"size:10;not null;uniqueIndex:idx_user_activity_unique,priority:4"`
	CreatedAt    time.Time    `json:"created_at"`
}
