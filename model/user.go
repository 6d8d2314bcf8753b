package model

import "time"

type User struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	FirstName string     `json:"first_name" gorm:"not null;size:100"`
	LastName  string     `json:"last_name" gorm:"not null;size:100"`
	Email     string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string     `json:"-" gorm:"not null"`
	Thumbnail string     `json:"thumbnail"` // object key in the media bucket
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relationships
	Progress   *UserProgress  `json:"progress,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Activities []UserActivity `json:"activities,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
