package model

import "time"

const (
	DefaultLevel         = 1
	DefaultLevelMaxXP    = 120
	DefaultImageID       = 1
	DefaultCharacterName = "Brushy"
)

// UserProgress holds the gamification state of a single user. Counters are
// only ever changed through the streak package while the row is locked.
type UserProgress struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null"`

	TotalBrushTime int `json:"total_brush_time" gorm:"default:0;not null"` // seconds

	CurrentLevel      int `json:"current_level" gorm:"default:1;not null"`
	CurrentLevelXP    int `json:"current_level_xp" gorm:"default:0;not null"`
	CurrentLevelMaxXP int `json:"current_level_max_xp" gorm:"default:120;not null"`

	CurrentStreak    int `json:"current_streak" gorm:"default:0;not null"`
	MaxStreak        int `json:"max_streak" gorm:"default:0;not null;index"`
	StreakMorning    int `json:"streak_morning" gorm:"default:0;not null"`
	MaxStreakMorning int `json:"max_streak_morning" gorm:"default:0;not null"`
	StreakEvening    int `json:"streak_evening" gorm:"default:0;not null"`
	MaxStreakEvening int `json:"max_streak_evening" gorm:"default:0;not null"`

	TotalBrushes        int `json:"total_brushes" gorm:"default:0;not null"`
	TotalBrushesMorning int `json:"total_brushes_morning" gorm:"default:0;not null"`
	TotalBrushesEvening int `json:"total_brushes_evening" gorm:"default:0;not null"`
	TotalBrushesDays    int `json:"total_brushes_days" gorm:"default:0;not null"`

	PercentageMorning float64 `json:"percentage_morning" gorm:"default:0;not null"`
	PercentageEvening float64 `json:"percentage_evening" gorm:"default:0;not null"`

	LastActiveDate    *time.Time `json:"last_active_date" gorm:"type:date"`
	LastActiveMorning *time.Time `json:"last_active_morning"`
	LastActiveEvening *time.Time `json:"last_active_evening"`

	ImageID int `json:"image_id" gorm:"default:1;not null"`

	ParentPin string `json:"-" gorm:"size:72"` // bcrypt hash
	IsPinSet  bool   `json:"is_pin_set" gorm:"default:false;not null"`

	CharacterName string `json:"character_name" gorm:"default:'Brushy';size:50;not null"`
	IsCharNameSet bool   `json:"is_char_name_set" gorm:"default:false;not null"`

	Version   int64     `json:"version" gorm:"default:0;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserProgress returns the signup state of a user's progress.
func NewUserProgress(id, userID string) *UserProgress {
	return &UserProgress{
		ID:                id,
		UserID:            userID,
		CurrentLevel:      DefaultLevel,
		CurrentLevelMaxXP: DefaultLevelMaxXP,
		ImageID:           DefaultImageID,
		CharacterName:     DefaultCharacterName,
	}
}
