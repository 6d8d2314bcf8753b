package dto

import (
	"time"

	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/brushy-app/brushy_api/streak"
)

// ==================== PROGRESS REQUEST DTOs ====================

// BrushRequest records a full brushing session: the active day, the
// morning/evening session and optionally the time spent.
type BrushRequest struct {
	AddedTime *int `json:"added_time,omitempty" validate:"omitempty,gte=0,lte=3600" example:"120"`
}

func (r BrushRequest) Validate() error {
	return GetValidator().Struct(r)
}

type BrushTimeRequest struct {
	AddedTime *int `json:"added_time" validate:"required,gte=0,lte=3600" example:"120"`
}

func (r BrushTimeRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateLevelRequest struct {
	UpdateLevelBy *int `json:"update_level_by" validate:"required" example:"1"`
}

func (r UpdateLevelRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateXPRequest struct {
	CurrentLevelXP    *int `json:"current_level_xp" validate:"required,gte=0" example:"60"`
	CurrentLevelMaxXP *int `json:"current_level_max_xp" validate:"required,gte=0" example:"120"`
}

func (r UpdateXPRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateImageRequest struct {
	ImageID int `json:"image_id" validate:"required,gte=1" example:"3"`
}

func (r UpdateImageRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateCharacterNameRequest struct {
	CharacterName string `json:"character_name" validate:"required,min=1,max=50" example:"Sparkle"`
}

func (r UpdateCharacterNameRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ParentPinRequest struct {
	Pin string `json:"pin" validate:"required,pin" example:"123456"`
}

func (r ParentPinRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ActivityRangeQuery struct {
	From string `query:"from" json:"from" validate:"omitempty,calendar_date" example:"2024-03-01"`
	To   string `query:"to" json:"to" validate:"omitempty,calendar_date" example:"2024-03-31"`
}

func (r ActivityRangeQuery) Validate() error {
	return GetValidator().Struct(r)
}

// ==================== PROGRESS RESPONSE DTOs ====================

type ProgressResponse struct {
	UserID            string  `json:"user_id"`
	TotalBrushTime    int     `json:"total_brush_time"`
	CurrentLevel      int     `json:"current_level"`
	CurrentLevelXP    int     `json:"current_level_xp"`
	CurrentLevelMaxXP int     `json:"current_level_max_xp"`
	CurrentStreak     int     `json:"current_streak"`
	MaxStreak         int     `json:"max_streak"`
	StreakMorning     int     `json:"streak_morning"`
	MaxStreakMorning  int     `json:"max_streak_morning"`
	StreakEvening     int     `json:"streak_evening"`
	MaxStreakEvening  int     `json:"max_streak_evening"`
	TotalBrushes      int     `json:"total_brushes"`
	TotalMorning      int     `json:"total_brushes_morning"`
	TotalEvening      int     `json:"total_brushes_evening"`
	TotalDays         int     `json:"total_brushes_days"`
	PercentageMorning float64 `json:"percentage_morning"`
	PercentageEvening float64 `json:"percentage_evening"`

	LastActiveDate    *string    `json:"last_active_date"`
	LastActiveMorning *time.Time `json:"last_active_morning"`
	LastActiveEvening *time.Time `json:"last_active_evening"`

	ImageID       int    `json:"image_id"`
	IsPinSet      bool   `json:"is_pin_set"`
	CharacterName string `json:"character_name"`
	IsCharNameSet bool   `json:"is_char_name_set"`
	Version       int64  `json:"version"`
}

func NewProgressResponse(p *model.UserProgress) ProgressResponse {
	resp := ProgressResponse{
		UserID:            p.UserID,
		TotalBrushTime:    p.TotalBrushTime,
		CurrentLevel:      p.CurrentLevel,
		CurrentLevelXP:    p.CurrentLevelXP,
		CurrentLevelMaxXP: p.CurrentLevelMaxXP,
		CurrentStreak:     p.CurrentStreak,
		MaxStreak:         p.MaxStreak,
		StreakMorning:     p.StreakMorning,
		MaxStreakMorning:  p.MaxStreakMorning,
		StreakEvening:     p.StreakEvening,
		MaxStreakEvening:  p.MaxStreakEvening,
		TotalBrushes:      p.TotalBrushes,
		TotalMorning:      p.TotalBrushesMorning,
		TotalEvening:      p.TotalBrushesEvening,
		TotalDays:         p.TotalBrushesDays,
		PercentageMorning: p.PercentageMorning,
		PercentageEvening: p.PercentageEvening,
		LastActiveMorning: p.LastActiveMorning,
		LastActiveEvening: p.LastActiveEvening,
		ImageID:           p.ImageID,
		IsPinSet:          p.IsPinSet,
		CharacterName:     p.CharacterName,
		IsCharNameSet:     p.IsCharNameSet,
		Version:           p.Version,
	}
	if p.LastActiveDate != nil {
		d := p.LastActiveDate.Format(shared.DateLayout)
		resp.LastActiveDate = &d
	}
	return resp
}

type ActivityResponse struct {
	ActivityDate string             `json:"activity_date" example:"2024-03-01"`
	ActivityTime time.Time          `json:"activity_time"`
	ActivityType model.ActivityType `json:"activity_type" example:"morning"`
}

func NewActivityResponse(a *model.UserActivity) *ActivityResponse {
	if a == nil {
		return nil
	}
	return &ActivityResponse{
		ActivityDate: a.ActivityDate.Format(shared.DateLayout),
		ActivityTime: a.ActivityTime,
		ActivityType: a.ActivityType,
	}
}

type SessionResponse struct {
	Session       model.ActivityType `json:"session" example:"morning"`
	StreakUpdated bool               `json:"streak_updated"`
	DayCounted    bool               `json:"day_counted"`
	Activity      *ActivityResponse  `json:"activity,omitempty"`
	Progress      ProgressResponse   `json:"progress"`
}

type StreakResponse struct {
	DayCounted bool             `json:"day_counted"`
	Progress   ProgressResponse `json:"progress"`
}

type DaySummaryResponse struct {
	ActivityDate string             `json:"activity_date" example:"2024-03-01"`
	ActivityType model.ActivityType `json:"activity_type" example:"both"`
}

type ActivitySummaryResponse struct {
	Days        []DaySummaryResponse `json:"days"`
	TotalDays   int                  `json:"total_days"`
	MorningDays int                  `json:"morning_days"`
	EveningDays int                  `json:"evening_days"`
	BothDays    int                  `json:"both_days"`
}

func NewActivitySummaryResponse(days []streak.DaySummary) ActivitySummaryResponse {
	resp := ActivitySummaryResponse{
		Days:      make([]DaySummaryResponse, 0, len(days)),
		TotalDays: len(days),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, DaySummaryResponse{
			ActivityDate: d.ActivityDate.Format(shared.DateLayout),
			ActivityType: d.ActivityType,
		})
		switch d.ActivityType {
		case model.ActivityMorning:
			resp.MorningDays++
		case model.ActivityEvening:
			resp.EveningDays++
		case model.ActivityBoth:
			resp.BothDays++
		}
	}
	return resp
}

type PinCheckResponse struct {
	Valid bool `json:"valid"`
}
