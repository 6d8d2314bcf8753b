package streak

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/brushy-app/brushy_api/model"
)

// MaxCharacterNameLength is counted in runes.
const MaxCharacterNameLength = 50

// ValidationError is returned when an input would break a progress invariant.
// The progress record is left untouched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	ErrInvalidPin           = &ValidationError{Field: "pin", Message: "PIN must be exactly 6 digits"}
	ErrNegativeBrushTime    = &ValidationError{Field: "added_time", Message: "added time cannot be negative"}
	ErrBrushTimeOverflow    = &ValidationError{Field: "added_time", Message: "added time is too large"}
	ErrLevelBelowMinimum    = &ValidationError{Field: "update_level_by", Message: "level cannot drop below 1"}
	ErrNegativeXP           = &ValidationError{Field: "current_level_xp", Message: "XP values cannot be negative"}
	ErrInvalidImage         = &ValidationError{Field: "image_id", Message: "image id must be at least 1"}
	ErrInvalidCharacterName = &ValidationError{Field: "character_name", Message: "character name must be 1 to 50 characters"}
)

// AddBrushTime adds seconds to the lifetime brushing time.
func AddBrushTime(p *model.UserProgress, seconds int) error {
	if seconds < 0 {
		return ErrNegativeBrushTime
	}
	if seconds > math.MaxInt-p.TotalBrushTime {
		return ErrBrushTimeOverflow
	}
	p.TotalBrushTime += seconds
	return nil
}

// UpdateLevel moves the level by the given delta, which may be negative.
func UpdateLevel(p *model.UserProgress, by int) error {
	if p.CurrentLevel+by < model.DefaultLevel {
		return ErrLevelBelowMinimum
	}
	p.CurrentLevel += by
	return nil
}

// SetLevelXP stores the XP of the current level. XP above the maximum is
// kept as is; levelling up is up to the client.
func SetLevelXP(p *model.UserProgress, xp, maxXP int) error {
	if xp < 0 || maxXP < 0 {
		return ErrNegativeXP
	}
	p.CurrentLevelXP = xp
	p.CurrentLevelMaxXP = maxXP
	return nil
}

// SetImage selects the character image.
func SetImage(p *model.UserProgress, imageID int) error {
	if imageID < 1 {
		return ErrInvalidImage
	}
	p.ImageID = imageID
	return nil
}

// SetCharacterName trims and stores the character name and marks it as set.
func SetCharacterName(p *model.UserProgress, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxCharacterNameLength {
		return ErrInvalidCharacterName
	}
	p.CharacterName = name
	p.IsCharNameSet = true
	return nil
}
