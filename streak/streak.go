// Package streak implements the brushing accounting rules: overall and
// per-session streaks, brush counters and the morning/evening percentages.
//
// Every function mutates the given *model.UserProgress in place and performs
// no I/O. Callers are expected to hold the progress row lock for the whole
// read-modify-write.
package streak

import (
	"time"

	"github.com/brushy-app/brushy_api/model"
)

// MorningCutoffHour is the first hour that counts as evening.
const MorningCutoffHour = 12

// Date returns the calendar day of t (in t's own location) as UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from one date to another.
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}

// ClassifySession returns morning for hours before noon and evening otherwise.
func ClassifySession(now time.Time) model.ActivityType {
	if now.Hour() < MorningCutoffHour {
		return model.ActivityMorning
	}
	return model.ActivityEvening
}

// RecordOverallActivity advances the overall daily streak for today. It
// reports whether a new active day was counted; calling it again on the same
// day leaves the streak and day counter untouched.
func RecordOverallActivity(p *model.UserProgress, today time.Time) bool {
	day := Date(today)
	counted := false

	if p.LastActiveDate != nil && p.CurrentStreak != 0 {
		delta := DaysBetween(*p.LastActiveDate, day)
		switch {
		case delta == 1:
			p.CurrentStreak++
			p.TotalBrushesDays++
			counted = true
		case delta > 1:
			p.CurrentStreak = 1
			p.TotalBrushesDays++
			counted = true
		}
	} else {
		p.CurrentStreak = 1
		p.TotalBrushesDays++
		counted = true
	}

	p.MaxStreak = max(p.MaxStreak, p.CurrentStreak)
	p.LastActiveDate = &day

	return counted
}

type sessionCounters struct {
	streak     *int
	maxStreak  *int
	total      *int
	percentage *float64
	lastActive **time.Time
}

func countersFor(p *model.UserProgress, session model.ActivityType) sessionCounters {
	if session == model.ActivityMorning {
		return sessionCounters{
			streak:     &p.StreakMorning,
			maxStreak:  &p.MaxStreakMorning,
			total:      &p.TotalBrushesMorning,
			percentage: &p.PercentageMorning,
			lastActive: &p.LastActiveMorning,
		}
	}
	return sessionCounters{
		streak:     &p.StreakEvening,
		maxStreak:  &p.MaxStreakEvening,
		total:      &p.TotalBrushesEvening,
		percentage: &p.PercentageEvening,
		lastActive: &p.LastActiveEvening,
	}
}

// RecordSessionActivity counts one brushing session at now. Brush counters,
// the session percentage and the last-active timestamp are updated on every
// call. When the session streak changed, the activity log entry to persist is
// returned; otherwise the result is nil.
func RecordSessionActivity(p *model.UserProgress, now time.Time) *model.UserActivity {
	session := ClassifySession(now)
	c := countersFor(p, session)

	updated := false
	if last := *c.lastActive; last != nil && *c.streak != 0 {
		delta := DaysBetween(last.In(now.Location()), now)
		switch {
		case delta == 1:
			*c.streak++
			updated = true
		case delta > 1:
			*c.streak = 1
			updated = true
		}
	} else {
		*c.streak = 1
		updated = true
	}

	at := now
	*c.lastActive = &at
	*c.total++
	p.TotalBrushes++

	if p.TotalBrushesDays > 0 {
		*c.percentage = float64(*c.total) / float64(p.TotalBrushesDays)
	}
	*c.maxStreak = max(*c.maxStreak, *c.streak)

	if !updated {
		return nil
	}

	return &model.UserActivity{
		UserID:       p.UserID,
		ActivityDate: Date(now),
		ActivityTime: now,
		ActivityType: session,
	}
}
