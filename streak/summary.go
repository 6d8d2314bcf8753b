package streak

import (
	"iter"
	"slices"
	"time"

	"github.com/brushy-app/brushy_api/model"
)

// DaySummary is one calendar day of brushing history.
type DaySummary struct {
	ActivityDate time.Time          `json:"activity_date"`
	ActivityType model.ActivityType `json:"activity_type"`
}

// SummarizeActivities collapses activity records into one entry per day.
// A day with both a morning and an evening record is reported as "both".
// The result is sorted by date, oldest first.
func SummarizeActivities(records []model.UserActivity) []DaySummary {
	type seen struct{ morning, evening bool }

	days := make(map[time.Time]*seen)
	for _, r := range records {
		day := Date(r.ActivityDate)
		s, ok := days[day]
		if !ok {
			s = &seen{}
			days[day] = s
		}
		switch r.ActivityType {
		case model.ActivityMorning:
			s.morning = true
		case model.ActivityEvening:
			s.evening = true
		case model.ActivityBoth:
			s.morning, s.evening = true, true
		}
	}

	out := make([]DaySummary, 0, len(days))
	for day, s := range days {
		var t model.ActivityType
		switch {
		case s.morning && s.evening:
			t = model.ActivityBoth
		case s.morning:
			t = model.ActivityMorning
		case s.evening:
			t = model.ActivityEvening
		default:
			continue
		}
		out = append(out, DaySummary{ActivityDate: day, ActivityType: t})
	}

	slices.SortFunc(out, func(a, b DaySummary) int {
		return a.ActivityDate.Compare(b.ActivityDate)
	})
	return out
}

// SummaryOf is the iterator form of SummarizeActivities.
func SummaryOf(records []model.UserActivity) iter.Seq[DaySummary] {
	return slices.Values(SummarizeActivities(records))
}
