package streak

import (
	"testing"
	"time"

	"github.com/brushy-app/brushy_api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgress() *model.UserProgress {
	return model.NewUserProgress("progress-1", "user-1")
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 8, 30, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestRecordOverallActivity_FirstActivity(t *testing.T) {
	p := newProgress()

	counted := RecordOverallActivity(p, day(2024, time.March, 1))

	assert.True(t, counted)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 1, p.MaxStreak)
	assert.Equal(t, 1, p.TotalBrushesDays)
	require.NotNil(t, p.LastActiveDate)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *p.LastActiveDate)
}

func TestRecordOverallActivity_ConsecutiveDays(t *testing.T) {
	p := newProgress()
	start := day(2024, time.February, 27)

	for i := 0; i < 5; i++ {
		prevMax := p.MaxStreak
		prevStreak := p.CurrentStreak

		RecordOverallActivity(p, start.AddDate(0, 0, i))

		assert.Equal(t, prevStreak+1, p.CurrentStreak)
		assert.GreaterOrEqual(t, p.MaxStreak, prevMax)
		assert.GreaterOrEqual(t, p.MaxStreak, p.CurrentStreak)
	}

	// crosses the leap day
	assert.Equal(t, 5, p.CurrentStreak)
	assert.Equal(t, 5, p.MaxStreak)
	assert.Equal(t, 5, p.TotalBrushesDays)
}

func TestRecordOverallActivity_GapResetsStreak(t *testing.T) {
	p := newProgress()
	day0 := day(2024, time.March, 1)

	RecordOverallActivity(p, day0)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 1, p.MaxStreak)
	assert.Equal(t, 1, p.TotalBrushesDays)

	counted := RecordOverallActivity(p, day0.AddDate(0, 0, 3))

	assert.True(t, counted)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 1, p.MaxStreak)
	assert.Equal(t, 2, p.TotalBrushesDays)
}

func TestRecordOverallActivity_GapKeepsMaxStreak(t *testing.T) {
	p := newProgress()
	start := day(2024, time.March, 1)
	for i := 0; i < 4; i++ {
		RecordOverallActivity(p, start.AddDate(0, 0, i))
	}

	RecordOverallActivity(p, start.AddDate(0, 0, 10))

	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 4, p.MaxStreak)
	assert.Equal(t, 5, p.TotalBrushesDays)
}

func TestRecordOverallActivity_SameDayIsIdempotent(t *testing.T) {
	p := newProgress()
	RecordOverallActivity(p, at(2024, time.March, 1, 7, 0))
	RecordOverallActivity(p, at(2024, time.March, 2, 7, 0))

	counted := RecordOverallActivity(p, at(2024, time.March, 2, 21, 0))

	assert.False(t, counted)
	assert.Equal(t, 2, p.CurrentStreak)
	assert.Equal(t, 2, p.MaxStreak)
	assert.Equal(t, 2, p.TotalBrushesDays)
	assert.Equal(t, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), *p.LastActiveDate)
}

func TestRecordOverallActivity_ZeroStreakRestarts(t *testing.T) {
	p := newProgress()
	last := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	p.LastActiveDate = &last
	p.TotalBrushesDays = 7
	p.MaxStreak = 3

	RecordOverallActivity(p, day(2024, time.March, 1))

	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 3, p.MaxStreak)
	assert.Equal(t, 8, p.TotalBrushesDays)
}

func TestRecordOverallActivity_ClockWentBackwards(t *testing.T) {
	p := newProgress()
	RecordOverallActivity(p, day(2024, time.March, 5))

	counted := RecordOverallActivity(p, day(2024, time.March, 3))

	assert.False(t, counted)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 1, p.TotalBrushesDays)
	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), *p.LastActiveDate)
}

func TestRecordOverallActivity_UsesCalendarDaysInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	p := newProgress()

	// 23:30 and 00:10 local are one calendar day apart even though only
	// forty minutes passed.
	RecordOverallActivity(p, time.Date(2024, time.March, 1, 23, 30, 0, 0, loc))
	RecordOverallActivity(p, time.Date(2024, time.March, 2, 0, 10, 0, 0, loc))

	assert.Equal(t, 2, p.CurrentStreak)
}

func TestClassifySession(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want model.ActivityType
	}{
		{"midnight", at(2024, time.March, 1, 0, 0), model.ActivityMorning},
		{"just before noon", time.Date(2024, time.March, 1, 11, 59, 59, 0, time.UTC), model.ActivityMorning},
		{"noon", at(2024, time.March, 1, 12, 0), model.ActivityEvening},
		{"late evening", at(2024, time.March, 1, 23, 59), model.ActivityEvening},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySession(tt.now))
		})
	}
}

func TestRecordSessionActivity_FirstMorning(t *testing.T) {
	p := newProgress()
	now := at(2024, time.March, 1, 7, 45)
	RecordOverallActivity(p, now)

	record := RecordSessionActivity(p, now)

	require.NotNil(t, record)
	assert.Equal(t, model.ActivityMorning, record.ActivityType)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), record.ActivityDate)
	assert.Equal(t, now, record.ActivityTime)

	assert.Equal(t, 1, p.StreakMorning)
	assert.Equal(t, 1, p.MaxStreakMorning)
	assert.Equal(t, 1, p.TotalBrushesMorning)
	assert.Equal(t, 1, p.TotalBrushes)
	assert.Equal(t, 1.0, p.PercentageMorning)
	assert.Equal(t, 0, p.StreakEvening)
	require.NotNil(t, p.LastActiveMorning)
	assert.Equal(t, now, *p.LastActiveMorning)
	assert.Nil(t, p.LastActiveEvening)
}

func TestRecordSessionActivity_SameDayRepeatCountsButDoesNotLog(t *testing.T) {
	p := newProgress()
	first := at(2024, time.March, 1, 7, 0)
	RecordOverallActivity(p, first)
	require.NotNil(t, RecordSessionActivity(p, first))

	second := at(2024, time.March, 1, 9, 30)
	record := RecordSessionActivity(p, second)

	assert.Nil(t, record)
	assert.Equal(t, 1, p.StreakMorning)
	assert.Equal(t, 2, p.TotalBrushesMorning)
	assert.Equal(t, 2, p.TotalBrushes)
	assert.Equal(t, second, *p.LastActiveMorning)
	assert.Equal(t, 2.0, p.PercentageMorning)
}

func TestRecordSessionActivity_ConsecutiveAndGap(t *testing.T) {
	p := newProgress()
	for i, d := range []int{1, 2, 3} {
		now := at(2024, time.March, d, 20, 0)
		RecordOverallActivity(p, now)
		require.NotNil(t, RecordSessionActivity(p, now))
		assert.Equal(t, i+1, p.StreakEvening)
	}

	now := at(2024, time.March, 6, 20, 0)
	RecordOverallActivity(p, now)
	record := RecordSessionActivity(p, now)

	require.NotNil(t, record)
	assert.Equal(t, model.ActivityEvening, record.ActivityType)
	assert.Equal(t, 1, p.StreakEvening)
	assert.Equal(t, 3, p.MaxStreakEvening)
	assert.Equal(t, 4, p.TotalBrushesEvening)
	assert.Equal(t, 4, p.TotalBrushesDays)
}

func TestRecordSessionActivity_PercentagesAreRecomputed(t *testing.T) {
	p := newProgress()
	sessions := []time.Time{
		at(2024, time.March, 1, 7, 0),
		at(2024, time.March, 1, 19, 0),
		at(2024, time.March, 2, 7, 0),
		at(2024, time.March, 3, 19, 0),
		at(2024, time.March, 4, 8, 0),
		at(2024, time.March, 4, 21, 0),
	}
	for _, now := range sessions {
		RecordOverallActivity(p, now)
		RecordSessionActivity(p, now)

		require.Greater(t, p.TotalBrushesDays, 0)
		if ClassifySession(now) == model.ActivityMorning {
			assert.Equal(t, float64(p.TotalBrushesMorning)/float64(p.TotalBrushesDays), p.PercentageMorning)
		} else {
			assert.Equal(t, float64(p.TotalBrushesEvening)/float64(p.TotalBrushesDays), p.PercentageEvening)
		}
		assert.GreaterOrEqual(t, p.MaxStreakMorning, p.StreakMorning)
		assert.GreaterOrEqual(t, p.MaxStreakEvening, p.StreakEvening)
	}

	assert.Equal(t, 4, p.TotalBrushesDays)
	assert.Equal(t, 3, p.TotalBrushesMorning)
	assert.Equal(t, 3, p.TotalBrushesEvening)
	assert.Equal(t, 6, p.TotalBrushes)
	assert.Equal(t, 0.75, p.PercentageMorning)
	assert.Equal(t, 0.75, p.PercentageEvening)
}

func TestRecordSessionActivity_NoActiveDaysSkipsPercentage(t *testing.T) {
	p := newProgress()
	p.PercentageEvening = 0.5

	record := RecordSessionActivity(p, at(2024, time.March, 1, 18, 0))

	require.NotNil(t, record)
	assert.Equal(t, 0, p.TotalBrushesDays)
	assert.Equal(t, 0.5, p.PercentageEvening)
	assert.Equal(t, 1, p.TotalBrushesEvening)
}

func TestRecordSessionActivity_LastActiveInOtherZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	p := newProgress()

	// 02:00 UTC on the 2nd is still the evening of the 1st in UTC-5.
	last := time.Date(2024, time.March, 2, 2, 0, 0, 0, time.UTC)
	p.LastActiveEvening = &last
	p.StreakEvening = 4
	p.MaxStreakEvening = 4

	record := RecordSessionActivity(p, time.Date(2024, time.March, 2, 19, 0, 0, 0, loc))

	require.NotNil(t, record)
	assert.Equal(t, 5, p.StreakEvening)
	assert.Equal(t, 5, p.MaxStreakEvening)
}
