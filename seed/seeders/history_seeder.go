package seeders

import (
	"errors"
	"hash/fnv"
	"log"
	"math/rand/v2"
	"time"

	"github.com/brushy-app/brushy_api/services/repositories"
	"github.com/brushy-app/brushy_api/streak"
	"gorm.io/gorm"
)

// HistorySeeder replays past brushing sessions through the streak engine so
// the stored counters match what the API would have produced.
type HistorySeeder struct {
	db       *gorm.DB
	location *time.Location
	days     int
}

func NewHistorySeeder(db *gorm.DB, location *time.Location, days int) *HistorySeeder {
	return &HistorySeeder{db: db, location: location, days: days}
}

// SeedHistory fills the last s.days days for every demo user whose progress
// is still untouched.
func (s *HistorySeeder) SeedHistory() error {
	for _, demo := range demoUsers {
		if err := s.seedUser(demo); err != nil {
			log.Printf("Error seeding history for %s: %v", demo.Email, err)
			return err
		}
	}
	return nil
}

func (s *HistorySeeder) seedUser(demo demoUser) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := repositories.NewUserRepository(tx).GetUserByEmail(demo.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("User %s not found, run the users seeder first", demo.Email)
			return nil
		}
		if err != nil {
			return err
		}

		progressRepo := repositories.NewProgressRepository(tx)
		activityRepo := repositories.NewActivityRepository(tx)

		progress, err := progressRepo.LockProgress(user.ID)
		if err != nil {
			return err
		}
		if progress.TotalBrushes > 0 {
			log.Printf("History for %s already exists, skipping", demo.Email)
			return nil
		}

		rng := rand.New(rand.NewPCG(seedFor(demo.Email), uint64(s.days)))
		today := time.Now().In(s.location)
		start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.location).AddDate(0, 0, -s.days)

		sessions := 0
		for offset := 0; offset < s.days; offset++ {
			day := start.AddDate(0, 0, offset)
			if rng.IntN(100) >= demo.Consistency {
				continue
			}

			for _, at := range s.sessionsFor(rng, day, demo.Consistency) {
				if err := streak.AddBrushTime(progress, 90+rng.IntN(60)); err != nil {
					return err
				}
				streak.RecordOverallActivity(progress, at)
				if activity := streak.RecordSessionActivity(progress, at); activity != nil {
					if err := activityRepo.AppendActivity(activity); err != nil {
						return err
					}
				}
				sessions++
			}
		}

		if sessions == 0 {
			return nil
		}
		if err := progressRepo.SaveProgress(progress); err != nil {
			return err
		}

		log.Printf("Seeded %d sessions for %s (current streak %d, max streak %d)",
			sessions, demo.Email, progress.CurrentStreak, progress.MaxStreak)
		return nil
	})
}

// sessionsFor returns the brushing times of one active day in order.
func (s *HistorySeeder) sessionsFor(rng *rand.Rand, day time.Time, consistency int) []time.Time {
	morning := day.Add(7*time.Hour + time.Duration(rng.IntN(90))*time.Minute)
	evening := day.Add(19*time.Hour + time.Duration(rng.IntN(150))*time.Minute)

	switch roll := rng.IntN(100); {
	case roll < consistency:
		return []time.Time{morning, evening}
	case roll%2 == 0:
		return []time.Time{morning}
	default:
		return []time.Time{evening}
	}
}

func seedFor(email string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(email))
	return h.Sum64()
}

