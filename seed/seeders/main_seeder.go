package seeders

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db       *gorm.DB
	location *time.Location
	days     int
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB, location *time.Location, days int) *MainSeeder {
	return &MainSeeder{db: db, location: location, days: days}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Accounts with empty progress
	if err := s.SeedUsersOnly(); err != nil {
		log.Printf("User seeding failed: %v", err)
		return err
	}

	// 2. Brushing history (depends on users)
	if err := s.SeedHistoryOnly(); err != nil {
		log.Printf("History seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedUsersOnly seeds only the demo accounts
func (s *MainSeeder) SeedUsersOnly() error {
	return NewUserSeeder(s.db).SeedUsers()
}

// SeedHistoryOnly replays brushing history for existing demo accounts
func (s *MainSeeder) SeedHistoryOnly() error {
	return NewHistorySeeder(s.db, s.location, s.days).SeedHistory()
}
