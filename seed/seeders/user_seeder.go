package seeders

import (
	"errors"
	"log"
	"time"

	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/services/repositories"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "BrushyDemo123!"

type demoUser struct {
	FirstName     string
	LastName      string
	Email         string
	CharacterName string
	ImageID       int
	// Consistency is the share of days, in percent, on which the user brushes.
	Consistency int
}

var demoUsers = []demoUser{
	{FirstName: "Mia", LastName: "Nguyen", Email: "mia@brushy.dev", CharacterName: "Sparkle", ImageID: 2, Consistency: 95},
	{FirstName: "Leo", LastName: "Tran", Email: "leo@brushy.dev", CharacterName: "Captain Floss", ImageID: 4, Consistency: 80},
	{FirstName: "Ava", LastName: "Pham", Email: "ava@brushy.dev", CharacterName: "Minty", ImageID: 1, Consistency: 65},
	{FirstName: "Noah", LastName: "Le", Email: "noah@brushy.dev", CharacterName: "Bubbles", ImageID: 3, Consistency: 40},
}

// UserSeeder creates the demo accounts with empty progress
type UserSeeder struct {
	db *gorm.DB
}

func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

// SeedUsers creates every demo account that does not exist yet.
func (s *UserSeeder) SeedUsers() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, demo := range demoUsers {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			users := repositories.NewUserRepository(tx)

			if _, err := users.GetUserByEmail(demo.Email); err == nil {
				log.Printf("User %s already exists, skipping", demo.Email)
				return nil
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			now := time.Now()
			user := &model.User{
				FirstName: demo.FirstName,
				LastName:  demo.LastName,
				Email:     demo.Email,
				Password:  string(hashed),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := users.CreateUser(user); err != nil {
				return err
			}

			progress := model.NewUserProgress("", user.ID)
			progress.CharacterName = demo.CharacterName
			progress.IsCharNameSet = true
			progress.ImageID = demo.ImageID
			if err := repositories.NewProgressRepository(tx).CreateProgress(progress); err != nil {
				return err
			}

			log.Printf("Created user: %s", demo.Email)
			return nil
		})
		if err != nil {
			log.Printf("Error creating user %s: %v", demo.Email, err)
			return err
		}
	}

	return nil
}
