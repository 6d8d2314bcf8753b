package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/services/repositories"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/brushy-app/brushy_api/streak"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const PROGRESS_SVC = "progress_svc"

// ProgressService runs the brushing accounting rules against stored progress.
// Every write locks the user's progress row for the whole transaction.
type ProgressService struct {
	appcontext.DefaultService

	dbSvc    Database
	metrics  Metrics
	mailer   Mailer
	location *time.Location
	now      func() time.Time
}

func NewProgressService(db Database, location *time.Location, now func() time.Time) *ProgressService {
	return &ProgressService{
		dbSvc:    db,
		metrics:  noopMetrics{},
		location: location,
		now:      now,
	}
}

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *appcontext.Context) error {
	location, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	svc.location = location
	svc.now = time.Now

	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	svc.dbSvc = svc.Service(DATABASE_SVC).(Database)

	svc.metrics = noopMetrics{}
	if m, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok && m != nil {
		svc.metrics = m
	}
	if mailer, ok := svc.Service(EMAIL_SVC).(*EmailService); ok && mailer != nil {
		svc.mailer = mailer
	}

	return nil
}

// clock returns the current instant in the application time zone.
func (svc *ProgressService) clock() time.Time {
	return svc.now().In(svc.location)
}

// update locks the progress row of userID, applies fn and saves the result in
// one transaction. Any error from fn rolls back every write made through tx.
func (svc *ProgressService) update(ctx context.Context, userID string, fn func(tx *gorm.DB, p *model.UserProgress) error) (*model.UserProgress, error) {
	var progress *model.UserProgress

	err := svc.dbSvc.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewProgressRepository(tx)

		p, err := repo.LockProgress(userID)
		if err != nil {
			return err
		}

		if err := fn(tx, p); err != nil {
			return err
		}

		if err := repo.SaveProgress(p); err != nil {
			return err
		}

		progress = p
		return nil
	})
	if err != nil {
		return nil, svc.handleError(err)
	}

	return progress, nil
}

func (svc *ProgressService) handleError(err error) error {
	var validationErr *streak.ValidationError
	if errors.As(err, &validationErr) {
		return shared.NewBadRequestError(err, validationErr.Message).WithData([]dto.ValidationError{{
			Field:   validationErr.Field,
			Message: validationErr.Message,
		}})
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(err, "Progress not found")
	}

	return svc.dbSvc.HandleError(err)
}

func (svc *ProgressService) GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	p, err := repositories.NewProgressRepository(svc.dbSvc.Db().WithContext(ctx)).GetProgress(userID)
	if err != nil {
		return nil, svc.handleError(err)
	}

	resp := dto.NewProgressResponse(p)
	return &resp, nil
}

// RecordOverallActivity counts today as an active brushing day.
func (svc *ProgressService) RecordOverallActivity(ctx context.Context, userID string) (*dto.StreakResponse, error) {
	today := svc.clock()

	var counted bool
	p, err := svc.update(ctx, userID, func(_ *gorm.DB, p *model.UserProgress) error {
		counted = streak.RecordOverallActivity(p, today)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if counted {
		svc.metrics.RecordDayCounted()
	}

	return &dto.StreakResponse{
		DayCounted: counted,
		Progress:   dto.NewProgressResponse(p),
	}, nil
}

// RecordSessionActivity counts a morning or evening session at the current time.
func (svc *ProgressService) RecordSessionActivity(ctx context.Context, userID string) (*dto.SessionResponse, error) {
	return svc.recordSession(ctx, userID, false, nil)
}

// RecordBrush counts the day, the session and the optional brushing time in
// one transaction.
func (svc *ProgressService) RecordBrush(ctx context.Context, userID string, addedTime *int) (*dto.SessionResponse, error) {
	return svc.recordSession(ctx, userID, true, addedTime)
}

func (svc *ProgressService) recordSession(ctx context.Context, userID string, withDay bool, addedTime *int) (*dto.SessionResponse, error) {
	now := svc.clock()

	var (
		counted  bool
		activity *model.UserActivity
	)

	p, err := svc.update(ctx, userID, func(tx *gorm.DB, p *model.UserProgress) error {
		if addedTime != nil {
			if err := streak.AddBrushTime(p, *addedTime); err != nil {
				return err
			}
		}

		if withDay {
			counted = streak.RecordOverallActivity(p, now)
		}

		activity = streak.RecordSessionActivity(p, now)
		if activity == nil {
			return nil
		}
		return repositories.NewActivityRepository(tx).AppendActivity(activity)
	})
	if err != nil {
		return nil, err
	}

	session := streak.ClassifySession(now)
	if counted {
		svc.metrics.RecordDayCounted()
	}
	svc.metrics.RecordSession(string(session), activity != nil)

	log.WithFields(log.Fields{
		"user_id":        userID,
		"session":        session,
		"streak_updated": activity != nil,
		"day_counted":    counted,
	}).Debug("Recorded brushing session")

	return &dto.SessionResponse{
		Session:       session,
		StreakUpdated: activity != nil,
		DayCounted:    counted,
		Activity:      dto.NewActivityResponse(activity),
		Progress:      dto.NewProgressResponse(p),
	}, nil
}

func (svc *ProgressService) AddBrushTime(ctx context.Context, userID string, seconds int) (*dto.ProgressResponse, error) {
	return svc.apply(ctx, userID, func(p *model.UserProgress) error {
		return streak.AddBrushTime(p, seconds)
	})
}

func (svc *ProgressService) UpdateLevel(ctx context.Context, userID string, by int) (*dto.ProgressResponse, error) {
	return svc.apply(ctx, userID, func(p *model.UserProgress) error {
		return streak.UpdateLevel(p, by)
	})
}

func (svc *ProgressService) SetLevelXP(ctx context.Context, userID string, xp, maxXP int) (*dto.ProgressResponse, error) {
	return svc.apply(ctx, userID, func(p *model.UserProgress) error {
		return streak.SetLevelXP(p, xp, maxXP)
	})
}

func (svc *ProgressService) SetImage(ctx context.Context, userID string, imageID int) (*dto.ProgressResponse, error) {
	return svc.apply(ctx, userID, func(p *model.UserProgress) error {
		return streak.SetImage(p, imageID)
	})
}

func (svc *ProgressService) SetCharacterName(ctx context.Context, userID, name string) (*dto.ProgressResponse, error) {
	return svc.apply(ctx, userID, func(p *model.UserProgress) error {
		return streak.SetCharacterName(p, name)
	})
}

func (svc *ProgressService) apply(ctx context.Context, userID string, fn func(p *model.UserProgress) error) (*dto.ProgressResponse, error) {
	p, err := svc.update(ctx, userID, func(_ *gorm.DB, p *model.UserProgress) error {
		return fn(p)
	})
	if err != nil {
		return nil, err
	}

	resp := dto.NewProgressResponse(p)
	return &resp, nil
}

// SetParentPin replaces the parent PIN and notifies the account owner.
func (svc *ProgressService) SetParentPin(ctx context.Context, userID, pin string) (*dto.ProgressResponse, error) {
	var user *model.User

	p, err := svc.update(ctx, userID, func(tx *gorm.DB, p *model.UserProgress) error {
		if err := streak.SetParentPin(p, pin); err != nil {
			return err
		}

		var err error
		user, err = repositories.NewUserRepository(tx).GetUser(userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if svc.mailer != nil {
		go func(email, firstName string) {
			if err := svc.mailer.SendPinChangedEmail(email, firstName); err != nil {
				log.WithError(err).WithField("user_id", userID).Warn("Failed to send pin changed email")
			}
		}(user.Email, user.FirstName)
	}

	resp := dto.NewProgressResponse(p)
	return &resp, nil
}

func (svc *ProgressService) CheckParentPin(ctx context.Context, userID, candidate string) (*dto.PinCheckResponse, error) {
	p, err := repositories.NewProgressRepository(svc.dbSvc.Db().WithContext(ctx)).GetProgress(userID)
	if err != nil {
		return nil, svc.handleError(err)
	}

	valid := streak.CheckParentPin(p, candidate)
	svc.metrics.RecordPinCheck(valid)

	return &dto.PinCheckResponse{Valid: valid}, nil
}

// GetActivitySummary returns one entry per active day within the optional
// inclusive date range.
func (svc *ProgressService) GetActivitySummary(ctx context.Context, userID string, query dto.ActivityRangeQuery) (*dto.ActivitySummaryResponse, error) {
	from, err := parseDate(query.From)
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid from date")
	}
	to, err := parseDate(query.To)
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid to date")
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, shared.NewBadRequestError(nil, "from must not be after to")
	}

	records, err := repositories.NewActivityRepository(svc.dbSvc.Db().WithContext(ctx)).GetActivitiesBetween(userID, from, to)
	if err != nil {
		return nil, svc.handleError(err)
	}

	resp := dto.NewActivitySummaryResponse(streak.SummarizeActivities(records))
	return &resp, nil
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(shared.DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
