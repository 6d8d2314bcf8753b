package repositories

import (
	"time"

	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/shared"
	"gorm.io/gorm"
)

// ActivityRepository is the append-only brushing activity log
type ActivityRepository struct {
	BaseRepository
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// AppendActivity inserts a new record. A record with the same user, date,
// time and type violates the unique index and is rejected.
func (ds *ActivityRepository) AppendActivity(activity *model.UserActivity) error {
	if activity.ID == "" {
		activity.ID = newID()
	}
	return ds.db.Create(activity).Error
}

func (ds *ActivityRepository) GetActivities(userID string) ([]model.UserActivity, error) {
	var activities []model.UserActivity
	err := ds.db.Where("user_id = ?", userID).
		Order("activity_time ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// GetActivitiesBetween returns records whose activity date lies in [from, to].
// A nil bound is open. Bounds are bound as calendar date strings so the
// comparison never goes through a session time zone.
func (ds *ActivityRepository) GetActivitiesBetween(userID string, from, to *time.Time) ([]model.UserActivity, error) {
	query := ds.db.Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("activity_date >= ?", from.Format(shared.DateLayout))
	}
	if to != nil {
		query = query.Where("activity_date < ?", to.AddDate(0, 0, 1).Format(shared.DateLayout))
	}

	var activities []model.UserActivity
	if err := query.Order("activity_time ASC").Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (ds *ActivityRepository) CountActivities(userID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.UserActivity{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (ds *ActivityRepository) DeleteActivities(userID string) error {
	return ds.db.Where("user_id = ?", userID).Delete(&model.UserActivity{}).Error
}
