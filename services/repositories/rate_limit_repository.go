package repositories

import (
	"errors"
	"time"

	"github.com/brushy-app/brushy_api/model"
	"gorm.io/gorm"
)

// RateLimitRepository persists fixed-window rate limit counters
type RateLimitRepository struct {
	BaseRepository
}

func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// GetRateLimit returns nil, nil when no counter exists yet.
func (ds *RateLimitRepository) GetRateLimit(identifier, endpointType string) (*model.RateLimit, error) {
	var rateLimit model.RateLimit

	err := ds.db.Where("identifier = ? AND endpoint_type = ?", identifier, endpointType).First(&rateLimit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &rateLimit, nil
}

func (ds *RateLimitRepository) SaveRateLimit(rateLimit *model.RateLimit) error {
	if rateLimit.ID == "" {
		rateLimit.ID = newID()
	}

	now := time.Now()
	if rateLimit.CreatedAt.IsZero() {
		rateLimit.CreatedAt = now
	}
	rateLimit.UpdatedAt = now

	return ds.db.Save(rateLimit).Error
}

func (ds *RateLimitRepository) UpdateRateLimit(rateLimit *model.RateLimit) error {
	return ds.db.Model(rateLimit).Where("id = ?", rateLimit.ID).Updates(map[string]interface{}{
		"request_count": rateLimit.RequestCount,
		"window_start":  rateLimit.WindowStart,
		"blocked_until": rateLimit.BlockedUntil,
		"updated_at":    rateLimit.UpdatedAt,
	}).Error
}

func (ds *RateLimitRepository) DeleteRateLimit(identifier, endpointType string) error {
	return ds.db.Where("identifier = ? AND endpoint_type = ?", identifier, endpointType).
		Delete(&model.RateLimit{}).Error
}

func (ds *RateLimitRepository) CountBlocked(now time.Time) (int64, error) {
	var count int64
	err := ds.db.Model(&model.RateLimit{}).Where("blocked_until > ?", now).Count(&count).Error
	return count, err
}

// CleanupOldRecords removes counters older than maxAge that are not blocked.
func (ds *RateLimitRepository) CleanupOldRecords(maxAge time.Duration) error {
	now := time.Now()
	cutoff := now.Add(-maxAge)

	return ds.db.Where("updated_at < ? AND (blocked_until IS NULL OR blocked_until < ?)", cutoff, now).
		Delete(&model.RateLimit{}).Error
}
