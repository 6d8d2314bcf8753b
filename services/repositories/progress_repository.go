package repositories

import (
	"github.com/brushy-app/brushy_api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository handles user progress database operations
type ProgressRepository struct {
	BaseRepository
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *ProgressRepository) CreateProgress(progress *model.UserProgress) error {
	if progress.ID == "" {
		progress.ID = newID()
	}
	return ds.db.Create(progress).Error
}

func (ds *ProgressRepository) GetProgress(userID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	if err := ds.db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// LockProgress loads the progress row with SELECT ... FOR UPDATE. It must be
// called inside a transaction; the lock is held until commit or rollback.
func (ds *ProgressRepository) LockProgress(userID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := ds.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// SaveProgress writes every column and bumps the row version.
func (ds *ProgressRepository) SaveProgress(progress *model.UserProgress) error {
	progress.Version++
	return ds.db.Save(progress).Error
}

func (ds *ProgressRepository) GetLeaderboard(limit int) ([]model.UserProgress, error) {
	var progresses []model.UserProgress
	err := ds.db.Order("max_streak DESC").
		Order("current_streak DESC").
		Order("total_brushes DESC").
		Order("user_id ASC").
		Limit(limit).
		Find(&progresses).Error
	if err != nil {
		return nil, err
	}
	return progresses, nil
}

// GetRank returns the 1-based leaderboard position of the given progress.
func (ds *ProgressRepository) GetRank(progress *model.UserProgress) (int, error) {
	var ahead int64
	err := ds.db.Model(&model.UserProgress{}).
		Where("max_streak > ?", progress.MaxStreak).
		Or("max_streak = ? AND current_streak > ?", progress.MaxStreak, progress.CurrentStreak).
		Or("max_streak = ? AND current_streak = ? AND total_brushes > ?", progress.MaxStreak, progress.CurrentStreak, progress.TotalBrushes).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

func (ds *ProgressRepository) DeleteProgress(userID string) error {
	return ds.db.Where("user_id = ?", userID).Delete(&model.UserProgress{}).Error
}
