package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/services/repositories"
	"github.com/brushy-app/brushy_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	USER_SVC = "user_svc"

	DefaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
	leaderboardCacheTTL     = 60 * time.Second
)

type UserService struct {
	appcontext.DefaultService

	dbSvc Database
	media *MediaService
	cache Cache
}

func NewUserService(db Database, media *MediaService, cache Cache) *UserService {
	return &UserService{dbSvc: db, media: media, cache: cache}
}

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *appcontext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	svc.dbSvc = svc.Service(DATABASE_SVC).(Database)
	svc.media = svc.Service(MEDIA_SVC).(*MediaService)

	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok && redisSvc != nil {
		svc.cache = redisSvc
	}

	return nil
}

func (svc *UserService) users(ctx context.Context) *repositories.UserRepository {
	return repositories.NewUserRepository(svc.dbSvc.Db().WithContext(ctx))
}

func (svc *UserService) GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := svc.users(ctx).GetUser(userID)
	if err != nil {
		return nil, svc.dbSvc.HandleError(err)
	}

	resp := dto.NewUserProfileResponse(user, svc.media.ThumbnailURL(ctx, user.Thumbnail))
	return &resp, nil
}

func (svc *UserService) UpdateUserProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, shared.NewBadRequestError(nil, "First and last name are required")
	}

	if err := svc.users(ctx).UpdateProfile(userID, firstName, lastName); err != nil {
		return nil, svc.dbSvc.HandleError(err)
	}

	return svc.GetUserProfile(ctx, userID)
}

// UploadThumbnail stores a new profile picture and removes the previous one.
func (svc *UserService) UploadThumbnail(ctx context.Context, userID string, file *multipart.FileHeader) (*dto.ThumbnailResponse, error) {
	user, err := svc.users(ctx).GetUser(userID)
	if err != nil {
		return nil, svc.dbSvc.HandleError(err)
	}

	upload, err := svc.media.UploadThumbnail(ctx, userID, file)
	if err != nil {
		return nil, err
	}

	if err := svc.users(ctx).UpdateThumbnail(userID, upload.ObjectName); err != nil {
		svc.media.DeleteThumbnail(ctx, upload.ObjectName)
		return nil, svc.dbSvc.HandleError(err)
	}

	svc.media.DeleteThumbnail(ctx, user.Thumbnail)

	user.Thumbnail = upload.ObjectName
	return &dto.ThumbnailResponse{
		Upload:  *upload,
		Profile: dto.NewUserProfileResponse(user, upload.URL),
	}, nil
}

// DeleteAccount removes the user together with their progress and activity log.
func (svc *UserService) DeleteAccount(ctx context.Context, userID string) error {
	var thumbnail string

	err := svc.dbSvc.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := repositories.NewUserRepository(tx).GetUser(userID)
		if err != nil {
			return err
		}
		thumbnail = user.Thumbnail

		if err := repositories.NewActivityRepository(tx).DeleteActivities(userID); err != nil {
			return err
		}
		if err := repositories.NewProgressRepository(tx).DeleteProgress(userID); err != nil {
			return err
		}
		return repositories.NewUserRepository(tx).DeleteUser(userID)
	})
	if err != nil {
		return svc.dbSvc.HandleError(err)
	}

	svc.media.DeleteThumbnail(ctx, thumbnail)
	svc.invalidateLeaderboard(ctx)

	log.WithField("user_id", userID).Info("User account deleted")
	return nil
}

// ==================== LEADERBOARD ====================

func leaderboardKey(limit int) string {
	return fmt.Sprintf("%s:%d", leaderboardCacheKey, limit)
}

// GetLeaderboard ranks users by max streak, then current streak, then total
// brushes. The top list is cached; the caller's own entry is always fresh.
func (svc *UserService) GetLeaderboard(ctx context.Context, limit int, currentUserID string) (*dto.LeaderboardResponse, error) {
	if limit < 1 || limit > maxLeaderboardLimit {
		limit = DefaultLeaderboardLimit
	}

	topUsers, err := svc.topUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.LeaderboardResponse{TopUsers: topUsers}
	if currentUserID == "" {
		return resp, nil
	}

	progressRepo := repositories.NewProgressRepository(svc.dbSvc.Db().WithContext(ctx))
	progress, err := progressRepo.GetProgress(currentUserID)
	if err != nil {
		log.WithError(err).WithField("user_id", currentUserID).Warn("Failed to load leaderboard entry for caller")
		return resp, nil
	}

	rank, err := progressRepo.GetRank(progress)
	if err != nil {
		return nil, svc.dbSvc.HandleError(err)
	}

	entry := leaderboardEntry(rank, progress)
	resp.CurrentUser = &entry
	return resp, nil
}

func (svc *UserService) topUsers(ctx context.Context, limit int) ([]dto.LeaderboardUserResponse, error) {
	key := leaderboardKey(limit)

	if svc.cache != nil {
		var cached []dto.LeaderboardUserResponse
		found, err := svc.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.WithError(err).Warn("Leaderboard cache read failed")
		} else if found {
			return cached, nil
		}
	}

	progresses, err := repositories.NewProgressRepository(svc.dbSvc.Db().WithContext(ctx)).GetLeaderboard(limit)
	if err != nil {
		return nil, svc.dbSvc.HandleError(err)
	}

	topUsers := make([]dto.LeaderboardUserResponse, 0, len(progresses))
	for i := range progresses {
		topUsers = append(topUsers, leaderboardEntry(i+1, &progresses[i]))
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, key, topUsers, leaderboardCacheTTL); err != nil {
			log.WithError(err).Warn("Leaderboard cache write failed")
		}
	}

	return topUsers, nil
}

func (svc *UserService) invalidateLeaderboard(ctx context.Context) {
	if svc.cache == nil {
		return
	}

	keys := make([]string, 0, maxLeaderboardLimit)
	for limit := 1; limit <= maxLeaderboardLimit; limit++ {
		keys = append(keys, leaderboardKey(limit))
	}
	if err := svc.cache.Delete(ctx, keys...); err != nil {
		log.WithError(err).Warn("Leaderboard cache invalidation failed")
	}
}

func leaderboardEntry(rank int, p *model.UserProgress) dto.LeaderboardUserResponse {
	return dto.LeaderboardUserResponse{
		Rank:          rank,
		UserID:        p.UserID,
		CharacterName: p.CharacterName,
		ImageID:       p.ImageID,
		CurrentLevel:  p.CurrentLevel,
		CurrentStreak: p.CurrentStreak,
		MaxStreak:     p.MaxStreak,
		TotalBrushes:  p.TotalBrushes,
	}
}
