package handlers

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/brushy-app/brushy_api/dto"
)

type AuthServiceInterface interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.UserProfileResponse, error)
	Signin(ctx context.Context, req dto.SigninRequest) (*dto.SigninResponse, error)
	Authenticated(ctx context.Context, userID string) (*dto.AuthenticatedResponse, error)
	Signout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type ProgressServiceInterface interface {
	GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error)
	RecordOverallActivity(ctx context.Context, userID string) (*dto.StreakResponse, error)
	RecordSessionActivity(ctx context.Context, userID string) (*dto.SessionResponse, error)
	RecordBrush(ctx context.Context, userID string, addedTime *int) (*dto.SessionResponse, error)
	AddBrushTime(ctx context.Context, userID string, seconds int) (*dto.ProgressResponse, error)
	UpdateLevel(ctx context.Context, userID string, by int) (*dto.ProgressResponse, error)
	SetLevelXP(ctx context.Context, userID string, xp, maxXP int) (*dto.ProgressResponse, error)
	SetImage(ctx context.Context, userID string, imageID int) (*dto.ProgressResponse, error)
	SetCharacterName(ctx context.Context, userID, name string) (*dto.ProgressResponse, error)
	SetParentPin(ctx context.Context, userID, pin string) (*dto.ProgressResponse, error)
	CheckParentPin(ctx context.Context, userID, candidate string) (*dto.PinCheckResponse, error)
	GetActivitySummary(ctx context.Context, userID string, query dto.ActivityRangeQuery) (*dto.ActivitySummaryResponse, error)
}

type UserServiceInterface interface {
	GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	UpdateUserProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	UploadThumbnail(ctx context.Context, userID string, file *multipart.FileHeader) (*dto.ThumbnailResponse, error)
	DeleteAccount(ctx context.Context, userID string) error
	GetLeaderboard(ctx context.Context, limit int, currentUserID string) (*dto.LeaderboardResponse, error)
}
