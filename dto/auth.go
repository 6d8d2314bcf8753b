package dto

import (
	"time"

	"github.com/brushy-app/brushy_api/model"
)

// ==================== AUTHENTICATION REQUEST DTOs ====================

type SignupRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100" example:"Mia"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100" example:"Nguyen"`
	Email     string `json:"email" validate:"required,email,max=255" example:"parent@example.com"`
	Password  string `json:"password" validate:"required,strong_password" example:"SecurePass123!"`
}

func (r SignupRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email" example:"parent@example.com"`
	Password string `json:"password" validate:"required" example:"SecurePass123!"`
}

func (r SigninRequest) Validate() error {
	return GetValidator().Struct(r)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

type SigninResponse struct {
	User  UserProfileResponse `json:"user"`
	Token TokenPair           `json:"token"`
}

type AuthenticatedResponse struct {
	User     UserProfileResponse `json:"user"`
	Progress ProgressResponse    `json:"progress"`
}

// ==================== VALIDATION ====================

type ValidationError struct {
	Field   string `json:"field" example:"email"`
	Message string `json:"message" example:"Invalid email format"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code" example:"400"`
	Message string            `json:"message" example:"Validation failed"`
	Errors  []ValidationError `json:"errors"`
}

// ==================== USER ====================

type UserProfileResponse struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	JoinedAt     time.Time  `json:"joined_at"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100" example:"Mia"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100" example:"Nguyen"`
}

func (r UpdateProfileRequest) Validate() error {
	return GetValidator().Struct(r)
}

func NewUserProfileResponse(user *model.User, thumbnailURL string) UserProfileResponse {
	return UserProfileResponse{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		ThumbnailURL: thumbnailURL,
		LastLogin:    user.LastLogin,
		JoinedAt:     user.CreatedAt,
	}
}
