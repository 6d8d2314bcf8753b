package services

import (
	"context"
	"errors"
	"strings"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/services/repositories"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const AUTH_SVC = "auth_svc"

// PasswordHashCost is the bcrypt cost used for account passwords.
var PasswordHashCost = bcrypt.DefaultCost

var errInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	appcontext.DefaultService

	dbSvc   Database
	jwtSvc  *JWTService
	cache   Cache
	media   *MediaService
	mailer  Mailer
	metrics Metrics
}

func NewAuthService(db Database, jwtSvc *JWTService, cache Cache) *AuthService {
	return &AuthService{
		dbSvc:   db,
		jwtSvc:  jwtSvc,
		cache:   cache,
		metrics: noopMetrics{},
	}
}

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appcontext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.dbSvc = svc.Service(DATABASE_SVC).(Database)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)

	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok && redisSvc != nil {
		svc.cache = redisSvc
	}
	if mediaSvc, ok := svc.Service(MEDIA_SVC).(*MediaService); ok && mediaSvc != nil {
		svc.media = mediaSvc
	}
	if mailer, ok := svc.Service(EMAIL_SVC).(*EmailService); ok && mailer != nil {
		svc.mailer = mailer
	}

	svc.metrics = noopMetrics{}
	if m, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok && m != nil {
		svc.metrics = m
	}

	return nil
}

// normalizeEmail trims the address and lower-cases its domain part.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// Signup creates the account and its initial progress in one transaction.
func (svc *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.UserProfileResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordHashCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	user := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     normalizeEmail(req.Email),
		Password:  string(hash),
	}

	err = svc.dbSvc.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := repositories.NewUserRepository(tx)

		available, err := userRepo.IsEmailAvailable(user.Email)
		if err != nil {
			return err
		}
		if !available {
			return gorm.ErrDuplicatedKey
		}

		if err := userRepo.CreateUser(user); err != nil {
			return err
		}

		return repositories.NewProgressRepository(tx).CreateProgress(model.NewUserProgress("", user.ID))
	})
	if err != nil {
		mapped := svc.dbSvc.HandleError(err)
		if shared.IsStatus(mapped, fiber.StatusConflict) {
			return nil, shared.NewConflictError(err, "A user with that email already exists").WithData([]dto.ValidationError{{
				Field:   "email",
				Message: "A user with that email already exists",
			}})
		}
		return nil, mapped
	}

	svc.metrics.RecordSignup()
	log.WithField("user_id", user.ID).Info("User signed up")

	if svc.mailer != nil {
		go func(email, firstName string) {
			if err := svc.mailer.SendWelcomeEmail(email, firstName); err != nil {
				log.WithError(err).WithField("user_id", user.ID).Warn("Failed to send welcome email")
			}
		}(user.Email, user.FirstName)
	}

	resp := svc.profileResponse(ctx, user)
	return &resp, nil
}

// Signin verifies the credentials and issues an access token.
func (svc *AuthService) Signin(ctx context.Context, req dto.SigninRequest) (*dto.SigninResponse, error) {
	userRepo := repositories.NewUserRepository(svc.dbSvc.Db().WithContext(ctx))

	user, err := userRepo.GetUserByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(errInvalidCredentials, "Invalid email or password")
		}
		return nil, svc.dbSvc.HandleError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(errInvalidCredentials, "Invalid email or password")
	}

	token, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate token")
	}

	if err := userRepo.UpdateLastLogin(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	} else {
		now := time.Now()
		user.LastLogin = &now
	}

	return &dto.SigninResponse{
		User:  svc.profileResponse(ctx, user),
		Token: *token,
	}, nil
}

// Authenticated returns the caller's profile and progress.
func (svc *AuthService) Authenticated(ctx context.Context, userID string) (*dto.AuthenticatedResponse, error) {
	db := svc.dbSvc.Db().WithContext(ctx)

	user, err := repositories.NewUserRepository(db).GetUser(userID)
	if err != nil {
		return nil, svc.dbSvc.HandleError(err)
	}

	progress, err := repositories.NewProgressRepository(db).GetProgress(userID)
	if err != nil {
		return nil, svc.dbSvc.HandleError(err)
	}

	return &dto.AuthenticatedResponse{
		User:     svc.profileResponse(ctx, user),
		Progress: dto.NewProgressResponse(progress),
	}, nil
}

// Signout revokes the token until it would have expired anyway.
func (svc *AuthService) Signout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if svc.cache == nil {
		log.WithField("token_id", tokenID).Warn("No cache configured, token stays valid until it expires")
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := svc.cache.Set(ctx, tokenBlacklistPrefix+tokenID, "1", ttl); err != nil {
		return shared.NewInternalError(err, "Failed to sign out")
	}
	return nil
}

func (svc *AuthService) isRevoked(ctx context.Context, tokenID string) bool {
	if svc.cache == nil {
		return false
	}

	revoked, err := svc.cache.Exists(ctx, tokenBlacklistPrefix+tokenID)
	if err != nil {
		log.WithError(err).Warn("Token blacklist lookup failed")
		return false
	}
	return revoked
}

// authenticate resolves the request's bearer token to an existing user.
func (svc *AuthService) authenticate(c *fiber.Ctx) (*CustomClaims, error) {
	token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return nil, err
	}

	claims, err := svc.jwtSvc.VerifyJWTToken(token)
	if err != nil {
		return nil, err
	}

	if svc.isRevoked(c.UserContext(), claims.ID) {
		return nil, ErrTokenInvalid
	}

	if _, err := repositories.NewUserRepository(svc.dbSvc.Db().WithContext(c.UserContext())).GetUser(claims.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("User not found")
		}
		return nil, svc.dbSvc.HandleError(err)
	}

	return claims, nil
}

func setAuthLocals(c *fiber.Ctx, claims *CustomClaims) {
	c.Locals(shared.UserID, claims.UserID)
	c.Locals(shared.TokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Locals(shared.TokenExpiresAt, claims.ExpiresAt.Time)
	}
}

// RequiredAuth rejects the request with 401 unless it carries a valid token.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := svc.authenticate(c)
		if err != nil {
			if appErr, ok := shared.GetAppError(err); ok {
				return appErr
			}
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		setAuthLocals(c, claims)
		return c.Next()
	}
}

// OptionalAuth sets the caller identity when a valid token is present.
func (svc *AuthService) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}

		if claims, err := svc.authenticate(c); err == nil {
			setAuthLocals(c, claims)
		}
		return c.Next()
	}
}

func (svc *AuthService) profileResponse(ctx context.Context, user *model.User) dto.UserProfileResponse {
	thumbnailURL := ""
	if svc.media != nil {
		thumbnailURL = svc.media.ThumbnailURL(ctx, user.Thumbnail)
	}
	return dto.NewUserProfileResponse(user, thumbnailURL)
}
