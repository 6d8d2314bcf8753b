package services

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/services/repositories"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const (
	RATE_LIMIT_SVC = "rate_limit_svc"

	EndpointSignin     = "signin"
	EndpointSignup     = "signup"
	EndpointPinCheck   = "pin_check"
	EndpointAPIGeneral = "api_general"

	rateLimitRecordMaxAge = 7 * 24 * time.Hour
)

type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	dbSvc   Database
	repo    *repositories.RateLimitRepository
	metrics Metrics
	now     func() time.Time

	closed chan struct{}
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	EndpointType string        `json:"endpoint_type"`
	MaxRequests  int           `json:"max_requests"`
	WindowSize   time.Duration `json:"window_size"`
	BlockTime    time.Duration `json:"block_time"`
	Message      string        `json:"message"`
	IsActive     bool          `json:"is_active"`
}

func defaultRateLimitConfigs() map[string]*RateLimitConfig {
	return map[string]*RateLimitConfig{
		EndpointSignin: {
			EndpointType: EndpointSignin,
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			BlockTime:    30 * time.Minute,
			Message:      "Too many sign in attempts. Please try again later.",
			IsActive:     true,
		},
		EndpointSignup: {
			EndpointType: EndpointSignup,
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			BlockTime:    60 * time.Minute,
			Message:      "Too many sign up attempts. Please try again later.",
			IsActive:     true,
		},
		EndpointPinCheck: {
			EndpointType: EndpointPinCheck,
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			BlockTime:    15 * time.Minute,
			Message:      "Too many PIN attempts. Please wait before trying again.",
			IsActive:     true,
		},
		EndpointAPIGeneral: {
			EndpointType: EndpointAPIGeneral,
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Message:      "Too many requests. Please slow down.",
			IsActive:     true,
		},
	}
}

// NewRateLimitService returns a service backed by db, usable without the container.
func NewRateLimitService(db Database) *RateLimitService {
	return &RateLimitService{
		configs: defaultRateLimitConfigs(),
		dbSvc:   db,
		repo:    repositories.NewRateLimitRepository(db.Db()),
		metrics: noopMetrics{},
		now:     time.Now,
	}
}

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = defaultRateLimitConfigs()
	svc.now = time.Now

	if raw := getEnv("RATE_LIMIT_ENABLED", "true"); raw == "false" {
		for _, config := range svc.configs {
			config.IsActive = false
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.dbSvc = svc.Service(DATABASE_SVC).(Database)
	svc.repo = repositories.NewRateLimitRepository(svc.dbSvc.Db())
	svc.metrics = noopMetrics{}
	if m, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok && m != nil {
		svc.metrics = m
	}
	svc.closed = make(chan struct{}, 1)

	go svc.startCleanupJob()

	return nil
}

func (svc *RateLimitService) Shutdown() {
	if svc.closed != nil {
		svc.closed <- struct{}{}
	}
}

// ==================== CORE RATE LIMITING LOGIC ====================

func (svc *RateLimitService) IsAllowed(identifier, endpointType string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists || !config.IsActive {
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: -1,
		}, nil
	}

	now := svc.now()
	windowStart := now.Add(-config.WindowSize)

	rateLimit, err := svc.repo.GetRateLimit(identifier, endpointType)
	if err != nil {
		return false, nil, svc.dbSvc.HandleError(err)
	}

	if rateLimit != nil && rateLimit.BlockedUntil != nil && now.Before(*rateLimit.BlockedUntil) {
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    rateLimit.BlockedUntil,
			BlockedUntil: rateLimit.BlockedUntil,
		}, nil
	}

	// New counter, expired window or lapsed block starts a fresh window.
	if rateLimit == nil || rateLimit.WindowStart.Before(windowStart) || rateLimit.BlockedUntil != nil {
		if rateLimit == nil {
			rateLimit = &model.RateLimit{
				Identifier:   identifier,
				EndpointType: endpointType,
			}
		}
		rateLimit.RequestCount = 1
		rateLimit.WindowStart = now
		rateLimit.BlockedUntil = nil

		if err := svc.repo.SaveRateLimit(rateLimit); err != nil {
			return false, nil, svc.dbSvc.HandleError(err)
		}

		resetTime := now.Add(config.WindowSize)
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: config.MaxRequests - 1,
			ResetTime: &resetTime,
		}, nil
	}

	if rateLimit.RequestCount >= config.MaxRequests {
		blockedUntil := now.Add(config.BlockTime)
		rateLimit.BlockedUntil = &blockedUntil
		rateLimit.UpdatedAt = now

		if err := svc.repo.UpdateRateLimit(rateLimit); err != nil {
			return false, nil, svc.dbSvc.HandleError(err)
		}

		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	rateLimit.RequestCount++
	rateLimit.UpdatedAt = now

	if err := svc.repo.UpdateRateLimit(rateLimit); err != nil {
		return false, nil, svc.dbSvc.HandleError(err)
	}

	resetTime := rateLimit.WindowStart.Add(config.WindowSize)
	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - rateLimit.RequestCount,
		ResetTime: &resetTime,
	}, nil
}

func (svc *RateLimitService) ResetRateLimit(identifier, endpointType string) error {
	return svc.dbSvc.HandleError(svc.repo.DeleteRateLimit(identifier, endpointType))
}

// ==================== MIDDLEWARE FUNCTIONS ====================

// IPRateLimit applies rate limiting by client IP address
func (svc *RateLimitService) IPRateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.limit(c, getClientIP(c), endpointType)
	}
}

// UserBasedRateLimit applies rate limiting based on authenticated user
func (svc *RateLimitService) UserBasedRateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier, _ := c.Locals(shared.UserID).(string)
		if identifier == "" {
			identifier = getClientIP(c)
		}
		return svc.limit(c, identifier, endpointType)
	}
}

func (svc *RateLimitService) limit(c *fiber.Ctx, identifier, endpointType string) error {
	allowed, info, err := svc.IsAllowed(identifier, endpointType)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"endpoint_type": endpointType,
			"identifier":    identifier,
		}).Error("Rate limit check failed")
		// Fail open when the counter store is unavailable.
		return c.Next()
	}

	svc.addRateLimitHeaders(c, info)

	if !allowed {
		return svc.handleRateLimitExceeded(c, endpointType, info)
	}

	return c.Next()
}

// ==================== HELPER FUNCTIONS ====================

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}
	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
	if retryAfter := info.RetryAfter(svc.now()); retryAfter > 0 {
		c.Set("Retry-After", strconv.Itoa(retryAfter))
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, endpointType string, info *dto.RateLimitInfo) error {
	message := "Too many requests. Please try again later."

	svc.mutex.RLock()
	if config, ok := svc.configs[endpointType]; ok && config.Message != "" {
		message = config.Message
	}
	svc.mutex.RUnlock()

	resp := dto.RateLimitExceededResponse{
		Error:      "Rate limit exceeded",
		RetryAfter: info.RetryAfter(svc.now()),
	}
	if info != nil && info.BlockedUntil != nil {
		resp.BlockedUntil = info.BlockedUntil.Unix()
	}

	svc.metrics.RecordRateLimited(endpointType)

	return shared.ResponseJSON(c, http.StatusTooManyRequests, message, resp)
}

func getClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if ip != "" {
			return ip
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	remote := c.Context().RemoteAddr().String()
	ip, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}

	return ip
}

// ==================== BACKGROUND JOBS ====================

func (svc *RateLimitService) CleanupOldRecords() error {
	return svc.dbSvc.HandleError(svc.repo.CleanupOldRecords(rateLimitRecordMaxAge))
}

func (svc *RateLimitService) startCleanupJob() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := svc.CleanupOldRecords(); err != nil {
				log.WithError(err).Error("Rate limit cleanup failed")
			} else {
				log.Debug("Rate limit cleanup completed")
			}
		case <-svc.closed:
			return
		}
	}
}
