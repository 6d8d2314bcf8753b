package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	docs "github.com/brushy-app/brushy_api/docs"
	"github.com/brushy-app/brushy_api/services/handlers"
	"github.com/brushy-app/brushy_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"
)

type HttpService struct {
	context.DefaultService

	authSvc      *AuthService
	progressSvc  *ProgressService
	userSvc      *UserService
	rateLimitSvc *RateLimitService
	monitorSvc   *MonitoringService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	if rl, ok := svc.Service(RATE_LIMIT_SVC).(*RateLimitService); ok {
		svc.rateLimitSvc = rl
	}
	if mon, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitorSvc = mon
	}

	svc.app = svc.NewApp()

	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// NewApp builds the Fiber application with every route registered.
func (svc *HttpService) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "brushy_api",
		JSONEncoder:  shared.JSONAPI.Marshal,
		JSONDecoder:  shared.JSONAPI.Unmarshal,
		ErrorHandler: svc.HandleError,
		BodyLimit:    4 * 1024 * 1024,
	})

	docs.SwaggerInfo.BasePath = ""
	app.Use(recover.New())

	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if svc.monitorSvc != nil {
		app.Use(MonitoringMiddleware(svc.monitorSvc))
	}

	//Validation endpoints
	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	if svc.rateLimitSvc != nil {
		v1.Use(svc.rateLimitSvc.IPRateLimit(EndpointAPIGeneral))
	}
	v1.Get("/ping", svc.ping)

	authHandler := handlers.NewAuthHandler(svc.authSvc)
	progressHandler := handlers.NewProgressHandler(svc.progressSvc)
	userHandler := handlers.NewUserHandler(svc.userSvc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.userSvc)

	required := svc.authSvc.RequiredAuth()

	auth := v1.Group("/auth")
	auth.Post("/signup", svc.ipLimit(EndpointSignup), authHandler.Signup)
	auth.Post("/signin", svc.ipLimit(EndpointSignin), authHandler.Signin)
	auth.Get("/authenticated", required, authHandler.Authenticated)
	auth.Post("/signout", required, authHandler.Signout)

	progress := v1.Group("/progress", required)
	progress.Get("/", progressHandler.GetProgress)
	progress.Post("/brush", progressHandler.RecordBrush)
	progress.Post("/streak", progressHandler.RecordOverallActivity)
	progress.Post("/session", progressHandler.RecordSessionActivity)
	progress.Post("/brush-time", progressHandler.AddBrushTime)
	progress.Post("/level", progressHandler.UpdateLevel)
	progress.Put("/xp", progressHandler.SetLevelXP)
	progress.Put("/image", progressHandler.SetImage)
	progress.Put("/character", progressHandler.SetCharacterName)
	progress.Post("/pin", progressHandler.SetParentPin)
	progress.Post("/pin/check", svc.userLimit(EndpointPinCheck), progressHandler.CheckParentPin)
	progress.Get("/activities", progressHandler.GetActivitySummary)

	user := v1.Group("/user", required)
	user.Get("/profile", userHandler.GetUserProfile)
	user.Put("/profile", userHandler.UpdateUserProfile)
	user.Post("/thumbnail", userHandler.UploadThumbnail)
	user.Delete("/", userHandler.DeleteAccount)

	v1.Get("/leaderboard", svc.authSvc.OptionalAuth(), leaderboardHandler.GetLeaderboard)

	app.Use(func(c *fiber.Ctx) error {
		return shared.NewNotFoundError(errors.New("page not found"), "Not Found")
	})

	return app
}

func (svc *HttpService) ipLimit(endpointType string) fiber.Handler {
	if svc.rateLimitSvc == nil {
		return passThrough
	}
	return svc.rateLimitSvc.IPRateLimit(endpointType)
}

func (svc *HttpService) userLimit(endpointType string) fiber.Handler {
	if svc.rateLimitSvc == nil {
		return passThrough
	}
	return svc.rateLimitSvc.UserBasedRateLimit(endpointType)
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

// HandleError renders errors returned by handlers and middleware.
func (svc *HttpService) HandleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			log.WithFields(log.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"error":  err,
			}).Error("Request failed")
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"error":  err,
	}).Error("Unhandled error")

	return shared.ResponseInternalError(c)
}

// errorStatus returns the status an error will be rendered with, or 0 when
// the error carries none.
func errorStatus(err error) int {
	if appErr, ok := shared.GetAppError(err); ok {
		return appErr.StatusCode
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return 0
}
