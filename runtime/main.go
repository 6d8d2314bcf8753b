package main

import (
	"os"

	"github.com/brushy-app/brushy_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file found, using system environment variables")
	}

	var database context.Service = &services.SqliteService{}
	if os.Getenv("DB_DRIVER") == "postgres" {
		database = &services.PostgresService{}
	}

	svcs := []context.Service{
		&services.MonitoringService{},
		database,
	}

	// Cache and object storage are optional; without them the leaderboard is
	// uncached, tokens cannot be revoked and thumbnails are disabled.
	if os.Getenv("REDIS_ADDR") != "" {
		svcs = append(svcs, &services.RedisService{})
	}
	if os.Getenv("MINIO_ENDPOINT") != "" {
		svcs = append(svcs, &services.MinIOService{})
	}

	svcs = append(svcs,
		&services.MediaService{},
		&services.EmailService{},
		&services.JWTService{},
		&services.RateLimitService{},
		&services.AuthService{},
		&services.ProgressService{},
		&services.UserService{},

		&services.HttpService{},
	)

	ctx, err := context.NewCtx(svcs...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure services")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service stopped")
		return
	}
}
