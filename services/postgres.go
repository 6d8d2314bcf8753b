package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	pgConnectAttempts = 10
	pgMaxRetryDelay   = 10 * time.Second
)

// PostgresService is the production database. Progress rows are locked with
// SELECT ... FOR UPDATE inside each accounting transaction.
type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	dsn          string
	maxOpenConns int
	maxIdleConns int
	connMaxLife  time.Duration
}

func (ds PostgresService) Id() string {
	return DATABASE_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.dsn = os.Getenv("DATABASE_URL")
	if ds.dsn == "" {
		ds.dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "brushy"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_SSLMODE", "disable"),
			getEnv("DB_TIMEZONE", "UTC"),
		)
	}

	ds.maxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	ds.maxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	ds.connMaxLife = 30 * time.Minute

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() error {
	if err := ds.connect(); err != nil {
		return err
	}

	if err := ds.db.AutoMigrate(migrationModels()...); err != nil {
		log.WithError(err).Error("Failed to migrate database")
		return err
	}

	log.Info("Database connected and migrated successfully")
	return nil
}

// connect opens the pool, retrying with a doubling delay while the server
// comes up.
func (ds *PostgresService) connect() error {
	delay := time.Second

	var err error
	for attempt := 1; ; attempt++ {
		if err = ds.open(); err == nil {
			return nil
		}

		fields := log.Fields{"attempt": attempt, "max_attempts": pgConnectAttempts}
		if attempt == pgConnectAttempts {
			log.WithError(err).WithFields(fields).Error("Giving up connecting to database")
			return err
		}

		log.WithError(err).WithFields(fields).Warnf("Database not reachable, retrying in %v", delay)
		time.Sleep(delay)
		delay = min(delay*2, pgMaxRetryDelay)
	}
}

func (ds *PostgresService) open() error {
	db, err := gorm.Open(postgres.Open(ds.dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(ds.maxOpenConns)
	sqlDB.SetMaxIdleConns(ds.maxIdleConns)
	sqlDB.SetConnMaxLifetime(ds.connMaxLife)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return err
	}

	ds.db = db
	return nil
}

func (ds *PostgresService) Shutdown() {
	if ds.db == nil {
		return
	}
	if sqlDB, err := ds.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) HandleError(err error) error {
	return handleDBError(err, "duplicate key value violates unique constraint")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
