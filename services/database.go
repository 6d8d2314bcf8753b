package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DATABASE_SVC is registered by exactly one of PostgresService or SqliteService.
const DATABASE_SVC = "database_svc"

type Database interface {
	Db() *gorm.DB
	HandleError(err error) error
}

func migrationModels() []interface{} {
	return []interface{}{
		&model.User{},
		&model.UserProgress{},
		&model.UserActivity{},
		&model.RateLimit{},
	}
}

// handleDBError maps a gorm error to an AppError. uniqueViolation is the
// driver-specific substring reported on a unique constraint failure.
func handleDBError(err error, uniqueViolation string) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.GetAppError(err); ok {
		return err
	}

	var statusCode int
	var errorType string
	var message string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
		message = "Resource not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
		message = "Resource already exists"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
		message = "Referenced resource does not exist"
	case strings.Contains(err.Error(), uniqueViolation):
		statusCode = http.StatusConflict
		errorType = "UNIQUE_CONSTRAINT"
		message = "Resource already exists"
	case strings.Contains(err.Error(), "connection refused"):
		statusCode = http.StatusServiceUnavailable
		errorType = "DATABASE_CONNECTION_ERROR"
		message = "Database unavailable"
	default:
		statusCode = http.StatusInternalServerError
		errorType = "INTERNAL_ERROR"
		message = "Internal Server Error"
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return shared.NewAppError(statusCode, err, message)
}
