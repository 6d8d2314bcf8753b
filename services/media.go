package services

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/shared"
	log "github.com/sirupsen/logrus"
)

const (
	MEDIA_SVC = "media_svc"

	maxThumbnailSize = 2 * 1024 * 1024
	thumbnailURLTTL  = 24 * time.Hour
	thumbnailsSubDir = "thumbnails"
	defaultMediaMime = "application/octet-stream"
)

var validImageExts = []string{".jpg", ".jpeg", ".png", ".webp"}

type MediaService struct {
	appcontext.DefaultService
	store ObjectStore
	now   func() time.Time
}

func NewMediaService(store ObjectStore) *MediaService {
	return &MediaService{store: store, now: time.Now}
}

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *appcontext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	if store, ok := svc.Service(MINIO_SVC).(*MinIOService); ok && store != nil {
		svc.store = store
	}
	return nil
}

// UploadThumbnail validates and stores a user's profile picture.
func (svc *MediaService) UploadThumbnail(ctx context.Context, userID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	if !isValidImageFile(file.Filename) {
		return nil, shared.NewBadRequestError(nil, "Invalid image file format. Supported: JPG, PNG, WEBP")
	}

	if file.Size > maxThumbnailSize {
		return nil, shared.NewBadRequestError(nil, "Thumbnail file too large. Maximum size: 2MB")
	}

	if svc.store == nil {
		return nil, shared.NewAppError(http.StatusServiceUnavailable, nil, "Media storage unavailable")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectName := fmt.Sprintf("%s/%s_%d%s", thumbnailsSubDir, userID, svc.now().UnixNano(), ext)

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = defaultMediaMime
	}

	src, err := file.Open()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to open uploaded file")
	}
	defer src.Close()

	if err := svc.store.UploadFile(ctx, objectName, src, file.Size, contentType); err != nil {
		return nil, shared.NewInternalError(err, "Failed to upload file to storage")
	}

	fileURL, err := svc.store.GetFileURL(ctx, objectName, thumbnailURLTTL)
	if err != nil {
		log.WithError(err).WithField("object", objectName).Warn("Failed to generate presigned URL")
	}

	log.WithFields(log.Fields{"user_id": userID, "object": objectName}).Info("Uploaded thumbnail")

	return &dto.MediaUploadResponse{
		ObjectName: objectName,
		URL:        fileURL,
		FileName:   file.Filename,
		FileType:   contentType,
		FileSize:   file.Size,
	}, nil
}

// ThumbnailURL returns a presigned URL, or "" when the object is unset or unavailable.
func (svc *MediaService) ThumbnailURL(ctx context.Context, objectName string) string {
	if objectName == "" || svc.store == nil {
		return ""
	}

	fileURL, err := svc.store.GetFileURL(ctx, objectName, thumbnailURLTTL)
	if err != nil {
		log.WithError(err).WithField("object", objectName).Warn("Failed to generate presigned URL")
		return ""
	}
	return fileURL
}

func (svc *MediaService) DeleteThumbnail(ctx context.Context, objectName string) {
	if objectName == "" || svc.store == nil {
		return
	}

	if err := svc.store.DeleteFile(ctx, objectName); err != nil {
		log.WithError(err).WithField("object", objectName).Warn("Failed to delete thumbnail")
	}
}

func isValidImageFile(filename string) bool {
	return slices.Contains(validImageExts, strings.ToLower(filepath.Ext(filename)))
}
