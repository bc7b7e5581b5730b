// file: internal/services/file_service.go
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"badgehub/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// fileService implements FileService on Cloudinary. Badge images are the
// only managed asset class.
type fileService struct {
	cloudinary *cloudinary.Cloudinary
	config     *config.CloudinaryConfig
	logger     *zap.Logger
}

const uploadTimeout = 2 * time.Minute

// NewFileService creates a new file service backed by Cloudinary
func NewFileService(cld *cloudinary.Cloudinary, cfg *config.CloudinaryConfig, logger *zap.Logger) FileService {
	return &fileService{
		cloudinary: cld,
		config:     cfg,
		logger:     logger,
	}
}

// UploadBadgeImage uploads a badge image, retrying transient failures
// with exponential backoff.
func (s *fileService) UploadBadgeImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error) {
	if err := s.validateImageUpload(req); err != nil {
		return nil, NewValidationError("image validation failed", err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	uploadParams := uploader.UploadParams{
		Folder:         s.uploadFolder(),
		ResourceType:   "image",
		Transformation: "w_512,h_512,c_limit,f_auto,q_auto",
		UseFilename:    boolPtr(false),
		UniqueFilename: boolPtr(true),
		Tags:           []string{"badgehub", "badge_image"},
	}

	var result *uploader.UploadResult
	operation := func() error {
		var err error
		result, err = s.cloudinary.Upload.Upload(uploadCtx, req.File, uploadParams)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.config.MaxRetries)),
		uploadCtx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		s.logger.Error("Failed to upload badge image",
			zap.Error(err),
			zap.Int64("uploader_id", req.UploaderID),
			zap.String("filename", req.Filename),
		)
		return nil, NewInternalError("failed to upload badge image")
	}

	uploadResult := &FileUploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Size:     int64(result.Bytes),
		Format:   result.Format,
		Width:    result.Width,
		Height:   result.Height,
	}

	s.logger.Info("Badge image uploaded",
		zap.Int64("uploader_id", req.UploaderID),
		zap.String("public_id", uploadResult.PublicID),
		zap.Int64("size", uploadResult.Size),
	)
	return uploadResult, nil
}

// DeleteBadgeImage removes a badge image from Cloudinary.
func (s *fileService) DeleteBadgeImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return NewValidationError("public ID is required", nil)
	}

	deleteCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := s.cloudinary.Upload.Destroy(deleteCtx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		s.logger.Error("Failed to delete badge image",
			zap.Error(err),
			zap.String("public_id", publicID),
		)
		return NewInternalError("failed to delete badge image")
	}
	if result.Result != "ok" {
		s.logger.Warn("Badge image deletion result was not OK",
			zap.String("public_id", publicID),
			zap.String("result", result.Result),
		)
		return NewInternalError("badge image deletion was not successful")
	}

	return nil
}

// ===============================
// VALIDATION
// ===============================

func (s *fileService) validateImageUpload(req *FileUploadRequest) error {
	if req.File == nil {
		return fmt.Errorf("file is required")
	}
	if s.config.MaxFileSize > 0 && req.Size > s.config.MaxFileSize {
		return fmt.Errorf("image too large (max %d bytes)", s.config.MaxFileSize)
	}
	if req.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Filename)), ".")
	if ext == "" {
		return fmt.Errorf("file must have an extension")
	}
	if len(s.config.AllowedFormats) > 0 && !s.isAllowedFormat(ext) {
		return fmt.Errorf("unsupported image format: %s", ext)
	}
	return nil
}

func (s *fileService) isAllowedFormat(ext string) bool {
	for _, format := range s.config.AllowedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

func (s *fileService) uploadFolder() string {
	folder := s.config.UploadFolder
	if folder == "" {
		folder = "badges"
	}
	now := time.Now()
	return fmt.Sprintf("badgehub/%s/%d/%02d", folder, now.Year(), now.Month())
}

func boolPtr(b bool) *bool {
	return &b
}
