package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
)

// Media errors.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// MediaService stores question images on local disk under random names and
// serves them back as /uploads/ URLs.
type MediaService struct {
	uploadDir string
	maxBytes  int64
	log       zerolog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config, log zerolog.Logger) *MediaService {
	return &MediaService{
		uploadDir: cfg.UploadDir,
		maxBytes:  cfg.MaxUploadBytes,
		log:       log.With().Str("component", "media_service").Logger(),
	}
}

// SaveImage validates and persists an uploaded image, returning its public
// URL path.
func (s *MediaService) SaveImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "", ErrUnsupportedFileType
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.uploadDir, name)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}

	s.log.Info().Str("file", name).Int64("size", fh.Size).Msg("image stored")
	return "/uploads/" + name, nil
}

// Delete removes a stored image by its public URL path. Unknown paths are
// ignored so question cleanup stays idempotent.
func (s *MediaService) Delete(urlPath string) error {
	name := filepath.Base(strings.TrimPrefix(urlPath, "/uploads/"))
	if name == "" || name == "." || name == ".." {
		return nil
	}
	err := os.Remove(filepath.Join(s.uploadDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
