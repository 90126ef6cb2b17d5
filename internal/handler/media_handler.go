package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/response"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

// MediaHandler exposes question image uploads.
type MediaHandler struct {
	media *service.MediaService
	log   zerolog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(media *service.MediaService, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{media: media, log: log}
}

// Upload handles POST /api/v1/media/upload (admin).
func (h *MediaHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	url, err := h.media.SaveImage(fh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			failInternal(c, h.log, err)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"url": url})
}
