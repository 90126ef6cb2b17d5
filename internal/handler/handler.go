package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/middleware"
	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/response"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
	"github.com/Rahmadjon0038/avto-test-backend/internal/validator"
)

// paramID parses a positive integer path parameter, failing the request
// with INVALID_ID otherwise.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// bindJSON binds and validates the body, answering VALIDATION_ERROR with
// per-field messages on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if fields := validator.Bind(c, dst); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return false
	}
	return true
}

// bindAnswers binds an answers payload. Type errors (string keys, nested
// objects) surface as MALFORMED_ANSWERS with the expected shape in the
// message; missing required fields stay ordinary validation errors.
func bindAnswers(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
	} else {
		response.Fail(c, http.StatusBadRequest, response.ErrMalformedAnswers)
	}
	return false
}

func failInternal(c *gin.Context, log zerolog.Logger, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// currentUser loads the authenticated user's full record, needed wherever
// the subscription gate applies.
func currentUser(c *gin.Context, auth *service.AuthService, log zerolog.Logger) (*model.User, bool) {
	claims := middleware.GetClaims(c)
	user, err := auth.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		} else {
			failInternal(c, log, err)
		}
		return nil, false
	}
	return user, true
}
