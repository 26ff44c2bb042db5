package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/blockpress/internal/service"
	"github.com/blockpress/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// envelope is the response shape of every admin action.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Error: message})
}

// respondErrorData writes a failure envelope that still carries data, such as
// the pending state of a selection that could not be resolved.
func respondErrorData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: false, Data: data, Error: message})
}

// errorStatuses maps service sentinels to HTTP status codes.
var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrPageNotFound, http.StatusNotFound},
	{service.ErrBlockNotFound, http.StatusNotFound},
	{service.ErrHeaderNotFound, http.StatusNotFound},
	{service.ErrFooterNotFound, http.StatusNotFound},
	{service.ErrMediaNotFound, http.StatusNotFound},
	{service.ErrGalleryNotFound, http.StatusNotFound},
	{service.ErrGalleryImageNotFound, http.StatusNotFound},

	{service.ErrPageSlugTaken, http.StatusConflict},
	{service.ErrGallerySlugTaken, http.StatusConflict},
	{service.ErrMediaInUse, http.StatusConflict},
	{service.ErrUserExists, http.StatusConflict},

	{service.ErrMediaTooLarge, http.StatusRequestEntityTooLarge},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},

	{service.ErrPageSlugInvalid, http.StatusBadRequest},
	{service.ErrPageTitleMissing, http.StatusBadRequest},
	{service.ErrBlockTypeInvalid, http.StatusBadRequest},
	{service.ErrBlockContentMissing, http.StatusBadRequest},
	{service.ErrNavigationNameMissing, http.StatusBadRequest},
	{service.ErrNavigationLinkInvalid, http.StatusBadRequest},
	{service.ErrSiteNameMissing, http.StatusBadRequest},
	{service.ErrTitleTemplateInvalid, http.StatusBadRequest},
	{service.ErrColorInvalid, http.StatusBadRequest},
	{service.ErrMediaMissing, http.StatusBadRequest},
	{service.ErrMediaTypeNotAllowed, http.StatusBadRequest},
	{service.ErrGalleryNameMissing, http.StatusBadRequest},
	{service.ErrGallerySlugInvalid, http.StatusBadRequest},
	{service.ErrGalleryStatusInvalid, http.StatusBadRequest},
	{service.ErrPasswordTooShort, http.StatusBadRequest},
}

// statusFor returns the status for a service error and whether it is a known sentinel.
func statusFor(err error) (int, bool) {
	for _, candidate := range errorStatuses {
		if errors.Is(err, candidate.err) {
			return candidate.status, true
		}
	}
	return http.StatusInternalServerError, false
}

// fail logs err and writes the failure envelope. Unknown errors are reported
// to the client with a generic message.
func (a *API) fail(c *gin.Context, op string, err error) {
	a.failWithData(c, op, err, nil)
}

// failWithData is fail with a data payload kept in the envelope.
func (a *API) failWithData(c *gin.Context, op string, err error, data interface{}) {
	status, known := statusFor(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err),
	}
	message := err.Error()
	if known {
		a.logger.Info("action rejected", fields...)
	} else {
		a.logger.Error("action failed", fields...)
		message = fmt.Sprintf("%s failed", op)
	}
	respondErrorData(c, status, message, data)
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, validation.Message(err, message))
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// idParam parses the :id route parameter and answers 400 when it is malformed.
func idParam(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func parsePositiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseOptionalBool(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		v := true
		return &v
	case "false", "0", "no":
		v := false
		return &v
	default:
		return nil
	}
}
