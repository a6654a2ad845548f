package util

import (
	"aerocrew_training_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope returned by every endpoint. Success mirrors
// the boolean flag the frontend switches on.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse wraps paginated collections.
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// EngineError maps the engine's sentinel errors onto HTTP statuses.
// Unknown errors are logged and reported as 500.
func EngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrTokenNotFound),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrAnswerNotFound),
		errors.Is(err, ErrRequestNotFound),
		errors.Is(err, ErrStaffNotFound),
		errors.Is(err, ErrUserNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTokenForbidden),
		errors.Is(err, ErrAttemptForbidden),
		errors.Is(err, ErrPermissionDenied):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrQuizNotPublished),
		errors.Is(err, ErrStaffInactive),
		errors.Is(err, ErrEmailRegistered):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenAlreadyUsed),
		errors.Is(err, ErrInvalidTokenState),
		errors.Is(err, ErrAttemptLimitExceeded),
		errors.Is(err, ErrAttemptAlreadySubmitted),
		errors.Is(err, ErrAttemptNotCompleted),
		errors.Is(err, ErrNoPendingRequests),
		errors.Is(err, ErrNoEligibleStaff),
		errors.Is(err, ErrInvalidRequestState):
		Error(c, http.StatusConflict, err.Error())
	default:
		LogInternalError(c, err)
	}
}
