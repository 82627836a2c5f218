package handlers

import (
	"net/http"

	"github.com/geocoder89/storeratings/internal/apperr"
	"github.com/geocoder89/storeratings/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if v, ok := ctx.Get(string(middlewares.CtxRequestID)); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusForbidden, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondAppError is the single place error kinds become status codes.
// Internal causes are logged by the services and never echoed.
func RespondAppError(ctx *gin.Context, err error) {
	e := apperr.As(err)

	var details interface{}
	if len(e.Fields) > 0 {
		details = gin.H{"fields": e.Fields}
	}

	code := e.Code
	if code == "" {
		code = defaultCode(e.Kind)
	}

	switch e.Kind {
	case apperr.KindValidation:
		RespondError(ctx, http.StatusBadRequest, code, e.Message, details)
	case apperr.KindAuthentication:
		RespondUnAuthorized(ctx, code, e.Message)
	case apperr.KindAuthorization:
		RespondForbidden(ctx, code, e.Message)
	case apperr.KindNotFound:
		RespondError(ctx, http.StatusNotFound, code, e.Message, nil)
	case apperr.KindConflict:
		RespondConflict(ctx, code, e.Message)
	default:
		RespondInternal(ctx, "Internal server error")
	}
}

func defaultCode(k apperr.Kind) string {
	switch k {
	case apperr.KindValidation:
		return "invalid_request"
	case apperr.KindAuthentication:
		return "unauthorized"
	case apperr.KindAuthorization:
		return "forbidden"
	case apperr.KindNotFound:
		return "not_found"
	case apperr.KindConflict:
		return "conflict"
	}
	return "internal_error"
}
