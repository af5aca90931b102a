package handlers

import (
	"errors"
	"net/http"

	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"
	"taskBoard/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, r *http.Request, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode),
	}
	if businessErr.Err != nil {
		fields = append(fields, zap.NamedError("cause", businessErr.Err))
	}
	logger.Warn("HTTP: business error", fields...)

	payload := []Payload{
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
	}
	if len(businessErr.Details) > 0 {
		payload = append(payload, toPayload("details", businessErr.Details))
	}
	responseWithJSON(w, statusCode, payload...)
	return true
}

// handleServiceError answers with the business error if there is one and
// with a bare 500 otherwise.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, r, err) {
		return
	}
	logger.Error("HTTP: service error", err,
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("operation", operation))
	responseWithError(w, http.StatusInternalServerError, msgInternal)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation, service.CodeIdentityRejected:
		return http.StatusBadRequest
	case service.CodeTransitionForbidden, service.CodeDeleteForbidden:
		return http.StatusForbidden
	case service.CodeVersionConflict, service.CodeEmailTaken:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
