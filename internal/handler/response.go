package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"edushare-server/internal/model"
	"edushare-server/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// writeError is the single place domain errors become HTTP responses. Every
// sentinel maps to a stable machine code; anything unclassified is a 500
// with no internal detail leaked.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrEmailExists) {
		status = http.StatusConflict
		body.Code = "EMAIL_EXISTS"
		body.Message = "Email is already registered"
	} else if errors.Is(err, model.ErrRoleNotAllowed) {
		status = http.StatusForbidden
		body.Code = "INVALID_ROLE"
		body.Message = "Requested role cannot be self-assigned"
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = "INVALID_CREDENTIALS"
		body.Message = "Invalid credentials"
	} else if errors.Is(err, model.ErrAccountDeleted) {
		status = http.StatusUnauthorized
		body.Code = "ACCOUNT_DELETED"
		body.Message = "Account has been deactivated"
	} else if errors.Is(err, model.ErrRefreshTokenNotFound) {
		status = http.StatusUnauthorized
		body.Code = "INVALID_REFRESH_TOKEN"
		body.Message = "Refresh token is not recognized"
	} else if errors.Is(err, model.ErrTokenRevoked) {
		status = http.StatusUnauthorized
		body.Code = "TOKEN_REVOKED"
		body.Message = "Refresh token has been revoked"
	} else if errors.Is(err, model.ErrTokenExpired) {
		status = http.StatusUnauthorized
		body.Code = "TOKEN_EXPIRED"
		body.Message = "Token has expired"
	} else if errors.Is(err, model.ErrInvalidToken) {
		status = http.StatusUnauthorized
		body.Code = "INVALID_TOKEN"
		body.Message = "Invalid or expired token"
	} else if errors.Is(err, model.ErrInvalidPassword) {
		status = http.StatusUnauthorized
		body.Code = "INVALID_PASSWORD"
		body.Message = "Current password is incorrect"
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrVideoNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Video not found"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
