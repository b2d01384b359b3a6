// Package web holds the HTTP helpers shared by the REST handlers.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RespondValidation writes a 400 response. Field errors from the validator are
// listed under validation_errors; any other error becomes a generic message.
func RespondValidation(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return
	}
	logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
// On failure it writes a 400 response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// PathParam returns a chi URL parameter, falling back to the request's path values.
func PathParam(r *http.Request, key string) string {
	if v := chi.URLParam(r, key); v != "" {
		return v
	}
	return r.PathValue(key)
}

// ParseID extracts and validates the ID from the request path. Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	pathValueID := PathParam(r, "id")
	id, err := uuid.Parse(pathValueID)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return uuid.UUID{}, false
	}
	return id, true
}

// GetUserID retrieves the user ID from the request context. Returns the user ID and a boolean indicating success.
func GetUserID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok || userID == "" {
		RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: Missing or invalid user ID")
		return uuid.Nil, false
	}
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid user ID: %s", userID))
		return uuid.Nil, false
	}
	return parsedUserID, true
}
