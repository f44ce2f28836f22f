package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
)

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// JSON writes an enveloped JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *log.Logger) {
	write(w, status, Envelope{Success: status < 400, Data: data}, logger)
}

// Success writes a 200 OK response.
func Success(w http.ResponseWriter, data any, logger *log.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data any, logger *log.Logger) {
	JSON(w, http.StatusCreated, data, logger)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, message string, logger *log.Logger) {
	write(w, status, Envelope{Success: false, Error: message}, logger)
}

// ErrorWithData writes an error response that still carries a payload, such as the counts of a refused approval.
func ErrorWithData(w http.ResponseWriter, status int, message string, data any, logger *log.Logger) {
	write(w, status, Envelope{Success: false, Error: message, Data: data}, logger)
}

func write(w http.ResponseWriter, status int, envelope Envelope, logger *log.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil && logger != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// StatusFor maps a workflow error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrEditNotFound),
		errors.Is(err, shared.ErrMembershipNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, shared.ErrPreconditionFailed):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes the response for err. Unmapped errors are logged and hidden behind a generic message.
func HandleError(w http.ResponseWriter, err error, logger *log.Logger) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("unhandled error", "error", err)
		}
		Error(w, status, "internal server error", logger)
		return
	}
	Error(w, status, err.Error(), logger)
}
