package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"komo-backend/internal/middleware"
	"komo-backend/internal/models"
	"komo-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResp(verr.Message))
		return
	}

	slog.Error("chat request failed",
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorResp("Internal server error: "+err.Error()))
}
