package handler

import (
	"encoding/json"
	"errors"
	"html"
	"net/http"

	"github.com/ricirt/report-robot/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// respondPage writes a minimal HTML page for errors shown in a browser.
func respondPage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte("<!DOCTYPE html><html><body><h3>" + html.EscapeString(msg) + "</h3></body></html>"))
}

// statusFor translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingTrackingURL),
		errors.Is(err, domain.ErrInvalidTrackingURL):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLockBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func mapError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}
