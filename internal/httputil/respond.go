// Package httputil holds the JSON request and response helpers shared by
// the handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/models"
)

const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status and an `{"error":true,"message":...}` body.
// Internal causes are logged and never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := apperr.Status(err)
	entry := log.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"request_id": middleware.GetReqID(r.Context()),
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithField("reason", err.Error()).Debug("request rejected")
	}
	WriteJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": apperr.PublicMessage(err),
	})
}

// DecodeJSON reads a single JSON object into dst, rejecting unknown fields,
// and then checks its validate tags.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	if dec.More() {
		return apperr.Validation("Invalid request body")
	}
	return models.Validate(dst)
}
