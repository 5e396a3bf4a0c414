package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/goph-catalog/internal/errs"
	"github.com/and161185/goph-catalog/internal/service"
)

const (
	msgBadBody         = "Invalid request body"
	msgUserExists      = "User already exists"
	msgBadCredentials  = "Invalid credentials"
	msgRateLimited     = "Too many failed login attempts, try again later"
	msgStorageDown     = "Storage unavailable"
	msgProductNotFound = "Product not found"
	msgNothingDeleted  = "No products found to delete"
)

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

// writeError maps a service error to a status code and message. notFound is the
// message used for errs.ErrNotFound on the current route.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var pe *service.PageOutOfBoundsError
	switch {
	case errors.As(err, &pe):
		writeMessage(w, http.StatusBadRequest, pe.Error())
	case errors.Is(err, errs.ErrInvalidRange):
		writeMessage(w, http.StatusBadRequest, "minPrice cannot be greater than maxPrice")
	case errors.Is(err, errs.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, detail(err, errs.ErrInvalidInput))
	case errors.Is(err, errs.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, errs.ErrAlreadyExists):
		writeMessage(w, http.StatusBadRequest, msgUserExists)
	case errors.Is(err, errs.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, msgBadCredentials)
	case errors.Is(err, errs.ErrRateLimited):
		writeMessage(w, http.StatusTooManyRequests, msgRateLimited)
	case errors.Is(err, errs.ErrStorageUnavailable):
		s.log.Error("storage", zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusServiceUnavailable, msgStorageDown)
	default:
		s.log.Error("unhandled", zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal")
	}
}

// detail strips the sentinel prefix from a wrapped error ("invalid input: x" -> "x").
func detail(err, sentinel error) string {
	msg := err.Error()
	if d, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return d
	}
	return msg
}

// decodeBody reads a JSON request body of at most maxBody bytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadBody)
		return false
	}
	return true
}
