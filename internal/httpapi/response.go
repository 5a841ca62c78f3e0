package httpapi

import (
	"errors"
	"net/http"

	"github.com/casualjim/hoot/protocol"
	json "github.com/goccy/go-json"
)

const internalServerError = "Internal server error"

type errorResponse struct {
	Error string `json:"error"`
}

func writeMappedError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), messageFor(err))
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, protocol.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return internalServerError
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + internalServerError + `"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
