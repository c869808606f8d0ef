package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ssargent/m64kit/pkg/m64"
)

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) != 1 {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// sendCreated sends a 201 JSON response
func sendCreated(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusCreated, APIResponse{Success: true, Data: data})
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, APIResponse{Success: false, Error: message})
}

// sendDecodeError sends a 422 describing where a movie failed to decode
func sendDecodeError(w http.ResponseWriter, perr m64.ParseError) {
	sendJSON(w, http.StatusUnprocessableEntity, APIResponse{
		Success: false,
		Error:   perr.Error(),
		Data:    decodeErrorDetail(perr),
	})
}

func sendJSON(w http.ResponseWriter, statusCode int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func decodeErrorDetail(perr m64.ParseError) DecodeErrorDetail {
	detail := DecodeErrorDetail{
		Kind:    perr.Kind().String(),
		Offset:  perr.ByteOffset(),
		Message: perr.Error(),
	}

	var short *m64.NotEnoughBytesError
	var text *m64.InvalidTextError
	switch {
	case errors.As(perr, &short):
		detail.Field = short.Field.String()
	case errors.As(perr, &text):
		detail.Field = text.Field.String()
	}
	return detail
}
