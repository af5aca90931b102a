package handlers

import (
	"encoding/json"
	"net/http"

	"taskBoard/internal/logger"
)

const msgInternal = "Internal server error"

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func toJSON(storage map[string]any, payload Payload) {
	storage[payload.Key] = payload.Payload
}

// responseWithJSON writes the envelope; success follows the status code
// unless a payload sets it.
func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	storage := map[string]any{"success": code < http.StatusBadRequest}
	for _, pl := range payload {
		toJSON(storage, pl)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(storage); err != nil {
		logger.Error("HTTP: failed to encode response", err)
	}
}

func responseWithMessage(w http.ResponseWriter, code int, message string, payload ...Payload) {
	responseWithJSON(w, code, append([]Payload{toPayload("message", message)}, payload...)...)
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code, toPayload("message", message))
}
