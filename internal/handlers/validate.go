package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON checks the content type and decodes the body into dst. On
// failure it returns the status and client message to answer with.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (int, string, error) {
	if !checkContentType(r, "application/json") {
		return http.StatusUnsupportedMediaType, "Content-Type must be application/json",
			fmt.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return 0, "", nil
	}

	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field == "labels":
		return http.StatusBadRequest, "Labels must be an array", err
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, fmt.Sprintf("Invalid value for field '%s'", typeErr.Field), err
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "Request body too large", err
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, "Request body is empty", err
	default:
		return http.StatusBadRequest, "Invalid request body", err
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, errors.New("nil id")
	}
	return id, nil
}
