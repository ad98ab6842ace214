package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/longregen/voicedemo/internal/adapters/http/dto"
	"github.com/longregen/voicedemo/internal/adapters/http/encoding"
	"github.com/longregen/voicedemo/internal/domain"
)

const maxRequestBodyBytes = 64 * 1024

var errEmptyBody = errors.New("empty request body")

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// respondNegotiated writes JSON or MessagePack depending on the Accept header
func respondNegotiated(w http.ResponseWriter, r *http.Request, data interface{}, status int) {
	if encoding.NegotiateContentType(r) == encoding.ContentTypeMsgpack {
		if err := encoding.WriteMsgpack(w, status, data); err != nil {
			slog.Error("msgpack encode error", "error", err)
		}
		return
	}
	respondJSON(w, data, status)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, errorType string, message string, status int) {
	respondJSON(w, dto.NewErrorResponse(errorType, message, status), status)
}

// respondPlainError writes a bare text error, which is what browser demo clients display
func respondPlainError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}

// respondDomainError maps err onto a response. Request problems get a JSON error
// body; bootstrap failures get the plain text the browser clients display.
// Anything unrecognised is reported without its details.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDemoNotFound):
		respondError(w, errorCode(err, "not_found"), err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, errorCode(err, "invalid_request"), err.Error(), http.StatusBadRequest)
	case domain.IsFatal(err):
		respondPlainError(w, err.Error(), http.StatusInternalServerError)
	default:
		respondPlainError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func errorCode(err error, fallback string) string {
	var de *domain.DomainError
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	return fallback
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(r *http.Request, name string, defaultValue int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// decodeOptionalBody decodes a JSON or MessagePack body into target. An absent or
// blank body returns errEmptyBody and leaves target untouched.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	if encoding.IsMsgpackBody(r) {
		r.Body = io.NopCloser(bytes.NewReader(body))
		return encoding.ReadMsgpack(r, target)
	}
	return json.Unmarshal(body, target)
}
