package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err onto a status and a stable public message. Only
// server-side failures are logged with their full detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)

	if status >= http.StatusInternalServerError {
		event := zerolog.Ctx(r.Context()).Error().Err(err)
		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			event = event.Str("detail", storageErr.Detail())
		}
		event.Str("kind", domain.Kind(err)).Msg("request failed")
	}

	resp := dto.ErrorResponse{
		Error:   domain.Kind(err),
		Message: publicMessage(err),
	}

	var limitErr *domain.LimitExceededError
	if errors.As(err, &limitErr) {
		resp.Remaining = limitErr.Remaining.StringFixed(domain.MinorUnitDigits)
	}

	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	switch domain.Kind(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidTransfer, domain.KindInvalidRequest:
		return http.StatusBadRequest
	case domain.KindInsufficientFunds, domain.KindLimitExceeded:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindAborted:
		return http.StatusServiceUnavailable
	case domain.KindAuth:
		if errors.Is(err, domain.ErrNotAccountOwner) {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case domain.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// kindMessages are the fixed public texts per error kind. Wrapped causes,
// driver errors included, never reach the caller.
var kindMessages = map[string]string{
	domain.KindNotFound:          "resource not found",
	domain.KindInsufficientFunds: "insufficient funds",
	domain.KindLimitExceeded:     "daily limit exceeded",
	domain.KindAborted:           "transaction aborted, retry later",
	domain.KindConflict:          "resource already exists",
	domain.KindAuth:              "unauthorized",
	domain.KindCanceled:          "request canceled",
	domain.KindStorage:           "internal server error",
}

// publicMessage is the message callers see. Validation errors keep their
// text, which the domain builds from constants; every other kind maps to one
// fixed message.
func publicMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}

	kind := domain.Kind(err)
	switch kind {
	case domain.KindInvalidTransfer, domain.KindInvalidRequest:
		return err.Error()
	case domain.KindAuth:
		if errors.Is(err, domain.ErrNotAccountOwner) {
			return "account belongs to another user"
		}
	}
	return kindMessages[kind]
}

// requester returns the authenticated user id, empty when auth is disabled.
func requester(r *http.Request) string {
	if id, ok := domain.IdentityFromContext(r.Context()); ok {
		return id.UserID
	}
	return ""
}

// decodeAndValidate decodes a JSON body into req and checks its tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, domain.KindInvalidRequest, "invalid request body")
		return false
	}

	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, domain.KindInvalidRequest, err.Error())
		return false
	}

	return true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
