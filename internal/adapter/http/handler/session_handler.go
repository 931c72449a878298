package handler

import (
	"context"
	"net/http"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
)

// SessionService defines the behavior needed by SessionHandler.
type SessionService interface {
	OpenSession(ctx context.Context, username, password string) (*domain.Identity, error)
	SeedUser(ctx context.Context, username, password string) (*domain.User, error)
}

// SessionHandler handles login and user seeding.
type SessionHandler struct {
	sessions SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Open verifies credentials and returns a session token.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	identity, err := h.sessions.OpenSession(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SessionFromIdentity(identity))
}

// CreateUser seeds a user with a password.
func (h *SessionHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.sessions.SeedUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}
