package usecase

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/bankledger/internal/domain"
)

// SessionUseCase proves credentials and opens sessions.
type SessionUseCase struct {
	userRepo UserRepository
	tokens   TokenIssuer
	idGen    IDGenerator
	clock    Clock
}

// NewSessionUseCase creates a new session use case
func NewSessionUseCase(userRepo UserRepository, tokens TokenIssuer, idGen IDGenerator, clock Clock) *SessionUseCase {
	return &SessionUseCase{
		userRepo: userRepo,
		tokens:   tokens,
		idGen:    idGen,
		clock:    clock,
	}
}

// OpenSession verifies username and password and returns the identity with a
// signed token. Every failure is ErrUnauthorized so callers cannot tell which
// usernames exist.
func (uc *SessionUseCase) OpenSession(ctx context.Context, username, password string) (*domain.Identity, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, wrapStorage("open session", err)
	}

	if !user.Active {
		return nil, domain.ErrUnauthorized
	}

	if err := verifyPassword(user.HashedPassword, password); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	}, nil
}

// SeedUser stores a user with a bcrypt hashed password. Operators use it to
// provision users known to the external registration service.
func (uc *SessionUseCase) SeedUser(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Username:       username,
		HashedPassword: hashed,
		Active:         true,
		CreatedAt:      uc.clock.Now().UTC(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, wrapStorage("seed user", err)
	}

	user.HashedPassword = ""
	return user, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword verifies a password against a hash
func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
