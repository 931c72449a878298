package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	limits      *LimitTracker
	idGen       IDGenerator
	clock       Clock
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, limits *LimitTracker, idGen IDGenerator, clock Clock) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		limits:      limits,
		idGen:       idGen,
		clock:       clock,
	}
}

// RegisterAccountInput carries identifiers issued outside the engine.
type RegisterAccountInput struct {
	UserID         string
	CardNumber     string
	IBAN           string
	OpeningBalance decimal.Decimal
}

// RegisterAccount stores an account with full daily limits on every channel.
func (uc *AccountUseCase) RegisterAccount(ctx context.Context, input RegisterAccountInput) (*domain.Account, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidReference)
	}

	if err := domain.ValidateCardNumber(input.CardNumber); err != nil {
		return nil, err
	}

	iban := domain.NormalizeIBAN(input.IBAN)
	if err := domain.ValidateIBAN(iban); err != nil {
		return nil, err
	}

	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if !input.OpeningBalance.Equal(input.OpeningBalance.Truncate(domain.MinorUnitDigits)) {
		return nil, domain.ErrAmountPrecision
	}

	now := uc.clock.Now().UTC()

	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		UserID:         input.UserID,
		CardNumber:     input.CardNumber,
		IBAN:           iban,
		Balance:        input.OpeningBalance,
		OpeningBalance: input.OpeningBalance,
		Limits:         uc.limits.FullWindows(now),
		Version:        0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, wrapStorage("register account", err)
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapStorage("get account", err)
	}
	return account, nil
}

// ListForUser lists the accounts owned by a user.
func (uc *AccountUseCase) ListForUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	accounts, err := uc.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrapStorage("list accounts", err)
	}
	return accounts, nil
}
