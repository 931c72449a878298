package dto

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a decoded request.
func Validate(req any) error {
	return validate.Struct(req)
}

// OpenSessionRequest represents a login request.
type OpenSessionRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// CreateUserRequest represents a request to seed a user.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RegisterAccountRequest registers an account issued elsewhere.
type RegisterAccountRequest struct {
	UserID         string          `json:"user_id"         validate:"required,max=64"`
	CardNumber     string          `json:"card_number"     validate:"required,numeric,len=16"`
	IBAN           string          `json:"iban"            validate:"required,max=42"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterAccountRequest) ToUseCaseInput() usecase.RegisterAccountInput {
	return usecase.RegisterAccountInput{
		UserID:         r.UserID,
		CardNumber:     r.CardNumber,
		IBAN:           r.IBAN,
		OpeningBalance: r.OpeningBalance,
	}
}

// CreateTransferRequest represents a request to move money. For card-to-card
// both references are card numbers; for interbank channels From is the
// sender account id and To the receiver IBAN.
type CreateTransferRequest struct {
	From    string          `json:"from"    validate:"required,max=64"`
	To      string          `json:"to"      validate:"required,max=64"`
	Amount  decimal.Decimal `json:"amount"`
	Channel string          `json:"channel" validate:"required"`
}

// ToUseCaseInput converts to use case input. initiator is the authenticated
// user, empty when authentication is disabled.
func (r *CreateTransferRequest) ToUseCaseInput(initiator string) (usecase.TransferInput, error) {
	ch, err := domain.ParseChannel(r.Channel)
	if err != nil {
		return usecase.TransferInput{}, err
	}

	return usecase.TransferInput{
		SenderRef:       r.From,
		ReceiverRef:     r.To,
		Amount:          r.Amount,
		Channel:         ch,
		InitiatorUserID: initiator,
	}, nil
}
