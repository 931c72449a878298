package domain

import (
	"github.com/shopspring/decimal"
)

// TransferRequest is a transfer as submitted, before references are resolved.
// For card-to-card both refs are card numbers; for interbank channels the
// sender is an account id and the receiver an IBAN.
type TransferRequest struct {
	SenderRef   string
	ReceiverRef string
	Amount      decimal.Decimal
	Channel     Channel
}

// Validate checks everything that can be checked without touching storage.
func (t *TransferRequest) Validate() error {
	if !t.Channel.IsValid() {
		return ErrInvalidChannel
	}

	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	if t.Channel.IsInterbank() {
		if t.SenderRef == "" {
			return ErrInvalidReference
		}
		if err := ValidateIBAN(t.ReceiverRef); err != nil {
			return err
		}
	} else {
		if err := ValidateCardNumber(t.SenderRef); err != nil {
			return err
		}
		if err := ValidateCardNumber(t.ReceiverRef); err != nil {
			return err
		}
		if t.SenderRef == t.ReceiverRef {
			return ErrSameAccount
		}
	}

	return nil
}
