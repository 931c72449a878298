package domain

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable ledger record of one completed transfer.
type Transaction struct {
	ID                string
	SenderAccountID   string
	ReceiverAccountID string
	Amount            decimal.Decimal
	Channel           Channel
	TrackingCode      string
	CreatedAt         time.Time
}

// Involves reports whether accountID is the sender or the receiver.
func (t *Transaction) Involves(accountID string) bool {
	return t.SenderAccountID == accountID || t.ReceiverAccountID == accountID
}

// Before reports whether t sorts after o in history order
// (created_at descending, then id descending).
func (t *Transaction) Before(o *Transaction) bool {
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return t.CreatedAt.After(o.CreatedAt)
	}
	return t.ID > o.ID
}

const cursorSeparator = "|"

// HistoryCursor marks a position in an account history. Records strictly
// after the cursor in history order are returned by the next page.
type HistoryCursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorOf returns the cursor positioned at t.
func CursorOf(t *Transaction) *HistoryCursor {
	return &HistoryCursor{CreatedAt: t.CreatedAt, ID: t.ID}
}

// Admits reports whether t comes after the cursor in history order.
func (c *HistoryCursor) Admits(t *Transaction) bool {
	if c == nil {
		return true
	}
	if !t.CreatedAt.Equal(c.CreatedAt) {
		return t.CreatedAt.Before(c.CreatedAt)
	}
	return t.ID < c.ID
}

// Encode returns the opaque page token for c.
func (c *HistoryCursor) Encode() string {
	if c == nil {
		return ""
	}
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + cursorSeparator + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeHistoryCursor parses a page token. An empty token means the first page.
func DecodeHistoryCursor(token string) (*HistoryCursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	nanos, id, ok := strings.Cut(string(raw), cursorSeparator)
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}

	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &HistoryCursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}
