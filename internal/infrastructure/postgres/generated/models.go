package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID                    string             `json:"id"`
	UserID                string             `json:"user_id"`
	CardNumber            string             `json:"card_number"`
	Iban                  string             `json:"iban"`
	Balance               pgtype.Numeric     `json:"balance"`
	OpeningBalance        pgtype.Numeric     `json:"opening_balance"`
	CardToCardRemaining   pgtype.Numeric     `json:"card_to_card_remaining"`
	CardToCardWindowStart pgtype.Date        `json:"card_to_card_window_start"`
	SameDayRemaining      pgtype.Numeric     `json:"same_day_remaining"`
	SameDayWindowStart    pgtype.Date        `json:"same_day_window_start"`
	BatchRemaining        pgtype.Numeric     `json:"batch_remaining"`
	BatchWindowStart      pgtype.Date        `json:"batch_window_start"`
	Version               int64              `json:"version"`
	CreatedAt             pgtype.Timestamptz `json:"created_at"`
	UpdatedAt             pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Transaction struct {
	ID                string             `json:"id"`
	TrackingCode      string             `json:"tracking_code"`
	SenderAccountID   string             `json:"sender_account_id"`
	ReceiverAccountID string             `json:"receiver_account_id"`
	Amount            pgtype.Numeric     `json:"amount"`
	Channel           string             `json:"channel"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
}

type User struct {
	ID             string             `json:"id"`
	Username       string             `json:"username"`
	HashedPassword string             `json:"hashed_password"`
	Active         bool               `json:"active"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}
