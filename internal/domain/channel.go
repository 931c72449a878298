package domain

import "fmt"

// Channel is a transfer type with its own daily cap.
type Channel string

const (
	ChannelCardToCard       Channel = "card-to-card"
	ChannelInterbankSameDay Channel = "interbank-same-day"
	ChannelInterbankBatch   Channel = "interbank-batch"
)

// Channels lists every supported channel in a stable order.
var Channels = []Channel{ChannelCardToCard, ChannelInterbankSameDay, ChannelInterbankBatch}

// ParseChannel validates a channel name.
func ParseChannel(s string) (Channel, error) {
	ch := Channel(s)
	if !ch.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidChannel, s)
	}
	return ch, nil
}

// IsValid reports whether c is a known channel.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelCardToCard, ChannelInterbankSameDay, ChannelInterbankBatch:
		return true
	}
	return false
}

// IsInterbank reports whether the sender is addressed by account id and the receiver by IBAN.
func (c Channel) IsInterbank() bool {
	return c == ChannelInterbankSameDay || c == ChannelInterbankBatch
}

func (c Channel) String() string {
	return string(c)
}
