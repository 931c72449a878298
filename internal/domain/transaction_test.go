package domain

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_HistoryOrderAndCursor(t *testing.T) {
	base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	txs := []*Transaction{
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Second)},
		{ID: "b", CreatedAt: base},
		{ID: "d", CreatedAt: base.Add(-time.Second)},
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].Before(txs[j]) })

	var ids []string
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"c", "b", "a", "d"}, ids)

	cursor := CursorOf(txs[1])
	var admitted []string
	for _, tx := range txs {
		if cursor.Admits(tx) {
			admitted = append(admitted, tx.ID)
		}
	}
	assert.Equal(t, []string{"a", "d"}, admitted)

	var nilCursor *HistoryCursor
	assert.True(t, nilCursor.Admits(txs[0]))
}

func TestTransaction_Involves(t *testing.T) {
	tx := &Transaction{SenderAccountID: "s", ReceiverAccountID: "r"}
	assert.True(t, tx.Involves("s"))
	assert.True(t, tx.Involves("r"))
	assert.False(t, tx.Involves("x"))
}

func TestHistoryCursor_EncodeDecode(t *testing.T) {
	c := &HistoryCursor{CreatedAt: time.Date(2026, 10, 16, 9, 30, 0, 123, time.UTC), ID: "01JAB"}

	decoded, err := DecodeHistoryCursor(c.Encode())
	assert.NoError(t, err)
	assert.True(t, decoded.CreatedAt.Equal(c.CreatedAt))
	assert.Equal(t, c.ID, decoded.ID)

	first, err := DecodeHistoryCursor("")
	assert.NoError(t, err)
	assert.Nil(t, first)

	for _, bad := range []string{"!!!", "bm8tc2VwYXJhdG9y", "eHx5"} {
		_, err := DecodeHistoryCursor(bad)
		assert.ErrorIs(t, err, ErrInvalidCursor, bad)
	}
}
