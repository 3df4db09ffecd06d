package quotation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNumberGenerator_Next(t *testing.T) {
	g := &NumberGenerator{
		now:    func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) },
		suffix: func() int { return 42 },
	}
	n := g.Next()
	assert.Equal(t, "Q-20240309-0042", n)
	assert.True(t, IsValidNumber(n))
}

func TestNumberGenerator_Random(t *testing.T) {
	g := NewNumberGenerator()
	for i := 0; i < 50; i++ {
		assert.True(t, IsValidNumber(g.Next()))
	}
	assert.False(t, IsValidNumber("Q-2024-0001"))
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 1.234.567", FormatRupiah(decimal.NewFromInt(1234567)))
	assert.Equal(t, "Rp 721,5", FormatRupiah(decimal.RequireFromString("721.5")))
	assert.Equal(t, "Rp 0", FormatRupiah(decimal.Zero))
}
