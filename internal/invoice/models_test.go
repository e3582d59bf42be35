package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotals(t *testing.T) {
	lines := []Line{
		{ProductID: "p1", Quantity: 3, UnitPriceCents: 500},
		{ProductID: "p2", Quantity: 1, UnitPriceCents: 250},
	}

	total, tax, grand := Totals(lines, 1000) // 10%

	assert.Equal(t, 1500, lines[0].SubtotalCents)
	assert.Equal(t, 250, lines[1].SubtotalCents)
	assert.Equal(t, 1750, total)
	assert.Equal(t, 175, tax)
	assert.Equal(t, 1925, grand)
}

func TestTotalsTruncatesTax(t *testing.T) {
	lines := []Line{{ProductID: "p1", Quantity: 1, UnitPriceCents: 99}}

	total, tax, grand := Totals(lines, 1000)

	assert.Equal(t, 99, total)
	assert.Equal(t, 9, tax) // 9.9 truncated
	assert.Equal(t, 108, grand)
}

func TestTotalsZeroRate(t *testing.T) {
	lines := []Line{{ProductID: "p1", Quantity: 2, UnitPriceCents: 100}}

	total, tax, grand := Totals(lines, 0)

	assert.Equal(t, 200, total)
	assert.Zero(t, tax)
	assert.Equal(t, 200, grand)
}

func TestTotalsNoLines(t *testing.T) {
	total, tax, grand := Totals(nil, 1000)
	assert.Zero(t, total)
	assert.Zero(t, tax)
	assert.Zero(t, grand)
}
