package proration

import (
	"context"
	"testing"
	"time"

	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculator()

	cycleStart := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	cycleEnd := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC) // 30 days

	tests := []struct {
		name       string
		quantity   int64
		now        time.Time
		unitAmount int64
		want       int64
	}{
		{
			name:       "half cycle remaining on ten dollar plan",
			quantity:   1,
			now:        cycleStart.AddDate(0, 0, 15), // 15 of 30 days remaining
			unitAmount: 1000,
			want:       500,
		},
		{
			name:       "full cycle remaining",
			quantity:   1,
			now:        cycleStart,
			unitAmount: 1000,
			want:       1000,
		},
		{
			name:       "no time remaining",
			quantity:   1,
			now:        cycleEnd,
			unitAmount: 1000,
			want:       0,
		},
		{
			name:       "multiple units",
			quantity:   3,
			now:        cycleStart.AddDate(0, 0, 20), // 10 of 30 days remaining
			unitAmount: 1000,
			want:       1000,
		},
		{
			name:       "rounds to nearest cent",
			quantity:   1,
			now:        cycleStart.AddDate(0, 0, 10), // 20 of 30 days remaining
			unitAmount: 999,
			want:       666,
		},
		{
			name:       "after cycle end clamps to zero",
			quantity:   2,
			now:        cycleEnd.AddDate(0, 0, 1),
			unitAmount: 1000,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Calculate(ctx, Params{
				Quantity:      tt.quantity,
				CycleStart:    cycleStart,
				CycleEnd:      cycleEnd,
				ProrationDate: tt.now,
				UnitAmount:    tt.unitAmount,
			})
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.want, result.Amount)
		})
	}
}

func TestCalculate_NonPositiveQuantitySkips(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculator()

	for _, qty := range []int64{0, -1, -10} {
		result, err := calc.Calculate(ctx, Params{
			Quantity:      qty,
			CycleStart:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			CycleEnd:      time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
			ProrationDate: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
			UnitAmount:    1000,
		})
		assert.NoError(t, err)
		assert.Nil(t, result, "qty=%d must not produce a charge", qty)
	}
}

func TestCalculate_MonotonicNonIncreasing(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculator()

	cycleStart := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	cycleEnd := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	prev := int64(1 << 62)
	for now := cycleStart; !now.After(cycleEnd); now = now.Add(17 * time.Hour) {
		result, err := calc.Calculate(ctx, Params{
			Quantity:      2,
			CycleStart:    cycleStart,
			CycleEnd:      cycleEnd,
			ProrationDate: now,
			UnitAmount:    1250,
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.LessOrEqual(t, result.Amount, prev, "charge must not grow as the cycle end approaches")
		prev = result.Amount
	}

	result, err := calc.Calculate(ctx, Params{
		Quantity:      2,
		CycleStart:    cycleStart,
		CycleEnd:      cycleEnd,
		ProrationDate: cycleEnd,
		UnitAmount:    1250,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Amount)
}

func TestCalculate_InvalidParams(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculator()

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		params Params
	}{
		{
			name: "zero proration date",
			params: Params{
				Quantity:   1,
				CycleStart: start,
				CycleEnd:   start.AddDate(0, 1, 0),
				UnitAmount: 1000,
			},
		},
		{
			name: "cycle end before start",
			params: Params{
				Quantity:      1,
				CycleStart:    start,
				CycleEnd:      start.AddDate(0, -1, 0),
				ProrationDate: start,
				UnitAmount:    1000,
			},
		},
		{
			name: "negative unit amount",
			params: Params{
				Quantity:      1,
				CycleStart:    start,
				CycleEnd:      start.AddDate(0, 1, 0),
				ProrationDate: start,
				UnitAmount:    -1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Calculate(ctx, tt.params)
			assert.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}
