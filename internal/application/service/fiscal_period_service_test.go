package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentFiscalYear(t *testing.T) {
	tests := []struct {
		date  string
		label string
	}{
		{"2025-03-31", "2024-25"},
		{"2025-04-01", "2025-26"},
		{"2024-01-15", "2023-24"},
		{"2099-12-31", "2099-00"},
	}
	for _, tt := range tests {
		fy := CurrentFiscalYear(day(tt.date))
		assert.Equal(t, tt.label, fy.Label(), tt.date)
		assert.False(t, day(tt.date).Before(fy.Start()))
		assert.False(t, day(tt.date).After(fy.End()))
	}
}

func TestEnsureFiscalPeriods(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	periods, err := f.periods.EnsureFiscalPeriods(ctx, f.firm.ID, day("2024-11-05"))
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "2024-25", periods[0].Label)
	assert.Equal(t, day("2024-04-01"), periods[0].StartDate)
	assert.Equal(t, day("2025-03-31"), periods[0].EndDate)

	periods, err = f.periods.EnsureFiscalPeriods(ctx, f.firm.ID, day("2025-03-30"))
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "2025-26", periods[1].Label)

	// idempotent
	_, err = f.periods.EnsureFiscalPeriods(ctx, f.firm.ID, day("2025-03-31"))
	require.NoError(t, err)
	listed, err := f.periods.List(ctx, f.firm.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	current, err := f.periods.Current(ctx, f.firm.ID, day("2025-06-01"))
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "2025-26", current.Label)
}

func TestEnsureFiscalPeriods_Concurrent(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.periods.EnsureFiscalPeriods(context.Background(), f.firm.ID, day("2025-03-31"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.store.periods, 2)
}

func TestListFiscalPeriods_Empty(t *testing.T) {
	f := newFixture(t)
	periods, err := f.periods.List(context.Background(), f.firm.ID)
	require.NoError(t, err)
	assert.NotNil(t, periods)
	assert.Empty(t, periods)
}
