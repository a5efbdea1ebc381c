package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"stone_sales/internal/testutil"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryLedgerReserve(t *testing.T) {
	f := newFixture(t)
	stone := f.stone(t, "Marble-30x30", "150000", 5)
	ledger := NewInventoryLedger(f.store.Stones(), f.metrics)

	require.NoError(t, ledger.Reserve(f.ctx, stone.ID, 3))
	assert.Equal(t, 2, f.stock(t, stone.ID))

	err := ledger.Reserve(f.ctx, stone.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, f.stock(t, stone.ID), "failed reservation must leave stock untouched")

	require.NoError(t, ledger.Reserve(f.ctx, stone.ID, 2))
	assert.Equal(t, 0, f.stock(t, stone.ID))
}

func TestInventoryLedgerRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	stone := f.stone(t, "Granite", "10", 5)
	ledger := NewInventoryLedger(f.store.Stones(), nil)

	assert.ErrorIs(t, ledger.Reserve(f.ctx, stone.ID, 0), ErrInvalidInput)
	assert.ErrorIs(t, ledger.Reserve(f.ctx, stone.ID, -2), ErrInvalidInput)
	assert.ErrorIs(t, ledger.Release(f.ctx, stone.ID, 0), ErrInvalidInput)
	assert.ErrorIs(t, ledger.Reserve(f.ctx, 999, 1), ErrNotFound)
	assert.ErrorIs(t, ledger.Release(f.ctx, 999, 1), ErrNotFound)
	assert.Equal(t, 5, f.stock(t, stone.ID))
}

func TestInventoryLedgerRelease(t *testing.T) {
	f := newFixture(t)
	stone := f.stone(t, "Onyx", "10", 1)
	ledger := NewInventoryLedger(f.store.Stones(), f.metrics)

	require.NoError(t, ledger.Release(f.ctx, stone.ID, 4))
	assert.Equal(t, 5, f.stock(t, stone.ID))
}

func TestInventoryLedgerStockNeverNegative(t *testing.T) {
	f := newFixture(t)
	stone := f.stone(t, "Slate", "10", 4)
	ledger := NewInventoryLedger(f.store.Stones(), nil)

	ops := []struct {
		reserve  bool
		quantity int
	}{
		{true, 3}, {true, 2}, {false, 1}, {true, 5}, {true, 2}, {false, 6}, {true, 6}, {true, 1},
	}
	expected := 4
	for _, op := range ops {
		var err error
		if op.reserve {
			err = ledger.Reserve(f.ctx, stone.ID, op.quantity)
			if op.quantity <= expected {
				require.NoError(t, err)
				expected -= op.quantity
			} else {
				require.ErrorIs(t, err, ErrInsufficientStock)
			}
		} else {
			require.NoError(t, ledger.Release(f.ctx, stone.ID, op.quantity))
			expected += op.quantity
		}
		stock := f.stock(t, stone.ID)
		require.Equal(t, expected, stock)
		require.GreaterOrEqual(t, stock, 0)
	}
}

func TestInventoryServiceConcurrentReservationsDoNotOversell(t *testing.T) {
	f := newFixtureOn(t, testutil.NewConcurrentDB(t))
	stone := f.stone(t, "Travertine", "10", 10)
	inventory := NewInventoryService(f.deps)

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := inventory.Reserve(f.ctx, stone.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, workers-10, rejected)
	assert.Equal(t, 0, f.stock(t, stone.ID))
}

func TestInventoryLedgerRecordsMetrics(t *testing.T) {
	f := newFixture(t)
	stone := f.stone(t, "Basalt", "10", 1)
	inventory := NewInventoryService(f.deps)

	require.NoError(t, inventory.Reserve(f.ctx, stone.ID, 1))
	require.Error(t, inventory.Reserve(f.ctx, stone.ID, 1))
	require.NoError(t, inventory.Release(f.ctx, stone.ID, 1))

	expected := `
# HELP stone_reservations_total Stock reservations and releases by operation and result.
# TYPE stone_reservations_total counter
stone_reservations_total{operation="release",result="ok"} 1
stone_reservations_total{operation="reserve",result="error"} 1
stone_reservations_total{operation="reserve",result="ok"} 1
`
	assert.NoError(t, promtestutil.GatherAndCompare(f.registry, strings.NewReader(expected), "stone_reservations_total"))
}
