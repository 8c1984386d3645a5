package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	source := createTestCard(t, store, owner.ID, "1111111111111111", "100.00", domain.StatusActive, futureDate())
	dest := createTestCard(t, store, owner.ID, "2222222222222222", "50.00", domain.StatusActive, futureDate())

	tx, err := svc.Transfer(ctx, "1111111111111111", "2222222222222222", decimal.RequireFromString("30.00"))
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Greater(t, tx.ID, int64(0))
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("30.00")))

	assert.True(t, cardBalance(t, pool, source.ID).Equal(decimal.RequireFromString("70.00")))
	assert.True(t, cardBalance(t, pool, dest.ID).Equal(decimal.RequireFromString("80.00")))

	entries, err := store.Queries().ListTransactionsForCard(ctx, source.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, source.ID, entries[0].FromCardID)
	assert.Equal(t, dest.ID, entries[0].ToCardID)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("30.00")))
}

func TestTransferInsufficientFunds(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	source := createTestCard(t, store, owner.ID, "1111111111111111", "50.00", domain.StatusActive, futureDate())
	dest := createTestCard(t, store, owner.ID, "2222222222222222", "10.00", domain.StatusActive, futureDate())

	_, err := svc.Transfer(ctx, "1111111111111111", "2222222222222222", decimal.RequireFromString("1000.00"))
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	// Nothing moved, nothing recorded.
	assert.True(t, cardBalance(t, pool, source.ID).Equal(decimal.RequireFromString("50.00")))
	assert.True(t, cardBalance(t, pool, dest.ID).Equal(decimal.RequireFromString("10.00")))

	total, err := store.Queries().CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestTransferSameCard(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)

	_, err := svc.Transfer(context.Background(), "1111111111111111", "1111111111111111", decimal.RequireFromString("10.00"))
	require.ErrorIs(t, err, models.ErrSameCardTransfer)
}

func TestTransferNonPositiveAmount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	createTestCard(t, store, owner.ID, "1111111111111111", "100.00", domain.StatusActive, futureDate())
	createTestCard(t, store, owner.ID, "2222222222222222", "0.00", domain.StatusActive, futureDate())

	_, err := svc.Transfer(ctx, "1111111111111111", "2222222222222222", decimal.Zero)
	require.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = svc.Transfer(ctx, "1111111111111111", "2222222222222222", decimal.RequireFromString("-5.00"))
	require.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestTransferSubCentAmount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	source := createTestCard(t, store, owner.ID, "1111111111111111", "100.00", domain.StatusActive, futureDate())
	dest := createTestCard(t, store, owner.ID, "2222222222222222", "50.00", domain.StatusActive, futureDate())

	// A sub-cent amount would be rounded independently on the debit, the
	// credit and the ledger row, minting money. It must never reach the
	// store.
	var amount decimal.Decimal
	require.NoError(t, json.Unmarshal([]byte(`0.005`), &amount))
	_, err := svc.Transfer(ctx, "1111111111111111", "2222222222222222", amount)
	require.ErrorIs(t, err, models.ErrInvalidAmount)

	assert.True(t, cardBalance(t, pool, source.ID).Equal(decimal.RequireFromString("100.00")))
	assert.True(t, cardBalance(t, pool, dest.ID).Equal(decimal.RequireFromString("50.00")))

	total, err := store.Queries().CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestTransferSourceNotUsable(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	createTestCard(t, store, owner.ID, "1111111111111111", "100.00", domain.StatusBlocked, futureDate())
	createTestCard(t, store, owner.ID, "2222222222222222", "0.00", domain.StatusActive, futureDate())
	createTestCard(t, store, owner.ID, "3333333333333333", "0.00", domain.StatusExpired, futureDate())

	_, err := svc.Transfer(ctx, "1111111111111111", "2222222222222222", decimal.RequireFromString("10.00"))
	require.ErrorIs(t, err, models.ErrCardNotUsable)

	_, err = svc.Transfer(ctx, "3333333333333333", "2222222222222222", decimal.RequireFromString("10.00"))
	require.ErrorIs(t, err, models.ErrCardNotUsable)
}

func TestTransferDestinationNotUsableStillCredited(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	// Only the source must be usable. A blocked destination keeps
	// receiving funds; its owner just cannot spend them yet.
	owner := createTestUser(t, store, "ayo")
	createTestCard(t, store, owner.ID, "1111111111111111", "100.00", domain.StatusActive, futureDate())
	dest := createTestCard(t, store, owner.ID, "2222222222222222", "0.00", domain.StatusBlocked, futureDate())

	_, err := svc.Transfer(ctx, "1111111111111111", "2222222222222222", decimal.RequireFromString("25.00"))
	require.NoError(t, err)
	assert.True(t, cardBalance(t, pool, dest.ID).Equal(decimal.RequireFromString("25.00")))
}

func TestTransferCardNotFound(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	createTestCard(t, store, owner.ID, "2222222222222222", "50.00", domain.StatusActive, futureDate())

	// Missing source is reported as the source even though the lock order
	// would visit the existing destination first.
	_, err := svc.Transfer(ctx, "9999999999999999", "2222222222222222", decimal.RequireFromString("10.00"))
	require.ErrorIs(t, err, models.ErrCardNotFound)
	assert.True(t, strings.Contains(err.Error(), "source"), "got: %v", err)

	_, err = svc.Transfer(ctx, "2222222222222222", "9999999999999999", decimal.RequireFromString("10.00"))
	require.ErrorIs(t, err, models.ErrCardNotFound)
	assert.True(t, strings.Contains(err.Error(), "destination"), "got: %v", err)

	// Both missing: source wins.
	_, err = svc.Transfer(ctx, "8888888888888888", "9999999999999999", decimal.RequireFromString("10.00"))
	require.ErrorIs(t, err, models.ErrCardNotFound)
	assert.True(t, strings.Contains(err.Error(), "source"), "got: %v", err)
}

func TestTransferConcurrent(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	const workers = 20
	each := decimal.RequireFromString("5.00")

	owner := createTestUser(t, store, "ayo")
	source := createTestCard(t, store, owner.ID, "1111111111111111", "100.00", domain.StatusActive, futureDate())
	dest := createTestCard(t, store, owner.ID, "2222222222222222", "0.00", domain.StatusActive, futureDate())

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, "1111111111111111", "2222222222222222", each)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// The source is drained exactly, funds are conserved and each transfer
	// left precisely one ledger entry.
	assert.True(t, cardBalance(t, pool, source.ID).Equal(decimal.Zero))
	assert.True(t, cardBalance(t, pool, dest.ID).Equal(decimal.RequireFromString("100.00")))

	total, err := store.Queries().CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), total)
}

func TestTransferOppositeDirectionsNoDeadlock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransferService(store)
	ctx := context.Background()

	const rounds = 10
	each := decimal.RequireFromString("1.00")

	owner := createTestUser(t, store, "ayo")
	a := createTestCard(t, store, owner.ID, "1111111111111111", "100.00", domain.StatusActive, futureDate())
	b := createTestCard(t, store, owner.ID, "2222222222222222", "100.00", domain.StatusActive, futureDate())

	var wg sync.WaitGroup
	errs := make(chan error, rounds*2)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, "1111111111111111", "2222222222222222", each)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, "2222222222222222", "1111111111111111", each)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Equal traffic in both directions nets out to the starting balances.
	assert.True(t, cardBalance(t, pool, a.ID).Equal(decimal.RequireFromString("100.00")))
	assert.True(t, cardBalance(t, pool, b.ID).Equal(decimal.RequireFromString("100.00")))
}
