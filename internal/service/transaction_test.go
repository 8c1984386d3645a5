package service

import (
	"context"
	"testing"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListForCard(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewTransactionService(store)
	transfers := NewTransferService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	createTestCard(t, store, owner.ID, "1111111111111111", "100.00", domain.StatusActive, futureDate())
	createTestCard(t, store, owner.ID, "2222222222222222", "100.00", domain.StatusActive, futureDate())
	createTestCard(t, store, owner.ID, "3333333333333333", "100.00", domain.StatusActive, futureDate())

	_, err := transfers.Transfer(ctx, "1111111111111111", "2222222222222222", decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	_, err = transfers.Transfer(ctx, "3333333333333333", "1111111111111111", decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	_, err = transfers.Transfer(ctx, "2222222222222222", "3333333333333333", decimal.RequireFromString("1.00"))
	require.NoError(t, err)

	card, views, err := svc.ListForCard(ctx, "1111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "1111111111111111", card.CardNumber)

	// Both directions, insertion order, masked numbers only.
	require.Len(t, views, 2)
	assert.Equal(t, "****1111", views[0].FromCard)
	assert.Equal(t, "****2222", views[0].ToCard)
	assert.True(t, views[0].Amount.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, "****3333", views[1].FromCard)
	assert.Equal(t, "****1111", views[1].ToCard)
	assert.Less(t, views[0].ID, views[1].ID)

	_, _, err = svc.ListForCard(ctx, "9999999999999999")
	require.ErrorIs(t, err, models.ErrCardNotFound)
}

func TestAuthenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ayo", "ayo@example.com", "s3cret-pass", "USER")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "ayo", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ayo", "wrong")
	require.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = svc.Authenticate(ctx, "nobody", "s3cret-pass")
	require.ErrorIs(t, err, models.ErrUserNotFound)
}
