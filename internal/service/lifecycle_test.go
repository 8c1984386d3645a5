package service

import (
	"context"
	"testing"
	"time"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	card := createTestCard(t, store, owner.ID, "1111111111111111", "10.00", domain.StatusActive, futureDate())

	blocked, err := svc.ChangeStatus(ctx, card.ID, domain.StatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, blocked.Status)
	assert.Equal(t, "BLOCKED", cardStatus(t, pool, card.ID))

	active, err := svc.ChangeStatus(ctx, card.ID, domain.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, active.Status)
	assert.Equal(t, "ACTIVE", cardStatus(t, pool, card.ID))
}

func TestChangeStatusNoOp(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewLifecycleService(store)

	owner := createTestUser(t, store, "ayo")
	card := createTestCard(t, store, owner.ID, "1111111111111111", "10.00", domain.StatusActive, futureDate())

	_, err := svc.ChangeStatus(context.Background(), card.ID, domain.StatusActive)
	require.ErrorIs(t, err, models.ErrNoOp)
}

func TestChangeStatusInvalidTransitions(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	owner := createTestUser(t, store, "ayo")
	active := createTestCard(t, store, owner.ID, "1111111111111111", "10.00", domain.StatusActive, futureDate())
	expired := createTestCard(t, store, owner.ID, "2222222222222222", "0.00", domain.StatusExpired, futureDate())

	// EXPIRED is never a manual target.
	_, err := svc.ChangeStatus(ctx, active.ID, domain.StatusExpired)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	// An expired card never leaves EXPIRED.
	_, err = svc.ChangeStatus(ctx, expired.ID, domain.StatusActive)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = svc.ChangeStatus(ctx, expired.ID, domain.StatusBlocked)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestChangeStatusCardNotFound(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewLifecycleService(store)

	_, err := svc.ChangeStatus(context.Background(), uuid.New(), domain.StatusBlocked)
	require.ErrorIs(t, err, models.ErrCardNotFound)
}

func TestExpireOverdue(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	owner := createTestUser(t, store, "ayo")
	overdue := createTestCard(t, store, owner.ID, "1111111111111111", "25.00", domain.StatusActive, yesterday)
	expiresToday := createTestCard(t, store, owner.ID, "2222222222222222", "10.00", domain.StatusActive, today)
	current := createTestCard(t, store, owner.ID, "3333333333333333", "10.00", domain.StatusActive, futureDate())
	blockedOverdue := createTestCard(t, store, owner.ID, "4444444444444444", "10.00", domain.StatusBlocked, yesterday)

	expired, err := svc.ExpireOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	assert.Equal(t, "EXPIRED", cardStatus(t, pool, overdue.ID))
	assert.True(t, cardBalance(t, pool, overdue.ID).Equal(decimal.Zero))

	// Expiring today is not yet overdue; the sweep only expires ACTIVE
	// cards, so the blocked one stays as it is.
	assert.Equal(t, "ACTIVE", cardStatus(t, pool, expiresToday.ID))
	assert.Equal(t, "ACTIVE", cardStatus(t, pool, current.ID))
	assert.Equal(t, "BLOCKED", cardStatus(t, pool, blockedOverdue.ID))
	assert.True(t, cardBalance(t, pool, blockedOverdue.ID).Equal(decimal.RequireFromString("10.00")))
}

func TestExpireOverdueIdempotent(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := repository.NewStore(pool)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	now := time.Now().UTC()
	owner := createTestUser(t, store, "ayo")
	createTestCard(t, store, owner.ID, "1111111111111111", "25.00", domain.StatusActive, now.AddDate(0, 0, -1))

	first, err := svc.ExpireOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := svc.ExpireOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, second)
}
