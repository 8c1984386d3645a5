package service

import (
	"context"

	"github.com/ayo6706/bankcards/internal/repository"
)

// QueryStore is the data-access contract shared by all services: plain
// queries outside a transaction, or a function run inside one.
type QueryStore interface {
	Queries() *repository.Queries
	RunInTx(ctx context.Context, fn func(q *repository.Queries) error) error
}
