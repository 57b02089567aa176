package transactions

import (
	"context"

	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the append-only transaction journal. Remove only exists to
// undo a withdrawal whose payout failed after it was committed.
type Repository interface {
	Append(ctx context.Context, tx *models.Transaction) error
	Remove(ctx context.Context, id uuid.UUID) error
	ListByAddress(ctx context.Context, address string) ([]models.Transaction, error)
	ListAll(ctx context.Context) ([]models.Transaction, error)
}
