package accounts

import (
	"context"

	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
)

// Repository persists account rows. Lock and Unlock pair up on one pinned
// connection; GetForUpdate is meant to be called inside a transaction.
type Repository interface {
	Lock(ctx context.Context, address string) error
	Unlock(ctx context.Context, address string) error
	GetForUpdate(ctx context.Context, address string) (*models.Account, error)
	Get(ctx context.Context, address string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	List(ctx context.Context) ([]models.Account, error)
	Addresses(ctx context.Context) ([]string, error)
}
