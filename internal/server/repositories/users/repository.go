package users

import (
	"context"

	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByAddress(ctx context.Context, address string) (*models.User, error)
}
