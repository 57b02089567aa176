package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in a map. It backs the server when no
// database DSN is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Address]; ok {
		return nil, common.ErrAlreadyRegistered
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	r.users[user.Address] = *user
	return user, nil
}

func (r *MemoryRepository) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[address]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}
