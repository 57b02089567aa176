package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Create(ctx, &models.RefreshToken{Token: "live", Address: alice, Expires: now.Add(time.Hour)}))
	require.NoError(t, r.Create(ctx, &models.RefreshToken{Token: "old", Address: alice, Expires: now.Add(-time.Second)}))

	got, err := r.Find(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, alice, got.Address)
	assert.False(t, got.CreatedAt.IsZero())

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.Find(ctx, "old")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, r.Delete(ctx, "live"))
	require.NoError(t, r.Delete(ctx, "live"))
	_, err = r.Find(ctx, "live")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
