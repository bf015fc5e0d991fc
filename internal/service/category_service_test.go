package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todox-app/todox-api/internal/store"
)

func TestCategoryService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("create rejects duplicate name for same user", func(t *testing.T) {
		t.Parallel()
		svc := NewCategoryService(newFakeCategoryStore(), testLogger())

		_, err := svc.Create(ctx, userID, "Work")
		require.NoError(t, err)

		_, err = svc.Create(ctx, userID, "Work")
		assert.ErrorIs(t, err, store.ErrCategoryExists)

		// A different user can reuse the name.
		_, err = svc.Create(ctx, uuid.New(), "Work")
		assert.NoError(t, err)
	})

	t.Run("resolve or create is idempotent", func(t *testing.T) {
		t.Parallel()
		svc := NewCategoryService(newFakeCategoryStore(), testLogger())

		first, err := svc.ResolveOrCreate(ctx, userID, "Errands")
		require.NoError(t, err)

		second, err := svc.ResolveOrCreate(ctx, userID, "Errands")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("name matching is case sensitive", func(t *testing.T) {
		t.Parallel()
		svc := NewCategoryService(newFakeCategoryStore(), testLogger())

		lower, err := svc.ResolveOrCreate(ctx, userID, "work")
		require.NoError(t, err)

		upper, err := svc.ResolveOrCreate(ctx, userID, "Work")
		require.NoError(t, err)
		assert.NotEqual(t, lower.ID, upper.ID)
	})
}
