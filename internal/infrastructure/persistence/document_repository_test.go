package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDocumentRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewGormDocumentRepository(db)
	pages := NewGormPageRepository(db)
	tenantID := testutil.TestTenantID()
	customerID := uuid.New()

	d := newDocument(t, customerID, "LOAN-1")
	require.NoError(t, docs.Save(ctx, d))
	require.NoError(t, docs.Save(ctx, newDocument(t, customerID, "CONTRACT")))

	t.Run("duplicate identifier per customer", func(t *testing.T) {
		err := docs.Save(ctx, newDocument(t, customerID, "LOAN-1"))
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists), "got %v", err)
		assert.NoError(t, docs.Save(ctx, newDocument(t, uuid.New(), "LOAN-1")), "other customers may reuse it")
	})

	got, err := docs.FindByIdentifier(ctx, tenantID, customerID, "LOAN-1")
	require.NoError(t, err)
	assert.Equal(t, "loan file", got.Description)
	assert.False(t, got.Completed)

	list, err := docs.FindByCustomer(ctx, tenantID, customerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "CONTRACT", list[0].Identifier)

	exists, err := docs.ExistsByIdentifier(ctx, tenantID, customerID, "CONTRACT")
	require.NoError(t, err)
	assert.True(t, exists)

	keys := make(map[int]string)
	for _, n := range []int{2, 0, 1} {
		keys[n] = document.PageKey(tenantID, customerID, d.ID, n, uuid.New())
		p, err := d.AddPage(n, keys[n], "image/png", 10, testutil.TestUserID())
		require.NoError(t, err)
		require.NoError(t, pages.Save(ctx, p))
	}

	numbers, err := pages.PageNumbers(ctx, tenantID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, numbers)

	page, err := pages.Find(ctx, tenantID, d.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "image/png", page.ContentType)
	assert.Equal(t, keys[1], page.StorageKey)

	existed, err := pages.Delete(ctx, tenantID, d.ID, 1)
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = pages.Delete(ctx, tenantID, d.ID, 1)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = pages.Find(ctx, tenantID, d.ID, 1)
	assert.True(t, shared.IsNotFound(err))

	require.NoError(t, docs.Delete(ctx, tenantID, d.ID))
	_, err = docs.FindByIdentifier(ctx, tenantID, customerID, "LOAN-1")
	assert.True(t, shared.IsNotFound(err))

	remaining, err := pages.FindByDocument(ctx, tenantID, d.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "pages go with their document")
}

func TestGormImageStore(t *testing.T) {
	ctx := context.Background()
	store := NewGormImageStore(newTestDB(t))

	require.NoError(t, store.Put(ctx, "k/0", "image/png", []byte{1, 2, 3}))
	require.NoError(t, store.Put(ctx, "k/0", "image/png", []byte{4}), "put replaces")

	data, err := store.Get(ctx, "k/0")
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)

	require.NoError(t, store.Delete(ctx, "k/0"))
	_, err = store.Get(ctx, "k/0")
	assert.True(t, shared.IsNotFound(err))
	assert.NoError(t, store.Delete(ctx, "k/0"))
}
