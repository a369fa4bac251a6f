package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/internal/store"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type mockCache struct {
	values  map[string][]byte
	gets    int
	sets    int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{values: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	m.deletes++
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func newBookService(t *testing.T, cache CatalogCache) (*BookService, *store.BookStore) {
	t.Helper()
	books := store.NewBookStore()
	svc := NewBookService(books, cache, time.Minute, validator.New(), zap.NewNop())
	return svc, books
}

func TestBookServiceCreateAndGet(t *testing.T) {
	svc, _ := newBookService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateBookRequest{Title: "Title", Author: "Author", ISBN: "978-1", Price: 10, Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.True(t, created.IsActive)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ISBN, got.ISBN)
}

func TestBookServiceCreateRejectsNegativePrice(t *testing.T) {
	svc, _ := newBookService(t, nil)

	_, err := svc.Create(context.Background(), CreateBookRequest{Title: "T", Author: "A", ISBN: "978-2", Price: -1})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestBookServiceCreateDuplicateISBN(t *testing.T) {
	svc, _ := newBookService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateBookRequest{Title: "First", Author: "A", ISBN: "978-3"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateBookRequest{Title: "Second", Author: "B", ISBN: "978-3"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateKey))
}

func TestBookServiceDuplicateISBNAgainstSoftDeleted(t *testing.T) {
	svc, _ := newBookService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateBookRequest{Title: "First", Author: "A", ISBN: "978-4"})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	// The deactivated record still owns its ISBN.
	_, err = svc.Create(ctx, CreateBookRequest{Title: "Second", Author: "B", ISBN: "978-4"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateKey))
}

func TestBookServiceUpdateKeepsOwnISBN(t *testing.T) {
	svc, _ := newBookService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateBookRequest{Title: "First", Author: "A", ISBN: "978-5"})
	require.NoError(t, err)

	isbn := "978-5"
	newTitle := "Renamed"
	updated, err := svc.Update(ctx, created.ID, UpdateBookRequest{Title: &newTitle, ISBN: &isbn})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestBookServiceUpdateStock(t *testing.T) {
	svc, _ := newBookService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateBookRequest{Title: "T", Author: "A", ISBN: "978-6", Stock: 2})
	require.NoError(t, err)

	stock := 9
	updated, err := svc.UpdateStock(ctx, created.ID, UpdateStockRequest{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)

	negative := -1
	_, err = svc.UpdateStock(ctx, created.ID, UpdateStockRequest{Stock: &negative})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestBookServiceGetUnknownID(t *testing.T) {
	svc, _ := newBookService(t, nil)

	_, err := svc.Get(context.Background(), 42)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestBookServiceCategoriesUsesCache(t *testing.T) {
	cache := newMockCache()
	svc, _ := newBookService(t, cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateBookRequest{Title: "T", Author: "A", ISBN: "978-7", Category: "CS"})
	require.NoError(t, err)

	first, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS"}, first)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets, "second read should come from cache")

	// A write invalidates the cached list.
	_, err = svc.Create(ctx, CreateBookRequest{Title: "U", Author: "B", ISBN: "978-8", Category: "Math"})
	require.NoError(t, err)
	third, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS", "Math"}, third)
}

func TestBookServiceListPagination(t *testing.T) {
	svc, books := newBookService(t, nil)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		book := models.Book{Title: "B", ISBN: string(rune('a' + i)), IsActive: true}
		require.NoError(t, books.Create(ctx, &book))
	}

	items, pagination, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 5, pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 2, pagination.CurrentPage)
}
