package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

func newBookCollection(n int) *Collection[models.Book, *models.Book] {
	c := NewCollection[models.Book, *models.Book]()
	for i := 0; i < n; i++ {
		c.Insert(models.Book{
			Title:    fmt.Sprintf("Book %02d", i+1),
			ISBN:     fmt.Sprintf("978000000%04d", i+1),
			Category: "General",
			IsActive: true,
		})
	}
	return c
}

func TestCollectionInsertAssignsSequentialIDs(t *testing.T) {
	c := newBookCollection(3)

	books, total, err := c.Page(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	for i, b := range books {
		assert.Equal(t, i+1, b.ID)
		assert.False(t, b.CreatedAt.IsZero())
		assert.Equal(t, b.CreatedAt, b.UpdatedAt)
	}
}

func TestCollectionInsertAfterRemoveUsesSurvivingMax(t *testing.T) {
	c := newBookCollection(3)

	_, err := c.Remove(2)
	require.NoError(t, err)

	inserted := c.Insert(models.Book{Title: "Fourth"})
	assert.Equal(t, 4, inserted.ID)

	_, err = c.Remove(4)
	require.NoError(t, err)
	_, err = c.Remove(3)
	require.NoError(t, err)

	// With the maximum gone, the next id derives from what survives.
	inserted = c.Insert(models.Book{Title: "After max removed"})
	assert.Equal(t, 2, inserted.ID)
}

func TestCollectionPageSlicing(t *testing.T) {
	c := newBookCollection(7)

	tests := []struct {
		name      string
		page      int
		limit     int
		wantLen   int
		wantFirst string
	}{
		{"first page", 1, 3, 3, "Book 01"},
		{"middle page", 2, 3, 3, "Book 04"},
		{"short last page", 3, 3, 1, "Book 07"},
		{"limit above total", 1, 50, 7, "Book 01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, total, err := c.Page(tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, 7, total)
			require.Len(t, books, tt.wantLen)
			assert.Equal(t, tt.wantFirst, books[0].Title)
		})
	}
}

func TestCollectionPageBeyondLastIsEmpty(t *testing.T) {
	c := newBookCollection(5)

	books, total, err := c.Page(4, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, books)
}

func TestCollectionPageRejectsNonPositiveBounds(t *testing.T) {
	c := newBookCollection(2)

	for _, tc := range []struct{ page, limit int }{
		{0, 10}, {-1, 10}, {1, 0}, {1, -5}, {0, 0},
	} {
		_, _, err := c.Page(tc.page, tc.limit)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidRange),
			"page=%d limit=%d", tc.page, tc.limit)
	}
}

func TestCollectionPageWhereCountsFilteredSequence(t *testing.T) {
	c := newBookCollection(6)
	for _, id := range []int{2, 4} {
		_, err := c.Apply(id, func(b *models.Book) { b.IsActive = false })
		require.NoError(t, err)
	}

	active := func(b models.Book) bool { return b.IsActive }
	books, total, err := c.PageWhere(active, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, books, 3)
	assert.Equal(t, []int{1, 3, 5}, []int{books[0].ID, books[1].ID, books[2].ID})
}

func TestCollectionApplyPreservesIdentityAndBumpsUpdatedAt(t *testing.T) {
	c := newBookCollection(1)
	before, ok := c.Find(1)
	require.True(t, ok)

	updated, err := c.Apply(1, func(b *models.Book) {
		b.ID = 999
		b.Title = "Renamed"
	})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
}

func TestCollectionApplyEmptyMergeStillBumpsUpdatedAt(t *testing.T) {
	c := newBookCollection(1)
	before, ok := c.Find(1)
	require.True(t, ok)

	updated, err := c.Apply(1, func(b *models.Book) {})
	require.NoError(t, err)

	assert.Equal(t, before.Title, updated.Title)
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
}

func TestCollectionApplyUnknownIDReturnsNotFound(t *testing.T) {
	c := newBookCollection(1)

	_, err := c.Apply(42, func(b *models.Book) {})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCollectionRemoveTakesRecordOut(t *testing.T) {
	c := newBookCollection(3)

	removed, err := c.Remove(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed.ID)

	_, ok := c.Find(2)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	_, err = c.Remove(2)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCollectionDistinctSortsAndDeduplicates(t *testing.T) {
	c := NewCollection[models.Book, *models.Book]()
	for _, cat := range []string{"Databases", "Programming", "", "Databases", "Algorithms"} {
		c.Insert(models.Book{Category: cat})
	}

	got := c.Distinct(func(b models.Book) string { return b.Category })
	assert.Equal(t, []string{"Algorithms", "Databases", "Programming"}, got)
}

func TestCollectionConcurrentInsertsGetUniqueIDs(t *testing.T) {
	c := NewCollection[models.Book, *models.Book]()

	const workers = 64
	var wg sync.WaitGroup
	ids := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := c.Insert(models.Book{Title: fmt.Sprintf("concurrent %d", i)})
			ids <- b.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]struct{}, workers)
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "id %d assigned twice", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, workers, c.Len())
}
