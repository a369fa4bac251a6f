package store

import (
	"sort"
	"sync"
	"time"

	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// entity constrains collection element pointers to records carrying an
// integer id and timestamps.
type entity[T any] interface {
	*T
	GetID() int
	SetID(id int)
	GetCreatedAt() time.Time
	SetCreatedAt(t time.Time)
	GetUpdatedAt() time.Time
	SetUpdatedAt(t time.Time)
}

// Collection is an in-memory, insertion-ordered record collection shared by
// every resource type. A single mutex guards each read-modify-write
// sequence: id assignment, lookups and merges are atomic with respect to
// concurrent callers, and merges never expose a half-written record.
type Collection[T any, PT entity[T]] struct {
	mu      sync.Mutex
	records []T
}

// NewCollection builds an empty collection.
func NewCollection[T any, PT entity[T]]() *Collection[T, PT] {
	return &Collection[T, PT]{}
}

// Insert assigns the next id (max existing id + 1), stamps both timestamps
// and appends the record in insertion order. The stored copy is returned.
func (c *Collection[T, PT]) Insert(record T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	maxID := 0
	for i := range c.records {
		if id := PT(&c.records[i]).GetID(); id > maxID {
			maxID = id
		}
	}

	now := time.Now().UTC()
	p := PT(&record)
	p.SetID(maxID + 1)
	p.SetCreatedAt(now)
	p.SetUpdatedAt(now)

	c.records = append(c.records, record)
	return record
}

// Page returns the [(page-1)*limit, page*limit) window over the full
// collection in insertion order, along with the total record count.
func (c *Collection[T, PT]) Page(page, limit int) ([]T, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return paginate(c.records, page, limit)
}

// PageWhere filters the collection with the provided predicate and then
// applies the same slicing rule over the filtered sequence.
func (c *Collection[T, PT]) PageWhere(match func(T) bool, page, limit int) ([]T, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := make([]T, 0, len(c.records))
	for _, r := range c.records {
		if match(r) {
			filtered = append(filtered, r)
		}
	}
	return paginate(filtered, page, limit)
}

// Find returns a copy of the record with the given id. Absence is not an
// error at this layer.
func (c *Collection[T, PT]) Find(id int) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.records {
		if PT(&c.records[i]).GetID() == id {
			return c.records[i], true
		}
	}
	var zero T
	return zero, false
}

// First returns a copy of the first record matching the predicate.
func (c *Collection[T, PT]) First(match func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.records {
		if match(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Apply merges changes into the record with the given id under the
// collection lock. The merge runs on a copy and the copy replaces the stored
// record only when the merge completes, so a failed caller never leaves a
// partially mutated record behind. The updated_at stamp strictly increases;
// created_at and the id are preserved regardless of what the merge touched.
func (c *Collection[T, PT]) Apply(id int, merge func(PT)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.records {
		if PT(&c.records[i]).GetID() != id {
			continue
		}
		previous := c.records[i]
		updated := previous
		p := PT(&updated)
		merge(p)
		p.SetID(id)
		p.SetCreatedAt(PT(&previous).GetCreatedAt())
		p.SetUpdatedAt(stampAfter(PT(&previous).GetUpdatedAt()))
		c.records[i] = updated
		return updated, nil
	}

	var zero T
	return zero, appErrors.Clone(appErrors.ErrNotFound, "")
}

// Remove hard-deletes the record with the given id, returning the removed
// copy. Insert derives ids from the surviving maximum, matching the
// observed assignment rule (max existing id + 1).
func (c *Collection[T, PT]) Remove(id int) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.records {
		if PT(&c.records[i]).GetID() != id {
			continue
		}
		removed := c.records[i]
		c.records = append(c.records[:i], c.records[i+1:]...)
		return removed, nil
	}

	var zero T
	return zero, appErrors.Clone(appErrors.ErrNotFound, "")
}

// Distinct returns the sorted unique set of the extracted value across all
// records, inactive ones included.
func (c *Collection[T, PT]) Distinct(value func(T) string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(c.records))
	for _, r := range c.records {
		if v := value(r); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// All returns a snapshot copy of every record in insertion order.
func (c *Collection[T, PT]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]T, len(c.records))
	copy(snapshot, c.records)
	return snapshot
}

// Len reports the current record count.
func (c *Collection[T, PT]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func paginate[T any](records []T, page, limit int) ([]T, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}

	total := len(records)
	start := (page - 1) * limit
	if start >= total {
		return []T{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]T, end-start)
	copy(items, records[start:end])
	return items, total, nil
}

// stampAfter returns a timestamp strictly later than the previous one even
// under coarse clock granularity.
func stampAfter(previous time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(previous) {
		return previous.Add(time.Nanosecond)
	}
	return now
}
