package models

import (
	"strings"
	"time"
)

// Book represents a catalog item sold on the platform. Books use soft
// deletion: removed records stay in the collection with IsActive=false.
type Book struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Author      string    `db:"author" json:"author"`
	ISBN        string    `db:"isbn" json:"isbn"`
	Category    string    `db:"category" json:"category"`
	Price       float64   `db:"price" json:"price"`
	Image       string    `db:"image" json:"image"`
	Stock       int       `db:"stock" json:"stock"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (b *Book) GetID() int               { return b.ID }
func (b *Book) SetID(id int)             { b.ID = id }
func (b *Book) GetCreatedAt() time.Time  { return b.CreatedAt }
func (b *Book) SetCreatedAt(t time.Time) { b.CreatedAt = t }
func (b *Book) GetUpdatedAt() time.Time  { return b.UpdatedAt }
func (b *Book) SetUpdatedAt(t time.Time) { b.UpdatedAt = t }

// BookFilter captures search criteria for books. Absent fields impose no
// constraint; present fields combine conjunctively.
type BookFilter struct {
	Title    string
	Author   string
	Category string
	ISBN     string
	MinPrice *float64
	MaxPrice *float64
	IsActive *bool
	Page     int
	Limit    int
}

// Matches reports whether the book satisfies every present predicate.
func (f BookFilter) Matches(b Book) bool {
	if f.Title != "" && !containsFold(b.Title, f.Title) {
		return false
	}
	if f.Author != "" && !containsFold(b.Author, f.Author) {
		return false
	}
	if f.Category != "" && !containsFold(b.Category, f.Category) {
		return false
	}
	if f.ISBN != "" && !strings.Contains(b.ISBN, f.ISBN) {
		return false
	}
	if f.MinPrice != nil && b.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && b.Price > *f.MaxPrice {
		return false
	}
	if f.IsActive != nil && b.IsActive != *f.IsActive {
		return false
	}
	return true
}

// BookStats summarises the catalog, counting soft-deleted records too.
type BookStats struct {
	Total      int `db:"total" json:"total"`
	Active     int `db:"active" json:"active"`
	Inactive   int `db:"inactive" json:"inactive"`
	TotalStock int `db:"total_stock" json:"totalStock"`
	Categories int `db:"categories" json:"categories"`
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
