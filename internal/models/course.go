package models

import (
	"strings"
	"time"
)

// CourseLevel is the closed difficulty enumeration.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "Beginner"
	LevelIntermediate CourseLevel = "Intermediate"
	LevelAdvanced     CourseLevel = "Advanced"
)

// ValidCourseLevel reports whether the value belongs to the closed set.
func ValidCourseLevel(level string) bool {
	switch CourseLevel(level) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Course represents a class offered on the platform. Courses are hard
// deleted: removal takes the record out of the collection entirely.
type Course struct {
	ID                  int         `db:"id" json:"id"`
	Title               string      `db:"title" json:"title"`
	Description         string      `db:"description" json:"description"`
	Image               string      `db:"image" json:"image"`
	Instructor          string      `db:"instructor" json:"instructor"`
	Duration            string      `db:"duration" json:"duration"`
	Level               CourseLevel `db:"level" json:"level"`
	Category            string      `db:"category" json:"category"`
	Price               float64     `db:"price" json:"price"`
	MaxParticipants     int         `db:"max_participants" json:"max_participants"`
	CurrentParticipants int         `db:"current_participants" json:"current_participants"`
	IsActive            bool        `db:"is_active" json:"is_active"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

func (c *Course) GetID() int               { return c.ID }
func (c *Course) SetID(id int)             { c.ID = id }
func (c *Course) GetCreatedAt() time.Time  { return c.CreatedAt }
func (c *Course) SetCreatedAt(t time.Time) { c.CreatedAt = t }
func (c *Course) GetUpdatedAt() time.Time  { return c.UpdatedAt }
func (c *Course) SetUpdatedAt(t time.Time) { c.UpdatedAt = t }

// CourseFilter captures search criteria for courses.
type CourseFilter struct {
	Title      string
	Instructor string
	Category   string
	Level      string
	MinPrice   *float64
	MaxPrice   *float64
	IsActive   *bool
	Page       int
	Limit      int
}

// Matches reports whether the course satisfies every present predicate.
// Level is an exact match, compared case-insensitively.
func (f CourseFilter) Matches(c Course) bool {
	if f.Title != "" && !containsFold(c.Title, f.Title) {
		return false
	}
	if f.Instructor != "" && !containsFold(c.Instructor, f.Instructor) {
		return false
	}
	if f.Category != "" && !containsFold(c.Category, f.Category) {
		return false
	}
	if f.Level != "" && !strings.EqualFold(string(c.Level), f.Level) {
		return false
	}
	if f.MinPrice != nil && c.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && c.Price > *f.MaxPrice {
		return false
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	return true
}
