package models

import "time"

// UserRole represents the available roles. The privileged set is fixed at
// compile time.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// User represents an application user. Users are hard deleted.
type User struct {
	ID             int       `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Role           UserRole  `db:"role" json:"role"`
	BirthDate      string    `db:"birth_date" json:"birth_date,omitempty"`
	Graduated      bool      `db:"graduated" json:"graduated"`
	OverallScore   int       `db:"overall_score" json:"overall_score"`
	ProfilePicture string    `db:"profile_picture" json:"profile_picture,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) GetID() int               { return u.ID }
func (u *User) SetID(id int)             { u.ID = id }
func (u *User) GetCreatedAt() time.Time  { return u.CreatedAt }
func (u *User) SetCreatedAt(t time.Time) { u.CreatedAt = t }
func (u *User) GetUpdatedAt() time.Time  { return u.UpdatedAt }
func (u *User) SetUpdatedAt(t time.Time) { u.UpdatedAt = t }

// UserFilter captures search criteria for listing users.
type UserFilter struct {
	Name      string
	Email     string
	Role      string
	Graduated *bool
	Page      int
	Limit     int
}

// Matches reports whether the user satisfies every present predicate.
func (f UserFilter) Matches(u User) bool {
	if f.Name != "" && !containsFold(u.Name, f.Name) {
		return false
	}
	if f.Email != "" && !containsFold(u.Email, f.Email) {
		return false
	}
	if f.Role != "" && string(u.Role) != f.Role {
		return false
	}
	if f.Graduated != nil && u.Graduated != *f.Graduated {
		return false
	}
	return true
}
