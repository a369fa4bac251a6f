package store

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/elearn-api/internal/models"
)

// Seed populates the in-memory stores with a starter catalog and a
// default admin account so a fresh instance is usable immediately.
func Seed(ctx context.Context, users *UserStore, books *BookStore, courses *CourseStore) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         "Administrator",
		Email:        "admin@elearn.local",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	seedBooks := []models.Book{
		{
			Title:       "Clean Architecture",
			Description: "A craftsman's guide to software structure and design.",
			Author:      "Robert C. Martin",
			ISBN:        "9780134494166",
			Category:    "Software Engineering",
			Price:       34.99,
			Stock:       12,
			IsActive:    true,
		},
		{
			Title:       "The Go Programming Language",
			Description: "The authoritative resource for writing Go.",
			Author:      "Alan A. A. Donovan",
			ISBN:        "9780134190440",
			Category:    "Programming",
			Price:       39.99,
			Stock:       8,
			IsActive:    true,
		},
		{
			Title:       "Designing Data-Intensive Applications",
			Description: "The big ideas behind reliable, scalable systems.",
			Author:      "Martin Kleppmann",
			ISBN:        "9781449373320",
			Category:    "Databases",
			Price:       44.5,
			Stock:       5,
			IsActive:    true,
		},
	}
	for i := range seedBooks {
		if err := books.Create(ctx, &seedBooks[i]); err != nil {
			return err
		}
	}

	seedCourses := []models.Course{
		{
			Title:               "Backend Development with Go",
			Description:         "Build production APIs from scratch.",
			Instructor:          "Dina Prameswari",
			Duration:            "8 weeks",
			Level:               models.LevelBeginner,
			Category:            "Programming",
			Price:               120,
			MaxParticipants:     30,
			CurrentParticipants: 12,
			IsActive:            true,
		},
		{
			Title:               "Distributed Systems in Practice",
			Description:         "Consensus, replication and failure handling.",
			Instructor:          "Yusuf Hamka",
			Duration:            "10 weeks",
			Level:               models.LevelAdvanced,
			Category:            "Systems",
			Price:               210,
			MaxParticipants:     20,
			CurrentParticipants: 20,
			IsActive:            true,
		},
	}
	for i := range seedCourses {
		if err := courses.Create(ctx, &seedCourses[i]); err != nil {
			return err
		}
	}
	return nil
}
