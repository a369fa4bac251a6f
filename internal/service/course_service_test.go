package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/store"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

func newCourseService(t *testing.T) *CourseService {
	t.Helper()
	return NewCourseService(store.NewCourseStore(), nil, time.Minute, validator.New(), zap.NewNop())
}

func validCourse() CreateCourseRequest {
	return CreateCourseRequest{
		Title:           "Go Basics",
		Instructor:      "Ana",
		Level:           "Beginner",
		Category:        "Programming",
		Price:           100,
		MaxParticipants: 10,
	}
}

func TestCourseServiceCreateRejectsUnknownLevel(t *testing.T) {
	svc := newCourseService(t)

	req := validCourse()
	req.Level = "Expert"
	_, err := svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCourseServiceCreateRejectsZeroCapacity(t *testing.T) {
	svc := newCourseService(t)

	req := validCourse()
	req.MaxParticipants = 0
	_, err := svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCourseServiceCreateRejectsOverCapacity(t *testing.T) {
	svc := newCourseService(t)

	req := validCourse()
	req.CurrentParticipants = 11
	_, err := svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCapacityExceeded))
}

func TestCourseServiceUpdateParticipantsWithinCapacity(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)

	n := 10
	updated, err := svc.UpdateParticipants(ctx, created.ID, UpdateParticipantsRequest{CurrentParticipants: &n})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.CurrentParticipants)

	over := 11
	_, err = svc.UpdateParticipants(ctx, created.ID, UpdateParticipantsRequest{CurrentParticipants: &over})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCapacityExceeded))
}

func TestCourseServiceUpdateShrinkingCapacityBelowEnrollment(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()

	req := validCourse()
	req.CurrentParticipants = 8
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)

	smaller := 5
	_, err = svc.Update(ctx, created.ID, UpdateCourseRequest{MaxParticipants: &smaller})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCapacityExceeded))
}

func TestCourseServiceUpdateStatus(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateStatus(ctx, created.ID, UpdateCourseStatusRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestCourseServiceDeleteRemovesRecord(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)

	_, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCourseServiceEmptyUpdateIsIdempotent(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateCourseRequest{})
	require.NoError(t, err)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}
