package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/feedback-api/internal/models"
	appErrors "github.com/noah-isme/feedback-api/pkg/errors"
)

type mockTeacherDirectoryRepo struct {
	teachers map[int64]models.Teacher
	nextID   int64
	deleted  []int64
}

func newMockTeacherDirectoryRepo() *mockTeacherDirectoryRepo {
	return &mockTeacherDirectoryRepo{teachers: make(map[int64]models.Teacher)}
}

func (m *mockTeacherDirectoryRepo) List(ctx context.Context) ([]models.Teacher, error) {
	out := make([]models.Teacher, 0, len(m.teachers))
	for _, t := range m.teachers {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTeacherDirectoryRepo) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherDirectoryRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	for _, existing := range m.teachers {
		if existing.Username == teacher.Username {
			return &pq.Error{Code: "23505"}
		}
	}
	m.nextID++
	teacher.ID = m.nextID
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherDirectoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.teachers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.teachers, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockInvalidator struct {
	invalidated []int64
}

func (m *mockInvalidator) InvalidateTeacher(ctx context.Context, teacherID int64) {
	m.invalidated = append(m.invalidated, teacherID)
}

func TestTeacherServiceCreate(t *testing.T) {
	repo := newMockTeacherDirectoryRepo()
	svc := NewTeacherService(repo, nil, nil, zap.NewNop())

	email := "mary@example.com"
	teacher, err := svc.Create(context.Background(), CreateTeacherRequest{
		Username: "msmith",
		Password: "secret1",
		FullName: "Mary Smith",
		Email:    &email,
	})
	require.NoError(t, err)
	assert.NotZero(t, teacher.ID)
	assert.Equal(t, HashPassword("secret1"), teacher.PasswordHash)
	require.NotNil(t, teacher.Email)
	assert.Equal(t, "mary@example.com", *teacher.Email)
	assert.Nil(t, teacher.Subject)
}

func TestTeacherServiceCreateValidation(t *testing.T) {
	svc := NewTeacherService(newMockTeacherDirectoryRepo(), nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateTeacherRequest{Username: "msmith", Password: "short", FullName: "Mary"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	bad := "not-an-email"
	_, err = svc.Create(context.Background(), CreateTeacherRequest{Username: "msmith", Password: "secret1", FullName: "Mary", Email: &bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTeacherServiceCreateDuplicateUsername(t *testing.T) {
	repo := newMockTeacherDirectoryRepo()
	svc := NewTeacherService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTeacherRequest{Username: "msmith", Password: "secret1", FullName: "Mary"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateTeacherRequest{Username: "msmith", Password: "secret2", FullName: "Other"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestTeacherServiceGetPublicOmitsCredentials(t *testing.T) {
	repo := newMockTeacherDirectoryRepo()
	subject := "Math"
	repo.teachers[3] = models.Teacher{ID: 3, Username: "msmith", PasswordHash: "digest", FullName: "Mary Smith", Subject: &subject}
	svc := NewTeacherService(repo, nil, nil, zap.NewNop())

	public, err := svc.GetPublic(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), public.ID)
	assert.Equal(t, "Mary Smith", public.FullName)
	require.NotNil(t, public.Subject)
	assert.Equal(t, "Math", *public.Subject)
}

func TestTeacherServiceGetNotFound(t *testing.T) {
	svc := NewTeacherService(newMockTeacherDirectoryRepo(), nil, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTeacherServiceDelete(t *testing.T) {
	repo := newMockTeacherDirectoryRepo()
	repo.teachers[3] = models.Teacher{ID: 3, Username: "msmith", FullName: "Mary Smith"}
	invalidator := &mockInvalidator{}
	svc := NewTeacherService(repo, invalidator, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), 3))
	assert.Contains(t, repo.deleted, int64(3))
	assert.Contains(t, invalidator.invalidated, int64(3))
}

func TestTeacherServiceDeleteNotFound(t *testing.T) {
	invalidator := &mockInvalidator{}
	svc := NewTeacherService(newMockTeacherDirectoryRepo(), invalidator, nil, zap.NewNop())

	err := svc.Delete(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, invalidator.invalidated)
}
