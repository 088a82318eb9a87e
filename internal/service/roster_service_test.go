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

type mockRosterRepo struct {
	students map[string]models.Student
	nextID   int64
	listErr  error
	// staleIDs, when set, is what ListStudentIDs reports regardless of the
	// actual map contents, simulating a roster scan raced by another writer.
	staleIDs []string
}

func newMockRosterRepo() *mockRosterRepo {
	return &mockRosterRepo{students: make(map[string]models.Student)}
}

func (m *mockRosterRepo) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Student, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Student
	for _, s := range m.students {
		if s.TeacherID == teacherID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRosterRepo) ListStudentIDs(ctx context.Context, teacherID int64) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.staleIDs != nil {
		return m.staleIDs, nil
	}
	var ids []string
	for _, s := range m.students {
		if s.TeacherID == teacherID {
			ids = append(ids, s.StudentID)
		}
	}
	return ids, nil
}

func (m *mockRosterRepo) FindByStudentID(ctx context.Context, teacherID int64, studentID string) (*models.Student, error) {
	if s, ok := m.students[studentID]; ok && s.TeacherID == teacherID {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRosterRepo) Create(ctx context.Context, student *models.Student) error {
	if existing, ok := m.students[student.StudentID]; ok && existing.TeacherID == student.TeacherID {
		return &pq.Error{Code: "23505"}
	}
	m.nextID++
	student.ID = m.nextID
	m.students[student.StudentID] = *student
	return nil
}

func (m *mockRosterRepo) Delete(ctx context.Context, teacherID int64, studentID string) error {
	if s, ok := m.students[studentID]; ok && s.TeacherID == teacherID {
		delete(m.students, studentID)
		return nil
	}
	return sql.ErrNoRows
}

func TestRosterServiceAddStudent(t *testing.T) {
	repo := newMockRosterRepo()
	svc := NewRosterService(repo, zap.NewNop())

	student, err := svc.AddStudent(context.Background(), 1, "  SIDA001 ", "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "SIDA001", student.StudentID)
	assert.Equal(t, "Alice", student.StudentName)
	assert.NotZero(t, student.ID)
}

func TestRosterServiceAddStudentValidation(t *testing.T) {
	svc := NewRosterService(newMockRosterRepo(), zap.NewNop())

	_, err := svc.AddStudent(context.Background(), 1, "  ", "Alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.AddStudent(context.Background(), 1, "SIDA001", "  ")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRosterServiceAddStudentDuplicate(t *testing.T) {
	repo := newMockRosterRepo()
	svc := NewRosterService(repo, zap.NewNop())

	_, err := svc.AddStudent(context.Background(), 1, "SIDA001", "Alice")
	require.NoError(t, err)

	_, err = svc.AddStudent(context.Background(), 1, "SIDA001", "Bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestRosterServiceAddStudentAutoDistinct(t *testing.T) {
	repo := newMockRosterRepo()
	svc := NewRosterService(repo, zap.NewNop())

	first, err := svc.AddStudentAuto(context.Background(), 1, "Alice")
	require.NoError(t, err)
	second, err := svc.AddStudentAuto(context.Background(), 1, "Bob")
	require.NoError(t, err)

	assert.Equal(t, "SIDA001", first.StudentID)
	assert.Equal(t, "SIDA002", second.StudentID)
	assert.NotEqual(t, first.StudentID, second.StudentID)
}

func TestRosterServiceAddStudentAutoAfterLegacyIDs(t *testing.T) {
	repo := newMockRosterRepo()
	repo.students["SID001"] = models.Student{ID: 1, TeacherID: 1, StudentID: "SID001", StudentName: "Old A"}
	repo.students["SID002"] = models.Student{ID: 2, TeacherID: 1, StudentID: "SID002", StudentName: "Old B"}
	svc := NewRosterService(repo, zap.NewNop())

	student, err := svc.AddStudentAuto(context.Background(), 1, "Carol")
	require.NoError(t, err)
	assert.Equal(t, "SIDA003", student.StudentID)
}

func TestRosterServiceAddStudentAutoNoReuseAfterDelete(t *testing.T) {
	repo := newMockRosterRepo()
	svc := NewRosterService(repo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddStudentAuto(ctx, 1, "Alice")
	require.NoError(t, err)
	second, err := svc.AddStudentAuto(ctx, 1, "Bob")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, second.StudentID))

	third, err := svc.AddStudentAuto(ctx, 1, "Carol")
	require.NoError(t, err)
	assert.Equal(t, "SIDA002", third.StudentID)
}

func TestRosterServiceAddStudentAutoRetriesOnCollision(t *testing.T) {
	repo := newMockRosterRepo()
	// The scan reports only SIDA001, but a concurrent writer already claimed
	// SIDA002. The insert must retry past the conflict instead of failing.
	repo.staleIDs = []string{"SIDA001"}
	repo.students["SIDA001"] = models.Student{ID: 9, TeacherID: 1, StudentID: "SIDA001", StudentName: "Manual"}
	repo.students["SIDA002"] = models.Student{ID: 10, TeacherID: 1, StudentID: "SIDA002", StudentName: "Taken"}
	svc := NewRosterService(repo, zap.NewNop())

	student, err := svc.AddStudentAuto(context.Background(), 1, "Dave")
	require.NoError(t, err)
	assert.Equal(t, "SIDA003", student.StudentID)
}

func TestRosterServiceAddStudentAutoUsesTeacherNamespace(t *testing.T) {
	repo := newMockRosterRepo()
	svc := NewRosterService(repo, zap.NewNop())

	student, err := svc.AddStudentAuto(context.Background(), 27, "Eve")
	require.NoError(t, err)
	assert.Equal(t, "SIDAA001", student.StudentID)
}

func TestRosterServiceGetNotFound(t *testing.T) {
	svc := NewRosterService(newMockRosterRepo(), zap.NewNop())

	_, err := svc.Get(context.Background(), 1, "SIDA404")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRosterServiceDeleteNotFound(t *testing.T) {
	svc := NewRosterService(newMockRosterRepo(), zap.NewNop())

	err := svc.Delete(context.Background(), 1, "SIDA404")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
