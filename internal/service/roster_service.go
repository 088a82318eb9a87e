package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/feedback-api/internal/models"
	"github.com/noah-isme/feedback-api/internal/repository"
	appErrors "github.com/noah-isme/feedback-api/pkg/errors"
)

type rosterRepository interface {
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.Student, error)
	ListStudentIDs(ctx context.Context, teacherID int64) ([]string, error)
	FindByStudentID(ctx context.Context, teacherID int64, studentID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, teacherID int64, studentID string) error
}

// RosterService owns per-teacher student records and identifier generation.
type RosterService struct {
	repo   rosterRepository
	logger *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(repo rosterRepository, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, logger: logger}
}

// AddStudent inserts a roster entry under a caller-chosen identifier. Both
// fields are trimmed before the uniqueness check; a duplicate
// (teacher, student_id) pair yields a conflict.
func (s *RosterService) AddStudent(ctx context.Context, teacherID int64, studentID, studentName string) (*models.Student, error) {
	studentID = strings.TrimSpace(studentID)
	studentName = strings.TrimSpace(studentName)
	if studentID == "" || studentName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id and name are required")
	}

	student := &models.Student{TeacherID: teacherID, StudentID: studentID, StudentName: studentName}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student id already on roster")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add student")
	}
	return student, nil
}

// AddStudentAuto inserts a roster entry under a generated identifier. The
// sequence starts past the highest number already observed and the insert is
// retried with an incremented sequence whenever the storage layer reports the
// candidate as taken, so concurrent callers serialize through the unique
// constraint and never share an identifier.
func (s *RosterService) AddStudentAuto(ctx context.Context, teacherID int64, studentName string) (*models.Student, error) {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student name is required")
	}

	existing, err := s.repo.ListStudentIDs(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan roster identifiers")
	}

	letterCode := TeacherLetterCode(teacherID)
	seq := NextSequence(letterCode, existing)

	for {
		student := &models.Student{
			TeacherID:   teacherID,
			StudentID:   FormatStudentID(letterCode, seq),
			StudentName: studentName,
		}
		err := s.repo.Create(ctx, student)
		if err == nil {
			return student, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add student")
		}
		s.logger.Debug("generated student id taken, retrying",
			zap.Int64("teacher_id", teacherID), zap.String("student_id", student.StudentID))
		seq++
	}
}

// List returns a teacher's roster, newest first.
func (s *RosterService) List(ctx context.Context, teacherID int64) ([]models.Student, error) {
	students, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one roster entry by its per-teacher identifier.
func (s *RosterService) Get(ctx context.Context, teacherID int64, studentID string) (*models.Student, error) {
	student, err := s.repo.FindByStudentID(ctx, teacherID, strings.TrimSpace(studentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Delete removes one roster entry. Feedback already submitted under the
// identifier stays in the ledger untouched.
func (s *RosterService) Delete(ctx context.Context, teacherID int64, studentID string) error {
	if err := s.repo.Delete(ctx, teacherID, strings.TrimSpace(studentID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
