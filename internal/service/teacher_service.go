package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/feedback-api/internal/models"
	"github.com/noah-isme/feedback-api/internal/repository"
	appErrors "github.com/noah-isme/feedback-api/pkg/errors"
)

type teacherDirectoryRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
}

type feedbackInvalidator interface {
	InvalidateTeacher(ctx context.Context, teacherID int64)
}

// CreateTeacherRequest represents the payload for creating teacher accounts.
type CreateTeacherRequest struct {
	Username string  `json:"username" validate:"required,max=100"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName string  `json:"full_name" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Subject  *string `json:"subject" validate:"omitempty,max=200"`
}

// TeacherService manages teacher accounts for administrators.
type TeacherService struct {
	repo      teacherDirectoryRepository
	feedback  feedbackInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService. feedback may be nil when no
// listing cache is in play.
func NewTeacherService(repo teacherDirectoryRepository, feedback feedbackInvalidator, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, feedback: feedback, validator: validate, logger: logger}
}

// List returns all teacher accounts.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Get returns a teacher account by id.
func (s *TeacherService) Get(ctx context.Context, id int64) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// GetPublic returns the credential-free teacher projection served to the
// public feedback page.
func (s *TeacherService) GetPublic(ctx context.Context, id int64) (*models.PublicTeacher, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PublicTeacher{ID: teacher.ID, FullName: teacher.FullName, Subject: teacher.Subject}, nil
}

// Create registers a new teacher account. The password is stored as its
// digest; a duplicate username yields a conflict.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher := &models.Teacher{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: HashPassword(req.Password),
		FullName:     strings.TrimSpace(req.FullName),
	}
	teacher.Email = normalizeOptional(req.Email)
	teacher.Subject = normalizeOptional(req.Subject)

	if err := s.repo.Create(ctx, teacher); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already used")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Delete removes a teacher together with every feedback row addressed to
// them. The repository runs both deletes in one transaction, so a failure
// never leaves orphaned partial state. Storage faults propagate typed rather
// than collapsing into a silent failure.
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	if s.feedback != nil {
		s.feedback.InvalidateTeacher(ctx, id)
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
