package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/feedback-api/internal/models"
	appErrors "github.com/noah-isme/feedback-api/pkg/errors"
)

type feedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.Feedback, error)
	ListAllWithTeacher(ctx context.Context) ([]models.FeedbackWithTeacher, error)
	HasSubmittedToday(ctx context.Context, teacherID int64, studentID string) (bool, error)
}

type rosterReader interface {
	FindByStudentID(ctx context.Context, teacherID int64, studentID string) (*models.Student, error)
}

type feedbackCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const allFeedbackCacheKey = "feedback:all"

func teacherFeedbackCacheKey(teacherID int64) string {
	return fmt.Sprintf("feedback:teacher:%d", teacherID)
}

// FeedbackService records submissions and serves the ledger views.
type FeedbackService struct {
	repo     feedbackRepository
	roster   rosterReader
	cache    feedbackCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewFeedbackService constructs a FeedbackService. cache may be nil to run
// without a listing cache.
func NewFeedbackService(repo feedbackRepository, roster rosterReader, cache feedbackCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, roster: roster, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// HasSubmittedToday reports whether the pair already submitted on the current
// calendar day. It is a convenience gate for the presentation layer; Submit
// does not re-check it, so the two calls are not atomic against a concurrent
// duplicate. Callers needing exactly-once semantics must add a storage-level
// constraint on (teacher, student, date).
func (s *FeedbackService) HasSubmittedToday(ctx context.Context, teacherID int64, studentID string) (bool, error) {
	submitted, err := s.repo.HasSubmittedToday(ctx, teacherID, strings.TrimSpace(studentID))
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check submission")
	}
	return submitted, nil
}

// Submit records feedback for a teacher from a student currently on that
// teacher's roster. The roster's current student name is denormalized into
// the row so it stays readable after the roster entry is removed. Content
// length rules are the caller's responsibility; only referential correctness
// is validated here.
func (s *FeedbackService) Submit(ctx context.Context, teacherID int64, studentID, feedbackText string) (*models.Feedback, error) {
	studentID = strings.TrimSpace(studentID)

	student, err := s.roster.FindByStudentID(ctx, teacherID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not on this teacher's roster")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	fb := &models.Feedback{
		TeacherID:    teacherID,
		StudentID:    &studentID,
		StudentName:  student.StudentName,
		FeedbackText: strings.TrimSpace(feedbackText),
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record feedback")
	}

	s.invalidate(ctx, teacherFeedbackCacheKey(teacherID), allFeedbackCacheKey)
	return fb, nil
}

// ListForTeacher returns a teacher's feedback, newest first.
func (s *FeedbackService) ListForTeacher(ctx context.Context, teacherID int64) ([]models.Feedback, error) {
	key := teacherFeedbackCacheKey(teacherID)

	var cached []models.Feedback
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	start := time.Now()
	items, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	s.metrics.ObserveDBQuery("feedback_list_teacher", time.Since(start))

	s.cacheSet(ctx, key, items)
	return items, nil
}

// ListAll returns every feedback row joined with the receiving teacher's
// display name, newest first.
func (s *FeedbackService) ListAll(ctx context.Context) ([]models.FeedbackWithTeacher, error) {
	var cached []models.FeedbackWithTeacher
	if s.cacheGet(ctx, allFeedbackCacheKey, &cached) {
		return cached, nil
	}

	start := time.Now()
	items, err := s.repo.ListAllWithTeacher(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	s.metrics.ObserveDBQuery("feedback_list_all", time.Since(start))

	s.cacheSet(ctx, allFeedbackCacheKey, items)
	return items, nil
}

// InvalidateTeacher drops cached listings touching the given teacher. The
// teacher directory calls this after a cascade delete.
func (s *FeedbackService) InvalidateTeacher(ctx context.Context, teacherID int64) {
	s.invalidate(ctx, teacherFeedbackCacheKey(teacherID), allFeedbackCacheKey)
}

func (s *FeedbackService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	start := time.Now()
	err := s.cache.Get(ctx, key, dest)
	hit := err == nil
	s.metrics.RecordCacheOperation(hit, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("feedback cache read failed", zap.String("key", key), zap.Error(err))
	}
	return hit
}

func (s *FeedbackService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	start := time.Now()
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("feedback cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.metrics.ObserveCacheWrite(time.Since(start))
}

func (s *FeedbackService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("feedback cache invalidation failed", zap.Error(err))
	}
}
