package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/feedback-api/internal/models"
)

// FeedbackRepository manages the append-only feedback ledger. Rows are never
// updated; they are removed only by the teacher cascade delete.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create appends a feedback row. The store assigns id and submission_time.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	const query = `INSERT INTO feedback (teacher_id, student_id, student_name, feedback_text)
		VALUES ($1, $2, $3, $4) RETURNING id, submission_time`
	row := r.db.QueryRowxContext(ctx, query, fb.TeacherID, fb.StudentID, fb.StudentName, fb.FeedbackText)
	if err := row.Scan(&fb.ID, &fb.SubmissionTime); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// ListByTeacher returns all feedback for one teacher, newest first.
func (r *FeedbackRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Feedback, error) {
	const query = `SELECT id, teacher_id, student_id, student_name, feedback_text, submission_time
		FROM feedback WHERE teacher_id = $1 ORDER BY submission_time DESC`
	var items []models.Feedback
	if err := r.db.SelectContext(ctx, &items, query, teacherID); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}

// ListAllWithTeacher returns every feedback row joined with the receiving
// teacher's display name, newest first.
func (r *FeedbackRepository) ListAllWithTeacher(ctx context.Context) ([]models.FeedbackWithTeacher, error) {
	const query = `SELECT f.id, f.teacher_id, t.full_name AS teacher_name, f.student_id,
		f.student_name, f.feedback_text, f.submission_time
		FROM feedback f JOIN teachers t ON f.teacher_id = t.id
		ORDER BY f.submission_time DESC`
	var items []models.FeedbackWithTeacher
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list all feedback: %w", err)
	}
	return items, nil
}

// HasSubmittedToday reports whether a feedback row exists for the pair whose
// submission_time falls on the current calendar date in the database's local
// time zone. This is a convenience gate, not an atomic guard; see the service
// layer for the accepted race window.
func (r *FeedbackRepository) HasSubmittedToday(ctx context.Context, teacherID int64, studentID string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM feedback
		WHERE teacher_id = $1 AND student_id = $2
		  AND submission_time::date = CURRENT_DATE
	)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, teacherID, studentID); err != nil {
		return false, fmt.Errorf("check submitted today: %w", err)
	}
	return exists, nil
}
