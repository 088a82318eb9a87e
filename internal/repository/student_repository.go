package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/feedback-api/internal/models"
)

// StudentRepository manages persistence for per-teacher student rosters.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByTeacher returns a teacher's roster, newest first.
func (r *StudentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Student, error) {
	const query = `SELECT id, teacher_id, student_id, student_name, created_at
		FROM students WHERE teacher_id = $1 ORDER BY created_at DESC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, teacherID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListStudentIDs returns every student identifier on a teacher's roster.
// Identifier generation scans this set to derive the next sequence number.
func (r *StudentRepository) ListStudentIDs(ctx context.Context, teacherID int64) ([]string, error) {
	const query = `SELECT student_id FROM students WHERE teacher_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, teacherID); err != nil {
		return nil, fmt.Errorf("list student ids: %w", err)
	}
	return ids, nil
}

// FindByStudentID fetches one roster entry by its per-teacher identifier.
// Returns sql.ErrNoRows when absent.
func (r *StudentRepository) FindByStudentID(ctx context.Context, teacherID int64, studentID string) (*models.Student, error) {
	const query = `SELECT id, teacher_id, student_id, student_name, created_at
		FROM students WHERE teacher_id = $1 AND student_id = $2`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, teacherID, studentID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a roster entry. The UNIQUE (teacher_id, student_id)
// constraint is the authority on duplicates; callers classify violations
// via IsUniqueViolation.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (teacher_id, student_id, student_name)
		VALUES ($1, $2, $3) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, student.TeacherID, student.StudentID, student.StudentName)
	if err := row.Scan(&student.ID, &student.CreatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Delete removes one roster entry. Returns sql.ErrNoRows when nothing matched.
func (r *StudentRepository) Delete(ctx context.Context, teacherID int64, studentID string) error {
	const query = `DELETE FROM students WHERE teacher_id = $1 AND student_id = $2`
	res, err := r.db.ExecContext(ctx, query, teacherID, studentID)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
