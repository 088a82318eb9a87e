package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/feedback-api/internal/models"
)

// TeacherRepository manages persistence for teacher accounts.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns all teachers, newest first.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, username, password_hash, full_name, email, subject, created_at
		FROM teachers ORDER BY created_at DESC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by ID. Returns sql.ErrNoRows when absent.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	const query = `SELECT id, username, password_hash, full_name, email, subject, created_at
		FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByUsername fetches a teacher by exact username match.
// Returns sql.ErrNoRows when absent.
func (r *TeacherRepository) FindByUsername(ctx context.Context, username string) (*models.Teacher, error) {
	const query = `SELECT id, username, password_hash, full_name, email, subject, created_at
		FROM teachers WHERE username = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, username); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a new teacher record. The store assigns id and created_at.
// Callers classify duplicate usernames via IsUniqueViolation.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	const query = `INSERT INTO teachers (username, password_hash, full_name, email, subject)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		teacher.Username, teacher.PasswordHash, teacher.FullName, teacher.Email, teacher.Subject)
	if err := row.Scan(&teacher.ID, &teacher.CreatedAt); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher and all feedback addressed to them in a single
// transaction. The feedback rows go first so the foreign key is never
// violated; any failure rolls the whole operation back.
// Returns sql.ErrNoRows when the teacher does not exist.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin teacher delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM feedback WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher feedback: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher roster: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete teacher rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit teacher delete: %w", err)
	}
	return nil
}
