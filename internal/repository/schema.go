package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SchemaRepository creates and upgrades the durable schema. Init is idempotent
// and runs on every process start before any other query executes.
type SchemaRepository struct {
	db *sqlx.DB
}

// NewSchemaRepository constructs a SchemaRepository.
func NewSchemaRepository(db *sqlx.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id BIGSERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS teachers (
		id BIGSERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT,
		subject TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id BIGSERIAL PRIMARY KEY,
		teacher_id BIGINT NOT NULL REFERENCES teachers (id),
		student_id TEXT NOT NULL,
		student_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (teacher_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id BIGSERIAL PRIMARY KEY,
		teacher_id BIGINT NOT NULL REFERENCES teachers (id),
		student_name TEXT NOT NULL,
		feedback_text TEXT NOT NULL,
		submission_time TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Init creates the four tables when absent, applies the forward-only
// student_id migration on the feedback table and seeds the bootstrap
// administrator when no row with the given username exists.
func (r *SchemaRepository) Init(ctx context.Context, adminUsername, adminPasswordHash string) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if err := r.migrateFeedbackStudentID(ctx); err != nil {
		return err
	}

	return r.seedAdmin(ctx, adminUsername, adminPasswordHash)
}

// migrateFeedbackStudentID adds the nullable student_id column to feedback
// when missing. Legacy rows keep a NULL student_id; the migration never
// rewrites existing data.
func (r *SchemaRepository) migrateFeedbackStudentID(ctx context.Context) error {
	const probe = `SELECT EXISTS (
		SELECT 1 FROM information_schema.columns
		WHERE table_name = 'feedback' AND column_name = 'student_id'
	)`
	var present bool
	if err := r.db.GetContext(ctx, &present, probe); err != nil {
		return fmt.Errorf("probe feedback.student_id: %w", err)
	}
	if present {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `ALTER TABLE feedback ADD COLUMN student_id TEXT`); err != nil {
		return fmt.Errorf("add feedback.student_id: %w", err)
	}
	return nil
}

func (r *SchemaRepository) seedAdmin(ctx context.Context, username, passwordHash string) error {
	const probe = `SELECT EXISTS (SELECT 1 FROM admins WHERE username = $1)`
	var present bool
	if err := r.db.GetContext(ctx, &present, probe, username); err != nil {
		return fmt.Errorf("probe bootstrap admin: %w", err)
	}
	if present {
		return nil
	}
	const insert = `INSERT INTO admins (username, password_hash) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, insert, username, passwordHash); err != nil {
		return fmt.Errorf("seed bootstrap admin: %w", err)
	}
	return nil
}
