package models

import "time"

// Teacher represents an instructor account that owns a student roster and
// receives feedback submissions.
type Teacher struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Subject      *string   `db:"subject" json:"subject,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicTeacher is the credential-free projection served to the feedback page.
type PublicTeacher struct {
	ID       int64   `db:"id" json:"id"`
	FullName string  `db:"full_name" json:"full_name"`
	Subject  *string `db:"subject" json:"subject,omitempty"`
}
