package models

import "time"

// Admin represents an administrator account. The first row is seeded during
// schema initialization and is never deleted by the engine.
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
