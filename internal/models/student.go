package models

import "time"

// Student is one roster entry. StudentID is the human-readable identifier
// (e.g. SIDA001) and is unique within a teacher's roster, never globally.
type Student struct {
	ID          int64     `db:"id" json:"id"`
	TeacherID   int64     `db:"teacher_id" json:"teacher_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
