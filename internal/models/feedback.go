package models

import "time"

// Feedback is an immutable submission record. StudentID and StudentName are
// denormalized at write time so the row stays readable after the roster entry
// is removed. StudentID is nullable for rows written before the column existed.
type Feedback struct {
	ID             int64     `db:"id" json:"id"`
	TeacherID      int64     `db:"teacher_id" json:"teacher_id"`
	StudentID      *string   `db:"student_id" json:"student_id,omitempty"`
	StudentName    string    `db:"student_name" json:"student_name"`
	FeedbackText   string    `db:"feedback_text" json:"feedback_text"`
	SubmissionTime time.Time `db:"submission_time" json:"submission_time"`
}

// FeedbackWithTeacher joins a feedback row with the receiving teacher's
// display name for the administrative view.
type FeedbackWithTeacher struct {
	ID             int64     `db:"id" json:"id"`
	TeacherID      int64     `db:"teacher_id" json:"teacher_id"`
	TeacherName    string    `db:"teacher_name" json:"teacher_name"`
	StudentID      *string   `db:"student_id" json:"student_id,omitempty"`
	StudentName    string    `db:"student_name" json:"student_name"`
	FeedbackText   string    `db:"feedback_text" json:"feedback_text"`
	SubmissionTime time.Time `db:"submission_time" json:"submission_time"`
}
