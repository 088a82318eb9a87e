package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/feedback-api/internal/models"
)

func TestFeedbackRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	studentID := "SIDA001"
	mock.ExpectQuery("INSERT INTO feedback").
		WithArgs(int64(1), &studentID, "Alice", "a thoughtful note").
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_time"}).AddRow(11, time.Now()))

	fb := &models.Feedback{TeacherID: 1, StudentID: &studentID, StudentName: "Alice", FeedbackText: "a thoughtful note"}
	require.NoError(t, repo.Create(context.Background(), fb))
	assert.Equal(t, int64(11), fb.ID)
	assert.False(t, fb.SubmissionTime.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "student_id", "student_name", "feedback_text", "submission_time"}).
		AddRow(2, 1, "SIDA001", "Alice", "newer", time.Now()).
		AddRow(1, 1, nil, "Legacy Student", "older", time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM feedback WHERE teacher_id = $1 ORDER BY submission_time DESC")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	items, err := repo.ListByTeacher(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].StudentID)
	assert.Equal(t, "SIDA001", *items[0].StudentID)
	assert.Nil(t, items[1].StudentID, "legacy rows carry no student id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListAllWithTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "teacher_name", "student_id", "student_name", "feedback_text", "submission_time"}).
		AddRow(1, 1, "Mary Smith", "SIDA001", "Alice", "text", time.Now())
	mock.ExpectQuery("JOIN teachers t ON f.teacher_id = t.id").
		WillReturnRows(rows)

	items, err := repo.ListAllWithTeacher(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Mary Smith", items[0].TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryHasSubmittedToday(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("submission_time::date = CURRENT_DATE")).
		WithArgs(int64(1), "SIDA001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	submitted, err := repo.HasSubmittedToday(context.Background(), 1, "SIDA001")
	require.NoError(t, err)
	assert.True(t, submitted)

	mock.ExpectQuery(regexp.QuoteMeta("submission_time::date = CURRENT_DATE")).
		WithArgs(int64(1), "SIDA002").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	submitted, err = repo.HasSubmittedToday(context.Background(), 1, "SIDA002")
	require.NoError(t, err)
	assert.False(t, submitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
