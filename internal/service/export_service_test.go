package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/feedback-api/internal/models"
	appErrors "github.com/noah-isme/feedback-api/pkg/errors"
	"github.com/noah-isme/feedback-api/pkg/storage"
)

// The export service is wired to the feedback service in main so downloads
// flow through the cached listing.
var _ feedbackLister = (*FeedbackService)(nil)

type mockFeedbackLister struct {
	items []models.FeedbackWithTeacher
}

func (m *mockFeedbackLister) ListAll(ctx context.Context) ([]models.FeedbackWithTeacher, error) {
	return m.items, nil
}

func sampleLedger(n int) []models.FeedbackWithTeacher {
	studentID := "SIDA001"
	items := make([]models.FeedbackWithTeacher, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.FeedbackWithTeacher{
			ID:             int64(i + 1),
			TeacherID:      1,
			TeacherName:    "Mary Smith",
			StudentID:      &studentID,
			StudentName:    "Alice",
			FeedbackText:   "a thoughtful note",
			SubmissionTime: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		})
	}
	return items
}

func TestExportServiceCSV(t *testing.T) {
	svc := NewExportService(&mockFeedbackLister{items: sampleLedger(2)}, nil, 0, zap.NewNop())

	result, err := svc.ExportAll(context.Background(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "feedback.csv", result.Filename)
	assert.Contains(t, string(result.Content), "Mary Smith")
	assert.Contains(t, string(result.Content), "SIDA001")
	assert.Contains(t, string(result.Content), "Submitted At")
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(&mockFeedbackLister{items: sampleLedger(1)}, nil, 0, zap.NewNop())

	result, err := svc.ExportAll(context.Background(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "feedback.pdf", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
}

func TestExportServiceCapsRecords(t *testing.T) {
	svc := NewExportService(&mockFeedbackLister{items: sampleLedger(10)}, nil, 3, zap.NewNop())

	result, err := svc.ExportAll(context.Background(), ExportFormatCSV)
	require.NoError(t, err)

	lines := bytes.Count(bytes.TrimSpace(result.Content), []byte("\n"))
	// header plus three rows
	assert.Equal(t, 3, lines)
}

func TestExportServiceReusesCachedLedger(t *testing.T) {
	repo := &mockFeedbackRepo{}
	cache := newMemoryCache()
	feedbackSvc := NewFeedbackService(repo, &mockRosterReader{}, cache, time.Minute, nil, zap.NewNop())
	svc := NewExportService(feedbackSvc, nil, 0, zap.NewNop())
	ctx := context.Background()

	_, err := svc.ExportAll(ctx, ExportFormatCSV)
	require.NoError(t, err)
	_, err = svc.ExportAll(ctx, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second export must come from the cached listing")
}

func TestExportServiceArchivesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	archive, err := storage.NewArchive(dir, time.Hour)
	require.NoError(t, err)

	stale := filepath.Join(dir, "20260101T000000Z_feedback.csv")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	svc := NewExportService(&mockFeedbackLister{items: sampleLedger(1)}, archive, 0, zap.NewNop())
	_, err = svc.ExportAll(context.Background(), ExportFormatCSV)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "stale copy pruned, fresh copy kept")
	assert.Contains(t, entries[0].Name(), "feedback.csv")
	assert.NotEqual(t, "20260101T000000Z_feedback.csv", entries[0].Name())
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockFeedbackLister{}, nil, 0, zap.NewNop())

	_, err := svc.ExportAll(context.Background(), "xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
