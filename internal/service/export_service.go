package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/feedback-api/internal/models"
	appErrors "github.com/noah-isme/feedback-api/pkg/errors"
	"github.com/noah-isme/feedback-api/pkg/export"
	"github.com/noah-isme/feedback-api/pkg/storage"
)

type feedbackLister interface {
	ListAll(ctx context.Context) ([]models.FeedbackWithTeacher, error)
}

// Export formats supported by the admin endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportResult carries rendered bytes plus HTTP delivery metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the administrative feedback view as a download.
type ExportService struct {
	feedback   feedbackLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	archive    *storage.Archive
	maxRecords int
	logger     *zap.Logger
}

// NewExportService constructs an ExportService. archive may be nil to skip
// keeping on-disk copies of generated downloads.
func NewExportService(feedback feedbackLister, archive *storage.Archive, maxRecords int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		feedback:   feedback,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		archive:    archive,
		maxRecords: maxRecords,
		logger:     logger,
	}
}

// ExportAll renders all feedback in the requested format.
func (s *ExportService) ExportAll(ctx context.Context, format string) (*ExportResult, error) {
	items, err := s.feedback.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if s.maxRecords > 0 && len(items) > s.maxRecords {
		items = items[:s.maxRecords]
	}

	table := buildFeedbackTable(items)

	var result *ExportResult
	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		result = &ExportResult{Content: content, ContentType: "text/csv", Filename: "feedback.csv"}
	case ExportFormatPDF:
		content, err := s.pdf.Render(table, "Feedback Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		result = &ExportResult{Content: content, ContentType: "application/pdf", Filename: "feedback.pdf"}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	if s.archive != nil {
		if name, err := s.archive.Save(result.Filename, result.Content); err != nil {
			s.logger.Warn("failed to archive export", zap.Error(err))
		} else {
			s.logger.Info("archived export", zap.String("file", name))
		}
		if pruned, err := s.archive.Cleanup(); err != nil {
			s.logger.Warn("failed to prune export archive", zap.Error(err))
		} else if len(pruned) > 0 {
			s.logger.Info("pruned export archive", zap.Int("files", len(pruned)))
		}
	}
	return result, nil
}

func buildFeedbackTable(items []models.FeedbackWithTeacher) export.Table {
	table := export.Table{
		Headers: []string{"ID", "Teacher", "Student ID", "Student", "Feedback", "Submitted At"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, item := range items {
		studentID := ""
		if item.StudentID != nil {
			studentID = *item.StudentID
		}
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.TeacherName,
			studentID,
			item.StudentName,
			item.FeedbackText,
			item.SubmissionTime.Format("2006-01-02 15:04:05"),
		})
	}
	return table
}
