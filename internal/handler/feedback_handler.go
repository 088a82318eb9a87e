package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/feedback-api/internal/service"
	"github.com/noah-isme/feedback-api/pkg/config"
	appErrors "github.com/noah-isme/feedback-api/pkg/errors"
	"github.com/noah-isme/feedback-api/pkg/response"
)

// FeedbackHandler exposes the public submission flow plus the teacher and
// admin ledger views. Word-count bounds and the has-submitted-today gate are
// enforced here at the presentation boundary; the engine below validates only
// referential correctness.
type FeedbackHandler struct {
	feedback *service.FeedbackService
	teachers *service.TeacherService
	roster   *service.RosterService
	exports  *service.ExportService
	limits   config.FeedbackConfig
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(feedback *service.FeedbackService, teachers *service.TeacherService, roster *service.RosterService, exports *service.ExportService, limits config.FeedbackConfig) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, teachers: teachers, roster: roster, exports: exports, limits: limits}
}

type submitFeedbackRequest struct {
	StudentID    string `json:"student_id"`
	FeedbackText string `json:"feedback_text"`
}

// GetTeacher godoc
// @Summary Public teacher info for the feedback page
// @Tags Feedback
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *FeedbackHandler) GetTeacher(c *gin.Context) {
	teacherID, err := teacherIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := h.teachers.GetPublic(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// GetStudent godoc
// @Summary Resolve a student identifier on a teacher's roster
// @Tags Feedback
// @Produce json
// @Param id path int true "Teacher ID"
// @Param sid path string true "Student identifier"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/students/{sid} [get]
func (h *FeedbackHandler) GetStudent(c *gin.Context) {
	teacherID, err := teacherIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.roster.Get(c.Request.Context(), teacherID, c.Param("sid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// HasSubmittedToday godoc
// @Summary Check the daily submission gate
// @Tags Feedback
// @Produce json
// @Param id path int true "Teacher ID"
// @Param student_id query string true "Student identifier"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/has-submitted-today [get]
func (h *FeedbackHandler) HasSubmittedToday(c *gin.Context) {
	teacherID, err := teacherIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID := strings.TrimSpace(c.Query("student_id"))
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id is required"))
		return
	}
	submitted, err := h.feedback.HasSubmittedToday(c.Request.Context(), teacherID, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"submitted_today": submitted})
}

// Submit godoc
// @Summary Submit feedback for a teacher
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path int true "Teacher ID"
// @Param payload body submitFeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Router /teachers/{id}/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	teacherID, err := teacherIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}

	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id is required"))
		return
	}

	words := len(strings.Fields(req.FeedbackText))
	if words < h.limits.MinWordCount {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("feedback must contain at least %d words", h.limits.MinWordCount)))
		return
	}
	if h.limits.MaxWordCount > 0 && words > h.limits.MaxWordCount {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("feedback must contain at most %d words", h.limits.MaxWordCount)))
		return
	}

	ctx := c.Request.Context()
	submitted, err := h.feedback.HasSubmittedToday(ctx, teacherID, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if submitted {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "feedback already submitted today"))
		return
	}

	fb, err := h.feedback.Submit(ctx, teacherID, studentID, req.FeedbackText)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fb)
}

// ListOwn godoc
// @Summary List feedback received by the authenticated teacher
// @Tags Feedback
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /feedback [get]
func (h *FeedbackHandler) ListOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.feedback.ListForTeacher(c.Request.Context(), claims.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// ListAll godoc
// @Summary List all feedback with teacher names
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/feedback [get]
func (h *FeedbackHandler) ListAll(c *gin.Context) {
	items, err := h.feedback.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Export godoc
// @Summary Download all feedback as CSV or PDF
// @Tags Admin
// @Produce octet-stream
// @Param format query string false "csv or pdf (default csv)"
// @Success 200
// @Router /admin/feedback/export [get]
func (h *FeedbackHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", service.ExportFormatCSV))
	result, err := h.exports.ExportAll(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func teacherIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid teacher id")
	}
	return id, nil
}
