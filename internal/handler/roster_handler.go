package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/feedback-api/internal/service"
	appErrors "github.com/noah-isme/feedback-api/pkg/errors"
	"github.com/noah-isme/feedback-api/pkg/response"
)

// RosterHandler exposes a teacher's student roster. The acting teacher is
// taken from the access token, never from the payload.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs a RosterHandler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

type addStudentRequest struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

// List godoc
// @Summary List the roster
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /roster [get]
func (h *RosterHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	students, err := h.roster.List(c.Request.Context(), claims.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Add godoc
// @Summary Add a student
// @Description Adds a roster entry. When student_id is omitted an identifier is generated.
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body addStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /roster [post]
func (h *RosterHandler) Add(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req addStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}

	ctx := c.Request.Context()
	if strings.TrimSpace(req.StudentID) == "" {
		student, err := h.roster.AddStudentAuto(ctx, claims.TeacherID, req.StudentName)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, student)
		return
	}

	student, err := h.roster.AddStudent(ctx, claims.TeacherID, req.StudentID, req.StudentName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Get godoc
// @Summary Get one roster entry
// @Tags Roster
// @Produce json
// @Param sid path string true "Student identifier"
// @Success 200 {object} response.Envelope
// @Router /roster/{sid} [get]
func (h *RosterHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	student, err := h.roster.Get(c.Request.Context(), claims.TeacherID, c.Param("sid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Remove a student from the roster
// @Tags Roster
// @Param sid path string true "Student identifier"
// @Success 204
// @Router /roster/{sid} [delete]
func (h *RosterHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.roster.Delete(c.Request.Context(), claims.TeacherID, c.Param("sid")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
