package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/internal/service"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
	"github.com/ulk-sapr/equipment-api/pkg/response"
)

type directoryService interface {
	List(ctx context.Context) ([]models.StudentView, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.User, error)
	FindByCard(ctx context.Context, cardID string) (*models.StudentView, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students directoryService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students directoryService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"success": true, "student_id": user.ID})
}

// ByCard godoc
// @Summary Find student by card
// @Tags Students
// @Produce json
// @Param cardId path string true "Card ID"
// @Success 200 {object} response.Envelope
// @Router /students/by-card/{cardId} [get]
func (h *StudentHandler) ByCard(c *gin.Context) {
	student, err := h.students.FindByCard(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
