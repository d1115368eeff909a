package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/internal/service"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
	"github.com/ulk-sapr/equipment-api/pkg/response"
)

type accessService interface {
	Set(ctx context.Context, studentID, roomID int64, grant bool) error
	ListRooms(ctx context.Context, studentID int64) ([]models.Room, error)
	Check(ctx context.Context, cardID string, roomID int64) (*service.AccessCheck, error)
}

// AccessRequest toggles a room grant. Fields may also arrive as query parameters.
type AccessRequest struct {
	RoomID      int64 `json:"room_id" form:"room_id"`
	GrantAccess *bool `json:"grant_access" form:"grant_access"`
}

// AccessHandler exposes room access endpoints.
type AccessHandler struct {
	access accessService
}

// NewAccessHandler constructs AccessHandler.
func NewAccessHandler(access accessService) *AccessHandler {
	return &AccessHandler{access: access}
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

// Set godoc
// @Summary Grant or revoke room access
// @Tags Access
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param room_id query int false "Room ID"
// @Param grant_access query bool false "Grant (true) or revoke (false)"
// @Param payload body AccessRequest false "Access payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/access [post]
func (h *AccessHandler) Set(c *gin.Context) {
	studentID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req AccessRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	if req.RoomID <= 0 || req.GrantAccess == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "room_id and grant_access are required"))
		return
	}

	if err := h.access.Set(c.Request.Context(), studentID, req.RoomID, *req.GrantAccess); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, nil)
}

// Rooms godoc
// @Summary List rooms a student may enter
// @Tags Access
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/rooms [get]
func (h *AccessHandler) Rooms(c *gin.Context) {
	studentID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rooms, err := h.access.ListRooms(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Check godoc
// @Summary Check whether a card opens a room
// @Tags Access
// @Produce json
// @Param card_id query string true "Card ID"
// @Param room_id query int true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /access/check [get]
func (h *AccessHandler) Check(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Query("room_id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid room_id"))
		return
	}
	result, err := h.access.Check(c.Request.Context(), c.Query("card_id"), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
