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

type itemCatalog interface {
	ListItems(ctx context.Context) ([]models.ItemView, error)
	AddItem(ctx context.Context, req service.CreateItemRequest) (*models.Item, error)
}

type lendingService interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*models.Request, error)
	Return(ctx context.Context, itemKey string) (*models.ReturnResult, error)
	Get(ctx context.Context, itemKey string) (*models.ItemDetail, error)
	ListRequests(ctx context.Context, query service.ListRequestsQuery) ([]models.Request, *models.Pagination, error)
}

// EquipmentHandler exposes equipment and lending endpoints.
type EquipmentHandler struct {
	catalog itemCatalog
	lending lendingService
}

// NewEquipmentHandler constructs EquipmentHandler.
func NewEquipmentHandler(catalog itemCatalog, lending lendingService) *EquipmentHandler {
	return &EquipmentHandler{catalog: catalog, lending: lending}
}

// List godoc
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	items, err := h.catalog.ListItems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Add equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Param payload body service.CreateItemRequest true "Equipment payload"
// @Success 201 {object} response.Envelope
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.catalog.AddItem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"success": true, "equipment_id": item.InvKey})
}

// Get godoc
// @Summary Get equipment with its current borrower
// @Tags Equipment
// @Produce json
// @Param id path string true "Inventory key"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id} [get]
func (h *EquipmentHandler) Get(c *gin.Context) {
	detail, err := h.lending.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Checkout godoc
// @Summary Check equipment out to a student
// @Tags Lending
// @Accept json
// @Produce json
// @Param id path string true "Inventory key"
// @Param payload body service.CheckoutRequest true "Checkout payload"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id}/checkout [post]
func (h *EquipmentHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ItemKey = c.Param("id")
	request, err := h.lending.Checkout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true, "request_id": request.ID}, nil)
}

// Return godoc
// @Summary Return equipment
// @Tags Lending
// @Produce json
// @Param id path string true "Inventory key"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id}/return [post]
func (h *EquipmentHandler) Return(c *gin.Context) {
	result, err := h.lending.Return(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload := gin.H{"success": true}
	if result.ClosedRequestID != nil {
		payload["request_id"] = *result.ClosedRequestID
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// Requests godoc
// @Summary List lending requests
// @Tags Lending
// @Produce json
// @Param item query string false "Inventory key"
// @Param userId query int false "Student ID"
// @Param open query bool false "Only open (true) or closed (false) requests"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *EquipmentHandler) Requests(c *gin.Context) {
	query := service.ListRequestsQuery{ItemKey: c.Query("item")}
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid userId"))
			return
		}
		query.UserID = id
	}
	if open := c.Query("open"); open == "true" || open == "false" {
		v := open == "true"
		query.Open = &v
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = size
	}

	requests, pagination, err := h.lending.ListRequests(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}
