package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/pkg/response"
)

type referenceCatalog interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListHardwareTypes(ctx context.Context) ([]models.HardwareType, error)
	ListBuildings(ctx context.Context) ([]models.Building, error)
	ListLabs(ctx context.Context) ([]models.Lab, error)
	ListPlaces(ctx context.Context) ([]models.Place, error)
	ListItemStatuses(ctx context.Context) ([]models.Status, error)
}

// CatalogHandler serves the reference tables used by the admin UI.
type CatalogHandler struct {
	catalog referenceCatalog
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog referenceCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func respondList[T any](c *gin.Context, list func(context.Context) ([]T, error)) {
	items, err := list(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Rooms godoc
// @Summary List rooms
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *CatalogHandler) Rooms(c *gin.Context) { respondList(c, h.catalog.ListRooms) }

// HardwareTypes godoc
// @Summary List hardware types
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hardware-types [get]
func (h *CatalogHandler) HardwareTypes(c *gin.Context) { respondList(c, h.catalog.ListHardwareTypes) }

// Buildings godoc
// @Summary List buildings
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /buildings [get]
func (h *CatalogHandler) Buildings(c *gin.Context) { respondList(c, h.catalog.ListBuildings) }

// Labs godoc
// @Summary List labs
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /labs [get]
func (h *CatalogHandler) Labs(c *gin.Context) { respondList(c, h.catalog.ListLabs) }

// Places godoc
// @Summary List storage places
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /places [get]
func (h *CatalogHandler) Places(c *gin.Context) { respondList(c, h.catalog.ListPlaces) }

// ItemStatuses godoc
// @Summary List item statuses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /item-statuses [get]
func (h *CatalogHandler) ItemStatuses(c *gin.Context) { respondList(c, h.catalog.ListItemStatuses) }
