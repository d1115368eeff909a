package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/internal/repository"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
)

type catalogRepository interface {
	ListStatuses(ctx context.Context, table repository.StatusTable) ([]models.Status, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListHardwareTypes(ctx context.Context) ([]models.HardwareType, error)
	ListBuildings(ctx context.Context) ([]models.Building, error)
	ListLabs(ctx context.Context) ([]models.Lab, error)
	ListPlaces(ctx context.Context) ([]models.Place, error)
}

type itemRepository interface {
	List(ctx context.Context) ([]models.ItemView, error)
	Create(ctx context.Context, item *models.Item) error
}

// CreateItemRequest holds payload for registering a new item.
type CreateItemRequest struct {
	InvKey         string                `json:"inv_key" validate:"required"`
	HardwareID     int64                 `json:"hardware_id" validate:"required,gt=0"`
	GroupID        *int64                `json:"group_id"`
	StatusID       int64                 `json:"status_id"`
	Owner          string                `json:"owner" validate:"required"`
	PlaceID        int64                 `json:"place_id" validate:"required,gt=0"`
	Specifications models.Specifications `json:"specifications"`
}

// CatalogService exposes items and reference tables.
type CatalogService struct {
	catalog   catalogRepository
	items     itemRepository
	statuses  statusResolver
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(catalog catalogRepository, items itemRepository, statuses statusResolver, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		catalog:   catalog,
		items:     items,
		statuses:  statuses,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// ListItems returns every item in listing form.
func (s *CatalogService) ListItems(ctx context.Context) ([]models.ItemView, error) {
	var cached []models.ItemView
	if s.cache.Get(ctx, CacheKeyItems, &cached) {
		return cached, nil
	}
	gen := s.cache.Generation(CacheKeyItems)
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list equipment")
	}
	s.cache.Fill(ctx, CacheKeyItems, items, gen)
	return items, nil
}

// AddItem registers a new item. New items always start available.
func (s *CatalogService) AddItem(ctx context.Context, req CreateItemRequest) (item *models.Item, err error) {
	defer func() { s.metrics.RecordOperation("catalog.add_item", err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}
	availableID, err := s.statuses.ID(ctx, StatusRef{repository.TableItemStatus, models.ItemStatusAvailable})
	if err != nil {
		return nil, err
	}
	if req.StatusID != 0 && req.StatusID != availableID {
		s.logger.Warn("status_id overridden for new item",
			zap.String("inv_key", req.InvKey),
			zap.Int64("requested", req.StatusID),
			zap.Int64("applied", availableID),
		)
	}

	item = &models.Item{
		InvKey:         req.InvKey,
		Hardware:       req.HardwareID,
		Group:          req.GroupID,
		Status:         availableID,
		Owner:          req.Owner,
		Place:          req.PlaceID,
		Available:      true,
		Specifications: req.Specifications,
	}
	if err := s.items.Create(ctx, item); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "inventory key already exists")
		case errors.Is(err, repository.ErrMissingReference):
			return nil, appErrors.Clone(appErrors.ErrValidation, "hardware, group or place does not exist")
		}
		s.logger.Error("create item failed", zap.String("inv_key", req.InvKey), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrWriteFailed, "failed to add equipment")
	}

	s.cache.Invalidate(ctx, CacheKeyItems)
	return item, nil
}

// ListRooms returns every room.
func (s *CatalogService) ListRooms(ctx context.Context) ([]models.Room, error) {
	var cached []models.Room
	if s.cache.Get(ctx, CacheKeyRooms, &cached) {
		return cached, nil
	}
	gen := s.cache.Generation(CacheKeyRooms)
	rooms, err := s.catalog.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	s.cache.Fill(ctx, CacheKeyRooms, rooms, gen)
	return rooms, nil
}

// ListHardwareTypes returns every hardware type with its specification template.
func (s *CatalogService) ListHardwareTypes(ctx context.Context) ([]models.HardwareType, error) {
	var cached []models.HardwareType
	if s.cache.Get(ctx, CacheKeyHardwareTypes, &cached) {
		return cached, nil
	}
	gen := s.cache.Generation(CacheKeyHardwareTypes)
	types, err := s.catalog.ListHardwareTypes(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list hardware types")
	}
	s.cache.Fill(ctx, CacheKeyHardwareTypes, types, gen)
	return types, nil
}

// ListBuildings returns every building.
func (s *CatalogService) ListBuildings(ctx context.Context) ([]models.Building, error) {
	buildings, err := s.catalog.ListBuildings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list buildings")
	}
	return buildings, nil
}

// ListLabs returns every lab.
func (s *CatalogService) ListLabs(ctx context.Context) ([]models.Lab, error) {
	labs, err := s.catalog.ListLabs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list labs")
	}
	return labs, nil
}

// ListPlaces returns every storage place with its section.
func (s *CatalogService) ListPlaces(ctx context.Context) ([]models.Place, error) {
	places, err := s.catalog.ListPlaces(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list places")
	}
	return places, nil
}

// ListItemStatuses returns the item status catalog.
func (s *CatalogService) ListItemStatuses(ctx context.Context) ([]models.Status, error) {
	statuses, err := s.catalog.ListStatuses(ctx, repository.TableItemStatus)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list item statuses")
	}
	return statuses, nil
}
