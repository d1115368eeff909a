package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/internal/repository"
	"github.com/ulk-sapr/equipment-api/pkg/config"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
)

type lendingRepository interface {
	Checkout(ctx context.Context, params models.CheckoutParams) (*models.Request, error)
	Return(ctx context.Context, params models.ReturnParams) (*models.ReturnResult, error)
	ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
}

type itemReader interface {
	FindViewByKey(ctx context.Context, invKey string) (*models.ItemView, error)
	OpenRequest(ctx context.Context, invKey string) (*models.OpenRequest, error)
}

// CheckoutRequest holds payload for lending an item to a student.
type CheckoutRequest struct {
	ItemKey    string `json:"-" validate:"required"`
	StudentID  int64  `json:"student_id" validate:"required,gt=0"`
	ReturnDate string `json:"return_date" validate:"required"`
}

// ListRequestsQuery captures request listing filters.
type ListRequestsQuery struct {
	ItemKey  string
	UserID   int64
	Open     *bool
	Page     int
	PageSize int
}

var returnDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseReturnDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range returnDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// LendingService runs the checkout and return state machine.
type LendingService struct {
	repo      lendingRepository
	items     itemReader
	statuses  statusResolver
	cache     *CacheService
	metrics   *MetricsService
	cfg       config.LendingConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLendingService constructs the lending service.
func NewLendingService(repo lendingRepository, items itemReader, statuses statusResolver, cache *CacheService, metrics *MetricsService, cfg config.LendingConfig, validate *validator.Validate, logger *zap.Logger) *LendingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LendingService{
		repo:      repo,
		items:     items,
		statuses:  statuses,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// Checkout lends the item to a student until the planned return date.
func (s *LendingService) Checkout(ctx context.Context, req CheckoutRequest) (request *models.Request, err error) {
	defer func() { s.metrics.RecordOperation("lending.checkout", err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}
	planned, err := parseReturnDate(req.ReturnDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid return_date")
	}

	activeID, err := s.statuses.ID(ctx, StatusRef{repository.TableRequestStatus, models.RequestStatusActive})
	if err != nil {
		return nil, err
	}
	checkedOutID, err := s.statuses.ID(ctx, StatusRef{repository.TableItemStatus, models.ItemStatusCheckedOut})
	if err != nil {
		return nil, err
	}

	request, err = s.repo.Checkout(ctx, models.CheckoutParams{
		ItemKey:           req.ItemKey,
		UserID:            req.StudentID,
		IssuedBy:          s.cfg.IssuerID,
		Comment:           s.cfg.CheckoutComment,
		PlannedReturnDate: planned,
		ActiveStatus:      activeID,
		CheckedOutStatus:  checkedOutID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		case errors.Is(err, repository.ErrItemCheckedOut):
			return nil, appErrors.Clone(appErrors.ErrConflict, "item already checked out")
		case errors.Is(err, repository.ErrMissingReference):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		s.logger.Error("checkout failed", zap.String("item", req.ItemKey), zap.Int64("student_id", req.StudentID), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrWriteFailed, "failed to check out equipment")
	}

	s.cache.Invalidate(ctx, CacheKeyItems)
	s.logger.Info("equipment checked out",
		zap.String("item", req.ItemKey),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("request_id", request.ID),
	)
	return request, nil
}

// Return puts the item back on the shelf and closes its open request.
// Returning an item with no open request succeeds without closing anything.
func (s *LendingService) Return(ctx context.Context, itemKey string) (result *models.ReturnResult, err error) {
	defer func() { s.metrics.RecordOperation("lending.return", err) }()

	if strings.TrimSpace(itemKey) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "equipment id is required")
	}
	availableID, err := s.statuses.ID(ctx, StatusRef{repository.TableItemStatus, models.ItemStatusAvailable})
	if err != nil {
		return nil, err
	}
	activeID, err := s.statuses.ID(ctx, StatusRef{repository.TableRequestStatus, models.RequestStatusActive})
	if err != nil {
		return nil, err
	}
	closedID, err := s.statuses.ID(ctx, StatusRef{repository.TableRequestStatus, models.RequestStatusClosed})
	if err != nil {
		return nil, err
	}

	result, err = s.repo.Return(ctx, models.ReturnParams{
		ItemKey:         itemKey,
		AvailableStatus: availableID,
		ActiveStatus:    activeID,
		ClosedStatus:    closedID,
		AnyItem:         s.cfg.LegacyReturn,
	})
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		s.logger.Error("return failed", zap.String("item", itemKey), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrWriteFailed, "failed to return equipment")
	}

	s.cache.Invalidate(ctx, CacheKeyItems)
	if result.DetachedRequests > 0 {
		s.logger.Warn("open requests unlinked from returned equipment",
			zap.String("item", itemKey), zap.Int64("requests", result.DetachedRequests))
	}
	if result.ClosedRequestID == nil {
		s.logger.Warn("equipment returned without an open request", zap.String("item", itemKey))
	} else {
		s.logger.Info("equipment returned", zap.String("item", itemKey), zap.Int64("request_id", *result.ClosedRequestID))
	}
	return result, nil
}

// Get returns the item with its current borrower, if any.
func (s *LendingService) Get(ctx context.Context, itemKey string) (*models.ItemDetail, error) {
	view, err := s.items.FindViewByKey(ctx, itemKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}
	detail := &models.ItemDetail{ItemView: *view}
	if !view.Available {
		open, err := s.items.OpenRequest(ctx, itemKey)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load open request")
		}
		detail.CurrentRequest = open
	}
	return detail, nil
}

// ListRequests returns paginated lending history.
func (s *LendingService) ListRequests(ctx context.Context, query ListRequestsQuery) ([]models.Request, *models.Pagination, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	requests, total, err := s.repo.ListRequests(ctx, models.RequestFilter{
		ItemKey:  query.ItemKey,
		UserID:   query.UserID,
		Open:     query.Open,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}
	return requests, &models.Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: totalPages}, nil
}
