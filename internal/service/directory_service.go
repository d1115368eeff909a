package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/internal/repository"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
)

type userRepository interface {
	ListStudents(ctx context.Context, userType int64) ([]models.StudentView, error)
	FindStudentByCard(ctx context.Context, userType int64, cardID string) (*models.StudentView, error)
	ExistsByCard(ctx context.Context, cardID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type statusResolver interface {
	ID(ctx context.Context, ref StatusRef) (int64, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone"`
	CardID string `json:"card_id"`
}

// DirectoryService manages student records.
type DirectoryService struct {
	repo      userRepository
	statuses  statusResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectoryService constructs the directory service.
func NewDirectoryService(repo userRepository, statuses statusResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{repo: repo, statuses: statuses, cache: cache, validator: validate, logger: logger}
}

// List returns every student with hasAccess set when at least one room grant exists.
func (s *DirectoryService) List(ctx context.Context) ([]models.StudentView, error) {
	var cached []models.StudentView
	if s.cache.Get(ctx, CacheKeyStudents, &cached) {
		return cached, nil
	}
	gen := s.cache.Generation(CacheKeyStudents)
	typeID, err := s.statuses.ID(ctx, StatusRef{repository.TableUserType, models.UserTypeStudent})
	if err != nil {
		return nil, err
	}
	students, err := s.repo.ListStudents(ctx, typeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	s.cache.Fill(ctx, CacheKeyStudents, students, gen)
	return students, nil
}

// FindByCard resolves a scanned card to its student.
func (s *DirectoryService) FindByCard(ctx context.Context, cardID string) (*models.StudentView, error) {
	if cardID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "card id is required")
	}
	typeID, err := s.statuses.ID(ctx, StatusRef{repository.TableUserType, models.UserTypeStudent})
	if err != nil {
		return nil, err
	}
	student, err := s.repo.FindStudentByCard(ctx, typeID, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new active student with an unverified email.
func (s *DirectoryService) Create(ctx context.Context, req CreateStudentRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	typeID, err := s.statuses.ID(ctx, StatusRef{repository.TableUserType, models.UserTypeStudent})
	if err != nil {
		return nil, err
	}
	if req.CardID != "" {
		exists, err := s.repo.ExistsByCard(ctx, req.CardID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate card id")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "card id already assigned")
		}
	}
	user := &models.User{
		Active:        true,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Created:       time.Now().UTC(),
		CardID:        req.CardID,
		UserType:      typeID,
		EmailVerified: false,
		TelegramID:    0,
		Password:      "",
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already exists")
		}
		s.logger.Error("create student failed", zap.String("email", req.Email), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrWriteFailed, "failed to create student")
	}
	s.cache.Invalidate(ctx, CacheKeyStudents)
	return user, nil
}
