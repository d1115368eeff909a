package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/internal/repository"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
)

type accessRepository interface {
	Grant(ctx context.Context, userID, roomID int64) (bool, error)
	Revoke(ctx context.Context, userID, roomID int64) (int64, error)
	Exists(ctx context.Context, userID, roomID int64) (bool, error)
	ListRooms(ctx context.Context, userID int64) ([]models.Room, error)
}

type studentFinder interface {
	FindByCard(ctx context.Context, cardID string) (*models.StudentView, error)
}

// AccessCheck is the answer given to a card reader.
type AccessCheck struct {
	StudentID int64  `json:"student_id"`
	Name      string `json:"name"`
	RoomID    int64  `json:"room_id"`
	Granted   bool   `json:"granted"`
}

// AccessService maintains the (student, room) access ledger.
type AccessService struct {
	repo     accessRepository
	students studentFinder
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAccessService constructs the access service.
func NewAccessService(repo accessRepository, students studentFinder, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{repo: repo, students: students, cache: cache, metrics: metrics, logger: logger}
}

// Set grants or revokes room access for a student.
func (s *AccessService) Set(ctx context.Context, studentID, roomID int64, grant bool) error {
	if grant {
		return s.Grant(ctx, studentID, roomID)
	}
	return s.Revoke(ctx, studentID, roomID)
}

// Grant adds the (student, room) pair unless it is already present.
func (s *AccessService) Grant(ctx context.Context, studentID, roomID int64) (err error) {
	defer func() { s.metrics.RecordOperation("access.grant", err) }()
	if studentID <= 0 || roomID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "student id and room id are required")
	}
	added, err := s.repo.Grant(ctx, studentID, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return appErrors.Clone(appErrors.ErrNotFound, "student or room not found")
		}
		s.logger.Error("grant access failed", zap.Int64("student_id", studentID), zap.Int64("room_id", roomID), zap.Error(err))
		return appErrors.WrapAs(err, appErrors.ErrWriteFailed, "failed to grant access")
	}
	if added {
		s.cache.Invalidate(ctx, CacheKeyStudents)
	}
	return nil
}

// Revoke removes every (student, room) row. Revoking an absent grant succeeds.
func (s *AccessService) Revoke(ctx context.Context, studentID, roomID int64) (err error) {
	defer func() { s.metrics.RecordOperation("access.revoke", err) }()
	if studentID <= 0 || roomID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "student id and room id are required")
	}
	removed, err := s.repo.Revoke(ctx, studentID, roomID)
	if err != nil {
		s.logger.Error("revoke access failed", zap.Int64("student_id", studentID), zap.Int64("room_id", roomID), zap.Error(err))
		return appErrors.WrapAs(err, appErrors.ErrWriteFailed, "failed to revoke access")
	}
	if removed > 1 {
		s.logger.Warn("duplicate access grants removed", zap.Int64("student_id", studentID), zap.Int64("room_id", roomID), zap.Int64("rows", removed))
	}
	if removed > 0 {
		s.cache.Invalidate(ctx, CacheKeyStudents)
	}
	return nil
}

// ListRooms returns the rooms the student may enter.
func (s *AccessService) ListRooms(ctx context.Context, studentID int64) ([]models.Room, error) {
	rooms, err := s.repo.ListRooms(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Check resolves a card to a student and reports whether it opens the room.
func (s *AccessService) Check(ctx context.Context, cardID string, roomID int64) (*AccessCheck, error) {
	if roomID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room id is required")
	}
	student, err := s.students.FindByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	check := &AccessCheck{StudentID: student.ID, Name: student.Name, RoomID: roomID}
	if !student.Active {
		return check, nil
	}
	granted, err := s.repo.Exists(ctx, student.ID, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check access")
	}
	check.Granted = granted
	return check, nil
}
