package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/internal/repository"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
)

type statusLookup interface {
	FindStatusByName(ctx context.Context, table repository.StatusTable, name string) (*models.Status, error)
}

// StatusRef names a catalog row by table and name.
type StatusRef struct {
	Table repository.StatusTable
	Name  string
}

func (r StatusRef) key() string {
	return string(r.Table) + ":" + r.Name
}

// RequiredStatuses are the catalog rows the lending engine and directory depend on.
var RequiredStatuses = []StatusRef{
	{repository.TableItemStatus, models.ItemStatusAvailable},
	{repository.TableItemStatus, models.ItemStatusCheckedOut},
	{repository.TableRequestStatus, models.RequestStatusActive},
	{repository.TableRequestStatus, models.RequestStatusClosed},
	{repository.TableUserType, models.UserTypeStudent},
}

// StatusRegistry resolves catalog names to ids and keeps them in process memory.
// Missing rows are not cached so they are picked up once created.
type StatusRegistry struct {
	repo   statusLookup
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewStatusRegistry constructs a registry whose entries expire after ttl.
func NewStatusRegistry(repo statusLookup, ttl time.Duration, logger *zap.Logger) *StatusRegistry {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusRegistry{repo: repo, cache: gocache.New(ttl, 2*ttl), logger: logger}
}

// ID returns the id of the named row, failing with LOOKUP_FAILED when it does not exist.
func (r *StatusRegistry) ID(ctx context.Context, ref StatusRef) (int64, error) {
	if v, ok := r.cache.Get(ref.key()); ok {
		return v.(int64), nil
	}
	status, err := r.repo.FindStatusByName(ctx, ref.Table, ref.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrLookupFailed, fmt.Sprintf("%s %q is not configured", ref.Table, ref.Name))
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve catalog entry")
	}
	r.cache.SetDefault(ref.key(), status.ID)
	return status.ID, nil
}

// Warm resolves every ref up front. Missing rows are logged, not fatal:
// the operations that need them report LOOKUP_FAILED on their own.
func (r *StatusRegistry) Warm(ctx context.Context, refs ...StatusRef) error {
	for _, ref := range refs {
		if _, err := r.ID(ctx, ref); err != nil {
			if errors.Is(err, appErrors.ErrLookupFailed) {
				r.logger.Warn("catalog entry missing", zap.String("table", string(ref.Table)), zap.String("name", ref.Name))
				continue
			}
			return err
		}
	}
	return nil
}

// Forget drops every cached id.
func (r *StatusRegistry) Forget() {
	r.cache.Flush()
}
