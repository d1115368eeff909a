package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ulk-sapr/equipment-api/internal/models"
)

// StatusTable names a lookup table holding (id, name) rows.
type StatusTable string

const (
	TableItemStatus    StatusTable = "itemstatus"
	TableRequestStatus StatusTable = "requeststatus"
	TableUserType      StatusTable = "usertype"
	TableGroupStatus   StatusTable = "groupstatus"
)

func (t StatusTable) valid() bool {
	switch t {
	case TableItemStatus, TableRequestStatus, TableUserType, TableGroupStatus:
		return true
	}
	return false
}

// CatalogRepository reads reference tables.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindStatusByName returns the first row in table with the given name.
// A missing row yields sql.ErrNoRows.
func (r *CatalogRepository) FindStatusByName(ctx context.Context, table StatusTable, name string) (*models.Status, error) {
	if !table.valid() {
		return nil, fmt.Errorf("unknown lookup table %q", table)
	}
	query := fmt.Sprintf("SELECT id, name FROM %s WHERE name = $1 ORDER BY id LIMIT 1", table)
	var status models.Status
	if err := r.db.GetContext(ctx, &status, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s %q: %w", table, name, err)
	}
	return &status, nil
}

// ListStatuses returns every row of a lookup table.
func (r *CatalogRepository) ListStatuses(ctx context.Context, table StatusTable) ([]models.Status, error) {
	if !table.valid() {
		return nil, fmt.Errorf("unknown lookup table %q", table)
	}
	var statuses []models.Status
	if err := r.db.SelectContext(ctx, &statuses, fmt.Sprintf("SELECT id, name FROM %s ORDER BY id", table)); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return statuses, nil
}

// ListRooms returns all rooms.
func (r *CatalogRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, lab, created, building, type FROM room ORDER BY id`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListHardwareTypes returns all hardware types with their specification templates.
func (r *CatalogRepository) ListHardwareTypes(ctx context.Context) ([]models.HardwareType, error) {
	const query = `SELECT id, name, hardware_specifications_template FROM hardwaretype ORDER BY id`
	var types []models.HardwareType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list hardware types: %w", err)
	}
	return types, nil
}

// ListBuildings returns all buildings.
func (r *CatalogRepository) ListBuildings(ctx context.Context) ([]models.Building, error) {
	var buildings []models.Building
	if err := r.db.SelectContext(ctx, &buildings, `SELECT id, name, adress, created FROM building ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	return buildings, nil
}

// ListLabs returns all labs.
func (r *CatalogRepository) ListLabs(ctx context.Context) ([]models.Lab, error) {
	var labs []models.Lab
	if err := r.db.SelectContext(ctx, &labs, `SELECT id, name, created FROM lab ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list labs: %w", err)
	}
	return labs, nil
}

// ListPlaces returns all storage places.
func (r *CatalogRepository) ListPlaces(ctx context.Context) ([]models.Place, error) {
	var places []models.Place
	if err := r.db.SelectContext(ctx, &places, `SELECT id, name, description, section FROM place ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	return places, nil
}
