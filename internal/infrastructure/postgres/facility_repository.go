package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

var _ repository.FacilityRepository = (*FacilityRepo)(nil)

// FacilityRepo implementación de FacilityRepository sobre PostgreSQL (usable con pool o tx).
type FacilityRepo struct {
	q Querier
}

// NewFacilityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFacilityRepository(q Querier) *FacilityRepo {
	return &FacilityRepo{q: q}
}

const facilityColumns = `
	id, name, facility_type_id, current_company_id, status,
	acquisition_cost, active, disposed_at, dispose_reason, created_at, updated_at`

// GetByID obtiene un activo por ID. nil si no existe.
func (r *FacilityRepo) GetByID(ctx context.Context, id string) (*entity.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetForUpdate obtiene el activo y bloquea la fila (SELECT FOR UPDATE).
func (r *FacilityRepo) GetForUpdate(ctx context.Context, id string) (*entity.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

// Update persiste estado, ubicación y metadatos de baja del activo.
func (r *FacilityRepo) Update(ctx context.Context, f *entity.Facility) error {
	query := `
		UPDATE facilities
		SET current_company_id = $2, status = $3, active = $4,
		    disposed_at = $5, dispose_reason = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		f.ID, f.CurrentCompanyID, f.Status, f.Active,
		f.DisposedAt, nullable(f.DisposeReason), f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update facility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update facility %s: sin filas afectadas", f.ID)
	}
	return nil
}

func (r *FacilityRepo) get(ctx context.Context, query, id string) (*entity.Facility, error) {
	var f entity.Facility
	var disposeReason *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.FacilityTypeID, &f.CurrentCompanyID, &f.Status,
		&f.AcquisitionCost, &f.Active, &f.DisposedAt, &disposeReason,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	f.DisposeReason = deref(disposeReason)
	return &f, nil
}
