package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

var _ repository.MasterDataRepository = (*MasterDataRepo)(nil)

// MasterDataRepo lecturas de datos maestros (companies, facility_types,
// facility_status_codes). Tablas replicadas desde el servicio maestro, solo lectura.
type MasterDataRepo struct {
	q Querier
}

func NewMasterDataRepository(q Querier) *MasterDataRepo {
	return &MasterDataRepo{q: q}
}

func (r *MasterDataRepo) GetCompany(ctx context.Context, id string) (*entity.Company, error) {
	var c entity.Company
	err := r.q.QueryRow(ctx, `SELECT id, name FROM companies WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

func (r *MasterDataRepo) ListCompanies(ctx context.Context) ([]*entity.Company, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *MasterDataRepo) GetFacilityType(ctx context.Context, id string) (*entity.FacilityType, error) {
	var t entity.FacilityType
	err := r.q.QueryRow(ctx, `SELECT id, name FROM facility_types WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get facility type: %w", err)
	}
	return &t, nil
}

func (r *MasterDataRepo) ListFacilityTypes(ctx context.Context) ([]*entity.FacilityType, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM facility_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list facility types: %w", err)
	}
	defer rows.Close()

	var list []*entity.FacilityType
	for rows.Next() {
		var t entity.FacilityType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan facility type: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *MasterDataRepo) StatusCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM facility_status_codes WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("status code exists: %w", err)
	}
	return exists, nil
}
