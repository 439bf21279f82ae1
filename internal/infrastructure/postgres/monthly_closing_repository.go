package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

var _ repository.MonthlyClosingRepository = (*MonthlyClosingRepo)(nil)

// MonthlyClosingRepo persistencia de cierres mensuales.
// Clave única: (closing_year, closing_month, company_id, facility_type_id).
type MonthlyClosingRepo struct {
	q Querier
}

func NewMonthlyClosingRepository(q Querier) *MonthlyClosingRepo {
	return &MonthlyClosingRepo{q: q}
}

const monthlyClosingColumns = `
	closing_year, closing_month, company_id, facility_type_id,
	previous_quantity, total_inbound, total_outbound, closing_quantity,
	is_closed, closed_at, closed_by`

// Get obtiene el cierre mensual de una clave. nil si no existe.
func (r *MonthlyClosingRepo) Get(ctx context.Context, year, month int, companyID, facilityTypeID string) (*entity.MonthlyClosing, error) {
	query := `
		SELECT ` + monthlyClosingColumns + `
		FROM monthly_closings
		WHERE closing_year = $1 AND closing_month = $2 AND company_id = $3 AND facility_type_id = $4`
	c, err := scanMonthlyClosing(r.q.QueryRow(ctx, query, year, month, companyID, facilityTypeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get monthly closing: %w", err)
	}
	return c, nil
}

// ListByMonth lista todos los cierres del mes.
func (r *MonthlyClosingRepo) ListByMonth(ctx context.Context, year, month int) ([]*entity.MonthlyClosing, error) {
	query := `
		SELECT ` + monthlyClosingColumns + `
		FROM monthly_closings
		WHERE closing_year = $1 AND closing_month = $2
		ORDER BY company_id, facility_type_id`
	rows, err := r.q.Query(ctx, query, year, month)
	if err != nil {
		return nil, fmt.Errorf("list monthly closings: %w", err)
	}
	defer rows.Close()

	var list []*entity.MonthlyClosing
	for rows.Next() {
		c, err := scanMonthlyClosing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monthly closing: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// AnyClosedForMonth indica si el mes ya tiene algún cierre cerrado.
func (r *MonthlyClosingRepo) AnyClosedForMonth(ctx context.Context, year, month int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM monthly_closings WHERE closing_year = $1 AND closing_month = $2 AND is_closed = true)`
	if err := r.q.QueryRow(ctx, query, year, month).Scan(&exists); err != nil {
		return false, fmt.Errorf("any closed for month: %w", err)
	}
	return exists, nil
}

// Upsert inserta o actualiza el cierre mensual por su clave única.
func (r *MonthlyClosingRepo) Upsert(ctx context.Context, c *entity.MonthlyClosing) error {
	query := `
		INSERT INTO monthly_closings (` + monthlyClosingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (closing_year, closing_month, company_id, facility_type_id)
		DO UPDATE SET
			previous_quantity = EXCLUDED.previous_quantity,
			total_inbound = EXCLUDED.total_inbound,
			total_outbound = EXCLUDED.total_outbound,
			closing_quantity = EXCLUDED.closing_quantity,
			is_closed = EXCLUDED.is_closed,
			closed_at = EXCLUDED.closed_at,
			closed_by = EXCLUDED.closed_by`
	_, err := r.q.Exec(ctx, query,
		c.ClosingYear, c.ClosingMonth, c.CompanyID, c.FacilityTypeID,
		c.PreviousQuantity, c.TotalInbound, c.TotalOutbound, c.ClosingQuantity,
		c.IsClosed, c.ClosedAt, nullable(c.ClosedBy),
	)
	if err != nil {
		return fmt.Errorf("upsert monthly closing: %w", err)
	}
	return nil
}

// DeleteByMonth elimina los cierres del mes; devuelve filas afectadas.
func (r *MonthlyClosingRepo) DeleteByMonth(ctx context.Context, year, month int) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM monthly_closings WHERE closing_year = $1 AND closing_month = $2`, year, month)
	if err != nil {
		return 0, fmt.Errorf("delete monthly closings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanMonthlyClosing(row pgx.Row) (*entity.MonthlyClosing, error) {
	var c entity.MonthlyClosing
	var closedBy *string
	err := row.Scan(
		&c.ClosingYear, &c.ClosingMonth, &c.CompanyID, &c.FacilityTypeID,
		&c.PreviousQuantity, &c.TotalInbound, &c.TotalOutbound, &c.ClosingQuantity,
		&c.IsClosed, &c.ClosedAt, &closedBy,
	)
	if err != nil {
		return nil, err
	}
	c.ClosedBy = deref(closedBy)
	return &c, nil
}
