package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

var _ repository.DailyClosingRepository = (*DailyClosingRepo)(nil)

// DailyClosingRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla daily_closings lleva constraint único sobre
// (closing_date, company_id, facility_type_id); Upsert resuelve sobre esa clave.
type DailyClosingRepo struct {
	q Querier
}

// NewDailyClosingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDailyClosingRepository(q Querier) *DailyClosingRepo {
	return &DailyClosingRepo{q: q}
}

const dailyClosingColumns = `
	closing_date, company_id, facility_type_id,
	previous_quantity, inbound_quantity, outbound_quantity, closing_quantity,
	is_closed, closed_at, closed_by, process_start_time`

// Get obtiene el cierre diario de una clave y fecha. nil si no existe.
func (r *DailyClosingRepo) Get(ctx context.Context, date time.Time, companyID, facilityTypeID string) (*entity.DailyClosing, error) {
	query := `
		SELECT ` + dailyClosingColumns + `
		FROM daily_closings
		WHERE closing_date = $1 AND company_id = $2 AND facility_type_id = $3`
	c, err := scanDailyClosing(r.q.QueryRow(ctx, query, date, companyID, facilityTypeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily closing: %w", err)
	}
	return c, nil
}

// AnyClosedForDate indica si la fecha ya tiene algún cierre cerrado.
func (r *DailyClosingRepo) AnyClosedForDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM daily_closings WHERE closing_date = $1 AND is_closed = true)`
	if err := r.q.QueryRow(ctx, query, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("any closed for date: %w", err)
	}
	return exists, nil
}

// GetLatestClosedBefore busca hacia atrás (ventana acotada) el cierre cerrado
// más reciente anterior a date. nil si no hay ninguno en la ventana.
func (r *DailyClosingRepo) GetLatestClosedBefore(ctx context.Context, date time.Time, companyID, facilityTypeID string, windowDays int) (*entity.DailyClosing, error) {
	query := `
		SELECT ` + dailyClosingColumns + `
		FROM daily_closings
		WHERE company_id = $1 AND facility_type_id = $2 AND is_closed = true
		  AND closing_date < $3 AND closing_date >= $4
		ORDER BY closing_date DESC
		LIMIT 1`
	windowStart := date.AddDate(0, 0, -windowDays)
	c, err := scanDailyClosing(r.q.QueryRow(ctx, query, companyID, facilityTypeID, date, windowStart))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest closed before: %w", err)
	}
	return c, nil
}

// ListByDate lista los cierres de una fecha.
func (r *DailyClosingRepo) ListByDate(ctx context.Context, date time.Time) ([]*entity.DailyClosing, error) {
	query := `
		SELECT ` + dailyClosingColumns + `
		FROM daily_closings
		WHERE closing_date = $1
		ORDER BY company_id, facility_type_id`
	return r.list(ctx, query, date)
}

// ListClosedInMonth lista los cierres cerrados del mes para una clave, por fecha ascendente.
func (r *DailyClosingRepo) ListClosedInMonth(ctx context.Context, year, month int, companyID, facilityTypeID string) ([]*entity.DailyClosing, error) {
	from, to := monthRange(year, month)
	query := `
		SELECT ` + dailyClosingColumns + `
		FROM daily_closings
		WHERE company_id = $1 AND facility_type_id = $2 AND is_closed = true
		  AND closing_date >= $3 AND closing_date < $4
		ORDER BY closing_date`
	return r.list(ctx, query, companyID, facilityTypeID, from, to)
}

// ListKeysClosedInMonth devuelve las claves con al menos un cierre cerrado en el mes.
func (r *DailyClosingRepo) ListKeysClosedInMonth(ctx context.Context, year, month int) ([]entity.ClosingKey, error) {
	from, to := monthRange(year, month)
	query := `
		SELECT DISTINCT company_id, facility_type_id
		FROM daily_closings
		WHERE is_closed = true AND closing_date >= $1 AND closing_date < $2
		ORDER BY company_id, facility_type_id`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list keys closed in month: %w", err)
	}
	defer rows.Close()

	var keys []entity.ClosingKey
	for rows.Next() {
		var k entity.ClosingKey
		if err := rows.Scan(&k.CompanyID, &k.FacilityTypeID); err != nil {
			return nil, fmt.Errorf("scan closing key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Upsert inserta o actualiza el cierre por su clave única.
func (r *DailyClosingRepo) Upsert(ctx context.Context, c *entity.DailyClosing) error {
	query := `
		INSERT INTO daily_closings (` + dailyClosingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (closing_date, company_id, facility_type_id)
		DO UPDATE SET
			previous_quantity = EXCLUDED.previous_quantity,
			inbound_quantity = EXCLUDED.inbound_quantity,
			outbound_quantity = EXCLUDED.outbound_quantity,
			closing_quantity = EXCLUDED.closing_quantity,
			is_closed = EXCLUDED.is_closed,
			closed_at = EXCLUDED.closed_at,
			closed_by = EXCLUDED.closed_by,
			process_start_time = EXCLUDED.process_start_time`
	_, err := r.q.Exec(ctx, query,
		c.ClosingDate, c.CompanyID, c.FacilityTypeID,
		c.PreviousQuantity, c.InboundQuantity, c.OutboundQuantity, c.ClosingQuantity,
		c.IsClosed, c.ClosedAt, nullable(c.ClosedBy), c.ProcessStartTime,
	)
	if err != nil {
		return fmt.Errorf("upsert daily closing: %w", err)
	}
	return nil
}

// UpsertMany persiste un lote de cierres con pgx.Batch en un solo round-trip.
func (r *DailyClosingRepo) UpsertMany(ctx context.Context, closings []*entity.DailyClosing) error {
	if len(closings) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO daily_closings (` + dailyClosingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (closing_date, company_id, facility_type_id)
		DO UPDATE SET
			previous_quantity = EXCLUDED.previous_quantity,
			inbound_quantity = EXCLUDED.inbound_quantity,
			outbound_quantity = EXCLUDED.outbound_quantity,
			closing_quantity = EXCLUDED.closing_quantity,
			is_closed = EXCLUDED.is_closed,
			closed_at = EXCLUDED.closed_at,
			closed_by = EXCLUDED.closed_by,
			process_start_time = EXCLUDED.process_start_time`
	for _, c := range closings {
		batch.Queue(query,
			c.ClosingDate, c.CompanyID, c.FacilityTypeID,
			c.PreviousQuantity, c.InboundQuantity, c.OutboundQuantity, c.ClosingQuantity,
			c.IsClosed, c.ClosedAt, nullable(c.ClosedBy), c.ProcessStartTime,
		)
	}

	sender, ok := r.q.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		// Querier sin soporte de batch: caer a upserts individuales
		for _, c := range closings {
			if err := r.Upsert(ctx, c); err != nil {
				return err
			}
		}
		return nil
	}
	results := sender.SendBatch(ctx, batch)
	defer results.Close()
	for range closings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert many daily closings: %w", err)
		}
	}
	return nil
}

// DeleteByDate elimina los cierres de la fecha; devuelve filas afectadas.
func (r *DailyClosingRepo) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM daily_closings WHERE closing_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("delete daily closings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *DailyClosingRepo) list(ctx context.Context, query string, args ...any) ([]*entity.DailyClosing, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list daily closings: %w", err)
	}
	defer rows.Close()

	var list []*entity.DailyClosing
	for rows.Next() {
		c, err := scanDailyClosing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily closing: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanDailyClosing(row pgx.Row) (*entity.DailyClosing, error) {
	var c entity.DailyClosing
	var closedBy *string
	err := row.Scan(
		&c.ClosingDate, &c.CompanyID, &c.FacilityTypeID,
		&c.PreviousQuantity, &c.InboundQuantity, &c.OutboundQuantity, &c.ClosingQuantity,
		&c.IsClosed, &c.ClosedAt, &closedBy, &c.ProcessStartTime,
	)
	if err != nil {
		return nil, err
	}
	c.ClosedBy = deref(closedBy)
	return &c, nil
}

// monthRange devuelve [primer día del mes, primer día del mes siguiente).
func monthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
