package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// DailyClosingRepository puerto de persistencia de cierres diarios.
// La unicidad por (closing_date, company_id, facility_type_id) la garantiza
// un constraint único en BD; Upsert resuelve el conflicto sobre esa clave.
type DailyClosingRepository interface {
	Get(ctx context.Context, date time.Time, companyID, facilityTypeID string) (*entity.DailyClosing, error)
	// AnyClosedForDate indica si la fecha ya tiene algún cierre cerrado (idempotencia).
	AnyClosedForDate(ctx context.Context, date time.Time) (bool, error)
	// GetLatestClosedBefore busca hacia atrás el cierre cerrado más reciente
	// anterior a date, acotado a windowDays días. nil si no hay ninguno en la ventana.
	GetLatestClosedBefore(ctx context.Context, date time.Time, companyID, facilityTypeID string, windowDays int) (*entity.DailyClosing, error)
	ListByDate(ctx context.Context, date time.Time) ([]*entity.DailyClosing, error)
	// ListClosedInMonth devuelve los cierres cerrados del mes para una clave,
	// ordenados por fecha ascendente.
	ListClosedInMonth(ctx context.Context, year, month int, companyID, facilityTypeID string) ([]*entity.DailyClosing, error)
	// ListKeysClosedInMonth devuelve las claves (empresa, tipo) con al menos
	// un cierre cerrado dentro del mes.
	ListKeysClosedInMonth(ctx context.Context, year, month int) ([]entity.ClosingKey, error)
	Upsert(ctx context.Context, closing *entity.DailyClosing) error
	// UpsertMany persiste un lote de cierres en una sola pasada (estrategia agrupada).
	UpsertMany(ctx context.Context, closings []*entity.DailyClosing) error
	// DeleteByDate elimina los cierres de la fecha; devuelve filas afectadas.
	DeleteByDate(ctx context.Context, date time.Time) (int64, error)
}

// MonthlyClosingRepository puerto de persistencia de cierres mensuales.
type MonthlyClosingRepository interface {
	Get(ctx context.Context, year, month int, companyID, facilityTypeID string) (*entity.MonthlyClosing, error)
	ListByMonth(ctx context.Context, year, month int) ([]*entity.MonthlyClosing, error)
	// AnyClosedForMonth indica si el mes ya tiene cierre cerrado (candado de recálculo).
	AnyClosedForMonth(ctx context.Context, year, month int) (bool, error)
	Upsert(ctx context.Context, closing *entity.MonthlyClosing) error
	DeleteByMonth(ctx context.Context, year, month int) (int64, error)
}
