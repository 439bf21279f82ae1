package closing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// GetDailyClosing devuelve el cierre diario de una clave y fecha.
func (uc *UseCase) GetDailyClosing(ctx context.Context, date time.Time, companyID, facilityTypeID string) (*entity.DailyClosing, error) {
	c, err := uc.dailyRepo.Get(ctx, DateOnly(date), companyID, facilityTypeID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cierre diario %s %s/%s: %w",
			DateOnly(date).Format("2006-01-02"), companyID, facilityTypeID, domain.ErrNotFound)
	}
	return c, nil
}

// ListDailyClosings devuelve todos los cierres diarios de una fecha.
func (uc *UseCase) ListDailyClosings(ctx context.Context, date time.Time) ([]*entity.DailyClosing, error) {
	return uc.dailyRepo.ListByDate(ctx, DateOnly(date))
}

// GetMonthlyClosing devuelve el cierre mensual de una clave.
func (uc *UseCase) GetMonthlyClosing(ctx context.Context, year, month int, companyID, facilityTypeID string) (*entity.MonthlyClosing, error) {
	c, err := uc.monthlyRepo.Get(ctx, year, month, companyID, facilityTypeID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cierre mensual %d-%02d %s/%s: %w", year, month, companyID, facilityTypeID, domain.ErrNotFound)
	}
	return c, nil
}

// ListMonthlyClosings devuelve los cierres mensuales de un mes.
func (uc *UseCase) ListMonthlyClosings(ctx context.Context, year, month int) ([]*entity.MonthlyClosing, error) {
	return uc.monthlyRepo.ListByMonth(ctx, year, month)
}

// LiveStatus estado "en vivo" de una clave: último snapshot cerrado más los
// deltas no cerrados (y no cancelados) desde ese instante.
type LiveStatus struct {
	CompanyID       string
	FacilityTypeID  string
	LastClosingDate *time.Time // nil = sin cierre previo
	ClosedQuantity  int64
	PendingInbound  int64
	PendingOutbound int64
	CurrentQuantity int64
	AsOf            time.Time
}

// GetLiveStatus calcula el estado en vivo de una clave: arranca del último
// cierre diario cerrado (ventana acotada hacia atrás) y suma las transacciones
// posteriores a su processStartTime hasta ahora.
func (uc *UseCase) GetLiveStatus(ctx context.Context, companyID, facilityTypeID string) (*LiveStatus, error) {
	if companyID == "" || facilityTypeID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	tomorrow := DateOnly(now).AddDate(0, 0, 1)

	latest, err := uc.dailyRepo.GetLatestClosedBefore(ctx, tomorrow, companyID, facilityTypeID, uc.backwardWindow)
	if err != nil {
		return nil, err
	}

	status := &LiveStatus{
		CompanyID:      companyID,
		FacilityTypeID: facilityTypeID,
		AsOf:           now,
	}
	since := farPast
	if latest != nil {
		status.LastClosingDate = &latest.ClosingDate
		status.ClosedQuantity = latest.ClosingQuantity
		since = latest.ProcessStartTime
	}

	inbound, err := uc.transactionRepo.CountInbound(ctx, companyID, facilityTypeID, since, now)
	if err != nil {
		return nil, err
	}
	outbound, err := uc.transactionRepo.CountOutbound(ctx, companyID, facilityTypeID, since, now)
	if err != nil {
		return nil, err
	}
	status.PendingInbound = inbound
	status.PendingOutbound = outbound
	status.CurrentQuantity = status.ClosedQuantity + inbound - outbound
	return status, nil
}
