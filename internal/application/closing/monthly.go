package closing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

// lastDayOfMonth devuelve el último día calendario del mes (00:00 UTC).
func lastDayOfMonth(year, month int) time.Time {
	// día 0 del mes siguiente
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

// ProcessMonthlyClosing calcula el cierre mensual de todas las claves con
// cierres diarios en el mes, más el arrastre de las claves del mes anterior
// sin actividad. Precondición: el último día calendario del mes debe tener
// cierre diario cerrado; si no, no-op y devuelve 0.
//
// La cantidad de cierre es la del último cierre diario cerrado del mes
// (no la fórmula aditiva): tolera ajustes fuera de banda y es el valor
// autoritativo.
func (uc *UseCase) ProcessMonthlyClosing(ctx context.Context, year, month int, actorID string) (int, error) {
	if actorID == "" || month < 1 || month > 12 || year < 2000 {
		return 0, domain.ErrInvalidInput
	}

	alreadyClosed, err := uc.monthlyRepo.AnyClosedForMonth(ctx, year, month)
	if err != nil {
		return 0, err
	}
	if alreadyClosed {
		uc.log.Info().Int("year", year).Int("month", month).Msg("el mes ya tiene cierre mensual; no-op")
		return 0, nil
	}

	lastDayClosed, err := uc.dailyRepo.AnyClosedForDate(ctx, lastDayOfMonth(year, month))
	if err != nil {
		return 0, err
	}
	if !lastDayClosed {
		uc.log.Warn().
			Int("year", year).
			Int("month", month).
			Msg("el último día del mes no tiene cierre diario; cierre mensual omitido")
		return 0, nil
	}

	keys, err := uc.monthlyKeys(ctx, year, month)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, key := range keys {
		if err := uc.closeMonthlyKey(ctx, key, year, month, actorID); err != nil {
			return processed, fmt.Errorf("cierre mensual %s/%s: %w", key.CompanyID, key.FacilityTypeID, err)
		}
		processed++
	}
	uc.log.Info().
		Int("year", year).
		Int("month", month).
		Int("processed", processed).
		Msg("cierre mensual completado")
	return processed, nil
}

// monthlyKeys devuelve las claves con cierres diarios en el mes unidas con
// las del cierre del mes anterior (arrastre de claves sin actividad).
func (uc *UseCase) monthlyKeys(ctx context.Context, year, month int) ([]entity.ClosingKey, error) {
	keys, err := uc.dailyRepo.ListKeysClosedInMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	prevYear, prevMonth := previousMonth(year, month)
	prevClosings, err := uc.monthlyRepo.ListByMonth(ctx, prevYear, prevMonth)
	if err != nil {
		return nil, err
	}

	seen := make(map[entity.ClosingKey]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, prev := range prevClosings {
		if k := prev.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// closeMonthlyKey calcula y persiste el cierre mensual de una clave en una
// transacción aislada.
func (uc *UseCase) closeMonthlyKey(ctx context.Context, key entity.ClosingKey, year, month int, actorID string) error {
	prevYear, prevMonth := previousMonth(year, month)

	return uc.txRunner.RunClosing(ctx, func(
		_ repository.TransactionRepository,
		dailyRepo repository.DailyClosingRepository,
		monthlyRepo repository.MonthlyClosingRepository,
	) error {
		var previousQty int64
		prev, err := monthlyRepo.Get(ctx, prevYear, prevMonth, key.CompanyID, key.FacilityTypeID)
		if err != nil {
			return err
		}
		if prev != nil {
			previousQty = prev.ClosingQuantity
		}

		dailies, err := dailyRepo.ListClosedInMonth(ctx, year, month, key.CompanyID, key.FacilityTypeID)
		if err != nil {
			return err
		}

		var totalIn, totalOut, closingQty int64
		if len(dailies) == 0 {
			// Clave sin actividad este mes: arrastre plano del mes anterior
			closingQty = previousQty
		} else {
			for _, d := range dailies {
				totalIn += d.InboundQuantity
				totalOut += d.OutboundQuantity
			}
			// Último cierre diario cerrado del mes: valor autoritativo
			closingQty = dailies[len(dailies)-1].ClosingQuantity
		}

		now := time.Now()
		return monthlyRepo.Upsert(ctx, &entity.MonthlyClosing{
			ClosingYear:      year,
			ClosingMonth:     month,
			CompanyID:        key.CompanyID,
			FacilityTypeID:   key.FacilityTypeID,
			PreviousQuantity: previousQty,
			TotalInbound:     totalIn,
			TotalOutbound:    totalOut,
			ClosingQuantity:  closingQty,
			IsClosed:         true,
			ClosedAt:         &now,
			ClosedBy:         actorID,
		})
	})
}

// DeleteMonthlyClosing elimina el cierre mensual completo del mes; es el paso
// previo obligatorio para recalcular un diario de un mes ya cerrado.
func (uc *UseCase) DeleteMonthlyClosing(ctx context.Context, year, month int, actorID string) (int64, error) {
	if month < 1 || month > 12 {
		return 0, domain.ErrInvalidInput
	}
	deleted, err := uc.monthlyRepo.DeleteByMonth(ctx, year, month)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, fmt.Errorf("cierre mensual %d-%02d: %w", year, month, domain.ErrNotFound)
	}
	uc.log.Info().
		Int("year", year).
		Int("month", month).
		Int64("deleted", deleted).
		Str("actor", actorID).
		Msg("cierre mensual eliminado")
	return deleted, nil
}

func previousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
