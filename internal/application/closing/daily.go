package closing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
	"github.com/jhoicas/Cierres-api/pkg/logger"
)

// DefaultBackwardWindowDays ventana acotada de búsqueda hacia atrás del
// cierre previo cuando el día anterior no tiene cierre.
const DefaultBackwardWindowDays = 30

// farPast centinela para claves sin ningún cierre previo dentro de la ventana:
// el conteo de transacciones arranca desde aquí con cantidad previa 0.
var farPast = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// UseCase calcula cierres diarios y mensuales por clave (empresa, tipo de activo)
// con contabilidad de arrastre: la cantidad del cierre anterior es el saldo
// inicial del periodo siguiente.
type UseCase struct {
	txRunner        TxRunner
	transactionRepo repository.TransactionRepository
	dailyRepo       repository.DailyClosingRepository
	monthlyRepo     repository.MonthlyClosingRepository
	masterRepo      repository.MasterDataRepository
	backwardWindow  int
	log             *logger.Logger
}

// NewUseCase construye el caso de uso de cierres. backwardWindowDays <= 0
// aplica DefaultBackwardWindowDays.
func NewUseCase(
	txRunner TxRunner,
	transactionRepo repository.TransactionRepository,
	dailyRepo repository.DailyClosingRepository,
	monthlyRepo repository.MonthlyClosingRepository,
	masterRepo repository.MasterDataRepository,
	backwardWindowDays int,
	log *logger.Logger,
) *UseCase {
	if backwardWindowDays <= 0 {
		backwardWindowDays = DefaultBackwardWindowDays
	}
	return &UseCase{
		txRunner:        txRunner,
		transactionRepo: transactionRepo,
		dailyRepo:       dailyRepo,
		monthlyRepo:     monthlyRepo,
		masterRepo:      masterRepo,
		backwardWindow:  backwardWindowDays,
		log:             log,
	}
}

// DailyResult resumen de una corrida de cierre diario.
// WithoutPrior cuenta las claves cerradas sin ningún cierre previo en la
// ventana (arrancaron de cero); se reporta aparte para que un hueco de
// periodos no pase como un cero indistinguible.
type DailyResult struct {
	Processed    int
	WithoutPrior int
}

// DateOnly normaliza un instante a su fecha (00:00 UTC).
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Keys devuelve el producto cartesiano empresas × tipos de activo.
func (uc *UseCase) Keys(ctx context.Context) ([]entity.ClosingKey, error) {
	companies, err := uc.masterRepo.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	types, err := uc.masterRepo.ListFacilityTypes(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]entity.ClosingKey, 0, len(companies)*len(types))
	for _, c := range companies {
		for _, t := range types {
			keys = append(keys, entity.ClosingKey{CompanyID: c.ID, FacilityTypeID: t.ID})
		}
	}
	return keys, nil
}

// ProcessDailyClosing calcula el cierre diario de todas las claves para la fecha.
// Idempotente: si la fecha ya tiene algún cierre cerrado devuelve 0 procesadas.
// processStart se fija una sola vez antes de la primera clave, de modo que
// todas cierran contra el mismo instante.
func (uc *UseCase) ProcessDailyClosing(ctx context.Context, date time.Time, actorID string) (*DailyResult, error) {
	if actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	date = DateOnly(date)

	closed, err := uc.dailyRepo.AnyClosedForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if closed {
		uc.log.Info().Time("date", date).Msg("la fecha ya tiene cierre diario; no-op")
		return &DailyResult{}, nil
	}

	processStart := time.Now()
	keys, err := uc.Keys(ctx)
	if err != nil {
		return nil, err
	}

	result := &DailyResult{}
	for _, key := range keys {
		withoutPrior, err := uc.CloseDailyKey(ctx, key, date, processStart, actorID)
		if err != nil {
			return result, fmt.Errorf("cierre diario %s/%s: %w", key.CompanyID, key.FacilityTypeID, err)
		}
		result.Processed++
		if withoutPrior {
			result.WithoutPrior++
		}
	}
	uc.log.Info().
		Time("date", date).
		Int("processed", result.Processed).
		Int("without_prior", result.WithoutPrior).
		Msg("cierre diario completado")
	return result, nil
}

// CloseDailyKey calcula y persiste el cierre de una clave en su propia
// transacción aislada. Es la unidad mínima que paraleliza el orquestador batch.
func (uc *UseCase) CloseDailyKey(ctx context.Context, key entity.ClosingKey, date, processStart time.Time, actorID string) (bool, error) {
	var withoutPrior bool
	err := uc.txRunner.RunClosing(ctx, func(
		txRepo repository.TransactionRepository,
		dailyRepo repository.DailyClosingRepository,
		_ repository.MonthlyClosingRepository,
	) error {
		row, noPrior, err := uc.ComputeDailyKey(ctx, txRepo, dailyRepo, key, date, processStart, actorID)
		if err != nil {
			return err
		}
		withoutPrior = noPrior
		return dailyRepo.Upsert(ctx, row)
	})
	return withoutPrior, err
}

// ComputeDailyKey calcula el cierre de una clave sin persistirlo, usando los
// repositorios del caller (transacción del caller). El segundo valor indica
// que no se encontró cierre previo dentro de la ventana y se arrancó de cero.
//
// Algoritmo de arrastre:
//  1. Buscar hacia atrás (ventana acotada) el cierre cerrado más reciente.
//  2. Contar entradas y salidas no canceladas en (últimoCierre, processStart].
//  3. cierre = previo + entradas − salidas.
func (uc *UseCase) ComputeDailyKey(
	ctx context.Context,
	txRepo repository.TransactionRepository,
	dailyRepo repository.DailyClosingRepository,
	key entity.ClosingKey,
	date, processStart time.Time,
	actorID string,
) (*entity.DailyClosing, bool, error) {
	prior, err := dailyRepo.GetLatestClosedBefore(ctx, date, key.CompanyID, key.FacilityTypeID, uc.backwardWindow)
	if err != nil {
		return nil, false, err
	}

	var previousQty int64
	lastClosingTime := farPast
	withoutPrior := prior == nil
	if prior != nil {
		previousQty = prior.ClosingQuantity
		lastClosingTime = prior.ProcessStartTime
	} else {
		uc.log.Warn().
			Time("date", date).
			Str("company_id", key.CompanyID).
			Str("facility_type_id", key.FacilityTypeID).
			Int("window_days", uc.backwardWindow).
			Msg("sin cierre previo en la ventana; se arranca con cantidad 0")
	}

	inbound, err := txRepo.CountInbound(ctx, key.CompanyID, key.FacilityTypeID, lastClosingTime, processStart)
	if err != nil {
		return nil, false, err
	}
	outbound, err := txRepo.CountOutbound(ctx, key.CompanyID, key.FacilityTypeID, lastClosingTime, processStart)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	return &entity.DailyClosing{
		ClosingDate:      date,
		CompanyID:        key.CompanyID,
		FacilityTypeID:   key.FacilityTypeID,
		PreviousQuantity: previousQty,
		InboundQuantity:  inbound,
		OutboundQuantity: outbound,
		ClosingQuantity:  previousQty + inbound - outbound,
		IsClosed:         true,
		ClosedAt:         &now,
		ClosedBy:         actorID,
		ProcessStartTime: processStart,
	}, withoutPrior, nil
}

// RecalculateDailyClosing borra los cierres de la fecha y vuelve a ejecutar
// ProcessDailyClosing. Falla con Locked si el mes propietario ya tiene cierre
// mensual: primero debe eliminarse ese cierre.
func (uc *UseCase) RecalculateDailyClosing(ctx context.Context, date time.Time, actorID string) (*DailyResult, error) {
	date = DateOnly(date)

	monthClosed, err := uc.monthlyRepo.AnyClosedForMonth(ctx, date.Year(), int(date.Month()))
	if err != nil {
		return nil, err
	}
	if monthClosed {
		return nil, fmt.Errorf("recalcular %s: %w", date.Format("2006-01-02"), domain.ErrLocked)
	}

	deleted, err := uc.dailyRepo.DeleteByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Time("date", date).
		Int64("deleted", deleted).
		Str("actor", actorID).
		Msg("cierres diarios eliminados para recálculo")

	return uc.ProcessDailyClosing(ctx, date, actorID)
}
