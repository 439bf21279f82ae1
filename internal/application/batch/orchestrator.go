package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cierres-api/internal/application/closing"
	"github.com/jhoicas/Cierres-api/internal/domain"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
	"github.com/jhoicas/Cierres-api/pkg/logger"
)

// Límites por defecto del orquestador.
const (
	DefaultOverallTimeout = 10 * time.Minute
	DefaultFlushSize      = 100
	maxGroups             = 20
)

// Config parámetros de una corrida batch.
type Config struct {
	Strategy       string        // PER_PAIR | GROUPED
	OverallTimeout time.Duration // espera máxima del join; no cancela unidades en vuelo
	MaxWorkers     int           // pool para PER_PAIR (0 = 2×GOMAXPROCS)
	FlushSize      int           // lote de escritura en GROUPED
}

// Orchestrator paraleliza el cierre diario sobre el producto cartesiano
// empresas × tipos de activo. Cada unidad ejecuta el mismo algoritmo de
// arrastre que el cierre secuencial, acotada a sus propias claves y dentro
// de su propia transacción aislada: las unidades no comparten estado mutable
// y la única frontera de serialización es la clave única del cierre en BD.
type Orchestrator struct {
	closingUC  *closing.UseCase
	txRunner   closing.TxRunner
	dailyRepo  repository.DailyClosingRepository
	masterRepo repository.MasterDataRepository
	runRepo    repository.BatchRunRepository
	cfg        Config
	log        *logger.Logger
}

// NewOrchestrator construye el orquestador batch.
func NewOrchestrator(
	closingUC *closing.UseCase,
	txRunner closing.TxRunner,
	dailyRepo repository.DailyClosingRepository,
	masterRepo repository.MasterDataRepository,
	runRepo repository.BatchRunRepository,
	cfg Config,
	log *logger.Logger,
) *Orchestrator {
	if cfg.Strategy == "" {
		cfg.Strategy = entity.BatchStrategyPerPair
	}
	if cfg.OverallTimeout <= 0 {
		cfg.OverallTimeout = DefaultOverallTimeout
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 2 * runtime.GOMAXPROCS(0)
	}
	if cfg.FlushSize <= 0 {
		cfg.FlushSize = DefaultFlushSize
	}
	return &Orchestrator{
		closingUC:  closingUC,
		txRunner:   txRunner,
		dailyRepo:  dailyRepo,
		masterRepo: masterRepo,
		runRepo:    runRepo,
		cfg:        cfg,
		log:        log,
	}
}

// RunDaily ejecuta el cierre diario de la fecha en paralelo y persiste el
// resumen de la corrida. El join espera hasta el timeout global: las unidades
// ya terminadas cuentan como éxito y el resto se reporta como incompleto;
// la corrida nunca falla en bloque por un timeout o por unidades fallidas.
func (o *Orchestrator) RunDaily(ctx context.Context, date time.Time, actorID string) (*entity.ClosingBatchRun, error) {
	if actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	date = closing.DateOnly(date)

	run := &entity.ClosingBatchRun{
		ID:          uuid.New().String(),
		ClosingDate: date,
		Strategy:    o.cfg.Strategy,
		StartedAt:   time.Now(),
		TriggeredBy: actorID,
	}

	// Misma idempotencia que el camino secuencial
	alreadyClosed, err := o.dailyRepo.AnyClosedForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if alreadyClosed {
		o.log.Info().Time("date", date).Msg("la fecha ya tiene cierre diario; corrida batch omitida")
		run.FinishedAt = time.Now()
		if err := o.runRepo.Create(ctx, run); err != nil {
			return nil, err
		}
		return run, nil
	}

	processStart := time.Now()
	units, err := o.buildUnits(ctx, date, processStart, actorID)
	if err != nil {
		return nil, err
	}
	run.TotalUnits = len(units)

	results := dispatch(ctx, units, o.cfg.MaxWorkers)
	deadline := time.After(o.cfg.OverallTimeout)

	pending := len(units)
join:
	for pending > 0 {
		select {
		case r := <-results:
			pending--
			if r.err != nil {
				run.FailedUnits++
				o.log.Error().Err(r.err).Str("unit", r.name).Msg("unidad de cierre fallida")
				continue
			}
			run.ProcessedUnits++
		case <-deadline:
			// El timeout no cancela el trabajo en vuelo: las transacciones
			// siguen hasta completarse, pero esta corrida ya no las cuenta
			run.IncompleteUnits = pending
			o.log.Warn().
				Int("incomplete", pending).
				Dur("timeout", o.cfg.OverallTimeout).
				Msg("timeout global del batch; unidades pendientes reportadas como incompletas")
			break join
		}
	}

	run.FinishedAt = time.Now()
	if err := o.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}
	o.log.Info().
		Str("run_id", run.ID).
		Time("date", date).
		Str("strategy", run.Strategy).
		Int("processed", run.ProcessedUnits).
		Int("failed", run.FailedUnits).
		Int("incomplete", run.IncompleteUnits).
		Msg("corrida batch de cierre diario finalizada")
	return run, nil
}

// buildUnits arma las unidades según la estrategia configurada.
func (o *Orchestrator) buildUnits(ctx context.Context, date, processStart time.Time, actorID string) ([]unit, error) {
	switch o.cfg.Strategy {
	case entity.BatchStrategyPerPair:
		return o.perPairUnits(ctx, date, processStart, actorID)
	case entity.BatchStrategyGrouped:
		return o.groupedUnits(ctx, date, processStart, actorID)
	default:
		return nil, fmt.Errorf("estrategia %q: %w", o.cfg.Strategy, domain.ErrInvalidInput)
	}
}

// perPairUnits: una unidad por clave (empresa, tipo); cada una cierra su clave
// dentro de su propia transacción.
func (o *Orchestrator) perPairUnits(ctx context.Context, date, processStart time.Time, actorID string) ([]unit, error) {
	keys, err := o.closingUC.Keys(ctx)
	if err != nil {
		return nil, err
	}
	units := make([]unit, 0, len(keys))
	for _, key := range keys {
		key := key
		units = append(units, unit{
			name: key.CompanyID + "/" + key.FacilityTypeID,
			run: func(ctx context.Context) (int, error) {
				if _, err := o.closingUC.CloseDailyKey(ctx, key, date, processStart, actorID); err != nil {
					return 0, err
				}
				return 1, nil
			},
		})
	}
	return units, nil
}

// groupedUnits: particiona las empresas en ⌈min(2×GOMAXPROCS, 20)⌉ grupos;
// cada grupo recorre secuencialmente su subconjunto de empresas × todos los
// tipos, acumulando los cierres calculados y persistiéndolos por lotes.
func (o *Orchestrator) groupedUnits(ctx context.Context, date, processStart time.Time, actorID string) ([]unit, error) {
	companies, err := o.masterRepo.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	types, err := o.masterRepo.ListFacilityTypes(ctx)
	if err != nil {
		return nil, err
	}

	groupCount := 2 * runtime.GOMAXPROCS(0)
	if groupCount > maxGroups {
		groupCount = maxGroups
	}
	if groupCount > len(companies) {
		groupCount = len(companies)
	}
	if groupCount == 0 {
		return nil, nil
	}

	groups := make([][]*entity.Company, groupCount)
	for i, c := range companies {
		groups[i%groupCount] = append(groups[i%groupCount], c)
	}

	units := make([]unit, 0, groupCount)
	for i, group := range groups {
		i, group := i, group
		units = append(units, unit{
			name: fmt.Sprintf("group-%d", i),
			run: func(ctx context.Context) (int, error) {
				return o.runGroup(ctx, group, types, date, processStart, actorID)
			},
		})
	}
	return units, nil
}

// runGroup procesa las claves de un grupo en lotes de FlushSize. Cada lote
// calcula sus cierres y los persiste dentro de la misma transacción
// serializable: la lectura del cierre previo y la escritura del nuevo quedan
// bajo el mismo aislamiento que el camino por clave.
func (o *Orchestrator) runGroup(
	ctx context.Context,
	companies []*entity.Company,
	types []*entity.FacilityType,
	date, processStart time.Time,
	actorID string,
) (int, error) {
	keys := make([]entity.ClosingKey, 0, len(companies)*len(types))
	for _, c := range companies {
		for _, t := range types {
			keys = append(keys, entity.ClosingKey{CompanyID: c.ID, FacilityTypeID: t.ID})
		}
	}

	processed := 0
	for start := 0; start < len(keys); start += o.cfg.FlushSize {
		end := start + o.cfg.FlushSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		err := o.txRunner.RunClosing(ctx, func(
			txRepo repository.TransactionRepository,
			dailyRepo repository.DailyClosingRepository,
			_ repository.MonthlyClosingRepository,
		) error {
			rows := make([]*entity.DailyClosing, 0, len(chunk))
			for _, key := range chunk {
				row, _, err := o.closingUC.ComputeDailyKey(ctx, txRepo, dailyRepo, key, date, processStart, actorID)
				if err != nil {
					return err
				}
				rows = append(rows, row)
			}
			return dailyRepo.UpsertMany(ctx, rows)
		})
		if err != nil {
			return processed, err
		}
		processed += len(chunk)
	}
	return processed, nil
}

// GetRun devuelve el resumen de una corrida batch.
func (o *Orchestrator) GetRun(ctx context.Context, id string) (*entity.ClosingBatchRun, error) {
	run, err := o.runRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("corrida batch %s: %w", id, domain.ErrNotFound)
	}
	return run, nil
}

// ListRunsByDate devuelve las corridas batch de una fecha de cierre.
func (o *Orchestrator) ListRunsByDate(ctx context.Context, date time.Time) ([]*entity.ClosingBatchRun, error) {
	return o.runRepo.ListByDate(ctx, closing.DateOnly(date))
}
