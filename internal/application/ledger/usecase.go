package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cierres-api/internal/domain"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
	"github.com/jhoicas/Cierres-api/pkg/logger"
)

// UseCase registra y cancela transacciones del ledger de activos de forma transaccional.
// El evento y la actualización de estado/ubicación del activo van en la misma
// transacción de BD (TxRunner); el hook de comprobantes corre después del commit.
type UseCase struct {
	txRunner        TxRunner
	transactionRepo repository.TransactionRepository // lecturas fuera de transacción
	facilityRepo    repository.FacilityRepository
	masterRepo      repository.MasterDataRepository
	voucher         VoucherHook // nil = hook deshabilitado
	log             *logger.Logger
}

// NewUseCase construye el caso de uso del ledger.
func NewUseCase(
	txRunner TxRunner,
	transactionRepo repository.TransactionRepository,
	facilityRepo repository.FacilityRepository,
	masterRepo repository.MasterDataRepository,
	voucher VoucherHook,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:        txRunner,
		transactionRepo: transactionRepo,
		facilityRepo:    facilityRepo,
		masterRepo:      masterRepo,
		voucher:         voucher,
		log:             log,
	}
}

// GetTransaction devuelve una transacción por id (NotFound si no existe).
func (uc *UseCase) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("transacción %s: %w", id, domain.ErrNotFound)
	}
	return tx, nil
}

// ListFacilityTransactions lista el historial de un activo con filtros
// opcionales de rango y paginación. Valida que el activo exista.
func (uc *UseCase) ListFacilityTransactions(ctx context.Context, facilityID string, from, to *time.Time, limit, offset int) ([]*entity.Transaction, error) {
	facility, err := uc.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if facility == nil {
		return nil, fmt.Errorf("activo %s: %w", facilityID, domain.ErrNotFound)
	}
	return uc.transactionRepo.ListByFacility(ctx, facilityID, from, to, limit, offset)
}

// CreateTransactionInput entrada para registrar una transacción.
// FromCompanyID vacío se completa con la empresa actual del activo.
// OccurredAt en cero se completa con el instante actual.
type CreateTransactionInput struct {
	Type                 string
	FacilityID           string
	FromCompanyID        string
	ToCompanyID          string
	StatusAfter          string
	RelatedTransactionID string
	BatchID              string
	OccurredAt           time.Time
	ActorID              string
	ServiceRequestRef    string
	TransactionRef       string
}

// CreateTransaction valida referencias, captura el estado previo del activo y
// persiste el evento junto con la mutación del activo en una sola transacción.
// Devuelve la transacción persistida.
func (uc *UseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*entity.Transaction, error) {
	if !entity.ValidTransactionType(input.Type) {
		return nil, fmt.Errorf("tipo %q: %w", input.Type, domain.ErrInvalidInput)
	}
	if input.FacilityID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}

	facility, err := uc.facilityRepo.GetByID(ctx, input.FacilityID)
	if err != nil {
		return nil, err
	}
	if facility == nil {
		return nil, fmt.Errorf("activo %s: %w", input.FacilityID, domain.ErrNotFound)
	}
	if input.Type == entity.TransactionTypeDISPOSE && !facility.Active {
		return nil, fmt.Errorf("baja de activo inactivo: %w", domain.ErrConflict)
	}

	// Validar referencias a maestros: empresas y código de estado
	for _, companyID := range []string{input.FromCompanyID, input.ToCompanyID} {
		if companyID == "" {
			continue
		}
		company, err := uc.masterRepo.GetCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if company == nil {
			return nil, fmt.Errorf("empresa %s: %w", companyID, domain.ErrNotFound)
		}
	}
	if input.StatusAfter != "" {
		ok, err := uc.masterRepo.StatusCodeExists(ctx, input.StatusAfter)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("código de estado %s: %w", input.StatusAfter, domain.ErrNotFound)
		}
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	fromCompany := input.FromCompanyID
	if fromCompany == "" {
		fromCompany = facility.CurrentCompanyID
	}

	now := time.Now()
	tx := &entity.Transaction{
		ID:                   uuid.New().String(),
		FacilityID:           input.FacilityID,
		Type:                 input.Type,
		OccurredAt:           occurredAt,
		FromCompanyID:        fromCompany,
		ToCompanyID:          input.ToCompanyID,
		StatusBefore:         facility.Status,
		StatusAfter:          input.StatusAfter,
		RelatedTransactionID: input.RelatedTransactionID,
		BatchID:              input.BatchID,
		PerformedBy:          input.ActorID,
		ServiceRequestRef:    input.ServiceRequestRef,
		TransactionRef:       input.TransactionRef,
		CreatedAt:            now,
	}

	err = uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		facRepo repository.FacilityRepository,
	) error {
		// Bloquea la fila del activo para capturar y mutar estado sin carreras
		locked, err := facRepo.GetForUpdate(ctx, input.FacilityID)
		if err != nil {
			return err
		}
		if locked == nil {
			return fmt.Errorf("activo %s: %w", input.FacilityID, domain.ErrNotFound)
		}
		tx.StatusBefore = locked.Status

		if err := txRepo.Create(ctx, tx); err != nil {
			return err
		}
		// Enlace simétrico RENTAL↔RETURN / SERVICE ida↔vuelta
		if tx.RelatedTransactionID != "" {
			related, err := txRepo.GetByID(ctx, tx.RelatedTransactionID)
			if err != nil {
				return err
			}
			if related == nil {
				return fmt.Errorf("transacción relacionada %s: %w", tx.RelatedTransactionID, domain.ErrNotFound)
			}
			if err := txRepo.SetRelated(ctx, tx.ID, related.ID); err != nil {
				return err
			}
		}
		return uc.applyFacilityChange(ctx, facRepo, locked, tx, now)
	})
	if err != nil {
		return nil, err
	}

	uc.notifyVoucher(ctx, tx, facility)
	return tx, nil
}

// applyFacilityChange muta el activo según el tipo de transacción (misma tx de BD).
func (uc *UseCase) applyFacilityChange(
	ctx context.Context,
	facRepo repository.FacilityRepository,
	facility *entity.Facility,
	tx *entity.Transaction,
	now time.Time,
) error {
	if tx.StatusAfter != "" {
		facility.Status = tx.StatusAfter
	}
	if tx.ToCompanyID != "" {
		facility.CurrentCompanyID = tx.ToCompanyID
	}
	switch tx.Type {
	case entity.TransactionTypeINBOUND:
		facility.Active = true
	case entity.TransactionTypeDISPOSE:
		facility.Active = false
		facility.DisposedAt = &now
		facility.DisposeReason = tx.TransactionRef
		if tx.StatusAfter == "" {
			facility.Status = entity.StatusDisposed
		}
	case entity.TransactionTypeLOST:
		if tx.StatusAfter == "" {
			facility.Status = entity.StatusLost
		}
	}
	facility.UpdatedAt = now
	return facRepo.Update(ctx, facility)
}

// CancelTransaction marca la transacción como cancelada (la fila se conserva) y
// restaura el activo según la tabla de reversión por tipo. Cancelar dos veces
// devuelve Conflict. La cancelación es el único mecanismo que excluye una
// transacción de los cierres futuros.
func (uc *UseCase) CancelTransaction(ctx context.Context, id, reason, actorID string) error {
	if id == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	now := time.Now()

	return uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		facRepo repository.FacilityRepository,
	) error {
		tx, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if tx == nil {
			return fmt.Errorf("transacción %s: %w", id, domain.ErrNotFound)
		}
		if tx.IsCancelled {
			return fmt.Errorf("transacción %s: %w", id, domain.ErrAlreadyCancelled)
		}
		if err := txRepo.MarkCancelled(ctx, id, reason, actorID, now); err != nil {
			return err
		}

		facility, err := facRepo.GetForUpdate(ctx, tx.FacilityID)
		if err != nil {
			return err
		}
		if facility == nil {
			return fmt.Errorf("activo %s: %w", tx.FacilityID, domain.ErrNotFound)
		}
		return uc.revertFacility(ctx, facRepo, facility, tx, now)
	})
}

// revertFacility aplica la tabla de reversión por tipo de transacción.
func (uc *UseCase) revertFacility(
	ctx context.Context,
	facRepo repository.FacilityRepository,
	facility *entity.Facility,
	tx *entity.Transaction,
	now time.Time,
) error {
	switch tx.Type {
	case entity.TransactionTypeMOVE, entity.TransactionTypeOUTBOUND:
		// El activo vuelve a la empresa origen; el estado no se toca
		facility.CurrentCompanyID = tx.FromCompanyID

	case entity.TransactionTypeSERVICE:
		facility.CurrentCompanyID = tx.FromCompanyID
		facility.Status = tx.StatusBefore

	case entity.TransactionTypeDISPOSE:
		// Reactivar y limpiar los metadatos de baja
		facility.Active = true
		facility.Status = tx.StatusBefore
		facility.DisposedAt = nil
		facility.DisposeReason = ""

	case entity.TransactionTypeINBOUND:
		// No existe estado previo válido que restaurar: el activo queda inactivo
		facility.Active = false
		facility.Status = entity.StatusInboundCancelled

	case entity.TransactionTypeRENTAL, entity.TransactionTypeRETURN:
		// Alquiler y su devolución normalizan de vuelta al estado de alquiler
		facility.CurrentCompanyID = tx.FromCompanyID
		facility.Status = entity.StatusRented

	case entity.TransactionTypeLOST, entity.TransactionTypeMISC:
		// Sin reversión genérica definida: la cancelación queda solo como auditoría
		uc.log.Info().
			Str("transaction_id", tx.ID).
			Str("type", tx.Type).
			Msg("cancelación sin reversión de activo (solo auditoría)")
		return nil
	}
	facility.UpdatedAt = now
	return facRepo.Update(ctx, facility)
}

// notifyVoucher dispara el hook de comprobantes para INBOUND y DISPOSE.
// Un fallo del hook se registra y se traga: nunca revierte la transacción.
func (uc *UseCase) notifyVoucher(ctx context.Context, tx *entity.Transaction, facility *entity.Facility) {
	if uc.voucher == nil {
		return
	}
	if tx.Type != entity.TransactionTypeINBOUND && tx.Type != entity.TransactionTypeDISPOSE {
		return
	}
	companyID := tx.ToCompanyID
	if companyID == "" {
		companyID = tx.FromCompanyID
	}
	err := uc.voucher.CreateVoucher(ctx, VoucherRequest{
		TransactionID: tx.ID,
		FacilityID:    tx.FacilityID,
		Type:          tx.Type,
		CompanyID:     companyID,
		Amount:        facility.AcquisitionCost,
		OccurredAt:    tx.OccurredAt,
	})
	if err != nil {
		uc.log.Warn().
			Err(err).
			Str("transaction_id", tx.ID).
			Str("type", tx.Type).
			Msg("hook de comprobante contable falló; se ignora")
	}
}
