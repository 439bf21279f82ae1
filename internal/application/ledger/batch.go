package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Cierres-api/internal/domain"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// CreateBatch registra varias transacciones como una sola operación lógica
// bajo un batchID común (generado si viene vacío). Falla en el primer error:
// un batch de creación es una operación única, no un proceso tolerante.
// Devuelve el batchID y las transacciones creadas hasta el momento del fallo.
func (uc *UseCase) CreateBatch(ctx context.Context, inputs []CreateTransactionInput, batchID, actorID string) (string, []*entity.Transaction, error) {
	if len(inputs) == 0 {
		return "", nil, domain.ErrInvalidInput
	}
	if batchID == "" {
		batchID = uuid.New().String()
	}

	created := make([]*entity.Transaction, 0, len(inputs))
	for i, input := range inputs {
		input.BatchID = batchID
		if input.ActorID == "" {
			input.ActorID = actorID
		}
		tx, err := uc.CreateTransaction(ctx, input)
		if err != nil {
			return batchID, created, fmt.Errorf("batch %s, entrada %d: %w", batchID, i, err)
		}
		created = append(created, tx)
	}
	uc.log.Info().
		Str("batch_id", batchID).
		Int("transactions", len(created)).
		Msg("batch de transacciones creado")
	return batchID, created, nil
}

// CancelBatchSummary resultado de cancelar un batch transacción por transacción.
type CancelBatchSummary struct {
	BatchID          string
	Cancelled        int
	AlreadyCancelled int
	Failed           int
	Errors           []error
}

// CancelBatch cancela una a una las transacciones no canceladas del batch.
// Continúa ante errores individuales y devuelve el resumen agregado; las
// ya canceladas no cuentan como fallo.
func (uc *UseCase) CancelBatch(ctx context.Context, batchID, reason, actorID string) (*CancelBatchSummary, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	txs, err := uc.transactionRepo.ListByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("batch %s: %w", batchID, domain.ErrNotFound)
	}

	summary := &CancelBatchSummary{BatchID: batchID}
	for _, tx := range txs {
		if tx.IsCancelled {
			summary.AlreadyCancelled++
			continue
		}
		if err := uc.CancelTransaction(ctx, tx.ID, reason, actorID); err != nil {
			if errors.Is(err, domain.ErrAlreadyCancelled) {
				summary.AlreadyCancelled++
				continue
			}
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Errorf("transacción %s: %w", tx.ID, err))
			uc.log.Warn().
				Err(err).
				Str("batch_id", batchID).
				Str("transaction_id", tx.ID).
				Msg("fallo al cancelar transacción del batch; se continúa")
			continue
		}
		summary.Cancelled++
	}
	uc.log.Info().
		Str("batch_id", batchID).
		Int("cancelled", summary.Cancelled).
		Int("failed", summary.Failed).
		Msg("cancelación de batch completada")
	return summary, nil
}

// ListBatchTransactions devuelve las transacciones de un batch.
func (uc *UseCase) ListBatchTransactions(ctx context.Context, batchID string) ([]*entity.Transaction, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.transactionRepo.ListByBatchID(ctx, batchID)
}
