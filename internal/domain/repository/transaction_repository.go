package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia del ledger de transacciones.
// Los contadores excluyen siempre las transacciones canceladas; el rango de
// tiempo es (after, until] para encadenar con el instante del cierre anterior.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// MarkCancelled marca la transacción como cancelada conservando la fila.
	MarkCancelled(ctx context.Context, id, reason, actorID string, at time.Time) error
	// SetRelated enlaza a↔b de forma simétrica (related_transaction_id en ambas).
	SetRelated(ctx context.Context, aID, bID string) error
	ListByFacility(ctx context.Context, facilityID string, from, to *time.Time, limit, offset int) ([]*entity.Transaction, error)
	ListByBatchID(ctx context.Context, batchID string) ([]*entity.Transaction, error)
	// CountInbound cuenta transacciones no canceladas de tipo entrada
	// (to_company = companyID) para el tipo de activo dado, en (after, until].
	CountInbound(ctx context.Context, companyID, facilityTypeID string, after, until time.Time) (int64, error)
	// CountOutbound análogo para tipos de salida (from_company = companyID).
	CountOutbound(ctx context.Context, companyID, facilityTypeID string, after, until time.Time) (int64, error)
}
