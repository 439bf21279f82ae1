package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el registro del evento y la mutación del activo sean atómicos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		txRepo repository.TransactionRepository,
		facilityRepo repository.FacilityRepository,
	) error) error
}

// VoucherRequest datos mínimos para generar el comprobante contable externo.
type VoucherRequest struct {
	TransactionID string
	FacilityID    string
	Type          string
	CompanyID     string
	Amount        decimal.Decimal
	OccurredAt    time.Time
}

// VoucherHook notificación fire-and-forget al servicio de comprobantes contables.
// Se invoca después del commit para INBOUND y DISPOSE; un error del hook se
// registra en el log y nunca revierte la transacción que lo disparó.
type VoucherHook interface {
	CreateVoucher(ctx context.Context, req VoucherRequest) error
}
