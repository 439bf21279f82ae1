package dto

import (
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// CreateTransactionRequest cuerpo para registrar una transacción del ledger.
type CreateTransactionRequest struct {
	Type                 string     `json:"type"`
	FacilityID           string     `json:"facility_id"`
	FromCompanyID        string     `json:"from_company_id,omitempty"`
	ToCompanyID          string     `json:"to_company_id,omitempty"`
	StatusAfter          string     `json:"status_after,omitempty"`
	RelatedTransactionID string     `json:"related_transaction_id,omitempty"`
	OccurredAt           *time.Time `json:"occurred_at,omitempty"`
	ServiceRequestRef    string     `json:"service_request_ref,omitempty"`
	TransactionRef       string     `json:"transaction_ref,omitempty"`
}

// CancelRequest cuerpo para cancelar una transacción o un batch.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// CreateBatchRequest cuerpo para registrar un batch de transacciones.
type CreateBatchRequest struct {
	BatchID      string                     `json:"batch_id,omitempty"` // vacío = generado
	Transactions []CreateTransactionRequest `json:"transactions"`
}

// TransactionResponse representación de una transacción del ledger.
type TransactionResponse struct {
	ID                   string     `json:"id"`
	FacilityID           string     `json:"facility_id"`
	Type                 string     `json:"type"`
	OccurredAt           time.Time  `json:"occurred_at"`
	FromCompanyID        string     `json:"from_company_id,omitempty"`
	ToCompanyID          string     `json:"to_company_id,omitempty"`
	StatusBefore         string     `json:"status_before,omitempty"`
	StatusAfter          string     `json:"status_after,omitempty"`
	RelatedTransactionID string     `json:"related_transaction_id,omitempty"`
	BatchID              string     `json:"batch_id,omitempty"`
	IsCancelled          bool       `json:"is_cancelled"`
	CancellationReason   string     `json:"cancellation_reason,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	PerformedBy          string     `json:"performed_by"`
	TransactionRef       string     `json:"transaction_ref,omitempty"`
}

// NewTransactionResponse mapea la entidad a su representación HTTP.
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                   t.ID,
		FacilityID:           t.FacilityID,
		Type:                 t.Type,
		OccurredAt:           t.OccurredAt,
		FromCompanyID:        t.FromCompanyID,
		ToCompanyID:          t.ToCompanyID,
		StatusBefore:         t.StatusBefore,
		StatusAfter:          t.StatusAfter,
		RelatedTransactionID: t.RelatedTransactionID,
		BatchID:              t.BatchID,
		IsCancelled:          t.IsCancelled,
		CancellationReason:   t.CancellationReason,
		CancelledAt:          t.CancelledAt,
		PerformedBy:          t.PerformedBy,
		TransactionRef:       t.TransactionRef,
	}
}

// CancelBatchResponse resumen de la cancelación de un batch.
type CancelBatchResponse struct {
	BatchID          string   `json:"batch_id"`
	Cancelled        int      `json:"cancelled"`
	AlreadyCancelled int      `json:"already_cancelled"`
	Failed           int      `json:"failed"`
	Errors           []string `json:"errors,omitempty"`
}
