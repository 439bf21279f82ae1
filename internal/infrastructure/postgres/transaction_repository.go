package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cierres-api/internal/domain"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `
	id, facility_id, type, occurred_at, from_company_id, to_company_id,
	status_before, status_after, related_transaction_id, batch_id,
	is_cancelled, cancellation_reason, cancelled_at, cancelled_by,
	performed_by, service_request_ref, transaction_ref, created_at`

// Create persiste una transacción del ledger.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ledger_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.FacilityID, t.Type, t.OccurredAt,
		nullable(t.FromCompanyID), nullable(t.ToCompanyID),
		nullable(t.StatusBefore), nullable(t.StatusAfter),
		nullable(t.RelatedTransactionID), nullable(t.BatchID),
		t.IsCancelled, nullable(t.CancellationReason), t.CancelledAt, nullable(t.CancelledBy),
		t.PerformedBy, nullable(t.ServiceRequestRef), nullable(t.TransactionRef), t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transacción %s: %w", t.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID. nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// MarkCancelled marca la transacción como cancelada conservando la fila.
func (r *TransactionRepo) MarkCancelled(ctx context.Context, id, reason, actorID string, at time.Time) error {
	query := `
		UPDATE ledger_transactions
		SET is_cancelled = true, cancellation_reason = $2, cancelled_by = $3, cancelled_at = $4
		WHERE id = $1 AND is_cancelled = false`
	tag, err := r.q.Exec(ctx, query, id, reason, actorID, at)
	if err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transacción %s: %w", id, domain.ErrConflict)
	}
	return nil
}

// SetRelated enlaza a↔b de forma simétrica.
func (r *TransactionRepo) SetRelated(ctx context.Context, aID, bID string) error {
	query := `
		UPDATE ledger_transactions
		SET related_transaction_id = CASE id WHEN $1 THEN $2 WHEN $2 THEN $1 END
		WHERE id IN ($1, $2)`
	if _, err := r.q.Exec(ctx, query, aID, bID); err != nil {
		return fmt.Errorf("set related: %w", err)
	}
	return nil
}

// ListByFacility lista transacciones de un activo en un rango de fechas.
func (r *TransactionRepo) ListByFacility(ctx context.Context, facilityID string, from, to *time.Time, limit, offset int) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE facility_id = $1`
	args := []any{facilityID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	return r.list(ctx, query, args...)
}

// ListByBatchID lista las transacciones de un batch en orden de creación.
func (r *TransactionRepo) ListByBatchID(ctx context.Context, batchID string) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE batch_id = $1 ORDER BY created_at`
	return r.list(ctx, query, batchID)
}

// CountInbound cuenta transacciones no canceladas de tipo entrada hacia la
// empresa, para el tipo de activo, con occurred_at en (after, until].
func (r *TransactionRepo) CountInbound(ctx context.Context, companyID, facilityTypeID string, after, until time.Time) (int64, error) {
	return r.countDirectional(ctx, "to_company_id", entity.InboundLikeTypes, companyID, facilityTypeID, after, until)
}

// CountOutbound análogo para tipos de salida desde la empresa.
func (r *TransactionRepo) CountOutbound(ctx context.Context, companyID, facilityTypeID string, after, until time.Time) (int64, error) {
	return r.countDirectional(ctx, "from_company_id", entity.OutboundLikeTypes, companyID, facilityTypeID, after, until)
}

func (r *TransactionRepo) countDirectional(ctx context.Context, companyColumn string, types []string, companyID, facilityTypeID string, after, until time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM ledger_transactions t
		JOIN facilities f ON f.id = t.facility_id
		WHERE t.` + companyColumn + ` = $1
		  AND f.facility_type_id = $2
		  AND t.type = ANY($3)
		  AND t.is_cancelled = false
		  AND t.occurred_at > $4 AND t.occurred_at <= $5`
	var count int64
	err := r.q.QueryRow(ctx, query, companyID, facilityTypeID, types, after, until).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// scanTransaction lee una fila con las columnas de transactionColumns.
func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var fromCompany, toCompany, statusBefore, statusAfter *string
	var related, batchID, reason, cancelledBy, serviceRef, txRef *string
	err := row.Scan(
		&t.ID, &t.FacilityID, &t.Type, &t.OccurredAt, &fromCompany, &toCompany,
		&statusBefore, &statusAfter, &related, &batchID,
		&t.IsCancelled, &reason, &t.CancelledAt, &cancelledBy,
		&t.PerformedBy, &serviceRef, &txRef, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.FromCompanyID = deref(fromCompany)
	t.ToCompanyID = deref(toCompany)
	t.StatusBefore = deref(statusBefore)
	t.StatusAfter = deref(statusAfter)
	t.RelatedTransactionID = deref(related)
	t.BatchID = deref(batchID)
	t.CancellationReason = deref(reason)
	t.CancelledBy = deref(cancelledBy)
	t.ServiceRequestRef = deref(serviceRef)
	t.TransactionRef = deref(txRef)
	return &t, nil
}

// nullable convierte "" a NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
