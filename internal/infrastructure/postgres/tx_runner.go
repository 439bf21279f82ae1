package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Cierres-api/internal/application/closing"
	"github.com/jhoicas/Cierres-api/internal/application/ledger"
	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner and closing.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ closing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos del ledger atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	txRepo repository.TransactionRepository,
	facilityRepo repository.FacilityRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTransactionRepository(tx), NewFacilityRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunClosing inicia una transacción SERIALIZABLE con los repos de cierre.
// El nivel de aislamiento protege el paso leer-previo-escribir-siguiente del
// arrastre cuando dos callers procesan el mismo periodo a la vez.
func (r *TxRunner) RunClosing(ctx context.Context, fn func(
	txRepo repository.TransactionRepository,
	dailyRepo repository.DailyClosingRepository,
	monthlyRepo repository.MonthlyClosingRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewTransactionRepository(tx),
		NewDailyClosingRepository(tx),
		NewMonthlyClosingRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
