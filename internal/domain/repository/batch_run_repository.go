package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// BatchRunRepository puerto de persistencia de resúmenes de corridas batch.
type BatchRunRepository interface {
	Create(ctx context.Context, run *entity.ClosingBatchRun) error
	GetByID(ctx context.Context, id string) (*entity.ClosingBatchRun, error)
	ListByDate(ctx context.Context, date time.Time) ([]*entity.ClosingBatchRun, error)
}
