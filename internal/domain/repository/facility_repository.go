package repository

import (
	"context"

	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// FacilityRepository puerto de lectura/actualización de activos.
// El alta y el catálogo de activos se administran fuera de este servicio.
type FacilityRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Facility, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción actual.
	GetForUpdate(ctx context.Context, id string) (*entity.Facility, error)
	Update(ctx context.Context, facility *entity.Facility) error
}
