package repository

import (
	"context"

	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// MasterDataRepository puerto de consulta de datos maestros (solo lectura).
// Empresas, tipos de activo y códigos de estado se administran en otro servicio;
// aquí resuelven a id + nombre opacos.
type MasterDataRepository interface {
	GetCompany(ctx context.Context, id string) (*entity.Company, error)
	ListCompanies(ctx context.Context) ([]*entity.Company, error)
	GetFacilityType(ctx context.Context, id string) (*entity.FacilityType, error)
	ListFacilityTypes(ctx context.Context) ([]*entity.FacilityType, error)
	StatusCodeExists(ctx context.Context, code string) (bool, error)
}
