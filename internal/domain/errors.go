package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrAlreadyCancelled = errors.New("la transacción ya está cancelada")
	ErrAlreadyClosed    = errors.New("el periodo ya tiene cierre")
	ErrLocked           = errors.New("el cierre mensual bloquea la operación; elimine primero el cierre del mes")
	ErrFacilityInactive = errors.New("el activo está inactivo o dado de baja")
	ErrMonthNotClosable = errors.New("el último día del mes no tiene cierre diario")
)
