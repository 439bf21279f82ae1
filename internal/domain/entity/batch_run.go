package entity

import "time"

// Estrategias del orquestador de cierre batch.
const (
	BatchStrategyPerPair = "PER_PAIR" // una unidad async por clave (empresa, tipo)
	BatchStrategyGrouped = "GROUPED"  // grupos de empresas con escrituras por lotes
)

// ClosingBatchRun resumen persistido de una corrida batch de cierre diario.
// IncompleteUnits > 0 significa corrida degradada por timeout: las unidades
// terminadas cuentan como éxito y el resto se reporta, nunca se revierte.
type ClosingBatchRun struct {
	ID              string
	ClosingDate     time.Time
	Strategy        string
	TotalUnits      int
	ProcessedUnits  int
	FailedUnits     int
	IncompleteUnits int
	StartedAt       time.Time
	FinishedAt      time.Time
	TriggeredBy     string
}
