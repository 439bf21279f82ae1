package entity

import "time"

// Tipos de transacción del ledger de activos.
const (
	TransactionTypeINBOUND  = "INBOUND"  // alta / ingreso al inventario
	TransactionTypeOUTBOUND = "OUTBOUND" // salida definitiva
	TransactionTypeMOVE     = "MOVE"     // traslado entre empresas
	TransactionTypeRENTAL   = "RENTAL"   // entrega en alquiler
	TransactionTypeRETURN   = "RETURN"   // devolución de alquiler
	TransactionTypeSERVICE  = "SERVICE"  // envío o retorno de mantenimiento
	TransactionTypeDISPOSE  = "DISPOSE"  // baja definitiva
	TransactionTypeLOST     = "LOST"     // pérdida
	TransactionTypeMISC     = "MISC"     // ajuste / registro auxiliar
)

// InboundLikeTypes tipos que suman al inventario de la empresa destino (to_company).
// OutboundLikeTypes tipos que restan al inventario de la empresa origen (from_company).
// Un MOVE cuenta como salida para la empresa origen y como entrada para la destino.
// MISC es solo auditoría y nunca entra en los cierres.
var (
	InboundLikeTypes = []string{
		TransactionTypeINBOUND,
		TransactionTypeMOVE,
		TransactionTypeRETURN,
		TransactionTypeSERVICE,
	}
	OutboundLikeTypes = []string{
		TransactionTypeOUTBOUND,
		TransactionTypeMOVE,
		TransactionTypeRENTAL,
		TransactionTypeDISPOSE,
		TransactionTypeLOST,
		TransactionTypeSERVICE,
	}
)

// ValidTransactionType indica si el tipo es uno de los soportados por el ledger.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeINBOUND, TransactionTypeOUTBOUND, TransactionTypeMOVE,
		TransactionTypeRENTAL, TransactionTypeRETURN, TransactionTypeSERVICE,
		TransactionTypeDISPOSE, TransactionTypeLOST, TransactionTypeMISC:
		return true
	}
	return false
}

// Transaction representa un evento atómico sobre un activo (facility).
// Una transacción cancelada se conserva (nunca se borra) y queda excluida
// de forma permanente de los cierres.
type Transaction struct {
	ID                   string
	FacilityID           string
	Type                 string
	OccurredAt           time.Time
	FromCompanyID        string // vacío = sin empresa origen
	ToCompanyID          string // vacío = sin empresa destino
	StatusBefore         string // estado del activo al momento de crear la transacción
	StatusAfter          string
	RelatedTransactionID string // empareja RENTAL↔RETURN y SERVICE ida↔vuelta (simétrico)
	BatchID              string // correlaciona transacciones creadas como una operación lógica
	IsCancelled          bool
	CancellationReason   string
	CancelledAt          *time.Time
	CancelledBy          string
	PerformedBy          string
	ServiceRequestRef    string
	TransactionRef       string
	CreatedAt            time.Time
}
