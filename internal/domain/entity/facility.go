package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Códigos de estado de activo (catálogo facility_status_codes).
const (
	StatusAvailable        = "AVAILABLE"
	StatusRented           = "RENTED"
	StatusInService        = "IN_SERVICE"
	StatusDisposed         = "DISPOSED"
	StatusLost             = "LOST"
	StatusInboundCancelled = "INBOUND_CANCELLED" // alta cancelada: no existe estado previo válido
)

// Facility es el activo físico sobre el que opera el ledger.
// Su estado y ubicación actuales se actualizan en la misma transacción de BD
// que registra el evento del ledger.
type Facility struct {
	ID               string
	Name             string
	FacilityTypeID   string
	CurrentCompanyID string // empresa donde se encuentra el activo hoy
	Status           string
	AcquisitionCost  decimal.Decimal
	Active           bool
	DisposedAt       *time.Time
	DisposeReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
