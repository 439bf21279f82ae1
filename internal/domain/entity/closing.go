package entity

import "time"

// ClosingKey identifica la serie de cierres: empresa propietaria + tipo de activo.
type ClosingKey struct {
	CompanyID      string
	FacilityTypeID string
}

// DailyClosing snapshot inmutable del inventario de un día para una clave.
// Invariante: a lo sumo un registro cerrado por (fecha, empresa, tipo);
// ClosingQuantity = PreviousQuantity + InboundQuantity − OutboundQuantity.
type DailyClosing struct {
	ClosingDate      time.Time // truncado a fecha (00:00 UTC)
	CompanyID        string
	FacilityTypeID   string
	PreviousQuantity int64
	InboundQuantity  int64
	OutboundQuantity int64
	ClosingQuantity  int64
	IsClosed         bool
	ClosedAt         *time.Time
	ClosedBy         string
	ProcessStartTime time.Time // instante único fijado antes de procesar todas las claves
}

// Key devuelve la clave (empresa, tipo) del cierre.
func (d *DailyClosing) Key() ClosingKey {
	return ClosingKey{CompanyID: d.CompanyID, FacilityTypeID: d.FacilityTypeID}
}

// MonthlyClosing snapshot inmutable del inventario de un mes para una clave.
// ClosingQuantity es la cantidad del último cierre diario cerrado del mes
// (valor autoritativo; tolera ajustes manuales fuera de banda en los diarios).
type MonthlyClosing struct {
	ClosingYear      int
	ClosingMonth     int
	CompanyID        string
	FacilityTypeID   string
	PreviousQuantity int64
	TotalInbound     int64
	TotalOutbound    int64
	ClosingQuantity  int64
	IsClosed         bool
	ClosedAt         *time.Time
	ClosedBy         string
}

// Key devuelve la clave (empresa, tipo) del cierre mensual.
func (m *MonthlyClosing) Key() ClosingKey {
	return ClosingKey{CompanyID: m.CompanyID, FacilityTypeID: m.FacilityTypeID}
}
