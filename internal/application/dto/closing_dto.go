package dto

import (
	"time"

	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// DailyClosingResponse representación HTTP de un cierre diario.
type DailyClosingResponse struct {
	ClosingDate      string     `json:"closing_date"` // YYYY-MM-DD
	CompanyID        string     `json:"company_id"`
	FacilityTypeID   string     `json:"facility_type_id"`
	PreviousQuantity int64      `json:"previous_quantity"`
	InboundQuantity  int64      `json:"inbound_quantity"`
	OutboundQuantity int64      `json:"outbound_quantity"`
	ClosingQuantity  int64      `json:"closing_quantity"`
	IsClosed         bool       `json:"is_closed"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	ClosedBy         string     `json:"closed_by,omitempty"`
}

// NewDailyClosingResponse mapea la entidad a su representación HTTP.
func NewDailyClosingResponse(c *entity.DailyClosing) DailyClosingResponse {
	return DailyClosingResponse{
		ClosingDate:      c.ClosingDate.Format("2006-01-02"),
		CompanyID:        c.CompanyID,
		FacilityTypeID:   c.FacilityTypeID,
		PreviousQuantity: c.PreviousQuantity,
		InboundQuantity:  c.InboundQuantity,
		OutboundQuantity: c.OutboundQuantity,
		ClosingQuantity:  c.ClosingQuantity,
		IsClosed:         c.IsClosed,
		ClosedAt:         c.ClosedAt,
		ClosedBy:         c.ClosedBy,
	}
}

// MonthlyClosingResponse representación HTTP de un cierre mensual.
type MonthlyClosingResponse struct {
	Year             int        `json:"year"`
	Month            int        `json:"month"`
	CompanyID        string     `json:"company_id"`
	FacilityTypeID   string     `json:"facility_type_id"`
	PreviousQuantity int64      `json:"previous_quantity"`
	TotalInbound     int64      `json:"total_inbound"`
	TotalOutbound    int64      `json:"total_outbound"`
	ClosingQuantity  int64      `json:"closing_quantity"`
	IsClosed         bool       `json:"is_closed"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	ClosedBy         string     `json:"closed_by,omitempty"`
}

// NewMonthlyClosingResponse mapea la entidad a su representación HTTP.
func NewMonthlyClosingResponse(c *entity.MonthlyClosing) MonthlyClosingResponse {
	return MonthlyClosingResponse{
		Year:             c.ClosingYear,
		Month:            c.ClosingMonth,
		CompanyID:        c.CompanyID,
		FacilityTypeID:   c.FacilityTypeID,
		PreviousQuantity: c.PreviousQuantity,
		TotalInbound:     c.TotalInbound,
		TotalOutbound:    c.TotalOutbound,
		ClosingQuantity:  c.ClosingQuantity,
		IsClosed:         c.IsClosed,
		ClosedAt:         c.ClosedAt,
		ClosedBy:         c.ClosedBy,
	}
}

// LiveStatusResponse estado en vivo de una clave: último cierre + deltas abiertos.
type LiveStatusResponse struct {
	CompanyID       string     `json:"company_id"`
	FacilityTypeID  string     `json:"facility_type_id"`
	LastClosingDate *time.Time `json:"last_closing_date,omitempty"`
	ClosedQuantity  int64      `json:"closed_quantity"`
	PendingInbound  int64      `json:"pending_inbound"`
	PendingOutbound int64      `json:"pending_outbound"`
	CurrentQuantity int64      `json:"current_quantity"`
	AsOf            time.Time  `json:"as_of"`
}

// BatchRunResponse resumen de una corrida batch de cierre.
type BatchRunResponse struct {
	ID              string    `json:"id"`
	ClosingDate     string    `json:"closing_date"`
	Strategy        string    `json:"strategy"`
	TotalUnits      int       `json:"total_units"`
	ProcessedUnits  int       `json:"processed_units"`
	FailedUnits     int       `json:"failed_units"`
	IncompleteUnits int       `json:"incomplete_units"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	TriggeredBy     string    `json:"triggered_by"`
}

// NewBatchRunResponse mapea la entidad a su representación HTTP.
func NewBatchRunResponse(r *entity.ClosingBatchRun) BatchRunResponse {
	return BatchRunResponse{
		ID:              r.ID,
		ClosingDate:     r.ClosingDate.Format("2006-01-02"),
		Strategy:        r.Strategy,
		TotalUnits:      r.TotalUnits,
		ProcessedUnits:  r.ProcessedUnits,
		FailedUnits:     r.FailedUnits,
		IncompleteUnits: r.IncompleteUnits,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		TriggeredBy:     r.TriggeredBy,
	}
}
