package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cierres-api/internal/application/batch"
	"github.com/jhoicas/Cierres-api/internal/application/closing"
	"github.com/jhoicas/Cierres-api/internal/application/dto"
)

// ClosingHandler maneja cierres diarios/mensuales, estado en vivo y corridas batch.
type ClosingHandler struct {
	uc           *closing.UseCase
	orchestrator *batch.Orchestrator
}

// NewClosingHandler construye el handler.
func NewClosingHandler(uc *closing.UseCase, orchestrator *batch.Orchestrator) *ClosingHandler {
	return &ClosingHandler{uc: uc, orchestrator: orchestrator}
}

// ── Cierre diario ──────────────────────────────────────────────────────────────

type processDailyRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

// ProcessDaily ejecuta el cierre diario secuencial de todas las claves.
// Idempotente: si la fecha ya tiene cierres, no hace nada.
func (h *ClosingHandler) ProcessDaily(c *fiber.Ctx) error {
	date, ok := h.parseDateBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date requerido (YYYY-MM-DD)"})
	}
	result, err := h.uc.ProcessDailyClosing(c.Context(), date, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"processed": result.Processed, "without_prior": result.WithoutPrior})
}

// RecalculateDaily borra y reprocesa el cierre de una fecha.
// Rechazado con 423 si el mes de la fecha ya tiene cierre mensual.
func (h *ClosingHandler) RecalculateDaily(c *fiber.Ctx) error {
	date, ok := h.parseDateBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date requerido (YYYY-MM-DD)"})
	}
	result, err := h.uc.RecalculateDailyClosing(c.Context(), date, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"processed": result.Processed, "without_prior": result.WithoutPrior})
}

// GetDaily devuelve cierres diarios: todos los de la fecha, o el de una clave
// si llegan company_id y facility_type_id.
func (h *ClosingHandler) GetDaily(c *fiber.Ctx) error {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date requerido (YYYY-MM-DD)"})
	}
	companyID, typeID := c.Query("company_id"), c.Query("facility_type_id")
	if companyID != "" && typeID != "" {
		dc, err := h.uc.GetDailyClosing(c.Context(), date, companyID, typeID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.NewDailyClosingResponse(dc))
	}
	list, err := h.uc.ListDailyClosings(c.Context(), date)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DailyClosingResponse, 0, len(list))
	for _, dc := range list {
		out = append(out, dto.NewDailyClosingResponse(dc))
	}
	return c.JSON(fiber.Map{"total": len(out), "closings": out})
}

// ── Cierre mensual ─────────────────────────────────────────────────────────────

type processMonthlyRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ProcessMonthly consolida los cierres diarios del mes en snapshots mensuales.
func (h *ClosingHandler) ProcessMonthly(c *fiber.Ctx) error {
	var in processMonthlyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	processed, err := h.uc.ProcessMonthlyClosing(c.Context(), in.Year, in.Month, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"processed": processed})
}

// DeleteMonthly elimina el cierre mensual (desbloquea recálculos del mes).
func (h *ClosingHandler) DeleteMonthly(c *fiber.Ctx) error {
	year, month, ok := h.parseYearMonth(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "year y month requeridos"})
	}
	deleted, err := h.uc.DeleteMonthlyClosing(c.Context(), year, month, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// GetMonthly devuelve cierres mensuales: todos los del mes, o el de una clave.
func (h *ClosingHandler) GetMonthly(c *fiber.Ctx) error {
	year, month, ok := h.parseYearMonth(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "year y month requeridos"})
	}
	companyID, typeID := c.Query("company_id"), c.Query("facility_type_id")
	if companyID != "" && typeID != "" {
		mc, err := h.uc.GetMonthlyClosing(c.Context(), year, month, companyID, typeID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.NewMonthlyClosingResponse(mc))
	}
	list, err := h.uc.ListMonthlyClosings(c.Context(), year, month)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MonthlyClosingResponse, 0, len(list))
	for _, mc := range list {
		out = append(out, dto.NewMonthlyClosingResponse(mc))
	}
	return c.JSON(fiber.Map{"total": len(out), "closings": out})
}

// ── Estado en vivo ─────────────────────────────────────────────────────────────

// GetLive devuelve el estado en vivo de una clave: último cierre + deltas abiertos.
func (h *ClosingHandler) GetLive(c *fiber.Ctx) error {
	status, err := h.uc.GetLiveStatus(c.Context(), c.Query("company_id"), c.Query("facility_type_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LiveStatusResponse{
		CompanyID:       status.CompanyID,
		FacilityTypeID:  status.FacilityTypeID,
		LastClosingDate: status.LastClosingDate,
		ClosedQuantity:  status.ClosedQuantity,
		PendingInbound:  status.PendingInbound,
		PendingOutbound: status.PendingOutbound,
		CurrentQuantity: status.CurrentQuantity,
		AsOf:            status.AsOf,
	})
}

// ── Corridas batch ─────────────────────────────────────────────────────────────

// RunBatch dispara el cierre diario concurrente y devuelve el resumen de la corrida.
func (h *ClosingHandler) RunBatch(c *fiber.Ctx) error {
	date, ok := h.parseDateBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date requerido (YYYY-MM-DD)"})
	}
	run, err := h.orchestrator.RunDaily(c.Context(), date, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewBatchRunResponse(run))
}

// GetBatchRun devuelve una corrida batch por id.
func (h *ClosingHandler) GetBatchRun(c *fiber.Ctx) error {
	run, err := h.orchestrator.GetRun(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBatchRunResponse(run))
}

// ListBatchRuns lista las corridas batch de una fecha.
func (h *ClosingHandler) ListBatchRuns(c *fiber.Ctx) error {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date requerido (YYYY-MM-DD)"})
	}
	runs, err := h.orchestrator.ListRunsByDate(c.Context(), date)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BatchRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, dto.NewBatchRunResponse(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "runs": out})
}

// ── Helpers ────────────────────────────────────────────────────────────────────

func (h *ClosingHandler) parseDateBody(c *fiber.Ctx) (time.Time, bool) {
	var in processDailyRequest
	if err := c.BodyParser(&in); err != nil {
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func (h *ClosingHandler) parseYearMonth(c *fiber.Ctx) (int, int, bool) {
	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return year, month, true
}
