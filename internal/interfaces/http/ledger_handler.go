package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cierres-api/internal/application/dto"
	"github.com/jhoicas/Cierres-api/internal/application/ledger"
	"github.com/jhoicas/Cierres-api/internal/domain/entity"
)

// LedgerHandler maneja las peticiones HTTP del ledger de transacciones (protegido).
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

func toCreateInput(in dto.CreateTransactionRequest, actorID string) ledger.CreateTransactionInput {
	input := ledger.CreateTransactionInput{
		Type:                 in.Type,
		FacilityID:           in.FacilityID,
		FromCompanyID:        in.FromCompanyID,
		ToCompanyID:          in.ToCompanyID,
		StatusAfter:          in.StatusAfter,
		RelatedTransactionID: in.RelatedTransactionID,
		ActorID:              actorID,
		ServiceRequestRef:    in.ServiceRequestRef,
		TransactionRef:       in.TransactionRef,
	}
	if in.OccurredAt != nil {
		input.OccurredAt = *in.OccurredAt
	}
	return input
}

// Create registra una transacción del ledger y aplica la mutación al activo.
func (h *LedgerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tx, err := h.uc.CreateTransaction(c.Context(), toCreateInput(in, GetUserID(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}

// GetByID devuelve una transacción por id.
func (h *LedgerHandler) GetByID(c *fiber.Ctx) error {
	tx, err := h.uc.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx))
}

// Cancel cancela una transacción y revierte el efecto sobre el activo.
func (h *LedgerHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.CancelTransaction(c.Context(), c.Params("id"), in.Reason, GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "transacción cancelada"})
}

// ListByFacility lista el historial de transacciones de un activo, con filtros
// opcionales de rango (from/to, formato YYYY-MM-DD) y paginación.
func (h *LedgerHandler) ListByFacility(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseDateQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (YYYY-MM-DD)"})
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (YYYY-MM-DD)"})
	}

	txs, err := h.uc.ListFacilityTransactions(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(txs), "transactions": toTransactionResponses(txs)})
}

// CreateBatch registra un lote de transacciones de forma atómica por elemento
// con fallo rápido: el primer error aborta el resto.
func (h *LedgerHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actorID := GetUserID(c)
	inputs := make([]ledger.CreateTransactionInput, 0, len(in.Transactions))
	for _, t := range in.Transactions {
		inputs = append(inputs, toCreateInput(t, actorID))
	}
	batchID, txs, err := h.uc.CreateBatch(c.Context(), inputs, in.BatchID, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"batch_id":     batchID,
		"total":        len(txs),
		"transactions": toTransactionResponses(txs),
	})
}

// ListBatch lista las transacciones de un batch.
func (h *LedgerHandler) ListBatch(c *fiber.Ctx) error {
	txs, err := h.uc.ListBatchTransactions(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(txs), "transactions": toTransactionResponses(txs)})
}

// CancelBatch cancela todas las transacciones de un batch, continuando ante
// errores individuales y devolviendo el resumen.
func (h *LedgerHandler) CancelBatch(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	summary, err := h.uc.CancelBatch(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	errMsgs := make([]string, 0, len(summary.Errors))
	for _, e := range summary.Errors {
		errMsgs = append(errMsgs, e.Error())
	}
	return c.JSON(dto.CancelBatchResponse{
		BatchID:          summary.BatchID,
		Cancelled:        summary.Cancelled,
		AlreadyCancelled: summary.AlreadyCancelled,
		Failed:           summary.Failed,
		Errors:           errMsgs,
	})
}

func toTransactionResponses(txs []*entity.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, dto.NewTransactionResponse(t))
	}
	return out
}

// parseDateQuery lee un query param de fecha YYYY-MM-DD; nil si está vacío.
func parseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
