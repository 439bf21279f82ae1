package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cierres-api/internal/application/batch"
	"github.com/jhoicas/Cierres-api/internal/application/closing"
	"github.com/jhoicas/Cierres-api/internal/application/ledger"
	"github.com/jhoicas/Cierres-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC     *ledger.UseCase
	ClosingUC    *closing.UseCase
	Orchestrator *batch.Orchestrator
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las
// operaciones de cierre que mutan estado exigen además rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Ledger de transacciones (protegido)
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	ledgerGroup.Post("/transactions", ledgerHandler.Create)
	ledgerGroup.Get("/transactions/:id", ledgerHandler.GetByID)
	ledgerGroup.Post("/transactions/:id/cancel", ledgerHandler.Cancel)
	ledgerGroup.Get("/facilities/:id/transactions", ledgerHandler.ListByFacility)
	ledgerGroup.Post("/batches", ledgerHandler.CreateBatch)
	ledgerGroup.Get("/batches/:id/transactions", ledgerHandler.ListBatch)
	ledgerGroup.Post("/batches/:id/cancel", ledgerHandler.CancelBatch)

	// Cierres (protegido; mutaciones solo admin)
	closings := protected.Group("/closings")
	closingHandler := NewClosingHandler(deps.ClosingUC, deps.Orchestrator)
	closings.Post("/daily", adminOnly, closingHandler.ProcessDaily)
	closings.Post("/daily/recalculate", adminOnly, closingHandler.RecalculateDaily)
	closings.Get("/daily", closingHandler.GetDaily)
	closings.Post("/monthly", adminOnly, closingHandler.ProcessMonthly)
	closings.Delete("/monthly", adminOnly, closingHandler.DeleteMonthly)
	closings.Get("/monthly", closingHandler.GetMonthly)
	closings.Get("/live", closingHandler.GetLive)
	closings.Post("/batch-runs", adminOnly, closingHandler.RunBatch)
	closings.Get("/batch-runs/:id", closingHandler.GetBatchRun)
	closings.Get("/batch-runs", closingHandler.ListBatchRuns)
}
