package closing

import (
	"context"

	"github.com/jhoicas/Cierres-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de cierre atados a esa tx. Cada clave (empresa, tipo) se
// procesa en su propia transacción aislada: el fallo de una nunca revierte
// a las demás, y el paso leer-previo-escribir-siguiente del arrastre queda
// protegido contra actualizaciones perdidas.
type TxRunner interface {
	RunClosing(ctx context.Context, fn func(
		txRepo repository.TransactionRepository,
		dailyRepo repository.DailyClosingRepository,
		monthlyRepo repository.MonthlyClosingRepository,
	) error) error
}
