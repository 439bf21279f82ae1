package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Cierres-api/internal/application/batch"
	"github.com/jhoicas/Cierres-api/internal/application/closing"
	"github.com/jhoicas/Cierres-api/internal/application/ledger"
	"github.com/jhoicas/Cierres-api/internal/infrastructure/postgres"
	infravoucher "github.com/jhoicas/Cierres-api/internal/infrastructure/voucher"
	httpRouter "github.com/jhoicas/Cierres-api/internal/interfaces/http"
	"github.com/jhoicas/Cierres-api/pkg/config"
	"github.com/jhoicas/Cierres-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	transactionRepo := postgres.NewTransactionRepository(pool)
	facilityRepo := postgres.NewFacilityRepository(pool)
	dailyRepo := postgres.NewDailyClosingRepository(pool)
	monthlyRepo := postgres.NewMonthlyClosingRepository(pool)
	masterRepo := postgres.NewMasterDataRepository(pool)
	runRepo := postgres.NewBatchRunRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Hook de comprobantes — solo si hay URL configurada; nil lo deshabilita.
	var voucherHook ledger.VoucherHook
	if cfg.Voucher.BaseURL != "" {
		voucherHook = infravoucher.NewClient(cfg.Voucher.BaseURL, cfg.Voucher.Timeout)
	}

	ledgerUC := ledger.NewUseCase(txRunner, transactionRepo, facilityRepo, masterRepo, voucherHook, log)
	closingUC := closing.NewUseCase(txRunner, transactionRepo, dailyRepo, monthlyRepo, masterRepo, cfg.Batch.BackwardWindow, log)
	orchestrator := batch.NewOrchestrator(closingUC, txRunner, dailyRepo, masterRepo, runRepo, batch.Config{
		Strategy:       cfg.Batch.Strategy,
		OverallTimeout: cfg.Batch.OverallTimeout,
		MaxWorkers:     cfg.Batch.MaxWorkers,
		FlushSize:      cfg.Batch.FlushSize,
	}, log)

	// WriteTimeout debe cubrir el join del batch (OverallTimeout) más margen.
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Batch.OverallTimeout + time.Minute,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:     ledgerUC,
		ClosingUC:    closingUC,
		Orchestrator: orchestrator,
		JWTSecret:    cfg.JWT.Secret,
	})

	// Apagado ordenado: SIGINT/SIGTERM drenan el servidor antes de salir.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("señal recibida, apagando servidor")
		if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
			log.Error().Err(err).Msg("apagado del servidor")
		}
	}()

	addr := cfg.HTTP.Addr()
	log.Info().Str("addr", addr).Msg("servidor HTTP escuchando")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("servidor HTTP")
	}
	log.Info().Msg("servidor detenido")
}
