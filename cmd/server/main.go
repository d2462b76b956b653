package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/labcalc/internal/config"
	"github.com/mamadbah2/labcalc/internal/server/handlers"
	"github.com/mamadbah2/labcalc/internal/server/router"
	"github.com/mamadbah2/labcalc/internal/service/calculator"
	"github.com/mamadbah2/labcalc/internal/service/seeding"
	"github.com/mamadbah2/labcalc/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	presets, err := seeding.LoadPresets(cfg.Plates.PresetsFile)
	if err != nil {
		baseLogger.Fatal("failed to load plate presets", zap.Error(err))
	}
	if cfg.Plates.PresetsFile != "" {
		baseLogger.Info("plate presets loaded",
			zap.String("file", cfg.Plates.PresetsFile),
			zap.Int("count", len(presets.List())))
	}

	calc := calculator.NewService(presets, cfg.Planner.Defaults(), baseLogger.Named("svc.calculator"))
	calcHandler := handlers.NewCalculationHandler(calc, baseLogger.Named("handlers.calculation"))
	engine := router.New(calcHandler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Float64("overage_percent", cfg.Planner.OveragePercent),
			zap.Float64("min_pipette_ul", cfg.Planner.MinPipetteUL),
			zap.Float64("max_pipette_ul", cfg.Planner.MaxPipetteUL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Plates.PresetsFile != "" {
		watcher := seeding.NewWatcher(cfg.Plates.PresetsFile, calc.SetPresets, baseLogger.Named("plates.watcher"))
		g.Go(func() error {
			// Losing hot reload leaves the loaded presets in service.
			if err := watcher.Run(gctx); err != nil {
				baseLogger.Error("plate presets watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		baseLogger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		baseLogger.Error("server stopped with error", zap.Error(err))
	}
}
