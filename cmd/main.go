package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"derma-vision/config"
	telegram "derma-vision/internal/api"
	"derma-vision/internal/container"
	"derma-vision/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// логгер ещё не настроен
		panic(err)
	}

	log, closeLog := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closeLog()

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Собираем сервисы приложения
	appContainer, err := container.New(cfg, log, registry)
	if err != nil {
		log.WithError(err).Fatal("Failed to build application")
	}
	defer appContainer.Close()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("Metrics server started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Модель загружаем заранее, чтобы первое фото не ждало
	if _, err := appContainer.Models.Get(); err != nil {
		log.WithError(err).Warn("Model is not loaded yet, will retry on first photo")
	}

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create bot")
	}

	log.Info("Bot is running...")
	if err := bot.Run(ctx); err != nil {
		log.WithError(err).Error("Bot error")
	}
	log.Info("Bot stopped")
}
