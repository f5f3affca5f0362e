package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"tasklist/bot"
	"tasklist/internal/handlers"
	"tasklist/internal/notify"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot, the HTTP API and the registration watcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runBot(ctx)
	},
}

func runBot(ctx context.Context) error {
	api, err := bot.Connect(cfg.TelegramBotToken)
	if err != nil {
		return err
	}

	notifier := bot.NewNotifier(api, cfg.AdminChatID())
	e, err := openEnv(ctx, notifier, bot.NewPhotoSource(api))
	if err != nil {
		return err
	}
	defer e.Close()

	scheduler := notify.NewScheduler(notify.NewWatcher(e.employees), notifier, cfg.StoreTimeout)
	if err := scheduler.Start(ctx, cfg.WatchSchedule); err != nil {
		return err
	}
	defer scheduler.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.HandleHealth)
	handlers.NewTaskHandler(e.tasks, cfg.APIToken).Register(mux)
	if cfg.APIToken == "" {
		slog.Warn("API_TOKEN is not set, task API requests will be refused")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	slog.Info("Telegram bot started")
	bot.New(api, e.tasks, e.employees).Run(ctx, updates)

	slog.Info("Shutdown signal received, initiating graceful shutdown...")
	api.StopReceivingUpdates()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	slog.Info("Server stopped gracefully")
	return nil
}
