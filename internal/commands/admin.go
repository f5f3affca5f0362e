package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"tasklist/bot"
	"tasklist/internal/database"
	"tasklist/internal/notify"
	"tasklist/internal/photos"
	"tasklist/internal/services"
	"tasklist/internal/tui"
	"tasklist/internal/tui/screens"
)

const avatarCacheSize = 64

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Open the admin console",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// without a token the console works, but nobody is messaged
		var notifier services.Notifier = notify.Nop{}
		if cfg.TelegramBotToken != "" {
			api, err := bot.Connect(cfg.TelegramBotToken)
			if err != nil {
				slog.Warn("Telegram is unavailable, notifications are disabled", "error", err)
			} else {
				notifier = bot.NewNotifier(api, cfg.AdminChatID())
			}
		}

		opts := database.OptionsFromConfig(cfg)
		opts.LogLevel = logger.Silent
		e, err := openEnvWith(ctx, opts, notifier, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		deps := screens.Deps{
			Tasks:     e.tasks,
			Employees: e.employees,
			Admins:    e.admins,
			Avatars:   photos.NewCache(avatarCacheSize, 32),
		}
		return tui.Run(deps, notify.NewWatcher(e.employees))
	},
}
