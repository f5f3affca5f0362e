package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"tasklist/config"
	"tasklist/internal/database"
	"tasklist/internal/logging"
	"tasklist/internal/photos"
	"tasklist/internal/repository"
	"tasklist/internal/services"
)

var (
	version = "dev"

	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "tasklist",
	Short: "Task tracker with a Telegram bot and an admin console",
	Long: `tasklist keeps the tasks of a small team in one database.
Employees see and complete their tasks through the Telegram bot,
administrators manage tasks and employees from the terminal console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		if cmd.Name() == "admin" && cfg.LogFile == "" {
			// the console owns the terminal
			cfg.LogFile = "tasklist-admin.log"
		}
		return initLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func initLogging() error {
	logger, closer, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logCloser = closer
	return nil
}

// env is the opened database with the services built over it
type env struct {
	db        *gorm.DB
	store     *repository.Store
	tasks     *services.TaskService
	employees *services.EmployeeService
	admins    *services.AdminService
}

// openEnv connects, migrates and seeds the database, then builds the
// services. photoSource may be nil.
func openEnv(ctx context.Context, notifier services.Notifier, photoSource services.PhotoSource) (*env, error) {
	return openEnvWith(ctx, database.OptionsFromConfig(cfg), notifier, photoSource)
}

func openEnvWith(ctx context.Context, opts database.Options, notifier services.Notifier, photoSource services.PhotoSource) (*env, error) {
	db, err := database.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	if err := database.SeedDefaultAdmin(ctx, db); err != nil {
		database.Close(db)
		return nil, err
	}

	store := repository.NewStore(db, cfg.StoreTimeout)
	uploader := photos.NewUploader(photos.DefaultImgurURL, cfg.ImgurClientID)
	return &env{
		db:        db,
		store:     store,
		tasks:     services.NewTaskService(store, notifier, cfg.TasksPerPage, cfg.Location()),
		employees: services.NewEmployeeService(store, notifier, photoSource, uploader),
		admins:    services.NewAdminService(store),
	}, nil
}

func (e *env) Close() {
	if err := database.Close(e.db); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.StoreTimeout+5*time.Second)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tasklist", version)
	},
}

// SetVersion sets the version information
func SetVersion(v string) {
	version = v
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(employeesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
