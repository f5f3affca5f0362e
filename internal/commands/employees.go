package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tasklist/bot"
	"tasklist/internal/notify"
	"tasklist/internal/services"
)

// cliNotifier messages through the bot when a token is configured
func cliNotifier() services.Notifier {
	if cfg.TelegramBotToken == "" {
		return notify.Nop{}
	}
	api, err := bot.Connect(cfg.TelegramBotToken)
	if err != nil {
		fmt.Printf("Warning: notifications disabled: %v\n", err)
		return notify.Nop{}
	}
	return bot.NewNotifier(api, cfg.AdminChatID())
}

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "Manage employees",
}

var employeesListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		pending, _ := cmd.Flags().GetBool("pending")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		e, err := openEnv(ctx, notify.Nop{}, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		if pending {
			employees, err := e.employees.ListUnconfirmed(ctx)
			if err != nil {
				return err
			}
			if len(employees) == 0 {
				fmt.Println("No employees are waiting for confirmation.")
				return nil
			}
			fmt.Printf("%-14s %-30s %s\n", "ID", "NAME", "REGISTERED")
			fmt.Println(strings.Repeat("-", 64))
			for _, emp := range employees {
				fmt.Printf("%-14d %-30s %s\n", emp.ID, emp.DisplayName(), emp.CreatedAt.In(cfg.Location()).Format("2006-01-02 15:04"))
			}
			return nil
		}

		stats, err := e.employees.ListConfirmedWithStats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%-14s %-30s %s\n", "ID", "NAME", "COMPLETED")
		fmt.Println(strings.Repeat("-", 64))
		for _, s := range stats {
			fmt.Printf("%-14d %-30s %d\n", s.ID, s.DisplayName(), s.Completed)
		}
		return nil
	},
}

var employeesConfirmCmd = &cobra.Command{
	Use:   "confirm [employee-id]",
	Short: "Confirm a registered employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEmployeeID(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		e, err := openEnv(ctx, cliNotifier(), nil)
		if err != nil {
			return err
		}
		defer e.Close()

		emp, err := e.employees.Confirm(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Confirmed %s (%d)\n", emp.DisplayName(), emp.ID)
		return nil
	},
}

var employeesDeleteCmd = &cobra.Command{
	Use:   "rm [employee-id]",
	Short: "Delete an employee and unassign their tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEmployeeID(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		e, err := openEnv(ctx, notify.Nop{}, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.employees.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted employee %d\n", id)
		return nil
	},
}

func parseEmployeeID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid employee ID '%s'", s)
	}
	return id, nil
}

func init() {
	employeesListCmd.Flags().Bool("pending", false, "Show employees waiting for confirmation")

	employeesCmd.AddCommand(employeesListCmd)
	employeesCmd.AddCommand(employeesConfirmCmd)
	employeesCmd.AddCommand(employeesDeleteCmd)
}
