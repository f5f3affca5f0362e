package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasklist/internal/notify"
	"tasklist/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export completion statistics to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		e, err := openEnv(ctx, notify.Nop{}, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		employees, err := e.employees.ListConfirmedWithStats(ctx)
		if err != nil {
			return err
		}
		completions, err := e.tasks.ListCompletions(ctx)
		if err != nil {
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("error creating %s: %w", output, err)
		}
		defer f.Close()

		data := report.Data{Employees: employees, Completions: completions, Location: cfg.Location()}
		if err := report.Write(f, data); err != nil {
			return err
		}
		fmt.Printf("Report written to %s (%d employees, %d completions)\n", output, len(employees), len(completions))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("output", "o", "tasklist-report.xlsx", "Output file")
}
