package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/notify"
	"tasklist/internal/services"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		e, err := openEnv(ctx, notify.Nop{}, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		tasks, err := e.tasks.ListTasks(ctx)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found. Use 'tasklist tasks add \"title\"' to create one.")
			return nil
		}

		fmt.Printf("%-5s %-6s %-40s %-10s %s\n", "ID", "DONE", "TITLE", "PRIORITY", "ASSIGNEE")
		fmt.Println(strings.Repeat("-", 80))
		for _, t := range tasks {
			done := ""
			if t.IsCompleted {
				done = "✓"
			}
			assignee := "-"
			if t.User != nil {
				assignee = t.User.DisplayName()
			}
			title := t.Title
			if r := []rune(title); len(r) > 38 {
				title = string(r[:35]) + "..."
			}
			fmt.Printf("%-5d %-6s %-40s %-10s %s\n", t.ID, done, title, t.Priority, assignee)
		}
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		assignee, _ := cmd.Flags().GetInt64("assignee")

		in, err := taskInput(args[0], description, priority, assignee)
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

		task, err := e.tasks.CreateTask(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Created task #%d: %s\n", task.ID, task.Title)
		return nil
	},
}

// taskInput builds a create request from flag values; the priority may be
// given as a symbol or a label in any case
func taskInput(title, description, priority string, assignee int64) (services.TaskInput, error) {
	p, err := models.ParsePriority(priority)
	if err != nil {
		return services.TaskInput{}, fmt.Errorf("%w: %v, expected one of %s", apperr.ErrValidation, err, priorityChoices())
	}
	in := services.TaskInput{Title: title, Priority: p}
	if description != "" {
		in.Description = &description
	}
	if assignee != 0 {
		in.AssigneeID = &assignee
	}
	return in, nil
}

func priorityChoices() string {
	var choices []string
	for _, p := range models.Priorities() {
		choices = append(choices, fmt.Sprintf("%s (%s)", p, p.Label()))
	}
	return strings.Join(choices, ", ")
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid task ID '%s'", args[0])
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		e, err := openEnv(ctx, cliNotifier(), nil)
		if err != nil {
			return err
		}
		defer e.Close()

		done := true
		task, err := e.tasks.UpdateTask(ctx, uint(id), services.TaskUpdate{IsCompleted: &done})
		if err != nil {
			return err
		}
		fmt.Printf("✅ Marked task #%d as done: %s\n", task.ID, task.Title)
		return nil
	},
}

func init() {
	tasksAddCmd.Flags().StringP("description", "d", "", "Task description")
	tasksAddCmd.Flags().StringP("priority", "p", string(models.PriorityLow), "Priority: "+priorityChoices())
	tasksAddCmd.Flags().Int64P("assignee", "a", 0, "Telegram id of a confirmed employee")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
}
