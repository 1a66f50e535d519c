package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

func newTasksCmd(app *app) *cobra.Command {
	var projectID int

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage project tasks",
	}

	cmd.PersistentFlags().IntVar(&projectID, "project", 0, "Project ID")
	_ = cmd.MarkPersistentFlagRequired("project")

	cmd.AddCommand(
		newTasksListCmd(app, &projectID),
		newTasksGetCmd(app, &projectID),
		newTasksCreateCmd(app, &projectID),
		newTasksUpdateCmd(app, &projectID),
		newTasksDeleteCmd(app, &projectID),
		newTasksStatsCmd(app, &projectID),
		newTodosCmd(app, &projectID),
	)

	return cmd
}

func newTasksListCmd(app *app, projectID *int) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := app.tasks.List(cmd.Context(), *projectID)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, tasks)
			}

			for _, task := range tasks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", task.ID, task.Status, task.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newTasksGetCmd(app *app, projectID *int) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			task, err := app.tasks.Get(cmd.Context(), *projectID, id)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, task)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (#%d) [%s]\n", task.Title, task.ID, task.Status)
			if task.TaskDescription != "" {
				_, _ = fmt.Fprintf(out, "%s\n", task.TaskDescription)
			}
			for _, todo := range task.Todos {
				check := " "
				if todo.IsCompleted {
					check = "x"
				}
				_, _ = fmt.Fprintf(out, "  [%s] %d. %s\n", check, todo.Sequence, todo.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newTasksCreateCmd(app *app, projectID *int) *cobra.Command {
	var request domain.CreateTaskRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := app.tasks.Create(cmd.Context(), *projectID, request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (#%d)\n", task.Title, task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&request.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&request.TaskDescription, "description", "", "What the task is about")
	cmd.Flags().StringVar(&request.GuidancePrompt, "prompt", "", "Guidance prompt for execution")
	cmd.Flags().StringVar(&request.AdditionalInfo, "info", "", "Additional information")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTasksUpdateCmd(app *app, projectID *int) *cobra.Command {
	var (
		title       string
		description string
		prompt      string
		info        string
		status      string
		result      string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			var request domain.UpdateTaskRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				request.Title = &title
			}
			if flags.Changed("description") {
				request.TaskDescription = &description
			}
			if flags.Changed("prompt") {
				request.GuidancePrompt = &prompt
			}
			if flags.Changed("info") {
				request.AdditionalInfo = &info
			}
			if flags.Changed("status") {
				s := domain.TaskStatus(status)
				request.Status = &s
			}
			if flags.Changed("result") {
				request.Result = &result
			}

			task, err := app.tasks.Update(cmd.Context(), *projectID, id, request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s (#%d) [%s]\n", task.Title, task.ID, task.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "What the task is about")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Guidance prompt for execution")
	cmd.Flags().StringVar(&info, "info", "", "Additional information")
	cmd.Flags().StringVar(&status, "status", "", "Task status")
	cmd.Flags().StringVar(&result, "result", "", "Task result")

	return cmd
}

func newTasksDeleteCmd(app *app, projectID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			if err := app.tasks.Delete(cmd.Context(), *projectID, id); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			return nil
		},
	}
}

func newTasksStatsCmd(app *app, projectID *int) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics for a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := app.tasks.Stats(cmd.Context(), *projectID)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, stats)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "total: %d\tcompleted: %d\tin progress: %d\tpending: %d\n",
				stats.Total, stats.Completed, stats.InProgress, stats.Pending)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newTodosCmd(app *app, projectID *int) *cobra.Command {
	var taskID int

	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Manage a task's todo checklist",
	}

	cmd.PersistentFlags().IntVar(&taskID, "task", 0, "Task ID")
	_ = cmd.MarkPersistentFlagRequired("task")

	cmd.AddCommand(
		newTodosListCmd(app, projectID, &taskID),
		newTodosAddCmd(app, projectID, &taskID),
		newTodosDoneCmd(app, projectID, &taskID),
		newTodosDeleteCmd(app, projectID, &taskID),
	)

	return cmd
}

func newTodosListCmd(app *app, projectID, taskID *int) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todo items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			todos, err := app.tasks.Todos(cmd.Context(), *projectID, *taskID)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, todos)
			}

			for _, todo := range todos {
				check := " "
				if todo.IsCompleted {
					check = "x"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %d\t%d. %s\n", check, todo.ID, todo.Sequence, todo.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newTodosAddCmd(app *app, projectID, taskID *int) *cobra.Command {
	var request domain.CreateTaskTodoRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a todo item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			todo, err := app.tasks.AddTodo(cmd.Context(), *projectID, *taskID, request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added todo #%d\n", todo.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&request.Description, "description", "", "Todo description")
	cmd.Flags().IntVar(&request.Sequence, "sequence", 0, "Position in the checklist")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newTodosDoneCmd(app *app, projectID, taskID *int) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo item completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "todo")
			if err != nil {
				return err
			}

			todo, err := app.tasks.ToggleTodo(cmd.Context(), *projectID, *taskID, id, !undo)
			if err != nil {
				return err
			}

			state := "completed"
			if !todo.IsCompleted {
				state = "reopened"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Todo #%d %s\n", todo.ID, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the item incomplete instead")

	return cmd
}

func newTodosDeleteCmd(app *app, projectID, taskID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "todo")
			if err != nil {
				return err
			}

			if err := app.tasks.DeleteTodo(cmd.Context(), *projectID, *taskID, id); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted todo #%d\n", id)
			return nil
		},
	}
}
