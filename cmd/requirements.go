package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

func newRequirementsCmd(app *app) *cobra.Command {
	var projectID int

	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Manage project requirements",
	}

	cmd.PersistentFlags().IntVar(&projectID, "project", 0, "Project ID")
	_ = cmd.MarkPersistentFlagRequired("project")

	cmd.AddCommand(
		newRequirementsListCmd(app, &projectID),
		newRequirementsGetCmd(app, &projectID),
		newRequirementsCreateCmd(app, &projectID),
		newRequirementsUpdateCmd(app, &projectID),
		newRequirementsDeleteCmd(app, &projectID),
		newRequirementsUnlinkedCmd(app, &projectID),
		newRequirementsTasksCmd(app, &projectID),
		newRequirementsLinkCmd(app, &projectID),
		newRequirementsUnlinkCmd(app, &projectID),
	)

	return cmd
}

func printRequirementRows(cmd *cobra.Command, requirements []domain.Requirement) {
	for _, requirement := range requirements {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n",
			requirement.ID, requirement.Type, requirement.Priority, requirement.Title)
	}
}

func newRequirementsListCmd(app *app, projectID *int) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requirements in a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			requirements, err := app.requirements.List(cmd.Context(), *projectID)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, requirements)
			}

			printRequirementRows(cmd, requirements)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newRequirementsGetCmd(app *app, projectID *int) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "requirement")
			if err != nil {
				return err
			}

			requirement, err := app.requirements.Get(cmd.Context(), *projectID, id)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, requirement)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (#%d)\n", requirement.Title, requirement.ID)
			_, _ = fmt.Fprintf(out, "type: %s\tcategory: %s\tpriority: %s\n", requirement.Type, requirement.Category, requirement.Priority)
			if requirement.Details != "" {
				_, _ = fmt.Fprintf(out, "%s\n", requirement.Details)
			}
			for _, task := range requirement.Tasks {
				_, _ = fmt.Fprintf(out, "  task %d\t%s\t%s\n", task.ID, task.Status, task.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newRequirementsCreateCmd(app *app, projectID *int) *cobra.Command {
	var (
		request  domain.CreateRequirementRequest
		reqType  string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a requirement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			request.Type = domain.RequirementType(reqType)
			request.Priority = domain.RequirementPriority(priority)

			requirement, err := app.requirements.Create(cmd.Context(), *projectID, request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created requirement %s (#%d)\n", requirement.Title, requirement.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&request.Title, "title", "", "Requirement title")
	cmd.Flags().StringVar(&request.Details, "details", "", "Requirement details")
	cmd.Flags().StringVar(&reqType, "type", string(domain.RequirementTypeFunctional), "Requirement type")
	cmd.Flags().StringVar(&request.Category, "category", "", "Category")
	cmd.Flags().StringVar(&priority, "priority", string(domain.RequirementPriorityMedium), "Priority")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newRequirementsUpdateCmd(app *app, projectID *int) *cobra.Command {
	var (
		title    string
		details  string
		reqType  string
		category string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update requirement fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "requirement")
			if err != nil {
				return err
			}

			var request domain.UpdateRequirementRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				request.Title = &title
			}
			if flags.Changed("details") {
				request.Details = &details
			}
			if flags.Changed("type") {
				t := domain.RequirementType(reqType)
				request.Type = &t
			}
			if flags.Changed("category") {
				request.Category = &category
			}
			if flags.Changed("priority") {
				p := domain.RequirementPriority(priority)
				request.Priority = &p
			}

			requirement, err := app.requirements.Update(cmd.Context(), *projectID, id, request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated requirement %s (#%d)\n", requirement.Title, requirement.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Requirement title")
	cmd.Flags().StringVar(&details, "details", "", "Requirement details")
	cmd.Flags().StringVar(&reqType, "type", "", "Requirement type")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority")

	return cmd
}

func newRequirementsDeleteCmd(app *app, projectID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "requirement")
			if err != nil {
				return err
			}

			if err := app.requirements.Delete(cmd.Context(), *projectID, id); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted requirement #%d\n", id)
			return nil
		},
	}
}

func newRequirementsUnlinkedCmd(app *app, projectID *int) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "unlinked",
		Short: "List requirements not yet linked to any task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			requirements, err := app.requirements.Unlinked(cmd.Context(), *projectID)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, requirements)
			}

			printRequirementRows(cmd, requirements)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newRequirementsTasksCmd(app *app, projectID *int) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tasks <id>",
		Short: "List tasks linked to a requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "requirement")
			if err != nil {
				return err
			}

			tasks, err := app.requirements.Tasks(cmd.Context(), id)
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

func newRequirementsLinkCmd(app *app, projectID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "link <requirement-id> <task-id>",
		Short: "Link a requirement to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requirementID, err := parseID(args[0], "requirement")
			if err != nil {
				return err
			}
			taskID, err := parseID(args[1], "task")
			if err != nil {
				return err
			}

			if err := app.requirements.Link(cmd.Context(), *projectID, requirementID, taskID); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Linked requirement #%d to task #%d\n", requirementID, taskID)
			return nil
		},
	}
}

func newRequirementsUnlinkCmd(app *app, projectID *int) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <requirement-id> <task-id>",
		Short: "Remove a requirement-task link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requirementID, err := parseID(args[0], "requirement")
			if err != nil {
				return err
			}
			taskID, err := parseID(args[1], "task")
			if err != nil {
				return err
			}

			if err := app.requirements.Unlink(cmd.Context(), *projectID, requirementID, taskID); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unlinked requirement #%d from task #%d\n", requirementID, taskID)
			return nil
		},
	}
}
