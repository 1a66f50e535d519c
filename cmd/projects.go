package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

func newProjectsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectsListCmd(app),
		newProjectsGetCmd(app),
		newProjectsCreateCmd(app),
		newProjectsUpdateCmd(app),
		newProjectsDeleteCmd(app),
		newProjectsFavoriteCmd(app),
		newProjectsProgressCmd(app),
		newProjectsStatsCmd(app),
	)

	return cmd
}

func newProjectsListCmd(app *app) *cobra.Command {
	var (
		query    domain.ListProjectsQuery
		status   string
		priority string
		favorite bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query.Status = domain.ProjectStatus(status)
			query.Priority = domain.ProjectPriority(priority)
			if cmd.Flags().Changed("favorite") {
				query.Favorite = &favorite
			}

			response, err := app.projects.List(cmd.Context(), query)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, response)
			}

			for _, project := range response.Projects {
				marker := " "
				if project.IsFavorite {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d\t%s\t%s\t%d%%\n", marker, project.ID, project.Name, project.Status, project.Progress)
			}

			if response.Pagination.TotalPages > 1 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d total)\n",
					response.Pagination.Page, response.Pagination.TotalPages, response.Pagination.Total)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&query.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "Only favorites")
	cmd.Flags().StringVar(&query.Search, "search", "", "Search by name or description")
	cmd.Flags().StringVar(&query.SortBy, "sort", "", "Sort field")
	cmd.Flags().StringVar(&query.SortOrder, "order", "", "Sort order (asc or desc)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newProjectsGetCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}

			project, err := app.projects.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, project)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (#%d)\n", project.Name, project.ID)
			_, _ = fmt.Fprintf(out, "status: %s\tpriority: %s\tprogress: %d%%\n", project.Status, project.Priority, project.Progress)
			if project.Description != "" {
				_, _ = fmt.Fprintf(out, "%s\n", project.Description)
			}
			if project.Stack != "" {
				_, _ = fmt.Fprintf(out, "stack: %s\n", project.Stack)
			}
			if project.GitRepositoryURL != "" {
				_, _ = fmt.Fprintf(out, "repo: %s\n", project.GitRepositoryURL)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newProjectsCreateCmd(app *app) *cobra.Command {
	var (
		request  domain.CreateProjectRequest
		status   string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			request.Status = domain.ProjectStatus(status)
			request.Priority = domain.ProjectPriority(priority)

			project, err := app.projects.Create(cmd.Context(), request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (#%d)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&request.Description, "description", "", "Project description")
	cmd.Flags().StringVar(&request.Stack, "stack", "", "Technology stack")
	cmd.Flags().StringVar(&status, "status", "", "Initial status")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority")
	cmd.Flags().StringVar(&request.Notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&request.GitRepositoryURL, "repo", "", "Git repository URL")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("stack")

	return cmd
}

func newProjectsUpdateCmd(app *app) *cobra.Command {
	var (
		name        string
		description string
		stack       string
		status      string
		priority    string
		notes       string
		repoURL     string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update project fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}

			var request domain.UpdateProjectRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				request.Name = &name
			}
			if flags.Changed("description") {
				request.Description = &description
			}
			if flags.Changed("stack") {
				request.Stack = &stack
			}
			if flags.Changed("status") {
				s := domain.ProjectStatus(status)
				request.Status = &s
			}
			if flags.Changed("priority") {
				p := domain.ProjectPriority(priority)
				request.Priority = &p
			}
			if flags.Changed("notes") {
				request.Notes = &notes
			}
			if flags.Changed("repo") {
				request.GitRepositoryURL = &repoURL
			}

			project, err := app.projects.Update(cmd.Context(), id, request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s (#%d)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&stack, "stack", "", "Technology stack")
	cmd.Flags().StringVar(&status, "status", "", "Status")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&repoURL, "repo", "", "Git repository URL")

	return cmd
}

func newProjectsDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}

			if err := app.projects.Delete(cmd.Context(), id); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted project #%d\n", id)
			return nil
		},
	}
}

func newProjectsFavoriteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle a project's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}

			project, err := app.projects.ToggleFavorite(cmd.Context(), id)
			if err != nil {
				return err
			}

			state := "unfavorited"
			if project.IsFavorite {
				state = "favorited"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (#%d)\n", state, project.Name, project.ID)
			return nil
		},
	}
}

func newProjectsProgressCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id> <percent>",
		Short: "Set project progress (0-100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			percent, err := parsePercent(args[1])
			if err != nil {
				return err
			}

			project, err := app.projects.SetProgress(cmd.Context(), id, percent)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d) is now %d%% done\n", project.Name, project.ID, project.Progress)
			return nil
		},
	}
}

func newProjectsStatsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate project statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := app.projects.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, stats)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "total: %d\tactive: %d\tcompleted: %d\tfavorites: %d\tavg progress: %.0f%%\n",
				stats.Total, stats.Active, stats.Completed, stats.Favorite, stats.AverageProgress)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
