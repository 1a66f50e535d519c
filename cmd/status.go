package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	statusadapter "github.com/omnity-hq/omnity-cli/internal/adapters/render/status"
	"github.com/omnity-hq/omnity-cli/internal/domain"
)

func newStatusCmd(app *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the workspace overview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.auth.Session()

			overview := statusadapter.Overview{
				Session: session,
				Unread:  app.notifications.UnreadCount(),
			}

			if session.IsAuthenticated {
				stats, err := app.projects.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("load project stats: %w", err)
				}
				overview.Stats = &stats

				response, err := app.projects.List(cmd.Context(), domain.ListProjectsQuery{Limit: limit})
				if err != nil {
					return fmt.Errorf("load projects: %w", err)
				}
				overview.Projects = response.Projects
			}

			if asJSON {
				return writeJSON(cmd, overview)
			}

			rendered, err := app.overviewRenderer(overview, statusadapter.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render overview: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of projects to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
