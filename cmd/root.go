package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "om",
		Short:         "Omnity CLI (om): manage projects, tasks, and requirements",
		Long:          "om (Omnity CLI) talks to the Omnity backend: sign in, browse and edit projects, tasks, and requirements, and follow workspace activity live from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newPasswordCmd(app),
		newProjectsCmd(app),
		newTasksCmd(app),
		newRequirementsCmd(app),
		newStatusCmd(app),
		newWatchCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
