package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

func newWatchCmd(app *app) *cobra.Command {
	var projectIDs []int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream workspace events as they happen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			events := make(chan domain.Event, 64)
			channel, err := app.newChannel(func(event domain.Event) {
				select {
				case events <- event:
				default:
					// Viewer lagging; the channel keeps its own recent buffer.
				}
			})
			if err != nil {
				return fmt.Errorf("wire realtime channel: %w", err)
			}
			defer channel.Disconnect()

			for _, id := range projectIDs {
				channel.JoinRoom(id)
			}

			if err := runConnectSpinner(cmd.Context(), cmd.ErrOrStderr(), func(_ context.Context) error {
				return channel.Connect()
			}); err != nil {
				return fmt.Errorf("connect realtime channel: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Watching for events. Press Ctrl+C to stop.")

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					if unread := app.notifications.UnreadCount(); unread > 0 {
						_, _ = fmt.Fprintf(out, "\n%d unread notifications collected during this session\n", unread)
					}
					return nil
				case event := <-events:
					printEvent(out, event)
				}
			}
		},
	}

	cmd.Flags().IntSliceVar(&projectIDs, "project", nil, "Project room to join (repeatable)")

	return cmd
}

func printEvent(out io.Writer, event domain.Event) {
	stamp := event.Timestamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	if event.ProjectID > 0 {
		_, _ = fmt.Fprintf(out, "%s  %-22s project=%d\n", stamp.Format("15:04:05"), event.Type, event.ProjectID)
		return
	}
	_, _ = fmt.Fprintf(out, "%s  %s\n", stamp.Format("15:04:05"), event.Type)
}
