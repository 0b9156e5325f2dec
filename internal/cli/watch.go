package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sdg-quest/internal/domain"
)

// NewWatchCmd follows newly saved scores for the logged in user.
func NewWatchCmd(opts *rootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream score updates as they are saved",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if userID == "" {
				creds, err := credentialStore(cfg).Load()
				if err != nil {
					return err
				}
				userID = creds.UserID
			}
			if userID == "" {
				return &domain.AuthRequiredError{Reason: "log in or pass --user-id"}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching scores for %s (Ctrl+C to stop)\n", userID)
			err = apiClient(cfg).WatchScores(ctx, userID, func(r domain.ScoreRecord) {
				fmt.Fprintf(out, "%s  goal %-2d  %d/%d\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.GoalID, r.Score, r.TotalQuestions)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user to follow (defaults to the logged in user)")
	return cmd
}
