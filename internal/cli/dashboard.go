package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sdg-quest/internal/app"
	"sdg-quest/internal/badge"
	"sdg-quest/internal/domain"
)

// NewDashboardCmd prints per-goal progress, points and badges.
func NewDashboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your progress across the 17 goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			creds, err := credentialStore(cfg).Load()
			if err != nil {
				return err
			}
			rules, err := badgeRules(cfg)
			if err != nil {
				return err
			}
			dashboard := app.NewDashboard(apiClient(cfg), rules, clientTimeout(cfg))
			return runDashboard(cmd.Context(), cmd.OutOrStdout(), dashboard, creds)
		},
	}
}

func runDashboard(ctx context.Context, out io.Writer, dashboard *app.Dashboard, creds domain.Credentials) error {
	summary, _, err := dashboard.Load(ctx, creds)
	if err != nil {
		return err
	}
	if creds.User != "" {
		fmt.Fprintf(out, "Progress for %s\n\n", creds.User)
	}
	renderSummary(out, summary)
	return nil
}

func renderSummary(out io.Writer, s badge.Summary) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GOAL\tPOINTS\tPROGRESS")
	for i, points := range s.GoalScores {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", i+1, points, bar(points, badge.QuestionsPerGoal))
	}
	tw.Flush()

	fmt.Fprintf(out, "\nTotal points:    %d / %d\n", s.TotalPoints, s.MaxPoints)
	fmt.Fprintf(out, "Goals completed: %d / %d\n", s.GoalsCompleted, s.GoalCount)
	fmt.Fprintf(out, "Quizzes taken:   %d\n", s.Attempts)
	if len(s.Badges) == 0 {
		fmt.Fprintln(out, "Badges:          none yet")
	} else {
		fmt.Fprintf(out, "Badges:          %s\n", s.Badges)
	}
}

func bar(value, max int) string {
	if value > max {
		value = max
	}
	if value < 0 {
		value = 0
	}
	return strings.Repeat("#", value) + strings.Repeat(".", max-value)
}
