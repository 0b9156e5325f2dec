package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sdg-quest/internal/app"
	"sdg-quest/internal/domain"
)

// NewPlayCmd runs quizzes interactively on the terminal.
func NewPlayCmd(opts *rootOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "play [goal]",
		Short: "Take the quiz for a goal (1-17), then continue through the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := domain.GoalID(1)
			if len(args) == 1 {
				g, err := domain.ParseGoalID(args[0])
				if err != nil {
					return err
				}
				goal = g
			}

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

			sessionOpts := []app.SessionOption{
				app.WithFetchTimeout(clientTimeout(cfg)),
				app.WithBadgeRules(rules),
			}
			if verbose {
				sessionOpts = append(sessionOpts, app.WithLogger(log.New(os.Stderr, "quiz: ", log.LstdFlags)))
			}

			client := apiClient(cfg)
			session := app.NewQuizSession(client, client, creds, &app.RouteRecorder{}, sessionOpts...)
			return runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), session, goal)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log fetch and submission diagnostics to stderr")
	return cmd
}

// errQuit ends a play loop when input is exhausted.
var errQuit = errors.New("quit")

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// confirm asks a yes/no question; an empty answer picks def.
func (p prompter) confirm(question string, def bool) (bool, error) {
	answer, err := p.ask(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// runPlay drives session from goal onward until the catalog is exhausted,
// the user stops, or input ends.
func runPlay(ctx context.Context, in io.Reader, out io.Writer, session *app.QuizSession, goal domain.GoalID) error {
	defer session.Close()
	p := prompter{in: bufio.NewScanner(in), out: out}

	err := playFrom(ctx, p, session, goal)
	if errors.Is(err, errQuit) {
		fmt.Fprintln(out, "\nGoodbye.")
		return nil
	}
	return err
}

func playFrom(ctx context.Context, p prompter, session *app.QuizSession, goal domain.GoalID) error {
	for {
		if err := loadWithRetry(ctx, p, session, goal); err != nil {
			var nf *domain.NotFoundError
			if errors.As(err, &nf) {
				fmt.Fprintf(p.out, "There is no quiz for goal %d yet.\n", goal)
				return nil
			}
			return err
		}

		if err := answerAll(ctx, p, session); err != nil {
			return err
		}
		if err := reportCompletion(ctx, p, session); err != nil {
			return err
		}
		if session.Snapshot().LastRoute == domain.RouteLogin {
			return nil
		}

		next, err := p.confirm("Continue to the next quiz? [Y/n] ", true)
		if err != nil {
			return err
		}
		if !next {
			return nil
		}
		route := session.AdvanceToNextQuiz()
		g, ok := route.Goal()
		if !ok {
			fmt.Fprintln(p.out, "You have finished every quiz in the catalog.")
			return nil
		}
		goal = g
	}
}

func loadWithRetry(ctx context.Context, p prompter, session *app.QuizSession, goal domain.GoalID) error {
	for {
		err := session.Load(ctx, goal)
		var tfe *domain.TransientFetchError
		if !errors.As(err, &tfe) {
			return err
		}
		fmt.Fprintf(p.out, "Could not load the quiz: %v\n", tfe.Err)
		retry, perr := p.confirm("Retry? [y/N] ", false)
		if perr != nil {
			return perr
		}
		if !retry {
			return err
		}
	}
}

func answerAll(ctx context.Context, p prompter, session *app.QuizSession) error {
	view := session.Snapshot()
	fmt.Fprintf(p.out, "\nGoal %d quiz: %d questions\n", view.GoalID, view.Total)

	for session.Phase() != app.PhaseCompleted {
		view = session.Snapshot()
		q := view.Question
		fmt.Fprintf(p.out, "\nQuestion %d of %d\n%s\n", view.Index+1, view.Total, q.Prompt)
		for i, opt := range q.Options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt.Text)
		}

		answer, err := p.ask("Your answer: ")
		if err != nil {
			return err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr != nil {
			fmt.Fprintf(p.out, "Enter a number between 1 and %d.\n", len(q.Options))
			continue
		}
		correct, err := session.SelectOption(n - 1)
		if errors.Is(err, domain.ErrOptionNotFound) {
			fmt.Fprintf(p.out, "Enter a number between 1 and %d.\n", len(q.Options))
			continue
		}
		if err != nil {
			return err
		}
		if correct {
			fmt.Fprintln(p.out, "Correct!")
		} else {
			fmt.Fprintf(p.out, "Incorrect. The answer is: %s\n", correctText(q))
		}

		// A failed submission still completes the attempt; it is reported below.
		if err := session.Advance(ctx); err != nil && session.Phase() != app.PhaseCompleted {
			return err
		}
	}
	return nil
}

func reportCompletion(ctx context.Context, p prompter, session *app.QuizSession) error {
	view := session.Snapshot()
	fmt.Fprintf(p.out, "\nQuiz complete: you scored %d out of %d.\n", view.Score, view.Total)

	for view.SubmitErr != nil {
		var authErr *domain.AuthRequiredError
		if errors.As(view.SubmitErr, &authErr) {
			fmt.Fprintln(p.out, "Your score was not saved. Run `sdg-quest login` and play again to record it.")
			return nil
		}
		fmt.Fprintf(p.out, "Saving your score failed: %v\n", view.SubmitErr)
		var serr *domain.SubmissionError
		if !errors.As(view.SubmitErr, &serr) || !serr.Retryable() {
			return nil
		}
		retry, err := p.confirm("Retry saving? [Y/n] ", true)
		if err != nil {
			return err
		}
		if !retry {
			return nil
		}
		_ = session.RetrySubmission(ctx)
		view = session.Snapshot()
	}

	fmt.Fprintln(p.out, "Score saved.")
	if len(view.Badges) == 0 {
		fmt.Fprintln(p.out, "Badges: none yet")
	} else {
		fmt.Fprintf(p.out, "Badges: %s\n", view.Badges)
	}
	return nil
}

func correctText(q *domain.Question) string {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.Text
		}
	}
	return "?"
}
