package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sdg-quest/internal/badge"
	"sdg-quest/internal/domain"
)

// QuizCatalog is the read-only source of quiz content.
type QuizCatalog interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// ScoreLedger reads and appends a user's score records.
type ScoreLedger interface {
	Scores(ctx context.Context, userID string) ([]domain.ScoreRecord, error)
	Submit(ctx context.Context, creds domain.Credentials, sub domain.ScoreSubmission) error
}

// Navigator receives programmatic route transitions.
type Navigator interface {
	Navigate(route domain.Route)
}

// Phase is the state of a QuizSession.
type Phase int

const (
	PhaseIdle           Phase = iota // nothing loaded yet
	PhaseLoading                     // catalog fetch in flight
	PhaseNotFound                    // catalog has no quiz for the goal
	PhaseLoadFailed                  // catalog fetch failed, Load may be retried
	PhaseAnswering                   // waiting for an option on the current question
	PhaseOptionSelected              // option chosen, waiting for Advance
	PhaseSubmitting                  // last question done, score being persisted
	PhaseCompleted                   // terminal for this attempt
)

var phaseNames = map[Phase]string{
	PhaseIdle:           "idle",
	PhaseLoading:        "loading",
	PhaseNotFound:       "not-found",
	PhaseLoadFailed:     "load-failed",
	PhaseAnswering:      "answering",
	PhaseOptionSelected: "option-selected",
	PhaseSubmitting:     "submitting",
	PhaseCompleted:      "completed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Attempt is the in-progress traversal of one quiz.
type Attempt struct {
	Index     int
	Selected  int // -1 until an option is chosen
	Score     int
	Completed bool
}

func newAttempt() Attempt {
	return Attempt{Selected: -1}
}

// SessionView is a read-only snapshot for presentation layers.
type SessionView struct {
	Phase     Phase
	GoalID    domain.GoalID
	QuizID    string
	Index     int
	Total     int
	Question  *domain.Question
	Selected  int
	Score     int
	History   []domain.ScoreRecord
	Badges    badge.Set
	Submitted bool
	SubmitErr error
	LastRoute domain.Route
}

// SessionOption customizes a QuizSession.
type SessionOption func(*QuizSession)

// WithFetchTimeout bounds every catalog and ledger call.
func WithFetchTimeout(d time.Duration) SessionOption {
	return func(s *QuizSession) { s.timeout = d }
}

// WithBadgeRules replaces the default badge rules.
func WithBadgeRules(r badge.Rules) SessionOption {
	return func(s *QuizSession) { s.rules = r }
}

// WithLogger routes diagnostic output to l.
func WithLogger(l *log.Logger) SessionOption {
	return func(s *QuizSession) { s.logger = l }
}

// DefaultFetchTimeout applies when no timeout option is given.
const DefaultFetchTimeout = 10 * time.Second

// QuizSession drives one user through one quiz at a time and persists the
// outcome. Credentials and navigation are injected at construction.
type QuizSession struct {
	catalog QuizCatalog
	ledger  ScoreLedger
	creds   domain.Credentials
	nav     Navigator
	rules   badge.Rules
	timeout time.Duration
	logger  *log.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	closed     bool

	goal      domain.GoalID
	quizzes   []domain.Quiz
	quiz      *domain.Quiz
	phase     Phase
	attempt   Attempt
	history   []domain.ScoreRecord
	badges    badge.Set
	submitted bool
	submitErr error
	lastRoute domain.Route
}

// NewQuizSession wires a session to its collaborators.
func NewQuizSession(catalog QuizCatalog, ledger ScoreLedger, creds domain.Credentials, nav Navigator, opts ...SessionOption) *QuizSession {
	s := &QuizSession{
		catalog: catalog,
		ledger:  ledger,
		creds:   creds,
		nav:     nav,
		rules:   badge.DefaultRules(),
		timeout: DefaultFetchTimeout,
		logger:  log.New(io.Discard, "", 0),
		attempt: newAttempt(),
		badges:  badge.Set{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the quiz for goal and starts a fresh attempt. A missing quiz
// leaves the session in PhaseNotFound and returns *domain.NotFoundError; a
// failed fetch leaves PhaseLoadFailed and returns *domain.TransientFetchError.
func (s *QuizSession) Load(ctx context.Context, goal domain.GoalID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrNotReady
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.goal = goal
	s.quiz = nil
	s.phase = PhaseLoading
	s.attempt = newAttempt()
	s.submitted = false
	s.submitErr = nil
	userID := s.creds.UserID
	s.mu.Unlock()
	defer cancel()

	var (
		quizzes []domain.Quiz
		history []domain.ScoreRecord
		histErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fctx, fcancel := context.WithTimeout(gctx, s.timeout)
		defer fcancel()
		var err error
		quizzes, err = s.catalog.ListQuizzes(fctx)
		return err
	})
	if userID != "" {
		g.Go(func() error {
			fctx, fcancel := context.WithTimeout(gctx, s.timeout)
			defer fcancel()
			history, histErr = s.ledger.Scores(fctx, userID)
			return nil
		})
	}
	fetchErr := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.closed {
		return context.Canceled
	}
	s.cancel = nil

	if fetchErr != nil {
		s.phase = PhaseLoadFailed
		s.logger.Printf("fetch quizzes for goal %d: %v", goal, fetchErr)
		return asTransient("fetch quizzes", fetchErr)
	}
	if histErr != nil {
		s.logger.Printf("fetch scores for %s: %v", userID, histErr)
		history = nil
	}
	s.setHistoryLocked(history)

	s.quizzes = quizzes
	quiz, ok := domain.FindQuiz(quizzes, goal)
	if !ok || len(quiz.Questions) == 0 {
		s.phase = PhaseNotFound
		s.logger.Printf("no quiz found for goal %d", goal)
		return &domain.NotFoundError{GoalID: goal}
	}
	s.quiz = &quiz
	s.phase = PhaseAnswering
	return nil
}

// SelectOption chooses an option on the current question and reports whether
// it is correct. Once a selection exists further calls change nothing and
// report the first selection.
func (s *QuizSession) SelectOption(index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseOptionSelected:
		q := s.quiz.Questions[s.attempt.Index]
		return q.Options[s.attempt.Selected].IsCorrect, nil
	case PhaseAnswering:
	default:
		return false, fmt.Errorf("select option in phase %s: %w", s.phase, domain.ErrNotReady)
	}

	q := s.quiz.Questions[s.attempt.Index]
	if index < 0 || index >= len(q.Options) {
		return false, domain.ErrOptionNotFound
	}
	s.attempt.Selected = index
	correct := q.Options[index].IsCorrect
	if correct {
		s.attempt.Score++
	}
	s.phase = PhaseOptionSelected
	return correct, nil
}

// Advance moves to the next question, or completes the attempt and submits
// the score when the current question is the last one. It is rejected with
// domain.ErrNoSelection until an option has been selected. A submission
// failure is returned but the session stays completed.
func (s *QuizSession) Advance(ctx context.Context) error {
	s.mu.Lock()
	switch s.phase {
	case PhaseOptionSelected:
	case PhaseAnswering:
		s.mu.Unlock()
		return domain.ErrNoSelection
	default:
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("advance in phase %s: %w", phase, domain.ErrNotReady)
	}

	if s.attempt.Index < len(s.quiz.Questions)-1 {
		s.attempt.Index++
		s.attempt.Selected = -1
		s.phase = PhaseAnswering
		s.mu.Unlock()
		return nil
	}

	s.attempt.Completed = true
	s.phase = PhaseSubmitting
	s.mu.Unlock()

	err := s.submit(ctx)

	s.mu.Lock()
	if s.phase == PhaseSubmitting {
		s.phase = PhaseCompleted
	}
	s.mu.Unlock()
	return err
}

// RetrySubmission re-attempts a failed submission of the completed attempt.
func (s *QuizSession) RetrySubmission(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseCompleted {
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("retry submission in phase %s: %w", phase, domain.ErrNotReady)
	}
	if s.submitted {
		s.mu.Unlock()
		return domain.ErrAlreadySubmitted
	}
	s.phase = PhaseSubmitting
	s.mu.Unlock()

	err := s.submit(ctx)

	s.mu.Lock()
	if s.phase == PhaseSubmitting {
		s.phase = PhaseCompleted
	}
	s.mu.Unlock()
	return err
}

func (s *QuizSession) submit(ctx context.Context) error {
	s.mu.Lock()
	creds := s.creds
	gen := s.generation
	sub := domain.ScoreSubmission{
		UserID:         creds.UserID,
		GoalID:         s.goal,
		QuizID:         s.quiz.ID,
		Score:          s.attempt.Score,
		TotalQuestions: len(s.quiz.Questions),
	}
	s.mu.Unlock()

	if !creds.Authenticated() {
		err := &domain.AuthRequiredError{Reason: "missing token or user id"}
		s.finishSubmit(gen, err)
		s.navigate(domain.RouteLogin)
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.ledger.Submit(sctx, creds, sub)
	cancel()
	if err != nil {
		s.logger.Printf("submit score for goal %d: %v", sub.GoalID, err)
		if errors.Is(err, domain.ErrAuthRequired) {
			s.finishSubmit(gen, err)
			s.navigate(domain.RouteLogin)
			return err
		}
		serr := &domain.SubmissionError{Err: err}
		s.finishSubmit(gen, serr)
		return serr
	}
	s.finishSubmit(gen, nil)

	hctx, hcancel := context.WithTimeout(ctx, s.timeout)
	history, herr := s.ledger.Scores(hctx, creds.UserID)
	hcancel()
	if herr != nil {
		s.logger.Printf("refresh scores for %s: %v", creds.UserID, herr)
		return nil
	}
	s.mu.Lock()
	if gen == s.generation {
		s.setHistoryLocked(history)
	}
	s.mu.Unlock()
	return nil
}

func (s *QuizSession) finishSubmit(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.submitErr = err
	s.submitted = err == nil
}

// AdvanceToNextQuiz navigates to the quiz that follows the current goal in
// catalog order, or home when it is the last one.
func (s *QuizSession) AdvanceToNextQuiz() domain.Route {
	s.mu.Lock()
	route := NextQuizRoute(s.quizzes, s.goal)
	s.mu.Unlock()
	s.navigate(route)
	return route
}

// Close abandons the session. In-flight fetches are cancelled and their
// results dropped.
func (s *QuizSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Phase reports the current state.
func (s *QuizSession) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Snapshot returns a copy of the visible session state.
func (s *QuizSession) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SessionView{
		Phase:     s.phase,
		GoalID:    s.goal,
		Index:     s.attempt.Index,
		Selected:  s.attempt.Selected,
		Score:     s.attempt.Score,
		History:   append([]domain.ScoreRecord(nil), s.history...),
		Badges:    append(badge.Set{}, s.badges...),
		Submitted: s.submitted,
		SubmitErr: s.submitErr,
		LastRoute: s.lastRoute,
	}
	if s.quiz != nil {
		v.QuizID = s.quiz.ID
		v.Total = len(s.quiz.Questions)
		if s.attempt.Index < len(s.quiz.Questions) {
			q := s.quiz.Questions[s.attempt.Index]
			v.Question = &q
		}
	}
	return v
}

func (s *QuizSession) setHistoryLocked(history []domain.ScoreRecord) {
	s.history = history
	s.badges = s.rules.Compute(history)
}

func (s *QuizSession) navigate(route domain.Route) {
	s.mu.Lock()
	s.lastRoute = route
	nav := s.nav
	s.mu.Unlock()
	if nav != nil {
		nav.Navigate(route)
	}
}

func asTransient(op string, err error) error {
	var tfe *domain.TransientFetchError
	if errors.As(err, &tfe) {
		return tfe
	}
	return &domain.TransientFetchError{Op: op, Err: err}
}
