package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"sdg-quest/internal/domain"
)

// ScoreStore persists score records (in-memory, Redis, Postgres).
type ScoreStore interface {
	Append(ctx context.Context, record domain.ScoreRecord) error
	ListByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error)
}

// EventPublisher announces domain events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// EventScoreSubmitted is published after a record is stored.
const EventScoreSubmitted = "score.submitted"

// ScoreService is the backend side of the score ledger.
type ScoreService struct {
	scores  ScoreStore
	quizzes QuizCatalog
	events  EventPublisher
	now     func() time.Time
	newID   func() string

	mu    sync.RWMutex
	feeds map[string]*Feed
}

func NewScoreService(scores ScoreStore, quizzes QuizCatalog, events EventPublisher) *ScoreService {
	return NewScoreServiceWithClock(scores, quizzes, events, time.Now)
}

// NewScoreServiceWithClock is test-only for deterministic timestamps.
func NewScoreServiceWithClock(scores ScoreStore, quizzes QuizCatalog, events EventPublisher, now func() time.Time) *ScoreService {
	return &ScoreService{
		scores:  scores,
		quizzes: quizzes,
		events:  events,
		now:     now,
		newID:   func() string { return uuid.NewString() },
		feeds:   make(map[string]*Feed),
	}
}

// Submit validates a submission against the catalog and stores it.
func (s *ScoreService) Submit(ctx context.Context, sub domain.ScoreSubmission) (domain.ScoreRecord, error) {
	catalog, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("load catalog: %w", err)
	}
	if err := validateSubmission(catalog, sub); err != nil {
		return domain.ScoreRecord{}, err
	}

	record := domain.ScoreRecord{
		ID:             s.newID(),
		UserID:         sub.UserID,
		GoalID:         sub.GoalID,
		QuizID:         sub.QuizID,
		Score:          sub.Score,
		TotalQuestions: sub.TotalQuestions,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.scores.Append(ctx, record); err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("store score: %w", err)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, EventScoreSubmitted, record); err != nil {
			log.Printf("publish %s: %v", EventScoreSubmitted, err)
		}
	}

	s.mu.RLock()
	feed := s.feeds[record.UserID]
	s.mu.RUnlock()
	if feed != nil {
		feed.broadcast(record)
	}
	return record, nil
}

// History returns every record of a user in submission order.
func (s *ScoreService) History(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	records, err := s.scores.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	if records == nil {
		records = []domain.ScoreRecord{}
	}
	return records, nil
}

// Subscribe returns a channel receiving records submitted for userID.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ScoreService) Subscribe(_ context.Context, userID string) (<-chan domain.ScoreRecord, func()) {
	// Attach under s.mu so a concurrent cancel cannot drop the feed from
	// s.feeds between lookup and registration.
	s.mu.Lock()
	feed, ok := s.feeds[userID]
	if !ok {
		feed = newFeed()
		s.feeds[userID] = feed
	}
	ch, cancel := feed.subscribe()
	s.mu.Unlock()

	return ch, func() {
		cancel()
		s.mu.Lock()
		if feed.isEmpty() && s.feeds[userID] == feed {
			delete(s.feeds, userID)
		}
		s.mu.Unlock()
	}
}

func validateSubmission(catalog []domain.Quiz, sub domain.ScoreSubmission) error {
	if sub.UserID == "" {
		return fmt.Errorf("%w: missing user id", domain.ErrInvalidSubmission)
	}
	quiz, ok := domain.FindQuiz(catalog, sub.GoalID)
	if !ok {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSubmission, &domain.NotFoundError{GoalID: sub.GoalID})
	}
	if sub.QuizID != "" && sub.QuizID != quiz.ID {
		return fmt.Errorf("%w: quiz %s does not belong to goal %d", domain.ErrInvalidSubmission, sub.QuizID, sub.GoalID)
	}
	if sub.TotalQuestions != len(quiz.Questions) {
		return fmt.Errorf("%w: total %d, quiz has %d questions", domain.ErrInvalidSubmission, sub.TotalQuestions, len(quiz.Questions))
	}
	if sub.Score < 0 || sub.Score > sub.TotalQuestions {
		return fmt.Errorf("%w: score %d out of range", domain.ErrInvalidSubmission, sub.Score)
	}
	return nil
}

// Feed fans score records out to the live subscribers of one user.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan domain.ScoreRecord]struct{}
}

func newFeed() *Feed {
	return &Feed{subscribers: make(map[chan domain.ScoreRecord]struct{})}
}

func (f *Feed) subscribe() (<-chan domain.ScoreRecord, func()) {
	ch := make(chan domain.ScoreRecord, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *Feed) broadcast(record domain.ScoreRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- record:
		default:
			// Slow subscriber: drop its oldest pending record.
			select {
			case <-ch:
			default:
			}
			ch <- record
		}
	}
}

func (f *Feed) isEmpty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers) == 0
}
