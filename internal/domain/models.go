package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GoalCount is the number of fixed goals a quiz can belong to.
const GoalCount = 17

// GoalID identifies one of the 17 goals. It decodes from either a JSON
// number or a numeric string so both spellings compare equal.
type GoalID int

// ParseGoalID parses a route parameter into a goal identifier.
func ParseGoalID(raw string) (GoalID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid goal id %q: %w", raw, err)
	}
	g := GoalID(n)
	if !g.Valid() {
		return 0, fmt.Errorf("goal id %d out of range 1..%d", n, GoalCount)
	}
	return g, nil
}

// Valid reports whether the goal lies in 1..GoalCount.
func (g GoalID) Valid() bool {
	return g >= 1 && g <= GoalCount
}

func (g GoalID) String() string {
	return strconv.Itoa(int(g))
}

func (g *GoalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("goal id %q: %w", s, err)
		}
		*g = GoalID(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("goal id: %w", err)
	}
	*g = GoalID(n)
	return nil
}

// Option is a possible answer for a question.
type Option struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// Question is a prompt with an ordered list of options. Exactly one option
// is expected to be correct; this is assumed, not enforced.
type Question struct {
	Prompt  string   `json:"question" yaml:"question"`
	Options []Option `json:"options" yaml:"options"`
}

// Quiz is the ordered question list for one goal.
type Quiz struct {
	ID        string     `json:"_id" yaml:"id"`
	GoalID    GoalID     `json:"goalId" yaml:"goalId"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// FindQuiz scans a catalog for the quiz belonging to goal.
func FindQuiz(catalog []Quiz, goal GoalID) (Quiz, bool) {
	for _, q := range catalog {
		if q.GoalID == goal {
			return q, true
		}
	}
	return Quiz{}, false
}

// ScoreRecord is the persisted outcome of one completed attempt.
type ScoreRecord struct {
	ID             string    `json:"_id,omitempty"`
	UserID         string    `json:"userId"`
	GoalID         GoalID    `json:"goalId"`
	QuizID         string    `json:"quizId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ScoreSubmission is the body posted when an attempt completes.
type ScoreSubmission struct {
	UserID         string `json:"userId"`
	GoalID         GoalID `json:"goalId"`
	QuizID         string `json:"quizId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
}

// Credentials is the authenticated session context of a user.
type Credentials struct {
	Token  string `json:"token" yaml:"token"`
	UserID string `json:"userId" yaml:"userId"`
	User   string `json:"user,omitempty" yaml:"user,omitempty"`
}

// Authenticated reports whether both token and user id are present.
func (c Credentials) Authenticated() bool {
	return c.Token != "" && c.UserID != ""
}

// Route is a navigation destination handed to a routing collaborator.
type Route string

const (
	RouteHome  Route = "/"
	RouteLogin Route = "/login"
)

// QuizRoute is the destination for the quiz of goal.
func QuizRoute(goal GoalID) Route {
	return Route("/quiz/" + goal.String())
}

// Goal returns the goal addressed by a quiz route.
func (r Route) Goal() (GoalID, bool) {
	rest, ok := strings.CutPrefix(string(r), "/quiz/")
	if !ok {
		return 0, false
	}
	g, err := ParseGoalID(rest)
	if err != nil {
		return 0, false
	}
	return g, true
}
