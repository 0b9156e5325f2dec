package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestGoalIDDecodesNumberAndString(t *testing.T) {
	var quizzes []Quiz
	raw := `[{"_id":"a","goalId":3,"questions":[]},{"_id":"b","goalId":"4","questions":[]}]`
	if err := json.Unmarshal([]byte(raw), &quizzes); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if quizzes[0].GoalID != 3 || quizzes[1].GoalID != 4 {
		t.Fatalf("unexpected goals: %d %d", quizzes[0].GoalID, quizzes[1].GoalID)
	}

	goal, err := ParseGoalID("4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q, ok := FindQuiz(quizzes, goal); !ok || q.ID != "b" {
		t.Fatalf("expected quiz b for goal 4, got %+v ok=%v", q, ok)
	}
}

func TestParseGoalIDRejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{"0", "18", "x", ""} {
		if _, err := ParseGoalID(raw); err == nil {
			t.Errorf("ParseGoalID(%q) expected error", raw)
		}
	}
}

func TestRouteGoal(t *testing.T) {
	r := QuizRoute(12)
	if r != "/quiz/12" {
		t.Fatalf("unexpected route %s", r)
	}
	if g, ok := r.Goal(); !ok || g != 12 {
		t.Fatalf("expected goal 12, got %d ok=%v", g, ok)
	}
	if _, ok := RouteHome.Goal(); ok {
		t.Fatalf("home route carries no goal")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	var err error = &NotFoundError{GoalID: 9}
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("not found error should match ErrQuizNotFound")
	}
	err = &AuthRequiredError{Reason: "missing token"}
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("auth error should match ErrAuthRequired")
	}
	sub := &SubmissionError{Err: errors.New("connection reset")}
	if !sub.Retryable() {
		t.Fatalf("network submission failures are retryable")
	}
	sub = &SubmissionError{Err: ErrInvalidSubmission}
	if sub.Retryable() {
		t.Fatalf("rejected submissions are not retryable")
	}
}

func TestScoreRecordAlwaysEncodesCreatedAt(t *testing.T) {
	raw, err := json.Marshal(ScoreRecord{UserID: "u1", GoalID: 3, QuizID: "quiz-3"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"createdAt":"0001-01-01T00:00:00Z"`) {
		t.Fatalf("createdAt missing from %s", raw)
	}
}
