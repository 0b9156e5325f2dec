package badge

import "sdg-quest/internal/domain"

// QuestionsPerGoal is the size of every goal quiz in the published catalog.
const QuestionsPerGoal = 5

// MaxPoints is the best total a user can reach across all goals.
const MaxPoints = domain.GoalCount * QuestionsPerGoal

// Summary is the dashboard view of a user's score history.
type Summary struct {
	GoalScores     [domain.GoalCount]int `json:"goalScores"`
	TotalPoints    int                   `json:"totalPoints"`
	MaxPoints      int                   `json:"maxPoints"`
	GoalsCompleted int                   `json:"goalsCompleted"`
	GoalCount      int                   `json:"goalCount"`
	Attempts       int                   `json:"attempts"`
	Badges         Set                   `json:"badges"`
}

// Summarize builds the dashboard summary. GoalScores holds the per-goal
// value the reducer would count: the best attempt under BestPerGoal, the
// sum of attempts otherwise. Records with an out-of-range goal only count
// towards Attempts.
func Summarize(records []domain.ScoreRecord, rules Rules) Summary {
	s := Summary{
		MaxPoints: MaxPoints,
		GoalCount: domain.GoalCount,
		Attempts:  len(records),
		Badges:    rules.Compute(records),
	}

	byGoal := make(map[domain.GoalID][]domain.ScoreRecord)
	for _, r := range records {
		if !r.GoalID.Valid() {
			continue
		}
		byGoal[r.GoalID] = append(byGoal[r.GoalID], r)
	}
	for goal, recs := range byGoal {
		s.GoalScores[goal-1] = rules.Total(recs)
	}
	s.GoalsCompleted = len(byGoal)
	s.TotalPoints = rules.Total(records)
	return s
}
