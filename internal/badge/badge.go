package badge

import (
	"fmt"
	"strings"

	"sdg-quest/internal/domain"
)

// Tier is an achievement label derived from cumulative score.
type Tier string

const (
	Gold   Tier = "Gold"
	Silver Tier = "Silver"
	Bronze Tier = "Bronze"
)

// Set is an ordered set of tiers, Gold first when present.
type Set []Tier

// Has reports whether t was awarded.
func (s Set) Has(t Tier) bool {
	for _, have := range s {
		if have == t {
			return true
		}
	}
	return false
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// Reducer folds a score history into the total that thresholds apply to.
type Reducer func(records []domain.ScoreRecord) int

// SumAll adds every record, including retakes of the same goal.
func SumAll(records []domain.ScoreRecord) int {
	total := 0
	for _, r := range records {
		total += r.Score
	}
	return total
}

// BestPerGoal adds the best score of each goal, so retakes never count twice.
func BestPerGoal(records []domain.ScoreRecord) int {
	best := make(map[domain.GoalID]int, len(records))
	for _, r := range records {
		if cur, ok := best[r.GoalID]; !ok || r.Score > cur {
			best[r.GoalID] = r.Score
		}
	}
	total := 0
	for _, s := range best {
		total += s
	}
	return total
}

// ReducerByName resolves a config value ("best" or "sum").
func ReducerByName(name string) (Reducer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "best", "best-per-goal":
		return BestPerGoal, nil
	case "sum", "sum-all":
		return SumAll, nil
	default:
		return nil, fmt.Errorf("unknown badge reducer %q", name)
	}
}

// Rules holds the inclusive minimum total for each tier.
type Rules struct {
	Gold    int
	Silver  int
	Bronze  int
	Reducer Reducer
}

// DefaultRules awards Gold at 75, Silver at 30 and Bronze for any points.
func DefaultRules() Rules {
	return Rules{Gold: 75, Silver: 30, Bronze: 1, Reducer: BestPerGoal}
}

// Total applies the rule's reducer.
func (r Rules) Total(records []domain.ScoreRecord) int {
	reduce := r.Reducer
	if reduce == nil {
		reduce = BestPerGoal
	}
	return reduce(records)
}

// Compute derives the badge set. Tiers are evaluated independently, so a
// Gold total also earns Silver and Bronze.
func (r Rules) Compute(records []domain.ScoreRecord) Set {
	total := r.Total(records)
	set := Set{}
	if total >= r.Gold {
		set = append(set, Gold)
	}
	if total >= r.Silver {
		set = append(set, Silver)
	}
	if total >= r.Bronze {
		set = append(set, Bronze)
	}
	return set
}

// Compute derives badges with DefaultRules.
func Compute(records []domain.ScoreRecord) Set {
	return DefaultRules().Compute(records)
}
