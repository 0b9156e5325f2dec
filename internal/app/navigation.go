package app

import "sdg-quest/internal/domain"

// NextQuizRoute picks the quiz after goal by catalog position. Goal
// identifiers are not assumed to be contiguous.
func NextQuizRoute(catalog []domain.Quiz, goal domain.GoalID) domain.Route {
	for i, q := range catalog {
		if q.GoalID != goal {
			continue
		}
		if i < len(catalog)-1 {
			return domain.QuizRoute(catalog[i+1].GoalID)
		}
		break
	}
	return domain.RouteHome
}

// RouteRecorder is a Navigator that keeps the transitions it was given.
type RouteRecorder struct {
	Routes []domain.Route
}

func (r *RouteRecorder) Navigate(route domain.Route) {
	r.Routes = append(r.Routes, route)
}

// Last returns the most recent transition, or "" when there is none.
func (r *RouteRecorder) Last() domain.Route {
	if len(r.Routes) == 0 {
		return ""
	}
	return r.Routes[len(r.Routes)-1]
}
