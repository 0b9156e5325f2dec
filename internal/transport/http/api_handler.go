package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"sdg-quest/internal/app"
	"sdg-quest/internal/auth"
	"sdg-quest/internal/domain"
)

// APIHandler serves the quiz catalog and score ledger REST endpoints.
type APIHandler struct {
	catalog app.QuizCatalog
	scores  *app.ScoreService
	tokens  *auth.TokenService
}

func NewAPIHandler(catalog app.QuizCatalog, scores *app.ScoreService, tokens *auth.TokenService) *APIHandler {
	return &APIHandler{catalog: catalog, scores: scores, tokens: tokens}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/quizzes", instrument("quizzes", h.listQuizzes))
	mux.Handle("GET /api/scores/{userId}", instrument("scores", h.userScores))
	mux.Handle("POST /api/scores/submit", instrument("submit", h.submitScore))
}

type errorBody struct {
	Message string `json:"message"`
}

type submitResponse struct {
	Success bool               `json:"success"`
	Score   domain.ScoreRecord `json:"score"`
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.catalog.ListQuizzes(r.Context())
	if err != nil {
		log.Printf("list quizzes: %v", err)
		writeError(w, http.StatusBadGateway, "quiz catalog unavailable")
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *APIHandler) userScores(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	records, err := h.scores.History(r.Context(), userID)
	if err != nil {
		log.Printf("scores for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "could not load scores")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userScores": records})
}

func (h *APIHandler) submitScore(w http.ResponseWriter, r *http.Request) {
	var sub domain.ScoreSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&sub); err != nil {
		scoreSubmissions.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid submission body")
		return
	}

	if err := h.tokens.Authorize(bearerToken(r), sub.UserID); err != nil {
		scoreSubmissions.WithLabelValues("unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	record, err := h.scores.Submit(r.Context(), sub)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidSubmission):
		scoreSubmissions.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		log.Printf("submit score for %s: %v", sub.UserID, err)
		scoreSubmissions.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "could not store score")
		return
	}

	scoreSubmissions.WithLabelValues("stored").Inc()
	writeJSON(w, http.StatusCreated, submitResponse{Success: true, Score: record})
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}
