package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/uptriv/internal/errors"
	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
)

type startRoundRequest struct {
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req startRoundRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("starting round: difficulty=%q", req.Difficulty)

	round, err := s.GameService.StartRound(r.Context(), user.ID, req.Difficulty)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, round)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var sub models.AnswerSubmission
	if err := decodeJSON(w, r, &sub); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.GameService.SubmitAnswer(r.Context(), user.ID, sub)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	q := r.URL.Query()

	share, err := s.GameService.ShareText(r.Context(), user.ID, q.Get("day"), q.Get("difficulty"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, share)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	rounds, err := s.GameService.History(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"username": user.Username, "rounds": rounds})
}

func (s *Server) handleHistoryByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		handleError(w, r, errors.NewBadRequestError("username required"))
		return
	}

	target, err := s.UserService.GetByUsername(r.Context(), username)
	if err != nil {
		handleError(w, r, err)
		return
	}
	rounds, err := s.GameService.History(r.Context(), target.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"username": target.Username, "rounds": rounds})
}

func (s *Server) handleStartOnboarding(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	round, err := s.GameService.StartOnboarding(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, round)
}

func (s *Server) handleSubmitOnboardingAnswer(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var sub models.AnswerSubmission
	if err := decodeJSON(w, r, &sub); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.GameService.SubmitOnboardingAnswer(r.Context(), user.ID, sub)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
