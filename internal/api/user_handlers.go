package api

import (
	"net/http"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{
		"user":                user,
		"onboarding_complete": user.OnboardingComplete(),
		"today":               s.GameService.Today(),
	})
}

type difficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleSetDifficulty(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req difficultyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.UserService.SetDifficulty(r.Context(), user.ID, req.Difficulty)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}
