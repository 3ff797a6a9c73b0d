package api

import (
	"net/http"

	"github.com/vytor/uptriv/internal/logger"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	stats, err := s.StatsService.GetStats(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	list, err := s.StatsService.Recommendations(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

type dismissRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleDismissRecommendation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req dismissRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("dismissing recommendation: %q", req.Title)

	list, err := s.StatsService.DismissRecommendation(r.Context(), user.ID, req.Title)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	board, err := s.LeaderboardService.GetLeaderboard(r.Context(), user.ID, r.URL.Query().Get("difficulty"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, board)
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	res, err := s.LeaderboardService.CheckHardModeEligibility(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
