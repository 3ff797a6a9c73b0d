package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.deviceMiddleware)

		r.Get("/me", s.handleMe)
		r.Put("/me/difficulty", s.handleSetDifficulty)

		r.Post("/rounds", s.handleStartRound)
		r.Post("/rounds/answers", s.handleSubmitAnswer)
		r.Get("/share", s.handleShare)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{username}", s.handleHistoryByUsername)

		r.Get("/onboarding", s.handleStartOnboarding)
		r.Post("/onboarding/answers", s.handleSubmitOnboardingAnswer)

		r.Get("/stats", s.handleStats)
		r.Get("/recommendations", s.handleRecommendations)
		r.Post("/recommendations/dismiss", s.handleDismissRecommendation)

		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/eligibility", s.handleEligibility)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNoRoute(r))
	})
	return r
}
