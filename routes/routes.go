package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lavelada/velada-votes/handlers"
	"github.com/lavelada/velada-votes/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	voteHandler *handlers.VoteHandler,
	winnerHandler *handlers.WinnerHandler,
	userHandler *handlers.UserHandler,
	combatHandler *handlers.CombatHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/auth/signup", authHandler.SignUp)
	router.Post("/auth/signin", authHandler.SignIn)

	// Public read API.
	router.Get("/users", userHandler.ListUsers)
	router.Get("/users/{userID}", userHandler.GetUser)
	router.Get("/combats", combatHandler.ListCombats)
	router.Get("/combats/{combatID}", combatHandler.GetCombat)
	router.Get("/results", voteHandler.GetVoteResults)
	router.Get("/results/combats", voteHandler.GetAllCombatResults)
	router.Get("/combats/{combatID}/results", voteHandler.GetCombatResults)

	router.Get("/ws/combats/{combatID}", webSocketHandler.ServeWs)

	// Authenticated voting surface.
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Post("/votes", voteHandler.CastVote)
		r.Get("/combats/{combatID}/vote", voteHandler.GetVoteState)
		r.Get("/combats/{combatID}/winner", winnerHandler.GetWinner)
		r.Get("/winners", winnerHandler.ListWinners)
		r.Put("/users/{userID}/avatar", userHandler.UploadAvatar)

		// Admin-only operations.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Delete("/votes", voteHandler.ClearVotes)
			r.Put("/combats/{combatID}/winner", winnerHandler.SetWinner)
			r.Delete("/combats/{combatID}/winner", winnerHandler.DeleteWinner)
			r.Delete("/winners", winnerHandler.ClearWinners)
		})
	})
}
