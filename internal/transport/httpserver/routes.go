package httpserver

import (
	"net/http"
	"time"

	"expenses-app-go/internal/config"
	"expenses-app-go/internal/transport/httpserver/handler"
	"expenses-app-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *middleware.IdentityAuth) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.CORSAllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Route("/user", func(r chi.Router) {
				r.Get("/details", handlers.Users.Details)
				r.Put("/", handlers.Users.Update)
				r.Get("/selectedscope", handlers.Users.SelectedScope)
				r.Post("/selectedscope", handlers.Users.SetSelectedScope)
				r.Get("/list", handlers.Users.List)
			})

			r.Route("/scopes", func(r chi.Router) {
				r.Get("/", handlers.Scopes.List)
				r.Post("/", handlers.Scopes.Create)
				r.Get("/{id}", handlers.Scopes.Get)
				r.Put("/{id}", handlers.Scopes.Update)
				r.Delete("/{id}", handlers.Scopes.Delete)
				r.Get("/{id}/users", handlers.Scopes.Members)
				r.Post("/{id}/users", handlers.Scopes.AddUser)
				r.Delete("/{id}/users/{userID}", handlers.Scopes.RemoveUser)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", handlers.Expenses.ListCategories)
				r.Post("/", handlers.Expenses.CreateCategory)
				r.Put("/{id}", handlers.Expenses.UpdateCategory)
				r.Delete("/{id}", handlers.Expenses.DeleteCategory)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", handlers.Expenses.ListExpenses)
				r.Post("/", handlers.Expenses.CreateExpense)
				r.Post("/multi", handlers.Expenses.CreateExpenses)
				r.Delete("/multi", handlers.Expenses.DeleteExpenses)
				r.Put("/{id}", handlers.Expenses.UpdateExpense)
				r.Delete("/{id}", handlers.Expenses.DeleteExpense)
			})

			r.Post("/import/csv", handlers.Imports.CSV)
		})
	})

	return r
}
