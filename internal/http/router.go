package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/akhilmv/statementiq/internal/http/export"
	"github.com/akhilmv/statementiq/internal/http/queue"
	"github.com/akhilmv/statementiq/internal/http/reconcile"
	"github.com/akhilmv/statementiq/internal/http/session"
	"github.com/akhilmv/statementiq/internal/http/statement"
)

func New(
	sessionsV1 *session.Handler,
	queueV1 *queue.Handler,
	statementsV1 *statement.Handler,
	reconcileV1 *reconcile.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1/sessions", func(r chi.Router) {
		sessionsV1.Routes(r)

		r.Route("/{sessionID}", func(r chi.Router) {
			sessionsV1.DetailRoutes(r)
			queueV1.UploadRoutes(r)
			statementsV1.Routes(r)
			reconcileV1.Routes(r)

			r.Route("/queue", queueV1.Routes)
			r.Route("/export", exportV1.Routes)
		})
	})

	return router
}
