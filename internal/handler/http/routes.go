package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging)

	router.Get("/api/version", h.getServerVersion)
	router.Get("/api/peer/info", h.peerInfo)

	// snapshots grow with the collection
	router.With(withGZip).Get("/api/collections/{discoveryKey}/snapshot", h.snapshot)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
