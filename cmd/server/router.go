package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/agent-api/internal/api"
	apiMiddleware "github.com/phrazzld/agent-api/internal/api/middleware"
)

// setupRouter builds the chi router with middleware and every route.
func (app *application) setupRouter() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	handler, err := api.NewTaskHandler(app.agent)
	if err != nil {
		return nil, fmt.Errorf("failed to create task handler: %w", err)
	}
	api.RegisterRoutes(r, handler)

	if app.provider != nil {
		r.Method(http.MethodGet, "/metrics", app.provider.Handler)
	}

	return r, nil
}
