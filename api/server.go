/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/status           Storage state
  /api/entries/*        Entry CRUD and reload
  /api/summaries/*      Week, month and range summaries
  /api/calendar         Month grid
  /api/export           Workbook download
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from web/dist/ when present, falling back to
  index.html for client-side routing.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. An empty
// allowedOrigins list disables cross-origin access.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.GetStatus)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Post("/reload", h.ReloadEntries)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/summaries", func(r chi.Router) {
			r.Get("/", h.GetRangeSummary)
			r.Get("/week", h.GetWeekSummary)
			r.Get("/month", h.GetMonthSummary)
		})

		r.Get("/calendar", h.GetCalendar)
		r.Get("/export", h.ExportWorkbook)
	})

	if staticDir, ok := findStaticDir(); ok {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	}

	return r
}

// findStaticDir looks in ./web/dist, then next to the executable.
func findStaticDir() (string, bool) {
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); err == nil {
		return staticDir, true
	}
	exe, err := os.Executable()
	if err != nil {
		return "", false
	}
	staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	if _, err := os.Stat(staticDir); err == nil {
		return staticDir, true
	}
	return "", false
}
