package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpSwagger "github.com/swaggo/http-swagger"
)

// routes wires middlewares and endpoints. The dashboard is served from
// arbitrary hosts, so CORS stays permissive.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/", a.handleRoot)

	r.Post("/process-sample", a.handleProcessSample)
	r.Post("/process-citizen-report", a.handleProcessCitizenReport)

	r.Get("/get-incidents", a.handleIncidents)
	r.Get("/heatmap-data", a.handleHeatmap)
	r.Get("/reports", a.handleReports)
	r.Get("/get-alerts", a.handleAlerts)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(openapiYAML)
	})
	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	// Stored sample images, referenced by the image_url field of reports.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.cfg.UploadsDir))))

	return r
}
