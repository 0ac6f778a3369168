package main

import (
	"log"
	"net/http"

	"jalrakshak/models"
)

func (a *App) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResp{Status: "online", System: "JalRakshak Backend (Go)"})
}

// handleIncidents flattens reports into the map client's incident shape.
// Reports without a usable coordinate pair are skipped; missing nested fields
// get explicit defaults.
func (a *App) handleIncidents(w http.ResponseWriter, r *http.Request) {
	reports, err := a.store.ListReports(r.Context())
	if err != nil {
		log.Printf("incidents read degraded: %v", err)
	}

	incidents := []incident{}
	for _, rep := range reports {
		if rep.Location.Lat == 0 || rep.Location.Lng == 0 {
			continue
		}
		inc := incident{
			ID:        rep.ID,
			Lat:       rep.Location.Lat,
			Lng:       rep.Location.Lng,
			Score:     rep.CleanlinessScore,
			Ward:      "Unknown",
			Status:    rep.Status,
			PH:        7.0,
			Turbidity: 1.0,
		}
		if rep.CitizenData != nil && rep.CitizenData.Ward != "" {
			inc.Ward = rep.CitizenData.Ward
		}
		if rep.SensorData != nil {
			inc.PH = rep.SensorData.PH
			inc.Turbidity = rep.SensorData.Turbidity
		}
		if inc.Status == "" {
			inc.Status = models.StatusSafe
		}
		incidents = append(incidents, inc)
	}
	writeJSON(w, incidentsResp{Incidents: incidents})
}

func (a *App) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	points, err := a.store.ListHeatmapPoints(r.Context(), 0)
	if err != nil {
		log.Printf("heatmap read degraded: %v", err)
	}
	writeJSON(w, heatmapResp{Heatmap: points})
}

func (a *App) handleReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.store.ListReports(r.Context())
	if err != nil {
		log.Printf("reports read degraded: %v", err)
	}
	writeJSON(w, reportsResp{Reports: reports})
}

// handleAlerts serves the notification widget: a fixed 24-hour window, small
// limit, newest first.
func (a *App) handleAlerts(w http.ResponseWriter, r *http.Request) {
	resp := alertsResp{}
	alerts, err := a.store.ListRecentAlerts(r.Context(), alertWindow, alertLimit)
	if err != nil {
		log.Printf("alerts read degraded: %v", err)
		resp.Error = err.Error()
	}
	resp.Alerts = alerts
	writeJSON(w, resp)
}
