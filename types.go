package main

import (
	"encoding/json"
	"log"
	"net/http"

	"jalrakshak/models"
)

// Response DTOs. Every endpoint answers HTTP 200 and discriminates through the
// success/error fields, matching what the dashboard client expects.

type ingestResp struct {
	Success  bool      `json:"success"`
	ReportID string    `json:"report_id,omitempty"`
	Data     *Analysis `json:"data,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	Error    string    `json:"error,omitempty"`
}

type incident struct {
	ID        string        `json:"id"`
	Lat       float64       `json:"lat"`
	Lng       float64       `json:"lng"`
	Score     float64       `json:"score"`
	Ward      string        `json:"ward"`
	Status    models.Status `json:"status"`
	PH        float64       `json:"ph"`
	Turbidity float64       `json:"turbidity"`
}

type incidentsResp struct {
	Incidents []incident `json:"incidents"`
}

type heatmapResp struct {
	Heatmap []models.HeatmapPoint `json:"heatmap"`
}

type reportsResp struct {
	Reports []models.Report `json:"reports"`
}

type alertsResp struct {
	Alerts []models.ShutdownAlert `json:"alerts"`
	Error  string                 `json:"error,omitempty"`
}

type statusResp struct {
	Status string `json:"status"`
	System string `json:"system"`
}

// ValidationError marks a malformed submission (missing multipart field,
// unparsable sensor value). It is the only failure class that turns a response
// into success:false.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode failed: %v", err)
	}
}
