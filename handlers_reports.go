package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jalrakshak/models"
)

// handleProcessSample ingests an automated sample: stored image + optional
// sensor readings. A storage outage or AI exhaustion still yields success:true;
// only malformed input fails the request.
func (a *App) handleProcessSample(w http.ResponseWriter, r *http.Request) {
	content, filename, vErr := readUpload(r)
	if vErr != nil {
		writeJSON(w, ingestResp{Error: vErr.Error()})
		return
	}

	imageURL, err := a.images.Save(content, filename)
	if err != nil {
		log.Printf("sample image not stored: %v", err)
		imageURL = ""
	}

	sample, err := downscaleJPEG(content, maxImageDim)
	if err != nil {
		writeJSON(w, ingestResp{Error: "could not decode image: " + err.Error()})
		return
	}

	phStr := r.FormValue("ph")
	turbStr := r.FormValue("turb")
	hasSensors := formPresent(phStr) && formPresent(turbStr)

	analysis := a.analyzer.Analyze(r.Context(), samplePrompt(hasSensors, phStr, turbStr), a.refImage, sample)

	sensor := &models.SensorData{PH: 7.0, Turbidity: 0.5}
	if hasSensors {
		ph, phErr := strconv.ParseFloat(phStr, 64)
		turb, turbErr := strconv.ParseFloat(turbStr, 64)
		if phErr != nil || turbErr != nil {
			writeJSON(w, ingestResp{Error: "ph and turb must be numeric"})
			return
		}
		sensor.PH, sensor.Turbidity = ph, turb
	} else {
		if analysis.EstimatedPH > 0 {
			sensor.PH = analysis.EstimatedPH
		}
		if analysis.EstimatedTurbidity > 0 {
			sensor.Turbidity = analysis.EstimatedTurbidity
		}
	}

	report := &models.Report{
		SensorData:       sensor,
		Analysis:         analysis.Analysis,
		ImageRef:         imageURL,
		Location:         models.Location{Lat: a.cfg.DefaultLat, Lng: a.cfg.DefaultLng},
		Status:           classifyStatus(sensor, analysis.StatusLabel, analysis.Analysis),
		CleanlinessScore: analysis.CleanlinessScore,
	}
	id, err := a.store.SaveReport(r.Context(), report)
	if err != nil {
		log.Printf("report %s not persisted: %v", id, err)
	}

	a.maybeTriggerShutdown(r.Context(), "Unknown (Sample)", analysis, "Dangerous Contamination Detected")

	writeJSON(w, ingestResp{Success: true, ReportID: id, Data: analysis, ImageURL: imageURL})
}

// handleProcessCitizenReport ingests a citizen submission; sensor values are
// always AI estimates on this path.
func (a *App) handleProcessCitizenReport(w http.ResponseWriter, r *http.Request) {
	content, filename, vErr := readUpload(r)
	if vErr != nil {
		writeJSON(w, ingestResp{Error: vErr.Error()})
		return
	}
	ward := strings.TrimSpace(r.FormValue("ward"))
	if ward == "" {
		writeJSON(w, ingestResp{Error: "ward is required"})
		return
	}
	description := r.FormValue("description")

	imageURL, err := a.images.Save(content, filename)
	if err != nil {
		log.Printf("citizen image not stored: %v", err)
		imageURL = ""
	}

	sample, err := downscaleJPEG(content, maxImageDim)
	if err != nil {
		writeJSON(w, ingestResp{Error: "could not decode image: " + err.Error()})
		return
	}

	analysis := a.analyzer.Analyze(r.Context(), citizenPrompt(ward, description), a.refImage, sample)

	sensor := &models.SensorData{PH: 7.0, Turbidity: 5.0}
	if analysis.EstimatedPH > 0 {
		sensor.PH = analysis.EstimatedPH
	}
	if analysis.EstimatedTurbidity > 0 {
		sensor.Turbidity = analysis.EstimatedTurbidity
	}

	report := &models.Report{
		SensorData:       sensor,
		CitizenData:      &models.CitizenData{Ward: ward, Description: description},
		Analysis:         analysis.Analysis,
		ImageRef:         imageURL,
		Location:         models.Location{Lat: a.cfg.DefaultLat, Lng: a.cfg.DefaultLng},
		Status:           classifyStatus(sensor, analysis.StatusLabel, analysis.Analysis),
		CleanlinessScore: analysis.CleanlinessScore,
	}
	id, err := a.store.SaveReport(r.Context(), report)
	if err != nil {
		log.Printf("report %s not persisted: %v", id, err)
	}

	a.maybeTriggerShutdown(r.Context(), ward, analysis, "High Contamination Reported by Citizen")

	writeJSON(w, ingestResp{Success: true, ReportID: id, Data: analysis})
}

// maybeTriggerShutdown raises a Critical alert when the analysis recommends
// cutting supply; persistence failures are logged, never surfaced.
func (a *App) maybeTriggerShutdown(ctx context.Context, ward string, analysis *Analysis, fallbackReason string) {
	if !analysis.ShutdownRecommended {
		return
	}
	reason := analysis.ShutdownReason
	if reason == "" {
		reason = fallbackReason
	}
	alert := &models.ShutdownAlert{Ward: ward, Reason: reason, Severity: "Critical"}
	if _, err := a.store.SaveAlert(ctx, alert); err != nil {
		log.Printf("shutdown alert for ward %s not persisted: %v", ward, err)
		return
	}
	log.Printf("shutdown alert %s raised for ward %s: %s", alert.PipelineRef, ward, reason)
}

// readUpload pulls the required multipart file part.
func readUpload(r *http.Request) ([]byte, string, *ValidationError) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", &ValidationError{Msg: "file is required"}
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", &ValidationError{Msg: "could not read uploaded file"}
	}
	return content, header.Filename, nil
}

// formPresent treats the literal string "null" as absent; sensor clients send
// it for missing probes.
func formPresent(v string) bool {
	return v != "" && v != "null"
}

func samplePrompt(hasSensors bool, ph, turb string) string {
	promptContext := "SENSORS NOT AVAILABLE. Based on the visual appearance of the water in the image, ESTIMATE the pH and Turbidity levels."
	if hasSensors {
		promptContext = fmt.Sprintf("Sensor readings are: pH %s and Turbidity %s NTU.", ph, turb)
	}
	return fmt.Sprintf(`Analyze the water sample (Image 2). Image 1 is a REFERENCE of perfectly clean water. Compare the sample against this reference.

Context: %s

Describe what you see, give a status label (Safe, Warning or Dangerous), estimate pH and turbidity, state whether an emergency pipeline shutdown is recommended and why, and give recommendations for the operator.`, promptContext)
}

func citizenPrompt(ward, description string) string {
	return fmt.Sprintf(`Analyze the water sample (Image 2) reported from Ward: %s. Description: %s.
Image 1 is a REFERENCE of perfectly clean water. Compare the sample against this reference.

Identify contaminants and danger level. Score cleanliness from 0 to 100, give a status label (Safe, Warning or Dangerous), estimate pH (0-14) and turbidity (NTU) from the visual appearance, and state whether an emergency pipeline shutdown is recommended and why.`, ward, description)
}
