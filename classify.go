package main

import (
	"strings"

	"jalrakshak/models"
)

// Sensor bounds are hard regulatory limits; a softer AI label never overrides
// them.
const (
	phMin        = 6.5
	phMax        = 8.5
	turbidityMax = 5.0 // NTU
)

var signalWords = []string{"danger", "unsafe"}

// classifyStatus resolves the final status of a report. Rules run in order and
// only ever escalate toward Dangerous:
//
//  1. default Safe
//  2. adopt the AI label when present (legacy vocabulary mapped onto the
//     canonical one; unrecognized labels pass through as informational)
//  3. pH outside [6.5, 8.5] escalates to Dangerous
//  4. turbidity above 5.0 NTU escalates to Dangerous
//  5. signal words in the analysis text escalate to Dangerous
func classifyStatus(sensor *models.SensorData, aiLabel, analysis string) models.Status {
	status := models.StatusSafe
	if label := strings.TrimSpace(aiLabel); label != "" {
		status = canonicalStatus(label)
	}

	if sensor != nil && (sensor.PH < phMin || sensor.PH > phMax) {
		status = models.StatusDangerous
	}
	if sensor != nil && sensor.Turbidity > turbidityMax {
		status = models.StatusDangerous
	}

	lower := strings.ToLower(analysis)
	for _, word := range signalWords {
		if strings.Contains(lower, word) {
			status = models.StatusDangerous
			break
		}
	}
	return status
}

// canonicalStatus maps the label vocabularies the AI has been observed to emit
// onto the canonical three levels. Anything else is an informational label
// (e.g. "Manual Check") and is carried through untouched.
func canonicalStatus(label string) models.Status {
	switch strings.ToLower(label) {
	case "safe":
		return models.StatusSafe
	case "warning", "caution":
		return models.StatusWarning
	case "dangerous", "unsafe", "danger":
		return models.StatusDangerous
	}
	return models.Status(label)
}
