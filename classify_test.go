package main

import (
	"testing"

	"jalrakshak/models"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		sensor   *models.SensorData
		aiLabel  string
		analysis string
		want     models.Status
	}{
		{"default safe", nil, "", "", models.StatusSafe},
		{"adopts ai label", nil, "Warning", "", models.StatusWarning},
		{"legacy caution maps to warning", nil, "Caution", "", models.StatusWarning},
		{"legacy unsafe maps to dangerous", nil, "Unsafe", "", models.StatusDangerous},
		{"legacy danger maps to dangerous", nil, "Danger", "", models.StatusDangerous},
		{"lowercase label recognized", nil, "safe", "", models.StatusSafe},
		{"low ph escalates", &models.SensorData{PH: 6.0, Turbidity: 1.0}, "", "", models.StatusDangerous},
		{"high ph overrides safe label", &models.SensorData{PH: 9.2, Turbidity: 1.0}, "Safe", "", models.StatusDangerous},
		{"turbidity above limit escalates", &models.SensorData{PH: 7.0, Turbidity: 5.1}, "Safe", "", models.StatusDangerous},
		{"boundary values stay safe", &models.SensorData{PH: 6.5, Turbidity: 5.0}, "", "", models.StatusSafe},
		{"upper ph boundary stays safe", &models.SensorData{PH: 8.5, Turbidity: 0.1}, "", "", models.StatusSafe},
		{"signal word danger", nil, "Safe", "Visible contamination, DANGER to consumers", models.StatusDangerous},
		{"signal word unsafe", nil, "", "the water looks unsafe to drink", models.StatusDangerous},
		{"no signals stays safe", &models.SensorData{PH: 7.2, Turbidity: 0.8}, "", "clear water, no visible particles", models.StatusSafe},
		{"informational label passes through", nil, "Manual Check", "", models.StatusManualCheck},
		{"sensors escalate past informational label", &models.SensorData{PH: 5.0, Turbidity: 0.2}, "AI Busy / Quota Exceeded", "", models.StatusDangerous},
		{"nominal sensors keep ai label", &models.SensorData{PH: 7.2, Turbidity: 0.8}, "Warning", "slightly cloudy", models.StatusWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.sensor, tt.aiLabel, tt.analysis); got != tt.want {
				t.Errorf("classifyStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusRank(t *testing.T) {
	tests := []struct {
		status models.Status
		want   int
	}{
		{models.StatusSafe, 0},
		{models.StatusWarning, 1},
		{models.StatusDangerous, 2},
		{models.StatusManualCheck, -1},
		{models.StatusAIBusy, -1},
		{models.Status("anything else"), -1},
	}
	for _, tt := range tests {
		if got := tt.status.Rank(); got != tt.want {
			t.Errorf("Rank(%q) = %d, want %d", tt.status, got, tt.want)
		}
	}
}
