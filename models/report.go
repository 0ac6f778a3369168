package models

import "time"

// Status is the canonical three-level safety vocabulary. The AI may also emit
// informational labels (Manual Check, AI Busy / Quota Exceeded) that are carried
// in the same field but never take part in ordinal comparison.
type Status string

const (
	StatusSafe      Status = "Safe"
	StatusWarning   Status = "Warning"
	StatusDangerous Status = "Dangerous"

	StatusManualCheck Status = "Manual Check"
	StatusAIBusy      Status = "AI Busy / Quota Exceeded"
)

// Rank returns the ordinal position of a status, or -1 for informational labels.
func (s Status) Rank() int {
	switch s {
	case StatusSafe:
		return 0
	case StatusWarning:
		return 1
	case StatusDangerous:
		return 2
	}
	return -1
}

// Report is one observation of water quality. JSON tags match the wire shape the
// dashboard consumes; bson tags keep the Mongo document layout identical.
type Report struct {
	ID               string       `bson:"id"                         json:"id"`
	SensorData       *SensorData  `bson:"sensor_data,omitempty"      json:"sensor_data,omitempty"`
	CitizenData      *CitizenData `bson:"citizen_data,omitempty"     json:"citizen_data,omitempty"`
	Analysis         string       `bson:"analysis"                   json:"analysis"`
	ImageRef         string       `bson:"image_url,omitempty"        json:"image_url,omitempty"`
	Location         Location     `bson:"location"                   json:"location"`
	Timestamp        time.Time    `bson:"timestamp"                  json:"timestamp"` // UTC, assigned once
	Status           Status       `bson:"status"                     json:"status"`
	CleanlinessScore float64      `bson:"cleanlinessScore,omitempty" json:"cleanlinessScore,omitempty"` // 0-100
}

// SensorData carries physical probe readings; nil when no sensor was present.
type SensorData struct {
	PH        float64 `bson:"ph"        json:"ph"`
	Turbidity float64 `bson:"turbidity" json:"turbidity"` // NTU
}

// CitizenData is present only on citizen-submitted reports.
type CitizenData struct {
	Ward        string `bson:"ward"                  json:"ward"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// HeatmapPoint is the thin map projection of a report.
type HeatmapPoint struct {
	Lat    float64 `bson:"lat"    json:"lat"`
	Lng    float64 `bson:"lng"    json:"lng"`
	Status Status  `bson:"status" json:"status"`
}
