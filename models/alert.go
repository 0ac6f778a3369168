package models

import "time"

// ShutdownAlert is an emergency notification raised when an analysis recommends
// cutting supply to a pipeline segment. Alerts are append-only: the core creates
// them and never mutates them afterwards (acknowledgment is a UI concern left to
// a future admin surface).
type ShutdownAlert struct {
	ID           string    `bson:"id"           json:"id"`
	Ward         string    `bson:"ward"         json:"ward"`
	PipelineRef  string    `bson:"pipeline_id"  json:"pipeline_id"` // synthetic segment id, e.g. PL-3F2A
	Reason       string    `bson:"reason"       json:"reason"`
	Severity     string    `bson:"severity"     json:"severity"` // Critical | High
	Timestamp    time.Time `bson:"timestamp"    json:"timestamp"`
	Acknowledged bool      `bson:"acknowledged" json:"acknowledged"`
}
