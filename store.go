package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jalrakshak/models"
)

const (
	defaultHeatmapLimit = 50
	alertWindow         = 24 * time.Hour
	alertLimit          = 5
)

// Store is the backend-agnostic persistence contract. Both implementations are
// append-only and degrade rather than fail: an unavailable backend yields empty
// reads and id-returning no-op writes, reporting the outage through a
// *StorageError the caller logs and swallows.
type Store interface {
	// SaveReport assigns id and timestamp when unset and appends the record.
	// The returned id is valid even when the write itself failed.
	SaveReport(ctx context.Context, r *models.Report) (string, error)
	// SaveAlert assigns id, timestamp and pipeline ref when unset and appends.
	SaveAlert(ctx context.Context, a *models.ShutdownAlert) (*models.ShutdownAlert, error)
	// ListReports returns all reports ordered by timestamp descending, ties
	// broken by insertion order.
	ListReports(ctx context.Context) ([]models.Report, error)
	// ListHeatmapPoints projects the most recent reports onto map points.
	// limit <= 0 selects the default of 50.
	ListHeatmapPoints(ctx context.Context, limit int) ([]models.HeatmapPoint, error)
	// ListRecentAlerts returns alerts with timestamp >= now-window, newest
	// first, capped at limit.
	ListRecentAlerts(ctx context.Context, window time.Duration, limit int) ([]models.ShutdownAlert, error)
	Close(ctx context.Context) error
}

var errStoreUnavailable = errors.New("store unavailable")

// StorageError tags expected persistence failures so the ingestion pipeline can
// log them and keep going instead of aborting the request.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// stampReport fills in identity fields exactly once; a record that already
// carries them passes through untouched.
func stampReport(r *models.Report) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = models.StatusSafe
	}
}

func stampAlert(a *models.ShutdownAlert) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.PipelineRef == "" {
		a.PipelineRef = newPipelineRef()
	}
	if a.Severity == "" {
		a.Severity = "High"
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
}

// newPipelineRef generates a synthetic infrastructure segment id like PL-3F2A.
func newPipelineRef() string {
	return "PL-" + strings.ToUpper(uuid.NewString()[:4])
}
