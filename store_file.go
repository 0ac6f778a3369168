package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"jalrakshak/models"
)

// FileStore keeps each entity kind in one JSON array file under a data
// directory. Every save reads the whole set, appends in memory and rewrites the
// file atomically; a single mutex serializes that cycle so concurrent writers
// cannot lose updates.
type FileStore struct {
	mu          sync.Mutex
	reportsPath string
	alertsPath  string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "create data dir", Err: err}
	}
	return &FileStore{
		reportsPath: filepath.Join(dir, "reports.json"),
		alertsPath:  filepath.Join(dir, "shutdown_alerts.json"),
	}, nil
}

func (s *FileStore) SaveReport(ctx context.Context, r *models.Report) (string, error) {
	stampReport(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var reports []models.Report
	if err := loadJSON(s.reportsPath, &reports); err != nil {
		// A corrupt file is not rewritten: that would trade a read error for
		// data loss.
		return r.ID, &StorageError{Op: "load reports", Err: err}
	}
	reports = append(reports, *r)
	if err := writeAtomic(s.reportsPath, reports); err != nil {
		return r.ID, &StorageError{Op: "save report", Err: err}
	}
	return r.ID, nil
}

func (s *FileStore) SaveAlert(ctx context.Context, a *models.ShutdownAlert) (*models.ShutdownAlert, error) {
	stampAlert(a)
	s.mu.Lock()
	defer s.mu.Unlock()

	var alerts []models.ShutdownAlert
	if err := loadJSON(s.alertsPath, &alerts); err != nil {
		return a, &StorageError{Op: "load alerts", Err: err}
	}
	alerts = append(alerts, *a)
	if err := writeAtomic(s.alertsPath, alerts); err != nil {
		return a, &StorageError{Op: "save alert", Err: err}
	}
	return a, nil
}

func (s *FileStore) ListReports(ctx context.Context) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reports []models.Report
	if err := loadJSON(s.reportsPath, &reports); err != nil {
		return []models.Report{}, &StorageError{Op: "list reports", Err: err}
	}
	if reports == nil {
		reports = []models.Report{}
	}
	sortNewestFirst(reports)
	return reports, nil
}

func (s *FileStore) ListHeatmapPoints(ctx context.Context, limit int) ([]models.HeatmapPoint, error) {
	if limit <= 0 {
		limit = defaultHeatmapLimit
	}
	reports, err := s.ListReports(ctx)
	if len(reports) > limit {
		reports = reports[:limit]
	}
	points := make([]models.HeatmapPoint, 0, len(reports))
	for _, r := range reports {
		points = append(points, models.HeatmapPoint{Lat: r.Location.Lat, Lng: r.Location.Lng, Status: r.Status})
	}
	return points, err
}

func (s *FileStore) ListRecentAlerts(ctx context.Context, window time.Duration, limit int) ([]models.ShutdownAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var alerts []models.ShutdownAlert
	if err := loadJSON(s.alertsPath, &alerts); err != nil {
		return []models.ShutdownAlert{}, &StorageError{Op: "list alerts", Err: err}
	}

	cutoff := time.Now().UTC().Add(-window)
	recent := []models.ShutdownAlert{}
	for _, a := range alerts {
		if !a.Timestamp.Before(cutoff) {
			recent = append(recent, a)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Timestamp.After(recent[j].Timestamp) })
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

// sortNewestFirst orders by timestamp descending; the stable sort preserves
// append order among equal timestamps.
func sortNewestFirst(reports []models.Report) {
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Timestamp.After(reports[j].Timestamp) })
}

// loadJSON fills dst from path; a missing file reads as an empty set.
func loadJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// writeAtomic rewrites path via a temp file + rename so readers never observe a
// half-written array.
func writeAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
