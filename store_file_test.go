package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"jalrakshak/models"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s, dir
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	in := []models.Report{
		{Analysis: "oldest", Status: models.StatusSafe, Timestamp: now.Add(-2 * time.Hour)},
		{Analysis: "middle", Status: models.StatusWarning, Timestamp: now.Add(-1 * time.Hour)},
		{Analysis: "newest", Status: models.StatusDangerous, Timestamp: now},
	}
	ids := map[string]bool{}
	for i := range in {
		id, err := s.SaveReport(ctx, &in[i])
		if err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
		if id == "" {
			t.Fatal("SaveReport returned empty id")
		}
		ids[id] = true
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 distinct ids, got %d", len(ids))
	}

	out, err := s.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(out))
	}
	for i, want := range []string{"newest", "middle", "oldest"} {
		if out[i].Analysis != want {
			t.Errorf("position %d: got %q, want %q", i, out[i].Analysis, want)
		}
	}
	// Saved record equals the input except for assigned identity.
	if out[0].Status != models.StatusDangerous || out[0].ID == "" || out[0].Timestamp.IsZero() {
		t.Errorf("round-tripped record damaged: %+v", out[0])
	}
}

func TestFileStorePersistsAcrossRestart(t *testing.T) {
	s, dir := newTestFileStore(t)
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		if _, err := s.SaveReport(ctx, &models.Report{Analysis: fmt.Sprintf("r%d", i)}); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	out, err := reopened.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports after reopen: %v", err)
	}
	if len(out) != n {
		t.Fatalf("expected %d reports after restart, got %d", n, len(out))
	}
	seen := map[string]bool{}
	for _, r := range out {
		if seen[r.ID] {
			t.Errorf("duplicate id %s after restart", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestFileStoreEqualTimestampsKeepInsertionOrder(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()
	ts := time.Now().UTC().Truncate(time.Second)

	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.SaveReport(ctx, &models.Report{Analysis: name, Timestamp: ts}); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}
	out, err := s.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if out[i].Analysis != want {
			t.Errorf("tie order broken at %d: got %q, want %q", i, out[i].Analysis, want)
		}
	}
}

func TestFileStoreConcurrentSaves(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.SaveReport(ctx, &models.Report{Analysis: fmt.Sprintf("w%d", i)}); err != nil {
				t.Errorf("SaveReport: %v", err)
			}
		}(i)
	}
	wg.Wait()

	out, err := s.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(out) != writers {
		t.Fatalf("lost updates: expected %d reports, got %d", writers, len(out))
	}
}

func TestFileStoreHeatmapLimit(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 8; i++ {
		r := &models.Report{
			Location:  models.Location{Lat: float64(i), Lng: float64(i)},
			Status:    models.StatusSafe,
			Timestamp: now.Add(time.Duration(i) * time.Minute),
		}
		if _, err := s.SaveReport(ctx, r); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	points, err := s.ListHeatmapPoints(ctx, 3)
	if err != nil {
		t.Fatalf("ListHeatmapPoints: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Lat != 7 {
		t.Errorf("expected newest report first, got lat %v", points[0].Lat)
	}

	all, err := s.ListHeatmapPoints(ctx, 0)
	if err != nil {
		t.Fatalf("ListHeatmapPoints default: %v", err)
	}
	if len(all) != 8 {
		t.Errorf("default limit should pass all 8, got %d", len(all))
	}
}

func TestFileStoreRecentAlertsWindow(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	stale := &models.ShutdownAlert{Ward: "Ward 1", Reason: "old leak", Timestamp: now.Add(-25 * time.Hour)}
	recent := &models.ShutdownAlert{Ward: "Ward 2", Reason: "fresh leak", Timestamp: now.Add(-1 * time.Hour)}
	current := &models.ShutdownAlert{Ward: "Ward 3", Reason: "contamination", Timestamp: now}
	for _, a := range []*models.ShutdownAlert{stale, recent, current} {
		if _, err := s.SaveAlert(ctx, a); err != nil {
			t.Fatalf("SaveAlert: %v", err)
		}
	}

	alerts, err := s.ListRecentAlerts(ctx, 24*time.Hour, 5)
	if err != nil {
		t.Fatalf("ListRecentAlerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts within window, got %d", len(alerts))
	}
	if alerts[0].Ward != "Ward 3" || alerts[1].Ward != "Ward 2" {
		t.Errorf("wrong order: %q then %q", alerts[0].Ward, alerts[1].Ward)
	}

	limited, err := s.ListRecentAlerts(ctx, 24*time.Hour, 1)
	if err != nil {
		t.Fatalf("ListRecentAlerts limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Ward != "Ward 3" {
		t.Errorf("limit 1 should keep only newest, got %+v", limited)
	}
}

func TestFileStoreAlertStamping(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()

	a, err := s.SaveAlert(ctx, &models.ShutdownAlert{Ward: "Ward 9", Reason: "test"})
	if err != nil {
		t.Fatalf("SaveAlert: %v", err)
	}
	if a.ID == "" {
		t.Error("alert id not assigned")
	}
	if len(a.PipelineRef) != 7 || a.PipelineRef[:3] != "PL-" {
		t.Errorf("unexpected pipeline ref %q", a.PipelineRef)
	}
	if a.Severity != "High" {
		t.Errorf("default severity = %q, want High", a.Severity)
	}
	if a.Acknowledged {
		t.Error("new alert must not be acknowledged")
	}
	if a.Timestamp.IsZero() || a.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp not stamped in UTC: %v", a.Timestamp)
	}

	// Pre-set identity fields pass through untouched.
	preset := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b, err := s.SaveAlert(ctx, &models.ShutdownAlert{ID: "fixed", Ward: "W", Reason: "r", Severity: "Critical", Timestamp: preset})
	if err != nil {
		t.Fatalf("SaveAlert preset: %v", err)
	}
	if b.ID != "fixed" || b.Severity != "Critical" || !b.Timestamp.Equal(preset) {
		t.Errorf("preset fields overwritten: %+v", b)
	}
}

func TestFileStoreDegradesOnCorruptFile(t *testing.T) {
	s, dir := newTestFileStore(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "reports.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	out, err := s.ListReports(ctx)
	if err == nil {
		t.Fatal("expected an error from corrupt file")
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StorageError, got %T", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("degraded read must return an empty slice, got %v", out)
	}

	// The write path still hands back an id and must not clobber the file.
	id, err := s.SaveReport(ctx, &models.Report{Analysis: "x"})
	if err == nil {
		t.Fatal("expected an error from corrupt file on save")
	}
	if id == "" {
		t.Error("save must still return an id in degraded mode")
	}
	b, _ := os.ReadFile(filepath.Join(dir, "reports.json"))
	if string(b) != "not json" {
		t.Error("degraded save rewrote the corrupt file")
	}
}
