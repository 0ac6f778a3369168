package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"jalrakshak/models"
)

const mongoOpTimeout = 8 * time.Second

// MongoStore persists reports and shutdown alerts in two collections. Every
// write is a single insert; ordering and limits are pushed to the server.
type MongoStore struct {
	client  *mongo.Client
	reports *mongo.Collection
	alerts  *mongo.Collection
}

// NewMongoStore connects lazily. A connection that cannot even be constructed
// yields a degraded store whose reads are empty and whose writes are no-ops,
// so a storage outage never takes the ingestion pipeline down with it.
func NewMongoStore(ctx context.Context, uri, dbName string) *MongoStore {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Printf("mongo connect failed, store degraded: %v", err)
		return &MongoStore{}
	}
	db := client.Database(dbName)
	return &MongoStore{
		client:  client,
		reports: db.Collection("reports"),
		alerts:  db.Collection("shutdown_alerts"),
	}
}

func (s *MongoStore) SaveReport(ctx context.Context, r *models.Report) (string, error) {
	stampReport(r)
	if s.reports == nil {
		return r.ID, &StorageError{Op: "save report", Err: errStoreUnavailable}
	}
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()
	if _, err := s.reports.InsertOne(ctx, r); err != nil {
		return r.ID, &StorageError{Op: "save report", Err: err}
	}
	return r.ID, nil
}

func (s *MongoStore) SaveAlert(ctx context.Context, a *models.ShutdownAlert) (*models.ShutdownAlert, error) {
	stampAlert(a)
	if s.alerts == nil {
		return a, &StorageError{Op: "save alert", Err: errStoreUnavailable}
	}
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()
	if _, err := s.alerts.InsertOne(ctx, a); err != nil {
		return a, &StorageError{Op: "save alert", Err: err}
	}
	return a, nil
}

func (s *MongoStore) ListReports(ctx context.Context) ([]models.Report, error) {
	return s.findReports(ctx, 0)
}

func (s *MongoStore) ListHeatmapPoints(ctx context.Context, limit int) ([]models.HeatmapPoint, error) {
	if limit <= 0 {
		limit = defaultHeatmapLimit
	}
	reports, err := s.findReports(ctx, limit)
	points := make([]models.HeatmapPoint, 0, len(reports))
	for _, r := range reports {
		points = append(points, models.HeatmapPoint{Lat: r.Location.Lat, Lng: r.Location.Lng, Status: r.Status})
	}
	return points, err
}

func (s *MongoStore) ListRecentAlerts(ctx context.Context, window time.Duration, limit int) ([]models.ShutdownAlert, error) {
	if s.alerts == nil {
		return []models.ShutdownAlert{}, &StorageError{Op: "list alerts", Err: errStoreUnavailable}
	}
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-window)
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.alerts.Find(ctx, bson.M{"timestamp": bson.M{"$gte": cutoff}}, opts)
	if err != nil {
		return []models.ShutdownAlert{}, &StorageError{Op: "list alerts", Err: err}
	}
	defer cur.Close(ctx)

	out := []models.ShutdownAlert{}
	if err := cur.All(ctx, &out); err != nil {
		return []models.ShutdownAlert{}, &StorageError{Op: "decode alerts", Err: err}
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// findReports runs the shared descending-time query; the _id tiebreak keeps the
// order stable for documents inserted within the same timestamp.
func (s *MongoStore) findReports(ctx context.Context, limit int) ([]models.Report, error) {
	if s.reports == nil {
		return []models.Report{}, &StorageError{Op: "list reports", Err: errStoreUnavailable}
	}
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.reports.Find(ctx, bson.M{}, opts)
	if err != nil {
		return []models.Report{}, &StorageError{Op: "list reports", Err: err}
	}
	defer cur.Close(ctx)

	out := []models.Report{}
	if err := cur.All(ctx, &out); err != nil {
		return []models.Report{}, &StorageError{Op: "decode reports", Err: err}
	}
	return out, nil
}
