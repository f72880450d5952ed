// internal/repository/mongo.go
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

const mongoTimeout = 5 * time.Second

type MongoFlagStore struct {
	flags    *mongo.Collection
	sessions *mongo.Collection
}

func NewMongoFlagStore(client *mongo.Client, dbName string) *MongoFlagStore {
	db := client.Database(dbName)
	return &MongoFlagStore{
		flags:    db.Collection("flags"),
		sessions: db.Collection("monitoring_results"),
	}
}

func (s *MongoFlagStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.flags.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "severity", Value: 1}, {Key: "flagged_on", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}

func (s *MongoFlagStore) Insert(ctx context.Context, flag *models.Flag) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	_, err := s.flags.InsertOne(ctx, flag)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrConflict
	}
	return err
}

func (s *MongoFlagStore) Get(ctx context.Context, id string) (*models.Flag, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	res := s.flags.FindOne(ctx, bson.M{"id": id})
	if errors.Is(res.Err(), mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if res.Err() != nil {
		return nil, res.Err()
	}
	var f models.Flag
	if err := res.Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *MongoFlagStore) List(ctx context.Context) ([]*models.Flag, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	cur, err := s.flags.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Flag
	for cur.Next(ctx) {
		var f models.Flag
		if err := cur.Decode(&f); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, cur.Err()
}

func (s *MongoFlagStore) Update(ctx context.Context, flag *models.Flag, expected int) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	next := flag.Clone()
	next.Version = expected + 1
	res, err := s.flags.ReplaceOne(ctx, bson.M{"id": flag.ID, "version": expected}, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.flags.CountDocuments(ctx, bson.M{"id": flag.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrNotFound
		}
		return models.ErrConflict
	}
	flag.Version = next.Version
	return nil
}

// MonitoringStore returns a session store sharing this database.
func (s *MongoFlagStore) MonitoringStore() *MongoMonitoringStore {
	return &MongoMonitoringStore{results: s.sessions}
}

type MongoMonitoringStore struct {
	results *mongo.Collection
}

type monitoringDocument struct {
	ProductID string                   `bson:"product_id"`
	Timestamp time.Time                `bson:"timestamp"`
	Result    *models.MonitoringResult `bson:"result"`
}

func (s *MongoMonitoringStore) Append(ctx context.Context, result *models.MonitoringResult) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	_, err := s.results.InsertOne(ctx, monitoringDocument{
		ProductID: result.ProductID,
		Timestamp: result.Timestamp,
		Result:    result,
	})
	return err
}

func (s *MongoMonitoringStore) Results(ctx context.Context, productID string) ([]*models.MonitoringResult, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	cur, err := s.results.Find(ctx, bson.M{"product_id": productID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*models.MonitoringResult{}
	for cur.Next(ctx) {
		var doc monitoringDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.Result)
	}
	return out, cur.Err()
}
