package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/floorplace/floorplace/pkg/observability"
)

// runsCollection is the collection holding run documents.
const runsCollection = "runs"

// MongoStore is a MongoDB-backed run store for server deployments, where
// multiple floorplace processes share one run history.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		runs:   client.Database(database).Collection(runsCollection),
	}, nil
}

// Put saves or replaces a run.
func (s *MongoStore) Put(ctx context.Context, run *Run) error {
	start := time.Now()

	_, err := s.runs.ReplaceOne(ctx,
		bson.M{"_id": run.ID}, run,
		options.Replace().SetUpsert(true))
	if err != nil {
		err = fmt.Errorf("upsert run: %w", err)
	}

	observability.Store().OnPut(ctx, run.ID, 0, time.Since(start), err)
	return err
}

// Get retrieves a run by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	start := time.Now()

	var run Run
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observability.Store().OnGet(ctx, id, false, time.Since(start))
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}

	observability.Store().OnGet(ctx, id, true, time.Since(start))
	return &run, nil
}

// List returns summaries of all runs, newest first.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	cursor, err := s.runs.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []Summary
	for cursor.Next(ctx) {
		var run Run
		if err := cursor.Decode(&run); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		summaries = append(summaries, summarize(&run))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// Delete removes a run.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.runs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
