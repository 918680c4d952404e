package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rfkit/rfkit/pkg/errors"
)

// MongoStore keeps figures in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and uses the given database/collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Get retrieves a figure by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Figure, error) {
	var fig Figure
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&fig)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeFigureNotFound, "figure %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load figure %s", id)
	}
	return &fig, nil
}

// Put stores or replaces a figure.
func (s *MongoStore) Put(ctx context.Context, fig *Figure) error {
	if fig.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "figure has no id")
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": fig.ID}, fig,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store figure %s", fig.ID)
	}
	return nil
}

// List returns all figures, newest first, without SVG payloads.
func (s *MongoStore) List(ctx context.Context) ([]*Figure, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"svg": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list figures")
	}
	defer cur.Close(ctx)

	var out []*Figure
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode figures")
	}
	return out, nil
}

// Delete removes a figure.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete figure %s", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
