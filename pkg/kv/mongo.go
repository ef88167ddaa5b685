package kv

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "widget_store"

type mongoDocument struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// Mongo adapts the legacy document tier to the Backend interface. It mostly
// serves reads during legacy-source migration; writes exist so the tier can
// also act as a primary backend in deployments that never moved to Redis.
type Mongo struct {
	collection *mongo.Collection
}

func NewMongo(client *mongo.Client, database string) *Mongo {
	return &Mongo{
		collection: client.Database(database).Collection(mongoCollection),
	}
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Value, true, nil
}

func (m *Mongo) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		mongoDocument{Key: key, Value: value},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
