package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoOpTimeout = 10 * time.Second

func mongoCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), mongoOpTimeout)
}

type counterDoc struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}

// incrementCounter atomically bumps the named counter and returns the new
// value. Used for numeric _id values and for consecutive numbers.
func incrementCounter(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var c counterDoc
	err := db.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, err
	}
	return c.Value, nil
}

func nextID(ctx context.Context, db *mongo.Database, collection string) (int64, error) {
	return incrementCounter(ctx, db, "id:"+collection)
}

// findOne decodes the first match into out and reports whether one existed.
func findOne(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOneOptions) (bool, error) {
	err := coll.FindOne(ctx, filter, opts...).Decode(out)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
