package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

type MongoSequenceRepo struct {
	DB *mongo.Database
}

func NewMongoSequenceRepo(db *mongo.Database) *MongoSequenceRepo {
	return &MongoSequenceRepo{DB: db}
}

// NextSequence uses a single-document $inc, which Mongo applies atomically.
func (r *MongoSequenceRepo) NextSequence(docType string, year int) (int64, error) {
	ctx, cancel := mongoCtx()
	defer cancel()
	return incrementCounter(ctx, r.DB, fmt.Sprintf("consecutivo:%s:%d", docType, year))
}
