package repository

import (
	"time"

	"despachos/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoAuditRepo struct {
	DB *mongo.Database
}

func NewMongoAuditRepo(db *mongo.Database) *MongoAuditRepo {
	return &MongoAuditRepo{DB: db}
}

func (r *MongoAuditRepo) CreateAuditDocument(d *models.AuditDocument) error {
	ctx, cancel := mongoCtx()
	defer cancel()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	id, err := nextID(ctx, r.DB, "documento_rndc")
	if err != nil {
		return err
	}
	d.ID = id
	_, err = r.DB.Collection("documento_rndc").InsertOne(ctx, d)
	return err
}

func (r *MongoAuditRepo) CreateLogEntry(e *models.LogEntry) error {
	ctx, cancel := mongoCtx()
	defer cancel()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	id, err := nextID(ctx, r.DB, "log_rndc")
	if err != nil {
		return err
	}
	e.ID = id
	_, err = r.DB.Collection("log_rndc").InsertOne(ctx, e)
	return err
}

func (r *MongoAuditRepo) ListAuditDocuments(consecutive string) ([]*models.AuditDocument, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	cur, err := r.DB.Collection("documento_rndc").Find(ctx, bson.M{"consecutivo": consecutive},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var result []*models.AuditDocument
	return result, cur.All(ctx, &result)
}

func (r *MongoAuditRepo) ListLogEntries(limit int) ([]*models.LogEntry, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	cur, err := r.DB.Collection("log_rndc").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	var result []*models.LogEntry
	return result, cur.All(ctx, &result)
}
