package repository

import (
	"time"

	"despachos/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConfigRepo struct {
	DB *mongo.Database
}

func NewMongoConfigRepo(db *mongo.Database) *MongoConfigRepo {
	return &MongoConfigRepo{DB: db}
}

func (r *MongoConfigRepo) SaveConfig(cfg *models.Configuration) error {
	ctx, cancel := mongoCtx()
	defer cancel()
	coll := r.DB.Collection("configuracion_rndc")

	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	if cfg.ID == 0 {
		id, err := nextID(ctx, r.DB, "configuracion_rndc")
		if err != nil {
			return err
		}
		cfg.ID = id
	}

	if cfg.Active {
		if _, err := coll.UpdateMany(ctx,
			bson.M{"activo": true, "_id": bson.M{"$ne": cfg.ID}},
			bson.M{"$set": bson.M{"activo": false}},
		); err != nil {
			return err
		}
	}

	_, err := coll.ReplaceOne(ctx, bson.M{"_id": cfg.ID}, cfg, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoConfigRepo) GetActiveConfig() (*models.Configuration, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	var cfg models.Configuration
	ok, err := findOne(ctx, r.DB.Collection("configuracion_rndc"), bson.M{"activo": true}, &cfg,
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

func (r *MongoConfigRepo) ListConfigs() ([]*models.Configuration, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	cur, err := r.DB.Collection("configuracion_rndc").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var result []*models.Configuration
	if err := cur.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}
