package mongo

import (
	"context"
	"fmt"
	"time"

	"despachos/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client *mongo.Client
	Ctx    context.Context
	Cancel context.CancelFunc
	URL    string
	Name   string
}

func NewMongoDB(url, name string) *MongoDB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	return &MongoDB{
		Ctx:    ctx,
		Cancel: cancel,
		URL:    url,
		Name:   name,
	}
}

func (m *MongoDB) Connect() error {
	client, err := mongo.Connect(m.Ctx, options.Client().ApplyURI(m.URL))
	if err != nil {
		return err
	}
	m.Client = client
	if err := m.Client.Ping(m.Ctx, nil); err != nil {
		return err
	}
	return m.EnsureIndexes()
}

func (m *MongoDB) Disconnect() error {
	m.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

func (m *MongoDB) GetContext() context.Context {
	return m.Ctx
}

func (m *MongoDB) Database() *mongo.Database {
	return m.Client.Database(m.Name)
}

func (m *MongoDB) Store() *repository.Store {
	return repository.NewMongoStore(m.Database())
}

// EnsureIndexes creates the unique keys the Postgres schema enforces with
// constraints.
func (m *MongoDB) EnsureIndexes() error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	indexes := map[string][]mongo.IndexModel{
		"sede":     {unique(bson.D{{Key: "codigo", Value: 1}})},
		"vehiculo": {unique(bson.D{{Key: "placa", Value: 1}})},
		"tercero":  {unique(bson.D{{Key: "tipo_documento", Value: 1}, {Key: "numero_documento", Value: 1}})},
		"remesa": {
			unique(bson.D{{Key: "consecutivo", Value: 1}}),
			{Keys: bson.D{{Key: "estado", Value: 1}}},
		},
		"manifiesto": {
			unique(bson.D{{Key: "numero", Value: 1}}),
			{Keys: bson.D{{Key: "estado", Value: 1}}},
		},
		"documento_rndc": {{Keys: bson.D{{Key: "consecutivo", Value: 1}}}},
		"log_rndc":       {{Keys: bson.D{{Key: "created_at", Value: -1}}}},
		"configuracion_rndc": {{
			Keys: bson.D{{Key: "activo", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"activo": true}),
		}},
	}
	db := m.Database()
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(m.Ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
