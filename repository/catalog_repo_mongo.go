package repository

import (
	"regexp"
	"strings"
	"time"

	"despachos/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// upsertByKey keeps the existing numeric _id and created_at when a record
// with the same business key is saved again.
func upsertByKey(db *mongo.Database, collection string, filter bson.M, id *int64, createdAt *time.Time, doc interface{}) error {
	ctx, cancel := mongoCtx()
	defer cancel()
	coll := db.Collection(collection)

	var existing struct {
		ID        int64     `bson:"_id"`
		CreatedAt time.Time `bson:"created_at"`
	}
	found, err := findOne(ctx, coll, filter, &existing)
	if err != nil {
		return err
	}
	if found {
		*id = existing.ID
		*createdAt = existing.CreatedAt
	} else {
		if *id == 0 {
			if *id, err = nextID(ctx, db, collection); err != nil {
				return err
			}
		}
		if createdAt.IsZero() {
			*createdAt = time.Now().UTC()
		}
	}
	_, err = coll.ReplaceOne(ctx, bson.M{"_id": *id}, doc, options.Replace().SetUpsert(true))
	return err
}

// ------------------------ Sites ------------------------

type MongoSiteRepo struct {
	DB *mongo.Database
}

func NewMongoSiteRepo(db *mongo.Database) *MongoSiteRepo {
	return &MongoSiteRepo{DB: db}
}

func (r *MongoSiteRepo) SaveSite(s *models.Site) error {
	s.Name = strings.TrimSpace(s.Name)
	return upsertByKey(r.DB, "sede", bson.M{"codigo": s.Code}, &s.ID, &s.CreatedAt, s)
}

func (r *MongoSiteRepo) GetSiteByName(name string) (*models.Site, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	// Surrounding spaces in the stored name are ignored.
	pattern := `^\s*` + regexp.QuoteMeta(strings.TrimSpace(name)) + `\s*$`
	var s models.Site
	ok, err := findOne(ctx, r.DB.Collection("sede"),
		bson.M{"nombre": primitive.Regex{Pattern: pattern, Options: "i"}}, &s,
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (r *MongoSiteRepo) GetSiteByCode(code string) (*models.Site, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	var s models.Site
	ok, err := findOne(ctx, r.DB.Collection("sede"), bson.M{"codigo": code}, &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (r *MongoSiteRepo) ListSites() ([]*models.Site, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	cur, err := r.DB.Collection("sede").Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var result []*models.Site
	return result, cur.All(ctx, &result)
}

// ------------------------ Vehicles ------------------------

type MongoVehicleRepo struct {
	DB *mongo.Database
}

func NewMongoVehicleRepo(db *mongo.Database) *MongoVehicleRepo {
	return &MongoVehicleRepo{DB: db}
}

func (r *MongoVehicleRepo) SaveVehicle(v *models.Vehicle) error {
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	return upsertByKey(r.DB, "vehiculo", bson.M{"placa": v.Plate}, &v.ID, &v.CreatedAt, v)
}

func (r *MongoVehicleRepo) GetVehicleByPlate(plate string) (*models.Vehicle, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	var v models.Vehicle
	ok, err := findOne(ctx, r.DB.Collection("vehiculo"),
		bson.M{"placa": strings.ToUpper(strings.TrimSpace(plate))}, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func (r *MongoVehicleRepo) ListVehicles() ([]*models.Vehicle, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	cur, err := r.DB.Collection("vehiculo").Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "placa", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var result []*models.Vehicle
	return result, cur.All(ctx, &result)
}

// ------------------------ Parties ------------------------

type MongoPartyRepo struct {
	DB *mongo.Database
}

func NewMongoPartyRepo(db *mongo.Database) *MongoPartyRepo {
	return &MongoPartyRepo{DB: db}
}

func (r *MongoPartyRepo) SaveParty(p *models.Party) error {
	p.DocNumber = strings.TrimSpace(p.DocNumber)
	return upsertByKey(r.DB, "tercero",
		bson.M{"tipo_documento": p.DocType, "numero_documento": p.DocNumber}, &p.ID, &p.CreatedAt, p)
}

func (r *MongoPartyRepo) GetPartyByDocument(number string) (*models.Party, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	var p models.Party
	ok, err := findOne(ctx, r.DB.Collection("tercero"),
		bson.M{"numero_documento": strings.TrimSpace(number)}, &p,
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (r *MongoPartyRepo) ListParties() ([]*models.Party, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	cur, err := r.DB.Collection("tercero").Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var result []*models.Party
	return result, cur.All(ctx, &result)
}
