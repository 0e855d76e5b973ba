package repository

import (
	"fmt"
	"time"

	"despachos/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func patchDoc(patch models.SubmissionPatch, extra bool) bson.M {
	set := bson.M{"estado": patch.Status, "updated_at": time.Now().UTC()}
	add := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	add("xml_enviado", patch.LastXML)
	add("respuesta", patch.LastResponse)
	add("mensaje", patch.Message)
	if extra {
		add("ingreso_id", patch.IngresoID)
		add("codigo_seguridad", patch.SecurityCode)
	}
	if patch.LoadedQuantity != nil {
		set["cantidad_cargada"] = *patch.LoadedQuantity
	}
	return bson.M{"$set": set}
}

func filterDoc(filters map[string]interface{}, allowed map[string]bool) (bson.M, error) {
	f := bson.M{}
	for k, v := range filters {
		if !allowed[k] {
			return nil, fmt.Errorf("unsupported filter %q", k)
		}
		f[k] = v
	}
	return f, nil
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// ------------------------ Cargo orders ------------------------

type MongoCargoOrderRepo struct {
	DB *mongo.Database
}

func NewMongoCargoOrderRepo(db *mongo.Database) *MongoCargoOrderRepo {
	return &MongoCargoOrderRepo{DB: db}
}

func (r *MongoCargoOrderRepo) CreateCargoOrder(o *models.CargoOrder) error {
	ctx, cancel := mongoCtx()
	defer cancel()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	id, err := nextID(ctx, r.DB, "remesa")
	if err != nil {
		return err
	}
	o.ID = id
	_, err = r.DB.Collection("remesa").InsertOne(ctx, o)
	return err
}

func (r *MongoCargoOrderRepo) UpdateCargoOrder(id int64, patch models.SubmissionPatch) error {
	ctx, cancel := mongoCtx()
	defer cancel()

	res, err := r.DB.Collection("remesa").UpdateByID(ctx, id, patchDoc(patch, false))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cargo order %d not found", id)
	}
	return nil
}

func (r *MongoCargoOrderRepo) GetCargoOrderByConsecutive(consecutive string) (*models.CargoOrder, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	var o models.CargoOrder
	ok, err := findOne(ctx, r.DB.Collection("remesa"), bson.M{"consecutivo": consecutive}, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func (r *MongoCargoOrderRepo) ListCargoOrders(filters map[string]interface{}) ([]*models.CargoOrder, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	f, err := filterDoc(filters, cargoOrderFilterCols)
	if err != nil {
		return nil, err
	}
	cur, err := r.DB.Collection("remesa").Find(ctx, f, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var result []*models.CargoOrder
	return result, cur.All(ctx, &result)
}

// ------------------------ Manifests ------------------------

type MongoManifestRepo struct {
	DB *mongo.Database
}

func NewMongoManifestRepo(db *mongo.Database) *MongoManifestRepo {
	return &MongoManifestRepo{DB: db}
}

func (r *MongoManifestRepo) CreateManifest(m *models.Manifest) error {
	ctx, cancel := mongoCtx()
	defer cancel()
	coll := r.DB.Collection("manifiesto")

	// Mirrors the unique constraint on numero in the relational schema.
	var existing models.Manifest
	found, err := findOne(ctx, coll, bson.M{"numero": m.Number}, &existing)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("manifest %s already exists", m.Number)
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	id, err := nextID(ctx, r.DB, "manifiesto")
	if err != nil {
		return err
	}
	m.ID = id
	_, err = coll.InsertOne(ctx, m)
	return err
}

func (r *MongoManifestRepo) UpdateManifest(id int64, patch models.SubmissionPatch) error {
	ctx, cancel := mongoCtx()
	defer cancel()

	res, err := r.DB.Collection("manifiesto").UpdateByID(ctx, id, patchDoc(patch, true))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("manifest %d not found", id)
	}
	return nil
}

func (r *MongoManifestRepo) GetManifestByNumber(number string) (*models.Manifest, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	var m models.Manifest
	ok, err := findOne(ctx, r.DB.Collection("manifiesto"), bson.M{"numero": number}, &m)
	if err != nil || !ok {
		return nil, err
	}
	return &m, nil
}

func (r *MongoManifestRepo) ListManifests(filters map[string]interface{}) ([]*models.Manifest, error) {
	ctx, cancel := mongoCtx()
	defer cancel()

	f, err := filterDoc(filters, manifestFilterCols)
	if err != nil {
		return nil, err
	}
	cur, err := r.DB.Collection("manifiesto").Find(ctx, f, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var result []*models.Manifest
	return result, cur.All(ctx, &result)
}

func (r *MongoManifestRepo) UpdatePDFInfo(id int64, path string, createdAt time.Time) error {
	ctx, cancel := mongoCtx()
	defer cancel()

	_, err := r.DB.Collection("manifiesto").UpdateByID(ctx, id,
		bson.M{"$set": bson.M{"pdf_path": path, "pdf_created_at": createdAt}})
	return err
}
