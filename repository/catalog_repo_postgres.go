package repository

import (
	"database/sql"
	"strings"
	"time"

	"despachos/models"
)

// ------------------------ Sites ------------------------

type PostgresSiteRepo struct {
	DB *sql.DB
}

func NewPostgresSiteRepo(db *sql.DB) *PostgresSiteRepo {
	return &PostgresSiteRepo{DB: db}
}

// SaveSite upserts a site by code.
func (r *PostgresSiteRepo) SaveSite(s *models.Site) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return r.DB.QueryRow(`
		INSERT INTO sede(codigo, nombre, municipio_codigo, tarifa_tonelada,
			tercero_tipo_documento, tercero_numero_documento, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT(codigo) DO UPDATE SET
			nombre=EXCLUDED.nombre,
			municipio_codigo=EXCLUDED.municipio_codigo,
			tarifa_tonelada=EXCLUDED.tarifa_tonelada,
			tercero_tipo_documento=EXCLUDED.tercero_tipo_documento,
			tercero_numero_documento=EXCLUDED.tercero_numero_documento
		RETURNING id
	`, s.Code, strings.TrimSpace(s.Name), s.MunicipalityCode, s.RatePerTonne,
		s.PartyDocType, s.PartyDocNumber, s.CreatedAt).Scan(&s.ID)
}

const siteSelectCols = `id, codigo, nombre, municipio_codigo, tarifa_tonelada, tercero_tipo_documento, tercero_numero_documento, created_at`

func scanSite(row interface{ Scan(...any) error }) (*models.Site, error) {
	s := &models.Site{}
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.MunicipalityCode, &s.RatePerTonne,
		&s.PartyDocType, &s.PartyDocNumber, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSiteByName matches names case-insensitively, ignoring surrounding
// spaces, the way spreadsheet PLANTA/GRANJA columns are typed.
func (r *PostgresSiteRepo) GetSiteByName(name string) (*models.Site, error) {
	return scanSite(r.DB.QueryRow(`
		SELECT `+siteSelectCols+` FROM sede
		WHERE UPPER(TRIM(nombre)) = UPPER(TRIM($1))
		ORDER BY id LIMIT 1
	`, name))
}

func (r *PostgresSiteRepo) GetSiteByCode(code string) (*models.Site, error) {
	return scanSite(r.DB.QueryRow(`SELECT `+siteSelectCols+` FROM sede WHERE codigo=$1`, code))
}

func (r *PostgresSiteRepo) ListSites() ([]*models.Site, error) {
	rows, err := r.DB.Query(`SELECT ` + siteSelectCols + ` FROM sede ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ------------------------ Vehicles ------------------------

type PostgresVehicleRepo struct {
	DB *sql.DB
}

func NewPostgresVehicleRepo(db *sql.DB) *PostgresVehicleRepo {
	return &PostgresVehicleRepo{DB: db}
}

// SaveVehicle upserts a vehicle by plate.
func (r *PostgresVehicleRepo) SaveVehicle(v *models.Vehicle) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	return r.DB.QueryRow(`
		INSERT INTO vehiculo(placa, capacidad_carga,
			propietario_tipo_documento, propietario_numero_documento, propietario_nombre,
			tenedor_tipo_documento, tenedor_numero_documento, tenedor_nombre, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT(placa) DO UPDATE SET
			capacidad_carga=EXCLUDED.capacidad_carga,
			propietario_tipo_documento=EXCLUDED.propietario_tipo_documento,
			propietario_numero_documento=EXCLUDED.propietario_numero_documento,
			propietario_nombre=EXCLUDED.propietario_nombre,
			tenedor_tipo_documento=EXCLUDED.tenedor_tipo_documento,
			tenedor_numero_documento=EXCLUDED.tenedor_numero_documento,
			tenedor_nombre=EXCLUDED.tenedor_nombre
		RETURNING id
	`, v.Plate, v.CargoCapacity, v.OwnerDocType, v.OwnerDocNumber, v.OwnerName,
		v.HolderDocType, v.HolderDocNumber, v.HolderName, v.CreatedAt).Scan(&v.ID)
}

const vehicleSelectCols = `id, placa, capacidad_carga, propietario_tipo_documento, propietario_numero_documento, propietario_nombre, tenedor_tipo_documento, tenedor_numero_documento, tenedor_nombre, created_at`

func scanVehicle(row interface{ Scan(...any) error }) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	err := row.Scan(&v.ID, &v.Plate, &v.CargoCapacity, &v.OwnerDocType, &v.OwnerDocNumber, &v.OwnerName,
		&v.HolderDocType, &v.HolderDocNumber, &v.HolderName, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *PostgresVehicleRepo) GetVehicleByPlate(plate string) (*models.Vehicle, error) {
	return scanVehicle(r.DB.QueryRow(`SELECT `+vehicleSelectCols+` FROM vehiculo WHERE placa=$1`,
		strings.ToUpper(strings.TrimSpace(plate))))
}

func (r *PostgresVehicleRepo) ListVehicles() ([]*models.Vehicle, error) {
	rows, err := r.DB.Query(`SELECT ` + vehicleSelectCols + ` FROM vehiculo ORDER BY placa`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// ------------------------ Parties ------------------------

type PostgresPartyRepo struct {
	DB *sql.DB
}

func NewPostgresPartyRepo(db *sql.DB) *PostgresPartyRepo {
	return &PostgresPartyRepo{DB: db}
}

// SaveParty upserts a party by document type and number.
func (r *PostgresPartyRepo) SaveParty(p *models.Party) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return r.DB.QueryRow(`
		INSERT INTO tercero(tipo_documento, numero_documento, nombre, telefono, direccion,
			municipio_codigo, licencia, categoria_licencia, vencimiento_licencia, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT(tipo_documento, numero_documento) DO UPDATE SET
			nombre=EXCLUDED.nombre,
			telefono=EXCLUDED.telefono,
			direccion=EXCLUDED.direccion,
			municipio_codigo=EXCLUDED.municipio_codigo,
			licencia=EXCLUDED.licencia,
			categoria_licencia=EXCLUDED.categoria_licencia,
			vencimiento_licencia=EXCLUDED.vencimiento_licencia
		RETURNING id
	`, p.DocType, strings.TrimSpace(p.DocNumber), p.Name, p.Phone, p.Address,
		p.MunicipalityCode, p.License, p.LicenseCategory, p.LicenseExpiry, p.CreatedAt).Scan(&p.ID)
}

const partySelectCols = `id, tipo_documento, numero_documento, nombre, telefono, direccion, municipio_codigo, licencia, categoria_licencia, vencimiento_licencia, created_at`

func scanParty(row interface{ Scan(...any) error }) (*models.Party, error) {
	p := &models.Party{}
	err := row.Scan(&p.ID, &p.DocType, &p.DocNumber, &p.Name, &p.Phone, &p.Address,
		&p.MunicipalityCode, &p.License, &p.LicenseCategory, &p.LicenseExpiry, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresPartyRepo) GetPartyByDocument(number string) (*models.Party, error) {
	return scanParty(r.DB.QueryRow(`
		SELECT `+partySelectCols+` FROM tercero
		WHERE numero_documento=$1
		ORDER BY id LIMIT 1
	`, strings.TrimSpace(number)))
}

func (r *PostgresPartyRepo) ListParties() ([]*models.Party, error) {
	rows, err := r.DB.Query(`SELECT ` + partySelectCols + ` FROM tercero ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
