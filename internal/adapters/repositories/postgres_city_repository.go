package repositories

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/ports"
	"math"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"
)

// Postgres-backed implementation of the CityRepository port.
type PostgresCityRepository struct {
	DB    *sql.DB
	types *pgtype.Map
}

var _ ports.CityRepository = (*PostgresCityRepository)(nil)

func NewPostgresCityRepository(db *sql.DB) *PostgresCityRepository {
	return &PostgresCityRepository{DB: db, types: pgtype.NewMap()}
}

const cityColumns = `city, state, zip, lat, lon, market_area, population, hot, equipment_bias`

// Resolve a city by normalized name and state.
func (r *PostgresCityRepository) FindCityByNameState(ctx context.Context, city, state string) (domain.City, error) {
	if r.DB == nil {
		return domain.City{}, errors.New("postgres city repository: DB is nil")
	}

	query := `SELECT ` + cityColumns + ` FROM cities WHERE city_key = $1;`
	row := r.DB.QueryRowContext(ctx, query, domain.CityKey(city, state))

	c, err := r.scanCity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.City{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.City{}, fmt.Errorf("find city %s, %s: %w", city, state, err)
	}
	return c, nil
}

// Return cities within radiusMiles of coord, nearest first. A lat/lon box
// narrows the scan; the haversine distance decides membership.
func (r *PostgresCityRepository) FindCitiesNear(ctx context.Context, coord domain.Coordinates, radiusMiles float64) ([]domain.City, error) {
	if r.DB == nil {
		return nil, errors.New("postgres city repository: DB is nil")
	}

	const milesPerDegree = 69.0
	latDelta := radiusMiles / milesPerDegree
	lonDelta := 180.0
	if cosLat := math.Cos(coord.Lat * math.Pi / 180); cosLat > 1e-6 {
		lonDelta = math.Min(180, radiusMiles/(milesPerDegree*cosLat))
	}

	query := `
	SELECT ` + cityColumns + `
	FROM cities
	WHERE lat BETWEEN $1 AND $2
	  AND lon BETWEEN $3 AND $4
	ORDER BY city_key;
	`
	rows, err := r.DB.QueryContext(ctx, query,
		coord.Lat-latDelta, coord.Lat+latDelta,
		coord.Lon-lonDelta, coord.Lon+lonDelta,
	)
	if err != nil {
		return nil, fmt.Errorf("find cities near: query cities table: %w", err)
	}
	defer rows.Close()

	type hit struct {
		city domain.City
		dist float64
	}
	hits := make([]hit, 0, 64)
	for rows.Next() {
		c, err := r.scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("find cities near: scan row: %w", err)
		}
		if d := coord.MilesTo(c.Coords); d <= radiusMiles {
			hits = append(hits, hit{city: c, dist: d})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find cities near: row iteration: %w", err)
	}

	slices.SortStableFunc(hits, func(a, b hit) int { return cmp.Compare(a.dist, b.dist) })

	out := make([]domain.City, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.city)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresCityRepository) scanCity(row rowScanner) (domain.City, error) {
	var c domain.City
	var bias []string
	err := row.Scan(
		&c.City, &c.State, &c.Zip,
		&c.Coords.Lat, &c.Coords.Lon,
		&c.MarketArea, &c.Population, &c.Hot,
		r.types.SQLScanner(&bias),
	)
	if err != nil {
		return domain.City{}, err
	}
	c.EquipmentBias = bias
	return c, nil
}
