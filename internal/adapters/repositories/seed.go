package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"os"
	"strings"
	"time"
)

// Seed file layout shared by the Postgres seeder and offline runs.
type SeedFile struct {
	Cities []CitySeed `json:"cities"`
	Rates  []RateSeed `json:"rates"`
	Lanes  []LaneSeed `json:"lanes"`
}

type CitySeed struct {
	City          string   `json:"city"`
	State         string   `json:"state"`
	Zip           string   `json:"zip"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	MarketArea    string   `json:"market_area"`
	Population    int      `json:"population"`
	Hot           bool     `json:"hot"`
	EquipmentBias []string `json:"equipment_bias"`
}

type RateSeed struct {
	Equipment   string             `json:"equipment"`
	Level       string             `json:"level"`
	EffectiveAt time.Time          `json:"effective_at"`
	Rates       map[string]float64 `json:"rates"`
}

type LaneSeed struct {
	ID              string `json:"id"`
	OrganizationID  string `json:"organization_id"`
	OriginCity      string `json:"origin_city"`
	OriginState     string `json:"origin_state"`
	OriginZip       string `json:"origin_zip"`
	DestCity        string `json:"dest_city"`
	DestState       string `json:"dest_state"`
	DestZip         string `json:"dest_zip"`
	Equipment       string `json:"equipment"`
	RandomizeWeight bool   `json:"randomize_weight"`
	WeightLbs       int    `json:"weight_lbs"`
	WeightMin       int    `json:"weight_min"`
	WeightMax       int    `json:"weight_max"`
	LengthFt        int    `json:"length_ft"`
	FullPartial     string `json:"full_partial"`
	PickupEarliest  string `json:"pickup_earliest"`
	PickupLatest    string `json:"pickup_latest"`
	Commodity       string `json:"commodity"`
	Comment         string `json:"comment"`
}

// Seed is a parsed seed file.
type Seed struct {
	Cities []domain.City
	Rates  []*domain.RateMatrix
	Lanes  []domain.Lane
}

const seedDateLayout = "2006-01-02"

// LoadSeed reads and checks a seed file.
func LoadSeed(jsonPath string) (*Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}

	seed := &Seed{
		Cities: make([]domain.City, 0, len(data.Cities)),
		Rates:  make([]*domain.RateMatrix, 0, len(data.Rates)),
		Lanes:  make([]domain.Lane, 0, len(data.Lanes)),
	}

	for i, c := range data.Cities {
		city := strings.TrimSpace(c.City)
		state := strings.ToUpper(strings.TrimSpace(c.State))
		if city == "" || state == "" {
			return nil, fmt.Errorf("load seed: city at index %d: city and state are required", i+1)
		}
		coords := domain.Coordinates{Lon: c.Lon, Lat: c.Lat}
		if coords.IsZero() {
			return nil, fmt.Errorf("load seed: city %s, %s: coordinates are required", city, state)
		}
		seed.Cities = append(seed.Cities, domain.City{
			City:          city,
			State:         state,
			Zip:           strings.TrimSpace(c.Zip),
			Coords:        coords,
			MarketArea:    strings.TrimSpace(c.MarketArea),
			Population:    c.Population,
			Hot:           c.Hot,
			EquipmentBias: c.EquipmentBias,
		})
	}

	for i, r := range data.Rates {
		level := strings.ToLower(strings.TrimSpace(r.Level))
		if level != domain.RateLevelSpot && level != domain.RateLevelContract {
			return nil, fmt.Errorf("load seed: rate matrix at index %d: unknown level %q", i+1, r.Level)
		}
		seed.Rates = append(seed.Rates, &domain.RateMatrix{
			Equipment:   strings.ToUpper(strings.TrimSpace(r.Equipment)),
			Level:       level,
			EffectiveAt: r.EffectiveAt,
			Rates:       r.Rates,
		})
	}

	for i, l := range data.Lanes {
		lane, err := l.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("load seed: lane at index %d: %w", i+1, err)
		}
		seed.Lanes = append(seed.Lanes, lane)
	}

	return seed, nil
}

// ToDomain converts a seeded lane; dates use YYYY-MM-DD.
func (l LaneSeed) ToDomain() (domain.Lane, error) {
	if strings.TrimSpace(l.ID) == "" {
		return domain.Lane{}, errors.New("id is required")
	}
	earliest, err := time.Parse(seedDateLayout, l.PickupEarliest)
	if err != nil {
		return domain.Lane{}, fmt.Errorf("lane %s: pickup_earliest: %w", l.ID, err)
	}
	var latest time.Time
	if l.PickupLatest != "" {
		if latest, err = time.Parse(seedDateLayout, l.PickupLatest); err != nil {
			return domain.Lane{}, fmt.Errorf("lane %s: pickup_latest: %w", l.ID, err)
		}
	}

	return domain.Lane{
		ID:             l.ID,
		OrganizationID: l.OrganizationID,
		Origin:         domain.Place{City: l.OriginCity, State: l.OriginState, Zip: l.OriginZip},
		Destination:    domain.Place{City: l.DestCity, State: l.DestState, Zip: l.DestZip},
		Equipment:      l.Equipment,
		Weight: domain.WeightSpec{
			Randomize: l.RandomizeWeight,
			Fixed:     l.WeightLbs,
			Min:       l.WeightMin,
			Max:       l.WeightMax,
		},
		LengthFt:       l.LengthFt,
		FullPartial:    l.FullPartial,
		PickupEarliest: earliest,
		PickupLatest:   latest,
		Commodity:      l.Commodity,
		Comment:        l.Comment,
		Status:         domain.LaneStatusPending,
	}, nil
}

// Populate the database with a seed file in a single transaction.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	seed, err := LoadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed database: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := seedCities(ctx, tx, seed.Cities); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	if err := seedRates(ctx, tx, seed.Rates); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	if err := seedLanes(ctx, tx, seed.Lanes); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed database: commit tx: %w", err)
	}

	return nil
}

func seedCities(ctx context.Context, tx *sql.Tx, cities []domain.City) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO cities (
		city_key, city, state, zip, lat, lon, market_area, population, hot, equipment_bias
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (city_key) DO UPDATE
	SET zip = EXCLUDED.zip,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		market_area = EXCLUDED.market_area,
		population = EXCLUDED.population,
		hot = EXCLUDED.hot,
		equipment_bias = EXCLUDED.equipment_bias;
	`)
	if err != nil {
		return fmt.Errorf("prepare city insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cities {
		bias := c.EquipmentBias
		if bias == nil {
			bias = []string{}
		}
		if _, err := stmt.ExecContext(ctx,
			c.Key(), c.City, c.State, c.Zip, c.Coords.Lat, c.Coords.Lon,
			c.MarketArea, c.Population, c.Hot, bias,
		); err != nil {
			return fmt.Errorf("insert city %s: %w", c.Key(), err)
		}
	}
	return nil
}

func seedRates(ctx context.Context, tx *sql.Tx, matrices []*domain.RateMatrix) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO rate_matrices (equipment, level, effective_at, rates)
	VALUES ($1, $2, $3, $4::jsonb)
	ON CONFLICT (equipment, level, effective_at) DO UPDATE
	SET rates = EXCLUDED.rates;
	`)
	if err != nil {
		return fmt.Errorf("prepare rate insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matrices {
		payload, err := json.Marshal(m.Rates)
		if err != nil {
			return fmt.Errorf("encode rates %s/%s: %w", m.Equipment, m.Level, err)
		}
		if _, err := stmt.ExecContext(ctx, m.Equipment, m.Level, m.EffectiveAt, string(payload)); err != nil {
			return fmt.Errorf("insert rates %s/%s: %w", m.Equipment, m.Level, err)
		}
	}
	return nil
}

func seedLanes(ctx context.Context, tx *sql.Tx, lanes []domain.Lane) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO lanes (
		id, organization_id,
		origin_city, origin_state, origin_zip,
		dest_city, dest_state, dest_zip,
		equipment, weight_randomize, weight_lbs, weight_min, weight_max,
		length_ft, full_partial, pickup_earliest, pickup_latest,
		commodity, comment
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		return fmt.Errorf("prepare lane insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range lanes {
		var latest sql.NullTime
		if !l.PickupLatest.IsZero() {
			latest = sql.NullTime{Time: l.PickupLatest, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.OrganizationID,
			l.Origin.City, l.Origin.State, l.Origin.Zip,
			l.Destination.City, l.Destination.State, l.Destination.Zip,
			l.Equipment, l.Weight.Randomize, l.Weight.Fixed, l.Weight.Min, l.Weight.Max,
			l.LengthFt, l.FullPartial, l.PickupEarliest, latest,
			l.Commodity, l.Comment,
		); err != nil {
			return fmt.Errorf("insert lane %s: %w", l.ID, err)
		}
	}
	return nil
}
