// README: Tariff store backed by PostgreSQL.
package tariff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viax/internal/types"
)

var ErrNoTariff = errors.New("no tariff configured for vehicle type")

const configColumns = `
	id, company_id, vehicle_type,
	base_fare, cost_per_km, cost_per_min, min_fare, max_fare,
	platform_commission_pct,
	peak_surcharge_pct, morning_peak_start, morning_peak_end,
	evening_peak_start, evening_peak_end,
	night_surcharge_pct, night_start, night_end,
	long_distance_threshold_km, long_distance_discount_pct,
	active`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Resolve returns the active config for (companyID, vehicleType), preferring a
// company override and falling back to the global row. ErrNoTariff if neither exists.
func (s *Store) Resolve(ctx context.Context, companyID *types.ID, vehicleType string) (Config, error) {
	if companyID != nil {
		cfg, err := s.queryOne(ctx, `
			SELECT `+configColumns+`
			FROM tariff_configs
			WHERE company_id = $1 AND vehicle_type = $2 AND active
			LIMIT 1`, string(*companyID), vehicleType)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return Config{}, err
		}
	}
	cfg, err := s.queryOne(ctx, `
		SELECT `+configColumns+`
		FROM tariff_configs
		WHERE company_id IS NULL AND vehicle_type = $1 AND active
		LIMIT 1`, vehicleType)
	if errors.Is(err, pgx.ErrNoRows) {
		return Config{}, ErrNoTariff
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ListForCompany returns the global rows merged with the company's overrides,
// override winning per vehicle type.
func (s *Store) ListForCompany(ctx context.Context, companyID types.ID) ([]Config, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (vehicle_type) `+configColumns+`
		FROM tariff_configs
		WHERE (company_id = $1 OR company_id IS NULL) AND active
		ORDER BY vehicle_type, company_id NULLS LAST`, string(companyID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Config
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces the active row for (company, vehicle type).
func (s *Store) Upsert(ctx context.Context, cfg *Config) error {
	var companyID *string
	conflict := `(vehicle_type) WHERE company_id IS NULL`
	if cfg.CompanyID != nil {
		v := string(*cfg.CompanyID)
		companyID = &v
		conflict = `(company_id, vehicle_type) WHERE company_id IS NOT NULL`
	}
	return s.db.QueryRow(ctx, `
		INSERT INTO tariff_configs (
			company_id, vehicle_type,
			base_fare, cost_per_km, cost_per_min, min_fare, max_fare,
			platform_commission_pct,
			peak_surcharge_pct, morning_peak_start, morning_peak_end,
			evening_peak_start, evening_peak_end,
			night_surcharge_pct, night_start, night_end,
			long_distance_threshold_km, long_distance_discount_pct,
			active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		ON CONFLICT `+conflict+` DO UPDATE SET
			base_fare = EXCLUDED.base_fare,
			cost_per_km = EXCLUDED.cost_per_km,
			cost_per_min = EXCLUDED.cost_per_min,
			min_fare = EXCLUDED.min_fare,
			max_fare = EXCLUDED.max_fare,
			platform_commission_pct = EXCLUDED.platform_commission_pct,
			peak_surcharge_pct = EXCLUDED.peak_surcharge_pct,
			morning_peak_start = EXCLUDED.morning_peak_start,
			morning_peak_end = EXCLUDED.morning_peak_end,
			evening_peak_start = EXCLUDED.evening_peak_start,
			evening_peak_end = EXCLUDED.evening_peak_end,
			night_surcharge_pct = EXCLUDED.night_surcharge_pct,
			night_start = EXCLUDED.night_start,
			night_end = EXCLUDED.night_end,
			long_distance_threshold_km = EXCLUDED.long_distance_threshold_km,
			long_distance_discount_pct = EXCLUDED.long_distance_discount_pct,
			active = EXCLUDED.active
		RETURNING id`,
		companyID, cfg.VehicleType,
		cfg.BaseFare, cfg.CostPerKm, cfg.CostPerMin, cfg.MinFare, cfg.MaxFare,
		cfg.PlatformCommissionPct,
		cfg.PeakSurchargePct, cfg.MorningPeakStart, cfg.MorningPeakEnd,
		cfg.EveningPeakStart, cfg.EveningPeakEnd,
		cfg.NightSurchargePct, cfg.NightStart, cfg.NightEnd,
		cfg.LongDistanceThresholdKm, cfg.LongDistanceDiscountPct,
		cfg.Active,
	).Scan(&cfg.ID)
}

func (s *Store) queryOne(ctx context.Context, sql string, args ...any) (Config, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return Config{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Config{}, err
		}
		return Config{}, pgx.ErrNoRows
	}
	return scanConfig(rows)
}

func scanConfig(row pgx.Row) (Config, error) {
	var (
		cfg       Config
		companyID *string
	)
	err := row.Scan(
		&cfg.ID, &companyID, &cfg.VehicleType,
		&cfg.BaseFare, &cfg.CostPerKm, &cfg.CostPerMin, &cfg.MinFare, &cfg.MaxFare,
		&cfg.PlatformCommissionPct,
		&cfg.PeakSurchargePct, &cfg.MorningPeakStart, &cfg.MorningPeakEnd,
		&cfg.EveningPeakStart, &cfg.EveningPeakEnd,
		&cfg.NightSurchargePct, &cfg.NightStart, &cfg.NightEnd,
		&cfg.LongDistanceThresholdKm, &cfg.LongDistanceDiscountPct,
		&cfg.Active,
	)
	if err != nil {
		return Config{}, err
	}
	if companyID != nil {
		id := types.ID(*companyID)
		cfg.CompanyID = &id
	}
	return cfg, nil
}
