// README: Tariff resolution tests (company override, global fallback, upsert).
package tariff

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"viax/internal/types"
)

func TestResolveGlobalFallback(t *testing.T) {
	svc := NewService(setupTestStore(t), nil, 0)
	ctx := context.Background()

	global := testConfig("", "moto")
	global.BaseFare = 4500
	if err := svc.Upsert(ctx, &global); err != nil {
		t.Fatalf("upsert global: %v", err)
	}

	companyID := types.ID("co_fallback")
	cfg, err := svc.Resolve(ctx, &companyID, "moto")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !cfg.Global() {
		t.Fatal("expected the global row when the company has no override")
	}
	if cfg.BaseFare != 4500 {
		t.Errorf("base fare = %v, want 4500", cfg.BaseFare)
	}
}

func TestResolveCompanyOverrideWins(t *testing.T) {
	svc := NewService(setupTestStore(t), nil, 0)
	ctx := context.Background()

	global := testConfig("", "moto")
	global.BaseFare = 4500
	if err := svc.Upsert(ctx, &global); err != nil {
		t.Fatalf("upsert global: %v", err)
	}
	override := testConfig("co_override", "moto")
	override.BaseFare = 6000
	if err := svc.Upsert(ctx, &override); err != nil {
		t.Fatalf("upsert override: %v", err)
	}

	companyID := types.ID("co_override")
	cfg, err := svc.Resolve(ctx, &companyID, "moto")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Global() {
		t.Fatal("expected company override to win over the global row")
	}
	if cfg.BaseFare != 6000 {
		t.Errorf("base fare = %v, want 6000", cfg.BaseFare)
	}

	// Another company still gets the global row.
	otherID := types.ID("co_other")
	cfg, err = svc.Resolve(ctx, &otherID, "moto")
	if err != nil {
		t.Fatalf("resolve other: %v", err)
	}
	if !cfg.Global() || cfg.BaseFare != 4500 {
		t.Errorf("expected global row for other company, got base %v global %v", cfg.BaseFare, cfg.Global())
	}
}

func TestResolveInactiveOverrideIgnored(t *testing.T) {
	svc := NewService(setupTestStore(t), nil, 0)
	ctx := context.Background()

	global := testConfig("", "moto")
	global.BaseFare = 4500
	if err := svc.Upsert(ctx, &global); err != nil {
		t.Fatalf("upsert global: %v", err)
	}
	override := testConfig("co_inactive", "moto")
	override.BaseFare = 6000
	override.Active = false
	if err := svc.Upsert(ctx, &override); err != nil {
		t.Fatalf("upsert inactive override: %v", err)
	}

	companyID := types.ID("co_inactive")
	cfg, err := svc.Resolve(ctx, &companyID, "moto")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !cfg.Global() {
		t.Fatal("inactive override must not shadow the global row")
	}
}

func TestResolveNoTariff(t *testing.T) {
	svc := NewService(setupTestStore(t), nil, 0)

	_, err := svc.Resolve(context.Background(), nil, "helicopter")
	if err != ErrNoTariff {
		t.Fatalf("expected ErrNoTariff, got %v", err)
	}
}

func TestUpsertReplacesRow(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store, nil, 0)
	ctx := context.Background()

	first := testConfig("co_upsert", "moto")
	first.BaseFare = 5000
	if err := svc.Upsert(ctx, &first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := testConfig("co_upsert", "moto")
	second.BaseFare = 5500
	if err := svc.Upsert(ctx, &second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected upsert to reuse row %d, got %d", first.ID, second.ID)
	}

	companyID := types.ID("co_upsert")
	cfg, err := svc.Resolve(ctx, &companyID, "moto")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.BaseFare != 5500 {
		t.Errorf("base fare = %v, want 5500", cfg.BaseFare)
	}
}

func TestListForCompanyMergedView(t *testing.T) {
	svc := NewService(setupTestStore(t), nil, 0)
	ctx := context.Background()

	for _, vt := range []string{"moto", "carro"} {
		global := testConfig("", vt)
		global.BaseFare = 4000
		if err := svc.Upsert(ctx, &global); err != nil {
			t.Fatalf("upsert global %s: %v", vt, err)
		}
	}
	override := testConfig("co_list", "moto")
	override.BaseFare = 7000
	if err := svc.Upsert(ctx, &override); err != nil {
		t.Fatalf("upsert override: %v", err)
	}

	configs, err := svc.ListForCompany(ctx, "co_list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 merged rows, got %d", len(configs))
	}
	byType := map[string]Config{}
	for _, cfg := range configs {
		byType[cfg.VehicleType] = cfg
	}
	if cfg := byType["moto"]; cfg.Global() || cfg.BaseFare != 7000 {
		t.Errorf("moto: expected company override with base 7000, got base %v global %v", cfg.BaseFare, cfg.Global())
	}
	if cfg := byType["carro"]; !cfg.Global() || cfg.BaseFare != 4000 {
		t.Errorf("carro: expected global row with base 4000, got base %v global %v", cfg.BaseFare, cfg.Global())
	}
}

func TestCacheFollowsGlobalUpdate(t *testing.T) {
	rdb := testRedis(t)
	svc := NewService(setupTestStore(t), rdb, time.Minute)
	ctx := context.Background()
	companyID := types.ID("co_cache")

	global := testConfig("", "moto")
	global.BaseFare = 4500
	if err := svc.Upsert(ctx, &global); err != nil {
		t.Fatalf("upsert global: %v", err)
	}

	// Fallback hit, now cached.
	cfg, err := svc.Resolve(ctx, &companyID, "moto")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.BaseFare != 4500 {
		t.Fatalf("base fare = %v, want 4500", cfg.BaseFare)
	}

	// Updating the global row must be visible to companies that were falling
	// back to it, not hidden behind a company-keyed cache entry.
	global.BaseFare = 5200
	if err := svc.Upsert(ctx, &global); err != nil {
		t.Fatalf("update global: %v", err)
	}
	cfg, err = svc.Resolve(ctx, &companyID, "moto")
	if err != nil {
		t.Fatalf("resolve after update: %v", err)
	}
	if cfg.BaseFare != 5200 {
		t.Errorf("base fare = %v, want 5200 after global update", cfg.BaseFare)
	}

	// A new override takes effect immediately despite the cached global entry.
	override := testConfig("co_cache", "moto")
	override.BaseFare = 7000
	if err := svc.Upsert(ctx, &override); err != nil {
		t.Fatalf("upsert override: %v", err)
	}
	cfg, err = svc.Resolve(ctx, &companyID, "moto")
	if err != nil {
		t.Fatalf("resolve after override: %v", err)
	}
	if cfg.Global() || cfg.BaseFare != 7000 {
		t.Errorf("expected the new override (7000), got base %v global %v", cfg.BaseFare, cfg.Global())
	}
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("VIAX_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("VIAX_TEST_REDIS_ADDR not set; skipping redis-backed tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	companyID := types.ID("co_cache")
	keys := []string{cacheKey(nil, "moto"), cacheKey(&companyID, "moto")}
	if err := rdb.Del(context.Background(), keys...).Err(); err != nil {
		t.Fatalf("clear cache keys: %v", err)
	}
	return rdb
}

func testConfig(companyID, vehicleType string) Config {
	cfg := Config{
		VehicleType:             vehicleType,
		BaseFare:                4500,
		CostPerKm:               1200,
		CostPerMin:              100,
		MinFare:                 5000,
		PlatformCommissionPct:   20,
		PeakSurchargePct:        15,
		MorningPeakStart:        "06:00:00",
		MorningPeakEnd:          "09:00:00",
		EveningPeakStart:        "17:00:00",
		EveningPeakEnd:          "20:00:00",
		NightSurchargePct:       10,
		NightStart:              "22:00:00",
		NightEnd:                "05:00:00",
		LongDistanceThresholdKm: 25,
		LongDistanceDiscountPct: 10,
		Active:                  true,
	}
	if companyID != "" {
		id := types.ID(companyID)
		cfg.CompanyID = &id
	}
	return cfg
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("VIAX_TEST_DSN")
	if dsn == "" {
		t.Skip("VIAX_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	if _, err := db.Exec(ctx, "TRUNCATE TABLE tariff_configs"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
