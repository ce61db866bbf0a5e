package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-store-api/internal/domain"
)

// newTestDB opens a throwaway in-memory database. The DSN is keyed by the
// test name so parallel packages never share cache state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:optsdb_%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGetOption_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := GetOption(context.Background(), db, "missing")
	if !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("err = %v, want ErrOptionNotFound", err)
	}
}

func TestSetOption_InsertAndUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := SetOption(ctx, db, "store_name", "First"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if v, err := GetOption(ctx, db, "store_name"); err != nil || v != "First" {
		t.Fatalf("after insert: %q, %v", v, err)
	}

	if err := SetOption(ctx, db, "store_name", "Second"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if v, _ := GetOption(ctx, db, "store_name"); v != "Second" {
		t.Fatalf("after update: %q", v)
	}

	// The upsert must not have created a duplicate row.
	var count int64
	if err := db.Model(&domain.Option{}).Where("name = ?", "store_name").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}
}

func TestSeedDefaults_NeverOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := SetOption(ctx, db, "currency", "EUR"); err != nil {
		t.Fatalf("set: %v", err)
	}

	defaults := map[string]string{
		"currency":   "USD",
		"store_name": "Seeded Store",
	}
	if err := SeedDefaults(ctx, db, defaults); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if v, _ := GetOption(ctx, db, "currency"); v != "EUR" {
		t.Fatalf("currency = %q, operator value was overwritten", v)
	}
	if v, _ := GetOption(ctx, db, "store_name"); v != "Seeded Store" {
		t.Fatalf("store_name = %q", v)
	}

	// Seeding again is a no-op.
	if err := SeedDefaults(ctx, db, defaults); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	var count int64
	if err := db.Model(&domain.Option{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("rows = %d, want 2", count)
	}
}

func TestListOptions_OrderAndPaging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"charlie", "alpha", "bravo", "delta"} {
		if err := SetOption(ctx, db, name, "v"); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	opts, total, err := ListOptions(ctx, db, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 || len(opts) != 4 {
		t.Fatalf("total=%d len=%d", total, len(opts))
	}
	for i, want := range []string{"alpha", "bravo", "charlie", "delta"} {
		if opts[i].Name != want {
			t.Fatalf("opts[%d] = %q, want %q", i, opts[i].Name, want)
		}
	}

	// A window in the middle still reports the full total.
	opts, total, err = ListOptions(ctx, db, 1, 2)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if total != 4 || len(opts) != 2 || opts[0].Name != "bravo" || opts[1].Name != "charlie" {
		t.Fatalf("page: total=%d opts=%+v", total, opts)
	}
}

func TestLoadStoreProfile_FallbackMerging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	fallback := domain.StoreProfile{
		Name:       "Default Store",
		URL:        "https://default.example.com",
		Timezone:   "UTC",
		Currency:   "USD",
		WeightUnit: "kg",
		APIEnabled: true,
	}

	// Empty table: the fallback comes back untouched.
	p, err := LoadStoreProfile(ctx, db, fallback)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if p != fallback {
		t.Fatalf("profile = %+v, want fallback", p)
	}

	// Stored rows win over the fallback, field by field.
	for name, value := range map[string]string{
		domain.OptStoreName: "Stored Store",
		domain.OptCurrency:  "EUR",
		domain.OptTimezone:  "Europe/Athens",
	} {
		if err := SetOption(ctx, db, name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	p, err = LoadStoreProfile(ctx, db, fallback)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "Stored Store" || p.Currency != "EUR" || p.Timezone != "Europe/Athens" {
		t.Fatalf("profile = %+v", p)
	}
	// Options without rows keep their fallback values.
	if p.URL != fallback.URL || p.WeightUnit != "kg" || !p.APIEnabled {
		t.Fatalf("fallback fields clobbered: %+v", p)
	}
}

func TestLoadStoreProfile_BoolParsing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	fallback := domain.StoreProfile{Name: "s", URL: "https://s.example.com", APIEnabled: true}

	for value, want := range map[string]bool{
		"1":     true,
		"yes":   true,
		"TRUE":  true,
		"on":    true,
		"0":     false,
		"no":    false,
		"false": false,
		"":      false,
	} {
		if err := SetOption(ctx, db, domain.OptTaxIncluded, value); err != nil {
			t.Fatalf("set %q: %v", value, err)
		}
		p, err := LoadStoreProfile(ctx, db, fallback)
		if err != nil {
			t.Fatalf("load %q: %v", value, err)
		}
		if p.TaxIncluded != want {
			t.Fatalf("value %q parsed to %v, want %v", value, p.TaxIncluded, want)
		}
	}
}

func TestOpenSQLite_FileAndMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := SetOption(context.Background(), db, "k", "v"); err != nil {
		t.Fatalf("write through traced db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	if _, err := OpenSQLite(filepath.Join(t.TempDir(), "nope", "store.db")); err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}
