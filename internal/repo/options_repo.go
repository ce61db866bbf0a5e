// Package repo implements the persistence layer for site settings.
//
// This file provides the options store: flat key-value rows holding site
// configuration, plus the loader that materializes a domain.StoreProfile
// from them. Missing options fall back to the profile passed in, so a fresh
// database behaves exactly like the configured defaults until an operator
// changes a setting.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-store-api/internal/domain"
	"github.com/tbourn/go-store-api/internal/sysutil"
)

// ErrOptionNotFound indicates that the requested option has no stored row.
var ErrOptionNotFound = errors.New("option not found")

// GetOption returns the stored value for name.
func GetOption(ctx context.Context, db *gorm.DB, name string) (string, error) {
	var opt domain.Option
	err := db.WithContext(ctx).Where("name = ?", name).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrOptionNotFound
	}
	if err != nil {
		return "", err
	}
	return opt.Value, nil
}

// SetOption inserts or updates the stored value for name.
func SetOption(ctx context.Context, db *gorm.DB, name, value string) error {
	opt := domain.Option{Name: name, Value: value}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&opt).Error
}

// SeedDefaults inserts every option in defaults that has no stored row yet.
// Existing rows are never overwritten.
func SeedDefaults(ctx context.Context, db *gorm.DB, defaults map[string]string) error {
	for name, value := range defaults {
		opt := domain.Option{Name: name, Value: value}
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).
			Create(&opt).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ListOptions returns a page of stored options ordered by name, along with
// the total row count for pagination.
func ListOptions(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Option, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.Option{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var opts []domain.Option
	err := db.WithContext(ctx).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&opts).Error
	if err != nil {
		return nil, 0, err
	}
	return opts, total, nil
}

// LoadStoreProfile reads the store profile from the options table, using
// fallback for any option that has no stored row.
func LoadStoreProfile(ctx context.Context, db *gorm.DB, fallback domain.StoreProfile) (domain.StoreProfile, error) {
	p := fallback

	read := func(name string, dst *string) error {
		v, err := GetOption(ctx, db, name)
		if errors.Is(err, ErrOptionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	readBool := func(name string, dst *bool) error {
		v, err := GetOption(ctx, db, name)
		if errors.Is(err, ErrOptionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		*dst = sysutil.IsTruthy(v)
		return nil
	}

	for _, step := range []error{
		read(domain.OptStoreName, &p.Name),
		read(domain.OptStoreDescription, &p.Description),
		read(domain.OptStoreURL, &p.URL),
		read(domain.OptTimezone, &p.Timezone),
		read(domain.OptCurrency, &p.Currency),
		read(domain.OptWeightUnit, &p.WeightUnit),
		read(domain.OptDimensionUnit, &p.DimensionUnit),
		readBool(domain.OptTaxIncluded, &p.TaxIncluded),
		readBool(domain.OptSSLEnabled, &p.SSLEnabled),
		readBool(domain.OptPermalinksEnabled, &p.PermalinksEnabled),
		readBool(domain.OptAPIEnabled, &p.APIEnabled),
	} {
		if step != nil {
			return fallback, step
		}
	}

	return p, nil
}
