// Package domain defines the store-facing data model: the persisted Option
// rows that hold site settings, and the immutable StoreProfile value object
// the API engine is constructed with. The engine never reads ambient global
// state; everything it needs about the site arrives through a StoreProfile.
package domain

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/currency"
)

// Option is one persisted site setting, stored as a key-value row. The
// upstream platform keeps site configuration in exactly this shape, which is
// why the profile loader reads a flat options table rather than a dedicated
// settings schema.
type Option struct {
	ID        uint64    `json:"id"    gorm:"primaryKey"`
	Name      string    `json:"name"  gorm:"type:varchar(191);uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Option.
func (Option) TableName() string { return "options" }

// Option names the profile loader reads.
const (
	OptStoreName         = "store_name"
	OptStoreDescription  = "store_description"
	OptStoreURL          = "store_url"
	OptTimezone          = "timezone_string"
	OptCurrency          = "currency"
	OptWeightUnit        = "weight_unit"
	OptDimensionUnit     = "dimension_unit"
	OptTaxIncluded       = "prices_include_tax"
	OptSSLEnabled        = "force_ssl"
	OptPermalinksEnabled = "permalinks_enabled"
	OptAPIEnabled        = "api_enabled"
)

// StoreProfile is the explicit configuration value object handed to the
// Response Assembler and the self-description endpoint at construction time.
//
// Fields mirror what the self-description index exposes: store identity,
// version markers, currency and unit settings, and the transport flags that
// shape pagination links (scheme/host) and datetime conversion (timezone).
type StoreProfile struct {
	Name        string
	Description string
	URL         string

	// StoreVersion is the platform release marker; APIVersion is the current
	// major API generation marker (e.g. "v3").
	StoreVersion string
	APIVersion   string

	Timezone      string
	Currency      string
	WeightUnit    string
	DimensionUnit string

	TaxIncluded       bool
	SSLEnabled        bool
	PermalinksEnabled bool

	// APIEnabled is the administrative disable flag: when false, every API
	// request short-circuits with the disabled error before authentication.
	APIEnabled bool
}

// Validate checks the profile fields that other components rely on: a
// parseable store URL (pagination links force its scheme and host) and a
// valid ISO 4217 currency code.
func (p StoreProfile) Validate() error {
	if p.Name == "" {
		return errors.New("store name must not be empty")
	}
	u, err := url.Parse(p.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("store URL %q must be absolute", p.URL)
	}
	if _, err := currency.ParseISO(p.Currency); err != nil {
		return fmt.Errorf("invalid currency code %q: %w", p.Currency, err)
	}
	if _, err := p.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	return nil
}

// SchemeHost returns the configured scheme and host that outgoing links are
// forced to. An unparseable URL yields empty values; Validate rejects that
// profile up front.
func (p StoreProfile) SchemeHost() (scheme, host string) {
	u, err := url.Parse(p.URL)
	if err != nil {
		return "", ""
	}
	return u.Scheme, u.Host
}

// Location resolves the site's configured timezone. An empty timezone means
// UTC.
func (p StoreProfile) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(p.Timezone)
}
