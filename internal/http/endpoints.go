// This file registers the built-in endpoint families on the dispatch engine.
// Both API generations expose the same read-only infrastructure endpoints:
// site settings (backed by the options table) and the server clock. Resource
// endpoints for store data register through the same hooks from their own
// packages.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-store-api/internal/api"
	"github.com/tbourn/go-store-api/internal/domain"
	"github.com/tbourn/go-store-api/internal/repo"
	"github.com/tbourn/go-store-api/internal/utils"
)

// defaultPerPage bounds settings pages when the client does not ask.
const defaultPerPage = 10

// buildHooks assembles the engine hooks: the built-in endpoints are
// registered for both handler families so version negotiation is exercised
// end to end.
func buildHooks(db *gorm.DB, profile domain.StoreProfile) *api.Hooks {
	hooks := api.NewHooks()
	for _, family := range []api.Family{api.FamilyLegacy, api.FamilyCurrent} {
		hooks.RegisterRoutes(family, settingsRoutes(db))
		hooks.RegisterRoutes(family, timeRoutes(profile))
	}
	return hooks
}

// settingsRoutes appends the site-settings endpoints.
func settingsRoutes(db *gorm.DB) api.RouteFilter {
	return func(entries []api.RouteEntry) []api.RouteEntry {
		return append(entries,
			api.NewRoute("/settings",
				api.Bind(listSettings(db), api.Readable,
					api.Optional("page", "1"),
					api.Optional("per_page", ""),
				),
			),
			api.NewRoute(`/settings/(?P<name>[a-z0-9_]+)`,
				api.Bind(getSetting(db), api.Readable,
					api.Required("name"),
				),
			),
		)
	}
}

// listSettings returns one page of stored options with pagination headers.
func listSettings(db *gorm.DB) api.Handler {
	return func(args []any) (any, error) {
		page := utils.AtoiDefault(asString(args[0]), 1)
		if page < 1 {
			page = 1
		}
		perPage := utils.AtoiDefault(asString(args[1]), defaultPerPage)
		if perPage < 1 {
			perPage = defaultPerPage
		}

		opts, total, err := repo.ListOptions(context.Background(), db, (page-1)*perPage, perPage)
		if err != nil {
			return nil, api.NewError("settings_unavailable",
				"site settings could not be read", http.StatusInternalServerError)
		}

		settings := make([]map[string]any, len(opts))
		for i, o := range opts {
			settings[i] = map[string]any{"name": o.Name, "value": o.Value}
		}

		totalPages := int((total + int64(perPage) - 1) / int64(perPage))
		return api.Paged{
			Cursor: api.PageCursor{
				Page:       page,
				TotalItems: int(total),
				TotalPages: totalPages,
			},
			Value: map[string]any{"settings": settings},
		}, nil
	}
}

// getSetting returns a single stored option by name.
func getSetting(db *gorm.DB) api.Handler {
	return func(args []any) (any, error) {
		name := asString(args[0])
		value, err := repo.GetOption(context.Background(), db, name)
		if err == repo.ErrOptionNotFound {
			return nil, api.NewError("setting_not_found",
				"no setting named "+name, http.StatusNotFound)
		}
		if err != nil {
			return nil, api.NewError("settings_unavailable",
				"site settings could not be read", http.StatusInternalServerError)
		}
		return map[string]any{
			"setting": map[string]any{"name": name, "value": value},
		}, nil
	}
}

// timeRoutes appends the server-clock endpoint, which reports the current
// time in both wire and storage form, optionally shifted to the site's zone.
func timeRoutes(profile domain.StoreProfile) api.RouteFilter {
	loc, err := profile.Location()
	if err != nil {
		loc = time.UTC
	}
	return func(entries []api.RouteEntry) []api.RouteEntry {
		return append(entries,
			api.NewRoute("/time",
				api.Bind(func(args []any) (any, error) {
					siteTZ := asString(args[0]) == "1"
					now := time.Now().Unix()
					wire := api.ToWireFormat(now, siteTZ, loc)
					return map[string]any{
						"time": map[string]any{
							"wire":     wire,
							"storage":  api.ToStorageFormat(wire),
							"timezone": profile.Timezone,
						},
					}, nil
				}, api.Readable, api.Optional("site_timezone", "0")),
			),
		)
	}
}

// asString coerces a bound argument back to a scalar string; multi-valued
// parameters collapse to their first element.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []string:
		if len(s) > 0 {
			return s[0]
		}
	}
	return ""
}
