// This file implements the pagination header builder: given a read-only
// result-set cursor, it derives RFC 5988 style Link headers plus total-count
// headers. Link URLs rewrite the page query parameter on the request URL,
// with scheme and host forced to the store's configured values so links stay
// canonical behind proxies.
package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/tbourn/go-store-api/internal/domain"
)

// Pagination header names.
const (
	HeaderLink       = "Link"
	HeaderTotal      = "X-Total-Count"
	HeaderTotalPages = "X-Total-Pages"
)

// Paged wraps a handler result with its pagination cursor. The response
// assembler unwraps it, emitting the derived headers and serializing only
// the inner value.
type Paged struct {
	Cursor PageCursor
	Value  any
}

// PageCursor is the read-only pagination input: the current page, whether
// the response is a single item, and result-set totals. Callers derive it
// from whatever query abstraction produced the result.
type PageCursor struct {
	Page       int
	Single     bool
	TotalItems int
	TotalPages int
}

// HeaderLine is one header to emit, in order.
type HeaderLine struct {
	Name  string
	Value string
}

// BuildPageHeaders derives the pagination headers for cursor.
//
// Behavior:
//   - The current page defaults to 1 when unset.
//   - Multi-item responses emit first/prev links when page > 1, next when
//     page+1 <= total pages, and last when page differs from the total.
//   - Single-item responses emit no links.
//   - The two count headers are always emitted, single or not.
func BuildPageHeaders(cursor PageCursor, reqURL *url.URL, profile domain.StoreProfile) []HeaderLine {
	page := cursor.Page
	if page < 1 {
		page = 1
	}

	var headers []HeaderLine
	link := func(rel string, to int) {
		headers = append(headers, HeaderLine{
			Name:  HeaderLink,
			Value: fmt.Sprintf("<%s>; rel=%q", pageURL(reqURL, profile, to), rel),
		})
	}

	if !cursor.Single {
		if page > 1 {
			link("first", 1)
			link("prev", page-1)
		}
		if page+1 <= cursor.TotalPages {
			link("next", page+1)
		}
		if page != cursor.TotalPages {
			link("last", cursor.TotalPages)
		}
	}

	headers = append(headers,
		HeaderLine{Name: HeaderTotal, Value: strconv.Itoa(cursor.TotalItems)},
		HeaderLine{Name: HeaderTotalPages, Value: strconv.Itoa(cursor.TotalPages)},
	)
	return headers
}

// pageURL rewrites reqURL to point at page, forcing the store's scheme and
// host.
func pageURL(reqURL *url.URL, profile domain.StoreProfile, page int) string {
	u := *reqURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	u.Scheme, u.Host = profile.SchemeHost()
	return u.String()
}
