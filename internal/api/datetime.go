// This file implements the datetime normalizer: bidirectional conversion
// between the wire format (fixed-offset, "Z"-suffixed UTC) and the storage
// format used for persistence and comparison.
//
// The fallback policy is deliberate and must hold for every input: any parse
// failure, including empty or garbage strings, silently yields the Unix
// epoch instead of an error. Upstream data is not trusted to carry valid
// timestamps, and a zero-time sentinel is more useful than a failed request.
package api

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Wire and storage datetime layouts. The wire layout renders "Z" for UTC
// instants, which is the only zone this normalizer ever emits.
const (
	WireFormat    = "2006-01-02T15:04:05Z07:00"
	StorageFormat = "2006-01-02 15:04:05"
)

// fractionRE strips sub-second precision before parsing.
var fractionRE = regexp.MustCompile(`\.\d+`)

// wireLayouts are the accepted inbound shapes, tried in order: zoned RFC
// 3339, an offset without a colon, a bare datetime (interpreted as UTC), and
// the storage layout itself.
var wireLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	StorageFormat,
}

// ToStorageFormat converts a wire datetime into the storage format.
//
// Sub-second precision is stripped, any numeric UTC offset is honored, and
// the instant is re-expressed in UTC before formatting. Malformed input
// falls back to the epoch storage value "1970-01-01 00:00:00".
func ToStorageFormat(wire string) string {
	s := fractionRE.ReplaceAllString(strings.TrimSpace(wire), "")
	for _, layout := range wireLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(StorageFormat)
		}
	}
	return time.Unix(0, 0).UTC().Format(StorageFormat)
}

// ToWireFormat converts a numeric Unix timestamp or a storage-format string
// into the wire format.
//
// The value is interpreted in UTC unless convertToSiteTZ is set, in which
// case it is interpreted in loc (shifted by the zone's offset at that
// instant) before being re-expressed in UTC. Output always carries the "Z"
// suffix. Malformed input falls back to the epoch.
func ToWireFormat(value any, convertToSiteTZ bool, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	t, ok := parseValue(value, convertToSiteTZ, loc)
	if !ok {
		t = time.Unix(0, 0)
	}
	return t.UTC().Format(WireFormat)
}

func parseValue(value any, convertToSiteTZ bool, loc *time.Location) (time.Time, bool) {
	switch v := value.(type) {
	case int:
		return fromUnix(int64(v), convertToSiteTZ, loc), true
	case int64:
		return fromUnix(v, convertToSiteTZ, loc), true
	case float64:
		return fromUnix(int64(v), convertToSiteTZ, loc), true
	case time.Time:
		return v, true
	case string:
		s := fractionRE.ReplaceAllString(strings.TrimSpace(v), "")
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromUnix(n, convertToSiteTZ, loc), true
		}
		zone := time.UTC
		if convertToSiteTZ {
			zone = loc
		}
		for _, layout := range wireLayouts {
			if t, err := time.ParseInLocation(layout, s, zone); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// fromUnix maps an epoch timestamp to its instant. With the site-zone flag,
// the timestamp's wall clock is re-interpreted as site-local, i.e. the
// instant shifts by the zone's offset at that moment, matching how storage
// strings are interpreted under the same flag.
func fromUnix(n int64, convertToSiteTZ bool, loc *time.Location) time.Time {
	t := time.Unix(n, 0).UTC()
	if !convertToSiteTZ {
		return t
	}
	_, offset := t.In(loc).Zone()
	return t.Add(-time.Duration(offset) * time.Second)
}
