// Package schema validates and transforms Cognito user pool records
// between the wire shape returned by the directory (flat attribute
// pairs, string-encoded scalars) and the strict CSV exchange format
// accepted by user import jobs.
package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing free-text date values.
// The directory does not guarantee a single format for birthdate or
// updated_at, so we accept the layouts seen in real pools.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC1123,
	time.RFC1123Z,
	time.ANSIC,
}

// ParseStringBoolean coerces a wire-level boolean attribute. The
// directory serializes booleans as the literals "true", "True",
// "false" or "False"; the superset of casings is accepted for
// robustness. A missing value defaults to false. Any other literal is
// a coercion error rather than a silent false.
func ParseStringBoolean(v string) (bool, error) {
	switch v {
	case "true", "True":
		return true, nil
	case "false", "False", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean literal %q", v)
}

// parseDate parses a free-text date value against the known layouts.
// Bare epoch seconds or milliseconds are also accepted since
// updated_at is frequently serialized that way.
func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return epochToTime(n), true
	}
	return time.Time{}, false
}

// epochToTime treats 13+ digit values as milliseconds since epoch.
func epochToTime(n int64) time.Time {
	if n > 1_000_000_000_000 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// NormalizeDate canonicalizes a date attribute for export. Empty input
// passes through; an unparseable value yields "" rather than an error
// so one malformed legacy birthdate cannot fail a whole listing; a
// parseable value becomes an ISO-8601 UTC instant.
func NormalizeDate(v string) string {
	if v == "" {
		return v
	}
	t, ok := parseDate(v)
	if !ok {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// FormatDateUS renders a date attribute in the MM/DD/YYYY form the
// import job expects. Same empty/unparseable policy as NormalizeDate.
func FormatDateUS(v string) string {
	if v == "" {
		return v
	}
	t, ok := parseDate(v)
	if !ok {
		return ""
	}
	return t.UTC().Format("01/02/2006")
}

// ParseNumericString parses an optional-numeric field such as
// phone_number. Empty input yields the empty-string sentinel (the
// field is optional, not invalid). Non-empty input must parse as an
// integer after stripping a leading "+"; anything else fails loudly
// instead of defaulting.
func ParseNumericString(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(v, "+"), 10, 64)
	if err != nil {
		return "", fmt.Errorf("not a numeric string: %q", v)
	}
	return strconv.FormatInt(n, 10), nil
}

// ParseEpoch coerces an updated_at value to Unix seconds. The CSV
// reader may have dynamically typed the cell, so numbers, numeric
// strings and any parseable date layout are all accepted.
func ParseEpoch(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing timestamp")
	case int64:
		return timeToEpoch(epochToTime(t)), nil
	case int:
		return timeToEpoch(epochToTime(int64(t))), nil
	case float64:
		return timeToEpoch(epochToTime(int64(t))), nil
	case bool:
		return 0, fmt.Errorf("invalid timestamp %v", t)
	case string:
		parsed, ok := parseDate(t)
		if !ok {
			return 0, fmt.Errorf("invalid timestamp %q", t)
		}
		return timeToEpoch(parsed), nil
	case time.Time:
		return timeToEpoch(t), nil
	}
	return 0, fmt.Errorf("invalid timestamp type %T", v)
}

func timeToEpoch(t time.Time) int64 {
	return t.Unix()
}
