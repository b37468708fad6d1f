package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// CustomPrefix is the namespace Cognito reserves for tenant-defined
// attributes. Any attribute name carrying it is outside the fixed
// canonical schema.
const CustomPrefix = "custom:"

// ScalarType declares how a custom attribute's values are typed.
type ScalarType int

const (
	// TypeStringOrNumber accepts either representation. This is the
	// conservative default: the pool schema does not expose finer
	// subtyping for custom attributes, so without external metadata we
	// cannot commit to one.
	TypeStringOrNumber ScalarType = iota

	// TypeString requires a string value.
	TypeString

	// TypeNumber requires an integer or float value (numeric strings
	// are coerced).
	TypeNumber
)

func (t ScalarType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	default:
		return "string|number"
	}
}

// CustomAttributes maps discovered custom attribute names (prefix
// included) to their declared scalar type. The zero value means "no
// custom attributes". Once built it is read-only and safe to share
// across concurrent validations.
type CustomAttributes map[string]ScalarType

// DiscoverCustomAttributes identifies the tenant-defined attributes in
// a pool's declared attribute name list. Every discovered attribute is
// typed string-or-number; callers with richer type metadata (e.g. a
// config file) can override entries before freezing the schema.
func DiscoverCustomAttributes(names []string) CustomAttributes {
	var custom CustomAttributes
	for _, name := range names {
		if !strings.HasPrefix(name, CustomPrefix) {
			continue
		}
		if custom == nil {
			custom = make(CustomAttributes)
		}
		custom[name] = TypeStringOrNumber
	}
	return custom
}

// IsCustomAttribute reports whether a field name is in the tenant
// custom namespace.
func IsCustomAttribute(name string) bool {
	return strings.HasPrefix(name, CustomPrefix)
}

// coerceCustom validates one custom attribute value against its
// declared type. String-or-number passes strings and numbers through
// unchanged.
func coerceCustom(typ ScalarType, v any) (any, error) {
	switch t := v.(type) {
	case string:
		if typ == TypeNumber {
			n, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return nil, fmt.Errorf("expected a number, got %q", t)
			}
			return n, nil
		}
		return t, nil
	case int, int64, float64:
		if typ == TypeString {
			return nil, fmt.Errorf("expected a string, got %v", t)
		}
		return t, nil
	}
	return nil, fmt.Errorf("expected %s, got %T", typ, v)
}
