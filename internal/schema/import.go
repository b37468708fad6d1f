package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MaxRowSize is the ceiling the import job places on one serialized
// record.
const MaxRowSize = 16000

// FieldUsername and FieldMFAEnabled are the two required import
// columns. Both live in the cognito: namespace, which is distinct from
// the tenant custom: namespace.
const (
	FieldUsername   = "cognito:username"
	FieldMFAEnabled = "cognito:mfa_enabled"
)

// ImportHeaders is the canonical column order of the import CSV
// format. Custom attribute columns follow these, sorted by name.
var ImportHeaders = []string{
	FieldUsername,
	"name",
	"given_name",
	"family_name",
	"middle_name",
	"nickname",
	"preferred_username",
	"profile",
	"picture",
	"website",
	"email",
	"email_verified",
	"gender",
	"birthdate",
	"zoneinfo",
	"locale",
	"phone_number",
	"phone_number_verified",
	"address",
	"updated_at",
	FieldMFAEnabled,
}

var importFieldSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ImportHeaders))
	for _, h := range ImportHeaders {
		set[h] = struct{}{}
	}
	return set
}()

// ImportRecord is one validated row of the bulk-import format.
type ImportRecord struct {
	Username            string
	MFAEnabled          bool
	Name                string
	GivenName           string
	FamilyName          string
	MiddleName          string
	Nickname            string
	PreferredUsername   string
	Profile             string
	Picture             string
	Website             string
	Gender              string
	Birthdate           string // MM/DD/YYYY or ""
	ZoneInfo            string
	Locale              string
	Address             string
	UpdatedAt           int64 // Unix seconds; 0 means absent
	Email               string
	EmailVerified       bool
	PhoneNumber         string // digits or ""
	PhoneNumberVerified bool
	Custom              map[string]any
}

var importStringFields = map[string]func(*ImportRecord) *string{
	"name":               func(r *ImportRecord) *string { return &r.Name },
	"given_name":         func(r *ImportRecord) *string { return &r.GivenName },
	"family_name":        func(r *ImportRecord) *string { return &r.FamilyName },
	"middle_name":        func(r *ImportRecord) *string { return &r.MiddleName },
	"nickname":           func(r *ImportRecord) *string { return &r.Nickname },
	"preferred_username": func(r *ImportRecord) *string { return &r.PreferredUsername },
	"profile":            func(r *ImportRecord) *string { return &r.Profile },
	"picture":            func(r *ImportRecord) *string { return &r.Picture },
	"website":            func(r *ImportRecord) *string { return &r.Website },
	"gender":             func(r *ImportRecord) *string { return &r.Gender },
	"zoneinfo":           func(r *ImportRecord) *string { return &r.ZoneInfo },
	"locale":             func(r *ImportRecord) *string { return &r.Locale },
	"address":            func(r *ImportRecord) *string { return &r.Address },
	"email":              func(r *ImportRecord) *string { return &r.Email },
}

var importRefinements = []struct {
	field string
	rule  string
	ok    func(*ImportRecord) bool
}{
	{
		field: "email",
		rule:  `if "email_verified" is true, "email" must be provided`,
		ok:    func(r *ImportRecord) bool { return !r.EmailVerified || r.Email != "" },
	},
	{
		field: "phone_number",
		rule:  `if "phone_number_verified" is true, "phone_number" must be provided`,
		ok:    func(r *ImportRecord) bool { return !r.PhoneNumberVerified || r.PhoneNumber != "" },
	},
}

// coerceImportString accepts the dynamically-typed cell values a CSV
// reader produces for a string column. Missing cells default to "".
func coerceImportString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("expected a string, got %T", v)
}

// coerceImportBool accepts a typed boolean cell or its wire-level
// string form.
func coerceImportBool(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		return ParseStringBoolean(t)
	}
	return false, fmt.Errorf("expected a boolean, got %T", v)
}

// ParseImportRecord validates one raw import row. Every violated rule
// is reported in the returned *ValidationError, not just the first, so
// a row can be fixed in one editing pass. Keys outside the canonical
// set are rejected unless they are custom-namespaced, in which case
// they pass through unvalidated.
func ParseImportRecord(raw map[string]any) (ImportRecord, error) {
	var verr ValidationError
	record := ImportRecord{}

	switch username, err := coerceImportString(raw[FieldUsername]); {
	case err != nil:
		verr.add(FieldUsername, RuleRequired, "%v", err)
	case username == "":
		verr.add(FieldUsername, RuleRequired, "required field is missing")
	default:
		record.Username = username
	}

	if v, ok := raw[FieldMFAEnabled]; !ok {
		verr.add(FieldMFAEnabled, RuleRequired, "required field is missing")
	} else if record.MFAEnabled, _ = v.(bool); !isBool(v) {
		verr.add(FieldMFAEnabled, RuleRequired, "expected a boolean, got %T", v)
	}

	for key, value := range raw {
		if _, ok := importFieldSet[key]; ok {
			continue
		}
		if IsCustomAttribute(key) {
			if record.Custom == nil {
				record.Custom = make(map[string]any)
			}
			record.Custom[key] = value
			continue
		}
		verr.add(key, RuleUnknownField, "field is outside of the allowed schema")
	}

	for field, dest := range importStringFields {
		value, err := coerceImportString(raw[field])
		if err != nil {
			verr.add(field, RuleCoercion, "%v", err)
			continue
		}
		*dest(&record) = value
	}

	if birthdate, err := coerceImportString(raw["birthdate"]); err != nil {
		verr.add("birthdate", RuleCoercion, "%v", err)
	} else {
		record.Birthdate = FormatDateUS(birthdate)
	}

	if phone, err := coerceImportString(raw["phone_number"]); err != nil {
		verr.add("phone_number", RuleCoercion, "%v", err)
	} else if record.PhoneNumber, err = ParseNumericString(phone); err != nil {
		verr.add("phone_number", RuleCoercion, "%v", err)
	}

	if v, ok := raw["updated_at"]; ok && v != nil && v != "" {
		epoch, err := ParseEpoch(v)
		if err != nil {
			verr.add("updated_at", RuleCoercion, "%v", err)
		} else {
			record.UpdatedAt = epoch
		}
	}

	var err error
	if record.EmailVerified, err = coerceImportBool(raw["email_verified"]); err != nil {
		verr.add("email_verified", RuleCoercion, "%v", err)
	}
	if record.PhoneNumberVerified, err = coerceImportBool(raw["phone_number_verified"]); err != nil {
		verr.add("phone_number_verified", RuleCoercion, "%v", err)
	}

	for _, ref := range importRefinements {
		if !ref.ok(&record) {
			verr.add(ref.field, RuleCrossField, "%s", ref.rule)
		}
	}

	if size := record.serializedSize(); size > MaxRowSize {
		verr.add("", RuleSizeLimit, "row is %d characters, the maximum row size is %d", size, MaxRowSize)
	}

	if err := verr.orNil(); err != nil {
		return ImportRecord{}, err
	}
	return record, nil
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// asMap renders the record as a keyed mapping with its typed values,
// canonical keys first.
func (r ImportRecord) asMap() map[string]any {
	m := map[string]any{
		FieldUsername:           r.Username,
		FieldMFAEnabled:         r.MFAEnabled,
		"name":                  r.Name,
		"given_name":            r.GivenName,
		"family_name":           r.FamilyName,
		"middle_name":           r.MiddleName,
		"nickname":              r.Nickname,
		"preferred_username":    r.PreferredUsername,
		"profile":               r.Profile,
		"picture":               r.Picture,
		"website":               r.Website,
		"gender":                r.Gender,
		"birthdate":             r.Birthdate,
		"zoneinfo":              r.ZoneInfo,
		"locale":                r.Locale,
		"address":               r.Address,
		"updated_at":            r.UpdatedAt,
		"email":                 r.Email,
		"email_verified":        r.EmailVerified,
		"phone_number":          r.PhoneNumber,
		"phone_number_verified": r.PhoneNumberVerified,
	}
	for k, v := range r.Custom {
		m[k] = v
	}
	return m
}

// serializedSize measures the record's serialized length for the row
// size ceiling, matching how the import job accounts row size.
func (r ImportRecord) serializedSize() int {
	data, err := json.Marshal(r.asMap())
	if err != nil {
		return 0
	}
	return len(data)
}

// Cell renders one field of the record as a CSV cell. Booleans become
// their lowercase literals; an absent updated_at renders empty.
func (r ImportRecord) Cell(field string) string {
	switch field {
	case FieldUsername:
		return r.Username
	case FieldMFAEnabled:
		return strconv.FormatBool(r.MFAEnabled)
	case "email_verified":
		return strconv.FormatBool(r.EmailVerified)
	case "phone_number_verified":
		return strconv.FormatBool(r.PhoneNumberVerified)
	case "updated_at":
		if r.UpdatedAt == 0 {
			return ""
		}
		return strconv.FormatInt(r.UpdatedAt, 10)
	case "birthdate":
		return r.Birthdate
	case "phone_number":
		return r.PhoneNumber
	}
	if IsCustomAttribute(field) {
		switch v := r.Custom[field].(type) {
		case nil:
			return ""
		case string:
			return v
		case int64:
			return strconv.FormatInt(v, 10)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return fmt.Sprint(v)
		}
	}
	if dest, ok := importStringFields[field]; ok {
		return *dest(&r)
	}
	return ""
}
