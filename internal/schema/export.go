package schema

// Attribute is a single name/value pair exactly as returned by the
// directory listing. HasValue distinguishes an absent value from an
// empty one; both are treated as the field default downstream.
type Attribute struct {
	Name     string
	Value    string
	HasValue bool
}

// Attr builds a present attribute pair. Test and caller convenience.
func Attr(name, value string) Attribute {
	return Attribute{Name: name, Value: value, HasValue: true}
}

// ReduceAttributes folds an unordered attribute pair list into the
// keyed mapping the export schema validates. Pairs without a name are
// dropped. On duplicate names the last occurrence wins; the directory
// does not define an ordering, so the policy is stated here and pinned
// by tests rather than left to chance.
func ReduceAttributes(pairs []Attribute) map[string]string {
	raw := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if pair.Name == "" {
			continue
		}
		value := pair.Value
		if !pair.HasValue {
			value = ""
		}
		raw[pair.Name] = value
	}
	return raw
}

// ExportRecord is a fully-coerced user attribute record as listed from
// the pool. All optional canonical fields default to "" or false;
// custom attributes keep their namespaced keys.
type ExportRecord struct {
	Sub                 string
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
	Birthdate           string
	ZoneInfo            string
	Locale              string
	Address             string
	Email               string
	EmailVerified       bool
	PhoneNumber         string
	PhoneNumberVerified bool
	Custom              map[string]any
}

// exportStringFields maps each optional canonical string attribute to
// its destination in the record. Birthdate is handled separately since
// it is the only one with a normalizing transform.
var exportStringFields = map[string]func(*ExportRecord) *string{
	"name":               func(r *ExportRecord) *string { return &r.Name },
	"given_name":         func(r *ExportRecord) *string { return &r.GivenName },
	"family_name":        func(r *ExportRecord) *string { return &r.FamilyName },
	"middle_name":        func(r *ExportRecord) *string { return &r.MiddleName },
	"nickname":           func(r *ExportRecord) *string { return &r.Nickname },
	"preferred_username": func(r *ExportRecord) *string { return &r.PreferredUsername },
	"profile":            func(r *ExportRecord) *string { return &r.Profile },
	"picture":            func(r *ExportRecord) *string { return &r.Picture },
	"website":            func(r *ExportRecord) *string { return &r.Website },
	"gender":             func(r *ExportRecord) *string { return &r.Gender },
	"zoneinfo":           func(r *ExportRecord) *string { return &r.ZoneInfo },
	"locale":             func(r *ExportRecord) *string { return &r.Locale },
	"address":            func(r *ExportRecord) *string { return &r.Address },
	"email":              func(r *ExportRecord) *string { return &r.Email },
	"phone_number":       func(r *ExportRecord) *string { return &r.PhoneNumber },
}

// exportRefinements are the cross-field rules applied after per-field
// coercion. Kept as a declarative table so each rule stays auditable
// and independently testable. A verified flag requires its value
// field; the stricter at-least-one-verified rule is deliberately not
// enforced, since real pools hold users with neither contact verified.
var exportRefinements = []struct {
	field string
	rule  string
	ok    func(*ExportRecord) bool
}{
	{
		field: "email",
		rule:  `if "email_verified" is true, "email" must be provided`,
		ok:    func(r *ExportRecord) bool { return !r.EmailVerified || r.Email != "" },
	},
	{
		field: "phone_number",
		rule:  `if "phone_number_verified" is true, "phone_number" must be provided`,
		ok:    func(r *ExportRecord) bool { return !r.PhoneNumberVerified || r.PhoneNumber != "" },
	},
}

// ExportSchema validates raw attribute mappings into ExportRecords. It
// is an immutable composition of the fixed canonical field set with
// the custom attributes discovered for one pool; build a new value per
// connection instead of mutating a shared one, so discovery for one
// tenant can never leak into another.
type ExportSchema struct {
	custom CustomAttributes
}

// NewExportSchema composes the canonical export schema with a set of
// discovered custom attributes. A nil map means the pool declares no
// custom attributes.
func NewExportSchema(custom CustomAttributes) ExportSchema {
	return ExportSchema{custom: custom}
}

// CustomKeys returns the custom attribute names this schema accepts,
// in unspecified order.
func (s ExportSchema) CustomKeys() []string {
	keys := make([]string, 0, len(s.custom))
	for k := range s.custom {
		keys = append(keys, k)
	}
	return keys
}

// Parse coerces and validates one reduced attribute mapping. Keys that
// are neither canonical nor declared custom attributes are dropped.
// All violations are aggregated into a single *ValidationError; the
// export caller is expected to log it and skip the record rather than
// abort the listing.
func (s ExportSchema) Parse(raw map[string]string) (ExportRecord, error) {
	var verr ValidationError
	record := ExportRecord{}

	if sub := raw["sub"]; sub != "" {
		record.Sub = sub
	} else {
		verr.add("sub", RuleRequired, "required attribute is missing")
	}

	for field, dest := range exportStringFields {
		*dest(&record) = raw[field]
	}
	record.Birthdate = NormalizeDate(raw["birthdate"])

	var err error
	if record.EmailVerified, err = ParseStringBoolean(raw["email_verified"]); err != nil {
		verr.add("email_verified", RuleCoercion, "%v", err)
	}
	if record.PhoneNumberVerified, err = ParseStringBoolean(raw["phone_number_verified"]); err != nil {
		verr.add("phone_number_verified", RuleCoercion, "%v", err)
	}

	for key, typ := range s.custom {
		value, ok := raw[key]
		if !ok {
			continue
		}
		coerced, err := coerceCustom(typ, value)
		if err != nil {
			verr.add(key, RuleCoercion, "%v", err)
			continue
		}
		if record.Custom == nil {
			record.Custom = make(map[string]any)
		}
		record.Custom[key] = coerced
	}

	for _, ref := range exportRefinements {
		if !ref.ok(&record) {
			verr.add(ref.field, RuleCrossField, "%s", ref.rule)
		}
	}

	if err := verr.orNil(); err != nil {
		return ExportRecord{}, err
	}
	return record, nil
}

// ParseAttributes is the full export pipeline for one user: reduce the
// raw pair list, then validate through the schema.
func (s ExportSchema) ParseAttributes(pairs []Attribute) (ExportRecord, error) {
	return s.Parse(ReduceAttributes(pairs))
}
