package schema

import (
	"reflect"
	"testing"
)

func TestReduceAttributes(t *testing.T) {
	raw := ReduceAttributes([]Attribute{
		Attr("sub", "u1"),
		{Name: "", Value: "dropped", HasValue: true},
		{Name: "email", HasValue: false},
		Attr("locale", "en-GB"),
	})
	want := map[string]string{"sub": "u1", "email": "", "locale": "en-GB"}
	if !reflect.DeepEqual(raw, want) {
		t.Errorf("ReduceAttributes = %v, want %v", raw, want)
	}
}

func TestReduceAttributes_DuplicateLastWins(t *testing.T) {
	raw := ReduceAttributes([]Attribute{
		Attr("email", "first@example.com"),
		Attr("email", "last@example.com"),
	})
	if raw["email"] != "last@example.com" {
		t.Errorf("email = %q, want last occurrence to win", raw["email"])
	}
}

func TestExportSchema_Defaults(t *testing.T) {
	record, err := NewExportSchema(nil).Parse(map[string]string{"sub": "u1"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := ExportRecord{Sub: "u1"}
	if !reflect.DeepEqual(record, want) {
		t.Errorf("minimal record = %+v, want all defaults", record)
	}
}

func TestExportSchema_MissingSub(t *testing.T) {
	_, err := NewExportSchema(nil).Parse(map[string]string{"email": "a@b.com"})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !verr.Has(RuleRequired) {
		t.Errorf("expected a required-field violation, got %v", verr)
	}
}

func TestExportSchema_VerifiedRequiresValue(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]string
		valid bool
	}{
		{"email verified with email", map[string]string{"sub": "u1", "email": "hello@test.com", "email_verified": "true"}, true},
		{"email verified without email", map[string]string{"sub": "u1", "email": "", "email_verified": "true"}, false},
		{"phone verified with phone", map[string]string{"sub": "u1", "phone_number": "+1234567890", "phone_number_verified": "true"}, true},
		{"phone verified without phone", map[string]string{"sub": "u1", "phone_number": "", "phone_number_verified": "true"}, false},
		{"neither verified", map[string]string{"sub": "u1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExportSchema(nil).Parse(tt.raw)
			if (err == nil) != tt.valid {
				t.Errorf("Parse(%v) error = %v, want valid=%v", tt.raw, err, tt.valid)
			}
			if err != nil {
				if verr, _ := AsValidationError(err); verr != nil && !verr.Has(RuleCrossField) {
					t.Errorf("expected a cross-field violation, got %v", verr)
				}
			}
		})
	}
}

func TestExportSchema_BadBooleanLiteral(t *testing.T) {
	_, err := NewExportSchema(nil).Parse(map[string]string{"sub": "u1", "email_verified": "TRUE"})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !verr.Has(RuleCoercion) {
		t.Errorf("expected a coercion violation, got %v", verr)
	}
}

func TestExportSchema_BirthdateNormalized(t *testing.T) {
	record, err := NewExportSchema(nil).Parse(map[string]string{"sub": "u1", "birthdate": "03/20/2024"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if record.Birthdate != "2024-03-20T00:00:00.000Z" {
		t.Errorf("Birthdate = %q, want ISO-8601", record.Birthdate)
	}

	record, err = NewExportSchema(nil).Parse(map[string]string{"sub": "u1", "birthdate": "unknown"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if record.Birthdate != "" {
		t.Errorf("unparseable Birthdate = %q, want empty", record.Birthdate)
	}
}

func TestExportSchema_CustomAttributes(t *testing.T) {
	custom := CustomAttributes{"custom:thing": TypeStringOrNumber}
	record, err := NewExportSchema(custom).ParseAttributes([]Attribute{
		Attr("sub", "u1"),
		Attr("email", "test@test.com"),
		Attr("email_verified", "true"),
		Attr("custom:thing", "test2"),
		Attr("custom:undeclared", "dropped"),
	})
	if err != nil {
		t.Fatalf("ParseAttributes error: %v", err)
	}
	if record.Custom["custom:thing"] != "test2" {
		t.Errorf(`Custom["custom:thing"] = %v, want "test2"`, record.Custom["custom:thing"])
	}
	if _, ok := record.Custom["custom:undeclared"]; ok {
		t.Error("undeclared custom attribute should be dropped")
	}
}

func TestExportSchema_EndToEnd(t *testing.T) {
	record, err := NewExportSchema(nil).ParseAttributes([]Attribute{
		Attr("sub", "u1"),
		Attr("email", "a@b.com"),
		Attr("email_verified", "true"),
	})
	if err != nil {
		t.Fatalf("ParseAttributes error: %v", err)
	}
	want := ExportRecord{Sub: "u1", Email: "a@b.com", EmailVerified: true}
	if !reflect.DeepEqual(record, want) {
		t.Errorf("record = %+v, want %+v", record, want)
	}
}

func TestExportSchema_Idempotent(t *testing.T) {
	schema := NewExportSchema(nil)
	first, err := schema.Parse(map[string]string{
		"sub":            "u1",
		"birthdate":      "2024-03-20",
		"email":          "a@b.com",
		"email_verified": "true",
	})
	if err != nil {
		t.Fatalf("first Parse error: %v", err)
	}

	second, err := schema.Parse(map[string]string{
		"sub":            first.Sub,
		"birthdate":      first.Birthdate,
		"email":          first.Email,
		"email_verified": "true",
	})
	if err != nil {
		t.Fatalf("second Parse error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second pass drifted: %+v != %+v", second, first)
	}
}

func TestDiscoverCustomAttributes(t *testing.T) {
	custom := DiscoverCustomAttributes([]string{"sub", "email", "custom:thing_one", "custom:tier"})
	if len(custom) != 2 {
		t.Fatalf("discovered %d attributes, want 2", len(custom))
	}
	for _, key := range []string{"custom:thing_one", "custom:tier"} {
		if custom[key] != TypeStringOrNumber {
			t.Errorf("%s type = %v, want string|number", key, custom[key])
		}
	}

	if custom := DiscoverCustomAttributes([]string{"sub", "email"}); custom != nil {
		t.Errorf("expected no custom attributes, got %v", custom)
	}
}
