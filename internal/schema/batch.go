package schema

import "strings"

// Batch size bounds imposed by the import job API.
const (
	MinBatchSize = 1
	MaxBatchSize = 500000
)

// Batch is a validated, comma-escaped sequence of import records,
// ready to serialize into an upload payload.
type Batch []ImportRecord

// ParseBatch validates the batch-level invariants over a complete
// record sequence and, only when they all hold, applies the
// comma-escaping transform to every string field. The transform is
// applied exactly once here; callers must not re-escape. Validation is
// atomic: a failing batch produces no partial result.
func ParseBatch(records []ImportRecord) (Batch, error) {
	var verr ValidationError

	if len(records) < MinBatchSize || len(records) > MaxBatchSize {
		verr.add("", RuleBatch, "batch holds %d records, must be between %d and %d",
			len(records), MinBatchSize, MaxBatchSize)
	}

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, dup := seen[record.Username]; dup {
			verr.add(FieldUsername, RuleBatch, "all records must have a unique username, %q repeats", record.Username)
			break
		}
		seen[record.Username] = struct{}{}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	batch := make(Batch, len(records))
	for i, record := range records {
		batch[i] = escapeRecord(record)
	}
	return batch, nil
}

// escapeCommas backslash-escapes literal commas so values survive a
// comma-delimited format without quoting.
func escapeCommas(s string) string {
	return strings.ReplaceAll(s, ",", `\,`)
}

// escapeRecord applies the comma escape to every string-valued field;
// non-string fields pass through unchanged.
func escapeRecord(record ImportRecord) ImportRecord {
	record.Username = escapeCommas(record.Username)
	for _, dest := range importStringFields {
		field := dest(&record)
		*field = escapeCommas(*field)
	}
	record.Birthdate = escapeCommas(record.Birthdate)
	record.PhoneNumber = escapeCommas(record.PhoneNumber)

	if len(record.Custom) > 0 {
		custom := make(map[string]any, len(record.Custom))
		for k, v := range record.Custom {
			if s, ok := v.(string); ok {
				custom[k] = escapeCommas(s)
			} else {
				custom[k] = v
			}
		}
		record.Custom = custom
	}
	return record
}
