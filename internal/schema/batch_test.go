package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importRecord(t *testing.T, username string, mutate func(map[string]any)) ImportRecord {
	t.Helper()
	row := baseImportRow()
	row[FieldUsername] = username
	if mutate != nil {
		mutate(row)
	}
	record, err := ParseImportRecord(row)
	require.NoError(t, err)
	return record
}

func TestParseBatch_Valid(t *testing.T) {
	batch, err := ParseBatch([]ImportRecord{
		importRecord(t, "u1", nil),
		importRecord(t, "u2", nil),
	})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestParseBatch_Empty(t *testing.T) {
	_, err := ParseBatch(nil)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has(RuleBatch))
	assert.Contains(t, err.Error(), "0 records")
}

func TestParseBatch_DuplicateUsername(t *testing.T) {
	_, err := ParseBatch([]ImportRecord{
		importRecord(t, "u1", nil),
		importRecord(t, "u2", nil),
		importRecord(t, "u1", nil),
	})
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has(RuleBatch))
	assert.Contains(t, err.Error(), `"u1"`)
}

func TestParseBatch_EscapesCommas(t *testing.T) {
	record := importRecord(t, "u1", func(m map[string]any) {
		m["address"] = "a,b,c"
		m["custom:note"] = "x,y"
	})

	batch, err := ParseBatch([]ImportRecord{record})
	require.NoError(t, err)
	assert.Equal(t, `a\,b\,c`, batch[0].Address)
	assert.Equal(t, `x\,y`, batch[0].Custom["custom:note"])
}

func TestParseBatch_NonStringFieldsUntouched(t *testing.T) {
	record := importRecord(t, "u1", func(m map[string]any) {
		m["custom:points"] = int64(42)
	})
	updatedAt := record.UpdatedAt

	batch, err := ParseBatch([]ImportRecord{record})
	require.NoError(t, err)
	assert.Equal(t, int64(42), batch[0].Custom["custom:points"])
	assert.Equal(t, updatedAt, batch[0].UpdatedAt)
	assert.True(t, batch[0].MFAEnabled)
}

func TestParseBatch_DoesNotMutateInput(t *testing.T) {
	record := importRecord(t, "u1", func(m map[string]any) {
		m["address"] = "a,b"
	})
	records := []ImportRecord{record}

	_, err := ParseBatch(records)
	require.NoError(t, err)
	assert.Equal(t, "a,b", records[0].Address, "transform must copy, not mutate")
}
