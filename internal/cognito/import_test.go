package cognito

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolsync/internal/schema"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validCSV = `cognito:username,email,email_verified,birthdate,updated_at,cognito:mfa_enabled,custom:tier
u1,a@b.com,true,2024-03-20,2024-03-20T00:00:00Z,false,gold
u2,,false,,,true,
`

func TestReadBatch_Valid(t *testing.T) {
	batch, err := ReadBatch(writeCSV(t, validCSV))
	require.NoError(t, err)
	require.Len(t, batch, 2)

	assert.Equal(t, "u1", batch[0].Username)
	assert.Equal(t, "03/20/2024", batch[0].Birthdate)
	assert.True(t, batch[0].EmailVerified)
	assert.Equal(t, "gold", batch[0].Custom["custom:tier"])
	assert.True(t, batch[1].MFAEnabled)
}

func TestReadBatch_MissingFile(t *testing.T) {
	_, err := ReadBatch(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestReadBatch_AggregatesRowViolations(t *testing.T) {
	csv := `cognito:username,email,email_verified,cognito:mfa_enabled
,a@b.com,true,false
u2,,true,false
`
	_, err := ReadBatch(writeCSV(t, csv))
	verr, ok := schema.AsValidationError(err)
	require.True(t, ok, "expected *ValidationError, got %v", err)

	// Both broken rows must be reported, with their row numbers.
	assert.True(t, verr.Has(schema.RuleRequired))
	assert.True(t, verr.Has(schema.RuleCrossField))
	assert.Contains(t, err.Error(), "row 1")
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadBatch_DuplicateUsernames(t *testing.T) {
	csv := `cognito:username,cognito:mfa_enabled
u1,false
u1,true
`
	_, err := ReadBatch(writeCSV(t, csv))
	verr, ok := schema.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has(schema.RuleBatch))
}

func TestReadBatch_UnknownColumn(t *testing.T) {
	csv := `cognito:username,cognito:mfa_enabled,not_a_real_field
u1,false,x
`
	_, err := ReadBatch(writeCSV(t, csv))
	verr, ok := schema.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has(schema.RuleUnknownField))
}

func TestImportUsers_RunsTheJobPipeline(t *testing.T) {
	var uploaded string
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		body, _ := io.ReadAll(r.Body)
		uploaded = string(body)
	}))
	defer server.Close()

	fake := &fakeUserPool{presignedURL: server.URL}
	client := testClient(fake, nil)
	client.http = server.Client()
	client.importRoleARN = "arn:aws:iam::000000000000:role/import"

	batch, err := ReadBatch(writeCSV(t, validCSV))
	require.NoError(t, err)
	require.NoError(t, client.ImportUsers(context.Background(), batch))

	require.NotNil(t, fake.createdJob)
	assert.True(t, strings.HasPrefix(aws.ToString(fake.createdJob.JobName), "import-"))
	assert.Equal(t, client.importRoleARN, aws.ToString(fake.createdJob.CloudWatchLogsRoleArn))

	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasPrefix(uploaded, "cognito:username,"), "payload must start with the header row")
	assert.Contains(t, uploaded, "u1,")
	assert.Contains(t, uploaded, "custom:tier")

	require.NotNil(t, fake.startedJob)
	assert.Equal(t, "job-1", aws.ToString(fake.startedJob.JobId))
}

func TestImportUsers_AbortsWhenJobCreationFails(t *testing.T) {
	fake := &fakeUserPool{createErr: errors.New("denied")}
	client := testClient(fake, nil)

	batch, err := ReadBatch(writeCSV(t, validCSV))
	require.NoError(t, err)

	err = client.ImportUsers(context.Background(), batch)
	require.Error(t, err)
	assert.Nil(t, fake.startedJob, "job must not start when creation failed")
}

func TestImportUsers_AbortsWhenUploadFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fake := &fakeUserPool{presignedURL: server.URL}
	client := testClient(fake, nil)
	client.http = server.Client()

	batch, err := ReadBatch(writeCSV(t, validCSV))
	require.NoError(t, err)

	err = client.ImportUsers(context.Background(), batch)
	require.Error(t, err)
	assert.Nil(t, fake.startedJob, "job must not start when the upload failed")
}

func TestImportUsers_EmptyBatch(t *testing.T) {
	client := testClient(&fakeUserPool{}, nil)
	require.Error(t, client.ImportUsers(context.Background(), nil))
}
