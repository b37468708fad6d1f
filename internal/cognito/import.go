package cognito

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/google/uuid"

	"poolsync/internal/csvfile"
	"poolsync/internal/schema"
)

// ReadBatch reads a delimited-text file and validates it into an
// import batch. Per-record violations are aggregated across the whole
// file before failing: partial imports are never attempted, and the
// operator should see every broken row in one pass.
func ReadBatch(path string) (schema.Batch, error) {
	rows, err := csvfile.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var verr schema.ValidationError
	records := make([]schema.ImportRecord, 0, len(rows))
	for i, row := range rows {
		record, err := schema.ParseImportRecord(row)
		if err != nil {
			if rowErr, ok := schema.AsValidationError(err); ok {
				for _, v := range rowErr.Violations {
					v.Message = fmt.Sprintf("row %d: %s", i+1, v.Message)
					verr.Violations = append(verr.Violations, v)
				}
				continue
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, record)
	}
	if len(verr.Violations) > 0 {
		return nil, &verr
	}

	return schema.ParseBatch(records)
}

// ImportUsers drives one bulk import job: create it, upload the CSV
// payload to its presigned URL, and start it.
func (c *Client) ImportUsers(ctx context.Context, batch schema.Batch) error {
	if len(batch) == 0 {
		return fmt.Errorf("no users to import")
	}

	job, err := c.api.CreateUserImportJob(ctx, &cip.CreateUserImportJobInput{
		UserPoolId:            aws.String(c.userPoolID),
		JobName:               aws.String("import-" + uuid.NewString()),
		CloudWatchLogsRoleArn: aws.String(c.importRoleARN),
	})
	if err != nil {
		return fmt.Errorf("create import job: %w", err)
	}
	if job.UserImportJob == nil || job.UserImportJob.PreSignedUrl == nil {
		return fmt.Errorf("create import job: no job returned")
	}
	c.log.Infof("Created an empty import job")

	if err := c.upload(ctx, *job.UserImportJob.PreSignedUrl, batchCSV(batch)); err != nil {
		return fmt.Errorf("upload import payload: %w", err)
	}
	c.log.Infof("Uploaded user data to the import job")

	_, err = c.api.StartUserImportJob(ctx, &cip.StartUserImportJobInput{
		UserPoolId: aws.String(c.userPoolID),
		JobId:      job.UserImportJob.JobId,
	})
	if err != nil {
		return fmt.Errorf("start import job: %w", err)
	}
	c.log.Infof("Started the import job for %d users", len(batch))
	return nil
}

// batchCSV serializes a validated batch into the upload payload.
func batchCSV(batch schema.Batch) string {
	header := Headers(batch)
	var sb strings.Builder
	rows := make([][]string, len(batch))
	for i, record := range batch {
		row := make([]string, len(header))
		for j, field := range header {
			row[j] = record.Cell(field)
		}
		rows[i] = row
	}
	// Write cannot fail against a strings.Builder.
	_ = csvfile.Write(&sb, header, rows)
	return sb.String()
}

// upload PUTs the payload to the job's presigned URL.
func (c *Client) upload(ctx context.Context, url, payload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload returned status %d", resp.StatusCode)
	}
	return nil
}
