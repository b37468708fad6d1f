package cognito

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"poolsync/internal/csvfile"
	"poolsync/internal/schema"
)

// listPageSize is the API ceiling on one ListUsers page.
const listPageSize = 60

// ExportUsers lists up to limit users from the pool and validates each
// through the export schema, then re-validates the result as an import
// row so the emitted CSV can be fed straight back into an import job.
// Users that fail validation are logged and skipped; a directory
// listing with a handful of malformed legacy users should still make
// forward progress.
func (c *Client) ExportUsers(ctx context.Context, exportSchema schema.ExportSchema, limit int) ([]schema.ImportRecord, error) {
	var records []schema.ImportRecord
	var paginationToken *string

	for len(records) < limit {
		in := &cip.ListUsersInput{
			UserPoolId:      aws.String(c.userPoolID),
			Limit:           aws.Int32(int32(min(listPageSize, limit-len(records)))),
			PaginationToken: paginationToken,
		}
		page, err := c.api.ListUsers(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}

		for _, user := range page.Users {
			if len(records) >= limit {
				break
			}
			record, ok := c.exportUser(exportSchema, user)
			if ok {
				records = append(records, record)
			}
		}

		paginationToken = page.PaginationToken
		if paginationToken == nil {
			break
		}
	}

	c.log.Infof("Total users exported: %d", len(records))
	return records, nil
}

// exportUser validates one listed user into an import row. Returns
// false when the user must be skipped.
func (c *Client) exportUser(exportSchema schema.ExportSchema, user types.UserType) (schema.ImportRecord, bool) {
	attrs, err := exportSchema.ParseAttributes(convertAttributes(user.Attributes))
	if err != nil {
		c.log.Warnf("Skipping: attributes not valid for user %s: %v", aws.ToString(user.Username), err)
		return schema.ImportRecord{}, false
	}
	if user.Username == nil || *user.Username == "" {
		c.log.Warnf("Skipping: no username found for user %s/%s/%s", attrs.Name, attrs.Email, attrs.PhoneNumber)
		return schema.ImportRecord{}, false
	}

	updatedAt := time.Now()
	if user.UserLastModifiedDate != nil {
		updatedAt = *user.UserLastModifiedDate
	}

	record, err := schema.ParseImportRecord(importRow(attrs, *user.Username, updatedAt))
	if err != nil {
		c.log.Warnf("Skipping: exported user data is not valid: %v", err)
		return schema.ImportRecord{}, false
	}
	return record, true
}

// convertAttributes maps the SDK attribute pairs onto the engine's
// wire type.
func convertAttributes(attrs []types.AttributeType) []schema.Attribute {
	pairs := make([]schema.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		pairs = append(pairs, schema.Attribute{
			Name:     aws.ToString(attr.Name),
			Value:    aws.ToString(attr.Value),
			HasValue: attr.Value != nil,
		})
	}
	return pairs
}

// importRow shapes an export record into the raw mapping the import
// schema validates. MFA state is not listable, so exported users
// default it off.
func importRow(attrs schema.ExportRecord, username string, updatedAt time.Time) map[string]any {
	row := map[string]any{
		schema.FieldUsername:    username,
		schema.FieldMFAEnabled:  false,
		"name":                  attrs.Name,
		"given_name":            attrs.GivenName,
		"family_name":           attrs.FamilyName,
		"middle_name":           attrs.MiddleName,
		"nickname":              attrs.Nickname,
		"preferred_username":    attrs.PreferredUsername,
		"profile":               attrs.Profile,
		"picture":               attrs.Picture,
		"website":               attrs.Website,
		"gender":                attrs.Gender,
		"birthdate":             attrs.Birthdate,
		"zoneinfo":              attrs.ZoneInfo,
		"locale":                attrs.Locale,
		"address":               attrs.Address,
		"updated_at":            updatedAt,
		"email":                 attrs.Email,
		"email_verified":        attrs.EmailVerified,
		"phone_number":          attrs.PhoneNumber,
		"phone_number_verified": attrs.PhoneNumberVerified,
	}
	for k, v := range attrs.Custom {
		row[k] = v
	}
	return row
}

// Headers returns the CSV column order for a record set: the canonical
// headers followed by every custom column present, sorted by name.
func Headers(records []schema.ImportRecord) []string {
	seen := make(map[string]struct{})
	var custom []string
	for _, record := range records {
		for key := range record.Custom {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			custom = append(custom, key)
		}
	}
	sort.Strings(custom)
	return append(append([]string{}, schema.ImportHeaders...), custom...)
}

// WriteCSV serializes records to a delimited-text file with a header
// row and quoting disabled.
func WriteCSV(path string, records []schema.ImportRecord) error {
	header := Headers(records)
	rows := make([][]string, len(records))
	for i, record := range records {
		row := make([]string, len(header))
		for j, field := range header {
			row[j] = record.Cell(field)
		}
		rows[i] = row
	}
	return csvfile.WriteFile(path, header, rows)
}
