package cognito

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/google/uuid"
)

// trustPolicy lets the user pool service assume the import role.
const trustPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"Service": "cognito-idp.amazonaws.com"},
      "Action": "sts:AssumeRole"
    }
  ]
}`

// EnsureImportRole makes sure the client holds a CloudWatch-logs role
// ARN for import jobs, creating a role with an inline logging policy
// when none was supplied.
func (c *Client) EnsureImportRole(ctx context.Context) error {
	if c.importRoleARN != "" {
		return nil
	}
	c.log.Infof("No IAM role ARN passed, creating one")

	region, account, err := parsePoolARN(c.poolARN)
	if err != nil {
		return err
	}

	name := "poolsync-import-" + uuid.NewString()
	role, err := c.iam.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		Description:              aws.String("Automated role for importing users into a user pool"),
		AssumeRolePolicyDocument: aws.String(trustPolicy),
		MaxSessionDuration:       aws.Int32(3600),
	})
	if err != nil {
		return fmt.Errorf("create import role: %w", err)
	}
	if role.Role == nil || role.Role.Arn == nil {
		return fmt.Errorf("create import role: no role returned")
	}
	c.log.Infof("Created IAM role: %s", *role.Role.Arn)

	policy, err := logsPolicy(region, account)
	if err != nil {
		return err
	}
	_, err = c.iam.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(name),
		PolicyName:     aws.String(name),
		PolicyDocument: aws.String(policy),
	})
	if err != nil {
		return fmt.Errorf("attach import role policy: %w", err)
	}
	c.log.Infof("Attached policy to role")

	c.importRoleARN = *role.Role.Arn
	return nil
}

// logsPolicy grants the import job write access to its log group.
func logsPolicy(region, account string) (string, error) {
	doc := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect": "Allow",
				"Action": []string{
					"logs:CreateLogGroup",
					"logs:CreateLogStream",
					"logs:DescribeLogStreams",
					"logs:PutLogEvents",
				},
				"Resource": []string{
					fmt.Sprintf("arn:aws:logs:%s:%s:log-group:/aws/cognito/*", region, account),
				},
			},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal logs policy: %w", err)
	}
	return string(data), nil
}

// parsePoolARN extracts the region and account from a user pool ARN,
// e.g. arn:aws:cognito-idp:eu-west-1:000000000000:userpool/eu-west-1_X.
func parsePoolARN(arn string) (region, account string, err error) {
	parts := strings.Split(arn, ":")
	if len(parts) < 6 || parts[3] == "" || parts[4] == "" {
		return "", "", fmt.Errorf("malformed user pool ARN %q", arn)
	}
	return parts[3], parts[4], nil
}
