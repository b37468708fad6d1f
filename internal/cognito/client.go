// Package cognito wraps the user pool API surface poolsync needs:
// connecting to a pool, listing its users, and driving bulk import
// jobs. The validation and transformation of user records lives in
// internal/schema; this package only moves data.
package cognito

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"poolsync/internal/console"
	"poolsync/internal/schema"
)

// DefaultRegion is used when neither the flag, the config file nor the
// environment names one.
const DefaultRegion = "eu-west-1"

// UserPoolAPI is the slice of the cognito-idp API the client uses.
// Narrow on purpose so tests can fake it.
type UserPoolAPI interface {
	DescribeUserPool(ctx context.Context, in *cip.DescribeUserPoolInput, optFns ...func(*cip.Options)) (*cip.DescribeUserPoolOutput, error)
	ListUsers(ctx context.Context, in *cip.ListUsersInput, optFns ...func(*cip.Options)) (*cip.ListUsersOutput, error)
	CreateUserImportJob(ctx context.Context, in *cip.CreateUserImportJobInput, optFns ...func(*cip.Options)) (*cip.CreateUserImportJobOutput, error)
	StartUserImportJob(ctx context.Context, in *cip.StartUserImportJobInput, optFns ...func(*cip.Options)) (*cip.StartUserImportJobOutput, error)
}

// RoleAPI is the slice of the IAM API used for import role creation.
type RoleAPI interface {
	CreateRole(ctx context.Context, in *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	PutRolePolicy(ctx context.Context, in *iam.PutRolePolicyInput, optFns ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error)
}

// Options configures a Client.
type Options struct {
	UserPoolID string
	Region     string
	Profile    string
	Verbose    bool

	// ImportRoleARN is the CloudWatch-logs role passed to import jobs.
	// When empty, Connect provisions one.
	ImportRoleARN string
}

// Client talks to one user pool.
type Client struct {
	api  UserPoolAPI
	iam  RoleAPI
	http *http.Client
	log  *console.Logger

	opts          Options
	userPoolID    string
	importRoleARN string
	poolARN       string
	custom        schema.CustomAttributes
}

// New validates options and builds an unconnected client.
func New(opts Options) (*Client, error) {
	if opts.UserPoolID == "" {
		return nil, fmt.Errorf("user pool ID is required")
	}
	return &Client{
		http:          http.DefaultClient,
		log:           console.New(opts.Verbose),
		opts:          opts,
		userPoolID:    opts.UserPoolID,
		importRoleARN: opts.ImportRoleARN,
	}, nil
}

// Connect resolves AWS credentials, verifies the pool exists, and
// discovers its custom attributes. Discovery happens exactly once per
// connection; the resulting schema value is immutable afterwards.
func (c *Client) Connect(ctx context.Context) error {
	var loadOpts []func(*awsconfig.LoadOptions) error
	region := c.opts.Region
	if region == "" {
		region = DefaultRegion
	}
	loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	if c.opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(c.opts.Profile))
	}
	c.log.Infof("Using profile: %s", profileName(c.opts.Profile))
	c.log.Infof("Using region: %s", region)

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	c.api = cip.NewFromConfig(cfg)
	c.iam = iam.NewFromConfig(cfg)

	return c.connect(ctx)
}

// connect performs the pool handshake against whatever API the client
// holds. Split from Connect so tests can run it against fakes.
func (c *Client) connect(ctx context.Context) error {
	pool, err := c.api.DescribeUserPool(ctx, &cip.DescribeUserPoolInput{
		UserPoolId: aws.String(c.userPoolID),
	})
	if err != nil {
		return fmt.Errorf("describe user pool %s: %w", c.userPoolID, err)
	}
	if pool.UserPool == nil {
		return fmt.Errorf("user pool %s does not exist", c.userPoolID)
	}
	c.log.Infof("Found user pool")
	c.poolARN = aws.ToString(pool.UserPool.Arn)

	var names []string
	for _, attr := range pool.UserPool.SchemaAttributes {
		if attr.Name != nil {
			names = append(names, *attr.Name)
		}
	}
	c.custom = schema.DiscoverCustomAttributes(names)
	if len(c.custom) > 0 {
		c.log.Infof("Discovered %d custom attributes", len(c.custom))
	}
	return nil
}

// CustomAttributes returns the attributes discovered at connect time.
// Callers may narrow their types before building the export schema.
func (c *Client) CustomAttributes() schema.CustomAttributes {
	return c.custom
}

func profileName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}
