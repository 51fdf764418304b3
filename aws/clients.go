package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/amplifyuibuilder"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Settings selects the account, region and endpoint the clients talk to.
type Settings struct {
	Region      string
	Profile     string
	EndpointURL string // overrides every service endpoint, e.g. a local emulator
	AccessKeyID string // static credentials; both or neither
	SecretKey   string
	MaxAttempts int
}

// Clients bundles every SDK client used by the commands. Fields are typed as
// the package interfaces so tests can substitute mocks.
type Clients struct {
	AmplifyUIBuilder AmplifyUIBuilderClient
	MedicalImaging   MedicalImagingClient
	DynamoDB         DynamoDBClient
	S3               S3Client
	IAM              IAMClient
	STS              STSClient

	// RawS3 is the concrete client, required by the batch input streamer.
	RawS3 *s3.Client
}

// LoadConfig resolves the shared SDK configuration for s.
func LoadConfig(ctx context.Context, s Settings) (awssdk.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}
	if s.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(s.Profile))
	}
	if s.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretKey, "")))
	}
	if s.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryer(func() awssdk.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), s.MaxAttempts)
		}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewClients builds every client from cfg. A non-empty endpoint replaces the
// resolved endpoint of each service.
func NewClients(cfg awssdk.Config, endpoint string) *Clients {
	var base *string
	if endpoint != "" {
		base = awssdk.String(endpoint)
	}

	rawS3 := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = base
		o.UsePathStyle = base != nil
	})
	return &Clients{
		AmplifyUIBuilder: amplifyuibuilder.NewFromConfig(cfg, func(o *amplifyuibuilder.Options) { o.BaseEndpoint = base }),
		MedicalImaging:   medicalimaging.NewFromConfig(cfg, func(o *medicalimaging.Options) { o.BaseEndpoint = base }),
		DynamoDB:         dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) { o.BaseEndpoint = base }),
		S3:               rawS3,
		IAM:              iam.NewFromConfig(cfg, func(o *iam.Options) { o.BaseEndpoint = base }),
		STS:              sts.NewFromConfig(cfg, func(o *sts.Options) { o.BaseEndpoint = base }),
		RawS3:            rawS3,
	}
}
