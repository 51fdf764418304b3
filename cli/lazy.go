package cli

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gurre/awscmdlet/aws"
	"github.com/spf13/pflag"
)

// lazyS3 connects on the first S3 call, so blob parameters read from local
// files never need credentials.
type lazyS3 struct {
	app *App
}

var _ aws.S3Client = (*lazyS3)(nil)

func (l *lazyS3) client(ctx context.Context) (aws.S3Client, error) {
	c, err := l.app.awsClients(ctx)
	if err != nil {
		return nil, err
	}
	return c.S3, nil
}

func (l *lazyS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	c, err := l.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetObject(ctx, params, optFns...)
}

func (l *lazyS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c, err := l.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.PutObject(ctx, params, optFns...)
}

func (l *lazyS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	c, err := l.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.HeadObject(ctx, params, optFns...)
}

func (a *App) bind(f *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
