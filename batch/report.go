package batch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	json "github.com/goccy/go-json"
	"github.com/gurre/awscmdlet/aws"
	"github.com/gurre/awscmdlet/blob"
	"github.com/gurre/awscmdlet/metrics"
)

// ReportUploader stores the final report.
type ReportUploader interface {
	UploadReport(ctx context.Context, uri string, report metrics.Report) error
}

// S3ReportUploader writes the report as a JSON object.
type S3ReportUploader struct {
	client aws.S3Client
}

func NewS3ReportUploader(client aws.S3Client) *S3ReportUploader {
	return &S3ReportUploader{client: client}
}

func (u *S3ReportUploader) UploadReport(ctx context.Context, uri string, report metrics.Report) error {
	bucket, key, err := blob.ParseS3URI(uri)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	contentType := "application/json"
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}
	return nil
}
