// Package aws defines the narrow client interfaces the rest of the module
// depends on. Every interface is satisfied by the corresponding SDK client and
// by the hand-written mocks in integration/mock.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/amplifyuibuilder"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AmplifyUIBuilderClient covers the AmplifyUIBuilder operations exposed as commands.
type AmplifyUIBuilderClient interface {
	CreateForm(ctx context.Context, params *amplifyuibuilder.CreateFormInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.CreateFormOutput, error)
	UpdateForm(ctx context.Context, params *amplifyuibuilder.UpdateFormInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.UpdateFormOutput, error)
	DeleteForm(ctx context.Context, params *amplifyuibuilder.DeleteFormInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.DeleteFormOutput, error)
	GetForm(ctx context.Context, params *amplifyuibuilder.GetFormInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.GetFormOutput, error)
	ListForms(ctx context.Context, params *amplifyuibuilder.ListFormsInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ListFormsOutput, error)
	ExportForms(ctx context.Context, params *amplifyuibuilder.ExportFormsInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ExportFormsOutput, error)

	CreateTheme(ctx context.Context, params *amplifyuibuilder.CreateThemeInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.CreateThemeOutput, error)
	UpdateTheme(ctx context.Context, params *amplifyuibuilder.UpdateThemeInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.UpdateThemeOutput, error)
	DeleteTheme(ctx context.Context, params *amplifyuibuilder.DeleteThemeInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.DeleteThemeOutput, error)
	GetTheme(ctx context.Context, params *amplifyuibuilder.GetThemeInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.GetThemeOutput, error)
	ListThemes(ctx context.Context, params *amplifyuibuilder.ListThemesInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ListThemesOutput, error)
	ExportThemes(ctx context.Context, params *amplifyuibuilder.ExportThemesInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ExportThemesOutput, error)

	DeleteComponent(ctx context.Context, params *amplifyuibuilder.DeleteComponentInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.DeleteComponentOutput, error)
	GetComponent(ctx context.Context, params *amplifyuibuilder.GetComponentInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.GetComponentOutput, error)
	ListComponents(ctx context.Context, params *amplifyuibuilder.ListComponentsInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ListComponentsOutput, error)
	ExportComponents(ctx context.Context, params *amplifyuibuilder.ExportComponentsInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ExportComponentsOutput, error)

	GetMetadata(ctx context.Context, params *amplifyuibuilder.GetMetadataInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.GetMetadataOutput, error)
	PutMetadataFlag(ctx context.Context, params *amplifyuibuilder.PutMetadataFlagInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.PutMetadataFlagOutput, error)

	GetCodegenJob(ctx context.Context, params *amplifyuibuilder.GetCodegenJobInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.GetCodegenJobOutput, error)
	ListCodegenJobs(ctx context.Context, params *amplifyuibuilder.ListCodegenJobsInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ListCodegenJobsOutput, error)

	TagResource(ctx context.Context, params *amplifyuibuilder.TagResourceInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.TagResourceOutput, error)
	UntagResource(ctx context.Context, params *amplifyuibuilder.UntagResourceInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.UntagResourceOutput, error)
	ListTagsForResource(ctx context.Context, params *amplifyuibuilder.ListTagsForResourceInput, optFns ...func(*amplifyuibuilder.Options)) (*amplifyuibuilder.ListTagsForResourceOutput, error)
}

// MedicalImagingClient covers the HealthImaging operations exposed as commands.
type MedicalImagingClient interface {
	CreateDatastore(ctx context.Context, params *medicalimaging.CreateDatastoreInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.CreateDatastoreOutput, error)
	DeleteDatastore(ctx context.Context, params *medicalimaging.DeleteDatastoreInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.DeleteDatastoreOutput, error)
	GetDatastore(ctx context.Context, params *medicalimaging.GetDatastoreInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetDatastoreOutput, error)
	ListDatastores(ctx context.Context, params *medicalimaging.ListDatastoresInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.ListDatastoresOutput, error)

	CopyImageSet(ctx context.Context, params *medicalimaging.CopyImageSetInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.CopyImageSetOutput, error)
	DeleteImageSet(ctx context.Context, params *medicalimaging.DeleteImageSetInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.DeleteImageSetOutput, error)
	GetImageSet(ctx context.Context, params *medicalimaging.GetImageSetInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetImageSetOutput, error)
	GetImageSetMetadata(ctx context.Context, params *medicalimaging.GetImageSetMetadataInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetImageSetMetadataOutput, error)
	GetImageFrame(ctx context.Context, params *medicalimaging.GetImageFrameInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetImageFrameOutput, error)
	ListImageSetVersions(ctx context.Context, params *medicalimaging.ListImageSetVersionsInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.ListImageSetVersionsOutput, error)
	SearchImageSets(ctx context.Context, params *medicalimaging.SearchImageSetsInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.SearchImageSetsOutput, error)
	UpdateImageSetMetadata(ctx context.Context, params *medicalimaging.UpdateImageSetMetadataInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.UpdateImageSetMetadataOutput, error)

	StartDICOMImportJob(ctx context.Context, params *medicalimaging.StartDICOMImportJobInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.StartDICOMImportJobOutput, error)
	GetDICOMImportJob(ctx context.Context, params *medicalimaging.GetDICOMImportJobInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetDICOMImportJobOutput, error)
	ListDICOMImportJobs(ctx context.Context, params *medicalimaging.ListDICOMImportJobsInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.ListDICOMImportJobsOutput, error)

	TagResource(ctx context.Context, params *medicalimaging.TagResourceInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.TagResourceOutput, error)
	UntagResource(ctx context.Context, params *medicalimaging.UntagResourceInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.UntagResourceOutput, error)
	ListTagsForResource(ctx context.Context, params *medicalimaging.ListTagsForResourceInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.ListTagsForResourceOutput, error)
}

// DynamoDBClient is used by the invocation journal.
type DynamoDBClient interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// S3Client reads blob parameters and batch input, and stores checkpoints
// and reports.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// IAMClient simulates the caller's permissions before an invocation.
type IAMClient interface {
	SimulatePrincipalPolicy(ctx context.Context, params *iam.SimulatePrincipalPolicyInput, optFns ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error)
}

// STSClient resolves the calling principal.
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

var (
	_ AmplifyUIBuilderClient = (*amplifyuibuilder.Client)(nil)
	_ MedicalImagingClient   = (*medicalimaging.Client)(nil)
	_ DynamoDBClient         = (*dynamodb.Client)(nil)
	_ S3Client               = (*s3.Client)(nil)
	_ IAMClient              = (*iam.Client)(nil)
	_ STSClient              = (*sts.Client)(nil)
)
