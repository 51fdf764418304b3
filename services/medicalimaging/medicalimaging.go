// Package medicalimaging declares the AWS HealthImaging commands.
//
// GetImageSetMetadata and GetImageFrame return their payload as a stream; the
// pipeline writes it to the caller's sink and the default selection reports
// the content type.
package medicalimaging

import (
	"context"
	"io"

	sdk "github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging/types"
	"github.com/gurre/awscmdlet/aws"
	"github.com/gurre/awscmdlet/operation"
	"github.com/gurre/awscmdlet/schema"
)

// Service is the command group name.
const Service = "medicalimaging"

type client = aws.MedicalImagingClient

func action(name string) string { return "medical-imaging:" + name }

var datastoreID = schema.Param{Name: "DatastoreId", Path: "DatastoreId", Kind: schema.String, Required: true, Help: "data store ID"}

func imageSet() []schema.Param {
	return []schema.Param{
		datastoreID,
		{Name: "ImageSetId", Path: "ImageSetId", Kind: schema.String, Required: true, Help: "image set ID"},
	}
}

func paging(params ...schema.Param) []schema.Param {
	return append(params,
		schema.Param{Name: "MaxResult", Aliases: []string{"MaxItems"}, Path: "MaxResults", Kind: schema.Int},
		schema.Param{Name: "NextToken", Path: "NextToken", Kind: schema.String},
	)
}

var (
	createDatastore = operation.New(operation.Spec{
		Service:   Service,
		Name:      "CreateDatastore",
		IAMAction: action("CreateDatastore"),
		Summary:   "Creates a data store.",
		Mutating:  true,
		Params: []schema.Param{
			{Name: "DatastoreName", Path: "DatastoreName", Kind: schema.String},
			{Name: "KmsKeyArn", Path: "KmsKeyArn", Kind: schema.String, Help: "customer managed key"},
			{Name: "Tag", Path: "Tags", Kind: schema.StringMap},
			{Name: "ClientToken", Path: "ClientToken", Kind: schema.String, Help: "idempotency token"},
		},
		PassThrough: "DatastoreName",
		Target:      "DatastoreName",
	}, client.CreateDatastore)

	deleteDatastore = operation.New(operation.Spec{
		Service:     Service,
		Name:        "DeleteDatastore",
		IAMAction:   action("DeleteDatastore"),
		Summary:     "Deletes a data store.",
		Mutating:    true,
		Params:      []schema.Param{datastoreID},
		PassThrough: "DatastoreId",
		Target:      "DatastoreId",
	}, client.DeleteDatastore)

	getDatastore = operation.New(operation.Spec{
		Service:     Service,
		Name:        "GetDatastore",
		IAMAction:   action("GetDatastore"),
		Summary:     "Returns the properties of a data store.",
		Params:      []schema.Param{datastoreID},
		Select:      "DatastoreProperties",
		PassThrough: "DatastoreId",
	}, client.GetDatastore)

	listDatastores = operation.New(operation.Spec{
		Service:   Service,
		Name:      "ListDatastores",
		IAMAction: action("ListDatastores"),
		Summary:   "Lists the data stores of the account.",
		Params: paging(
			schema.Param{Name: "DatastoreStatus", Path: "DatastoreStatus", Kind: schema.String, Help: "filter by status"},
		),
		Select: "DatastoreSummaries",
	}, client.ListDatastores)

	copyImageSet = operation.New(operation.Spec{
		Service:   Service,
		Name:      "CopyImageSet",
		IAMAction: action("CopyImageSet"),
		Summary:   "Copies an image set, optionally into an existing destination image set.",
		Mutating:  true,
		Params: []schema.Param{
			datastoreID,
			{Name: "SourceImageSetId", Path: "SourceImageSetId", Kind: schema.String, Required: true},
			{Name: "SourceImageSet_LatestVersionId", Path: "CopyImageSetInformation.SourceImageSet.LatestVersionId", Kind: schema.String, Required: true},
			{Name: "DICOMCopies_CopiableAttribute", Aliases: []string{"CopiableAttributes"}, Path: "CopyImageSetInformation.SourceImageSet.DICOMCopies.CopiableAttributes", Kind: schema.String, Help: "JSON of the DICOM attributes to copy"},
			{Name: "DestinationImageSet_ImageSetId", Path: "CopyImageSetInformation.DestinationImageSet.ImageSetId", Kind: schema.String},
			{Name: "DestinationImageSet_LatestVersionId", Path: "CopyImageSetInformation.DestinationImageSet.LatestVersionId", Kind: schema.String},
			{Name: "Force", Path: "Force", Kind: schema.Bool, Help: "copy even when attributes differ"},
		},
		PassThrough: "SourceImageSetId",
		Target:      "SourceImageSetId",
	}, client.CopyImageSet)

	deleteImageSet = operation.New(operation.Spec{
		Service:     Service,
		Name:        "DeleteImageSet",
		IAMAction:   action("DeleteImageSet"),
		Summary:     "Deletes an image set.",
		Mutating:    true,
		Params:      imageSet(),
		PassThrough: "ImageSetId",
		Target:      "ImageSetId",
	}, client.DeleteImageSet)

	getImageSet = operation.New(operation.Spec{
		Service:   Service,
		Name:      "GetImageSet",
		IAMAction: action("GetImageSet"),
		Summary:   "Returns the properties of an image set.",
		Params: append(imageSet(),
			schema.Param{Name: "VersionId", Path: "VersionId", Kind: schema.String}),
		PassThrough: "ImageSetId",
	}, client.GetImageSet)

	getImageSetMetadata = operation.New(operation.Spec{
		Service:   Service,
		Name:      "GetImageSetMetadata",
		IAMAction: action("GetImageSetMetadata"),
		Summary:   "Streams the metadata document of an image set.",
		Params: append(imageSet(),
			schema.Param{Name: "VersionId", Path: "VersionId", Kind: schema.String}),
		Select:      "ContentType",
		PassThrough: "ImageSetId",
	}, client.GetImageSetMetadata).WithStream(func(o *sdk.GetImageSetMetadataOutput) *io.ReadCloser {
		return &o.ImageSetMetadataBlob
	})

	getImageFrame = operation.New(operation.Spec{
		Service:   Service,
		Name:      "GetImageFrame",
		IAMAction: action("GetImageFrame"),
		Summary:   "Streams one image frame (pixel data) of an image set.",
		Params: append(imageSet(),
			schema.Param{Name: "ImageFrameInformation_ImageFrameId", Aliases: []string{"ImageFrameId"}, Path: "ImageFrameInformation.ImageFrameId", Kind: schema.String, Required: true}),
		Select:      "ContentType",
		PassThrough: "ImageSetId",
	}, client.GetImageFrame).WithStream(func(o *sdk.GetImageFrameOutput) *io.ReadCloser {
		return &o.ImageFrameBlob
	})

	listImageSetVersions = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ListImageSetVersions",
		IAMAction:   action("ListImageSetVersions"),
		Summary:     "Lists the versions of an image set.",
		Params:      paging(imageSet()...),
		Select:      "ImageSetPropertiesList",
		PassThrough: "ImageSetId",
	}, client.ListImageSetVersions)

	searchImageSets = operation.New(operation.Spec{
		Service:   Service,
		Name:      "SearchImageSets",
		IAMAction: action("SearchImageSets"),
		Summary:   "Searches the image sets of a data store.",
		Params: paging(
			datastoreID,
			schema.Param{Name: "Sort_SortField", Path: "SearchCriteria.Sort.SortField", Kind: schema.String},
			schema.Param{Name: "Sort_SortOrder", Path: "SearchCriteria.Sort.SortOrder", Kind: schema.String},
		),
		Select:      "ImageSetsMetadataSummaries",
		PassThrough: "DatastoreId",
	}, client.SearchImageSets)

	updateImageSetMetadata = operation.New(operation.Spec{
		Service:   Service,
		Name:      "UpdateImageSetMetadata",
		IAMAction: action("UpdateImageSetMetadata"),
		Summary:   "Updates the metadata of an image set or reverts it to an earlier version.",
		Mutating:  true,
		Params: append(imageSet(),
			schema.Param{Name: "LatestVersionId", Path: "LatestVersionId", Kind: schema.String, Required: true},
			schema.Param{Name: "DICOMUpdates_RemovableAttribute", Path: "UpdateImageSetMetadataUpdates.DICOMUpdates.RemovableAttributes", Kind: schema.Blob, Help: "attributes to remove (fileb://, s3:// or inline JSON)"},
			schema.Param{Name: "DICOMUpdates_UpdatableAttribute", Path: "UpdateImageSetMetadataUpdates.DICOMUpdates.UpdatableAttributes", Kind: schema.Blob, Help: "attributes to update (fileb://, s3:// or inline JSON)"},
			schema.Param{Name: "UpdateImageSetMetadataUpdates_RevertToVersionId", Aliases: []string{"RevertToVersionId"}, Path: "UpdateImageSetMetadataUpdates.RevertToVersionId", Kind: schema.String},
			schema.Param{Name: "Force", Path: "Force", Kind: schema.Bool},
		),
		Unions: []schema.Union{{
			Path: "UpdateImageSetMetadataUpdates",
			Members: []schema.Member{
				{Name: "DICOMUpdates", Proto: &types.MetadataUpdatesMemberDICOMUpdates{}},
				{Name: "RevertToVersionId", Proto: &types.MetadataUpdatesMemberRevertToVersionId{}},
			},
		}},
		PassThrough: "ImageSetId",
		Target:      "ImageSetId",
	}, client.UpdateImageSetMetadata)

	startDICOMImportJob = operation.New(operation.Spec{
		Service:   Service,
		Name:      "StartDICOMImportJob",
		IAMAction: action("StartDICOMImportJob"),
		Summary:   "Starts importing DICOM files from S3 into a data store.",
		Mutating:  true,
		Params: []schema.Param{
			datastoreID,
			{Name: "DataAccessRoleArn", Path: "DataAccessRoleArn", Kind: schema.String, Required: true},
			{Name: "InputS3Uri", Path: "InputS3Uri", Kind: schema.String, Required: true},
			{Name: "OutputS3Uri", Path: "OutputS3Uri", Kind: schema.String, Required: true},
			{Name: "JobName", Path: "JobName", Kind: schema.String},
			{Name: "InputOwnerAccountId", Path: "InputOwnerAccountId", Kind: schema.String},
			{Name: "ClientToken", Path: "ClientToken", Kind: schema.String, Help: "idempotency token"},
		},
		PassThrough: "DatastoreId",
		Target:      "DatastoreId",
	}, client.StartDICOMImportJob)

	getDICOMImportJob = operation.New(operation.Spec{
		Service:   Service,
		Name:      "GetDICOMImportJob",
		IAMAction: action("GetDICOMImportJob"),
		Summary:   "Returns the properties of an import job.",
		Params: []schema.Param{
			datastoreID,
			{Name: "JobId", Path: "JobId", Kind: schema.String, Required: true},
		},
		Select:      "JobProperties",
		PassThrough: "JobId",
	}, client.GetDICOMImportJob)

	listDICOMImportJobs = operation.New(operation.Spec{
		Service:   Service,
		Name:      "ListDICOMImportJobs",
		IAMAction: action("ListDICOMImportJobs"),
		Summary:   "Lists the import jobs of a data store.",
		Params: paging(
			datastoreID,
			schema.Param{Name: "JobStatus", Path: "JobStatus", Kind: schema.String},
		),
		Select:      "JobSummaries",
		PassThrough: "DatastoreId",
	}, client.ListDICOMImportJobs)

	tagResource = operation.New(operation.Spec{
		Service:   Service,
		Name:      "TagResource",
		IAMAction: action("TagResource"),
		Summary:   "Adds tags to a data store or image set.",
		Mutating:  true,
		Params: []schema.Param{
			{Name: "ResourceArn", Path: "ResourceArn", Kind: schema.String, Required: true},
			{Name: "Tag", Path: "Tags", Kind: schema.StringMap, Required: true},
		},
		PassThrough: "ResourceArn",
		Target:      "ResourceArn",
	}, client.TagResource)

	untagResource = operation.New(operation.Spec{
		Service:   Service,
		Name:      "UntagResource",
		IAMAction: action("UntagResource"),
		Summary:   "Removes tags from a data store or image set.",
		Mutating:  true,
		Params: []schema.Param{
			{Name: "ResourceArn", Path: "ResourceArn", Kind: schema.String, Required: true},
			{Name: "TagKey", Path: "TagKeys", Kind: schema.StringList, Required: true},
		},
		PassThrough: "ResourceArn",
		Target:      "ResourceArn",
	}, client.UntagResource)

	listTagsForResource = operation.New(operation.Spec{
		Service:     Service,
		Name:        "ListTagsForResource",
		IAMAction:   action("ListTagsForResource"),
		Summary:     "Lists the tags of a data store or image set.",
		Params:      []schema.Param{{Name: "ResourceArn", Path: "ResourceArn", Kind: schema.String, Required: true}},
		Select:      "Tags",
		PassThrough: "ResourceArn",
	}, client.ListTagsForResource)
)

// Commands binds every operation to the client returned by provider.
func Commands(provider func(context.Context) (aws.MedicalImagingClient, error)) []operation.Command {
	return []operation.Command{
		createDatastore.Bind(provider),
		deleteDatastore.Bind(provider),
		getDatastore.Bind(provider),
		listDatastores.Bind(provider),
		copyImageSet.Bind(provider),
		deleteImageSet.Bind(provider),
		getImageSet.Bind(provider),
		getImageSetMetadata.Bind(provider),
		getImageFrame.Bind(provider),
		listImageSetVersions.Bind(provider),
		searchImageSets.Bind(provider),
		updateImageSetMetadata.Bind(provider),
		startDICOMImportJob.Bind(provider),
		getDICOMImportJob.Bind(provider),
		listDICOMImportJobs.Bind(provider),
		tagResource.Bind(provider),
		untagResource.Bind(provider),
		listTagsForResource.Bind(provider),
	}
}
