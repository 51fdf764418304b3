package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging/types"
	awsx "github.com/gurre/awscmdlet/aws"
)

// ImageSet is a stored image set of the MedicalImaging mock.
type ImageSet struct {
	ID        string
	Version   string
	State     types.ImageSetState
	Metadata  []byte
	Updates   []types.MetadataUpdates
	CopiedTo  []string
	Datastore string
}

// MedicalImagingClient is an in-memory HealthImaging service covering data
// stores and image sets. Operations it does not implement panic through the
// nil embedded interface.
type MedicalImagingClient struct {
	awsx.MedicalImagingClient

	mu         sync.Mutex
	datastores map[string]*types.DatastoreProperties
	imageSets  map[string]*ImageSet
	nextID     int
	calls      []string
	copies     []medicalimaging.CopyImageSetInput
}

var _ awsx.MedicalImagingClient = (*MedicalImagingClient)(nil)

func NewMedicalImagingClient() *MedicalImagingClient {
	return &MedicalImagingClient{
		datastores: make(map[string]*types.DatastoreProperties),
		imageSets:  make(map[string]*ImageSet),
	}
}

// Calls returns the names of the operations invoked, in order.
func (m *MedicalImagingClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// AddImageSet stores an image set with metadata in datastore.
func (m *MedicalImagingClient) AddImageSet(datastore, id string, metadata []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageSets[datastore+"/"+id] = &ImageSet{
		ID:        id,
		Version:   "1",
		State:     types.ImageSetStateActive,
		Metadata:  metadata,
		Datastore: datastore,
	}
}

// ImageSet returns a copy of the stored image set.
func (m *MedicalImagingClient) ImageSet(datastore, id string) (ImageSet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.imageSets[datastore+"/"+id]
	if !ok {
		return ImageSet{}, false
	}
	return *s, true
}

// Copies returns the CopyImageSet inputs received.
func (m *MedicalImagingClient) Copies() []medicalimaging.CopyImageSetInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]medicalimaging.CopyImageSetInput(nil), m.copies...)
}

func (m *MedicalImagingClient) record(op string) {
	m.calls = append(m.calls, op)
}

func notFound(kind, id string) error {
	return &types.ResourceNotFoundException{Message: aws.String(fmt.Sprintf("%s %s not found", kind, id))}
}

func (m *MedicalImagingClient) imageSet(datastore, id *string) (*ImageSet, error) {
	s, ok := m.imageSets[aws.ToString(datastore)+"/"+aws.ToString(id)]
	if !ok || s.State == types.ImageSetStateDeleted {
		return nil, notFound("image set", aws.ToString(id))
	}
	return s, nil
}

func (m *MedicalImagingClient) CreateDatastore(ctx context.Context, params *medicalimaging.CreateDatastoreInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.CreateDatastoreOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateDatastore")

	m.nextID++
	id := fmt.Sprintf("ds-%04d", m.nextID)
	m.datastores[id] = &types.DatastoreProperties{
		DatastoreId:     aws.String(id),
		DatastoreName:   params.DatastoreName,
		DatastoreStatus: types.DatastoreStatusActive,
		KmsKeyArn:       params.KmsKeyArn,
	}
	return &medicalimaging.CreateDatastoreOutput{
		DatastoreId:     aws.String(id),
		DatastoreStatus: types.DatastoreStatusCreating,
	}, nil
}

func (m *MedicalImagingClient) GetDatastore(ctx context.Context, params *medicalimaging.GetDatastoreInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetDatastoreOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetDatastore")

	ds, ok := m.datastores[aws.ToString(params.DatastoreId)]
	if !ok {
		return nil, notFound("data store", aws.ToString(params.DatastoreId))
	}
	props := *ds
	return &medicalimaging.GetDatastoreOutput{DatastoreProperties: &props}, nil
}

func (m *MedicalImagingClient) ListDatastores(ctx context.Context, params *medicalimaging.ListDatastoresInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.ListDatastoresOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListDatastores")

	ids := make([]string, 0, len(m.datastores))
	for id := range m.datastores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := &medicalimaging.ListDatastoresOutput{}
	for _, id := range ids {
		ds := m.datastores[id]
		if params.DatastoreStatus != "" && ds.DatastoreStatus != params.DatastoreStatus {
			continue
		}
		out.DatastoreSummaries = append(out.DatastoreSummaries, types.DatastoreSummary{
			DatastoreId:     ds.DatastoreId,
			DatastoreName:   ds.DatastoreName,
			DatastoreStatus: ds.DatastoreStatus,
		})
	}
	return out, nil
}

func (m *MedicalImagingClient) DeleteDatastore(ctx context.Context, params *medicalimaging.DeleteDatastoreInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.DeleteDatastoreOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteDatastore")

	id := aws.ToString(params.DatastoreId)
	if _, ok := m.datastores[id]; !ok {
		return nil, notFound("data store", id)
	}
	delete(m.datastores, id)
	return &medicalimaging.DeleteDatastoreOutput{
		DatastoreId:     aws.String(id),
		DatastoreStatus: types.DatastoreStatusDeleting,
	}, nil
}

func (m *MedicalImagingClient) GetImageSet(ctx context.Context, params *medicalimaging.GetImageSetInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetImageSetOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetImageSet")

	s, err := m.imageSet(params.DatastoreId, params.ImageSetId)
	if err != nil {
		return nil, err
	}
	return &medicalimaging.GetImageSetOutput{
		DatastoreId:   aws.String(s.Datastore),
		ImageSetId:    aws.String(s.ID),
		VersionId:     aws.String(s.Version),
		ImageSetState: s.State,
	}, nil
}

func (m *MedicalImagingClient) GetImageSetMetadata(ctx context.Context, params *medicalimaging.GetImageSetMetadataInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetImageSetMetadataOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetImageSetMetadata")

	s, err := m.imageSet(params.DatastoreId, params.ImageSetId)
	if err != nil {
		return nil, err
	}
	return &medicalimaging.GetImageSetMetadataOutput{
		ContentType:          aws.String("application/json"),
		ImageSetMetadataBlob: io.NopCloser(bytes.NewReader(s.Metadata)),
	}, nil
}

func (m *MedicalImagingClient) DeleteImageSet(ctx context.Context, params *medicalimaging.DeleteImageSetInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.DeleteImageSetOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteImageSet")

	s, err := m.imageSet(params.DatastoreId, params.ImageSetId)
	if err != nil {
		return nil, err
	}
	s.State = types.ImageSetStateDeleted
	return &medicalimaging.DeleteImageSetOutput{
		DatastoreId:   aws.String(s.Datastore),
		ImageSetId:    aws.String(s.ID),
		ImageSetState: s.State,
	}, nil
}

func (m *MedicalImagingClient) CopyImageSet(ctx context.Context, params *medicalimaging.CopyImageSetInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.CopyImageSetOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CopyImageSet")
	m.copies = append(m.copies, *params)

	src, err := m.imageSet(params.DatastoreId, params.SourceImageSetId)
	if err != nil {
		return nil, err
	}
	info := params.CopyImageSetInformation
	if info == nil || info.SourceImageSet == nil || aws.ToString(info.SourceImageSet.LatestVersionId) != src.Version {
		return nil, &types.ConflictException{Message: aws.String("source version does not match")}
	}

	m.nextID++
	destID := fmt.Sprintf("is-%04d", m.nextID)
	if info.DestinationImageSet != nil && info.DestinationImageSet.ImageSetId != nil {
		destID = *info.DestinationImageSet.ImageSetId
	}
	m.imageSets[src.Datastore+"/"+destID] = &ImageSet{
		ID:        destID,
		Version:   "1",
		State:     types.ImageSetStateActive,
		Metadata:  append([]byte(nil), src.Metadata...),
		Datastore: src.Datastore,
	}
	src.CopiedTo = append(src.CopiedTo, destID)

	return &medicalimaging.CopyImageSetOutput{
		DatastoreId: aws.String(src.Datastore),
		SourceImageSetProperties: &types.CopySourceImageSetProperties{
			ImageSetId:      aws.String(src.ID),
			LatestVersionId: aws.String(src.Version),
		},
		DestinationImageSetProperties: &types.CopyDestinationImageSetProperties{
			ImageSetId:      aws.String(destID),
			LatestVersionId: aws.String("1"),
		},
	}, nil
}

func (m *MedicalImagingClient) UpdateImageSetMetadata(ctx context.Context, params *medicalimaging.UpdateImageSetMetadataInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.UpdateImageSetMetadataOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateImageSetMetadata")

	s, err := m.imageSet(params.DatastoreId, params.ImageSetId)
	if err != nil {
		return nil, err
	}
	if aws.ToString(params.LatestVersionId) != s.Version {
		return nil, &types.ConflictException{Message: aws.String("latest version does not match")}
	}
	s.Updates = append(s.Updates, params.UpdateImageSetMetadataUpdates)
	s.Version = fmt.Sprintf("%d", len(s.Updates)+1)

	return &medicalimaging.UpdateImageSetMetadataOutput{
		DatastoreId:     aws.String(s.Datastore),
		ImageSetId:      aws.String(s.ID),
		LatestVersionId: aws.String(s.Version),
		ImageSetState:   types.ImageSetStateLocked,
	}, nil
}
