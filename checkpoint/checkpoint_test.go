package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// objectStore keeps objects by bucket/key.
type objectStore struct {
	objects map[string][]byte
	getErr  error
	puts    int
}

func newObjectStore() *objectStore {
	return &objectStore{objects: make(map[string][]byte)}
}

func (o *objectStore) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if o.getErr != nil {
		return nil, o.getErr
	}
	data, ok := o.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (o *objectStore) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	o.objects[*in.Bucket+"/"+*in.Key] = data
	o.puts++
	return &s3.PutObjectOutput{}, nil
}

func (o *objectStore) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, nil
}

func sampleState() State {
	return State{
		BatchID:   "b-1",
		Input:     "s3://jobs/run.jsonl",
		Line:      42,
		UpdatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, state.Empty())

	require.NoError(t, store.Save(ctx, State{Line: 1}))
	require.NoError(t, store.Save(ctx, sampleState()))
	state, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), state, "later saves overwrite")
	assert.Equal(t, 2, store.Saves())
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	store, err := NewFileStore("file://" + filepath.Join(dir, "run.checkpoint"))
	require.NoError(t, err)

	_, err = os.Stat(dir)
	require.NoError(t, err, "parent directories are created")

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, state.Empty(), "missing file is an empty state")

	require.NoError(t, store.Save(ctx, sampleState()))
	state, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), state)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.checkpoint")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store, err := NewFileStore("file://" + path)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestFileStoreInvalidURI(t *testing.T) {
	for _, uri := range []string{"s3://bucket/key", "http://example.com/file", "/path/without/scheme"} {
		t.Run(uri, func(t *testing.T) {
			_, err := NewFileStore(uri)
			assert.Error(t, err)
		})
	}
}

func TestS3StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newObjectStore()
	store, err := NewS3Store(client, "s3://my-bucket/path/to/run.checkpoint")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", store.bucket)
	assert.Equal(t, "path/to/run.checkpoint", store.key)

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, state.Empty())

	require.NoError(t, store.Save(ctx, sampleState()))
	assert.Equal(t, 1, client.puts)
	state, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), state)
}

func TestS3StoreNotFoundVariants(t *testing.T) {
	client := newObjectStore()
	client.getErr = &types.NotFound{}
	store, err := NewS3Store(client, "s3://b/k")
	require.NoError(t, err)

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Empty())

	client.getErr = errors.New("access denied")
	_, err = store.Load(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

func TestS3StoreInvalidURI(t *testing.T) {
	for _, uri := range []string{"http://bucket/key", "file:///path/to/file", "bucket/key", "s3://bucket"} {
		t.Run(uri, func(t *testing.T) {
			_, err := NewS3Store(nil, uri)
			assert.Error(t, err)
		})
	}
}

func TestOpen(t *testing.T) {
	store, err := Open("", nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open("s3://b/k", newObjectStore())
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)

	store, err = Open("file://"+filepath.Join(t.TempDir(), "c"), nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = Open("ftp://host/c", nil)
	assert.Error(t, err)
}
