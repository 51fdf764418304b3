package mock

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Client is an in-memory implementation of aws.S3Client. It also streams
// objects line by line like s3streamer.Streamer, so batch input can be served
// from the same objects.
type S3Client struct {
	mu       sync.RWMutex
	files    map[string][]byte
	metadata map[string]map[string]string
	puts     int
}

// NewS3Client creates an empty mock S3 client.
func NewS3Client() *S3Client {
	return &S3Client{
		files:    make(map[string][]byte),
		metadata: make(map[string]map[string]string),
	}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

// AddObject stores content under bucket/key.
func (m *S3Client) AddObject(bucket, key string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[objectKey(bucket, key)] = content
}

// Object returns the content stored under bucket/key.
func (m *S3Client) Object(bucket, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[objectKey(bucket, key)]
	return content, ok
}

// Keys lists every stored bucket/key, sorted.
func (m *S3Client) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Puts returns the number of PutObject calls.
func (m *S3Client) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

func noSuchKey(key string) error {
	return &types.NoSuchKey{
		Message: aws.String(fmt.Sprintf("The specified key does not exist: %s", key)),
	}
}

func (m *S3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	content, ok := m.Object(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if !ok {
		return nil, noSuchKey(aws.ToString(params.Key))
	}

	m.mu.RLock()
	metadata := m.metadata[objectKey(aws.ToString(params.Bucket), aws.ToString(params.Key))]
	m.mu.RUnlock()

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(content)),
		Metadata:      metadata,
		ETag:          etag(content),
		ContentLength: aws.Int64(int64(len(content))),
	}, nil
}

func (m *S3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	bk := objectKey(aws.ToString(params.Bucket), aws.ToString(params.Key))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[bk] = data
	m.metadata[bk] = params.Metadata
	m.puts++
	return &s3.PutObjectOutput{ETag: etag(data)}, nil
}

func (m *S3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	content, ok := m.Object(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if !ok {
		return nil, &types.NotFound{Message: aws.String("Not Found")}
	}
	return &s3.HeadObjectOutput{
		ETag:          etag(content),
		ContentLength: aws.Int64(int64(len(content))),
	}, nil
}

// Stream calls fn for every line of bucket/key, skipping the first offset
// lines. The second callback argument is the byte offset of the line.
func (m *S3Client) Stream(ctx context.Context, bucket, key string, offset int64, fn func([]byte, int64) error) error {
	content, ok := m.Object(bucket, key)
	if !ok {
		return fmt.Errorf("mock S3: key not found: %s", objectKey(bucket, key))
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var lineNum, pos int64
	for scanner.Scan() {
		line := scanner.Bytes()
		start := pos
		pos += int64(len(line)) + 1
		if lineNum < offset {
			lineNum++
			continue
		}
		lineNum++
		if err := fn(line, start); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error scanning lines: %w", err)
	}
	return nil
}

func etag(content []byte) *string {
	return aws.String(fmt.Sprintf("\"%x\"", len(content)))
}
