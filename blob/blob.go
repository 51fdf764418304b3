// Package blob loads binary request parameters. A blob is named by a source
// reference: fileb://<path> for a local file, s3://bucket/key for an object,
// or anything else for the literal bytes of the string itself.
//
// Loaded data lives in a Buffer owned by a Scope; closing the scope releases
// every buffer exactly once.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gurre/awscmdlet/aws"
)

const (
	fileScheme = "fileb://"
	s3Scheme   = "s3://"
)

var (
	ErrNotFound = errors.New("blob source not found")
	ErrReleased = errors.New("blob already released")
)

// Buffer holds the bytes of one loaded blob.
type Buffer struct {
	source    string
	data      []byte
	once      sync.Once
	onRelease func()
	released  bool
	mu        sync.Mutex
}

// NewBuffer wraps data loaded from source. onRelease, if set, runs once when
// the buffer is released.
func NewBuffer(source string, data []byte, onRelease func()) *Buffer {
	return &Buffer{source: source, data: data, onRelease: onRelease}
}

func (b *Buffer) Source() string { return b.source }

func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the blob contents. It fails once the buffer is released.
func (b *Buffer) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil, fmt.Errorf("%w: %s", ErrReleased, b.source)
	}
	return b.data, nil
}

// Reader returns a fresh reader over the contents.
func (b *Buffer) Reader() (io.Reader, error) {
	data, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// Release drops the contents. Only the first call has an effect.
func (b *Buffer) Release() {
	b.once.Do(func() {
		b.mu.Lock()
		b.released = true
		b.data = nil
		b.mu.Unlock()
		if b.onRelease != nil {
			b.onRelease()
		}
	})
}

func (b *Buffer) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// Scope owns the buffers of a single invocation.
type Scope struct {
	mu      sync.Mutex
	buffers []*Buffer
	closed  bool
}

func NewScope() *Scope {
	return &Scope{}
}

// Adopt hands b to the scope. Adopting into a closed scope releases b
// immediately.
func (s *Scope) Adopt(b *Buffer) {
	s.mu.Lock()
	closed := s.closed
	if !closed {
		s.buffers = append(s.buffers, b)
	}
	s.mu.Unlock()
	if closed {
		b.Release()
	}
}

// Len returns the number of buffers held.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers)
}

// Close releases every buffer in reverse order of adoption. It is safe to
// call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	buffers := s.buffers
	s.buffers = nil
	s.closed = true
	s.mu.Unlock()

	for i := len(buffers) - 1; i >= 0; i-- {
		buffers[i].Release()
	}
}

// Resolver loads blob sources.
type Resolver struct {
	s3       aws.S3Client
	readFile func(string) ([]byte, error)
}

// NewResolver returns a resolver reading s3:// sources through client. With a
// nil client, s3:// sources fail.
func NewResolver(client aws.S3Client) *Resolver {
	return &Resolver{s3: client, readFile: os.ReadFile}
}

// Load reads ref and adopts the result into scope.
func (r *Resolver) Load(ctx context.Context, scope *Scope, ref string) (*Buffer, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, fileScheme):
		data, err = r.loadFile(strings.TrimPrefix(ref, fileScheme))
	case strings.HasPrefix(ref, s3Scheme):
		data, err = r.loadObject(ctx, ref)
	default:
		data = []byte(ref)
	}
	if err != nil {
		return nil, err
	}

	b := NewBuffer(ref, data, nil)
	scope.Adopt(b)
	return b, nil
}

func (r *Resolver) loadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path in blob source %q", fileScheme)
	}
	data, err := r.readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob file %s: %w", path, err)
	}
	return data, nil
}

func (r *Resolver) loadObject(ctx context.Context, ref string) ([]byte, error) {
	if r.s3 == nil {
		return nil, fmt.Errorf("no S3 client configured for blob source %s", ref)
	}
	bucket, key, err := ParseS3URI(ref)
	if err != nil {
		return nil, err
	}

	out, err := r.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to get blob object %s: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob object %s: %w", ref, err)
	}
	return data, nil
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URI %q: %w", uri, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid S3 URI scheme: %s", u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("S3 URI %q must name a bucket and a key", uri)
	}
	return u.Host, key, nil
}
