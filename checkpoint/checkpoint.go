// Package checkpoint persists batch progress so an interrupted run can resume
// after the last completed line.
package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	json "github.com/goccy/go-json"
	"github.com/gurre/awscmdlet/aws"
	"github.com/gurre/awscmdlet/blob"
)

// State is the progress of one batch input. A resumed run skips every line up
// to and including Line.
//
//	state, err := store.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	if state.Input == input {
//	    skip = state.Line
//	}
type State struct {
	BatchID   string    `json:"batchId"`
	Input     string    `json:"input"` // URI the lines were read from
	Line      int64     `json:"line"`  // last line handled, 1-based
	UpdatedAt time.Time `json:"updatedAt"`
}

// Empty reports whether no progress was recorded.
func (s State) Empty() bool {
	return s.Line == 0
}

// Store saves and loads checkpoint state.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// Open returns the store for uri: s3:// and file:// URIs persist, an empty
// uri keeps state in memory for the life of the process.
func Open(uri string, client aws.S3Client) (Store, error) {
	switch {
	case uri == "":
		return NewMemoryStore(), nil
	case strings.HasPrefix(uri, "s3://"):
		return NewS3Store(client, uri)
	case strings.HasPrefix(uri, "file://"):
		return NewFileStore(uri)
	default:
		return nil, fmt.Errorf("unsupported checkpoint URI: %s", uri)
	}
}

// S3Store keeps the checkpoint in one S3 object.
type S3Store struct {
	client aws.S3Client
	bucket string
	key    string
}

func NewS3Store(client aws.S3Client, uri string) (*S3Store, error) {
	bucket, key, err := blob.ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	return &S3Store{client: client, bucket: bucket, key: key}, nil
}

// Load returns the empty state when the object does not exist yet.
func (s *S3Store) Load(ctx context.Context) (State, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &s.key,
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return State{}, nil
		}
		// some S3-compatible stores answer NotFound instead
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var state State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return State{}, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return state, nil
}

func (s *S3Store) Save(ctx context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// FileStore keeps the checkpoint in a local file. Saves replace the file
// atomically so a crash never leaves a truncated checkpoint.
type FileStore struct {
	path string
}

// NewFileStore accepts file:///absolute/path and creates missing parent
// directories.
func NewFileStore(uri string) (*FileStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid file URI: %w", err)
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("invalid file URI scheme: %s", u.Scheme)
	}

	path := filepath.Clean(u.Path)
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("checkpoint path must be absolute: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Load(ctx context.Context) (State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return state, nil
}

func (f *FileStore) Save(ctx context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}
	return nil
}
