package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/gurre/s3streamer"
)

// maxLineSize bounds a single input line.
const maxLineSize = 4 * 1024 * 1024

// Source yields input lines in order.
type Source interface {
	// URI identifies the input in checkpoints.
	URI() string
	Lines(ctx context.Context, fn func(line []byte) error) error
}

// S3Source streams an S3 object line by line.
type S3Source struct {
	streamer s3streamer.Streamer
	bucket   string
	key      string
}

func NewS3Source(streamer s3streamer.Streamer, bucket, key string) *S3Source {
	return &S3Source{streamer: streamer, bucket: bucket, key: key}
}

func (s *S3Source) URI() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *S3Source) Lines(ctx context.Context, fn func(line []byte) error) error {
	err := s.streamer.Stream(ctx, s.bucket, s.key, 0, func(line []byte, _ int64) error {
		return fn(line)
	})
	if err != nil {
		return fmt.Errorf("failed to stream %s: %w", s.URI(), err)
	}
	return nil
}

// FileSource reads a local file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) URI() string {
	return "file://" + f.path
}

func (f *FileSource) Lines(ctx context.Context, fn func(line []byte) error) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open batch input: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read batch input: %w", err)
	}
	return nil
}
