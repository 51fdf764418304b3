package batch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreamer struct {
	data   []byte
	bucket string
	key    string
	err    error
}

func (f *fakeStreamer) Stream(ctx context.Context, bucket, key string, offset int64, fn func([]byte, int64) error) error {
	f.bucket, f.key = bucket, key
	if f.err != nil {
		return f.err
	}
	scanner := bufio.NewScanner(bytes.NewReader(f.data))
	var pos int64
	for scanner.Scan() {
		if err := fn(scanner.Bytes(), pos); err != nil {
			return err
		}
		pos += int64(len(scanner.Bytes())) + 1
	}
	return scanner.Err()
}

func collect(t *testing.T, src Source) []string {
	t.Helper()
	var lines []string
	require.NoError(t, src.Lines(context.Background(), func(line []byte) error {
		lines = append(lines, string(line))
		return nil
	}))
	return lines
}

func TestS3Source(t *testing.T) {
	streamer := &fakeStreamer{data: []byte("a\nb\n")}
	src := NewS3Source(streamer, "jobs", "runs/one.jsonl")
	assert.Equal(t, "s3://jobs/runs/one.jsonl", src.URI())
	assert.Equal(t, []string{"a", "b"}, collect(t, src))
	assert.Equal(t, "jobs", streamer.bucket)
	assert.Equal(t, "runs/one.jsonl", streamer.key)

	streamer.err = errors.New("throttled")
	err := src.Lines(context.Background(), func([]byte) error { return nil })
	assert.ErrorContains(t, err, "throttled")
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("first\n\nthird"), 0o600))

	src := NewFileSource(path)
	assert.Equal(t, "file://"+path, src.URI())
	assert.Equal(t, []string{"first", "", "third"}, collect(t, src))
}

func TestFileSourceStopsOnCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3\n"), 0o600))

	stop := errors.New("stop")
	var seen int
	err := NewFileSource(path).Lines(context.Background(), func([]byte) error {
		seen++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen)
}

func TestFileSourceMissing(t *testing.T) {
	err := NewFileSource(filepath.Join(t.TempDir(), "absent")).Lines(context.Background(), func([]byte) error { return nil })
	assert.Error(t, err)
}

func TestFileSourceCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o600))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFileSource(path).Lines(ctx, func([]byte) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
