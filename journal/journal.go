// Package journal records an audit trail of mutating invocations in a
// DynamoDB table. Entries are buffered and written with BatchWriteItem.
//
// A journal never changes the outcome of an invocation: write failures are
// logged and the entries dropped.
package journal

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/gurre/awscmdlet/aws"
	"github.com/sirupsen/logrus"
)

// maxBatchSize is the BatchWriteItem request limit.
const maxBatchSize = 25

// Status is the outcome of a recorded invocation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Entry is one journal item.
type Entry struct {
	ID         string    `dynamodbav:"invocation_id"`
	BatchID    string    `dynamodbav:"batch_id,omitempty"`
	Service    string    `dynamodbav:"service"`
	Operation  string    `dynamodbav:"operation"`
	Target     string    `dynamodbav:"target,omitempty"`
	Status     Status    `dynamodbav:"status"`
	Error      string    `dynamodbav:"error,omitempty"`
	StartedAt  time.Time `dynamodbav:"started_at"`
	DurationMs int64     `dynamodbav:"duration_ms"`
	Params     []string  `dynamodbav:"params,stringset,omitempty"`
}

// Recorder accepts journal entries.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// DynamoDBJournal buffers entries and writes them to a table.
type DynamoDBJournal struct {
	client    aws.DynamoDBClient
	tableName string
	log       logrus.FieldLogger
	batchSize int
	wait      func(ctx context.Context, attempt int) bool

	mu      sync.Mutex
	pending []Entry
}

// NewDynamoDBJournal returns a journal writing to tableName.
func NewDynamoDBJournal(client aws.DynamoDBClient, tableName string, log logrus.FieldLogger) *DynamoDBJournal {
	return &DynamoDBJournal{
		client:    client,
		tableName: tableName,
		log:       log,
		batchSize: maxBatchSize,
		wait:      backoffWait,
	}
}

// Record buffers e, assigning an invocation ID when it has none. A full
// buffer is flushed immediately.
func (j *DynamoDBJournal) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	j.mu.Lock()
	j.pending = append(j.pending, e)
	full := len(j.pending) >= j.batchSize
	j.mu.Unlock()

	if full {
		if err := j.Flush(ctx); err != nil {
			j.log.WithError(err).Warn("failed to write journal entries")
		}
	}
}

// Pending returns the number of buffered entries.
func (j *DynamoDBJournal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Flush writes every buffered entry. Entries that could not be written are
// dropped and reported in the returned error.
func (j *DynamoDBJournal) Flush(ctx context.Context) error {
	j.mu.Lock()
	entries := j.pending
	j.pending = nil
	j.mu.Unlock()

	var errs []error
	for i := 0; i < len(entries); i += j.batchSize {
		end := i + j.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := j.writeBatch(ctx, entries[i:end]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (j *DynamoDBJournal) writeBatch(ctx context.Context, batch []Entry) error {
	requests := make([]types.WriteRequest, 0, len(batch))
	for _, e := range batch {
		item, err := attributevalue.MarshalMap(e)
		if err != nil {
			return fmt.Errorf("failed to marshal journal entry %s: %w", e.ID, err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{j.tableName: requests},
	}

	// Throttling retries until the context ends; other errors get maxRetries.
	const maxRetries = 3
	attempt := 0
	for {
		output, err := j.client.BatchWriteItem(ctx, input)
		if err != nil {
			if isThrottlingError(err) || attempt < maxRetries {
				if !j.wait(ctx, attempt) {
					return ctx.Err()
				}
				attempt++
				continue
			}
			return fmt.Errorf("failed to write %d journal entries after %d retries: %w", len(batch), maxRetries, err)
		}

		if len(output.UnprocessedItems) > 0 {
			input.RequestItems = output.UnprocessedItems
			if !j.wait(ctx, attempt) {
				return ctx.Err()
			}
			attempt++
			continue
		}
		return nil
	}
}

func isThrottlingError(err error) bool {
	var throughputErr *types.ProvisionedThroughputExceededException
	var requestLimitErr *types.RequestLimitExceeded
	return errors.As(err, &throughputErr) || errors.As(err, &requestLimitErr)
}

// backoffWait sleeps for an exponentially increasing duration with jitter.
// Returns false if the context is cancelled during the wait.
func backoffWait(ctx context.Context, attempt int) bool {
	base := 100 * time.Millisecond
	maxDelay := 10 * time.Second

	delay := base * time.Duration(1<<uint(min(attempt, 16)))
	if delay > maxDelay {
		delay = maxDelay
	}
	delay += time.Duration(rand.Int64N(int64(delay)))

	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}
