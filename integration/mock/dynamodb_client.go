package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBClient is an in-memory implementation of aws.DynamoDBClient. Items
// are keyed by their invocation_id attribute.
type DynamoDBClient struct {
	mu          sync.RWMutex
	tableData   map[string]map[string]map[string]types.AttributeValue
	batchWrites []dynamodb.BatchWriteItemInput

	failMu        sync.Mutex
	failNextWrite bool
}

// NewDynamoDBClient creates a new mock DynamoDB client
func NewDynamoDBClient() *DynamoDBClient {
	return &DynamoDBClient{
		tableData: make(map[string]map[string]map[string]types.AttributeValue),
	}
}

// SetFailNextWrite makes the next write fail.
func (m *DynamoDBClient) SetFailNextWrite(fail bool) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.failNextWrite = fail
}

func (m *DynamoDBClient) shouldFail() bool {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	if m.failNextWrite {
		m.failNextWrite = false
		return true
	}
	return false
}

func itemKey(item map[string]types.AttributeValue) string {
	if v, ok := item["invocation_id"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return fmt.Sprintf("item-%p", item)
}

func (m *DynamoDBClient) put(table string, item map[string]types.AttributeValue) {
	if _, ok := m.tableData[table]; !ok {
		m.tableData[table] = make(map[string]map[string]types.AttributeValue)
	}
	m.tableData[table][itemKey(item)] = item
}

func (m *DynamoDBClient) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	m.mu.Lock()
	m.batchWrites = append(m.batchWrites, *params)
	m.mu.Unlock()

	if m.shouldFail() {
		return nil, fmt.Errorf("simulated batch write failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for table, requests := range params.RequestItems {
		for _, r := range requests {
			if r.PutRequest != nil {
				m.put(table, r.PutRequest.Item)
			}
			if r.DeleteRequest != nil {
				delete(m.tableData[table], itemKey(r.DeleteRequest.Key))
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{
		UnprocessedItems: make(map[string][]types.WriteRequest),
	}, nil
}

func (m *DynamoDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.shouldFail() {
		return nil, fmt.Errorf("simulated put failure")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(*params.TableName, params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// Items returns a copy of the items stored in table.
func (m *DynamoDBClient) Items(table string) []map[string]types.AttributeValue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]map[string]types.AttributeValue, 0, len(m.tableData[table]))
	for _, item := range m.tableData[table] {
		items = append(items, item)
	}
	return items
}

// GetBatchWrites returns every BatchWriteItem request received.
func (m *DynamoDBClient) GetBatchWrites() []dynamodb.BatchWriteItemInput {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dynamodb.BatchWriteItemInput(nil), m.batchWrites...)
}
