package output

import (
	"bytes"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getDatastore() *medicalimaging.GetDatastoreOutput {
	return &medicalimaging.GetDatastoreOutput{
		DatastoreProperties: &types.DatastoreProperties{
			DatastoreId:     aws.String("ds-1"),
			DatastoreName:   aws.String("scans"),
			DatastoreStatus: types.DatastoreStatusActive,
		},
	}
}

func TestRenderJSONDropsMetadata(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, JSON, getDatastore()))
	out := buf.String()
	assert.Contains(t, out, `"DatastoreId": "ds-1"`)
	assert.Contains(t, out, `"DatastoreStatus": "ACTIVE"`)
	assert.NotContains(t, out, "ResultMetadata")
	assert.Contains(t, out, "\n  ", "indented")
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, YAML, getDatastore()))
	out := buf.String()
	assert.Contains(t, out, "DatastoreProperties:\n")
	assert.Contains(t, out, "  DatastoreName: scans\n")
	assert.NotContains(t, out, "ResultMetadata")
}

func TestRenderYAMLNumbers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, YAML, map[string]any{"count": 3, "ratio": 0.5}))
	assert.Equal(t, "count: 3\nratio: 0.5\n", buf.String())
}

func TestRenderText(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "ds-1", "ds-1\n"},
		{"string pointer", aws.String("application/json"), "application/json\n"},
		{"enum", types.DatastoreStatusActive, "ACTIVE\n"},
		{"int", aws.Int32(7), "7\n"},
		{"bool", true, "true\n"},
		{"list", []string{"a", "b"}, "[\"a\",\"b\"]\n"},
		{"map", map[string]any{"b": 1, "a": "x"}, "{\"a\":\"x\",\"b\":1}\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, Text, tc.value))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestRenderNil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, JSON, nil))
	require.NoError(t, Render(&buf, Text, (*string)(nil)))
	require.NoError(t, Render(&buf, YAML, []string(nil)))
	assert.Empty(t, buf.String())
}

func TestRenderUnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, "xml", "x"))
}
