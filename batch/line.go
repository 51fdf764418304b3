// Package batch runs one invocation per JSON line of an input file, with
// checkpointed progress and a final report.
package batch

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Line is one invocation request:
//
//	{"service":"medicalimaging","operation":"GetImageSet","parameters":{"DatastoreId":"ds-1","ImageSetId":"is-1"},"select":"ImageSetState"}
type Line struct {
	Service    string         `json:"service"`
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters"`
	Select     string         `json:"select,omitempty"`
	PassThru   bool           `json:"passThru,omitempty"`
	Force      bool           `json:"force,omitempty"`
}

// ErrCorrupt is returned for a line that is not a valid invocation request.
var ErrCorrupt = errors.New("corrupt line")

// errBlank marks an empty line; it is neither run nor counted as corrupt.
var errBlank = errors.New("blank line")

type Decoder interface {
	Decode(line []byte) (Line, error)
}

// JSONDecoder decodes JSON lines. Numbers are kept as json.Number so integer
// parameters keep full precision.
type JSONDecoder struct{}

func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

func (d *JSONDecoder) Decode(line []byte) (Line, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Line{}, errBlank
	}

	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	var l Line
	if err := dec.Decode(&l); err != nil {
		return Line{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if l.Service == "" || l.Operation == "" {
		return Line{}, fmt.Errorf("%w: service and operation are required", ErrCorrupt)
	}
	if l.Parameters == nil {
		l.Parameters = map[string]any{}
	}
	return l, nil
}
