// Package selector picks the single output value of an invocation: the whole
// response, one field of it, or one of the caller's own parameters.
//
// Directives are "*" for the whole response, a dotted field path such as
// "Entity.Name", or "^Param" to pass an input parameter through.
package selector

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var (
	ErrInvalidExpression = errors.New("invalid selection expression")
	ErrFieldNotFound     = errors.New("field not found in response")
	ErrUnknownParameter  = errors.New("pass-through parameter is not declared by the operation")
	ErrSelectionConflict = errors.New("a selection directive and the pass-through switch cannot be combined")
)

// Kind tags the variant of an Expression.
type Kind int

const (
	KindWildcard Kind = iota
	KindFieldPath
	KindPassThrough
)

const passThroughMarker = "^"

var segmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Expression is a closed variant: Wildcard, FieldPath or PassThrough.
// The zero value is Wildcard.
type Expression struct {
	kind  Kind
	path  []string
	param string
}

// Wildcard selects the entire response.
func Wildcard() Expression {
	return Expression{kind: KindWildcard}
}

// Field selects the response field at path.
func Field(path ...string) Expression {
	return Expression{kind: KindFieldPath, path: path}
}

// PassThrough selects the caller's value of param.
func PassThrough(param string) Expression {
	return Expression{kind: KindPassThrough, param: param}
}

func (e Expression) Kind() Kind { return e.kind }

// Path returns the dotted field path of a FieldPath expression.
func (e Expression) Path() string { return strings.Join(e.path, ".") }

// Param returns the parameter of a PassThrough expression.
func (e Expression) Param() string { return e.param }

func (e Expression) String() string {
	switch e.kind {
	case KindFieldPath:
		return e.Path()
	case KindPassThrough:
		return passThroughMarker + e.param
	default:
		return "*"
	}
}

// Parse reads a directive.
func Parse(directive string) (Expression, error) {
	d := strings.TrimSpace(directive)
	switch {
	case d == "*":
		return Wildcard(), nil
	case strings.HasPrefix(d, passThroughMarker):
		name := strings.TrimPrefix(d, passThroughMarker)
		if !segmentPattern.MatchString(name) {
			return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, directive)
		}
		return PassThrough(name), nil
	case d == "":
		return Expression{}, fmt.Errorf("%w: empty directive", ErrInvalidExpression)
	}
	segs := strings.Split(d, ".")
	for _, s := range segs {
		if !segmentPattern.MatchString(s) {
			return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, directive)
		}
	}
	return Field(segs...), nil
}

// Choose resolves the caller's selection surface into one expression.
// passThru is the deprecated switch equivalent to "^" + passParam; it cannot
// be combined with a directive. With neither, def applies.
func Choose(directive string, passThru bool, def Expression, passParam string) (Expression, error) {
	if passThru {
		if strings.TrimSpace(directive) != "" {
			return Expression{}, ErrSelectionConflict
		}
		if passParam == "" {
			return Expression{}, fmt.Errorf("%w: operation has no pass-through parameter", ErrInvalidExpression)
		}
		return PassThrough(passParam), nil
	}
	if strings.TrimSpace(directive) == "" {
		return def, nil
	}
	return Parse(directive)
}

// Validate checks e against the response type and the operation's parameters
// and returns it with names canonicalized. output is a value or nil pointer
// of the response type; lookup maps a parameter name or alias to its
// canonical name.
func (e Expression) Validate(output any, lookup func(string) (string, bool)) (Expression, error) {
	switch e.kind {
	case KindPassThrough:
		name, ok := lookup(e.param)
		if !ok {
			return Expression{}, fmt.Errorf("%w: %s", ErrUnknownParameter, e.param)
		}
		return PassThrough(name), nil

	case KindFieldPath:
		t := reflect.TypeOf(output)
		canonical := make([]string, 0, len(e.path))
		for i, seg := range e.path {
			for t != nil && t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			if t == nil || t.Kind() != reflect.Struct {
				return Expression{}, fmt.Errorf("%w: %s is not a structure", ErrFieldNotFound, strings.Join(e.path[:i], "."))
			}
			sf, ok := t.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, seg) })
			if !ok || !sf.IsExported() {
				return Expression{}, fmt.Errorf("%w: %s", ErrFieldNotFound, strings.Join(e.path[:i+1], "."))
			}
			canonical = append(canonical, sf.Name)
			t = sf.Type
		}
		return Field(canonical...), nil
	}
	return e, nil
}

// Params is the view of bound parameters a PassThrough expression reads.
type Params interface {
	Raw(name string) (any, bool)
}

// Select computes the output value. FieldPath walks the response and yields
// nil when a pointer on the way is nil; PassThrough ignores the response.
func (e Expression) Select(response any, params Params) any {
	switch e.kind {
	case KindPassThrough:
		if params == nil {
			return nil
		}
		v, _ := params.Raw(e.param)
		return v

	case KindFieldPath:
		v := reflect.ValueOf(response)
		for _, seg := range e.path {
			for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
				if v.IsNil() {
					return nil
				}
				v = v.Elem()
			}
			if v.Kind() != reflect.Struct {
				return nil
			}
			v = v.FieldByName(seg)
			if !v.IsValid() {
				return nil
			}
		}
		return v.Interface()
	}
	return response
}
