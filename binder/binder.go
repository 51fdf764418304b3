// Package binder turns caller-supplied inputs into an immutable ParameterSet.
// Values are coerced to the exact Go type of the request field they will
// populate, so type errors surface here and never during composition.
package binder

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gurre/awscmdlet/schema"
)

var (
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrUnknownParameter   = errors.New("unknown parameter")
	ErrDuplicateParameter = errors.New("parameter supplied more than once")
	ErrUnionConflict      = errors.New("more than one member of a union supplied")
	ErrMissingRequired    = errors.New("required parameter missing")
)

// BindingError reports a parameter that could not be bound.
type BindingError struct {
	Param  string
	Err    error
	Detail string
}

func (e *BindingError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("parameter %s: %v", e.Param, e.Err)
	}
	return fmt.Sprintf("parameter %s: %v: %s", e.Param, e.Err, e.Detail)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// DiagnosticCode classifies a non-fatal binding finding.
type DiagnosticCode int

const (
	MissingRequired DiagnosticCode = iota
	UnknownEnumValue
)

func (c DiagnosticCode) String() string {
	switch c {
	case MissingRequired:
		return "missing-required"
	case UnknownEnumValue:
		return "unknown-enum-value"
	default:
		return fmt.Sprintf("diagnostic(%d)", int(c))
	}
}

// Diagnostic is a recoverable finding recorded while binding.
type Diagnostic struct {
	Code    DiagnosticCode
	Param   string
	Message string
}

// Options controls binding strictness.
type Options struct {
	// Strict turns missing-required diagnostics into ErrMissingRequired.
	Strict bool
}

// Bind validates raw against the tree and returns the bound parameters.
// Keys of raw may be canonical names or aliases in any case; nil values count
// as not supplied.
func Bind(tree *schema.Tree, raw map[string]any, opts Options) (ParameterSet, []Diagnostic, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	supplied := make(map[string]any, len(raw))
	suppliedAs := make(map[string]string, len(raw))
	for _, key := range keys {
		p, ok := tree.Lookup(key)
		if !ok {
			return ParameterSet{}, nil, &BindingError{Param: key, Err: ErrUnknownParameter}
		}
		if prev, dup := suppliedAs[p.Name]; dup {
			return ParameterSet{}, nil, &BindingError{
				Param:  p.Name,
				Err:    ErrDuplicateParameter,
				Detail: fmt.Sprintf("given as both %s and %s", prev, key),
			}
		}
		suppliedAs[p.Name] = key
		supplied[p.Name] = raw[key]
	}

	var (
		set   ParameterSet
		diags []Diagnostic
	)
	for _, p := range tree.Params() {
		v := supplied[p.Name]
		if isNull(p, v) {
			if p.Required {
				diags = append(diags, missing(p))
			}
			continue
		}
		if p.Required && v == "" {
			diags = append(diags, missing(p))
		}

		leaf := tree.Leaf(p.Name)
		typed, err := coerce(p, leaf.Type, v)
		if err != nil {
			return ParameterSet{}, nil, &BindingError{Param: p.Name, Err: ErrTypeMismatch, Detail: err.Error()}
		}
		if d, ok := checkEnum(p, leaf.Type, typed); !ok {
			diags = append(diags, d)
		}
		set.add(p.Name, Value{Raw: v, Typed: typed})
	}

	for _, u := range tree.Unions() {
		var populated []string
		for _, member := range u.Children {
			for _, name := range member.ParamNames() {
				if set.Has(name) {
					populated = append(populated, member.Field)
					break
				}
			}
		}
		if len(populated) > 1 {
			return ParameterSet{}, nil, &BindingError{
				Param:  u.Field,
				Err:    ErrUnionConflict,
				Detail: strings.Join(populated, ", "),
			}
		}
	}

	if opts.Strict {
		var errs []error
		for _, d := range diags {
			if d.Code == MissingRequired {
				errs = append(errs, &BindingError{Param: d.Param, Err: ErrMissingRequired})
			}
		}
		if len(errs) > 0 {
			return ParameterSet{}, diags, errors.Join(errs...)
		}
	}

	return set, diags, nil
}

func missing(p schema.Param) Diagnostic {
	return Diagnostic{
		Code:    MissingRequired,
		Param:   p.Name,
		Message: fmt.Sprintf("required parameter %s was not supplied; the service may reject the request", p.Name),
	}
}

// isNull reports whether v stands for "not supplied".
func isNull(p schema.Param, v any) bool {
	if v == nil {
		return true
	}
	if p.Kind == schema.JSON {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "null" {
			return true
		}
	}
	return false
}
