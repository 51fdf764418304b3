package binder

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/gurre/awscmdlet/schema"
)

// coerce converts a caller value into a value whose dynamic type is exactly
// target. Blob parameters stay as their source reference; the invocation
// resolves them into buffers.
func coerce(p schema.Param, target reflect.Type, v any) (any, error) {
	switch p.Kind {
	case schema.String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return scalar(target, reflect.ValueOf(s)), nil

	case schema.Int:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		if bits := deref(target).Bits(); bits < 64 {
			if n < -(1<<(bits-1)) || n > (1<<(bits-1))-1 {
				return nil, fmt.Errorf("%d overflows a %d-bit integer", n, bits)
			}
		}
		return scalar(target, reflect.ValueOf(n)), nil

	case schema.Bool:
		var b bool
		switch x := v.(type) {
		case bool:
			b = x
		case string:
			parsed, err := strconv.ParseBool(x)
			if err != nil {
				return nil, fmt.Errorf("want bool, got %q", x)
			}
			b = parsed
		default:
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		return scalar(target, reflect.ValueOf(b)), nil

	case schema.StringList:
		items, err := toStrings(v)
		if err != nil {
			return nil, err
		}
		out := reflect.MakeSlice(target, len(items), len(items))
		for i, s := range items {
			out.Index(i).SetString(s)
		}
		return out.Interface(), nil

	case schema.StringMap:
		entries, err := toStringMap(v)
		if err != nil {
			return nil, err
		}
		out := reflect.MakeMapWithSize(target, len(entries))
		for k, s := range entries {
			out.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), reflect.ValueOf(s).Convert(target.Elem()))
		}
		return out.Interface(), nil

	case schema.JSON:
		var data []byte
		switch x := v.(type) {
		case string:
			data = []byte(x)
		case []byte:
			data = x
		default:
			encoded, err := json.Marshal(x)
			if err != nil {
				return nil, fmt.Errorf("cannot encode %T: %v", v, err)
			}
			data = encoded
		}
		ptr := reflect.New(target)
		if err := json.Unmarshal(data, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("cannot decode into %s: %v", target, err)
		}
		return ptr.Elem().Interface(), nil

	case schema.Blob:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want a blob source string, got %T", v)
		}
		return nil, validBlobRef(s)
	}
	return nil, fmt.Errorf("unsupported kind %s", p.Kind)
}

// scalar stores v into a fresh value of target, allocating when target is a
// pointer. Named types such as SDK enums are converted.
func scalar(target reflect.Type, v reflect.Value) any {
	if target.Kind() == reflect.Pointer {
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(v.Convert(target.Elem()))
		return ptr.Interface()
	}
	return v.Convert(target).Interface()
}

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("want integer, got %v", x)
		}
		return int64(x), nil
	case json.Number:
		return x.Int64()
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("want integer, got %q", x)
		}
		return n, nil
	}
	return 0, fmt.Errorf("want integer, got %T", v)
}

func toStrings(v any) ([]string, error) {
	switch x := v.(type) {
	case []string:
		return x, nil
	case string:
		return []string{x}, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("list element %d: want string, got %T", i, e)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("want list of strings, got %T", v)
}

func toStringMap(v any) (map[string]string, error) {
	switch x := v.(type) {
	case map[string]string:
		return x, nil
	case map[string]any:
		out := make(map[string]string, len(x))
		for k, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("map value for %q: want string, got %T", k, e)
			}
			out[k] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("want map of strings, got %T", v)
}

// checkEnum reports an unknown value for SDK enum types, which expose their
// known values through a Values method.
func checkEnum(p schema.Param, target reflect.Type, typed any) (Diagnostic, bool) {
	var et reflect.Type
	switch p.Kind {
	case schema.String:
		et = deref(target)
	case schema.StringList:
		et = target.Elem()
	default:
		return Diagnostic{}, true
	}
	if et.Name() == "string" || et.PkgPath() == "" {
		return Diagnostic{}, true
	}
	m := reflect.Zero(et).MethodByName("Values")
	if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() != 1 {
		return Diagnostic{}, true
	}
	known := m.Call(nil)[0]
	if known.Kind() != reflect.Slice || known.Len() == 0 {
		return Diagnostic{}, true
	}

	var given []string
	tv := reflect.ValueOf(typed)
	switch p.Kind {
	case schema.String:
		given = []string{reflect.Indirect(tv).String()}
	case schema.StringList:
		for i := 0; i < tv.Len(); i++ {
			given = append(given, tv.Index(i).String())
		}
	}

	for _, g := range given {
		found := false
		for i := 0; i < known.Len(); i++ {
			if known.Index(i).String() == g {
				found = true
				break
			}
		}
		if !found {
			return Diagnostic{
				Code:    UnknownEnumValue,
				Param:   p.Name,
				Message: fmt.Sprintf("value %q is not one of the known %s values", g, et.Name()),
			}, false
		}
	}
	return Diagnostic{}, true
}

func validBlobRef(s string) error {
	if s == "" {
		return fmt.Errorf("empty blob source")
	}
	return nil
}
