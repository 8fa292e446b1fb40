// Package argconv normalises rendering arguments before they reach a template
// engine. Maps keyed by string are copied, values implementing json.Marshaler
// (templating.URL among them) are expanded into plain maps through JSON, and
// everything else, structs and pointers included, passes through untouched so
// engines can walk fields and methods natively.
package argconv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Map converts data (nil, a map[string]any-kinded value, or anything JSON
// can encode as an object) into a fresh map. Blank keys are dropped.
func Map(data any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}

	in, ok := asStringMap(data)
	if !ok {
		raw, err := jsonToAny(data)
		if err != nil {
			return nil, err
		}
		decoded, isMap := raw.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("argconv: expected object, got %T", data)
		}
		in = decoded
	}

	out := make(map[string]any, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := Value(value)
		if err != nil {
			return nil, fmt.Errorf("argconv: key %q: %w", key, err)
		}
		out[key] = converted
	}
	return out, nil
}

// Value converts a single argument value. Only json.Marshaler values are
// rewritten; numbers decoded from them keep integer precision.
func Value(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if IsCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case []any:
		return convertSlice(v)
	case json.Marshaler:
		raw, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		return raw, nil
	}

	if m, ok := asStringMap(value); ok {
		return convertMap(m)
	}
	return value, nil
}

// IsCallable reports whether v is a func value.
func IsCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func asStringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.Type().Elem().Kind() != reflect.Interface {
		return nil, false
	}
	if rv.IsNil() {
		return map[string]any{}, true
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := Value(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := Value(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return numbers(out), nil
}

// numbers replaces json.Number with int64 for whole values and float64
// otherwise.
func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for key, item := range t {
			t[key] = numbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = numbers(item)
		}
		return t
	default:
		return v
	}
}
