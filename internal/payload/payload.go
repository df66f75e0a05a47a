// Package payload normalizes the data handed to request templates and JSON
// bodies. A payload is either a set of named fields or a single scalar.
package payload

import (
	"fmt"
	"reflect"
	"strings"
)

type Payload map[string]any

// From returns the fields of v when v is object-like: a Payload, a map keyed
// by strings, or a struct (or pointer to one) whose exported fields are keyed
// by their json names. ok is false for scalars and nil.
func From(v any) (Payload, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case Payload:
		return t, true
	case map[string]any:
		return Payload(t), true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		p := make(Payload, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			p[iter.Key().String()] = iter.Value().Interface()
		}
		return p, true
	case reflect.Struct:
		if isOpaqueStruct(rv.Type()) {
			return nil, false
		}
		p := make(Payload)
		collectFields(p, rv)
		return p, true
	}

	return nil, false
}

// isOpaqueStruct reports struct types that behave like scalars, such as
// time.Time, which carry no exported fields of their own.
func isOpaqueStruct(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return false
		}
	}
	return true
}

func collectFields(p Payload, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}

		fv := rv.Field(i)
		if field.Anonymous && name == "" {
			for fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					break
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				collectFields(p, fv)
				continue
			}
		}

		if name == "" {
			name = field.Name
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		p[name] = fv.Interface()
	}
}

// Truthy reports whether v counts as a present value. Zero values are
// absent, except collections that were allocated but left empty.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	return !reflect.ValueOf(v).IsZero()
}

// String renders v for substitution into a URL, following pointers.
func String(v any) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}
	return fmt.Sprint(rv.Interface())
}
