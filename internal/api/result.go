package api

import "encoding/json"

// The As* helpers settle a request into a fixed shape. Failures were
// already reported by Do, so they only decide what the caller gets instead.

func AsBoolean(_ *Response, err error) bool {
	return err == nil
}

// AsObject decodes the response body into a T, or returns nil on any failure.
func AsObject[T any](res *Response, err error) *T {
	if err != nil || res == nil {
		return nil
	}

	var out *T
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return nil
	}
	return out
}

// AsArray decodes the response body into a []T. It never returns nil.
func AsArray[T any](res *Response, err error) []T {
	if err != nil || res == nil {
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(res.Body, &out); err != nil || out == nil {
		return []T{}
	}
	return out
}
