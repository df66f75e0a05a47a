// Package urltemplate fills `{name}` and `{name?}` placeholders in request
// paths from payload data.
package urltemplate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/whookdev/hki/internal/payload"
)

var placeholder = regexp.MustCompile(`\{[^}]*?\}`)

// MissingFieldError is returned when a mandatory placeholder has no value.
// It always points at a caller bug and is never swallowed by result wrappers.
type MissingFieldError struct {
	Field   string
	Pattern string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("no %q provided for url %q", e.Field, e.Pattern)
}

// Resolve substitutes every placeholder in pattern. Object-like data is
// looked up by placeholder name; any other data is used for every
// placeholder as is. Values are inserted verbatim without escaping.
func Resolve(pattern string, data any) (string, error) {
	fields, isObject := payload.From(data)

	var resolveErr error
	out := placeholder.ReplaceAllStringFunc(pattern, func(tag string) string {
		if resolveErr != nil {
			return ""
		}

		name, optional := parseTag(tag)

		value := data
		if isObject {
			value = fields[name]
		}

		if !payload.Truthy(value) {
			if !optional {
				resolveErr = &MissingFieldError{Field: name, Pattern: pattern}
			}
			return ""
		}

		return payload.String(value)
	})
	if resolveErr != nil {
		return "", resolveErr
	}

	return out, nil
}

// FirstField returns the first placeholder name, or "" when there is none.
func FirstField(pattern string) string {
	tag := placeholder.FindString(pattern)
	if tag == "" {
		return ""
	}
	name, _ := parseTag(tag)
	return name
}

func parseTag(tag string) (name string, optional bool) {
	name = strings.TrimSuffix(strings.TrimPrefix(tag, "{"), "}")
	if strings.Contains(name, "?") {
		return strings.TrimSuffix(name, "?"), true
	}
	return name, false
}
