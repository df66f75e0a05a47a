package api

import (
	"fmt"
	"reflect"
	"time"

	"github.com/whookdev/hki/internal/payload"
)

type dater interface {
	Date() (year int, month time.Month, day int)
}

// PrepareBody returns a copy of body with every date-valued field rendered
// as YYYY-MM-DD, the only date format the service accepts.
func PrepareBody(body payload.Payload) payload.Payload {
	out := make(payload.Payload, len(body))
	for k, v := range body {
		if date, ok := formatDate(v); ok {
			out[k] = date
			continue
		}
		out[k] = v
	}
	return out
}

func formatDate(v any) (string, bool) {
	d, ok := v.(dater)
	if !ok {
		return "", false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", false
	}

	year, month, day := d.Date()
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day), true
}
