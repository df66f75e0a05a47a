package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/whookdev/hki/internal/payload"
	"github.com/whookdev/hki/internal/urltemplate"
)

// The verbs below return an error only when the URL template cannot be
// filled. Request failures are absorbed into the result.

func GetObject[T any](ctx context.Context, c *Client, template string, data any) (*T, error) {
	url, err := urltemplate.Resolve(template, data)
	if err != nil {
		return nil, err
	}
	return AsObject[T](c.Do(ctx, &Request{Method: http.MethodGet, URL: url})), nil
}

func GetArray[T any](ctx context.Context, c *Client, template string, data any) ([]T, error) {
	url, err := urltemplate.Resolve(template, data)
	if err != nil {
		return nil, err
	}
	return AsArray[T](c.Do(ctx, &Request{Method: http.MethodGet, URL: url})), nil
}

func Create[T any](ctx context.Context, c *Client, template string, data any) (*T, error) {
	return sendObject[T](ctx, c, http.MethodPost, template, data)
}

func Update[T any](ctx context.Context, c *Client, template string, data any) (*T, error) {
	return sendObject[T](ctx, c, http.MethodPut, template, data)
}

func sendObject[T any](ctx context.Context, c *Client, method, template string, data any) (*T, error) {
	url, err := urltemplate.Resolve(template, data)
	if err != nil {
		return nil, err
	}
	return AsObject[T](c.SendJSON(ctx, &Request{Method: method, URL: url}, data)), nil
}

// Remove deletes the resource. Scalar data only identifies it; object data
// is also sent along as the request body.
func Remove(ctx context.Context, c *Client, template string, data any) (bool, error) {
	url, err := urltemplate.Resolve(template, data)
	if err != nil {
		return false, err
	}

	req := &Request{Method: http.MethodDelete, URL: url}
	if _, isObject := payload.From(data); !isObject {
		return AsBoolean(c.Do(ctx, req)), nil
	}
	return AsBoolean(c.SendJSON(ctx, req, data)), nil
}

type Templates struct {
	// Create also lists the collection.
	Create string
	// Update also addresses a single record for get and delete. Optional.
	Update string
}

// Single derives both templates from a record template such as
// "/api/users/{id}"; records are created on "/api/users".
func Single(update string) Templates {
	return Templates{
		Create: strings.Replace(update, "/{id}", "", 1),
		Update: update,
	}
}

type Resource[T any] struct {
	client    *Client
	templates Templates
	updateKey string
}

func NewResource[T any](c *Client, templates Templates) *Resource[T] {
	return &Resource[T]{
		client:    c,
		templates: templates,
		updateKey: urltemplate.FirstField(templates.Update),
	}
}

func (r *Resource[T]) Create(ctx context.Context, data any) (*T, error) {
	return Create[T](ctx, r.client, r.templates.Create, data)
}

func (r *Resource[T]) Update(ctx context.Context, data any) (*T, error) {
	return Update[T](ctx, r.client, r.record(), data)
}

// Save updates when data already carries the key the update template is
// addressed by and creates otherwise. The update key wins because create
// payloads may share field names with it, e.g. a user_id on both.
func (r *Resource[T]) Save(ctx context.Context, data any) (*T, error) {
	if r.isExisting(data) {
		return r.Update(ctx, data)
	}
	return r.Create(ctx, data)
}

func (r *Resource[T]) Get(ctx context.Context, data any) (*T, error) {
	return GetObject[T](ctx, r.client, r.record(), data)
}

func (r *Resource[T]) List(ctx context.Context, data any) ([]T, error) {
	return GetArray[T](ctx, r.client, r.templates.Create, data)
}

func (r *Resource[T]) Delete(ctx context.Context, data any) (bool, error) {
	return Remove(ctx, r.client, r.record(), data)
}

func (r *Resource[T]) isExisting(data any) bool {
	if r.updateKey == "" {
		return false
	}
	fields, ok := payload.From(data)
	return ok && payload.Truthy(fields[r.updateKey])
}

func (r *Resource[T]) record() string {
	if r.templates.Update != "" {
		return r.templates.Update
	}
	return r.templates.Create
}
