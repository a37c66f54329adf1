package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
)

// Endpoints are the paths of one resource. "{id}" is replaced by the
// record id. An empty path means the API does not offer that operation.
type Endpoints struct {
	List   string
	Get    string
	Create string
	Update string
	Delete string
}

// Kind names a resource for cache tags and error messages.
type Kind struct {
	Tag       string
	Noun      string
	Plural    string
	Endpoints Endpoints
}

type Resource[T any] struct {
	client *Client
	kind   Kind
	idOf   func(*T) string
}

func NewResource[T any](c *Client, kind Kind, idOf func(*T) string) *Resource[T] {
	return &Resource[T]{client: c, kind: kind, idOf: idOf}
}

func (r *Resource[T]) Kind() Kind {
	return r.kind
}

// ListTag is the tag of the collection listing, "<Type>:all".
func (r *Resource[T]) ListTag() string {
	return r.kind.Tag + ":all"
}

// Tag is the tag of one record, "<Type>:<id>".
func (r *Resource[T]) Tag(id string) string {
	return r.kind.Tag + ":" + id
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	path := r.kind.Endpoints.List
	if path == "" {
		return nil, r.unsupported("list")
	}

	body, err := r.client.cache.Fetch(ctx, r.ListTag(), func(ctx context.Context) ([]byte, error) {
		return r.client.do(ctx, request{method: http.MethodGet, path: path, verb: "fetch", noun: r.kind.Plural})
	})
	if err != nil {
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &APIError{Message: "Failed to fetch " + r.kind.Plural, Err: err}
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	path, err := r.path(r.kind.Endpoints.Get, id, "get")
	if err != nil {
		return zero, err
	}

	body, err := r.client.cache.Fetch(ctx, r.Tag(id), func(ctx context.Context) ([]byte, error) {
		return r.client.do(ctx, request{method: http.MethodGet, path: path, verb: "fetch", noun: r.kind.Noun})
	})
	if err != nil {
		return zero, err
	}
	return r.decode(body, "fetch")
}

// Create sends payload and, on success, invalidates the listing and seeds
// the new record's tag with the server's response.
func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var zero T
	path := r.kind.Endpoints.Create
	if path == "" {
		return zero, r.unsupported("create")
	}
	if err := validatePayload(payload); err != nil {
		return zero, err
	}

	body, err := r.client.do(ctx, request{method: http.MethodPost, path: path, body: payload, verb: "create", noun: r.kind.Noun})
	if err != nil {
		return zero, err
	}
	created, err := r.decode(body, "create")
	if err != nil {
		return zero, err
	}

	r.invalidate(r.ListTag())
	if id := r.idOf(&created); id != "" {
		r.client.cache.Store(r.Tag(id), body)
	}
	return created, nil
}

// Update sends a partial payload and invalidates the listing and the record.
func (r *Resource[T]) Update(ctx context.Context, id string, patch any) (T, error) {
	var zero T
	path, err := r.path(r.kind.Endpoints.Update, id, "update")
	if err != nil {
		return zero, err
	}
	if err := validatePayload(patch); err != nil {
		return zero, err
	}

	body, err := r.client.do(ctx, request{method: http.MethodPut, path: path, body: patch, verb: "update", noun: r.kind.Noun})
	if err != nil {
		return zero, err
	}

	r.invalidate(r.ListTag(), r.Tag(id))

	if len(strings.TrimSpace(string(body))) == 0 {
		return zero, nil
	}
	return r.decode(body, "update")
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	path, err := r.path(r.kind.Endpoints.Delete, id, "delete")
	if err != nil {
		return err
	}

	if _, err := r.client.do(ctx, request{method: http.MethodDelete, path: path, verb: "delete", noun: r.kind.Noun}); err != nil {
		return err
	}

	r.invalidate(r.ListTag(), r.Tag(id))
	return nil
}

func (r *Resource[T]) invalidate(tags ...string) {
	r.client.cache.Invalidate(tags...)
	invalidationsTotal.WithLabelValues(r.kind.Tag).Add(float64(len(tags)))
}

func (r *Resource[T]) path(template, id, op string) (string, error) {
	if template == "" {
		return "", r.unsupported(op)
	}
	if strings.TrimSpace(id) == "" {
		return "", apperrors.NewValidationError(r.kind.Noun+" id is required",
			apperrors.ValidationDetail{Field: "id", Message: "id is required"})
	}
	return strings.ReplaceAll(template, "{id}", url.PathEscape(id)), nil
}

func (r *Resource[T]) decode(body []byte, verb string) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &APIError{Message: fmt.Sprintf("Failed to %s %s", verb, r.kind.Noun), Err: err}
	}
	return out, nil
}

func (r *Resource[T]) unsupported(op string) error {
	return fmt.Errorf("%w: %s %s", ErrUnsupported, op, r.kind.Plural)
}

// validatePayload runs the request struct's tag rules before anything goes
// out on the wire. Maps and raw JSON pass through untouched.
func validatePayload(payload any) error {
	if payload == nil {
		return nil
	}
	v := reflect.ValueOf(payload)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return dto.Validate(v.Interface())
}
