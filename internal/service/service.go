// Package service holds the use cases behind the HTTP handlers. Services validate input, apply the
// record workflows and translate persistence errors into the sentinels handlers map to statuses.
package service

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"

	"hisapi/internal/repository"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("record conflicts with an existing one")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation matches every *ValidationError with errors.Is.
	ErrValidation = errors.New("validation failed")
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

// ListQuery is the service-level pagination and filter input.
type ListQuery struct {
	Limit   int
	Offset  int
	Filters map[string]any
}

// ListResult is the service-level DTO for paginated records.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

func (q ListQuery) page() repository.PageQuery {
	limit, offset := q.Limit, q.Offset
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset, Filters: q.Filters}
}

// ParseFilters converts raw query values: ids become int64 and "true"/"false" become bools.
// A non-numeric id value is a validation error naming the key.
func ParseFilters(raw map[string]string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		switch {
		case strings.HasSuffix(k, "_id") || k == "id":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, invalid(k, "must be an integer")
			}
			out[k] = n
		case v == "true" || v == "false":
			out[k] = v == "true"
		default:
			out[k] = v
		}
	}
	return out, nil
}

// newValidator returns a validator that looks inside null.* wrappers, so rules apply to the
// value when it is set and `omitempty` skips it when it is not.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if s, ok := field.Interface().(null.String); ok && s.Valid {
			return s.String
		}
		return nil
	}, null.String{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if i, ok := field.Interface().(null.Int64); ok && i.Valid {
			return i.Int64
		}
		return nil
	}, null.Int64{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if t, ok := field.Interface().(null.Time); ok && t.Valid {
			return t.Time
		}
		return nil
	}, null.Time{})
	return v
}

// validateStruct runs struct tag rules and returns a *ValidationError on failure.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		msg := "failed on '" + fe.Tag() + "'"
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// translate maps repository and driver errors onto service sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, repository.ErrUnknownFilter) {
		_, key, _ := strings.Cut(err.Error(), ": ")
		return invalid("filter", "unknown filter "+strconv.Quote(key))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "23503":
			return invalid(pgErr.ConstraintName, "references a missing record")
		case "23514", "23502":
			return invalid(firstNonEmpty(pgErr.ColumnName, pgErr.ConstraintName), pgErr.Message)
		case "22P02":
			return invalid(firstNonEmpty(pgErr.ColumnName, "filter"), pgErr.Message)
		}
	}
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, s := range vals {
		if s != "" {
			return s
		}
	}
	return ""
}
