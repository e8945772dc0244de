package paginate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind tells ParseQuery how to convert a raw filter value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindUUID
	KindTime
)

// DefaultCreatedField is the timestamp column used for the default sort and date range.
const DefaultCreatedField = "created_at"

// Schema is the allow-list of fields a list endpoint accepts.
type Schema struct {
	// Filters maps filterable field names to their kind.
	Filters map[string]Kind
	// Sortable lists fields accepted in Sort_<field>. Directives come out in this order.
	Sortable []string
	// CreatedField defaults to DefaultCreatedField.
	CreatedField string
	// MaxLimit caps the page size when > 0.
	MaxLimit int
	// Strict turns unknown keys into field issues instead of dropping them.
	Strict bool
}

func (s Schema) createdField() string {
	if s.CreatedField == "" {
		return DefaultCreatedField
	}
	return s.CreatedField
}

func (s Schema) sortable(field string) bool {
	for _, f := range s.Sortable {
		if f == field {
			return true
		}
	}
	return false
}

// ErrInvalidQuery is the marker for query parameters that could not be translated.
var ErrInvalidQuery = errors.New("invalid query")

// FieldIssue describes one rejected query parameter.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// QueryError aggregates the issues found while parsing a query.
type QueryError struct {
	Issues []FieldIssue
}

func (e *QueryError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidQuery, strings.Join(parts, "; "))
}

func (e *QueryError) Unwrap() error { return ErrInvalidQuery }

// convert turns a raw query value into the Go value for kind.
func convert(kind Kind, raw string) (any, error) {
	switch kind {
	case KindInt:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case KindBool:
		return strconv.ParseBool(strings.TrimSpace(raw))
	case KindUUID:
		return uuid.Parse(strings.TrimSpace(raw))
	case KindTime:
		return parseTime(raw)
	default:
		return raw, nil
	}
}

func kindName(k Kind) string {
	switch k {
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	case KindUUID:
		return "uuid"
	case KindTime:
		return "timestamp"
	default:
		return "string"
	}
}

// parseTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC).
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be RFC3339 or YYYY-MM-DD: %w", err)
	}
	return t, nil
}
