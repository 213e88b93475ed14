package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/censudex-gateway/internal/domain"
)

// dateOnly is accepted next to RFC 3339 in date filters and read as UTC midnight.
const dateOnly = "2006-01-02"

// getPathID extracts a non-empty identifier from the URL path parameters.
func getPathID(r *http.Request, paramName string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, paramName))
	if id == "" {
		return "", domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}
	return id, nil
}

// getPathInt32 extracts a positive 32-bit integer from the URL path parameters.
func getPathInt32(r *http.Request, paramName string) (int32, error) {
	raw := chi.URLParam(r, paramName)
	n, ok := parsePositiveInt32(raw)
	if !ok {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrInvalidID)
	}
	return n, nil
}

func parsePositiveInt32(raw string) (int32, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int32(n), true
}

// queryParams reads optional query filters, collecting every malformed
// value into a single validation error.
type queryParams struct {
	values url.Values
	err    *domain.ValidationError
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{values: r.URL.Query()}
}

// String returns the value of key, or nil when absent or empty.
func (q *queryParams) String(key string) *string {
	v := q.values.Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// Int32 returns the value of key as an int32, or nil when absent or empty.
// Zero is a valid filter value.
func (q *queryParams) Int32(key string) *int32 {
	v := q.values.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
	if err != nil || n < 0 {
		q.invalid(key, "must be a non-negative integer")
		return nil
	}
	out := int32(n)
	return &out
}

// Time returns the value of key as a time, or nil when absent or empty.
func (q *queryParams) Time(key string) *time.Time {
	v := q.values.Get(key)
	if v == "" {
		return nil
	}
	// an unescaped "+" offset arrives as a space
	v = strings.ReplaceAll(v, " ", "+")
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t, err = time.Parse(dateOnly, v)
	}
	if err != nil {
		q.invalid(key, "must be an RFC 3339 timestamp or a date in 2006-01-02 format")
		return nil
	}
	t = t.UTC()
	return &t
}

// Err returns the accumulated validation error, if any.
func (q *queryParams) Err() error {
	if q.err == nil {
		return nil
	}
	return q.err
}

func (q *queryParams) invalid(key, message string) {
	if q.err == nil {
		q.err = domain.NewValidationError(key, message, domain.ErrValidation)
		return
	}
	q.err.Add(key, message)
}
