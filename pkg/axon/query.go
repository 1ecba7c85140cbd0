package axon

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// QueryMap is the value bound to a query parameter that has no schema.
// It holds a private copy of the request's query string.
type QueryMap struct {
	values url.Values
}

// NewQueryMap copies values into a QueryMap
func NewQueryMap(values map[string][]string) QueryMap {
	copied := make(url.Values, len(values))
	for key, vals := range values {
		copied[key] = slices.Clone(vals)
	}
	return QueryMap{values: copied}
}

// Get returns the first value of key or ""
func (q QueryMap) Get(key string) string {
	return q.values.Get(key)
}

// GetDefault returns the first value of key, or fallback when it is missing or empty
func (q QueryMap) GetDefault(key, fallback string) string {
	if value := q.values.Get(key); value != "" {
		return value
	}
	return fallback
}

// GetInt returns the first value of key as an int, or 0
func (q QueryMap) GetInt(key string) int {
	return q.GetIntDefault(key, 0)
}

// GetIntDefault returns the first value of key as an int, or fallback when it is missing or not a number
func (q QueryMap) GetIntDefault(key string, fallback int) int {
	n, err := strconv.Atoi(q.values.Get(key))
	if err != nil {
		return fallback
	}
	return n
}

// GetBool reports whether key holds one of true, 1, yes or on
func (q QueryMap) GetBool(key string) bool {
	switch strings.ToLower(q.values.Get(key)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// GetAll returns every value of key
func (q QueryMap) GetAll(key string) []string {
	return q.values[key]
}

// Has reports whether key was sent, even without a value
func (q QueryMap) Has(key string) bool {
	return q.values.Has(key)
}

// Keys returns the parameter names in sorted order
func (q QueryMap) Keys() []string {
	return slices.Sorted(maps.Keys(q.values))
}
