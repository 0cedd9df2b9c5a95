package attribute

import "strings"

// SpecMap accumulates the key/value pairs of one document, preserving first-seen key order
type SpecMap struct {
	keys   []string
	values map[string]string
}

// NewSpecMap creates an empty SpecMap
func NewSpecMap() *SpecMap {
	return &SpecMap{values: make(map[string]string)}
}

// Add merges value into key. Rules, first match wins:
//  1. key == value: discarded
//  2. new key: inserted
//  3. identical value: no-op
//  4. value already contained in the existing value: no-op
//  5. existing value contained in value: value replaces it
//  6. otherwise appended as ",value" unless it is already one of the comma tokens
func (m *SpecMap) Add(key, value string) {
	if key == value {
		return
	}

	existing, ok := m.values[key]
	if !ok {
		m.keys = append(m.keys, key)
		m.values[key] = value
		return
	}

	switch {
	case existing == value:
		return
	case strings.Contains(existing, value):
		return
	case strings.Contains(value, existing):
		// keeps the merged value containing every value added under key
		m.values[key] = value
		return
	}

	trimmed := strings.TrimSpace(value)
	for _, token := range strings.Split(existing, ",") {
		if strings.TrimSpace(token) == trimmed {
			return
		}
	}
	m.values[key] = existing + "," + value
}

// Get returns the merged value for key
func (m *SpecMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys
func (m *SpecMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in first-seen order
func (m *SpecMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Each calls fn for every pair in first-seen key order
func (m *SpecMap) Each(fn func(key, value string)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// CheckmarkKeys returns the keys whose merged value is a checkmark glyph
func (m *SpecMap) CheckmarkKeys() []string {
	var keys []string
	m.Each(func(key, value string) {
		if IsCheckmark(value) {
			keys = append(keys, key)
		}
	})
	return keys
}
