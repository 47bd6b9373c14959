package model

import "fmt"

// Schema maps named features to fixed vector positions.
// The name to index assignment is validated once at construction,
// so that the numeric layers only ever deal with plain ordered vectors.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema creates a schema for the given feature names in the given order.
func NewSchema(names ...string) (*Schema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("schema needs at least one feature")
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := index[name]; ok {
			return nil, fmt.Errorf("duplicate feature '%s'", name)
		}
		index[name] = i
	}
	return &Schema{
		names: names,
		index: index,
	}, nil
}

// Size returns the vector dimension the schema produces.
func (s *Schema) Size() int {
	return len(s.names)
}

// Names returns the feature names in vector order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Index returns the vector position for the given feature name.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Vector places the named values at their schema positions.
// Unknown or missing names are a caller error.
func (s *Schema) Vector(values map[string]float64) ([]float64, error) {
	if len(values) != len(s.names) {
		return nil, fmt.Errorf("expected %d features, got %d", len(s.names), len(values))
	}
	v := make([]float64, len(s.names))
	for name, value := range values {
		i, ok := s.index[name]
		if !ok {
			return nil, fmt.Errorf("unknown feature '%s'", name)
		}
		v[i] = value
	}
	return v, nil
}
