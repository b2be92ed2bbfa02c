package rangemap

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Row is one table line: every value in [Low, High] maps to Value.
//
// In YAML a row is written either as a flow triple
//
//	- [9, 13, 1]
//
// or as a mapping with low/high/value keys.
type Row[K Number, V any] struct {
	Low   K
	High  K
	Value V
}

type rowFields[K Number, V any] struct {
	Low   K `yaml:"low"`
	High  K `yaml:"high"`
	Value V `yaml:"value"`
}

// FromRows builds a Map from rows. Any overlap between rows is reported as
// ErrOverlap together with the offending row index.
func FromRows[K Number, V any](rows []Row[K, V]) (*Map[K, V], error) {
	m := New[K, V]()
	for i, row := range rows {
		if err := m.Insert(Span(row.Low, row.High), row.Value); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return m, nil
}

// MustFromRows is FromRows for static tables; it panics on a bad table.
func MustFromRows[K Number, V any](rows []Row[K, V]) *Map[K, V] {
	m, err := FromRows(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// MarshalYAML writes the row as a flow triple.
func (r Row[K, V]) MarshalYAML() (any, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []any{r.Low, r.High, r.Value} {
		var item yaml.Node
		if err := item.Encode(v); err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, &item)
	}
	return seq, nil
}

// UnmarshalYAML accepts a [low, high, value] triple or a low/high/value mapping.
func (r *Row[K, V]) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		if len(value.Content) != 3 {
			return fmt.Errorf("line %d: row wants [low, high, value], got %d items", value.Line, len(value.Content))
		}
		if err := value.Content[0].Decode(&r.Low); err != nil {
			return fmt.Errorf("line %d: low: %w", value.Line, err)
		}
		if err := value.Content[1].Decode(&r.High); err != nil {
			return fmt.Errorf("line %d: high: %w", value.Line, err)
		}
		if err := value.Content[2].Decode(&r.Value); err != nil {
			return fmt.Errorf("line %d: value: %w", value.Line, err)
		}
		return nil
	case yaml.MappingNode:
		var f rowFields[K, V]
		if err := value.Decode(&f); err != nil {
			return err
		}
		r.Low, r.High, r.Value = f.Low, f.High, f.Value
		return nil
	default:
		return fmt.Errorf("line %d: row must be a sequence or a mapping", value.Line)
	}
}

// MarshalYAML writes the map as a sequence of rows in ascending order.
func (m *Map[K, V]) MarshalYAML() (any, error) {
	return m.Rows(), nil
}

// UnmarshalYAML replaces the map content with the decoded rows.
// Overlapping rows fail the decode with ErrOverlap.
func (m *Map[K, V]) UnmarshalYAML(value *yaml.Node) error {
	var rows []Row[K, V]
	if err := value.Decode(&rows); err != nil {
		return err
	}
	built, err := FromRows(rows)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = *built
	return nil
}
