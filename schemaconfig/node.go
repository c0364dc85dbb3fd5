// Package schemaconfig compiles a declarative YAML schema document into a
// binfield.Prototype tree, the way the teacher's pgconn config package turns
// a plain data structure (connection options) into the live objects the
// engine actually runs against. It is the minimal stand-in for a full schema
// DSL: one YAML node per Field, typed by its "type" name, resolved through
// the same binfield/registry the programmatic Go-struct builder uses.
package schemaconfig

import (
	"github.com/goccy/go-yaml"
)

// Node is one field declaration in a schema document. Its Type selects which
// binfield.Prototype it compiles to; the remaining attributes are
// interpreted according to that type and ignored otherwise, mirroring how a
// loosely-typed config document is validated against the shape its consumer
// actually expects rather than a single rigid struct.
type Node struct {
	Name   string `yaml:"name,omitempty"`
	Type   string `yaml:"type"`
	Endian string `yaml:"endian,omitempty"` // "be" or "le"; record/struct context, inherited by children

	// Record / Struct
	Fields []Node   `yaml:"fields,omitempty"`
	Hide   []string `yaml:"hide,omitempty"`

	// Array
	Element      *Node  `yaml:"element,omitempty"`
	Length       any    `yaml:"length,omitempty"`
	ReadUntil    *Until `yaml:"read_until,omitempty"`
	ReadUntilEOF bool   `yaml:"read_until_eof,omitempty"`

	// Choice
	Selection any             `yaml:"selection,omitempty"`
	Choices   map[string]Node `yaml:"choices,omitempty"`

	// FixedString / CString
	StringLength any  `yaml:"string_length,omitempty"`
	TrimPadding  bool `yaml:"trim_padding,omitempty"`
	PadByte      int  `yaml:"pad_byte,omitempty"`
	MaxLength    int  `yaml:"max_length,omitempty"`

	// Bit / Integer / Float
	Bits int `yaml:"bits,omitempty"`

	InitialValue any `yaml:"initial_value,omitempty"`
	Value        any `yaml:"value,omitempty"`
	CheckValue   any `yaml:"check_value,omitempty"`
}

// Until describes an array's read_until stopping predicate: read elements
// until the one just read, compared against Field (default "element"),
// equals Equals. This is deliberately the one stopping rule a config
// document can express without a general expression grammar — arbitrary
// boolean closures remain a programmatic-builder feature.
type Until struct {
	Field  string `yaml:"field,omitempty"`
	Equals any    `yaml:"equals"`
}

// Parse decodes a schema document's top-level node from YAML.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
