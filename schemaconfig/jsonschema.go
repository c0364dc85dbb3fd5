package schemaconfig

import "github.com/google/jsonschema-go/jsonschema"

// DocumentSchema describes the YAML shape Parse accepts, for editors and
// validators that want to check a document before it ever reaches Compile.
// It intentionally stays one level of nesting deep on recursive attributes
// (fields, element, choices) rather than asserting their full shape, since
// those hold another Node and over-validating here would just duplicate
// Compile's own error reporting.
func DocumentSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Title:       "binstruct schema document",
		Description: "a single field declaration, compiled by schemaconfig.Compile",
		Required:    []string{"type"},
		Properties: map[string]*jsonschema.Schema{
			"name":   {Type: "string"},
			"type":   {Type: "string", Description: "a binfield/registry type name, e.g. uint16le, record, array"},
			"endian": {Type: "string", Description: "be, le, big, or little"},

			"fields": {Type: "array", Description: "Record/Struct children, in declaration order"},
			"hide":   {Type: "array", Items: &jsonschema.Schema{Type: "string"}},

			"element":        {Type: "object", Description: "Array element prototype"},
			"length":         {Description: "Array initial_length: an integer constant or a \":name\" symbol"},
			"read_until":     {Type: "object", Description: "Array stop predicate: {field, equals}"},
			"read_until_eof": {Type: "boolean"},

			"selection": {Description: "Choice selector: an integer/string constant or a \":name\" symbol"},
			"choices":   {Type: "object", Description: "Choice cases, keyed by selector value"},

			"string_length": {Description: "FixedString length: an integer constant or a \":name\" symbol"},
			"trim_padding":  {Type: "boolean"},
			"pad_byte":      {Type: "integer"},
			"max_length":    {Type: "integer", Description: "CString bound; 0 means unbounded"},

			"bits": {Type: "integer"},

			"initial_value": {Description: "default value before Read/Assign"},
			"value":         {Description: "computed value; rejects Assign if set"},
			"check_value":   {Description: "expected value; Read fails if the parsed value differs"},
		},
	}
}
