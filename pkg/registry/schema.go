package registry

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// JSONSchema renders the schema as the object schema advertised to protocol clients.
func (s Schema) JSONSchema() *jsonschema.Schema {
	out := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(s)),
	}

	for _, f := range s {
		prop := &jsonschema.Schema{
			Type:        string(f.Type),
			Description: f.Description,
		}
		if f.Identifier && len(f.Verbs) == 0 {
			prop.Pattern = IdentifierPattern
		}
		out.Properties[f.Name] = prop

		if f.Required {
			out.Required = append(out.Required, f.Name)
		}
	}

	return out
}

// IdentifierPattern is the shape of every board, card, and column identifier.
const IdentifierPattern = `^[A-Za-z0-9]+$`
