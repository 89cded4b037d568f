package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a JSON schema from a Go value. Doc comments from
// the source directories (relative to the module root) become schema
// descriptions.
type SchemaGenerator struct {
	v      any
	module string
	dirs   []string
}

func NewSchemaGenerator(v any, module string, dirs ...string) *SchemaGenerator {
	return &SchemaGenerator{v: v, module: module, dirs: dirs}
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		ExpandedStruct:             true,
	}

	for _, dir := range g.dirs {
		err := r.AddGoComments(g.module, dir)
		if err != nil {
			return nil, fmt.Errorf("add comments from %s: %w", dir, err)
		}
	}

	b, err := json.MarshalIndent(r.Reflect(g.v), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(b, '\n'), nil
}
