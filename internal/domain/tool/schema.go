package tool

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/command"
)

// InputSchema derives the parameter-acceptance contract advertised for cmd:
// an object with one typed property per declared argument, carrying the
// argument's description and default. Required arguments are listed in
// declaration order.
//
// Extra properties are not forbidden; the executor drops them instead.
func InputSchema(cmd command.Command) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(cmd.Arguments)),
	}
	for _, arg := range cmd.Arguments {
		prop := &jsonschema.Schema{
			Type:        string(arg.Type),
			Description: arg.Description,
		}
		if arg.Default != nil {
			if raw, err := json.Marshal(arg.Default); err == nil {
				prop.Default = raw
			}
		}
		schema.Properties[arg.Name] = prop
		if arg.Required {
			schema.Required = append(schema.Required, arg.Name)
		}
	}
	return schema
}
