package encounter

import (
	"github.com/invopop/jsonschema"
)

// Schema describes the saved-encounter JSON format.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(&SavedEncounter{})
	schema.Title = "battlegrid saved encounter"
	schema.Description = "Encounter snapshot, format version " + FormatVersion + "."
	return schema
}
