package extract

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemasFS embed.FS

var (
	invoiceSchema     = mustCompileSchema("schemas/invoice.json")
	informationSchema = mustCompileSchema("schemas/information.json")
)

func mustCompileSchema(name string) *jsonschema.Schema {
	raw, err := schemasFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("extract: read schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("extract: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("extract: compile schema %s: %v", name, err))
	}
	return schema
}

func validatePayload(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
