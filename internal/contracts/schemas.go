package contracts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/cache/cached-slots/v1.json
var cachedSlotsSchemaV1 string

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	const schemaURL = "schemas/cache/cached-slots/v1.json"
	if err := compiler.AddResource(schemaURL, strings.NewReader(cachedSlotsSchemaV1)); err != nil {
		log.Fatalf("failed to add schema resource %s: %v", schemaURL, err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		log.Fatalf("failed to compile schema %s: %v", schemaURL, err)
	}

	compiledSchemas["CachedSlotsPayload/1.0.0"] = schema
}

// ValidatePayload принимает сериализованный payload и его метаданные и проверяет по схеме
func ValidatePayload(payloadType, payloadVersion string, body []byte) error {
	key := fmt.Sprintf("%s/%s", payloadType, payloadVersion)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema for payload '%s' version '%s' not found", payloadType, payloadVersion)
	}

	// распарсить JSON в универсальный тип interface{}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		// Невалидный JSON проверять по схеме невозможно
		return fmt.Errorf("payload body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}

	return nil
}
