package guardrail

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	customTypesMu sync.RWMutex
	customTypes   = make(map[reflect.Type]*jsonschema.Schema)
)

// RegisterType registers a custom Go type to be mapped to a JSON Schema type/format in generated schemas.
// emptyInstance is a value of the type to register (e.g. uuid.UUID{}, or MyMoney{}); it must not be nil.
// jsonType is the JSON Schema type (e.g. "string", "number"); it must not be empty.
// format is optional (e.g. "uuid", "decimal"). Registration is by reflect.TypeOf(emptyInstance).
// Pointer fields (*T) use the same mapping as T; call RegisterType once for the value type.
// Call RegisterType at application startup before the first SchemaFor.
func RegisterType(emptyInstance any, jsonType, format string) {
	if emptyInstance == nil {
		panic("guardrail: RegisterType emptyInstance must not be nil")
	}
	if jsonType == "" {
		panic("guardrail: RegisterType jsonType must not be empty")
	}
	t := reflect.TypeOf(emptyInstance)
	s := &jsonschema.Schema{Type: jsonType, Format: format}
	customTypesMu.Lock()
	defer customTypesMu.Unlock()
	if customTypes == nil {
		customTypes = make(map[reflect.Type]*jsonschema.Schema)
	}
	customTypes[t] = s
}

// buildTypeSchemas returns a copy of registered type schemas for use in ForOptions.
// Caller holds no lock; safe for concurrent use with RegisterType.
func buildTypeSchemas() map[reflect.Type]*jsonschema.Schema {
	customTypesMu.RLock()
	defer customTypesMu.RUnlock()
	out := make(map[reflect.Type]*jsonschema.Schema, len(customTypes))
	for t, s := range customTypes {
		if s != nil {
			out[t] = s.CloneSchemas()
		}
	}
	return out
}

var errNilSchema = errors.New("schema reflection returned nil")

// SchemaFor generates and compiles a Schema for type T via reflection.
// It is called once when building a wrapper. strict sets
// additionalProperties: false for all objects and makes every property
// required (OpenAI Structured Outputs).
func SchemaFor[T any](strict bool) (Schema, error) {
	opts := &jsonschema.ForOptions{TypeSchemas: buildTypeSchemas()}
	schema, err := jsonschema.For[T](opts)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, errNilSchema
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var def map[string]any
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	enrichSchemaFromStructTags(def, reflect.TypeOf(*new(T)))
	if strict {
		applyStrictMode(def)
	}
	return CompileSchema(def)
}

// enrichSchemaFromStructTags adds description and enum from struct tags to root-level properties.
// typ may be a pointer; json tag (first part before comma) is used to match property keys.
func enrichSchemaFromStructTags(def map[string]any, typ reflect.Type) {
	if def == nil || typ == nil {
		return
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}
	props, ok := def["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return
	}
	// Build json name -> field for root struct
	jsonToField := make(map[string]reflect.StructField)
	for field := range typ.Fields() {
		field := field
		jsonTag := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		jsonToField[jsonTag] = field
	}
	for key, val := range props {
		prop, ok := val.(map[string]any)
		if !ok {
			continue
		}
		field, ok := jsonToField[key]
		if !ok {
			continue
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		if enumStr := field.Tag.Get("enum"); enumStr != "" {
			parts := strings.Split(enumStr, ",")
			enum := make([]any, len(parts))
			for i, p := range parts {
				enum[i] = strings.TrimSpace(p)
			}
			prop["enum"] = enum
		}
	}
}

// applyStrictMode sets additionalProperties: false for every object in the schema.
func applyStrictMode(def map[string]any) {
	walkSchema(def, func(n map[string]any) {
		if _, isObj := n["properties"]; isObj {
			n["additionalProperties"] = false
			if props, ok := n["properties"].(map[string]any); ok {
				keys := make([]string, 0, len(props))
				for k := range props {
					keys = append(keys, k)
				}
				slices.Sort(keys)
				required := make([]any, len(keys))
				for i, k := range keys {
					required[i] = k
				}
				if len(required) > 0 {
					n["required"] = required
				}
			}
		}
	})
}
