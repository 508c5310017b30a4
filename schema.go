package guardrail

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Field describes the declared shape of a top-level schema property.
type Field struct {
	Optional bool // not listed in the object's required set
	Nullable bool // accepts JSON null
}

// Schema is the validation contract consumed by the wrappers: compile once,
// validate many. Implementations must be safe for concurrent use.
type Schema interface {
	// Validate checks v and returns the engine's envelope: on success a
	// normalized copy of v, on failure the ordered issue list.
	Validate(v any) Result
	// ValidateStrip is Validate in closed mode: object fields not declared
	// by the schema are dropped from the value before validation runs.
	ValidateStrip(v any) Result
	// Fields reports per-field optionality metadata for the root object.
	Fields() map[string]Field
	// Definition returns the raw JSON Schema document (top-level copy).
	Definition() map[string]any
}

// jsonSchema binds the Schema contract to a compiled JSON Schema document.
type jsonSchema struct {
	def      map[string]any
	compiled *jsonschema.Schema
}

// CompileSchema compiles a raw JSON Schema document into a Schema.
// A defensive deep copy is made first; the caller's map is never mutated.
func CompileSchema(def map[string]any) (Schema, error) {
	if def == nil {
		return nil, fmt.Errorf("schema document must not be nil")
	}
	docCopy, err := deepCopySchema(def)
	if err != nil {
		return nil, fmt.Errorf("failed to deep copy schema document: %w", err)
	}
	stripSchemaIDs(docCopy)
	compiled, err := compileRawSchema(docCopy)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &jsonSchema{def: docCopy, compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema that panics on error. Use for static
// schema literals known to be valid.
func MustCompileSchema(def map[string]any) Schema {
	s, err := CompileSchema(def)
	if err != nil {
		panic("guardrail: " + err.Error())
	}
	return s
}

func (s *jsonSchema) Validate(v any) Result      { return s.validate(v, false) }
func (s *jsonSchema) ValidateStrip(v any) Result { return s.validate(v, true) }

func (s *jsonSchema) validate(v any, strip bool) Result {
	norm, err := normalizeValue(v)
	if err != nil {
		return Result{Issues: []Issue{{Message: "value is not representable as JSON: " + err.Error()}}}
	}
	if strip {
		norm = stripUnknown(s.def, s.def, norm)
	}
	if err := s.compiled.Validate(norm); err != nil {
		return Result{Issues: issuesFromError(err)}
	}
	return Result{Success: true, Value: norm}
}

// Fields resolves the root object and reports each declared property.
// A property is optional when absent from "required" and nullable when its
// type set (or an anyOf/oneOf branch) admits null.
func (s *jsonSchema) Fields() map[string]Field {
	root := resolveRef(s.def, s.def)
	props, ok := root["properties"].(map[string]any)
	if !ok {
		return nil
	}
	required := make(map[string]bool)
	if req, ok := root["required"].([]any); ok {
		for _, name := range req {
			if n, ok := name.(string); ok {
				required[n] = true
			}
		}
	}
	out := make(map[string]Field, len(props))
	for name, raw := range props {
		prop, _ := raw.(map[string]any)
		out[name] = Field{
			Optional: !required[name],
			Nullable: isNullable(s.def, prop),
		}
	}
	return out
}

// Definition returns a deep copy of the schema document; mutating it cannot
// affect validation or Fields.
func (s *jsonSchema) Definition() map[string]any {
	out, err := deepCopySchema(s.def)
	if err != nil {
		// def itself came through a JSON round trip, so it always marshals.
		return nil
	}
	return out
}

// normalizeValue deep-copies v through a JSON round trip so the engine sees
// canonical JSON types and the wrapped unit receives a value the caller
// cannot alias.
func normalizeValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// deepCopySchema copies a schema document via a JSON round trip.
func deepCopySchema(def map[string]any) (map[string]any, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// compileRawSchema compiles a raw JSON Schema map into a validator. The map
// is not mutated. Callers must ensure the schema is valid (e.g. no
// conflicting $id that would break resolution).
func compileRawSchema(def map[string]any) (*jsonschema.Schema, error) {
	doc, err := deepCopySchema(def)
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("mem://schema.json")
}

// stripUnknown drops object fields not declared by the schema node and
// recurses through declared properties and array items. Objects whose node
// declares no properties pass through unchanged.
func stripUnknown(root, node map[string]any, v any) any {
	node = resolveRef(root, node)
	if node == nil {
		return v
	}
	switch val := v.(type) {
	case map[string]any:
		props, ok := node["properties"].(map[string]any)
		if !ok {
			return val
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			raw, declared := props[k]
			if !declared {
				continue
			}
			if sub, ok := raw.(map[string]any); ok {
				out[k] = stripUnknown(root, sub, item)
			} else {
				out[k] = item
			}
		}
		return out
	case []any:
		items, ok := node["items"].(map[string]any)
		if !ok {
			return val
		}
		for i, item := range val {
			val[i] = stripUnknown(root, items, item)
		}
		return val
	default:
		return v
	}
}

// resolveRef follows local "$ref" pointers ("#/$defs/...", "#/definitions/...")
// within the same document. Bounded to guard against reference cycles.
func resolveRef(root, node map[string]any) map[string]any {
	for range 16 {
		if node == nil {
			return nil
		}
		ref, ok := node["$ref"].(string)
		if !ok {
			return node
		}
		target := lookupPointer(root, ref)
		if target == nil {
			return node
		}
		node = target
	}
	return node
}

// lookupPointer resolves a local JSON Pointer reference against the document root.
func lookupPointer(root map[string]any, ref string) map[string]any {
	path, ok := strings.CutPrefix(ref, "#/")
	if !ok {
		return nil
	}
	node := root
	for _, seg := range strings.Split(path, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		next, ok := node[seg].(map[string]any)
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

// isNullable reports whether a property schema admits JSON null. The schema
// and any anyOf/oneOf branch may be a $ref into the document rooted at root.
func isNullable(root, prop map[string]any) bool {
	prop = resolveRef(root, prop)
	if prop == nil {
		return false
	}
	switch typ := prop["type"].(type) {
	case string:
		if typ == "null" {
			return true
		}
	case []any:
		for _, t := range typ {
			if t == "null" {
				return true
			}
		}
	}
	for _, key := range []string{"anyOf", "oneOf"} {
		branches, ok := prop[key].([]any)
		if !ok {
			continue
		}
		for _, b := range branches {
			if bm, ok := b.(map[string]any); ok && isNullable(root, bm) {
				return true
			}
		}
	}
	return false
}

// walkSchema recursively visits every map node in the schema tree (including $defs and definitions).
func walkSchema(def map[string]any, visit func(map[string]any)) {
	if def == nil {
		return
	}
	visit(def)
	for _, val := range def {
		switch v := val.(type) {
		case map[string]any:
			walkSchema(v, visit)
		case []any:
			for _, item := range v {
				if m2, ok := item.(map[string]any); ok {
					walkSchema(m2, visit)
				}
			}
		}
	}
}

// Keyword sets for the schema-structure-aware walk in stripSchemaIDs.
// namedSchemaKeywords hold maps whose keys are data field names (or patterns,
// or definition names) and whose values are subschemas; the map itself is not
// a schema node, so its keys must never be treated as schema keywords.
var (
	namedSchemaKeywords  = []string{"properties", "patternProperties", "$defs", "definitions", "dependentSchemas"}
	singleSchemaKeywords = []string{"items", "additionalItems", "additionalProperties", "unevaluatedProperties", "unevaluatedItems", "contains", "propertyNames", "not", "if", "then", "else"}
	schemaListKeywords   = []string{"items", "prefixItems", "allOf", "anyOf", "oneOf"}
)

// stripSchemaIDs removes id and $id from every schema node so resolution does
// not depend on them. The walk follows JSON Schema structure: values inside
// properties (and the other name-to-schema maps) are subschemas, but their
// keys are data field names, so a field literally named "id" or "$id" stays
// declared.
func stripSchemaIDs(def map[string]any) {
	if def == nil {
		return
	}
	delete(def, "id")
	delete(def, "$id")
	for _, kw := range namedSchemaKeywords {
		if m, ok := def[kw].(map[string]any); ok {
			for _, sub := range m {
				if s, ok := sub.(map[string]any); ok {
					stripSchemaIDs(s)
				}
			}
		}
	}
	for _, kw := range singleSchemaKeywords {
		if s, ok := def[kw].(map[string]any); ok {
			stripSchemaIDs(s)
		}
	}
	for _, kw := range schemaListKeywords {
		if list, ok := def[kw].([]any); ok {
			for _, item := range list {
				if s, ok := item.(map[string]any); ok {
					stripSchemaIDs(s)
				}
			}
		}
	}
}
