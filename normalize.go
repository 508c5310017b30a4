package guardrail

// NormalizeEmptyOptional returns a shallow copy of record where every field
// the schema declares optional or nullable and whose value is the empty
// string is removed. Clients posting empty form fields then pass
// string-required checks; only emptiness is overridden, other type
// mismatches are untouched. Fields not declared by the schema pass through
// unchanged, the input record is never mutated, and nested objects are not
// visited (top-level fields only).
func NormalizeEmptyOptional(record map[string]any, schema Schema) map[string]any {
	if record == nil {
		return nil
	}
	fields := schema.Fields()
	out := make(map[string]any, len(record))
	for name, value := range record {
		if s, ok := value.(string); ok && s == "" {
			if f, declared := fields[name]; declared && (f.Optional || f.Nullable) {
				continue
			}
		}
		out[name] = value
	}
	return out
}
