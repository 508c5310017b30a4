package guardrail

import "reflect"

// Validatable is implemented by argument structs that need custom business
// validation. Called by the typed constructors after schema validation and
// decoding.
type Validatable interface {
	Validate() error
}

// validateCustom runs Validatable.Validate() if args implements it.
func validateCustom(args any) error {
	if v, ok := args.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// runCustomValidation runs Validatable.Validate() on args; if args does not
// implement Validatable, it tries &args for value types (pointer receiver).
// Never calls Validate twice for the same receiver.
func runCustomValidation[T any](args T) error {
	if err := validateCustom(any(args)); err != nil {
		return err
	}
	if _, ok := any(args).(Validatable); ok {
		return nil
	}
	typ := reflect.TypeOf(args)
	if typ == nil || typ.Kind() == reflect.Pointer {
		return nil
	}
	return validateCustom(any(&args))
}
