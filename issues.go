package guardrail

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var issuePrinter = message.NewPrinter(language.English)

// issuesFromError flattens a jsonschema validation error into ordered issues.
// Leaf causes become one issue each, except a missing-required-properties
// leaf, which becomes one issue per missing property so every violated field
// is reported individually.
func issuesFromError(err error) []Issue {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Issue{{Message: err.Error()}}
	}
	var out []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, leafIssues(e)...)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	if len(out) == 0 {
		out = []Issue{{Message: ve.Error()}}
	}
	return out
}

func leafIssues(e *jsonschema.ValidationError) []Issue {
	path := append([]string(nil), e.InstanceLocation...)
	if k, ok := e.ErrorKind.(*kind.Required); ok {
		issues := make([]Issue, 0, len(k.Missing))
		for _, name := range k.Missing {
			fieldPath := make([]string, 0, len(path)+1)
			fieldPath = append(fieldPath, path...)
			fieldPath = append(fieldPath, name)
			issues = append(issues, Issue{Message: "missing required property", Path: fieldPath})
		}
		return issues
	}
	return []Issue{{Message: kindMessage(e.ErrorKind), Path: path}}
}

// kindMessage renders an error kind with stable wording for the common cases
// and the engine's localized text otherwise.
func kindMessage(k jsonschema.ErrorKind) string {
	switch k := k.(type) {
	case *kind.Type:
		return fmt.Sprintf("expected %s, received %s", strings.Join(k.Want, " or "), k.Got)
	case *kind.Enum:
		want := make([]string, len(k.Want))
		for i, w := range k.Want {
			want[i] = fmt.Sprintf("%v", w)
		}
		return fmt.Sprintf("invalid value %v, expected one of %s", k.Got, strings.Join(want, ", "))
	default:
		return k.LocalizedString(issuePrinter)
	}
}
