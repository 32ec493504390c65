package faction

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/faction.schema.json
var schemaText string

var docSchema = jsonschema.MustCompileString("faction.schema.json", schemaText)

// Lint checks a parsed document against the canonical schema and returns
// one message per deviation. Lint is advisory: Normalize remains the
// authority on what loads, and it accepts everything Lint complains about
// short of a non-object root. An empty result means the document is clean.
func Lint(doc any) []string {
	err := docSchema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var out []string
	collectCauses(ve, &out)
	return out
}

// collectCauses walks to the leaves of the validation error tree; interior
// nodes just restate their children.
func collectCauses(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collectCauses(c, out)
	}
}

// LintSummary renders lint messages as one indented block for CLI output.
func LintSummary(msgs []string) string {
	if len(msgs) == 0 {
		return "document matches the canonical schema"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d deviation(s):\n", len(msgs))
	for _, m := range msgs {
		b.WriteString("  ")
		b.WriteString(m)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
