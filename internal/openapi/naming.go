package openapi

import (
	"unicode"
	"unicode/utf8"

	"github.com/mark3labs/serverless-openapi/internal/spec"
)

const schemaRefPrefix = "#/components/schemas/"

// CanonicalName is the component key for entry: CustomName over Name with
// the first character upper-cased. An empty result means "emit inline".
func CanonicalName(entry spec.SchemaEntry) string {
	name := entry.CustomName
	if name == "" {
		name = entry.Name
	}
	return capitalize(name)
}

// SchemaRef returns the local $ref for a component name.
func SchemaRef(name string) string { return schemaRefPrefix + name }

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
