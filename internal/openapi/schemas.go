package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/serverless-openapi/internal/spec"
)

// ResolveResponses turns per-status schema entries into OpenAPI responses and
// returns the component schemas they reference. A nil input yields nil.
func ResolveResponses(entries spec.ResponseSchemas) (openapi3.Responses, Components) {
	var comps Components
	if entries == nil {
		return nil, comps
	}
	out := make(openapi3.Responses, len(entries))
	for _, st := range entries {
		desc := st.Entry.Description
		resp := &openapi3.Response{Description: &desc}
		if st.Entry.Schema != nil {
			resp.Content = openapi3.NewContentWithJSONSchemaRef(responseSchema(st.Entry, &comps))
		}
		out[st.Code] = &openapi3.ResponseRef{Value: resp}
	}
	return out, comps
}

// ResolveRequestBody builds the request body for entry. The body is always
// required; without a schema its content is empty.
func ResolveRequestBody(entry spec.SchemaEntry) (*openapi3.RequestBody, Components) {
	var comps Components
	body := &openapi3.RequestBody{
		Description: entry.Description,
		Required:    true,
		Content:     openapi3.Content{},
	}
	if entry.Schema != nil {
		body.Content = openapi3.NewContentWithJSONSchemaRef(
			registerOrInline(CanonicalName(entry), stripMeta(entry.Schema), &comps))
	}
	return body, comps
}

// responseSchema applies the array rule: a titled array registers only its
// items under the title, an untitled one stays inline.
func responseSchema(entry spec.SchemaEntry, comps *Components) *openapi3.SchemaRef {
	schema := stripMeta(entry.Schema)
	if schema["type"] != "array" {
		return registerOrInline(CanonicalName(entry), schema, comps)
	}
	title, _ := schema["title"].(string)
	items, ok := schema["items"].(map[string]any)
	if title == "" || !ok {
		return fragment(schema)
	}
	name := capitalize(title)
	comps.Set(name, fragment(stripMeta(items)))
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:  openapi3.TypeArray,
		Items: &openapi3.SchemaRef{Ref: SchemaRef(name)},
	}}
}

func registerOrInline(name string, schema map[string]any, comps *Components) *openapi3.SchemaRef {
	if name == "" {
		return fragment(schema)
	}
	comps.Set(name, fragment(schema))
	return &openapi3.SchemaRef{Ref: SchemaRef(name)}
}

// fragment carries a user JSON-Schema verbatim. Keeping it in Extensions
// means draft-07 keywords are emitted exactly as written.
func fragment(schema map[string]any) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Extensions: schema}}
}

// stripMeta returns schema without its own "$schema" declaration.
func stripMeta(schema map[string]any) map[string]any {
	if _, ok := schema["$schema"]; !ok {
		return schema
	}
	out := make(map[string]any, len(schema)-1)
	for k, v := range schema {
		if k != "$schema" {
			out[k] = v
		}
	}
	return out
}
