package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/serverless-openapi/internal/spec"
)

var parameterIn = map[spec.Location]string{
	spec.InPaths:        openapi3.ParameterInPath,
	spec.InQueryStrings: openapi3.ParameterInQuery,
	spec.InHeaders:      openapi3.ParameterInHeader,
}

// MapParameter builds the OpenAPI parameter for one declared request
// parameter. mapper may be nil, which means a plain string.
func MapParameter(name string, required bool, loc spec.Location, mapper *spec.ParameterMapper) *openapi3.Parameter {
	p := &openapi3.Parameter{
		Name:     name,
		In:       parameterIn[loc],
		Required: required,
	}
	if !required {
		// The library drops "required" when false; keep it explicit.
		p.Extensions = map[string]interface{}{"required": false}
	}

	var schema *openapi3.Schema
	switch {
	case mapper == nil:
		schema = &openapi3.Schema{Type: openapi3.TypeString}
	case mapper.IsArray:
		schema = &openapi3.Schema{
			Type:  openapi3.TypeArray,
			Items: &openapi3.SchemaRef{Value: scalarSchema(mapper)},
		}
	case mapper.Type == "enum":
		schema = scalarSchema(mapper)
	default:
		schema = scalarSchema(mapper)
		p.Deprecated = mapper.Deprecated
		p.Description = mapper.Description
	}
	p.Schema = &openapi3.SchemaRef{Value: schema}
	return p
}

func scalarSchema(m *spec.ParameterMapper) *openapi3.Schema {
	if m.Type == "enum" {
		enum := make([]interface{}, len(m.Options))
		for i, o := range m.Options {
			enum[i] = o
		}
		return &openapi3.Schema{Type: openapi3.TypeString, Enum: enum}
	}
	return &openapi3.Schema{Type: m.Type, Format: m.Format}
}

// ResolveParameters collects path, then query, then header parameters. It
// returns nil when the event declares none.
func ResolveParameters(ev *spec.HTTPEvent) openapi3.Parameters {
	if ev.Request == nil || ev.Request.Parameters == nil {
		return nil
	}
	var out openapi3.Parameters
	for _, loc := range spec.Locations {
		for _, d := range ev.Request.Parameters.In(loc) {
			p := MapParameter(d.Name, d.Required, loc, ev.ParameterMappers.Lookup(loc, d.Name))
			out = append(out, &openapi3.ParameterRef{Value: p})
		}
	}
	return out
}
