package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/serverless-openapi/internal/spec"
)

// BindSecurity picks the security requirements for an operation. A named
// authorizer must match a scheme key exactly. A typed authorizer without a
// name falls back to the only declared scheme. Anything else binds nothing.
func BindSecurity(auth spec.Authorizer, schemes map[string]spec.SecurityScheme) openapi3.SecurityRequirements {
	reqs := openapi3.SecurityRequirements{}
	var key string
	switch a := auth.(type) {
	case spec.NamedAuthorizer:
		key = string(a)
	case spec.TypedAuthorizer:
		key = a.Name
		if key == "" && a.Type != "" && len(schemes) == 1 {
			for only := range schemes {
				key = only
			}
		}
	}
	if _, ok := schemes[key]; ok && key != "" {
		reqs = append(reqs, openapi3.NewSecurityRequirement().Authenticate(key))
	}
	return reqs
}

// CopySecuritySchemes converts declared schemes for components.securitySchemes.
// The Default marker is not part of OpenAPI and is left behind.
func CopySecuritySchemes(schemes map[string]spec.SecurityScheme) openapi3.SecuritySchemes {
	if len(schemes) == 0 {
		return nil
	}
	out := make(openapi3.SecuritySchemes, len(schemes))
	for key, s := range schemes {
		out[key] = &openapi3.SecuritySchemeRef{Value: &openapi3.SecurityScheme{
			Type:         s.Type,
			Description:  s.Description,
			Name:         s.Name,
			In:           s.In,
			Scheme:       s.Scheme,
			BearerFormat: s.BearerFormat,
		}}
	}
	return out
}
