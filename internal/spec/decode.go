package spec

import (
	"fmt"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// The UnmarshalYAML methods below decode the http event shape directly from
// yaml.v3 nodes so that mapping order (functions, parameters, status codes)
// is kept exactly as written.

type rawHTTPEvent struct {
	Path             string          `yaml:"path"`
	Method           string          `yaml:"method"`
	OperationID      string          `yaml:"operationId"`
	Tags             []string        `yaml:"tags"`
	Authorizer       yaml.Node       `yaml:"authorizer"`
	DefaultResponse  any             `yaml:"defaultResponse"`
	Request          *rawRequest     `yaml:"request"`
	ResponseSchemas  ResponseSchemas `yaml:"responseSchemas"`
	ParameterMappers *struct {
		Parameters *ParameterMappers `yaml:"parameters"`
	} `yaml:"parameterMappers"`
}

type rawRequest struct {
	Parameters *RequestParameters `yaml:"parameters"`
	Schemas    *struct {
		JSON *SchemaEntry `yaml:"application/json"`
	} `yaml:"schemas"`
}

func (e *HTTPEvent) UnmarshalYAML(value *yaml.Node) error {
	var raw rawHTTPEvent
	if err := value.Decode(&raw); err != nil {
		return err
	}
	auth, err := decodeAuthorizer(&raw.Authorizer)
	if err != nil {
		return err
	}
	dr, err := looseBool(raw.DefaultResponse)
	if err != nil {
		return fmt.Errorf("defaultResponse: %w", err)
	}
	*e = HTTPEvent{
		Path:            raw.Path,
		Method:          raw.Method,
		OperationID:     raw.OperationID,
		Tags:            raw.Tags,
		Authorizer:      auth,
		DefaultResponse: dr,
		ResponseSchemas: raw.ResponseSchemas,
	}
	if raw.Request != nil {
		e.Request = &Request{Parameters: raw.Request.Parameters}
		if raw.Request.Schemas != nil {
			e.Request.Schema = raw.Request.Schemas.JSON
		}
	}
	if raw.ParameterMappers != nil {
		e.ParameterMappers = raw.ParameterMappers.Parameters
	}
	return nil
}

func decodeAuthorizer(n *yaml.Node) (Authorizer, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" || n.Value == "" {
			return nil, nil
		}
		return NamedAuthorizer(n.Value), nil
	case yaml.MappingNode:
		var t struct {
			Name string `yaml:"name"`
			Type string `yaml:"type"`
		}
		if err := n.Decode(&t); err != nil {
			return nil, fmt.Errorf("authorizer: %w", err)
		}
		return TypedAuthorizer{Name: t.Name, Type: t.Type}, nil
	default:
		return nil, fmt.Errorf("authorizer: line %d: expected a name or an object", n.Line)
	}
}

// UnmarshalYAML accepts both "name: true" and "name: {required: true}".
func (s *ParameterSet) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		if value.Tag == "!!null" {
			*s = nil
			return nil
		}
		return fmt.Errorf("line %d: parameters must be a mapping", value.Line)
	}
	out := make(ParameterSet, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		name, v := value.Content[i].Value, value.Content[i+1]
		var flag any
		switch v.Kind {
		case yaml.MappingNode:
			var obj struct {
				Required any `yaml:"required"`
			}
			if err := v.Decode(&obj); err != nil {
				return err
			}
			flag = obj.Required
		default:
			if err := v.Decode(&flag); err != nil {
				return err
			}
		}
		required, err := looseBool(flag)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		out = append(out, ParameterDescriptor{Name: name, Required: required})
	}
	*s = out
	return nil
}

func (r *ResponseSchemas) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		if value.Tag == "!!null" {
			*r = nil
			return nil
		}
		return fmt.Errorf("line %d: responseSchemas must be a mapping", value.Line)
	}
	out := make(ResponseSchemas, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		code := value.Content[i].Value
		var byType struct {
			JSON *SchemaEntry `yaml:"application/json"`
		}
		if err := value.Content[i+1].Decode(&byType); err != nil {
			return fmt.Errorf("responseSchemas.%s: %w", code, err)
		}
		st := StatusSchema{Code: code}
		if byType.JSON != nil {
			st.Entry = *byType.JSON
		}
		out = append(out, st)
	}
	*r = out
	return nil
}

func (e *SchemaEntry) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Schema      any    `yaml:"schema"`
		Name        string `yaml:"name"`
		CustomName  string `yaml:"customName"`
		Description string `yaml:"description"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*e = SchemaEntry{Name: raw.Name, CustomName: raw.CustomName, Description: raw.Description}
	if raw.Schema != nil {
		m, ok := normalizeMap(raw.Schema)
		if !ok {
			return fmt.Errorf("line %d: schema must be an object", value.Line)
		}
		e.Schema = m
	}
	return nil
}

// looseBool treats a missing value as false and coerces "true"/"1" style
// strings the way Serverless does.
func looseBool(v any) (bool, error) {
	if v == nil {
		return false, nil
	}
	return cast.ToBoolE(v)
}
