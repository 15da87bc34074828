package spec

import "strings"

// Service model produced from a Serverless service file and consumed by the
// OpenAPI generator. Everything here is read-only once loaded.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// ParseHttpMethod maps a Serverless method name onto an OpenAPI operation
// key. Anything unknown (including "any") falls back to TRACE.
func ParseHttpMethod(s string) HttpMethod {
	switch m := HttpMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS:
		return m
	default:
		return TRACE
	}
}

type Service struct {
	Name      string
	Custom    CustomProperties
	Functions []Function // file order
}

type Function struct {
	Name   string
	Events []Event
}

// Event is one entry of a function's events list. HTTP is set only for the
// structured http form; the legacy "http: GET path" form lands in Shorthand.
type Event struct {
	Type      string
	HTTP      *HTTPEvent
	Shorthand string
}

type HTTPEvent struct {
	Path             string
	Method           string
	OperationID      string
	Tags             []string
	Authorizer       Authorizer
	DefaultResponse  bool
	Request          *Request
	ResponseSchemas  ResponseSchemas
	ParameterMappers *ParameterMappers
}

type Request struct {
	Parameters *RequestParameters
	// Schema is the application/json request schema, when declared.
	Schema *SchemaEntry
}

// Location is a Serverless request parameter group.
type Location string

const (
	InPaths        Location = "paths"
	InQueryStrings Location = "querystrings"
	InHeaders      Location = "headers"
)

// Locations lists parameter groups in the order they are emitted.
var Locations = []Location{InPaths, InQueryStrings, InHeaders}

type ParameterDescriptor struct {
	Name     string
	Required bool
}

// ParameterSet keeps declaration order.
type ParameterSet []ParameterDescriptor

type RequestParameters struct {
	Paths        ParameterSet `yaml:"paths"`
	QueryStrings ParameterSet `yaml:"querystrings"`
	Headers      ParameterSet `yaml:"headers"`
}

// In returns the descriptors declared for loc.
func (p *RequestParameters) In(loc Location) ParameterSet {
	if p == nil {
		return nil
	}
	switch loc {
	case InPaths:
		return p.Paths
	case InQueryStrings:
		return p.QueryStrings
	case InHeaders:
		return p.Headers
	}
	return nil
}

// ParameterMapper refines the OpenAPI schema of a single parameter.
type ParameterMapper struct {
	Type        string   `yaml:"type" json:"type"`
	Format      string   `yaml:"format,omitempty" json:"format,omitempty"`
	IsArray     bool     `yaml:"isArray,omitempty" json:"isArray,omitempty"`
	Deprecated  bool     `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
}

type ParameterMappers struct {
	Paths        map[string]*ParameterMapper `yaml:"paths"`
	QueryStrings map[string]*ParameterMapper `yaml:"querystrings"`
	Headers      map[string]*ParameterMapper `yaml:"headers"`
}

// Lookup returns the mapper declared for name in loc, or nil.
func (m *ParameterMappers) Lookup(loc Location, name string) *ParameterMapper {
	if m == nil {
		return nil
	}
	switch loc {
	case InPaths:
		return m.Paths[name]
	case InQueryStrings:
		return m.QueryStrings[name]
	case InHeaders:
		return m.Headers[name]
	}
	return nil
}

// SchemaEntry is a named JSON-Schema fragment plus its description.
type SchemaEntry struct {
	Schema      map[string]any `mapstructure:"schema"`
	Name        string         `mapstructure:"name"`
	CustomName  string         `mapstructure:"customName"`
	Description string         `mapstructure:"description"`
}

type StatusSchema struct {
	Code  string
	Entry SchemaEntry
}

// ResponseSchemas keeps status codes in declaration order.
type ResponseSchemas []StatusSchema

// Authorizer is either a NamedAuthorizer or a TypedAuthorizer.
type Authorizer interface {
	isAuthorizer()
}

// NamedAuthorizer is the bare string form, e.g. "authorizer: myAuth".
type NamedAuthorizer string

// TypedAuthorizer is the object form; either field may be empty.
type TypedAuthorizer struct {
	Name string
	Type string
}

func (NamedAuthorizer) isAuthorizer() {}
func (TypedAuthorizer) isAuthorizer() {}

// CustomProperties is the custom.openapi block of the service file.
type CustomProperties struct {
	Version         string                    `mapstructure:"version"`
	Title           string                    `mapstructure:"title"`
	Description     string                    `mapstructure:"description"`
	Tags            []Tag                     `mapstructure:"tags"`
	SecuritySchemes map[string]SecurityScheme `mapstructure:"securitySchemes" validate:"dive"`
	DefaultResponse *SchemaEntry              `mapstructure:"-"`
	SchemaFolder    string                    `mapstructure:"schemaFolder"`
	Out             string                    `mapstructure:"out"`
}

type Tag struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// SecurityScheme is a declared scheme. Default is a non-standard marker
// that is never copied into the generated document.
type SecurityScheme struct {
	Type         string `mapstructure:"type" validate:"required,oneof=apiKey http"`
	Description  string `mapstructure:"description"`
	Name         string `mapstructure:"name" validate:"required_if=Type apiKey"`
	In           string `mapstructure:"in" validate:"required_if=Type apiKey"`
	Scheme       string `mapstructure:"scheme" validate:"required_if=Type http"`
	BearerFormat string `mapstructure:"bearerFormat"`
	Default      bool   `mapstructure:"default"`
}
