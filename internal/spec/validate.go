package spec

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-openapi/jsonpointer"
	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// ValidationMode mirrors Serverless configValidationMode.
type ValidationMode string

const (
	ModeWarn  ValidationMode = "warn"
	ModeError ValidationMode = "error"
	ModeOff   ValidationMode = "off"
)

// ParseValidationMode accepts warn, error or off (case-insensitive).
func ParseValidationMode(s string) (ValidationMode, error) {
	switch m := ValidationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeWarn, ModeError, ModeOff:
		return m, nil
	case "":
		return ModeWarn, nil
	default:
		return "", fmt.Errorf("unknown validation mode %q (want warn, error or off)", s)
	}
}

// Violation is one leaf failure of a config schema or struct rule.
type Violation struct {
	// Pointer locates the offending value inside the service file.
	Pointer string
	Kind    string
	Message string
}

func (v Violation) String() string { return v.Pointer + ": " + v.Message }

var (
	customSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		return compileEmbedded("custom.json")
	})
	httpEventSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		return compileEmbedded("http_event.json")
	})
	structRules = sync.OnceValue(newStructValidator)
)

func compileEmbedded(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFiles.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("add %s: %w", name, err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return sch, nil
}

// validateCustom checks a normalized custom.openapi value.
func validateCustom(doc any) ([]Violation, error) {
	sch, err := customSchema()
	if err != nil {
		return nil, err
	}
	return schemaViolations(sch, doc, "/custom/openapi"), nil
}

// validateHTTPEvent checks a normalized http event value. base is the JSON
// pointer of the event inside the service file.
func validateHTTPEvent(doc any, base string) ([]Violation, error) {
	sch, err := httpEventSchema()
	if err != nil {
		return nil, err
	}
	return schemaViolations(sch, doc, base), nil
}

func schemaViolations(sch *jsonschema.Schema, doc any, base string) []Violation {
	err := sch.Validate(doc)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Violation{{Pointer: base, Kind: "schema", Message: err.Error()}}
	}
	var out []Violation
	collectViolations(verr, base, &out)
	return out
}

func collectViolations(verr *jsonschema.ValidationError, base string, out *[]Violation) {
	if verr == nil {
		return
	}
	if len(verr.Causes) == 0 {
		*out = append(*out, Violation{
			Pointer: joinPointer(base, verr.InstanceLocation),
			Kind:    strings.Join(verr.ErrorKind.KeywordPath(), "/"),
			Message: leafMessage(verr),
		})
		return
	}
	for _, cause := range verr.Causes {
		collectViolations(cause, base, out)
	}
}

// leafMessage drops the "at '<pointer>': " prefix the library adds, since
// Violation carries the pointer separately.
func leafMessage(verr *jsonschema.ValidationError) string {
	msg := verr.Error()
	if strings.HasPrefix(msg, "at '") {
		if i := strings.Index(msg, "': "); i > 0 {
			return msg[i+3:]
		}
	}
	return msg
}

func joinPointer(base string, tokens []string) string {
	var sb strings.Builder
	sb.WriteString(base)
	for _, t := range tokens {
		sb.WriteByte('/')
		sb.WriteString(jsonpointer.Escape(t))
	}
	return sb.String()
}

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(securitySchemeRules, SecurityScheme{})
	return v
}

func securitySchemeRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(SecurityScheme)
	switch s.Type {
	case "apiKey":
		switch s.In {
		case "query", "header", "cookie":
		default:
			sl.ReportError(s.In, "In", "in", "oneof", "query header cookie")
		}
	case "http":
		if s.BearerFormat != "" && !strings.EqualFold(s.Scheme, "bearer") {
			sl.ReportError(s.BearerFormat, "BearerFormat", "bearerFormat", "bearer_only", s.Scheme)
		}
	}
}

// validateCustomRules applies the struct rules that a JSON schema cannot
// express cleanly. Violations come back sorted by scheme name.
func validateCustomRules(c *CustomProperties) []Violation {
	var out []Violation
	names := make([]string, 0, len(c.SecuritySchemes))
	for name := range c.SecuritySchemes {
		names = append(names, name)
	}
	sort.Strings(names)
	v := structRules()
	for _, name := range names {
		err := v.Struct(c.SecuritySchemes[name])
		if err == nil {
			continue
		}
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			out = append(out, Violation{Pointer: "/custom/openapi/securitySchemes/" + jsonpointer.Escape(name), Kind: "struct", Message: err.Error()})
			continue
		}
		for _, fe := range verrs {
			out = append(out, Violation{
				Pointer: "/custom/openapi/securitySchemes/" + jsonpointer.Escape(name) + "/" + lowerFirst(fe.Field()),
				Kind:    fe.Tag(),
				Message: ruleMessage(fe),
			})
		}
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s, got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "bearer_only":
		return fmt.Sprintf("only allowed when scheme is bearer, got scheme %q", fe.Param())
	default:
		return fmt.Sprintf("failed %s rule", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
