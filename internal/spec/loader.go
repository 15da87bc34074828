package spec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/go-openapi/jsonpointer"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/serverless-openapi/internal/logging"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path
	JSONPointer string // e.g. "#/functions/hello/events/0/http"
	Violations  []Violation
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// Mode decides what happens to config-schema violations.
	Mode   ValidationMode
	Logger logging.Logger
	// Overrides are merged over the decoded custom.openapi block; non-zero
	// fields win.
	Overrides *CustomProperties
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{Mode: ModeWarn}
}

// Option mutates Settings.
type Option func(*Settings)

func WithValidationMode(m ValidationMode) Option { return func(s *Settings) { s.Mode = m } }
func WithLogger(l logging.Logger) Option         { return func(s *Settings) { s.Logger = l } }
func WithOverrides(c CustomProperties) Option    { return func(s *Settings) { s.Overrides = &c } }

// Load reads a Serverless service file (YAML or JSON) and returns its model.
func Load(ctx context.Context, path string, opts ...Option) (*Service, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: path, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return Parse(ctx, raw, abs, opts...)
}

// Parse builds the model from service file bytes. location is only used in
// errors and log lines.
func Parse(ctx context.Context, data []byte, location string, opts ...Option) (*Service, error) {
	_ = ctx
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	settings.Logger = logging.OrDiscard(settings.Logger)

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: service file must be a mapping", location), Location: location}
	}
	root := doc.Content[0]

	l := &loader{settings: settings, location: location}
	svc := &Service{Name: serviceName(lookup(root, "service"))}

	custom, err := l.custom(lookup(lookup(root, "custom"), "openapi"))
	if err != nil {
		return nil, err
	}
	svc.Custom = custom

	fns, err := l.functions(lookup(root, "functions"))
	if err != nil {
		return nil, err
	}
	svc.Functions = fns

	if err := l.finish(); err != nil {
		return nil, err
	}
	return svc, nil
}

type loader struct {
	settings   Settings
	location   string
	violations []Violation
}

func (l *loader) report(vs []Violation) {
	if l.settings.Mode == ModeOff {
		return
	}
	l.violations = append(l.violations, vs...)
}

// finish applies the validation mode to everything reported so far.
func (l *loader) finish() error {
	if len(l.violations) == 0 {
		return nil
	}
	if l.settings.Mode == ModeError {
		lines := make([]string, 0, len(l.violations)+1)
		lines = append(lines, fmt.Sprintf("invalid service configuration in %s:", l.location))
		for _, v := range l.violations {
			lines = append(lines, "  - "+v.String())
		}
		return &SpecError{
			Code:        ValidationError,
			Message:     strings.Join(lines, "\n"),
			Location:    l.location,
			JSONPointer: "#" + l.violations[0].Pointer,
			Violations:  l.violations,
		}
	}
	for _, v := range l.violations {
		l.settings.Logger.Warn("configuration warning", "at", v.Pointer, "error", v.Message)
	}
	return nil
}

func (l *loader) custom(n *yaml.Node) (CustomProperties, error) {
	var c CustomProperties
	var generic any = map[string]any{}
	if n != nil {
		if err := n.Decode(&generic); err != nil {
			return c, l.parseErr("/custom/openapi", err)
		}
		generic = NormalizeValue(generic)
	}
	if l.settings.Mode != ModeOff {
		vs, err := validateCustom(generic)
		if err != nil {
			return c, err
		}
		l.report(vs)
	}

	m, _ := generic.(map[string]any)
	if err := decodeLoose(m, &c); err != nil {
		return c, l.parseErr("/custom/openapi", err)
	}
	if dr, ok := m["defaultResponse"]; ok {
		var wrap struct {
			JSON *SchemaEntry `mapstructure:"application/json"`
		}
		if err := decodeLoose(dr, &wrap); err != nil {
			return c, l.parseErr("/custom/openapi/defaultResponse", err)
		}
		c.DefaultResponse = wrap.JSON
	}
	if c.DefaultResponse != nil && c.DefaultResponse.Schema != nil {
		c.DefaultResponse.Schema, _ = normalizeMap(c.DefaultResponse.Schema)
	}

	if o := l.settings.Overrides; o != nil {
		if err := mergo.Merge(&c, *o, mergo.WithOverride); err != nil {
			return c, &SpecError{Code: InputError, Message: fmt.Sprintf("apply overrides: %v", err), Location: l.location, Cause: err}
		}
	}
	if l.settings.Mode != ModeOff {
		l.report(validateCustomRules(&c))
	}
	return c, nil
}

func (l *loader) functions(n *yaml.Node) ([]Function, error) {
	if n == nil || n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, l.parseErr("/functions", fmt.Errorf("line %d: functions must be a mapping", n.Line))
	}
	out := make([]Function, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		fn := Function{Name: name}
		events := lookup(n.Content[i+1], "events")
		if events != nil && events.Kind == yaml.SequenceNode {
			for j, item := range events.Content {
				base := fmt.Sprintf("/functions/%s/events/%d", jsonpointer.Escape(name), j)
				ev, err := l.event(item, base)
				if err != nil {
					return nil, err
				}
				fn.Events = append(fn.Events, ev)
			}
		}
		out = append(out, fn)
	}
	return out, nil
}

func (l *loader) event(item *yaml.Node, base string) (Event, error) {
	if item.Kind != yaml.MappingNode || len(item.Content) < 2 {
		return Event{}, nil
	}
	typ, body := item.Content[0].Value, item.Content[1]
	ev := Event{Type: typ}
	if typ != "http" {
		return ev, nil
	}
	if body.Kind == yaml.ScalarNode {
		ev.Shorthand = body.Value
		return ev, nil
	}
	if body.Kind != yaml.MappingNode {
		return ev, nil
	}
	ptr := base + "/http"
	if l.settings.Mode != ModeOff {
		var generic any
		if err := body.Decode(&generic); err != nil {
			return ev, l.parseErr(ptr, err)
		}
		vs, err := validateHTTPEvent(NormalizeValue(generic), ptr)
		if err != nil {
			return ev, err
		}
		l.report(vs)
	}
	var h HTTPEvent
	if err := body.Decode(&h); err != nil {
		return ev, l.parseErr(ptr, err)
	}
	ev.HTTP = &h
	return ev, nil
}

func (l *loader) parseErr(pointer string, err error) error {
	var se *SpecError
	if errors.As(err, &se) {
		return err
	}
	return &SpecError{
		Code:        ParseError,
		Message:     fmt.Sprintf("%s: #%s: %v", l.location, pointer, err),
		Location:    l.location,
		JSONPointer: "#" + pointer,
		Cause:       err,
	}
}

func decodeLoose(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// lookup returns the value node stored under key in a mapping node.
func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func serviceName(n *yaml.Node) string {
	switch {
	case n == nil:
		return ""
	case n.Kind == yaml.ScalarNode:
		return n.Value
	default:
		if name := lookup(n, "name"); name != nil {
			return name.Value
		}
		return ""
	}
}
