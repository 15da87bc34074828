// Package openapi synthesizes an OpenAPI 3.0 document from a Serverless
// service model.
package openapi

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/serverless-openapi/internal/logging"
	"github.com/mark3labs/serverless-openapi/internal/spec"
)

// Version is the OpenAPI version written to every document.
const Version = "3.0.0"

type Generator struct {
	logger  logging.Logger
	fsys    fs.FS
	workDir string
}

// Option configures a Generator.
type Option func(*Generator)

func WithLogger(l logging.Logger) Option { return func(g *Generator) { g.logger = l } }

// WithFS sets the working-directory view used for the schema folder. It takes
// precedence over WithWorkDir.
func WithFS(fsys fs.FS) Option { return func(g *Generator) { g.fsys = fsys } }

// WithWorkDir sets the directory schemaFolder is relative to.
func WithWorkDir(dir string) Option { return func(g *Generator) { g.workDir = dir } }

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{workDir: "."}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.OrDiscard(g.logger)
	return g
}

// run holds the state of one Generate call.
type run struct {
	g          *Generator
	custom     spec.CustomProperties
	schemaFS   fs.FS
	comps      Components
	defaultRef *openapi3.ResponseRef
}

// Generate builds the document for svc. Only file-based $ref resolution can
// fail it; every other anomaly is logged and skipped.
func (g *Generator) Generate(ctx context.Context, svc *spec.Service) (*openapi3.T, error) {
	_ = ctx
	custom := svc.Custom
	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       custom.Title,
			Version:     custom.Version,
			Description: custom.Description,
		},
		Paths:      openapi3.Paths{},
		Components: &openapi3.Components{},
	}
	for _, t := range custom.Tags {
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: t.Name, Description: t.Description})
	}

	r := &run{g: g, custom: custom}
	var err error
	if r.schemaFS, err = g.folderFS(custom.SchemaFolder); err != nil {
		return nil, err
	}

	if custom.SchemaFolder != "" {
		found, err := DiscoverFolderSchemas(r.schemaFS, g.logger)
		if err != nil {
			return nil, err
		}
		r.merge(found)
	}

	if custom.DefaultResponse != nil {
		resps, comps := ResolveResponses(spec.ResponseSchemas{{Code: "default", Entry: *custom.DefaultResponse}})
		r.merge(comps)
		r.defaultRef = resps["default"]
	}

	for _, fe := range spec.CollectHTTPEvents(svc.Functions) {
		if fe.HaltedEarly {
			g.logger.Debug("stopped reading events", "function", fe.Function, "index", fe.HaltedAt, "reason", fe.HaltReason)
		}
		for _, ev := range fe.Events {
			op, err := r.operation(fe.Function, ev)
			if err != nil {
				return nil, err
			}
			p := "/" + strings.TrimPrefix(ev.Path, "/")
			item := doc.Paths[p]
			if item == nil {
				item = &openapi3.PathItem{}
				doc.Paths[p] = item
			}
			item.SetOperation(strings.ToUpper(string(spec.ParseHttpMethod(ev.Method))), op)
		}
	}

	doc.Components.Schemas = r.comps.Schemas()
	doc.Components.SecuritySchemes = CopySecuritySchemes(custom.SecuritySchemes)
	return doc, nil
}

func (r *run) operation(fn string, ev *spec.HTTPEvent) (*openapi3.Operation, error) {
	op := &openapi3.Operation{
		OperationID: ev.OperationID,
		Tags:        ev.Tags,
	}

	responses, comps := ResolveResponses(ev.ResponseSchemas)
	r.merge(comps)
	if ev.DefaultResponse {
		if r.defaultRef != nil {
			if responses == nil {
				responses = openapi3.Responses{}
			}
			responses["default"] = r.defaultRef
		} else {
			r.g.logger.Error("default response not found, add custom.openapi.defaultResponse", "function", fn, "path", ev.Path)
		}
	}
	if responses == nil {
		responses = openapi3.Responses{}
	}
	op.Responses = responses

	op.Parameters = ResolveParameters(ev)

	if ev.Request != nil && ev.Request.Schema != nil {
		entry := *ev.Request.Schema
		if entry.Schema != nil {
			resolved, err := ResolveRequestRefs(entry.Schema, r.schemaFS)
			if err != nil {
				return nil, err
			}
			entry.Schema = resolved
		}
		body, comps := ResolveRequestBody(entry)
		r.merge(comps)
		op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}

	if reqs := BindSecurity(ev.Authorizer, r.custom.SecuritySchemes); len(reqs) > 0 {
		op.Security = &reqs
	}
	return op, nil
}

func (r *run) merge(c Components) {
	for _, name := range r.comps.Merge(c) {
		r.g.logger.Warn("component schema overwritten, last definition wins", "name", name)
	}
}

// folderFS returns the schema folder as a file system. The folder need not
// exist.
func (g *Generator) folderFS(folder string) (fs.FS, error) {
	if g.fsys == nil {
		dir := folder
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(g.workDir, folder)
		}
		return os.DirFS(dir), nil
	}
	rel := path.Clean("/" + filepath.ToSlash(folder))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return g.fsys, nil
	}
	return fs.Sub(g.fsys, rel)
}
