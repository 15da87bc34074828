package openapi

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/jsonpointer"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/serverless-openapi/internal/logging"
	"github.com/mark3labs/serverless-openapi/internal/spec"
)

const sharedDir = "shared"

var (
	// ErrCircularRef reports a $ref chain that leads back to itself.
	ErrCircularRef = errors.New("circular $ref")
	// ErrUnreadableRef reports a $ref to a file that is not .json or .yml.
	ErrUnreadableRef = errors.New("only .json and .yml files can be referenced")
)

// BundleError is a fatal failure while resolving a file-based $ref.
type BundleError struct {
	Ref   string // the $ref as written
	Path  string // file path inside the schema folder
	Cause error
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("resolve $ref %q (%s): %v", e.Ref, e.Path, e.Cause)
}

func (e *BundleError) Unwrap() error { return e.Cause }

func bundleable(name string) bool {
	switch path.Ext(name) {
	case ".json", ".yml":
		return true
	}
	return false
}

// DiscoverFolderSchemas registers every .json/.yml file found directly in the
// root of fsys and in its shared subfolder as a component pointing at that
// file. A missing folder contributes nothing.
func DiscoverFolderSchemas(fsys fs.FS, logger logging.Logger) (Components, error) {
	logger = logging.OrDiscard(logger)
	var comps Components
	for _, dir := range []string{".", sharedDir} {
		ok, err := dirExists(fsys, dir)
		if err != nil {
			return comps, err
		}
		if !ok {
			logger.Debug("schema folder not found", "dir", dir)
			continue
		}
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return comps, fmt.Errorf("list schema folder %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || !bundleable(e.Name()) {
				continue
			}
			base := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
			ref := "./" + path.Join(dir, e.Name())
			comps.Set(capitalize(base), &openapi3.SchemaRef{Ref: ref})
			logger.Debug("registered folder schema", "name", capitalize(base), "ref", ref)
		}
	}
	return comps, nil
}

func dirExists(fsys fs.FS, dir string) (bool, error) {
	info, err := fs.Stat(fsys, dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat schema folder %s: %w", dir, err)
	}
	return info.IsDir(), nil
}

// ResolveRequestRefs replaces every file-based $ref inside schema with the
// content it points to. Paths are rooted at fsys; refs inside a loaded file
// resolve relative to that file. Local refs at the top level are kept.
func ResolveRequestRefs(schema map[string]any, fsys fs.FS) (map[string]any, error) {
	r := &refResolver{fsys: fsys, docs: map[string]any{}}
	out, err := r.walk(schema, "", nil)
	if err != nil {
		return nil, err
	}
	m, _ := out.(map[string]any)
	return m, nil
}

type refResolver struct {
	fsys  fs.FS
	docs  map[string]any
	stack []string
}

// walk resolves refs in node. file and doc describe the document node was
// read from; both are empty for the request schema itself.
func (r *refResolver) walk(node any, file string, doc any) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		ref, isRef := v["$ref"].(string)
		if !isRef || (strings.HasPrefix(ref, "#") && file == "") {
			return r.walkMap(v, file, doc, "")
		}
		resolved, err := r.follow(ref, file, doc)
		if err != nil {
			return nil, err
		}
		if len(v) == 1 {
			return resolved, nil
		}
		base, ok := resolved.(map[string]any)
		if !ok {
			return resolved, nil
		}
		siblings, err := r.walkMap(v, file, doc, "$ref")
		if err != nil {
			return nil, err
		}
		merged := make(map[string]any, len(base)+len(v))
		for k, val := range base {
			merged[k] = val
		}
		for k, val := range siblings.(map[string]any) {
			merged[k] = val
		}
		return merged, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			res, err := r.walk(item, file, doc)
			if err != nil {
				return nil, err
			}
			out[i] = res
		}
		return out, nil
	default:
		return node, nil
	}
}

func (r *refResolver) walkMap(m map[string]any, file string, doc any, skip string) (any, error) {
	out := make(map[string]any, len(m))
	for k, val := range m {
		if k == skip {
			continue
		}
		res, err := r.walk(val, file, doc)
		if err != nil {
			return nil, err
		}
		out[k] = res
	}
	return out, nil
}

func (r *refResolver) follow(ref, file string, doc any) (any, error) {
	target, frag, _ := strings.Cut(ref, "#")
	targetFile, targetDoc := file, doc
	if target != "" {
		if strings.HasPrefix(target, "/") {
			targetFile = path.Clean(strings.TrimLeft(target, "/"))
		} else {
			targetFile = path.Join(path.Dir(file), target)
		}
		if !bundleable(targetFile) {
			return nil, &BundleError{Ref: ref, Path: targetFile, Cause: ErrUnreadableRef}
		}
		var err error
		if targetDoc, err = r.load(targetFile); err != nil {
			return nil, &BundleError{Ref: ref, Path: targetFile, Cause: err}
		}
	}

	key := targetFile + "#" + frag
	for _, seen := range r.stack {
		if seen == key {
			return nil, &BundleError{Ref: ref, Path: targetFile, Cause: ErrCircularRef}
		}
	}

	node := targetDoc
	if frag != "" {
		ptr, err := jsonpointer.New(frag)
		if err != nil {
			return nil, &BundleError{Ref: ref, Path: targetFile, Cause: err}
		}
		if node, _, err = ptr.Get(targetDoc); err != nil {
			return nil, &BundleError{Ref: ref, Path: targetFile, Cause: err}
		}
	}

	r.stack = append(r.stack, key)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()
	return r.walk(node, targetFile, targetDoc)
}

func (r *refResolver) load(name string) (any, error) {
	if doc, ok := r.docs[name]; ok {
		return doc, nil
	}
	raw, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	doc = spec.NormalizeValue(doc)
	r.docs[name] = doc
	return doc, nil
}
