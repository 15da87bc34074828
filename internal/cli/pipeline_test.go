package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalServiceYAML = "" +
	"service: hello\n" +
	"custom:\n" +
	"  openapi:\n" +
	"    version: '1.0.0'\n" +
	"    title: Test API\n" +
	"    out: docs/openapi.yaml\n" +
	"functions:\n" +
	"  hello:\n" +
	"    handler: handler.hello\n" +
	"    events:\n" +
	"      - http:\n" +
	"          path: hello\n" +
	"          method: get\n" +
	"          responseSchemas:\n" +
	"            200:\n" +
	"              application/json:\n" +
	"                description: ok\n"

func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func writeService(t *testing.T, body string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "serverless.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write service: %v", err)
	}
	return dir, path
}

func runRoot(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = os.Stderr })

	dir, svc := writeService(t, minimalServiceYAML)
	outPath := filepath.Join(dir, "out", "openapi.json")

	out := captureStdout(func() {
		if err := runRoot(t, "-c", svc, "generate", "-o", outPath, "--dry-run"); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(out, "Planned write to") || !strings.Contains(out, "(json,") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	// Dry-run should not create the directory
	if _, err := os.Stat(filepath.Dir(outPath)); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_OutFromCustomProperties(t *testing.T) {
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = os.Stderr })

	dir, svc := writeService(t, minimalServiceYAML)
	if err := runRoot(t, "-c", svc, "generate"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	// custom.openapi.out is relative to the service file.
	data, err := os.ReadFile(filepath.Join(dir, "docs", "openapi.yaml"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "openapi: 3.0.0") || !strings.Contains(string(data), "/hello:") {
		t.Fatalf("unexpected yaml output:\n%s", data)
	}
}

func TestGeneratePipeline_FlagOutWinsAndWritesJSON(t *testing.T) {
	var logs bytes.Buffer
	logOutput = &logs
	t.Cleanup(func() { logOutput = os.Stderr })

	dir, svc := writeService(t, minimalServiceYAML)
	outPath := filepath.Join(dir, "flag.json")
	if err := runRoot(t, "-c", svc, "generate", "--out", outPath); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc["openapi"] != "3.0.0" {
		t.Fatalf("unexpected document: %v", doc)
	}
	if !strings.Contains(string(data), "\n  \"") {
		t.Fatalf("expected two-space indentation")
	}
	if _, err := os.Stat(filepath.Join(dir, "docs")); err == nil {
		t.Fatalf("custom.openapi.out must not be used when --out is set")
	}
	if !strings.Contains(logs.String(), "OpenAPI document written") {
		t.Fatalf("expected info log, got: %s", logs.String())
	}
}

func TestGeneratePipeline_ValidationErrorIsUsageError(t *testing.T) {
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = os.Stderr })

	_, svc := writeService(t, "custom:\n  openapi:\n    title: no version\n")
	err := runRoot(t, "-c", svc, "generate", "--validation", "error", "--dry-run")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Pointer: #/custom/openapi") {
		t.Fatalf("expected pointer in message: %v", err)
	}
}

func TestGeneratePipeline_MissingServiceFile(t *testing.T) {
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = os.Stderr })

	err := runRoot(t, "-c", filepath.Join(t.TempDir(), "missing.yml"), "generate")
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "Location:") {
		t.Fatalf("expected usage error with location, got %v", err)
	}
}

func TestGeneratePipeline_BadRequestRef(t *testing.T) {
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = os.Stderr })

	body := minimalServiceYAML + "" +
		"  create:\n" +
		"    handler: handler.create\n" +
		"    events:\n" +
		"      - http:\n" +
		"          path: hello\n" +
		"          method: post\n" +
		"          request:\n" +
		"            schemas:\n" +
		"              application/json:\n" +
		"                name: body\n" +
		"                description: body\n" +
		"                schema:\n" +
		"                  $ref: ./missing.json\n"
	_, svc := writeService(t, body)
	err := runRoot(t, "-c", svc, "generate", "--dry-run")
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("expected usage error naming the ref, got %v", err)
	}
}
