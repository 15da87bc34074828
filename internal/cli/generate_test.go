package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mark3labs/serverless-openapi/internal/spec"
)

func captureGenerateConfig(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured, err := captureGenerateConfig(t,
		"--verbose",
		"--config", "api/serverless.yml",
		"generate",
		"-o", " docs/openapi.yaml ",
		"--schema-folder", "./schemas",
		"--validation", "ERROR",
		"--dry-run",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}
	if captured.ServicePath != "api/serverless.yml" {
		t.Errorf("service path mismatch: got %q", captured.ServicePath)
	}
	if captured.Out != "docs/openapi.yaml" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if captured.SchemaFolder != "./schemas" {
		t.Errorf("schema folder mismatch: got %q", captured.SchemaFolder)
	}
	if captured.Validation != spec.ModeError {
		t.Errorf("validation mismatch: got %q", captured.Validation)
	}
	if !captured.DryRun {
		t.Errorf("expected dry-run true")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true")
	}
}

func TestGenerateConfigDefaults(t *testing.T) {
	captured, err := captureGenerateConfig(t, "generate")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.ServicePath != "serverless.yml" {
		t.Errorf("service path: want serverless.yml got %q", captured.ServicePath)
	}
	if captured.Out != "" {
		t.Errorf("out should stay empty so custom.openapi.out can apply: %q", captured.Out)
	}
	if captured.Validation != spec.ModeWarn {
		t.Errorf("validation: want warn got %q", captured.Validation)
	}
	if captured.DryRun || captured.Verbose {
		t.Errorf("unexpected bool defaults: %+v", captured)
	}
}

func TestGenerateOpenapiAlias(t *testing.T) {
	captured, err := captureGenerateConfig(t, "openapi", "-o", "x.json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil || captured.Out != "x.json" {
		t.Fatalf("alias did not route to generate: %+v", captured)
	}
}

func TestGenerateConfigInvalidValidationMode(t *testing.T) {
	_, err := captureGenerateConfig(t, "generate", "--validation", "strict")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown validation mode") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateConfigEmptyServicePath(t *testing.T) {
	_, err := captureGenerateConfig(t, "--config", " ", "generate")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
