package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/serverless-openapi/internal/emitter"
	"github.com/mark3labs/serverless-openapi/internal/logging"
	"github.com/mark3labs/serverless-openapi/internal/openapi"
	"github.com/mark3labs/serverless-openapi/internal/spec"
)

const (
	defaultServiceFile = "serverless.yml"
	defaultOut         = "openapi.json"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults and CLI overrides.
type GenerateConfig struct {
	ServicePath  string
	Out          string
	SchemaFolder string
	Validation   spec.ValidationMode
	DryRun       bool
	Verbose      bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{ServicePath: defaultServiceFile, Validation: spec.ModeWarn}
}

var (
	generateRunner           = runGenerate
	logOutput      io.Writer = os.Stderr
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"openapi"},
		Short:   "Generate an OpenAPI document from a Serverless service file",
		Long: "Generate an OpenAPI 3.0 document from the http events of a Serverless service file. " +
			"The output format follows the file extension: .yaml/.yml for YAML, anything else for JSON.",
		Example: strings.TrimSpace(`  serverless-openapi generate
  serverless-openapi -c api/serverless.yml generate -o docs/openapi.yaml
  serverless-openapi generate --validation error --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("out", "o", "", "Output file (defaults to custom.openapi.out, then "+defaultOut+")")
	flags.String("schema-folder", "", "Folder of shared schema files, relative to the service file")
	flags.String("validation", "", "Config validation mode (warn|error|off); defaults to warn")
	flags.Bool("dry-run", false, "Preview the planned output without writing it")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()
	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	// --config has a default, so it is read whether or not it changed.
	value, err := flags.GetString("config")
	if err != nil {
		return err
	}
	cfg.ServicePath = value
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = value
	}
	if flags.Changed("schema-folder") {
		value, err := flags.GetString("schema-folder")
		if err != nil {
			return err
		}
		cfg.SchemaFolder = value
	}
	if flags.Changed("validation") {
		value, err := flags.GetString("validation")
		if err != nil {
			return err
		}
		mode, err := spec.ParseValidationMode(value)
		if err != nil {
			return newUsageError("generate: " + err.Error())
		}
		cfg.Validation = mode
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.ServicePath = strings.TrimSpace(c.ServicePath)
	c.Out = strings.TrimSpace(c.Out)
	c.SchemaFolder = strings.TrimSpace(c.SchemaFolder)
}

func (c *GenerateConfig) validate() error {
	if c.ServicePath == "" {
		return newUsageError("generate: --config must name a Serverless service file")
	}
	if c.Out != "" && strings.HasSuffix(c.Out, string(filepath.Separator)) {
		return newUsageError(fmt.Sprintf("generate: --out %q must be a file, not a directory", c.Out))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := logging.New(logOutput, cfg.Verbose)

	// 1) Load and validate the service file
	opts := []spec.Option{spec.WithValidationMode(cfg.Validation), spec.WithLogger(logger)}
	if cfg.SchemaFolder != "" {
		opts = append(opts, spec.WithOverrides(spec.CustomProperties{SchemaFolder: cfg.SchemaFolder}))
	}
	svc, err := spec.Load(ctx, cfg.ServicePath, opts...)
	if err != nil {
		// Map structured load errors into friendly messages
		var se *spec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("service file: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	// 2) Synthesize the document; the schema folder is relative to the
	// service file
	workDir := "."
	if abs, err := filepath.Abs(cfg.ServicePath); err == nil {
		workDir = filepath.Dir(abs)
	}
	gen := openapi.NewGenerator(openapi.WithLogger(logger), openapi.WithWorkDir(workDir))
	doc, err := gen.Generate(ctx, svc)
	if err != nil {
		var be *openapi.BundleError
		if errors.As(err, &be) {
			return newUsageError(fmt.Sprintf("generate: %v\nHint: $ref paths are resolved inside the schema folder.", be))
		}
		return fmt.Errorf("generate: %w", err)
	}

	// 3) Resolve the output path: flag, then custom.openapi.out, then default
	out := cfg.Out
	if out == "" && svc.Custom.Out != "" {
		out = svc.Custom.Out
		if !filepath.IsAbs(out) {
			out = filepath.Join(workDir, out)
		}
	}
	if out == "" {
		out = defaultOut
	}

	// 4) Emit
	res, err := emitter.Emit(ctx, doc, emitter.Options{Out: out, DryRun: cfg.DryRun})
	if err != nil {
		return wrapOutputError(err, out)
	}
	if cfg.DryRun {
		printPlan(res.Planned)
		return nil
	}
	logger.Info("OpenAPI document written", "path", res.Planned.Path, "format", res.Planned.Format)
	return nil
}

func printPlan(p emitter.PlannedFile) {
	path := p.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	fmt.Fprintf(os.Stdout, "Planned write to %s (%s, %d bytes)\n", path, p.Format, p.Size)
}

func wrapOutputError(err error, out string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out.", out, msg))
	}
	return err
}
