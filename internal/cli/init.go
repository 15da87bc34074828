package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

const defaultInitOut = "serverless.openapi.yml"

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample custom.openapi block",
		Long:  "Scaffold a commented service file fragment that documents the custom.openapi options and the http event extensions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringP("out", "o", defaultInitOut, "Where to write the sample file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultInitOut
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleServiceYAML) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample service file to %s\n", absPath)
	return nil
}

// sampleServiceYAML is a complete, valid service file documenting the
// options serverless-openapi understands.
const sampleServiceYAML = `# serverless-openapi sample service file (YAML)
# Merge the custom.openapi block and the http event keys into your own
# serverless.yml, then run: serverless-openapi generate

service: sample

custom:
  openapi:
    # Required document info.
    version: "1.0.0"
    title: Sample API
    description: Generated from serverless.yml

    # Output file; .yaml/.yml writes YAML, anything else JSON.
    out: openapi.json

    # Folder of .json/.yml schema files, plus an optional shared/ subfolder.
    # Every file becomes components.schemas.<FileName>.
    # schemaFolder: ./schemas

    tags:
      - name: greetings
        description: Greeting operations

    securitySchemes:
      bearerAuth:
        type: http
        scheme: bearer
        bearerFormat: JWT

    # Used by events that set defaultResponse: true.
    defaultResponse:
      application/json:
        name: errorResponse
        description: Unexpected error
        schema:
          type: object
          properties:
            message:
              type: string

functions:
  hello:
    handler: handler.hello
    events:
      - http:
          path: hello/{name}
          method: get
          operationId: sayHello
          tags: [greetings]
          authorizer: bearerAuth
          defaultResponse: true
          request:
            parameters:
              paths:
                name: true
              querystrings:
                lang: false
          parameterMappers:
            parameters:
              querystrings:
                lang:
                  type: enum
                  options: [en, fr, de]
          responseSchemas:
            200:
              application/json:
                name: greeting
                description: A greeting
                schema:
                  type: object
                  properties:
                    text:
                      type: string
`
