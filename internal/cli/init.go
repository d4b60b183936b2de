package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mark3labs/ramlgen/internal/generator"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample ramlgen configuration file",
		Long:  "Scaffold a commented ramlgen configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{
				OutputPath: out,
				Force:      force,
			})
		},
	}

	cmd.Flags().String("out", "ramlgen.yaml", "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "ramlgen.yaml"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return errors.Wrap(err, "init: resolve output path")
	}

	st, err := os.Stat(absPath)
	switch {
	case err == nil && st.IsDir():
		return newUsageError(fmt.Sprintf("init: %q is a directory\nHint: pass a file path to --out.", absPath))
	case err == nil && !cfg.Force:
		return newUsageError(fmt.Sprintf("init: %q already exists\nHint: use --force to overwrite.", absPath))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := generator.WriteFile(absPath, []byte(content)); err != nil {
		return describeError(err, filepath.Dir(absPath))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML documents every config key. It must stay loadable by
// applyGenerateConfigFromFile once uncommented.
const sampleConfigYAML = `# ramlgen configuration (YAML; JSON and TOML files work too)
# All fields are optional. Command-line flags override config values.

# Path or URL to the RAML 1.0 document (http/https or local file).
# input: ./api.raml

# Generators to run: openapi, swagger, html, ts, go, py. Defaults to openapi.
# targets: [openapi, html]

# Output directory. Each target writes to <out>/<target>.
# When omitted, derived from the API title.
# out: ./out

# Serializations for targets that support both (openapi, swagger). JSON is the
# default when neither is set.
# json: true
# yaml: false

# ts: npm package name. go: package or module path (e.g. example.com/petapi).
# packageName: pet-api

# Only include resource methods with these HTTP methods.
# methods: [get, post]

# Only include resources whose full path matches one of these regular expressions.
# paths: ["^/pets"]

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite non-empty output directories.
# force: false

# Enable verbose logging.
# verbose: false
`
