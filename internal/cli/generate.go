package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/generator/goemitter"
	"github.com/mark3labs/ramlgen/internal/generator/htmldoc"
	"github.com/mark3labs/ramlgen/internal/generator/openapi"
	"github.com/mark3labs/ramlgen/internal/generator/pyemitter"
	"github.com/mark3labs/ramlgen/internal/generator/tsemitter"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/names"
	"github.com/mark3labs/ramlgen/internal/raml"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string   `mapstructure:"input"`
	Targets     []string `mapstructure:"targets"`
	Out         string   `mapstructure:"out"`
	JSON        bool     `mapstructure:"json"`
	YAML        bool     `mapstructure:"yaml"`
	PackageName string   `mapstructure:"packagename"`
	Methods     []string `mapstructure:"methods"`
	Paths       []string `mapstructure:"paths"`
	ConfigPath  string   `mapstructure:"-"`
	DryRun      bool     `mapstructure:"dryrun"`
	Force       bool     `mapstructure:"force"`
	Verbose     bool     `mapstructure:"verbose"`
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Targets: []string{"openapi"}}
}

// targets maps target names to generator constructors.
var targets = map[string]func() generator.Generator{
	"openapi": func() generator.Generator { return openapi.New() },
	"html":    func() generator.Generator { return htmldoc.New() },
	"ts":      func() generator.Generator { return tsemitter.New() },
	"go":      func() generator.Generator { return goemitter.New() },
	"py":      func() generator.Generator { return pyemitter.New() },
	"swagger": func() generator.Generator { return openapi.NewSwagger() },
}

var targetAliases = map[string]string{
	"typescript": "ts",
	"python":     "py",
	"golang":     "go",
	"doc":        "html",
	"oas2":       "swagger",
}

func targetNames() []string {
	out := make([]string, 0, len(targets))
	for name := range targets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate artifacts from a RAML 1.0 document",
		Long: "Generate OpenAPI documents, HTML documentation and TypeScript, Go or Python models " +
			"from a RAML 1.0 document. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  ramlgen generate --input api.raml --target openapi,html --out ./out
  ramlgen generate --input api.raml --target openapi --yaml --methods get --paths '^/pets'
  ramlgen --config ramlgen.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the RAML 1.0 document")
	flags.StringSlice("target", nil, "Generators to run ("+strings.Join(targetNames(), "|")+"); defaults to openapi")
	flags.String("out", "", "Output directory; each target writes to its own subdirectory")
	flags.Bool("json", false, "Write JSON output where a target supports it (default when --yaml is not set)")
	flags.Bool("yaml", false, "Write YAML output where a target supports it")
	flags.String("package-name", "", "Package or module name for generated code")
	flags.StringSlice("methods", nil, "Only include resource methods with these HTTP methods")
	flags.StringSlice("paths", nil, "Only include resources whose path matches one of these regular expressions")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

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
	strs := map[string]*string{"input": &cfg.Input, "out": &cfg.Out, "package-name": &cfg.PackageName}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}
	lists := map[string]*[]string{"target": &cfg.Targets, "methods": &cfg.Methods, "paths": &cfg.Paths}
	for name, dst := range lists {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeList(value)
	}
	bools := map[string]*bool{
		"json": &cfg.JSON, "yaml": &cfg.YAML, "dry-run": &cfg.DryRun,
		"force": &cfg.Force, "verbose": &cfg.Verbose,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.PackageName = strings.TrimSpace(c.PackageName)
	for i, t := range c.Targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if alias, ok := targetAliases[t]; ok {
			t = alias
		}
		c.Targets[i] = t
	}
	c.Targets = sanitizeList(c.Targets)
	for i, m := range c.Methods {
		c.Methods[i] = strings.ToLower(strings.TrimSpace(m))
	}
	c.Methods = sanitizeList(c.Methods)
	c.Paths = sanitizeList(c.Paths)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if len(c.Targets) == 0 {
		c.Targets = defaultGenerateConfig().Targets
	}
	for _, t := range c.Targets {
		if _, ok := targets[t]; !ok {
			return newUsageError(fmt.Sprintf("generate: unsupported --target %q (allowed: %s)", t, strings.Join(targetNames(), ", ")))
		}
	}
	for _, m := range c.Methods {
		switch model.HttpMethod(m) {
		case model.GET, model.POST, model.PUT, model.DELETE, model.PATCH, model.HEAD, model.OPTIONS, model.TRACE:
		default:
			return newUsageError(fmt.Sprintf("generate: unsupported HTTP method %q in --methods", m))
		}
	}
	return nil
}

// newLogger returns a development logger when verbose is set and a no-op
// logger otherwise.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log := newLogger(cfg.Verbose)
	defer func() { _ = log.Sync() }()

	// 1) Load and decode the document (file or http/https URL).
	doc, err := raml.Load(ctx, cfg.Input, raml.WithLogger(log))
	if err != nil {
		return describeError(err, "")
	}

	// 2) Resolve the semantic model, filtered by method and path.
	methods := make([]model.HttpMethod, len(cfg.Methods))
	for i, m := range cfg.Methods {
		methods[i] = model.HttpMethod(m)
	}
	m, err := model.Build(ctx, doc,
		model.WithLogger(log),
		model.WithMethods(methods),
		model.WithPathPatterns(cfg.Paths),
	)
	if err != nil {
		if err = describeError(err, ""); errors.Is(err, ErrUsage) {
			return err
		}
		return newUsageError(fmt.Sprintf("build model: %v", err))
	}

	// 3) Derive the output directory when omitted.
	outDir := cfg.Out
	if outDir == "" {
		outDir = names.Slug(m.Title)
		if outDir == "" {
			outDir = "ramlgen-out"
		}
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	// 4) Run the generators concurrently over the shared model.
	results := make([]*generator.Result, len(cfg.Targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range cfg.Targets {
		i, gen := i, targets[name]()
		g.Go(func() error {
			res, err := gen.Generate(gctx, m, generator.OutputConfig{
				SourceFile:  cfg.Input,
				TargetDir:   filepath.Join(absOut, gen.Name()),
				JSON:        cfg.JSON,
				YAML:        cfg.YAML,
				PackageName: cfg.PackageName,
				Force:       cfg.Force,
				DryRun:      cfg.DryRun,
				Logger:      log.Named(gen.Name()),
			})
			if err != nil {
				return errors.Wrapf(err, "%s", gen.Name())
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return describeError(err, absOut)
	}

	for _, res := range results {
		if cfg.DryRun {
			rel := make([]string, len(res.Planned))
			for i, pf := range res.Planned {
				rel[i] = pf.RelPath
			}
			printPlan(res.TargetDir, len(res.Planned), rel)
			continue
		}
		fmt.Fprintf(os.Stdout, "Wrote %d files to %s\n", len(res.Planned), res.TargetDir)
	}
	return nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// configKeys maps config keys, lower cased and stripped of dashes and
// underscores, to the mapstructure tag of the GenerateConfig field they set.
var configKeys = map[string]string{
	"input": "input", "targets": "targets", "target": "targets", "out": "out",
	"json": "json", "yaml": "yaml", "packagename": "packagename",
	"methods": "methods", "paths": "paths", "dryrun": "dryrun",
	"force": "force", "verbose": "verbose",
}

var keySeparators = strings.NewReplacer("-", "", "_", "")

func normalizeKey(key string) string {
	return keySeparators.Replace(strings.ToLower(strings.TrimSpace(key)))
}

// applyGenerateConfigFromFile reads a YAML, JSON or TOML config file over
// cfg. Keys are matched case-insensitively and ignore dashes and
// underscores, so "packageName", "package-name" and "package_name" are the
// same key. A comma separated string is accepted wherever a list is.
func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yml" || ext == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	canonical := viper.New()
	keys := v.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		field, ok := configKeys[normalizeKey(key)]
		if !ok {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		canonical.Set(field, v.Get(key))
	}
	// Lists from the file replace, never patch, the current values.
	for field, list := range map[string]*[]string{"targets": &cfg.Targets, "methods": &cfg.Methods, "paths": &cfg.Paths} {
		if canonical.IsSet(field) {
			*list = nil
		}
	}
	if err := canonical.Unmarshal(cfg); err != nil {
		return newUsageError(fmt.Sprintf("config file %q: %v", path, err))
	}
	return nil
}
