// Package generator defines the contract between the API model and the
// artifact generators, and the file planning and writing they share.
//
// A generator turns a read-only *model.ApiModel into a set of files below
// OutputConfig.TargetDir. Files are assembled in memory, planned in a
// deterministic order and then written atomically unless DryRun is set.
package generator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/ramlgen/internal/model"
)

// Generator produces artifacts from an API model.
type Generator interface {
	// Name is the target name used on the command line, e.g. "openapi".
	Name() string
	Generate(ctx context.Context, m *model.ApiModel, cfg OutputConfig) (*Result, error)
}

// OutputConfig controls where and how a generator writes its artifacts.
type OutputConfig struct {
	// SourceFile is the RAML input; generators derive default base names from it.
	SourceFile string
	TargetDir  string
	// JSON and YAML select the serializations of generators that support both.
	JSON bool
	YAML bool
	// PackageName names the generated package or module where applicable.
	PackageName string
	Force       bool
	DryRun      bool
	Logger      *zap.Logger
}

// Log returns the configured logger or a no-op logger.
func (c OutputConfig) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// BaseName returns the source file name without directory and extension,
// or fallback when no source is set.
func (c OutputConfig) BaseName(fallback string) string {
	src := strings.TrimSpace(c.SourceFile)
	if src == "" {
		return fallback
	}
	if i := strings.LastIndex(src, "/"); i >= 0 {
		src = src[i+1:]
	}
	src = strings.TrimSuffix(src, filepath.Ext(src))
	if src == "" {
		return fallback
	}
	return src
}

// PlannedFile describes a file the generator intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result lists the files of one generator run.
type Result struct {
	Generator string
	TargetDir string
	Planned   []PlannedFile
}

// Paths returns the artifact paths, joined to the target directory.
func (r *Result) Paths() []string {
	out := make([]string, 0, len(r.Planned))
	for _, pf := range r.Planned {
		out = append(out, filepath.Join(r.TargetDir, filepath.FromSlash(pf.RelPath)))
	}
	return out
}

// Files maps slash separated relative paths to file contents.
type Files map[string][]byte

// Add stores content under rel.
func (f Files) Add(rel string, content []byte) { f[filepath.ToSlash(rel)] = content }

// AddString stores content under rel.
func (f Files) AddString(rel, content string) { f.Add(rel, []byte(content)) }

// Emit plans files in sorted order and writes them unless cfg.DryRun is set.
// In a dry run the target directory is still validated.
func Emit(name string, cfg OutputConfig, files Files) (*Result, error) {
	if strings.TrimSpace(cfg.TargetDir) == "" {
		return nil, errors.Newf("%s: target directory is required", name)
	}
	abs, err := filepath.Abs(cfg.TargetDir)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: resolve target directory", name)
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)
	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: fileMode(rel)})
	}

	if cfg.DryRun {
		if err := ValidateTargetDirectory(abs, cfg.Force); err != nil {
			return nil, errors.Wrap(err, name)
		}
	} else if err := WriteFiles(abs, files, cfg.Force); err != nil {
		return nil, errors.Wrap(err, name)
	}
	cfg.Log().Debug("generator finished",
		zap.String("generator", name),
		zap.String("target", abs),
		zap.Int("files", len(planned)),
		zap.Bool("dryRun", cfg.DryRun))
	return &Result{Generator: name, TargetDir: abs, Planned: planned}, nil
}

func fileMode(rel string) os.FileMode {
	switch filepath.Ext(rel) {
	case ".sh", ".bash":
		return 0o755
	}
	return 0o644
}
