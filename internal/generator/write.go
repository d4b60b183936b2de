package generator

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrTargetNotEmpty is returned when the target directory holds files and
// overwriting was not requested.
var ErrTargetNotEmpty = errors.New("target directory is not empty")

// ValidateTargetDirectory checks that absPath is absent, an empty
// directory, or any directory when force is set.
func ValidateTargetDirectory(absPath string, force bool) error {
	stat, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "cannot access target directory %q", absPath)
	}
	if !stat.IsDir() {
		return errors.Newf("target path %q is not a directory", absPath)
	}
	if force {
		return nil
	}
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return errors.Wrapf(err, "cannot read target directory %q", absPath)
	}
	if len(entries) > 0 {
		return errors.WithHint(
			errors.Wrapf(ErrTargetNotEmpty, "%q", absPath),
			"use --force to overwrite")
	}
	return nil
}

// WriteFiles writes every file below baseDir, each through a temporary file
// in the target directory followed by a rename.
func WriteFiles(baseDir string, files Files, force bool) error {
	if err := ValidateTargetDirectory(baseDir, force); err != nil {
		return err
	}
	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	for _, rel := range rels {
		if err := writeFileAtomic(baseDir, rel, files[rel]); err != nil {
			return errors.Wrapf(err, "write file %s", rel)
		}
	}
	return nil
}

// WriteFile atomically replaces the single file at path, creating parent
// directories as needed. Unlike WriteFiles it does not check what else the
// directory holds.
func WriteFile(path string, content []byte) error {
	return writeFileAtomic(filepath.Dir(path), filepath.Base(path), content)
}

func writeFileAtomic(baseDir, relPath string, content []byte) error {
	fullPath := filepath.Join(baseDir, filepath.FromSlash(relPath))
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "ensure directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-ramlgen-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
		}
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Chmod(fileMode(relPath)); err != nil {
		return errors.Wrap(err, "set file permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	tmp = nil

	if err := os.Rename(tmpPath, fullPath); err != nil {
		return errors.Wrapf(err, "rename %s to %s", tmpPath, fullPath)
	}
	success = true
	return nil
}
