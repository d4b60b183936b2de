package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalRAML = `#%RAML 1.0
title: Test API
version: v1
types:
  Greeting:
    properties:
      message: string
    example:
      message: hello
/hello:
  get:
    responses:
      200:
        body:
          application/json:
            type: Greeting
/admin:
  delete:
    description: Drop everything.
`

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

func writeRAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.raml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write raml: %v", err)
	}
	return path
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	apiPath := writeRAML(t, minimalRAML)
	outDir := filepath.Join(t.TempDir(), "out")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", apiPath, "--target", "openapi,ts", "--out", outDir, "--dry-run"})

	out := captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	for _, want := range []string{
		"Planned writes to " + filepath.Join(outDir, "openapi") + " (1 files):\n- api.json\n",
		"Planned writes to " + filepath.Join(outDir, "ts") + " (2 files):\n- greeting.ts\n- index.ts\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in dry-run output, got:\n%s", want, out)
		}
	}
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_WritesEveryTarget(t *testing.T) {
	apiPath := writeRAML(t, minimalRAML)
	outDir := t.TempDir()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"generate", "--input", apiPath, "--out", outDir,
		"--target", "openapi,html,ts,go,py", "--yaml", "--methods", "get",
	})
	out := captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	for _, rel := range []string{
		"openapi/api.yaml", "html/index.html", "html/css/screen.css",
		"ts/greeting.ts", "ts/index.ts", "go/types.go", "py/models.py",
	} {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if !strings.Contains(out, "Wrote 1 files to "+filepath.Join(outDir, "openapi")) {
		t.Errorf("unexpected output:\n%s", out)
	}
	doc, err := os.ReadFile(filepath.Join(outDir, "openapi", "api.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(doc), "/admin") {
		t.Errorf("method filter not applied:\n%s", doc)
	}
}

func TestGeneratePipeline_NonEmptyOutput(t *testing.T) {
	apiPath := writeRAML(t, minimalRAML)
	outDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(outDir, "openapi"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "openapi", "keep.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", apiPath, "--out", outDir})
	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected a --force hint: %v", err)
	}
}

func TestGeneratePipeline_ModelErrorsAreUsageErrors(t *testing.T) {
	cases := map[string]string{
		"unresolved type reference": "#%RAML 1.0\ntitle: Bad\ntypes:\n  A:\n    properties:\n      b: Missing\n",
		"cyclic inheritance":        "#%RAML 1.0\ntitle: Bad\ntypes:\n  A:\n    type: B\n  B:\n    type: A\n",
	}
	for want, content := range cases {
		apiPath := writeRAML(t, content)
		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{"generate", "--input", apiPath, "--out", t.TempDir(), "--dry-run"})
		err := root.Execute()
		if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), want) {
			t.Errorf("got %v, want usage error containing %q", err, want)
		}
	}
}
