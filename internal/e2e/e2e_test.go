package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	cli "github.com/mark3labs/ramlgen/internal/cli"
)

const petAPI = `#%RAML 1.0
title: Pet Store
version: v2
baseUri: https://api.example.com/{version}
mediaType: application/json
types:
  Pet: !include types/pet.raml
  Dog:
    type: Pet
    properties:
      breed?: string
  Status:
    enum: [available, sold]
  Page:
    (typeVars): [T]
    properties:
      items: T[]
      total: integer
  DogPage:
    type: Page
    (typeArgs): [Dog]
    example:
      items:
        - name: Rex
          status: available
      total: 1
/pets:
  get:
    description: List dogs.
    queryParameters:
      limit?: integer
    responses:
      200:
        body:
          type: DogPage
  /{petId}:
    get:
      responses:
        200:
          body:
            type: Dog
    delete:
      description: Remove a pet.
`

const petType = `description: !include ../docs/pet.md
properties:
  name: string
  status: Status
`

func writeTempAPI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range map[string]string{
		"api.raml":       petAPI,
		"types/pet.raml": petType,
		"docs/pet.md":    "Any pet in the store.",
	} {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return filepath.Join(dir, "api.raml")
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
}

func digestDir(t *testing.T, dir string) (files []string, sum string) {
	t.Helper()
	var list []string
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		list = append(list, rel)
		_, _ = h.Write([]byte(rel))
		b, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		_, _ = h.Write(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	sort.Strings(list)
	return list, hex.EncodeToString(h.Sum(nil))
}

func TestE2E_AllTargets_Deterministic(t *testing.T) {
	t.Parallel()
	api := writeTempAPI(t)
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	args := []string{"generate", "--input", api, "--target", "openapi,swagger,html,ts,go,py", "--json", "--yaml", "--force"}
	runCLI(t, append(args, "--out", dir1)...)
	runCLI(t, append(args, "--out", dir2)...)

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	if !slicesEqual(files1, files2) || sum1 != sum2 {
		t.Fatalf("generated outputs differ between runs\nfiles1=%v\nfiles2=%v\nsum1=%s\nsum2=%s", files1, files2, sum1, sum2)
	}

	want := []string{
		"go/types.go",
		"html/css/screen.css",
		"html/index.html",
		"openapi/api.json",
		"openapi/api.yaml",
		"py/models.py",
		"swagger/api.json",
		"swagger/api.yaml",
		"ts/dog-page.ts",
		"ts/dog.ts",
		"ts/index.ts",
		"ts/page.ts",
		"ts/pet.ts",
		"ts/status.ts",
	}
	if !slicesEqual(files1, want) {
		t.Fatalf("unexpected files:\n got %v\nwant %v", files1, want)
	}
}

func TestE2E_OpenAPI_Document(t *testing.T) {
	t.Parallel()
	api := writeTempAPI(t)
	out := t.TempDir()
	runCLI(t, "generate", "--input", api, "--out", out)

	b, err := os.ReadFile(filepath.Join(out, "openapi", "api.json"))
	if err != nil {
		t.Fatalf("read api.json: %v", err)
	}
	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths      map[string]map[string]json.RawMessage `json:"paths"`
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode api.json: %v", err)
	}
	if doc.Info.Title != "Pet Store" || doc.Info.Version != "v2" {
		t.Errorf("info: %+v", doc.Info)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "https://api.example.com/v2" {
		t.Errorf("servers: %+v", doc.Servers)
	}
	if _, ok := doc.Paths["/pets/{petId}"]["delete"]; !ok {
		t.Errorf("missing DELETE /pets/{petId}: %v", doc.Paths)
	}
	for _, name := range []string{"Pet", "Dog", "Status", "DogPage"} {
		if _, ok := doc.Components.Schemas[name]; !ok {
			t.Errorf("missing schema %s", name)
		}
	}
	if !bytes.Contains(b, []byte("Any pet in the store.")) {
		t.Errorf("included description missing from document")
	}
}

func TestE2E_MethodFilter(t *testing.T) {
	t.Parallel()
	api := writeTempAPI(t)
	out := t.TempDir()
	runCLI(t, "generate", "--input", api, "--out", out, "--target", "html", "--methods", "get")

	b, err := os.ReadFile(filepath.Join(out, "html", "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if !strings.Contains(string(b), "List dogs.") {
		t.Errorf("GET description missing")
	}
	if strings.Contains(string(b), "Remove a pet.") {
		t.Errorf("DELETE should be filtered out")
	}
}

// Compiles the generated Go package when RAMLGEN_E2E_ONLINE=1 and a Go
// toolchain is on PATH.
func TestE2E_GoModelBuilds(t *testing.T) {
	t.Parallel()
	if os.Getenv("RAMLGEN_E2E_ONLINE") != "1" || !haveCmd("go") {
		t.Skip("set RAMLGEN_E2E_ONLINE=1 to build generated code")
	}
	api := writeTempAPI(t)
	out := t.TempDir()
	runCLI(t, "generate", "--input", api, "--out", out, "--target", "go", "--package-name", "example.com/petstore")
	if err := runCmdWithTimeout(filepath.Join(out, "go"), 2*time.Minute, "go", "build", "./..."); err != nil {
		t.Fatalf("go build: %v", err)
	}
}

func TestE2E_PythonModelImports(t *testing.T) {
	t.Parallel()
	if os.Getenv("RAMLGEN_E2E_ONLINE") != "1" || !haveCmd("python3") {
		t.Skip("set RAMLGEN_E2E_ONLINE=1 to import generated code")
	}
	api := writeTempAPI(t)
	out := t.TempDir()
	runCLI(t, "generate", "--input", api, "--out", out, "--target", "py")
	if err := runCmdWithTimeout(filepath.Join(out, "py"), time.Minute, "python3", "-c", "import models"); err != nil {
		t.Fatalf("python import: %v", err)
	}
}

func haveCmd(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runCmdWithTimeout(dir string, timeout time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return &execError{err: err, output: out.String()}
	}
	return nil
}

type execError struct {
	err    error
	output string
}

func (e *execError) Error() string { return e.err.Error() + ": " + e.output }

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
