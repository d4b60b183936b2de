package openapi

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi2"

	"github.com/mark3labs/ramlgen/internal/generator"
)

func TestBuildSwagger(t *testing.T) {
	t.Parallel()
	m, _ := loadModel(t)
	doc, err := BuildSwagger(context.Background(), m, generator.OutputConfig{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.Swagger != "2.0" {
		t.Errorf("swagger = %q", doc.Swagger)
	}
	if doc.Info.Title != "Pet Store" {
		t.Errorf("title = %q", doc.Info.Title)
	}
	if doc.Host != "api.example.com" || doc.BasePath != "/v1" {
		t.Errorf("host/basePath = %q %q", doc.Host, doc.BasePath)
	}
	for _, name := range []string{"Animal", "Cat", "CatPage"} {
		if _, ok := doc.Definitions[name]; !ok {
			t.Errorf("missing definition %s", name)
		}
	}
	item := doc.Paths["/cats/{id}"]
	if item == nil || item.Get == nil || item.Put == nil {
		t.Fatalf("missing /cats/{id} operations: %+v", item)
	}
}

func TestSwaggerGenerate_WritesYAML(t *testing.T) {
	t.Parallel()
	m, src := loadModel(t)
	dir := t.TempDir()
	res, err := NewSwagger().Generate(context.Background(), m, generator.OutputConfig{
		SourceFile: src,
		TargetDir:  dir,
		JSON:       true,
		YAML:       true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Planned) != 2 || res.Planned[0].RelPath != "pets.json" || res.Planned[1].RelPath != "pets.yaml" {
		t.Fatalf("planned: %+v", res.Planned)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "pets.json"))
	if err != nil {
		t.Fatal(err)
	}
	var reloaded openapi2.T
	if err := json.Unmarshal(raw, &reloaded); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Swagger != "2.0" || reloaded.Paths["/cats"] == nil {
		t.Fatalf("reloaded document: %+v", reloaded)
	}
}
