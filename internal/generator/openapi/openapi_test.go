package openapi

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/raml"
)

const petAPI = `#%RAML 1.0
title: Pet Store
version: v1
baseUri: https://api.example.com/{version}
types:
  Animal:
    discriminator: kind
    properties:
      kind: string
      name: string
  Cat:
    type: Animal
    properties:
      indoor?: boolean
    example:
      name: Tom
      kind: Cat
      indoor: true
  Color:
    type: string
    enum: [red, green]
  Count:
    type: integer
    format: int64
    minimum: 0
  Page:
    (typeVars): [T]
    properties:
      items: T[]
      next?: string | nil
  CatPage:
    type: Page
    (typeArgs): [Cat]
/cats:
  get:
    queryParameters:
      limit?: Count
    responses:
      200:
        body:
          application/json:
            type: CatPage
  /{id}:
    get:
      headers:
        X-Trace: string
      responses:
        200:
          body:
            application/json:
              type: Cat
        404:
          description: No such cat
    put:
      body:
        application/json:
          type: Cat
`

func loadModel(t *testing.T) (*model.ApiModel, string) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "pets.raml")
	if err := os.WriteFile(src, []byte(petAPI), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := raml.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m, err := model.Build(context.Background(), doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return m, src
}

func TestBuild_Components(t *testing.T) {
	t.Parallel()
	m, _ := loadModel(t)
	doc, err := Build(context.Background(), m, zap.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := doc.Validate(context.Background(), openapi3.DisableExamplesValidation()); err != nil {
		t.Fatalf("validate: %v", err)
	}

	want := []string{"Animal", "Cat", "CatPage", "Color", "Count", "PageCat"}
	if got := sortedKeys(doc.Components.Schemas); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("components = %v, want %v", got, want)
	}

	cat := doc.Components.Schemas["Cat"].Value
	if len(cat.AllOf) != 2 || cat.AllOf[0].Ref != "#/components/schemas/Animal" {
		t.Fatalf("Cat should extend Animal: %+v", cat.AllOf)
	}
	if _, ok := cat.AllOf[1].Value.Properties["indoor"]; !ok {
		t.Fatalf("Cat own properties missing indoor")
	}

	animal := doc.Components.Schemas["Animal"].Value
	if animal.Discriminator == nil || animal.Discriminator.PropertyName != "kind" {
		t.Fatalf("discriminator missing: %+v", animal.Discriminator)
	}
	if animal.Discriminator.Mapping["Cat"] != "#/components/schemas/Cat" {
		t.Fatalf("discriminator mapping: %v", animal.Discriminator.Mapping)
	}
	if strings.Join(animal.Required, ",") != "kind,name" {
		t.Fatalf("required = %v", animal.Required)
	}

	count := doc.Components.Schemas["Count"].Value
	if count.Type != "integer" || count.Format != "int64" || count.Min == nil || *count.Min != 0 {
		t.Fatalf("Count schema: %+v", count)
	}
	color := doc.Components.Schemas["Color"].Value
	if len(color.Enum) != 2 || color.Enum[0] != "red" {
		t.Fatalf("Color enum: %v", color.Enum)
	}

	page := doc.Components.Schemas["PageCat"].Value
	items := page.Properties["items"].Value
	if items.Type != "array" || items.Items.Ref != "#/components/schemas/Cat" {
		t.Fatalf("Page<Cat>.items: %+v", items)
	}
	if next := page.Properties["next"].Value; !next.Nullable || len(next.OneOf) != 1 {
		t.Fatalf("Page<Cat>.next should be a nullable string: %+v", next)
	}
	if catPage := doc.Components.Schemas["CatPage"].Value; len(catPage.AllOf) != 1 || catPage.AllOf[0].Ref != "#/components/schemas/PageCat" {
		t.Fatalf("CatPage should reference the instance: %+v", catPage.AllOf)
	}
}

func TestBuild_Paths(t *testing.T) {
	t.Parallel()
	m, _ := loadModel(t)
	doc, err := Build(context.Background(), m, zap.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "https://api.example.com/v1" {
		t.Fatalf("servers: %+v", doc.Servers)
	}
	item := doc.Paths["/cats/{id}"]
	if item == nil || item.Get == nil || item.Put == nil {
		t.Fatalf("missing operations on /cats/{id}: %+v", item)
	}
	get := item.Get
	if get.OperationID != "getCatsId" {
		t.Fatalf("operationId = %q", get.OperationID)
	}
	var in []string
	for _, p := range get.Parameters {
		in = append(in, p.Value.In+":"+p.Value.Name)
	}
	if strings.Join(in, ",") != "path:id,header:X-Trace" {
		t.Fatalf("parameters = %v", in)
	}
	if d := get.Responses["404"].Value.Description; d == nil || *d != "No such cat" {
		t.Fatalf("404 description: %v", d)
	}
	if d := get.Responses["200"].Value.Description; d == nil || *d != "OK" {
		t.Fatalf("200 description should default to the status text: %v", d)
	}
	if item.Put.RequestBody == nil || item.Put.RequestBody.Value.Content["application/json"] == nil {
		t.Fatalf("put body missing")
	}
	if len(item.Put.Responses) != 1 || item.Put.Responses["default"] == nil {
		t.Fatalf("put should get a default response: %v", item.Put.Responses)
	}
	list := doc.Paths["/cats"].Get
	if list.Parameters[0].Value.Schema.Ref != "#/components/schemas/Count" {
		t.Fatalf("limit should reference Count")
	}
}

func TestGenerate_WritesJSONAndYAML(t *testing.T) {
	t.Parallel()
	m, src := loadModel(t)
	dir := t.TempDir()
	res, err := New().Generate(context.Background(), m, generator.OutputConfig{
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
	if !json.Valid(raw) {
		t.Fatalf("invalid JSON")
	}
	// Example fields keep the order they were written in.
	s := string(raw)
	if i, j := strings.Index(s, `"name": "Tom"`), strings.Index(s, `"kind": "Cat"`); i < 0 || j < 0 || i > j {
		t.Fatalf("example order not kept:\n%s", s)
	}
	loaded, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Info.Title != "Pet Store" {
		t.Fatalf("title = %q", loaded.Info.Title)
	}

	y, err := os.ReadFile(filepath.Join(dir, "pets.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(y), `openapi: "3.0.3"`) || strings.Contains(string(y), `{"`) {
		t.Fatalf("yaml should be block style:\n%s", y)
	}
}

func TestGenerate_DefaultsToJSON(t *testing.T) {
	t.Parallel()
	m, _ := loadModel(t)
	res, err := New().Generate(context.Background(), m, generator.OutputConfig{TargetDir: t.TempDir(), DryRun: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Planned) != 1 || res.Planned[0].RelPath != "openapi.json" {
		t.Fatalf("planned: %+v", res.Planned)
	}
}
