package pyemitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/raml"
)

// ItemResult is declared before the types its base mentions so the
// generated module has to reorder the classes.
const shopAPI = `#%RAML 1.0
title: Shop
types:
  ItemResult:
    type: Result
    (typeArgs): [Item]
  Item:
    description: A thing for sale.
    properties:
      sku: string
      class?: string
      price: number
      added?: datetime
      opened?: date-only
      status: Status
      note?: string | nil
      size?:
        enum: [S, M]
  Result:
    (typeVars): [T]
    properties:
      value: T
      errors?: string[]
  Status:
    enum: [available, sold-out]
  Payment: Card | Item
  Card:
    properties:
      number: string
  Marker:
    type: object
  Items: Item[]
`

func generate(t *testing.T) (string, *generator.Result) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "shop.raml")
	if err := os.WriteFile(src, []byte(shopAPI), 0o644); err != nil {
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
	dir := t.TempDir()
	res, err := New().Generate(context.Background(), m, generator.OutputConfig{SourceFile: src, TargetDir: dir})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "models.py"))
	if err != nil {
		t.Fatal(err)
	}
	return string(b), res
}

func TestGenerate_ModelsPy(t *testing.T) {
	t.Parallel()
	py, res := generate(t)
	if len(res.Planned) != 1 || res.Planned[0].RelPath != "models.py" {
		t.Fatalf("planned: %+v", res.Planned)
	}
	for _, want := range []string{
		"Generated by ramlgen from shop - DO NOT MODIFY MANUALLY",
		"from __future__ import annotations\n",
		"from datetime import date, datetime\n",
		"\n\nT = TypeVar(\"T\")\n",
		"class Status(str, Enum):\n    AVAILABLE = \"available\"\n    SOLD_OUT = \"sold-out\"\n",
		"@dataclass(kw_only=True)\nclass Item:\n    \"\"\"A thing for sale.\"\"\"\n    sku: str\n",
		"    class_: Optional[str] = None\n",
		"    price: float\n",
		"    added: Optional[datetime] = None\n",
		"    opened: Optional[date] = None\n",
		"    status: Status\n",
		"    note: Optional[str] = None\n",
		"    size: Optional[Literal[\"S\", \"M\"]] = None\n",
		"class Result(Generic[T]):\n    value: T\n    errors: Optional[List[str]] = None\n",
		"class ItemResult(Result[Item]):\n    pass\n",
		"class Marker:\n    pass\n",
		"Payment = Union[\"Card\", \"Item\"]\n",
		"Items = List[\"Item\"]\n",
	} {
		if !strings.Contains(py, want) {
			t.Errorf("models.py missing %q", want)
		}
	}
	if t.Failed() {
		t.Logf("models.py:\n%s", py)
	}
}

func TestGenerate_BasesComeFirst(t *testing.T) {
	t.Parallel()
	py, _ := generate(t)
	pos := func(s string) int {
		i := strings.Index(py, s)
		if i < 0 {
			t.Fatalf("missing %q in:\n%s", s, py)
		}
		return i
	}
	itemResult := pos("class ItemResult(")
	if pos("class Item:") > itemResult || pos("class Result(") > itemResult {
		t.Fatalf("ItemResult must follow Item and Result:\n%s", py)
	}
	if pos("class Status(") > pos("@dataclass") {
		t.Fatalf("enums must precede dataclasses")
	}
	if pos("Payment = ") < pos("class Card:") {
		t.Fatalf("aliases must follow the classes they name")
	}
}
