// Package tsemitter writes TypeScript declarations for the named types of
// an API: one module per type, plus an index.ts barrel.
package tsemitter

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/names"
)

// Generator emits TypeScript modules.
type Generator struct{}

// New returns the TypeScript generator.
func New() *Generator { return &Generator{} }

func (*Generator) Name() string { return "ts" }

var reserved = map[string]bool{
	"any": true, "as": true, "boolean": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "constructor": true, "continue": true, "debugger": true,
	"declare": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "from": true,
	"function": true, "get": true, "if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "let": true, "module": true, "never": true, "new": true,
	"null": true, "number": true, "object": true, "package": true, "private": true,
	"protected": true, "public": true, "require": true, "return": true, "set": true,
	"static": true, "string": true, "super": true, "switch": true, "symbol": true, "this": true,
	"throw": true, "true": true, "try": true, "type": true, "typeof": true, "undefined": true,
	"unknown": true, "var": true, "void": true, "while": true, "with": true, "yield": true,
	"Array": true, "Date": true, "Error": true, "Map": true, "Object": true, "Promise": true,
	"Record": true, "Set": true, "String": true, "Number": true, "Boolean": true,
}

type emitter struct {
	m     *model.ApiModel
	log   *zap.Logger
	names *model.Overlay[string]

	// deps collects the named types referenced by the module being written.
	deps map[*model.TypeNode]bool
}

func (g *Generator) Generate(ctx context.Context, m *model.ApiModel, cfg generator.OutputConfig) (*generator.Result, error) {
	if m == nil {
		return nil, errors.New("ts: nil model")
	}
	e := &emitter{m: m, log: cfg.Log(), names: model.NewOverlay[string]()}
	types := generator.Emitted(m)
	e.assignNames(types)

	files := generator.Files{}
	var barrel strings.Builder
	for _, n := range types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := e.file(n)
		files.AddString(file+".ts", e.module(n))
		barrel.WriteString("export * from './" + file + "';\n")
	}
	files.AddString("index.ts", barrel.String())

	if pkg := names.NpmPackage(cfg.PackageName); pkg != "" {
		pj, err := renderPackageJSON(pkg, m.Version, m.Description)
		if err != nil {
			return nil, errors.Wrap(err, "ts: package.json")
		}
		files.Add("package.json", pj)
		files.AddString("tsconfig.json", tsconfigJSON)
	}
	e.log.Debug("typescript modules planned", zap.Int("types", len(types)))
	return generator.Emit(g.Name(), cfg, files)
}

// assignNames gives every emitted type a unique TypeScript identifier.
func (e *emitter) assignNames(types []*model.TypeNode) {
	taken := map[string]bool{}
	for _, n := range types {
		base := n.CodeName()
		if base == "" {
			base = names.Pascal(n.Name)
		}
		base = names.Escape(base, reserved)
		name := base
		for i := 2; taken[name]; i++ {
			name = base + strconv.Itoa(i)
		}
		taken[name] = true
		e.names.Set(n.Handle, name)
	}
}

func (e *emitter) name(n *model.TypeNode) string {
	return e.names.GetOrCompute(n.Handle, func() string { return names.Pascal(n.Name) })
}

func (e *emitter) file(n *model.TypeNode) string { return names.Kebab(e.name(n)) }

func (e *emitter) module(n *model.TypeNode) string {
	var body strings.Builder
	e.deps = map[*model.TypeNode]bool{}

	writeDoc(&body, "", n.Description)
	decl := e.name(n)
	if n.IsGeneric() {
		decl += "<" + strings.Join(n.TypeParams, ", ") + ">"
	}

	switch {
	case n.IsEnum() && n.Metatype == model.String:
		body.WriteString("export enum " + decl + " {\n")
		for _, v := range n.Enum {
			writeDoc(&body, "  ", v.Description)
			body.WriteString("  " + names.Constant(v.Name) + " = " + quote(v.Name) + ",\n")
		}
		body.WriteString("}\n")
	case n.Metatype == model.Object:
		e.writeInterface(&body, n, decl)
	case n.Metatype == model.Array:
		body.WriteString("export type " + decl + " = " + arrayOf(e.ref(generator.Resolve(e.m, n.Items))) + ";\n")
	case n.Metatype == model.Union:
		parts := make([]string, len(n.Members))
		for i, mem := range n.Members {
			parts[i] = e.ref(generator.Resolve(e.m, mem))
		}
		body.WriteString("export type " + decl + " = " + strings.Join(parts, " | ") + ";\n")
	case n.IsEnum():
		body.WriteString("export type " + decl + " = " + e.literals(n) + ";\n")
	case n.Supertype != model.NoHandle:
		body.WriteString("export type " + decl + " = " + e.ref(generator.Resolve(e.m, n.Supertype)) + ";\n")
	default:
		body.WriteString("export type " + decl + " = " + builtin(n.Metatype) + ";\n")
	}

	var out strings.Builder
	delete(e.deps, n)
	if len(e.deps) > 0 {
		deps := make([]*model.TypeNode, 0, len(e.deps))
		for d := range e.deps {
			deps = append(deps, d)
		}
		sort.Slice(deps, func(i, j int) bool { return e.name(deps[i]) < e.name(deps[j]) })
		for _, d := range deps {
			out.WriteString("import { " + e.name(d) + " } from './" + e.file(d) + "';\n")
		}
		out.WriteString("\n")
	}
	out.WriteString(body.String())
	return out.String()
}

func (e *emitter) writeInterface(b *strings.Builder, n *model.TypeNode, decl string) {
	props := n.EffectiveProperties()
	head := "export interface " + decl
	if n.Supertype != model.NoHandle {
		if sup := generator.Resolve(e.m, n.Supertype); sup.Kind == generator.RefNamed || sup.Kind == generator.RefInstance {
			head += " extends " + e.ref(sup)
			props = n.Properties
		}
	}
	b.WriteString(head + " {\n")
	open := false
	for _, p := range props {
		if p.Pattern {
			open = true
			continue
		}
		writeDoc(b, "  ", p.Description)
		b.WriteString("  " + propertyName(p) + optional(p) + ": " + e.ref(generator.Resolve(e.m, p.Type)) + ";\n")
	}
	if f := e.m.Facets(n.Handle); open || (f.AdditionalProperties != nil && *f.AdditionalProperties) {
		b.WriteString("  [key: string]: any;\n")
	}
	b.WriteString("}\n")
}

// ref renders a type reference as a TypeScript type expression.
func (e *emitter) ref(r generator.Ref) string {
	switch r.Kind {
	case generator.RefParam:
		return r.Node.Param
	case generator.RefNamed:
		e.require(r.Node)
		return e.name(r.Node)
	case generator.RefInstance:
		e.require(r.Node)
		args := make([]string, len(r.Args))
		for i, a := range r.Args {
			args[i] = e.ref(a)
		}
		return e.name(r.Node) + "<" + strings.Join(args, ", ") + ">"
	case generator.RefArray:
		return arrayOf(e.ref(*r.Elem))
	case generator.RefUnion:
		parts := make([]string, len(r.Members))
		for i, mem := range r.Members {
			parts[i] = e.ref(mem)
		}
		return strings.Join(parts, " | ")
	case generator.RefInline:
		var parts []string
		for _, p := range r.Node.EffectiveProperties() {
			if p.Pattern {
				parts = append(parts, "[key: string]: any")
				continue
			}
			parts = append(parts, propertyName(p)+optional(p)+": "+e.ref(generator.Resolve(e.m, p.Type)))
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	case generator.RefEnum:
		return e.literals(r.Node)
	default:
		return builtin(r.Metatype)
	}
}

func (e *emitter) require(n *model.TypeNode) {
	if e.deps != nil {
		e.deps[n] = true
	}
}

func (e *emitter) literals(n *model.TypeNode) string {
	parts := make([]string, len(n.Enum))
	for i, v := range n.Enum {
		if n.Metatype == model.Number || n.Metatype == model.Integer || n.Metatype == model.Boolean {
			parts[i] = v.Name
		} else {
			parts[i] = quote(v.Name)
		}
	}
	return strings.Join(parts, " | ")
}

func builtin(mt model.Metatype) string {
	switch mt {
	case model.Number, model.Integer:
		return "number"
	case model.Boolean:
		return "boolean"
	case model.Null:
		return "null"
	case model.Object:
		return "Record<string, any>"
	case model.Array:
		return "any[]"
	case model.Any, model.Union:
		return "any"
	default:
		return "string"
	}
}

func arrayOf(elem string) string {
	if strings.Contains(elem, " | ") || strings.HasPrefix(elem, "{") {
		return "Array<" + elem + ">"
	}
	return elem + "[]"
}

func optional(p model.Property) string {
	if p.Required {
		return ""
	}
	return "?"
}

func propertyName(p model.Property) string {
	if name := p.CodeName(); name != "" {
		return name
	}
	if isIdent(p.Name) {
		return p.Name
	}
	return quote(p.Name)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`).Replace(s) + "'"
}

func writeDoc(b *strings.Builder, indent, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		b.WriteString(indent + "/** " + strings.ReplaceAll(text, "*/", "* /") + " */\n")
		return
	}
	b.WriteString(indent + "/**\n")
	for _, l := range lines {
		b.WriteString(strings.TrimRight(indent+" * "+strings.ReplaceAll(l, "*/", "* /"), " ") + "\n")
	}
	b.WriteString(indent + " */\n")
}

type packageJSON struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	Main        string            `json:"main"`
	Types       string            `json:"types"`
	Scripts     map[string]string `json:"scripts"`
	DevDeps     map[string]string `json:"devDependencies"`
}

func renderPackageJSON(pkg, version, description string) ([]byte, error) {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	if _, err := strconv.Atoi(strings.ReplaceAll(v, ".", "")); err != nil || v == "" {
		v = "0.1.0"
	} else {
		v += strings.Repeat(".0", max(0, 2-strings.Count(v, ".")))
	}
	b, err := json.MarshalIndent(packageJSON{
		Name:        pkg,
		Version:     v,
		Description: strings.TrimSpace(description),
		Main:        "dist/index.js",
		Types:       "dist/index.d.ts",
		Scripts:     map[string]string{"build": "tsc -p ."},
		DevDeps:     map[string]string{"typescript": "^5.4.0"},
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

const tsconfigJSON = `{
  "compilerOptions": {
    "target": "ES2020",
    "module": "commonjs",
    "declaration": true,
    "outDir": "dist",
    "strict": true
  },
  "include": ["*.ts"]
}
`
