// Package goemitter writes Go type declarations for the named types of an
// API into a single gofmt-ed file.
package goemitter

import (
	"bytes"
	"context"
	"go/format"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/names"
)

const defaultPackage = "model"

// Generator emits Go types.
type Generator struct{}

// New returns the Go generator.
func New() *Generator { return &Generator{} }

func (*Generator) Name() string { return "go" }

type emitter struct {
	m     *model.ApiModel
	names *model.Overlay[string]

	needTime bool
	needJSON bool
}

// Generate writes types.go. When PackageName is a module path (it contains
// a slash) a go.mod is written as well and the package is named after the
// last path element.
func (g *Generator) Generate(ctx context.Context, m *model.ApiModel, cfg generator.OutputConfig) (*generator.Result, error) {
	if m == nil {
		return nil, errors.New("go: nil model")
	}
	modulePath := strings.TrimSpace(cfg.PackageName)
	pkg := modulePath
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		pkg = pkg[i+1:]
	}
	pkg = names.GoPackage(pkg)
	if pkg == "" {
		pkg = defaultPackage
	}

	e := &emitter{m: m, names: model.NewOverlay[string]()}
	types := generator.Emitted(m)
	e.assignNames(types)

	var body bytes.Buffer
	for _, n := range types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body.WriteString("\n")
		e.decl(&body, n)
	}

	var src bytes.Buffer
	src.WriteString("// Code generated by ramlgen from " + cfg.BaseName(m.Title) + ". DO NOT EDIT.\n\n")
	src.WriteString("package " + pkg + "\n")
	switch {
	case e.needJSON && e.needTime:
		src.WriteString("\nimport (\n\t\"encoding/json\"\n\t\"time\"\n)\n")
	case e.needJSON:
		src.WriteString("\nimport \"encoding/json\"\n")
	case e.needTime:
		src.WriteString("\nimport \"time\"\n")
	}
	src.Write(body.Bytes())

	formatted, err := format.Source(src.Bytes())
	if err != nil {
		cfg.Log().Debug("unformatted go source", zap.ByteString("source", src.Bytes()))
		return nil, errors.Wrap(err, "go: format types.go")
	}

	files := generator.Files{}
	files.Add("types.go", formatted)
	if strings.Contains(modulePath, "/") {
		files.AddString("go.mod", "module "+modulePath+"\n\ngo 1.21\n")
	}
	return generator.Emit(g.Name(), cfg, files)
}

func (e *emitter) assignNames(types []*model.TypeNode) {
	taken := map[string]bool{}
	for _, n := range types {
		base := n.CodeName()
		if base == "" {
			base = names.Pascal(n.Name)
		}
		base = strings.TrimPrefix(base, "_")
		if base == "" || !isUpper(base[0]) {
			base = "T" + base
		}
		name := base
		for i := 2; taken[name]; i++ {
			name = base + strconv.Itoa(i)
		}
		taken[name] = true
		e.names.Set(n.Handle, name)
	}
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func (e *emitter) name(n *model.TypeNode) string {
	return e.names.GetOrCompute(n.Handle, func() string { return names.Pascal(n.Name) })
}

func (e *emitter) decl(b *bytes.Buffer, n *model.TypeNode) {
	name := e.name(n)
	writeDoc(b, "", name, n.Description)
	head := name
	if n.IsGeneric() {
		head += "[" + strings.Join(n.TypeParams, ", ") + " any]"
	}

	switch {
	case n.IsEnum() && n.Metatype != model.Object:
		base := e.goType(generator.Ref{Kind: generator.RefBuiltin, Metatype: n.Metatype, Node: n})
		b.WriteString("type " + head + " " + base + "\n\nconst (\n")
		for _, v := range n.Enum {
			if d := strings.TrimSpace(v.Description); d != "" {
				b.WriteString("\t// " + strings.ReplaceAll(d, "\n", "\n\t// ") + "\n")
			}
			lit := v.Name
			if base == "string" {
				lit = strconv.Quote(v.Name)
			}
			b.WriteString("\t" + name + strings.TrimPrefix(names.Pascal(v.Name), "_") + " " + name + " = " + lit + "\n")
		}
		b.WriteString(")\n")
	case n.Metatype == model.Object:
		b.WriteString("type " + head + " struct {\n")
		e.fields(b, n)
		b.WriteString("}\n")
	case n.Metatype == model.Array:
		b.WriteString("type " + head + " []" + e.goType(generator.Resolve(e.m, n.Items)) + "\n")
	case n.Metatype == model.Union:
		e.needJSON = true
		b.WriteString("type " + head + " = json.RawMessage\n")
	case n.Supertype != model.NoHandle:
		b.WriteString("type " + head + " " + e.goType(generator.Resolve(e.m, n.Supertype)) + "\n")
	default:
		b.WriteString("type " + head + " " + e.goType(generator.Ref{Kind: generator.RefBuiltin, Metatype: n.Metatype, Node: n}) + "\n")
	}
}

// fields writes the struct body of n: the embedded supertype, if any, and
// one field per property.
func (e *emitter) fields(b *bytes.Buffer, n *model.TypeNode) {
	props := n.EffectiveProperties()
	if n.Supertype != model.NoHandle {
		if sup := generator.Resolve(e.m, n.Supertype); sup.Kind == generator.RefNamed || sup.Kind == generator.RefInstance {
			b.WriteString("\t" + e.goType(sup) + "\n")
			props = n.Properties
		}
	}
	used := map[string]bool{}
	for _, p := range props {
		if p.Pattern {
			continue
		}
		field := p.CodeName()
		if field == "" {
			field = strings.TrimPrefix(names.Pascal(p.Name), "_")
		}
		if field == "" || !isUpper(field[0]) {
			field = "F" + field
		}
		for base, i := field, 2; used[field]; i++ {
			field = base + strconv.Itoa(i)
		}
		used[field] = true

		r := generator.Resolve(e.m, p.Type)
		typ := e.goType(r)
		tag := p.Name
		if !p.Required {
			tag += ",omitempty"
			if !nilable(typ) {
				typ = "*" + typ
			}
		} else if r.Kind == generator.RefNamed && r.Node == n {
			typ = "*" + typ
		}
		if d := strings.TrimSpace(p.Description); d != "" {
			b.WriteString("\t// " + strings.ReplaceAll(d, "\n", "\n\t// ") + "\n")
		}
		b.WriteString("\t" + field + " " + typ + " `json:\"" + tag + "\"`\n")
	}
}

func nilable(typ string) bool {
	return strings.HasPrefix(typ, "*") || strings.HasPrefix(typ, "[]") ||
		strings.HasPrefix(typ, "map[") || typ == "any" || typ == "json.RawMessage"
}

// goType renders r as a Go type expression.
func (e *emitter) goType(r generator.Ref) string {
	switch r.Kind {
	case generator.RefParam:
		return r.Node.Param
	case generator.RefNamed:
		return e.name(r.Node)
	case generator.RefInstance:
		args := make([]string, len(r.Args))
		for i, a := range r.Args {
			args[i] = e.goType(a)
		}
		return e.name(r.Node) + "[" + strings.Join(args, ", ") + "]"
	case generator.RefArray:
		return "[]" + e.goType(*r.Elem)
	case generator.RefUnion:
		rest := r.WithoutNull()
		if len(rest) == 1 {
			t := e.goType(rest[0])
			if r.HasNull() && !nilable(t) {
				return "*" + t
			}
			return t
		}
		e.needJSON = true
		return "json.RawMessage"
	case generator.RefInline:
		var b bytes.Buffer
		b.WriteString("struct {\n")
		e.fields(&b, r.Node)
		b.WriteString("}")
		return b.String()
	case generator.RefEnum:
		return e.goType(generator.Ref{Kind: generator.RefBuiltin, Metatype: r.Metatype, Node: r.Node})
	}

	var facets string
	if r.Node != nil {
		facets = e.m.Facets(r.Node.Handle).Format
	}
	switch r.Metatype {
	case model.Boolean:
		return "bool"
	case model.Integer:
		switch facets {
		case "int32", "int":
			return "int32"
		case "int16":
			return "int16"
		case "int8":
			return "int8"
		}
		return "int64"
	case model.Number:
		if facets == "float" {
			return "float32"
		}
		return "float64"
	case model.Datetime:
		e.needTime = true
		return "time.Time"
	case model.File:
		return "[]byte"
	case model.Object:
		return "map[string]any"
	case model.Array:
		return "[]any"
	case model.Any, model.Null:
		return "any"
	default:
		return "string"
	}
}

func writeDoc(b *bytes.Buffer, indent, name, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !strings.HasPrefix(text, name+" ") {
		text = name + ": " + text
	}
	for _, l := range strings.Split(text, "\n") {
		b.WriteString(strings.TrimRight(indent+"// "+l, " ") + "\n")
	}
}
