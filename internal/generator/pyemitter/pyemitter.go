// Package pyemitter writes Python type stubs (dataclasses, enums and type
// aliases) for the named types of an API into a single models.py.
package pyemitter

import (
	"bytes"
	"context"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/names"
)

// Generator emits models.py.
type Generator struct{}

// New returns the Python generator.
func New() *Generator { return &Generator{} }

func (*Generator) Name() string { return "py" }

var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true, "assert": true,
	"async": true, "await": true, "break": true, "class": true, "continue": true, "def": true,
	"del": true, "elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
	// typing names imported by every module
	"Any": true, "Dict": true, "Enum": true, "Generic": true, "List": true, "Literal": true,
	"Optional": true, "TypeVar": true, "Union": true, "dataclass": true, "field": true,
}

const modelsTemplate = `"""Data model for {{.Title}}.

Generated by ramlgen from {{.Source}} - DO NOT MODIFY MANUALLY
"""

from __future__ import annotations

from dataclasses import dataclass
{{- if .Temporal}}
from datetime import {{.Temporal}}
{{- end}}
from enum import Enum
from typing import Any, Dict, Generic, List, Literal, Optional, TypeVar, Union
{{- if .TypeVars}}
{{range .TypeVars}}
{{.}} = TypeVar("{{.}}")
{{- end}}
{{- end}}
{{- range .Enums}}


class {{.Name}}(str, Enum):
{{- with .Doc}}
    """{{.}}"""
{{- end}}
{{- range .Members}}
    {{.Name}} = {{.Value}}
{{- end}}
{{- end}}
{{- range .Classes}}


@dataclass(kw_only=True)
class {{.Name}}{{with .Bases}}({{.}}){{end}}:
{{- with .Doc}}
    """{{.}}"""
{{- end}}
{{- range .Fields}}
    {{.Name}}: {{.Type}}{{if .Optional}} = None{{end}}
{{- end}}
{{- if and (not .Fields) (not .Doc)}}
    pass
{{- end}}
{{- end}}
{{- if .Aliases}}

{{range .Aliases}}
{{.Name}} = {{.Type}}
{{- end}}
{{- end}}
`

var modelsTmpl = template.Must(template.New("models.py").Parse(modelsTemplate))

type modelsView struct {
	Title    string
	Source   string
	Temporal string
	TypeVars []string
	Enums    []enumView
	Classes  []classView
	Aliases  []aliasView
}

type enumView struct {
	Name    string
	Doc     string
	Members []memberView
}

type memberView struct {
	Name  string
	Value string
}

type classView struct {
	Name   string
	Bases  string
	Doc    string
	Fields []fieldView
}

type fieldView struct {
	Name     string
	Type     string
	Optional bool
}

type aliasView struct {
	Name string
	Type string
}

type emitter struct {
	m        *model.ApiModel
	names    *model.Overlay[string]
	temporal map[string]bool
	// quote renders references to named types as forward reference strings.
	quote bool
}

func (g *Generator) Generate(ctx context.Context, m *model.ApiModel, cfg generator.OutputConfig) (*generator.Result, error) {
	if m == nil {
		return nil, errors.New("py: nil model")
	}
	e := &emitter{m: m, names: model.NewOverlay[string](), temporal: map[string]bool{}}
	types := generator.Emitted(m)
	e.assignNames(types)

	order, err := e.classOrder(types)
	if err != nil {
		return nil, errors.Wrap(err, "py: order classes")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := modelsView{Title: m.Title, Source: cfg.BaseName(m.Title)}
	vars := map[string]bool{}
	for _, n := range types {
		for _, p := range n.TypeParams {
			vars[p] = true
		}
		switch {
		case n.IsEnum() && n.Metatype == model.String:
			v.Enums = append(v.Enums, e.enum(n))
		case n.Metatype == model.Object:
		default:
			e.quote = true
			v.Aliases = append(v.Aliases, aliasView{Name: e.name(n), Type: e.alias(n)})
			e.quote = false
		}
	}
	for _, n := range order {
		v.Classes = append(v.Classes, e.class(n))
	}
	for p := range vars {
		v.TypeVars = append(v.TypeVars, p)
	}
	sort.Strings(v.TypeVars)
	var temporal []string
	for t := range e.temporal {
		temporal = append(temporal, t)
	}
	sort.Strings(temporal)
	v.Temporal = strings.Join(temporal, ", ")

	var buf bytes.Buffer
	if err := modelsTmpl.Execute(&buf, v); err != nil {
		return nil, errors.Wrap(err, "py: render models.py")
	}
	files := generator.Files{}
	files.Add("models.py", buf.Bytes())
	return generator.Emit(g.Name(), cfg, files)
}

func (e *emitter) assignNames(types []*model.TypeNode) {
	taken := map[string]bool{}
	for _, n := range types {
		base := n.CodeName()
		if base == "" {
			base = names.Pascal(n.Name)
		}
		base = names.Escape(base, keywords)
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

// classCollector gathers object declarations, supertypes first.
type classCollector struct {
	model.BaseVisitor
	emitted map[model.Handle]bool
	out     []*model.TypeNode
}

func (c *classCollector) StartObject(n *model.TypeNode) error {
	if c.emitted[n.Handle] {
		c.out = append(c.out, n)
	}
	return nil
}

// classOrder returns the object declarations in an order Python can
// evaluate: every class follows the classes named in its bases, including
// the arguments of a generic base.
func (e *emitter) classOrder(types []*model.TypeNode) ([]*model.TypeNode, error) {
	c := &classCollector{emitted: map[model.Handle]bool{}}
	for _, n := range types {
		if n.Metatype == model.Object {
			c.emitted[n.Handle] = true
		}
	}
	if err := model.Walk(e.m, c); err != nil {
		return nil, err
	}

	done := map[model.Handle]bool{}
	var out []*model.TypeNode
	var visit func(n *model.TypeNode)
	visit = func(n *model.TypeNode) {
		if done[n.Handle] {
			return
		}
		done[n.Handle] = true
		if n.Supertype != model.NoHandle {
			generator.Resolve(e.m, n.Supertype).Visit(func(r generator.Ref) {
				if (r.Kind == generator.RefNamed || r.Kind == generator.RefInstance) && c.emitted[r.Node.Handle] {
					visit(r.Node)
				}
			})
		}
		out = append(out, n)
	}
	for _, n := range c.out {
		visit(n)
	}
	return out, nil
}

func (e *emitter) enum(n *model.TypeNode) enumView {
	v := enumView{Name: e.name(n), Doc: docstring(n.Description)}
	used := map[string]bool{}
	for _, val := range n.Enum {
		member := names.Escape(names.Constant(val.Name), keywords)
		for base, i := member, 2; used[member]; i++ {
			member = base + "_" + strconv.Itoa(i)
		}
		used[member] = true
		v.Members = append(v.Members, memberView{Name: member, Value: strconv.Quote(val.Name)})
	}
	return v
}

func (e *emitter) class(n *model.TypeNode) classView {
	v := classView{Name: e.name(n), Doc: docstring(n.Description)}
	props := n.EffectiveProperties()
	var bases []string
	if n.Supertype != model.NoHandle {
		if sup := generator.Resolve(e.m, n.Supertype); sup.Kind == generator.RefNamed || sup.Kind == generator.RefInstance {
			bases = append(bases, e.pyType(sup))
			props = n.Properties
		}
	}
	if n.IsGeneric() {
		bases = append(bases, "Generic["+strings.Join(n.TypeParams, ", ")+"]")
	}
	v.Bases = strings.Join(bases, ", ")

	used := map[string]bool{}
	for _, p := range props {
		if p.Pattern {
			continue
		}
		field := p.CodeName()
		if field == "" {
			field = names.Snake(p.Name)
		}
		field = names.Escape(field, keywords)
		for base, i := field, 2; used[field]; i++ {
			field = base + "_" + strconv.Itoa(i)
		}
		used[field] = true

		typ := e.pyType(generator.Resolve(e.m, p.Type))
		if !p.Required && !strings.HasPrefix(typ, "Optional[") {
			typ = "Optional[" + typ + "]"
		}
		v.Fields = append(v.Fields, fieldView{Name: field, Type: typ, Optional: !p.Required})
	}
	return v
}

func (e *emitter) alias(n *model.TypeNode) string {
	switch {
	case n.IsEnum():
		return e.pyType(generator.Ref{Kind: generator.RefEnum, Metatype: n.Metatype, Node: n})
	case n.Metatype == model.Array:
		return "List[" + e.pyType(generator.Resolve(e.m, n.Items)) + "]"
	case n.Metatype == model.Union:
		return e.pyType(generator.Ref{Kind: generator.RefUnion, Members: unionMembers(e.m, n)})
	case n.Supertype != model.NoHandle:
		return e.pyType(generator.Resolve(e.m, n.Supertype))
	}
	return e.pyType(generator.Ref{Kind: generator.RefBuiltin, Metatype: n.Metatype})
}

func unionMembers(m *model.ApiModel, n *model.TypeNode) []generator.Ref {
	out := make([]generator.Ref, len(n.Members))
	for i, mem := range n.Members {
		out[i] = generator.Resolve(m, mem)
	}
	return out
}

// pyType renders r as a typing annotation.
func (e *emitter) pyType(r generator.Ref) string {
	switch r.Kind {
	case generator.RefParam:
		return r.Node.Param
	case generator.RefNamed:
		if e.quote {
			return strconv.Quote(e.name(r.Node))
		}
		return e.name(r.Node)
	case generator.RefInstance:
		args := make([]string, len(r.Args))
		for i, a := range r.Args {
			args[i] = e.pyType(a)
		}
		return e.name(r.Node) + "[" + strings.Join(args, ", ") + "]"
	case generator.RefArray:
		return "List[" + e.pyType(*r.Elem) + "]"
	case generator.RefUnion:
		rest := r.WithoutNull()
		parts := make([]string, len(rest))
		for i, mem := range rest {
			parts[i] = e.pyType(mem)
		}
		t := "None"
		switch len(parts) {
		case 0:
		case 1:
			t = parts[0]
		default:
			t = "Union[" + strings.Join(parts, ", ") + "]"
		}
		if r.HasNull() && len(parts) > 0 {
			return "Optional[" + t + "]"
		}
		return t
	case generator.RefInline:
		return "Dict[str, Any]"
	case generator.RefEnum:
		vals := make([]string, len(r.Node.Enum))
		for i, v := range r.Node.Enum {
			switch r.Node.Metatype {
			case model.Integer, model.Number:
				vals[i] = v.Name
			case model.Boolean:
				vals[i] = names.Pascal(v.Name)
			default:
				vals[i] = strconv.Quote(v.Name)
			}
		}
		return "Literal[" + strings.Join(vals, ", ") + "]"
	}

	switch r.Metatype {
	case model.Boolean:
		return "bool"
	case model.Integer:
		return "int"
	case model.Number:
		return "float"
	case model.Datetime, model.DatetimeOnly:
		e.temporal["datetime"] = true
		return "datetime"
	case model.DateOnly:
		e.temporal["date"] = true
		return "date"
	case model.TimeOnly:
		e.temporal["time"] = true
		return "time"
	case model.File:
		return "bytes"
	case model.Null:
		return "None"
	case model.Object:
		return "Dict[str, Any]"
	case model.Array:
		return "List[Any]"
	case model.Any, model.Union:
		return "Any"
	}
	return "str"
}

func docstring(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `"""`, `\"\"\"`)
	return strings.ReplaceAll(s, "\n", "\n    ")
}
