package generator

import (
	"go.uber.org/zap"

	"github.com/mark3labs/ramlgen/internal/example"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/raml"
)

// RefKind classifies how generated code refers to a type.
type RefKind int

const (
	// RefBuiltin is a built-in type; Ref.Metatype tells which.
	RefBuiltin RefKind = iota
	// RefParam is a type parameter of the enclosing generic declaration.
	RefParam
	// RefNamed is a declared type, referred to by name.
	RefNamed
	// RefInstance applies the generic declaration Ref.Node to Ref.Args.
	RefInstance
	RefArray
	RefUnion
	// RefInline is an anonymous object type with properties of its own.
	RefInline
	// RefEnum is an anonymous enumeration.
	RefEnum
)

// Ref is the language independent form of a type reference.
type Ref struct {
	Kind     RefKind
	Metatype model.Metatype
	Node     *model.TypeNode
	Args     []Ref
	Elem     *Ref
	Members  []Ref
}

// Resolve computes the reference to h. Anonymous nodes that only refine
// another type (a description, an example, facets) collapse into a
// reference to that type.
func Resolve(m *model.ApiModel, h model.Handle) Ref {
	n := m.Node(h)
	if n == nil {
		return Ref{Kind: RefBuiltin, Metatype: model.Any}
	}
	switch n.Origin {
	case model.OriginBuiltin:
		return Ref{Kind: RefBuiltin, Metatype: n.Metatype, Node: n}
	case model.OriginParam:
		return Ref{Kind: RefParam, Node: n}
	case model.OriginDeclared:
		return Ref{Kind: RefNamed, Node: n}
	}
	if n.Binding != nil && n.Origin == model.OriginInstance {
		args := make([]Ref, len(n.Binding.Args))
		for i, a := range n.Binding.Args {
			args[i] = Resolve(m, a)
		}
		return Ref{Kind: RefInstance, Node: m.Node(n.Binding.Generic), Args: args}
	}

	switch n.Metatype {
	case model.Array:
		elem := Resolve(m, n.Items)
		return Ref{Kind: RefArray, Node: n, Elem: &elem}
	case model.Union:
		members := make([]Ref, len(n.Members))
		for i, mem := range n.Members {
			members[i] = Resolve(m, mem)
		}
		return Ref{Kind: RefUnion, Node: n, Members: members}
	case model.Object:
		if len(n.Properties) > 0 {
			return Ref{Kind: RefInline, Node: n}
		}
	}
	if n.IsEnum() {
		return Ref{Kind: RefEnum, Metatype: n.Metatype, Node: n}
	}
	if n.Supertype != model.NoHandle {
		return Resolve(m, n.Supertype)
	}
	return Ref{Kind: RefBuiltin, Metatype: n.Metatype, Node: m.Builtin(n.Metatype)}
}

// Visit calls fn for r and every reference nested in it.
func (r Ref) Visit(fn func(Ref)) {
	fn(r)
	if r.Elem != nil {
		r.Elem.Visit(fn)
	}
	for _, a := range r.Args {
		a.Visit(fn)
	}
	for _, mem := range r.Members {
		mem.Visit(fn)
	}
}

// HasNull reports whether r is a union with a null member.
func (r Ref) HasNull() bool {
	for _, mem := range r.Members {
		if mem.Kind == RefBuiltin && mem.Metatype == model.Null {
			return true
		}
	}
	return false
}

// WithoutNull returns the union members other than null.
func (r Ref) WithoutNull() []Ref {
	out := make([]Ref, 0, len(r.Members))
	for _, mem := range r.Members {
		if mem.Kind == RefBuiltin && mem.Metatype == model.Null {
			continue
		}
		out = append(out, mem)
	}
	return out
}

// Emitted returns the types a code generator writes a definition for:
// every listed type except concrete generic instances, which are referred
// to by applying their generic declaration.
func Emitted(m *model.ApiModel) []*model.TypeNode {
	var out []*model.TypeNode
	for _, n := range m.Types() {
		if n.Origin == model.OriginDeclared {
			out = append(out, n)
		}
	}
	return out
}

// RenderExample renders ex against h. When the example does not fit the
// type the mismatch is logged and the example is rendered untyped.
func RenderExample(log *zap.Logger, m *model.ApiModel, h model.Handle, ex raml.Example) example.RenderedValue {
	if !ex.Strict {
		return example.Infer(ex.Value)
	}
	v, err := example.Render(m, h, ex.Value)
	if err != nil {
		name := ""
		if n := m.Node(h); n != nil {
			name = n.Name
		}
		log.Warn("example does not match its type",
			zap.String("type", name),
			zap.String("example", ex.Name),
			zap.Error(err))
		return example.Infer(ex.Value)
	}
	return v
}
