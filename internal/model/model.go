package model

import (
	"sort"

	"github.com/mark3labs/ramlgen/internal/raml"
)

// ApiModel is the resolved, generator independent form of an API
// definition. It is built once by Build and read-only afterwards, so any
// number of generators may walk it concurrently.
type ApiModel struct {
	Title       string
	Version     string
	BaseURI     string
	Description string
	MediaType   []string
	Annotations []raml.Annotation
	Libraries   []string
	// Source is the location the definition was loaded from.
	Source string

	nodes           []*TypeNode
	names           map[string]Handle
	declared        []Handle
	instances       []Handle
	resources       []*Resource
	annotationTypes []AnnotationType
	derived         map[Handle][]Handle
}

// AnnotationType is a declaration below "annotationTypes".
type AnnotationType struct {
	Name string
	Type Handle
}

func newApiModel() *ApiModel {
	return &ApiModel{names: map[string]Handle{}, derived: map[Handle][]Handle{}}
}

func (m *ApiModel) add(n *TypeNode) Handle {
	h := Handle(len(m.nodes))
	n.Handle = h
	m.nodes = append(m.nodes, n)
	return h
}

// Node returns the node of a handle, or nil for NoHandle.
func (m *ApiModel) Node(h Handle) *TypeNode {
	if h < 0 || int(h) >= len(m.nodes) {
		return nil
	}
	return m.nodes[h]
}

// Builtin returns the node of a built-in type.
func (m *ApiModel) Builtin(mt Metatype) *TypeNode { return m.nodes[Handle(mt)] }

// Lookup finds a built-in, declared type or generic instance by name.
func (m *ApiModel) Lookup(name string) (*TypeNode, bool) {
	h, ok := m.names[name]
	if !ok {
		return nil, false
	}
	return m.nodes[h], true
}

// Types returns declared types in declaration order (library types first)
// followed by concrete generic instances in creation order.
func (m *ApiModel) Types() []*TypeNode {
	out := make([]*TypeNode, 0, len(m.declared)+len(m.instances))
	for _, h := range m.declared {
		out = append(out, m.nodes[h])
	}
	for _, h := range m.instances {
		if !m.IsOpen(h) {
			out = append(out, m.nodes[h])
		}
	}
	return out
}

// DeclaredTypes returns the named declarations only.
func (m *ApiModel) DeclaredTypes() []*TypeNode {
	out := make([]*TypeNode, len(m.declared))
	for i, h := range m.declared {
		out[i] = m.nodes[h]
	}
	return out
}

// Instances returns all generic instances, including open ones whose
// arguments still mention type parameters.
func (m *ApiModel) Instances() []*TypeNode {
	out := make([]*TypeNode, len(m.instances))
	for i, h := range m.instances {
		out[i] = m.nodes[h]
	}
	return out
}

// SortedTypes returns Types ordered by name.
func (m *ApiModel) SortedTypes() []*TypeNode {
	out := m.Types()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsOpen reports whether a node mentions a type parameter: a parameter
// itself, a generic declaration, or an instance, array or union built over one.
func (m *ApiModel) IsOpen(h Handle) bool {
	return m.isOpen(h, map[Handle]bool{})
}

func (m *ApiModel) isOpen(h Handle, seen map[Handle]bool) bool {
	n := m.Node(h)
	if n == nil || seen[h] {
		return false
	}
	seen[h] = true
	switch {
	case n.Origin == OriginParam, n.IsGeneric():
		return true
	case n.Binding != nil:
		for _, a := range n.Binding.Args {
			if m.isOpen(a, seen) {
				return true
			}
		}
		return false
	case n.Origin == OriginSynthetic && n.Owner == NoHandle:
		if n.Metatype == Array {
			return m.isOpen(n.Items, seen)
		}
		for _, mem := range n.Members {
			if m.isOpen(mem, seen) {
				return true
			}
		}
	}
	return false
}

// Resources returns the top-level resources.
func (m *ApiModel) Resources() []*Resource { return m.resources }

// AnnotationTypes returns the annotation type declarations.
func (m *ApiModel) AnnotationTypes() []AnnotationType { return m.annotationTypes }

// DerivedTypes returns the declared types whose direct supertype is h.
func (m *ApiModel) DerivedTypes(h Handle) []*TypeNode {
	hs := m.derived[h]
	out := make([]*TypeNode, len(hs))
	for i, d := range hs {
		out[i] = m.nodes[d]
	}
	return out
}

// IsPrimitive reports whether the type of h is a scalar.
func (m *ApiModel) IsPrimitive(h Handle) bool {
	n := m.Node(h)
	return n != nil && n.Metatype.IsPrimitive()
}

// IsStructured reports whether h is an object type with a name of its own,
// so generators emit a class or schema for it.
func (m *ApiModel) IsStructured(h Handle) bool {
	n := m.Node(h)
	return n != nil && n.Metatype == Object && (n.Origin == OriginDeclared || n.Origin == OriginInstance)
}

// ItemType returns the element type of an array, or NoHandle.
func (m *ApiModel) ItemType(h Handle) Handle {
	n := m.Node(h)
	if n == nil || n.Metatype != Array {
		return NoHandle
	}
	return n.Items
}

// Root walks the supertype chain of h up to the topmost declared type.
func (m *ApiModel) Root(h Handle) *TypeNode {
	n := m.Node(h)
	for n != nil && n.Supertype != NoHandle {
		n = m.nodes[n.Supertype]
	}
	return n
}

// Discriminator returns the discriminator property of h, inherited along
// the supertype chain.
func (m *ApiModel) Discriminator(h Handle) string {
	for n := m.Node(h); n != nil; n = m.Node(n.Supertype) {
		if n.Facets.Discriminator != "" {
			return n.Facets.Discriminator
		}
	}
	return ""
}

// DiscriminatorValue returns the discriminator value of h, which defaults
// to the type name.
func (m *ApiModel) DiscriminatorValue(h Handle) string {
	n := m.Node(h)
	if n == nil {
		return ""
	}
	if n.Facets.DiscriminatorValue != "" {
		return n.Facets.DiscriminatorValue
	}
	return n.Name
}

// Facets returns the facets of h merged with those of its supertypes; the
// nearest declaration wins. DiscriminatorValue is never inherited.
func (m *ApiModel) Facets(h Handle) raml.Facets {
	var chain []*TypeNode
	for n := m.Node(h); n != nil; n = m.Node(n.Supertype) {
		chain = append(chain, n)
	}
	var f raml.Facets
	for i := len(chain) - 1; i >= 0; i-- {
		mergeFacets(&f, chain[i].Facets)
	}
	if len(chain) > 0 {
		f.DiscriminatorValue = chain[0].Facets.DiscriminatorValue
	}
	return f
}

func mergeFacets(dst *raml.Facets, src raml.Facets) {
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Pattern != "" {
		dst.Pattern = src.Pattern
	}
	if src.Minimum != nil {
		dst.Minimum = src.Minimum
	}
	if src.Maximum != nil {
		dst.Maximum = src.Maximum
	}
	if src.MultipleOf != nil {
		dst.MultipleOf = src.MultipleOf
	}
	if src.MinLength != nil {
		dst.MinLength = src.MinLength
	}
	if src.MaxLength != nil {
		dst.MaxLength = src.MaxLength
	}
	if src.MinItems != nil {
		dst.MinItems = src.MinItems
	}
	if src.MaxItems != nil {
		dst.MaxItems = src.MaxItems
	}
	if src.MinProperties != nil {
		dst.MinProperties = src.MinProperties
	}
	if src.MaxProperties != nil {
		dst.MaxProperties = src.MaxProperties
	}
	if src.UniqueItems {
		dst.UniqueItems = true
	}
	if src.AdditionalProperties != nil {
		dst.AdditionalProperties = src.AdditionalProperties
	}
	if src.Discriminator != "" {
		dst.Discriminator = src.Discriminator
	}
	if len(src.FileTypes) > 0 {
		dst.FileTypes = src.FileTypes
	}
}

// Examples returns the examples of h, falling back to those of its supertypes.
func (m *ApiModel) Examples(h Handle) []raml.Example {
	for n := m.Node(h); n != nil; n = m.Node(n.Supertype) {
		if len(n.Examples) > 0 {
			return n.Examples
		}
	}
	return nil
}

func (m *ApiModel) indexDerived() {
	for _, h := range m.declared {
		if s := m.nodes[h].Supertype; s != NoHandle {
			m.derived[s] = append(m.derived[s], h)
		}
	}
}
