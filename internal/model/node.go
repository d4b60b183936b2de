package model

import (
	"github.com/mark3labs/ramlgen/internal/raml"
)

// Handle indexes a node in the model's arena. Built-in types occupy the
// first handles, one per metatype, so Handle(String) is the string type.
type Handle int

// NoHandle marks an absent reference (no supertype, no item type).
const NoHandle Handle = -1

// Origin tells how a node came into existence.
type Origin int

const (
	OriginBuiltin Origin = iota
	OriginDeclared
	// OriginInstance nodes are concrete (or partially concrete) expansions
	// of a generic declaration.
	OriginInstance
	// OriginSynthetic nodes are anonymous: inline declarations, "X[]" and
	// "A | B" shorthands, annotation types.
	OriginSynthetic
	// OriginParam nodes stand for a type parameter inside a generic declaration.
	OriginParam
)

// TypeNode is one resolved type.
type TypeNode struct {
	Handle   Handle
	Name     string
	Origin   Origin
	Metatype Metatype
	Library  string

	// Supertype is the declared parent type, NoHandle when the type derives
	// directly from a built-in.
	Supertype Handle
	// Properties holds the properties declared on this node, in order.
	// EffectiveProperties includes inherited ones.
	Properties []Property
	Items      Handle
	Members    []Handle

	// TypeParams are the parameter names of a generic declaration and
	// ParamNodes the matching parameter nodes.
	TypeParams []string
	ParamNodes []Handle
	// Param is the parameter name of an OriginParam node.
	Param string
	// Owner is the declaring node of parameter and inline nodes.
	Owner   Handle
	Binding *GenericBinding

	Enum        []EnumValue
	Facets      raml.Facets
	Description string
	DisplayName string
	Default     raml.ExampleValue
	Examples    []raml.Example
	Annotations []raml.Annotation

	effective []Property
}

// Property is a named member of an object type.
type Property struct {
	Name     string
	Type     Handle
	Required bool
	// Pattern marks a "/regex/" property; Name holds the regex.
	Pattern bool
	// DeclaredBy is the node that declared the property. It differs from the
	// enclosing node for inherited properties.
	DeclaredBy  Handle
	Description string
	DisplayName string
	Default     raml.ExampleValue
	Examples    []raml.Example
	Annotations []raml.Annotation
}

// GenericBinding records that a node was instantiated from a generic
// declaration with the given arguments, in parameter order.
type GenericBinding struct {
	Generic Handle
	Args    []Handle
}

// EnumValue is one enumeration member.
type EnumValue struct {
	Name        string
	Description string
}

// IsGeneric reports whether the node declares type parameters.
func (n *TypeNode) IsGeneric() bool { return len(n.TypeParams) > 0 }

// IsDeclared reports whether the node is a named declaration of the document.
func (n *TypeNode) IsDeclared() bool { return n.Origin == OriginDeclared }

// IsEnum reports whether the node enumerates its values.
func (n *TypeNode) IsEnum() bool { return len(n.Enum) > 0 }

// EffectiveProperties returns inherited properties followed by own
// properties. A redeclared property keeps the position of the inherited one.
func (n *TypeNode) EffectiveProperties() []Property { return n.effective }

// Property returns the effective property with the given name.
func (n *TypeNode) Property(name string) (Property, bool) {
	for _, p := range n.effective {
		if !p.Pattern && p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Annotation returns the value of an annotation applied to the node.
func (n *TypeNode) Annotation(name string) (raml.ExampleValue, bool) {
	return annotation(n.Annotations, name)
}

// CodeName returns the "(codeName)" annotation, which overrides the name
// used in generated code.
func (n *TypeNode) CodeName() string { return stringAnnotation(n.Annotations, "codeName") }

// Annotation returns the value of an annotation applied to the property.
func (p Property) Annotation(name string) (raml.ExampleValue, bool) {
	return annotation(p.Annotations, name)
}

// CodeName returns the "(codeName)" annotation of the property.
func (p Property) CodeName() string { return stringAnnotation(p.Annotations, "codeName") }

// IsIdentity reports whether the property carries the "(id)" annotation.
func (p Property) IsIdentity() bool {
	_, ok := annotation(p.Annotations, "id")
	return ok
}

// PreservesNull reports whether the property carries "(preserveNull)".
func (p Property) PreservesNull() bool {
	_, ok := annotation(p.Annotations, "preserveNull")
	return ok
}

func annotation(list []raml.Annotation, name string) (raml.ExampleValue, bool) {
	for _, a := range list {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

func stringAnnotation(list []raml.Annotation, name string) string {
	v, ok := annotation(list, name)
	if !ok {
		return ""
	}
	if s, ok := v.(raml.Scalar); ok && !s.IsNull() {
		return s.Value
	}
	return ""
}
