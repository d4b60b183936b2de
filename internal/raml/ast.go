package raml

// Document is the decoded form of a RAML 1.0 API definition with all
// libraries and includes folded in. Library types are namespaced as
// "alias.Name".
type Document struct {
	Location    string
	Title       string
	Version     string
	BaseURI     string
	MediaType   []string
	Description string

	Types           []*TypeDecl
	AnnotationTypes []*TypeDecl
	Resources       []*Resource
	Annotations     []Annotation

	// Libraries lists the aliases of all libraries in load order.
	Libraries []string
}

// TypeExpr is a type expression: a name, an array of an element expression,
// or a union of member expressions. The set of implementations is closed.
type TypeExpr interface {
	String() string
	typeExpr()
}

// NameRef references a built-in or declared type by name.
type NameRef struct {
	Name string
}

// ArrayExpr is the "Elem[]" shorthand.
type ArrayExpr struct {
	Elem TypeExpr
}

// UnionExpr is the "A | B" shorthand.
type UnionExpr struct {
	Members []TypeExpr
}

func (NameRef) typeExpr()   {}
func (ArrayExpr) typeExpr() {}
func (UnionExpr) typeExpr() {}

func (n NameRef) String() string { return n.Name }

func (a ArrayExpr) String() string {
	if _, ok := a.Elem.(UnionExpr); ok {
		return "(" + a.Elem.String() + ")[]"
	}
	return a.Elem.String() + "[]"
}

func (u UnionExpr) String() string {
	s := ""
	for i, m := range u.Members {
		if i > 0 {
			s += " | "
		}
		s += m.String()
	}
	return s
}

// Facets holds the optional constraint facets of a type declaration.
type Facets struct {
	Format               string
	Pattern              string
	Minimum              *float64
	Maximum              *float64
	MultipleOf           *float64
	MinLength            *int
	MaxLength            *int
	MinItems             *int
	MaxItems             *int
	MinProperties        *int
	MaxProperties        *int
	UniqueItems          bool
	AdditionalProperties *bool
	Discriminator        string
	DiscriminatorValue   string
	FileTypes            []string
}

// IsZero reports whether no facet is set.
func (f Facets) IsZero() bool {
	return f.Format == "" && f.Pattern == "" && f.Minimum == nil && f.Maximum == nil &&
		f.MultipleOf == nil && f.MinLength == nil && f.MaxLength == nil &&
		f.MinItems == nil && f.MaxItems == nil && f.MinProperties == nil &&
		f.MaxProperties == nil && !f.UniqueItems && f.AdditionalProperties == nil &&
		f.Discriminator == "" && f.DiscriminatorValue == "" && len(f.FileTypes) == 0
}

// TypeDecl is a named type declaration, or the anonymous declaration of a
// property, item type, parameter or body.
type TypeDecl struct {
	Name string
	// Base is the value of the "type" key. Nil means the key was absent.
	Base        TypeExpr
	Properties  []*PropertyDecl
	Items       *TypeDecl
	Enum        []string
	Facets      Facets
	Description string
	DisplayName string
	Default     ExampleValue
	Examples    []Example
	Annotations []Annotation

	// Library is the alias of the library the declaration came from.
	Library string
	Line    int
	Column  int
}

// IsReference reports whether the declaration only names another type, so
// that a property or parameter can point at that type directly.
func (d *TypeDecl) IsReference() bool {
	return len(d.Properties) == 0 && d.Items == nil && len(d.Enum) == 0 &&
		d.Facets.IsZero() && len(d.Examples) == 0 && d.Default == nil
}

// Annotation returns the value of the named annotation.
func (d *TypeDecl) Annotation(name string) (ExampleValue, bool) {
	return findAnnotation(d.Annotations, name)
}

// PropertyDecl is one entry below "properties".
type PropertyDecl struct {
	Name     string
	Required bool
	// Pattern is set for "/regex/" keys; Name then holds the bare regex.
	Pattern bool
	Type    *TypeDecl
}

// Annotation is an applied "(name): value" annotation.
type Annotation struct {
	Name  string
	Value ExampleValue
}

func findAnnotation(list []Annotation, name string) (ExampleValue, bool) {
	for _, a := range list {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Example is a single example, either from "example" or one entry of "examples".
type Example struct {
	Name        string
	DisplayName string
	Description string
	Strict      bool
	Value       ExampleValue
}

// ExampleValue is a loosely typed example tree: Scalar, Sequence or Structure.
type ExampleValue interface {
	exampleValue()
}

// Scalar is a literal. Tag is the resolved YAML tag ("!!str", "!!int",
// "!!float", "!!bool", "!!null"); quoted literals always carry "!!str".
type Scalar struct {
	Value string
	Tag   string
}

// Sequence is an ordered list of values.
type Sequence struct {
	Items []ExampleValue
}

// Field is one name/value pair of a Structure.
type Field struct {
	Name  string
	Value ExampleValue
}

// Structure is an ordered list of name/value pairs.
type Structure struct {
	Fields []Field
}

func (Scalar) exampleValue()    {}
func (Sequence) exampleValue()  {}
func (Structure) exampleValue() {}

// IsNull reports whether the scalar is an unquoted YAML null.
func (s Scalar) IsNull() bool { return s.Tag == "!!null" }

// Lookup returns the value of the named field.
func (s Structure) Lookup(name string) (ExampleValue, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Strings returns the scalar values of a scalar or a sequence of scalars.
func Strings(v ExampleValue) []string {
	switch val := v.(type) {
	case Scalar:
		if val.IsNull() {
			return nil
		}
		return []string{val.Value}
	case Sequence:
		out := make([]string, 0, len(val.Items))
		for _, item := range val.Items {
			if s, ok := item.(Scalar); ok && !s.IsNull() {
				out = append(out, s.Value)
			}
		}
		return out
	default:
		return nil
	}
}

// Resource is a "/path" node of the resource tree.
type Resource struct {
	RelativeURI  string
	DisplayName  string
	Description  string
	URIParams    []*Parameter
	Methods      []*Method
	Resources    []*Resource
	Annotations  []Annotation
	Line, Column int
}

// Method is an HTTP method of a resource.
type Method struct {
	Name        string
	DisplayName string
	Description string
	QueryParams []*Parameter
	Headers     []*Parameter
	Body        []*Body
	Responses   []*Response
	Annotations []Annotation
}

// Parameter is a URI parameter, query parameter or header.
type Parameter struct {
	Name     string
	Required bool
	Type     *TypeDecl
}

// Body is a request or response body for one media type. MediaType is empty
// when the body omits the media type and the document default applies.
type Body struct {
	MediaType string
	Type      *TypeDecl
}

// Response is one status code entry of a method.
type Response struct {
	Code        string
	Description string
	Headers     []*Parameter
	Body        []*Body
}
