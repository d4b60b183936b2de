package model

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/ramlgen/internal/raml"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func buildSource(t *testing.T, src string, opts ...BuildOption) (*ApiModel, error) {
	t.Helper()
	p := writeFile(t, t.TempDir(), "api.raml", src)
	doc, err := raml.Load(context.Background(), p)
	require.NoError(t, err)
	return Build(context.Background(), doc, opts...)
}

func mustBuild(t *testing.T, src string, opts ...BuildOption) *ApiModel {
	t.Helper()
	m, err := buildSource(t, src, opts...)
	require.NoError(t, err)
	return m
}

func lookup(t *testing.T, m *ApiModel, name string) *TypeNode {
	t.Helper()
	n, ok := m.Lookup(name)
	require.Truef(t, ok, "type %q not found", name)
	return n
}

func propertyNames(props []Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Name
	}
	return out
}

func typeNames(nodes []*TypeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestMetatypeLiteralsAreBijective(t *testing.T) {
	seen := map[string]bool{}
	for _, mt := range Metatypes() {
		lit := mt.Literal()
		require.NotEmpty(t, lit)
		assert.False(t, seen[lit], "literal %q used twice", lit)
		seen[lit] = true

		back, ok := LookupMetatype(lit)
		require.True(t, ok)
		assert.Equal(t, mt, back)
	}
	assert.Len(t, seen, 14)

	mt, ok := LookupMetatype("nil")
	require.True(t, ok)
	assert.Equal(t, Null, mt)
	mt, ok = LookupMetatype("date-only")
	require.True(t, ok)
	assert.Equal(t, DateOnly, mt)

	assert.False(t, IsBuiltin("Person"))
	assert.True(t, IsBuiltin("datetime-only"))
	assert.True(t, String.IsPrimitive())
	assert.False(t, Object.IsPrimitive())
	assert.True(t, DateOnly.IsTemporal())
}

func TestBuiltinHandles(t *testing.T) {
	m := mustBuild(t, "#%RAML 1.0\ntitle: Empty\n")
	for _, mt := range Metatypes() {
		n := m.Builtin(mt)
		assert.Equal(t, Handle(mt), n.Handle)
		assert.Equal(t, OriginBuiltin, n.Origin)
	}
	assert.Empty(t, m.Types())
}

func TestInheritedPropertiesComeFirst(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Inheritance
types:
  B:
    type: A
    properties:
      y: integer
  A:
    properties:
      x: string
`)
	a, b := lookup(t, m, "A"), lookup(t, m, "B")
	assert.Equal(t, Object, b.Metatype)
	assert.Equal(t, a.Handle, b.Supertype)
	assert.Equal(t, []string{"y"}, propertyNames(b.Properties))
	assert.Equal(t, []string{"x", "y"}, propertyNames(b.EffectiveProperties()))

	x, ok := b.Property("x")
	require.True(t, ok)
	assert.Equal(t, a.Handle, x.DeclaredBy)
	assert.Equal(t, Handle(String), x.Type)

	assert.Equal(t, []string{"B"}, typeNames(m.DerivedTypes(a.Handle)))
	assert.Equal(t, "A", m.Root(b.Handle).Name)
}

func TestRedeclaredPropertyKeepsPosition(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Override
types:
  A:
    properties:
      x: string
      z: string
  B:
    type: A
    properties:
      y: integer
      x: integer
`)
	b := lookup(t, m, "B")
	props := b.EffectiveProperties()
	assert.Equal(t, []string{"x", "z", "y"}, propertyNames(props))
	assert.Equal(t, Handle(Integer), props[0].Type)
	assert.Equal(t, b.Handle, props[0].DeclaredBy)
}

func TestOptionalAndPatternProperties(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Props
types:
  Person:
    properties:
      name: string
      nickname?: string
      age:
        type: integer
        required: false
      /^x-/: string
`)
	p := lookup(t, m, "Person")
	props := p.EffectiveProperties()
	require.Len(t, props, 4)
	assert.True(t, props[0].Required)
	assert.False(t, props[1].Required)
	assert.Equal(t, "nickname", props[1].Name)
	assert.False(t, props[2].Required)
	assert.True(t, props[3].Pattern)
	assert.Equal(t, "^x-", props[3].Name)

	_, ok := p.Property("^x-")
	assert.False(t, ok, "pattern properties are not found by name")
}

func TestInlineDeclarationsGetSyntheticNodes(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Inline
types:
  Person:
    properties:
      address:
        properties:
          city: string
      tags: string[]
      id:
        type: string
        pattern: ^[a-z]+$
`)
	person := lookup(t, m, "Person")
	addr, ok := person.Property("address")
	require.True(t, ok)
	an := m.Node(addr.Type)
	assert.Equal(t, "Person.address", an.Name)
	assert.Equal(t, OriginSynthetic, an.Origin)
	assert.Equal(t, person.Handle, an.Owner)
	assert.Equal(t, []string{"city"}, propertyNames(an.EffectiveProperties()))
	assert.False(t, m.IsStructured(addr.Type))
	assert.True(t, m.IsStructured(person.Handle))

	tags, _ := person.Property("tags")
	assert.Equal(t, "string[]", m.Node(tags.Type).Name)
	assert.Equal(t, Handle(String), m.ItemType(tags.Type))

	id, _ := person.Property("id")
	idNode := m.Node(id.Type)
	assert.Equal(t, String, idNode.Metatype)
	assert.Equal(t, "^[a-z]+$", idNode.Facets.Pattern)
	assert.True(t, m.IsPrimitive(id.Type))

	// Only named declarations are listed.
	assert.Equal(t, []string{"Person"}, typeNames(m.Types()))
}

func TestShorthandNodesAreShared(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Shared
types:
  Cat:
    properties:
      name: string
  Dog:
    properties:
      name: string
  Pets:
    properties:
      a: Cat | Dog
      b: Cat | Dog
      c: (Cat | Dog)[]
`)
	pets := lookup(t, m, "Pets")
	a, _ := pets.Property("a")
	b, _ := pets.Property("b")
	c, _ := pets.Property("c")
	assert.Equal(t, a.Type, b.Type)
	u := m.Node(a.Type)
	assert.Equal(t, Union, u.Metatype)
	assert.Equal(t, "Cat | Dog", u.Name)
	assert.Equal(t, []string{"Cat", "Dog"}, typeNames([]*TypeNode{m.Node(u.Members[0]), m.Node(u.Members[1])}))
	assert.Equal(t, "(Cat | Dog)[]", m.Node(c.Type).Name)
	assert.Equal(t, a.Type, m.ItemType(c.Type))
}

func TestForwardReferences(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Forward
types:
  Person:
    properties:
      home: Address
  Address:
    properties:
      city: string
      owner?: Person
`)
	person, address := lookup(t, m, "Person"), lookup(t, m, "Address")
	home, _ := person.Property("home")
	assert.Equal(t, address.Handle, home.Type)
	owner, _ := address.Property("owner")
	assert.Equal(t, person.Handle, owner.Type)
}

func TestGenericInstantiation(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Generics
types:
  Box:
    (typeVars): [T]
    properties:
      value: T
  Holder:
    properties:
      box:
        type: Box
        (typeArgs): [integer]
`)
	box := lookup(t, m, "Box")
	require.True(t, box.IsGeneric())
	assert.Equal(t, []string{"T"}, box.TypeParams)
	v, _ := box.Property("value")
	param := m.Node(v.Type)
	assert.Equal(t, OriginParam, param.Origin)
	assert.Equal(t, "Box.T", param.Name)

	inst := lookup(t, m, "Box<integer>")
	assert.Equal(t, OriginInstance, inst.Origin)
	assert.NotEqual(t, box.Handle, inst.Handle)
	require.NotNil(t, inst.Binding)
	assert.Equal(t, box.Handle, inst.Binding.Generic)
	assert.Equal(t, []Handle{Handle(Integer)}, inst.Binding.Args)
	iv, ok := inst.Property("value")
	require.True(t, ok)
	assert.Equal(t, Handle(Integer), iv.Type)

	holder := lookup(t, m, "Holder")
	hb, _ := holder.Property("box")
	assert.Equal(t, inst.Handle, hb.Type)

	// The generic declaration is left unexpanded.
	v, _ = box.Property("value")
	assert.Equal(t, param.Handle, v.Type)
	assert.Equal(t, []string{"Box", "Holder", "Box<integer>"}, typeNames(m.Types()))
}

func TestNestedGenericsAreSubstituted(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Nested
types:
  Animal:
    properties:
      name: string
  Page:
    (typeVars): [T]
    properties:
      items: T[]
      total: integer
  Response:
    (typeVars): [T]
    properties:
      data:
        type: Page
        (typeArgs): [T]
      meta:
        properties:
          first:
            (typeVar): T
      error?: string
  AnimalResponse:
    type: Response
    (typeArgs): [Animal]
`)
	animal := lookup(t, m, "Animal")
	resp := lookup(t, m, "Response<Animal>")
	ar := lookup(t, m, "AnimalResponse")
	assert.Equal(t, resp.Handle, ar.Supertype)
	assert.Equal(t, []string{"data", "meta", "error"}, propertyNames(ar.EffectiveProperties()))

	data, _ := resp.Property("data")
	page := m.Node(data.Type)
	assert.Equal(t, "Page<Animal>", page.Name)
	items, _ := page.Property("items")
	assert.Equal(t, "Animal[]", m.Node(items.Type).Name)
	assert.Equal(t, animal.Handle, m.ItemType(items.Type))

	meta, _ := resp.Property("meta")
	mn := m.Node(meta.Type)
	assert.Equal(t, "Response<Animal>.meta", mn.Name)
	assert.Equal(t, resp.Handle, mn.Owner)
	first, _ := mn.Property("first")
	assert.Equal(t, animal.Handle, first.Type)

	open := lookup(t, m, "Page<Response.T>")
	assert.True(t, m.IsOpen(open.Handle))
	assert.Equal(t,
		[]string{"Animal", "Page", "Response", "AnimalResponse", "Response<Animal>", "Page<Animal>"},
		typeNames(m.Types()))
}

func TestGenericArityMismatch(t *testing.T) {
	_, err := buildSource(t, `#%RAML 1.0
title: Arity
types:
  Box:
    (typeVars): [T]
    properties:
      value: T
  Holder:
    properties:
      box:
        type: Box
        (typeArgs): [integer, string]
`)
	var arity *GenericArityError
	require.True(t, errors.As(err, &arity), "got %v", err)
	assert.Equal(t, "Box", arity.Generic)
	assert.Equal(t, 1, arity.Want)
	assert.Equal(t, 2, arity.Got)
	assert.Equal(t, "Holder.box", arity.Referrer)
}

func TestGenericWithoutTypeArguments(t *testing.T) {
	cases := map[string]string{
		"Holder.b": `
  Holder:
    properties:
      b: Box
`,
		"Sub": `
  Sub:
    type: Box
`,
		"Boxes.items": `
  Boxes:
    type: array
    items: Box
`,
	}
	for referrer, decl := range cases {
		_, err := buildSource(t, `#%RAML 1.0
title: Bare
types:
  Box:
    (typeVars): [T]
    properties:
      value: T
`+strings.TrimPrefix(decl, "\n"))
		var arity *GenericArityError
		require.True(t, errors.As(err, &arity), "%s: got %v", referrer, err)
		assert.Equal(t, "Box", arity.Generic)
		assert.Equal(t, 1, arity.Want)
		assert.Equal(t, 0, arity.Got)
		assert.Equal(t, referrer, arity.Referrer)
	}
}

func TestGenericReferencesItselfInOwnScope(t *testing.T) {
	m, err := buildSource(t, `#%RAML 1.0
title: Tree
types:
  Tree:
    (typeVars): [T]
    properties:
      value: T
      children?: Tree[]
  Forest:
    type: Tree
    (typeArgs): [string]
`)
	require.NoError(t, err)
	tree, ok := m.Lookup("Tree")
	require.True(t, ok)
	children, ok := tree.Property("children")
	require.True(t, ok)
	assert.Equal(t, tree.Handle, m.Node(children.Type).Items)

	inst, ok := m.Lookup("Tree<string>")
	require.True(t, ok)
	children, ok = inst.Property("children")
	require.True(t, ok)
	assert.Equal(t, inst.Handle, m.Node(children.Type).Items)
}

func TestUndeclaredTypeVariable(t *testing.T) {
	_, err := buildSource(t, `#%RAML 1.0
title: Undeclared
types:
  Box:
    (typeVars): [T]
    properties:
      value:
        (typeVar): U
`)
	var unresolved *UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	assert.True(t, unresolved.Param)
	assert.Equal(t, "U", unresolved.Missing)
	assert.Equal(t, "Box.value", unresolved.Referrer)
}

func TestCyclicInheritance(t *testing.T) {
	_, err := buildSource(t, `#%RAML 1.0
title: Cycle
types:
  A:
    type: B
    properties:
      a: string
  B:
    type: A
    properties:
      b: string
`)
	var cyc *CyclicInheritanceError
	require.True(t, errors.As(err, &cyc), "got %v", err)
	assert.Equal(t, []string{"A", "B", "A"}, cyc.Cycle)
	assert.Equal(t, "cyclic inheritance: A -> B -> A", cyc.Error())
}

func TestSelfReferenceThroughPropertyIsNotACycle(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Tree
types:
  Node:
    properties:
      children: Node[]
      parent?: Node
`)
	n := lookup(t, m, "Node")
	parent, _ := n.Property("parent")
	assert.Equal(t, n.Handle, parent.Type)
}

func TestUnresolvedReference(t *testing.T) {
	_, err := buildSource(t, `#%RAML 1.0
title: Missing
types:
  Person:
    properties:
      pet: Animal
`)
	var unresolved *UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	assert.Equal(t, "Person.pet", unresolved.Referrer)
	assert.Equal(t, "Animal", unresolved.Missing)
	assert.False(t, unresolved.Param)
}

func TestDuplicateTypes(t *testing.T) {
	_, err := buildSource(t, `#%RAML 1.0
title: Builtin clash
types:
  string:
    properties:
      x: integer
`)
	var dup *DuplicateTypeError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.True(t, dup.Builtin)
	assert.Equal(t, "string", dup.Name)

	_, err = buildSource(t, `#%RAML 1.0
title: Declared twice
types:
  Person:
    properties:
      x: integer
schemas:
  Person:
    properties:
      y: integer
`)
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.False(t, dup.Builtin)
	assert.Equal(t, "Person", dup.Name)
}

func TestLibraryTypesAreNamespaced(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pets.raml", `#%RAML 1.0 Library
types:
  Pet:
    properties:
      name: string
      owner?: Owner
  Owner:
    properties:
      name: string
`)
	p := writeFile(t, dir, "api.raml", `#%RAML 1.0
title: Shelter
uses:
  pets: pets.raml
types:
  Shelter:
    properties:
      residents: pets.Pet[]
`)
	doc, err := raml.Load(context.Background(), p)
	require.NoError(t, err)
	m, err := Build(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"pets.Pet", "pets.Owner", "Shelter"}, typeNames(m.Types()))
	pet := lookup(t, m, "pets.Pet")
	assert.Equal(t, "pets", pet.Library)
	owner, _ := pet.Property("owner")
	assert.Equal(t, "pets.Owner", m.Node(owner.Type).Name)
	assert.Equal(t, []string{"pets"}, m.Libraries)
}

func TestEnumerations(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Enums
types:
  Color:
    type: string
    enum: [red, green]
  Shade:
    type: Color
  Level:
    type: string
    (enum):
      - name: LOW
        description: Barely noticeable
      - HIGH
`)
	color := lookup(t, m, "Color")
	assert.True(t, color.IsEnum())
	assert.Equal(t, []EnumValue{{Name: "red"}, {Name: "green"}}, color.Enum)
	assert.Equal(t, color.Enum, lookup(t, m, "Shade").Enum)
	assert.Equal(t, []EnumValue{{Name: "LOW", Description: "Barely noticeable"}, {Name: "HIGH"}}, lookup(t, m, "Level").Enum)
}

func TestDiscriminatorAndFacets(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Discriminated
types:
  Shape:
    discriminator: kind
    properties:
      kind: string
    minProperties: 1
  Circle:
    type: Shape
    discriminatorValue: circle
    properties:
      radius: number
  Unit:
    type: Circle
`)
	shape, circle, unit := lookup(t, m, "Shape"), lookup(t, m, "Circle"), lookup(t, m, "Unit")
	assert.Equal(t, "kind", m.Discriminator(unit.Handle))
	assert.Equal(t, "Shape", m.DiscriminatorValue(shape.Handle))
	assert.Equal(t, "circle", m.DiscriminatorValue(circle.Handle))
	assert.Equal(t, "Unit", m.DiscriminatorValue(unit.Handle))

	f := m.Facets(unit.Handle)
	require.NotNil(t, f.MinProperties)
	assert.Equal(t, 1, *f.MinProperties)
	assert.Empty(t, f.DiscriminatorValue)
}

func TestExamplesFallBackToSupertype(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Examples
types:
  Person:
    properties:
      firstname: string
    example:
      firstname: Anna
  Employee:
    type: Person
`)
	ex := m.Examples(lookup(t, m, "Employee").Handle)
	require.Len(t, ex, 1)
	s, ok := ex[0].Value.(raml.Structure)
	require.True(t, ok)
	v, _ := s.Lookup("firstname")
	assert.Equal(t, "Anna", v.(raml.Scalar).Value)
}

const petStore = `#%RAML 1.0
title: Pet Store
version: v1
baseUri: https://api.example.com/{version}
mediaType: application/json
annotationTypes:
  internal: boolean
types:
  Pet:
    properties:
      name: string
/pets:
  displayName: Pets
  post:
    body:
      application/json:
        type: Pet
  get:
    queryParameters:
      limit?: integer
    headers:
      X-Trace: string
    responses:
      200:
        description: All pets
        body:
          application/json:
            type: Pet[]
  /{id}:
    uriParameters:
      id: string
    get:
      responses:
        200:
          body:
            application/json:
              type: Pet
        404:
          description: Not found
`

func TestResourceTree(t *testing.T) {
	m := mustBuild(t, petStore)
	assert.Equal(t, "Pet Store", m.Title)
	assert.Equal(t, "v1", m.Version)
	assert.Equal(t, []string{"application/json"}, m.MediaType)

	require.Len(t, m.AnnotationTypes(), 1)
	at := m.AnnotationTypes()[0]
	assert.Equal(t, "internal", at.Name)
	assert.Equal(t, Boolean, m.Node(at.Type).Metatype)

	require.Len(t, m.Resources(), 1)
	pets := m.Resources()[0]
	assert.Equal(t, "/pets", pets.Path)
	assert.Equal(t, "Pets", pets.DisplayName)
	require.Len(t, pets.Methods, 2)
	assert.Equal(t, GET, pets.Methods[0].Method)
	assert.Equal(t, POST, pets.Methods[1].Method)

	get := pets.Methods[0]
	assert.Equal(t, "get /pets", get.ID(pets))
	require.Len(t, get.QueryParams, 1)
	assert.Equal(t, "limit", get.QueryParams[0].Name)
	assert.False(t, get.QueryParams[0].Required)
	assert.Equal(t, Handle(Integer), get.QueryParams[0].Type)
	require.Len(t, get.Headers, 1)
	assert.True(t, get.Headers[0].Required)
	require.Len(t, get.Responses, 1)
	assert.Equal(t, "200", get.Responses[0].Code)
	assert.Equal(t, "Pet[]", m.Node(get.Responses[0].Body[0].Type).Name)

	pet := lookup(t, m, "Pet")
	assert.Equal(t, pet.Handle, pets.Methods[1].Body[0].Type)

	require.Len(t, pets.Resources, 1)
	byID := pets.Resources[0]
	assert.Equal(t, "/pets/{id}", byID.Path)
	require.Len(t, byID.URIParams, 1)
	assert.True(t, byID.URIParams[0].Required)
	require.Len(t, byID.Methods[0].Responses, 2)
	assert.Equal(t, "404", byID.Methods[0].Responses[1].Code)
	assert.Empty(t, byID.Methods[0].Responses[1].Body)
}

func TestResourceFilters(t *testing.T) {
	m := mustBuild(t, petStore, WithMethods([]HttpMethod{POST}))
	require.Len(t, m.Resources(), 1)
	assert.Len(t, m.Resources()[0].Methods, 1)
	assert.Empty(t, m.Resources()[0].Resources)

	m = mustBuild(t, petStore, WithPathPatterns([]string{`\{id\}$`}))
	require.Len(t, m.Resources(), 1)
	assert.Empty(t, m.Resources()[0].Methods)
	require.Len(t, m.Resources()[0].Resources, 1)
	assert.Len(t, m.Resources()[0].Resources[0].Methods, 1)

	_, err := buildSource(t, petStore, WithPathPatterns([]string{"("}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid path pattern")
}

func TestBuildHonoursCancellation(t *testing.T) {
	p := writeFile(t, t.TempDir(), "api.raml", petStore)
	doc, err := raml.Load(context.Background(), p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Build(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingVisitor struct {
	BaseVisitor
	events []string
}

func (v *recordingVisitor) VisitType(n *TypeNode) error {
	v.events = append(v.events, "type "+n.Name)
	return nil
}

func (v *recordingVisitor) StartObject(n *TypeNode) error {
	v.events = append(v.events, "start "+n.Name)
	return nil
}

func (v *recordingVisitor) VisitProperty(_ *TypeNode, p Property) error {
	v.events = append(v.events, "prop "+p.Name)
	return nil
}

func (v *recordingVisitor) EndObject(n *TypeNode) error {
	v.events = append(v.events, "end "+n.Name)
	return nil
}

func (v *recordingVisitor) VisitMethod(r *Resource, m *Method) error {
	v.events = append(v.events, m.ID(r))
	return nil
}

func (v *recordingVisitor) VisitParameter(_ *Resource, _ *Method, kind ParamKind, p Parameter) error {
	v.events = append(v.events, kind.String()+" "+p.Name)
	return nil
}

func TestWalkVisitsSupertypesFirst(t *testing.T) {
	m := mustBuild(t, `#%RAML 1.0
title: Walk
types:
  B:
    type: A
    properties:
      y: integer
  A:
    properties:
      x: string
  Code:
    type: string
/items/{id}:
  get:
    queryParameters:
      q: string
`)
	v := &recordingVisitor{}
	require.NoError(t, Walk(m, v))
	assert.Equal(t, []string{
		"start A", "prop x", "end A",
		"start B", "prop y", "end B",
		"type Code",
		"get /items/{id}",
		"query q",
	}, v.events)
}

func TestOverlay(t *testing.T) {
	o := NewOverlay[string]()
	_, ok := o.Get(3)
	assert.False(t, ok)

	calls := 0
	compute := func() string { calls++; return "Pet" }
	assert.Equal(t, "Pet", o.GetOrCompute(3, compute))
	assert.Equal(t, "Pet", o.GetOrCompute(3, compute))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, o.Len())
}
