package model

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/ramlgen/internal/raml"
)

type resolveState uint8

const (
	unresolved resolveState = iota
	resolving
	resolved
)

// resolver turns type declarations into arena nodes. Resolution is split
// in a header (supertype and metatype) and a body (properties, items,
// members): only headers recurse along supertypes, so only they can form a
// cycle.
type resolver struct {
	m   *ApiModel
	log *zap.Logger

	decls  map[Handle]*raml.TypeDecl
	scope  map[Handle]Handle
	header map[Handle]resolveState
	body   map[Handle]resolveState
	stack  []Handle

	arrays    map[Handle]Handle
	unions    map[string]Handle
	instances map[string]Handle
	clones    map[string]Handle
	queue     []Handle
}

func newResolver(m *ApiModel, log *zap.Logger) *resolver {
	r := &resolver{
		m:         m,
		log:       log,
		decls:     map[Handle]*raml.TypeDecl{},
		scope:     map[Handle]Handle{},
		header:    map[Handle]resolveState{},
		body:      map[Handle]resolveState{},
		arrays:    map[Handle]Handle{},
		unions:    map[string]Handle{},
		instances: map[string]Handle{},
		clones:    map[string]Handle{},
	}
	for _, mt := range Metatypes() {
		h := m.add(&TypeNode{
			Name:      mt.Literal(),
			Origin:    OriginBuiltin,
			Metatype:  mt,
			Supertype: NoHandle,
			Items:     NoHandle,
			Owner:     NoHandle,
		})
		r.header[h], r.body[h] = resolved, resolved
		m.names[mt.Literal()] = h
	}
	return r
}

// register creates one placeholder node per declaration, together with the
// parameter nodes of generic declarations.
func (r *resolver) register(decls []*raml.TypeDecl) error {
	for _, decl := range decls {
		if IsBuiltin(decl.Name) {
			return &DuplicateTypeError{Name: decl.Name, Builtin: true}
		}
		if _, exists := r.m.names[decl.Name]; exists {
			return &DuplicateTypeError{Name: decl.Name}
		}
		h := r.newDeclNode(decl.Name, OriginDeclared, decl, NoHandle)
		r.m.names[decl.Name] = h
		r.m.declared = append(r.m.declared, h)

		if vars, ok := decl.Annotation("typeVars"); ok {
			n := r.m.nodes[h]
			for _, tv := range raml.Strings(vars) {
				p := r.m.add(&TypeNode{
					Name:      decl.Name + "." + tv,
					Origin:    OriginParam,
					Metatype:  Any,
					Param:     tv,
					Owner:     h,
					Supertype: NoHandle,
					Items:     NoHandle,
				})
				r.header[p], r.body[p] = resolved, resolved
				n.TypeParams = append(n.TypeParams, tv)
				n.ParamNodes = append(n.ParamNodes, p)
			}
			r.scope[h] = h
		}
	}
	return nil
}

func (r *resolver) newDeclNode(name string, origin Origin, decl *raml.TypeDecl, owner Handle) Handle {
	n := &TypeNode{
		Name:        name,
		Origin:      origin,
		Library:     decl.Library,
		Supertype:   NoHandle,
		Items:       NoHandle,
		Owner:       owner,
		Facets:      decl.Facets,
		Description: decl.Description,
		DisplayName: decl.DisplayName,
		Default:     decl.Default,
		Examples:    decl.Examples,
		Annotations: decl.Annotations,
	}
	h := r.m.add(n)
	r.decls[h] = decl
	r.scope[h] = NoHandle
	return h
}

// inline resolves an anonymous declaration into its own node.
func (r *resolver) inline(name string, decl *raml.TypeDecl, scope, owner Handle) (Handle, error) {
	h := r.newDeclNode(name, OriginSynthetic, decl, owner)
	r.scope[h] = scope
	if err := r.ensureHeader(h); err != nil {
		return NoHandle, err
	}
	if err := r.ensureBody(h); err != nil {
		return NoHandle, err
	}
	return h, nil
}

func (r *resolver) ensureHeader(h Handle) error {
	switch r.header[h] {
	case resolved:
		return nil
	case resolving:
		cycle := []string{}
		for i := len(r.stack) - 1; i >= 0; i-- {
			if r.stack[i] == h {
				for _, s := range r.stack[i:] {
					cycle = append(cycle, r.m.nodes[s].Name)
				}
				break
			}
		}
		cycle = append(cycle, r.m.nodes[h].Name)
		return &CyclicInheritanceError{Cycle: cycle}
	}
	r.header[h] = resolving
	r.stack = append(r.stack, h)
	err := r.resolveHeader(h)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return err
	}
	r.header[h] = resolved
	return nil
}

func (r *resolver) resolveHeader(h Handle) error {
	n := r.m.nodes[h]
	decl := r.decls[h]
	switch base := decl.Base.(type) {
	case nil:
		switch {
		case len(decl.Properties) > 0:
			n.Metatype = Object
		case decl.Items != nil:
			n.Metatype = Array
		default:
			n.Metatype = String
		}
	case raml.ArrayExpr:
		n.Metatype = Array
	case raml.UnionExpr:
		n.Metatype = Union
	case raml.NameRef:
		var super Handle
		var err error
		if args, ok := decl.Annotation("typeArgs"); ok {
			super, err = r.instantiateRef(n.Name, base, args, r.scope[h])
		} else {
			super, err = r.named(n.Name, base.Name, r.scope[h])
		}
		if err != nil {
			return err
		}
		sn := r.m.nodes[super]
		if sn.Origin == OriginBuiltin {
			n.Metatype = sn.Metatype
			return nil
		}
		if err := r.ensureHeader(super); err != nil {
			return err
		}
		n.Supertype = super
		n.Metatype = sn.Metatype
	}
	return nil
}

func (r *resolver) ensureBody(h Handle) error {
	if r.body[h] != unresolved {
		return nil
	}
	r.body[h] = resolving
	resolve := r.resolveBody
	if r.m.nodes[h].Binding != nil {
		resolve = r.fill
	}
	if err := resolve(h); err != nil {
		return err
	}
	r.body[h] = resolved
	return nil
}

func (r *resolver) resolveBody(h Handle) error {
	n := r.m.nodes[h]
	decl := r.decls[h]
	scope := r.scope[h]

	if n.Supertype != NoHandle {
		if err := r.ensureBody(n.Supertype); err != nil {
			return err
		}
	}

	switch n.Metatype {
	case Object:
		for _, pd := range decl.Properties {
			referrer := n.Name + "." + pd.Name
			t, err := r.typeOf(referrer, pd.Type, scope, h)
			if err != nil {
				return err
			}
			n.Properties = append(n.Properties, Property{
				Name:        pd.Name,
				Type:        t,
				Required:    pd.Required,
				Pattern:     pd.Pattern,
				DeclaredBy:  h,
				Description: pd.Type.Description,
				DisplayName: pd.Type.DisplayName,
				Default:     pd.Type.Default,
				Examples:    pd.Type.Examples,
				Annotations: pd.Type.Annotations,
			})
		}
	case Array:
		switch {
		case decl.Items != nil:
			t, err := r.typeOf(n.Name+".items", decl.Items, scope, h)
			if err != nil {
				return err
			}
			n.Items = t
		case isArrayExpr(decl.Base):
			t, err := r.expr(n.Name, decl.Base.(raml.ArrayExpr).Elem, scope)
			if err != nil {
				return err
			}
			n.Items = t
		case n.Supertype != NoHandle:
			n.Items = r.m.nodes[n.Supertype].Items
		default:
			n.Items = Handle(Any)
		}
	case Union:
		if u, ok := decl.Base.(raml.UnionExpr); ok {
			for _, me := range u.Members {
				t, err := r.expr(n.Name, me, scope)
				if err != nil {
					return err
				}
				n.Members = append(n.Members, t)
			}
		} else if n.Supertype != NoHandle {
			n.Members = append([]Handle(nil), r.m.nodes[n.Supertype].Members...)
		}
	}

	n.Enum = enumValues(decl)
	if len(n.Enum) == 0 && n.Supertype != NoHandle {
		n.Enum = r.m.nodes[n.Supertype].Enum
	}
	return nil
}

func isArrayExpr(e raml.TypeExpr) bool {
	_, ok := e.(raml.ArrayExpr)
	return ok
}

// enumValues reads the enum facet, or the "(enum)" annotation which also
// carries descriptions: [{name: A, description: ...}].
func enumValues(decl *raml.TypeDecl) []EnumValue {
	if v, ok := decl.Annotation("enum"); ok {
		if seq, ok := v.(raml.Sequence); ok {
			out := make([]EnumValue, 0, len(seq.Items))
			for _, item := range seq.Items {
				switch it := item.(type) {
				case raml.Structure:
					ev := EnumValue{}
					if name, ok := it.Lookup("name"); ok {
						ev.Name = scalarValue(name)
					}
					if desc, ok := it.Lookup("description"); ok {
						ev.Description = scalarValue(desc)
					}
					out = append(out, ev)
				case raml.Scalar:
					out = append(out, EnumValue{Name: it.Value})
				}
			}
			return out
		}
	}
	if len(decl.Enum) == 0 {
		return nil
	}
	out := make([]EnumValue, len(decl.Enum))
	for i, e := range decl.Enum {
		out[i] = EnumValue{Name: e}
	}
	return out
}

func scalarValue(v raml.ExampleValue) string {
	if s, ok := v.(raml.Scalar); ok {
		return s.Value
	}
	return ""
}

// typeOf resolves the declaration of a property, item type, parameter or
// body. Declarations that only name a type resolve to that type; anything
// else gets its own inline node named after the referrer.
func (r *resolver) typeOf(referrer string, decl *raml.TypeDecl, scope, owner Handle) (Handle, error) {
	if tv, ok := decl.Annotation("typeVar"); ok {
		name := scalarValue(tv)
		if p, found := r.param(scope, name); found {
			return p, nil
		}
		return NoHandle, &UnresolvedReferenceError{Referrer: referrer, Missing: name, Param: true}
	}
	if !decl.IsReference() {
		return r.inline(referrer, decl, scope, owner)
	}
	switch base := decl.Base.(type) {
	case nil:
		return Handle(String), nil
	case raml.NameRef:
		if args, ok := decl.Annotation("typeArgs"); ok {
			return r.instantiateRef(referrer, base, args, scope)
		}
	}
	return r.expr(referrer, decl.Base, scope)
}

// expr resolves a type expression to a node.
func (r *resolver) expr(referrer string, e raml.TypeExpr, scope Handle) (Handle, error) {
	switch ex := e.(type) {
	case raml.NameRef:
		return r.named(referrer, ex.Name, scope)
	case raml.ArrayExpr:
		elem, err := r.expr(referrer, ex.Elem, scope)
		if err != nil {
			return NoHandle, err
		}
		return r.arrayOf(elem), nil
	case raml.UnionExpr:
		members := make([]Handle, 0, len(ex.Members))
		for _, me := range ex.Members {
			h, err := r.expr(referrer, me, scope)
			if err != nil {
				return NoHandle, err
			}
			members = append(members, h)
		}
		return r.unionOf(members), nil
	default:
		return NoHandle, errors.Newf("%s: unsupported type expression %T", referrer, e)
	}
}

// lookup resolves a name: type parameters in scope shadow declared types.
func (r *resolver) lookup(referrer, name string, scope Handle) (Handle, error) {
	if p, ok := r.param(scope, name); ok {
		return p, nil
	}
	if mt, ok := LookupMetatype(name); ok {
		return Handle(mt), nil
	}
	if h, ok := r.m.names[name]; ok && r.m.nodes[h].Origin == OriginDeclared {
		return h, nil
	}
	return NoHandle, &UnresolvedReferenceError{Referrer: referrer, Missing: name}
}

// named resolves a reference given without type arguments. A generic
// declaration only stands for itself inside its own scope, where it is the
// generic applied to its own parameters.
func (r *resolver) named(referrer, name string, scope Handle) (Handle, error) {
	h, err := r.lookup(referrer, name, scope)
	if err != nil {
		return NoHandle, err
	}
	if g := r.m.nodes[h]; g.IsGeneric() && h != scope {
		return NoHandle, &GenericArityError{Referrer: referrer, Generic: g.Name, Want: len(g.TypeParams), Got: 0}
	}
	return h, nil
}

func (r *resolver) param(scope Handle, name string) (Handle, bool) {
	if scope == NoHandle {
		return NoHandle, false
	}
	g := r.m.nodes[scope]
	for i, tp := range g.TypeParams {
		if tp == name {
			return g.ParamNodes[i], true
		}
	}
	return NoHandle, false
}

func (r *resolver) arrayOf(elem Handle) Handle {
	if h, ok := r.arrays[elem]; ok {
		return h
	}
	en := r.m.nodes[elem]
	name := en.Name + "[]"
	if en.Metatype == Union && en.Origin == OriginSynthetic {
		name = "(" + en.Name + ")[]"
	}
	h := r.m.add(&TypeNode{
		Name:      name,
		Origin:    OriginSynthetic,
		Metatype:  Array,
		Items:     elem,
		Supertype: NoHandle,
		Owner:     NoHandle,
	})
	r.header[h], r.body[h] = resolved, resolved
	r.arrays[elem] = h
	return h
}

func (r *resolver) unionOf(members []Handle) Handle {
	key := handleKey(members)
	if h, ok := r.unions[key]; ok {
		return h
	}
	name := ""
	for i, m := range members {
		if i > 0 {
			name += " | "
		}
		name += r.m.nodes[m].Name
	}
	h := r.m.add(&TypeNode{
		Name:      name,
		Origin:    OriginSynthetic,
		Metatype:  Union,
		Members:   members,
		Supertype: NoHandle,
		Items:     NoHandle,
		Owner:     NoHandle,
	})
	r.header[h], r.body[h] = resolved, resolved
	r.unions[key] = h
	return h
}

// resolveAll runs every pass over the registered declarations.
func (r *resolver) resolveAll() error {
	for _, h := range r.m.declared {
		if err := r.ensureHeader(h); err != nil {
			return err
		}
	}
	for _, h := range r.m.declared {
		if err := r.ensureBody(h); err != nil {
			return err
		}
	}
	return nil
}

// finish fills pending generic instances and flattens inherited properties.
func (r *resolver) finish() error {
	for len(r.queue) > 0 {
		h := r.queue[0]
		r.queue = r.queue[1:]
		if err := r.ensureBody(h); err != nil {
			return err
		}
	}
	r.flatten()
	r.log.Debug("resolved types",
		zap.Int("nodes", len(r.m.nodes)),
		zap.Int("declared", len(r.m.declared)),
		zap.Int("instances", len(r.m.instances)))
	return nil
}
