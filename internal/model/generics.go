package model

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/ramlgen/internal/raml"
)

// instantiateRef resolves "type: Generic" combined with "(typeArgs): [...]".
func (r *resolver) instantiateRef(referrer string, base raml.NameRef, argsValue raml.ExampleValue, scope Handle) (Handle, error) {
	gen, err := r.lookup(referrer, base.Name, scope)
	if err != nil {
		return NoHandle, err
	}
	argExprs := raml.Strings(argsValue)
	g := r.m.nodes[gen]
	if len(g.TypeParams) != len(argExprs) {
		return NoHandle, &GenericArityError{Referrer: referrer, Generic: g.Name, Want: len(g.TypeParams), Got: len(argExprs)}
	}
	args := make([]Handle, len(argExprs))
	for i, src := range argExprs {
		expr, err := raml.ParseTypeExpr(src)
		if err != nil {
			return NoHandle, errors.Wrapf(err, "%s: type argument %d", referrer, i+1)
		}
		if args[i], err = r.expr(referrer, expr, scope); err != nil {
			return NoHandle, err
		}
	}
	return r.instantiate(gen, args)
}

// instantiate returns the node for gen applied to args. Instances are
// memoized by generic and arguments; the generic applied to its own
// parameters is the generic itself. Properties are filled later by fill,
// once every declaration body is resolved.
func (r *resolver) instantiate(gen Handle, args []Handle) (Handle, error) {
	g := r.m.nodes[gen]
	if handlesEqual(args, g.ParamNodes) {
		return gen, nil
	}
	key := strconv.Itoa(int(gen)) + "<" + handleKey(args) + ">"
	if h, ok := r.instances[key]; ok {
		return h, nil
	}
	if err := r.ensureHeader(gen); err != nil {
		return NoHandle, err
	}
	if len(r.m.instances) >= maxInstances {
		return NoHandle, errors.Newf("expansion of generic type %q does not terminate (more than %d instances)", g.Name, maxInstances)
	}

	names := make([]string, len(args))
	for i, a := range args {
		names[i] = r.m.nodes[a].Name
	}
	n := &TypeNode{
		Name:        g.Name + "<" + strings.Join(names, ", ") + ">",
		Origin:      OriginInstance,
		Metatype:    g.Metatype,
		Library:     g.Library,
		Supertype:   NoHandle,
		Items:       NoHandle,
		Owner:       NoHandle,
		Binding:     &GenericBinding{Generic: gen, Args: append([]Handle(nil), args...)},
		Facets:      g.Facets,
		Description: g.Description,
		DisplayName: g.DisplayName,
		Annotations: g.Annotations,
	}
	h := r.m.add(n)
	r.header[h] = resolved
	r.instances[key] = h
	r.m.names[n.Name] = h
	r.m.instances = append(r.m.instances, h)
	r.queue = append(r.queue, h)
	return h, nil
}

// maxInstances bounds expansion of generics that instantiate themselves
// with ever growing arguments.
const maxInstances = 4096

// substitution maps the parameter nodes of one generic to the arguments of
// one of its instances.
type substitution struct {
	gen  Handle
	inst Handle
	args map[Handle]Handle
}

func (r *resolver) fill(h Handle) error {
	n := r.m.nodes[h]
	g := r.m.nodes[n.Binding.Generic]
	if err := r.ensureBody(n.Binding.Generic); err != nil {
		return err
	}
	s := &substitution{gen: n.Binding.Generic, inst: h, args: map[Handle]Handle{}}
	for i, p := range g.ParamNodes {
		s.args[p] = n.Binding.Args[i]
	}

	var err error
	if n.Supertype, err = r.subst(s, g.Supertype); err != nil {
		return err
	}
	if n.Items, err = r.subst(s, g.Items); err != nil {
		return err
	}
	for _, m := range g.Members {
		sm, err := r.subst(s, m)
		if err != nil {
			return err
		}
		n.Members = append(n.Members, sm)
	}
	if n.Properties, err = r.substProperties(s, g.Properties, h); err != nil {
		return err
	}
	n.Enum = g.Enum
	return nil
}

func (r *resolver) substProperties(s *substitution, props []Property, declaredBy Handle) ([]Property, error) {
	if len(props) == 0 {
		return nil, nil
	}
	out := make([]Property, len(props))
	for i, p := range props {
		t, err := r.subst(s, p.Type)
		if err != nil {
			return nil, err
		}
		p.Type = t
		p.DeclaredBy = declaredBy
		out[i] = p
	}
	return out, nil
}

// subst applies a substitution structurally. Nodes that do not mention a
// substituted parameter are returned unchanged.
func (r *resolver) subst(s *substitution, h Handle) (Handle, error) {
	if h == NoHandle {
		return h, nil
	}
	if a, ok := s.args[h]; ok {
		return a, nil
	}
	if h == s.gen {
		return s.inst, nil
	}
	n := r.m.nodes[h]
	switch n.Origin {
	case OriginInstance:
		args := make([]Handle, len(n.Binding.Args))
		changed := false
		for i, a := range n.Binding.Args {
			sa, err := r.subst(s, a)
			if err != nil {
				return NoHandle, err
			}
			args[i] = sa
			changed = changed || sa != a
		}
		if !changed {
			return h, nil
		}
		return r.instantiate(n.Binding.Generic, args)
	case OriginSynthetic:
		if _, isShorthand := r.decls[h]; !isShorthand {
			switch n.Metatype {
			case Array:
				elem, err := r.subst(s, n.Items)
				if err != nil || elem == n.Items {
					return h, err
				}
				return r.arrayOf(elem), nil
			case Union:
				members := make([]Handle, len(n.Members))
				changed := false
				for i, m := range n.Members {
					sm, err := r.subst(s, m)
					if err != nil {
						return NoHandle, err
					}
					members[i] = sm
					changed = changed || sm != m
				}
				if !changed {
					return h, nil
				}
				return r.unionOf(members), nil
			}
			return h, nil
		}
		return r.substInline(s, h)
	default:
		return h, nil
	}
}

// substInline clones an inline node of the generic for the instance when
// the inline node mentions a parameter. Clone names replace the generic's
// name prefix with the instance name.
func (r *resolver) substInline(s *substitution, h Handle) (Handle, error) {
	n := r.m.nodes[h]
	gname, iname := r.m.nodes[s.gen].Name, r.m.nodes[s.inst].Name
	name := iname + strings.TrimPrefix(n.Name, gname)
	if c, ok := r.clones[name]; ok {
		return c, nil
	}

	super, err := r.subst(s, n.Supertype)
	if err != nil {
		return NoHandle, err
	}
	items, err := r.subst(s, n.Items)
	if err != nil {
		return NoHandle, err
	}
	changed := super != n.Supertype || items != n.Items
	members := make([]Handle, len(n.Members))
	for i, m := range n.Members {
		if members[i], err = r.subst(s, m); err != nil {
			return NoHandle, err
		}
		changed = changed || members[i] != m
	}
	props, err := r.substProperties(s, n.Properties, NoHandle)
	if err != nil {
		return NoHandle, err
	}
	for i := range props {
		changed = changed || props[i].Type != n.Properties[i].Type
	}
	if !changed {
		r.clones[name] = h
		return h, nil
	}
	clone := *n
	clone.Name = name
	clone.Owner = s.inst
	clone.Supertype, clone.Items, clone.Members, clone.Properties = super, items, members, props
	clone.effective = nil
	c := r.m.add(&clone)
	for i := range clone.Properties {
		clone.Properties[i].DeclaredBy = c
	}
	r.clones[name] = c
	r.header[c], r.body[c] = resolved, resolved
	return c, nil
}

func handleKey(hs []Handle) string {
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = strconv.Itoa(int(h))
	}
	return strings.Join(parts, ",")
}

func handlesEqual(a, b []Handle) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
