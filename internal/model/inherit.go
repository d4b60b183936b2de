package model

// flatten computes the effective properties of every object node.
func (r *resolver) flatten() {
	done := make([]bool, len(r.m.nodes))
	var visit func(h Handle) []Property
	visit = func(h Handle) []Property {
		n := r.m.nodes[h]
		if done[h] {
			return n.effective
		}
		done[h] = true
		if n.Metatype != Object {
			return nil
		}
		var eff []Property
		if n.Supertype != NoHandle {
			eff = append(eff, visit(n.Supertype)...)
		}
		n.effective = mergeProperties(eff, n.Properties)
		return n.effective
	}
	for h := range r.m.nodes {
		visit(Handle(h))
	}
}

// mergeProperties appends own properties to inherited ones. An own property
// with the name of an inherited one replaces it in place.
func mergeProperties(inherited, own []Property) []Property {
	out := make([]Property, len(inherited), len(inherited)+len(own))
	copy(out, inherited)
	for _, p := range own {
		replaced := false
		for i := range out {
			if out[i].Name == p.Name && out[i].Pattern == p.Pattern {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}
