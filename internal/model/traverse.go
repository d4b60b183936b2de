package model

// ParamKind tells where a parameter is sent.
type ParamKind int

const (
	URIParam ParamKind = iota
	QueryParam
	HeaderParam
)

func (k ParamKind) String() string {
	switch k {
	case URIParam:
		return "uri"
	case QueryParam:
		return "query"
	default:
		return "header"
	}
}

// Visitor receives the parts of a model in a fixed order from Walk.
// Returning an error stops the walk.
type Visitor interface {
	// VisitType is called for every named type that is not an object.
	VisitType(n *TypeNode) error
	StartObject(n *TypeNode) error
	// VisitProperty is called for the properties an object declares itself;
	// inherited ones are reported on the supertype.
	VisitProperty(owner *TypeNode, p Property) error
	EndObject(n *TypeNode) error

	StartResource(r *Resource) error
	VisitMethod(r *Resource, m *Method) error
	// VisitParameter reports URI parameters with a nil method.
	VisitParameter(r *Resource, m *Method, kind ParamKind, p Parameter) error
	EndResource(r *Resource) error
}

// BaseVisitor implements every Visitor method as a no-op, for embedding.
type BaseVisitor struct{}

func (BaseVisitor) VisitType(*TypeNode) error { return nil }
func (BaseVisitor) StartObject(*TypeNode) error { return nil }
func (BaseVisitor) VisitProperty(*TypeNode, Property) error { return nil }
func (BaseVisitor) EndObject(*TypeNode) error { return nil }
func (BaseVisitor) StartResource(*Resource) error { return nil }
func (BaseVisitor) VisitMethod(*Resource, *Method) error { return nil }
func (BaseVisitor) VisitParameter(*Resource, *Method, ParamKind, Parameter) error { return nil }
func (BaseVisitor) EndResource(*Resource) error { return nil }

// Walk visits the types of m, supertypes before the types derived from them
// and otherwise in Types order, then the resource tree depth-first.
func Walk(m *ApiModel, v Visitor) error {
	listed := map[Handle]bool{}
	for _, n := range m.Types() {
		listed[n.Handle] = true
	}
	done := map[Handle]bool{}
	var visit func(n *TypeNode) error
	visit = func(n *TypeNode) error {
		if done[n.Handle] {
			return nil
		}
		done[n.Handle] = true
		if s := n.Supertype; s != NoHandle && listed[s] {
			if err := visit(m.nodes[s]); err != nil {
				return err
			}
		}
		if n.Metatype != Object {
			return v.VisitType(n)
		}
		if err := v.StartObject(n); err != nil {
			return err
		}
		for _, p := range n.Properties {
			if err := v.VisitProperty(n, p); err != nil {
				return err
			}
		}
		return v.EndObject(n)
	}
	for _, n := range m.Types() {
		if err := visit(n); err != nil {
			return err
		}
	}
	for _, r := range m.resources {
		if err := walkResource(r, v); err != nil {
			return err
		}
	}
	return nil
}

func walkResource(r *Resource, v Visitor) error {
	if err := v.StartResource(r); err != nil {
		return err
	}
	for _, p := range r.URIParams {
		if err := v.VisitParameter(r, nil, URIParam, p); err != nil {
			return err
		}
	}
	for i := range r.Methods {
		m := &r.Methods[i]
		if err := v.VisitMethod(r, m); err != nil {
			return err
		}
		for _, p := range m.QueryParams {
			if err := v.VisitParameter(r, m, QueryParam, p); err != nil {
				return err
			}
		}
		for _, p := range m.Headers {
			if err := v.VisitParameter(r, m, HeaderParam, p); err != nil {
				return err
			}
		}
	}
	for _, c := range r.Resources {
		if err := walkResource(c, v); err != nil {
			return err
		}
	}
	return v.EndResource(r)
}
