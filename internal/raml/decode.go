package raml

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var methodNames = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true,
	"patch": true, "head": true, "options": true, "trace": true,
}

var yamlErrLineRe = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// libScope is the naming context of a library being decoded.
type libScope struct {
	alias string
	local map[string]bool
}

type decoder struct {
	src      *source
	location string
	diags    []Diagnostic
	doc      *Document
	// loaded maps library locations to their alias so a library used twice
	// is decoded once.
	loaded map[string]string
	scope  *libScope
	log    *zap.Logger
}

func newDecoder(src *source, location string) *decoder {
	return &decoder{
		src:      src,
		location: location,
		doc:      &Document{Location: location},
		loaded:   map[string]string{},
		log:      src.settings.Logger,
	}
}

func (d *decoder) errorf(p string, n *yaml.Node, format string, args ...any) {
	diag := Diagnostic{Path: p, Message: fmt.Sprintf(format, args...)}
	if n != nil {
		diag.Line, diag.Column = n.Line, n.Column
	}
	d.diags = append(d.diags, diag)
}

// parseYAML decodes raw bytes into the root mapping node and expands includes.
func (d *decoder) parseYAML(raw []byte, location string) *yaml.Node {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		diag := Diagnostic{Path: location, Message: err.Error()}
		if m := yamlErrLineRe.FindStringSubmatch(err.Error()); m != nil {
			diag.Line, _ = strconv.Atoi(m[1])
			diag.Message = m[2]
		}
		d.diags = append(d.diags, diag)
		return nil
	}
	if len(root.Content) == 0 {
		d.errorf("", nil, "document %s is empty", location)
		return nil
	}
	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		d.errorf("", node, "document %s must be a mapping", location)
		return nil
	}
	d.expandIncludes(node, location, "", 0)
	return node
}

func (d *decoder) decodeAPI(raw []byte) *Document {
	header := headerOf(raw)
	switch {
	case header == "":
		d.errorf("", nil, "missing %q header", apiHeader)
		return nil
	case header == libraryHeader:
		d.errorf("", nil, "expected an API definition, found a library")
		return nil
	case header != apiHeader:
		d.errorf("", nil, "unsupported header %q (expected %q)", header, apiHeader)
		return nil
	}
	root := d.parseYAML(raw, d.location)
	if root == nil {
		return nil
	}

	if uses := mappingValue(root, "uses"); uses != nil {
		d.decodeUses(uses, d.location, "uses", 0)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch k := key.Value; {
		case k == "title":
			d.doc.Title = d.scalar("title", val)
		case k == "version":
			d.doc.Version = d.scalar("version", val)
		case k == "baseUri":
			d.doc.BaseURI = d.scalar("baseUri", val)
		case k == "description":
			d.doc.Description = d.scalar("description", val)
		case k == "mediaType":
			d.doc.MediaType = d.stringList("mediaType", val)
		case k == "types" || k == "schemas":
			d.doc.Types = append(d.doc.Types, d.decodeTypes(k, val)...)
		case k == "annotationTypes":
			d.doc.AnnotationTypes = append(d.doc.AnnotationTypes, d.decodeTypes(k, val)...)
		case k == "uses":
		case isAnnotationKey(k):
			d.doc.Annotations = append(d.doc.Annotations, d.annotation(k, val))
		case strings.HasPrefix(k, "/"):
			d.doc.Resources = append(d.doc.Resources, d.decodeResource(k, val, k))
		default:
			d.log.Debug("ignoring top-level key", zap.String("key", k))
		}
	}
	if strings.TrimSpace(d.doc.Title) == "" {
		d.errorf("title", root, "missing required title")
	}
	return d.doc
}

func (d *decoder) decodeUses(uses *yaml.Node, base, p string, depth int) {
	if uses.Kind != yaml.MappingNode {
		d.errorf(p, uses, "uses must be a mapping of alias to library path")
		return
	}
	if depth > d.src.settings.MaxIncludeDepth {
		d.errorf(p, uses, "library nesting exceeds %d levels", d.src.settings.MaxIncludeDepth)
		return
	}
	for i := 0; i+1 < len(uses.Content); i += 2 {
		alias, ref := uses.Content[i].Value, uses.Content[i+1]
		lp := p + "/" + alias
		if ref.Kind != yaml.ScalarNode {
			d.errorf(lp, ref, "library reference must be a path")
			continue
		}
		loc, err := d.src.resolve(base, ref.Value)
		if err != nil {
			d.errorf(lp, ref, "resolve library %q: %v", ref.Value, err)
			continue
		}
		if prev, ok := d.loaded[loc]; ok {
			if prev != alias {
				d.errorf(lp, ref, "library %s already used as %q", ref.Value, prev)
			}
			continue
		}
		d.loaded[loc] = alias
		d.decodeLibrary(alias, loc, lp, depth+1)
	}
}

func (d *decoder) decodeLibrary(alias, location, p string, depth int) {
	raw, err := d.src.read(location)
	if err != nil {
		d.errorf(p, nil, "%v", err)
		return
	}
	if h := headerOf(raw); h != libraryHeader {
		d.errorf(p, nil, "%s is not a library (header %q, expected %q)", location, h, libraryHeader)
		return
	}
	root := d.parseYAML(raw, location)
	if root == nil {
		return
	}
	if uses := mappingValue(root, "uses"); uses != nil {
		d.decodeUses(uses, location, p+"/uses", depth)
	}

	scope := &libScope{alias: alias, local: map[string]bool{}}
	for _, section := range []string{"types", "schemas", "annotationTypes"} {
		if m := mappingValue(root, section); m != nil && m.Kind == yaml.MappingNode {
			for i := 0; i < len(m.Content); i += 2 {
				scope.local[m.Content[i].Value] = true
			}
		}
	}

	saved := d.scope
	d.scope = scope
	defer func() { d.scope = saved }()

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "types", "schemas":
			d.doc.Types = append(d.doc.Types, d.decodeTypes(p+"/"+key, val)...)
		case "annotationTypes":
			d.doc.AnnotationTypes = append(d.doc.AnnotationTypes, d.decodeTypes(p+"/"+key, val)...)
		}
	}
	d.doc.Libraries = append(d.doc.Libraries, alias)
	d.log.Debug("loaded library", zap.String("alias", alias), zap.String("location", location))
}

func (d *decoder) decodeTypes(p string, node *yaml.Node) []*TypeDecl {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		d.errorf(p, node, "expected a mapping of type declarations")
		return nil
	}
	var out []*TypeDecl
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		decl := d.decodeTypeDecl(p+"/"+name, node.Content[i+1])
		if decl == nil {
			continue
		}
		decl.Name = d.qualifiedName(name)
		if d.scope != nil {
			decl.Library = d.scope.alias
		}
		decl.Line, decl.Column = node.Content[i].Line, node.Content[i].Column
		out = append(out, decl)
	}
	return out
}

func (d *decoder) qualifiedName(name string) string {
	if d.scope == nil {
		return name
	}
	return d.scope.alias + "." + name
}

func (d *decoder) typeExpr(p string, n *yaml.Node, src string) TypeExpr {
	s := strings.TrimSpace(src)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "<") {
		d.errorf(p, n, "JSON and XML schema types are not supported")
		return nil
	}
	expr, err := ParseTypeExpr(s)
	if err != nil {
		d.errorf(p, n, "%v", err)
		return nil
	}
	if d.scope != nil {
		expr = qualify(expr, d.scope.alias, d.scope.local)
	}
	return expr
}

// decodeTypeDecl decodes a declaration given either in its short form (a
// type expression) or as a mapping of facets.
func (d *decoder) decodeTypeDecl(p string, node *yaml.Node) *TypeDecl {
	decl := &TypeDecl{Line: node.Line, Column: node.Column}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" || strings.TrimSpace(node.Value) == "" {
			return decl
		}
		decl.Base = d.typeExpr(p, node, node.Value)
		return decl
	case yaml.MappingNode:
	default:
		d.errorf(p, node, "expected a type expression or a mapping")
		return decl
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		kp := p + "/" + key.Value
		switch k := key.Value; k {
		case "type", "schema":
			decl.Base = d.baseType(kp, val)
		case "properties":
			decl.Properties = d.decodeProperties(kp, val)
		case "items":
			decl.Items = d.decodeTypeDecl(kp, val)
		case "enum":
			decl.Enum = d.stringList(kp, val)
		case "description":
			decl.Description = d.scalar(kp, val)
		case "displayName":
			decl.DisplayName = d.scalar(kp, val)
		case "default":
			decl.Default = toExampleValue(val)
		case "example":
			decl.Examples = append(decl.Examples, d.decodeExample("", val))
		case "examples":
			decl.Examples = append(decl.Examples, d.decodeExamples(kp, val)...)
		case "required", "allowedTargets", "facets", "xml", "strict":
		default:
			if isAnnotationKey(k) {
				decl.Annotations = append(decl.Annotations, d.annotation(k, val))
				continue
			}
			if !d.facet(&decl.Facets, kp, k, val) {
				d.log.Debug("ignoring unknown facet", zap.String("path", kp))
			}
		}
	}
	return decl
}

func (d *decoder) baseType(p string, val *yaml.Node) TypeExpr {
	switch val.Kind {
	case yaml.ScalarNode:
		if val.ShortTag() == "!!null" {
			return nil
		}
		return d.typeExpr(p, val, val.Value)
	case yaml.SequenceNode:
		if len(val.Content) == 1 && val.Content[0].Kind == yaml.ScalarNode {
			return d.typeExpr(p, val.Content[0], val.Content[0].Value)
		}
		d.errorf(p, val, "multiple inheritance is not supported")
		return nil
	default:
		d.errorf(p, val, "inline type declarations are not supported as a supertype")
		return nil
	}
}

func (d *decoder) facet(f *Facets, p, key string, val *yaml.Node) bool {
	switch key {
	case "format":
		f.Format = d.scalar(p, val)
	case "pattern":
		f.Pattern = d.scalar(p, val)
	case "minimum":
		f.Minimum = d.number(p, val)
	case "maximum":
		f.Maximum = d.number(p, val)
	case "multipleOf":
		f.MultipleOf = d.number(p, val)
	case "minLength":
		f.MinLength = d.integer(p, val)
	case "maxLength":
		f.MaxLength = d.integer(p, val)
	case "minItems":
		f.MinItems = d.integer(p, val)
	case "maxItems":
		f.MaxItems = d.integer(p, val)
	case "minProperties":
		f.MinProperties = d.integer(p, val)
	case "maxProperties":
		f.MaxProperties = d.integer(p, val)
	case "uniqueItems":
		if b := d.boolean(p, val); b != nil {
			f.UniqueItems = *b
		}
	case "additionalProperties":
		f.AdditionalProperties = d.boolean(p, val)
	case "discriminator":
		f.Discriminator = d.scalar(p, val)
	case "discriminatorValue":
		f.DiscriminatorValue = d.scalar(p, val)
	case "fileTypes":
		f.FileTypes = d.stringList(p, val)
	default:
		return false
	}
	return true
}

func (d *decoder) decodeProperties(p string, node *yaml.Node) []*PropertyDecl {
	if node.Kind != yaml.MappingNode {
		d.errorf(p, node, "properties must be a mapping")
		return nil
	}
	props := make([]*PropertyDecl, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		prop := &PropertyDecl{Name: key, Required: true}
		switch {
		case len(key) > 1 && strings.HasPrefix(key, "/") && strings.HasSuffix(key, "/"):
			prop.Name = key[1 : len(key)-1]
			prop.Pattern = true
			prop.Required = false
			if _, err := regexp.Compile(prop.Name); err != nil {
				d.errorf(p+"/"+key, node.Content[i], "invalid pattern property: %v", err)
			}
		case strings.HasSuffix(key, "?"):
			prop.Name = strings.TrimSuffix(key, "?")
			prop.Required = false
		}
		if req := mappingValue(val, "required"); req != nil {
			if b := d.boolean(p+"/"+key+"/required", req); b != nil {
				prop.Required = *b
			}
		}
		prop.Type = d.decodeTypeDecl(p+"/"+key, val)
		prop.Type.Name = prop.Name
		props = append(props, prop)
	}
	return props
}

func (d *decoder) decodeExamples(p string, node *yaml.Node) []Example {
	if node.Kind != yaml.MappingNode {
		d.errorf(p, node, "examples must be a mapping of name to example")
		return nil
	}
	out := make([]Example, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, d.decodeExample(node.Content[i].Value, node.Content[i+1]))
	}
	return out
}

var exampleKeys = map[string]bool{"value": true, "displayName": true, "description": true, "strict": true}

// decodeExample recognizes the full example form {value, displayName,
// description, strict}: a mapping with a "value" key and no key outside
// that set (annotations excepted).
func (d *decoder) decodeExample(name string, node *yaml.Node) Example {
	ex := Example{Name: name, Strict: true}
	if node.Kind == yaml.MappingNode && mappingValue(node, "value") != nil {
		full := true
		for i := 0; i < len(node.Content); i += 2 {
			k := node.Content[i].Value
			if !exampleKeys[k] && !isAnnotationKey(k) {
				full = false
				break
			}
		}
		if full {
			for i := 0; i+1 < len(node.Content); i += 2 {
				k, v := node.Content[i].Value, node.Content[i+1]
				switch k {
				case "value":
					ex.Value = toExampleValue(v)
				case "displayName":
					ex.DisplayName = v.Value
				case "description":
					ex.Description = v.Value
				case "strict":
					ex.Strict = v.Value != "false"
				}
			}
			return ex
		}
	}
	ex.Value = toExampleValue(node)
	return ex
}

func (d *decoder) annotation(key string, val *yaml.Node) Annotation {
	name := strings.TrimSuffix(strings.TrimPrefix(key, "("), ")")
	a := Annotation{Name: name, Value: toExampleValue(val)}
	if name == "typeArgs" && d.scope != nil {
		a.Value = d.qualifyTypeArgs(a.Value)
	}
	return a
}

// qualifyTypeArgs applies library naming to type expressions passed as
// generic arguments.
func (d *decoder) qualifyTypeArgs(v ExampleValue) ExampleValue {
	seq, ok := v.(Sequence)
	if !ok {
		return v
	}
	items := make([]ExampleValue, len(seq.Items))
	for i, item := range seq.Items {
		items[i] = item
		s, ok := item.(Scalar)
		if !ok {
			continue
		}
		if expr, err := ParseTypeExpr(s.Value); err == nil {
			items[i] = Scalar{Value: qualify(expr, d.scope.alias, d.scope.local).String(), Tag: s.Tag}
		}
	}
	return Sequence{Items: items}
}

func (d *decoder) decodeResource(rel string, node *yaml.Node, p string) *Resource {
	res := &Resource{RelativeURI: rel, Line: node.Line, Column: node.Column}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return res
	}
	if node.Kind != yaml.MappingNode {
		d.errorf(p, node, "resource must be a mapping")
		return res
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, val := node.Content[i].Value, node.Content[i+1]
		kp := p + "/" + k
		switch {
		case k == "displayName":
			res.DisplayName = d.scalar(kp, val)
		case k == "description":
			res.Description = d.scalar(kp, val)
		case k == "uriParameters":
			res.URIParams = d.decodeParams(kp, val, true)
			for _, up := range res.URIParams {
				up.Required = true
			}
		case isAnnotationKey(k):
			res.Annotations = append(res.Annotations, d.annotation(k, val))
		case strings.HasPrefix(k, "/"):
			res.Resources = append(res.Resources, d.decodeResource(k, val, kp))
		case methodNames[strings.TrimSuffix(k, "?")]:
			res.Methods = append(res.Methods, d.decodeMethod(strings.TrimSuffix(k, "?"), val, kp))
		default:
			d.log.Debug("ignoring resource key", zap.String("path", kp))
		}
	}
	return res
}

func (d *decoder) decodeMethod(name string, node *yaml.Node, p string) *Method {
	m := &Method{Name: name}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return m
	}
	if node.Kind != yaml.MappingNode {
		d.errorf(p, node, "method must be a mapping")
		return m
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, val := node.Content[i].Value, node.Content[i+1]
		kp := p + "/" + k
		switch {
		case k == "displayName":
			m.DisplayName = d.scalar(kp, val)
		case k == "description":
			m.Description = d.scalar(kp, val)
		case k == "queryParameters":
			m.QueryParams = d.decodeParams(kp, val, true)
		case k == "headers":
			m.Headers = d.decodeParams(kp, val, true)
		case k == "body":
			m.Body = d.decodeBody(kp, val)
		case k == "responses":
			m.Responses = d.decodeResponses(kp, val)
		case isAnnotationKey(k):
			m.Annotations = append(m.Annotations, d.annotation(k, val))
		default:
			d.log.Debug("ignoring method key", zap.String("path", kp))
		}
	}
	return m
}

func (d *decoder) decodeParams(p string, node *yaml.Node, requiredByDefault bool) []*Parameter {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		d.errorf(p, node, "parameters must be a mapping")
		return nil
	}
	params := make([]*Parameter, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		param := &Parameter{Name: strings.TrimSuffix(key, "?"), Required: requiredByDefault && !strings.HasSuffix(key, "?")}
		if req := mappingValue(val, "required"); req != nil {
			if b := d.boolean(p+"/"+key+"/required", req); b != nil {
				param.Required = *b
			}
		}
		param.Type = d.decodeTypeDecl(p+"/"+key, val)
		param.Type.Name = param.Name
		params = append(params, param)
	}
	return params
}

func (d *decoder) decodeBody(p string, node *yaml.Node) []*Body {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return []*Body{{Type: &TypeDecl{Base: NameRef{Name: "any"}}}}
	}
	if node.Kind == yaml.MappingNode && len(node.Content) > 0 && strings.Contains(node.Content[0].Value, "/") {
		bodies := make([]*Body, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			mt, val := node.Content[i].Value, node.Content[i+1]
			bodies = append(bodies, &Body{MediaType: mt, Type: d.bodyType(p+"/"+mt, val)})
		}
		return bodies
	}
	return []*Body{{Type: d.bodyType(p, node)}}
}

func (d *decoder) bodyType(p string, node *yaml.Node) *TypeDecl {
	decl := d.decodeTypeDecl(p, node)
	if decl.Base == nil && len(decl.Properties) == 0 && decl.Items == nil {
		decl.Base = NameRef{Name: "any"}
	}
	return decl
}

func (d *decoder) decodeResponses(p string, node *yaml.Node) []*Response {
	if node.Kind != yaml.MappingNode {
		d.errorf(p, node, "responses must be a mapping of status code to response")
		return nil
	}
	out := make([]*Response, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		code, val := node.Content[i].Value, node.Content[i+1]
		kp := p + "/" + code
		if _, err := strconv.Atoi(code); err != nil {
			d.errorf(kp, node.Content[i], "response code %q is not a number", code)
			continue
		}
		resp := &Response{Code: code}
		if val.Kind == yaml.MappingNode {
			for j := 0; j+1 < len(val.Content); j += 2 {
				k, v := val.Content[j].Value, val.Content[j+1]
				switch k {
				case "description":
					resp.Description = d.scalar(kp+"/"+k, v)
				case "headers":
					resp.Headers = d.decodeParams(kp+"/"+k, v, true)
				case "body":
					resp.Body = d.decodeBody(kp+"/"+k, v)
				}
			}
		}
		out = append(out, resp)
	}
	return out
}

// expandIncludes replaces every "!include" node in place with the content
// of the referenced file: YAML, RAML and JSON files become nodes, anything
// else a string scalar.
func (d *decoder) expandIncludes(node *yaml.Node, location, p string, depth int) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!include" {
		if depth >= d.src.settings.MaxIncludeDepth {
			d.errorf(p, node, "include nesting exceeds %d levels", d.src.settings.MaxIncludeDepth)
			return
		}
		loc, err := d.src.resolve(location, strings.TrimSpace(node.Value))
		if err != nil {
			d.errorf(p, node, "resolve include %q: %v", node.Value, err)
			return
		}
		raw, err := d.src.read(loc)
		if err != nil {
			d.errorf(p, node, "include %s: %v", node.Value, err)
			return
		}
		line, col := node.Line, node.Column
		switch strings.ToLower(path.Ext(loc)) {
		case ".raml", ".yaml", ".yml", ".json":
			var inc yaml.Node
			if err := yaml.Unmarshal(raw, &inc); err != nil {
				d.errorf(p, node, "include %s: %v", node.Value, err)
				return
			}
			if len(inc.Content) == 0 {
				*node = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Line: line, Column: col}
				return
			}
			*node = *inc.Content[0]
			d.expandIncludes(node, loc, p, depth+1)
		default:
			*node = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(raw), Line: line, Column: col}
		}
		d.log.Debug("expanded include", zap.String("path", p), zap.String("location", loc))
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			d.expandIncludes(node.Content[i+1], location, p+"/"+node.Content[i].Value, depth)
		}
	case yaml.SequenceNode:
		for i, c := range node.Content {
			d.expandIncludes(c, location, fmt.Sprintf("%s/%d", p, i), depth)
		}
	}
}

func (d *decoder) scalar(p string, n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		d.errorf(p, n, "expected a scalar value")
		return ""
	}
	if n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}

func (d *decoder) stringList(p string, n *yaml.Node) []string {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil
		}
		return []string{n.Value}
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			out = append(out, d.scalar(p, c))
		}
		return out
	default:
		d.errorf(p, n, "expected a scalar or a list of scalars")
		return nil
	}
}

func (d *decoder) number(p string, n *yaml.Node) *float64 {
	v, err := strconv.ParseFloat(d.scalar(p, n), 64)
	if err != nil {
		d.errorf(p, n, "expected a number, got %q", n.Value)
		return nil
	}
	return &v
}

func (d *decoder) integer(p string, n *yaml.Node) *int {
	v, err := strconv.Atoi(d.scalar(p, n))
	if err != nil {
		d.errorf(p, n, "expected an integer, got %q", n.Value)
		return nil
	}
	return &v
}

func (d *decoder) boolean(p string, n *yaml.Node) *bool {
	v, err := strconv.ParseBool(d.scalar(p, n))
	if err != nil {
		d.errorf(p, n, "expected a boolean, got %q", n.Value)
		return nil
	}
	return &v
}

func isAnnotationKey(k string) bool {
	return len(k) > 2 && strings.HasPrefix(k, "(") && strings.HasSuffix(k, ")")
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func toExampleValue(n *yaml.Node) ExampleValue {
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias != nil {
			return toExampleValue(n.Alias)
		}
		return Scalar{Tag: "!!null"}
	case yaml.SequenceNode:
		items := make([]ExampleValue, len(n.Content))
		for i, c := range n.Content {
			items[i] = toExampleValue(c)
		}
		return Sequence{Items: items}
	case yaml.MappingNode:
		fields := make([]Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			fields = append(fields, Field{Name: n.Content[i].Value, Value: toExampleValue(n.Content[i+1])})
		}
		return Structure{Fields: fields}
	default:
		return Scalar{Value: n.Value, Tag: n.ShortTag()}
	}
}

// ParseExampleText decodes an example given as JSON or YAML text, as used
// when an object example is written as a string literal.
func ParseExampleText(text string) (ExampleValue, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return Scalar{Tag: "!!null"}, nil
	}
	return toExampleValue(root.Content[0]), nil
}
