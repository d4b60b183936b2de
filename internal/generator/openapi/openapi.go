// Package openapi generates an OpenAPI 3.0 document from the API model.
package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/names"
	"github.com/mark3labs/ramlgen/internal/raml"
)

const componentPrefix = "#/components/schemas/"

// Generator writes <base>.json and/or <base>.yaml.
type Generator struct{}

// New returns the OpenAPI generator.
func New() *Generator { return &Generator{} }

func (*Generator) Name() string { return "openapi" }

func (g *Generator) Generate(ctx context.Context, m *model.ApiModel, cfg generator.OutputConfig) (*generator.Result, error) {
	if m == nil {
		return nil, errors.New("openapi: nil model")
	}
	doc, err := Build(ctx, m, cfg.Log())
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		cfg.Log().Warn("generated OpenAPI document does not validate", zap.Error(err))
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "openapi: marshal document")
	}
	files, err := encode(raw, cfg.BaseName("openapi"), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "openapi")
	}
	return generator.Emit(g.Name(), cfg, files)
}

// encode lays out a marshalled document as <base>.json and/or <base>.yaml.
// JSON is written when neither serialization is requested.
func encode(raw []byte, base string, cfg generator.OutputConfig) (generator.Files, error) {
	files := generator.Files{}
	if cfg.JSON || !cfg.YAML {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return nil, errors.Wrap(err, "indent document")
		}
		pretty.WriteByte('\n')
		files.Add(base+".json", pretty.Bytes())
	}
	if cfg.YAML {
		out, err := toYAML(raw)
		if err != nil {
			return nil, errors.Wrap(err, "encode YAML")
		}
		files.Add(base+".yaml", out)
	}
	return files, nil
}

// toYAML re-encodes a JSON document as block style YAML, keeping key order.
func toYAML(raw []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	clearStyle(&root)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// Build converts the model into an OpenAPI document. Every named type
// that is not a generic declaration becomes a component schema, concrete
// generic instances included; every resource method becomes an operation.
func Build(ctx context.Context, m *model.ApiModel, log *zap.Logger) (*openapi3.T, error) {
	b := &builder{
		m:          m,
		log:        log,
		components: map[model.Handle]string{},
		schemas:    openapi3.Schemas{},
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       m.Title,
			Version:     m.Version,
			Description: m.Description,
		},
		Paths:      openapi3.Paths{},
		Components: &openapi3.Components{Schemas: b.schemas},
	}
	if doc.Info.Version == "" {
		doc.Info.Version = "unversioned"
	}
	if m.BaseURI != "" {
		doc.Servers = openapi3.Servers{&openapi3.Server{URL: strings.ReplaceAll(m.BaseURI, "{version}", m.Version)}}
	}

	for _, n := range m.Types() {
		if n.IsGeneric() {
			continue
		}
		b.components[n.Handle] = b.componentName(n)
	}
	// Allocate every component first so references can point at them
	// before they are filled, recursive types included.
	for _, name := range b.components {
		b.schemas[name] = &openapi3.SchemaRef{Value: &openapi3.Schema{}}
	}
	for _, n := range m.Types() {
		name, ok := b.components[n.Handle]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		*b.schemas[name].Value = *b.define(n)
	}

	for _, r := range m.Resources() {
		if err := b.resource(doc, r, nil); err != nil {
			return nil, err
		}
	}
	log.Debug("built OpenAPI document",
		zap.Strings("schemas", sortedKeys(b.schemas)),
		zap.Int("paths", len(doc.Paths)))
	return doc, nil
}

type builder struct {
	m          *model.ApiModel
	log        *zap.Logger
	components map[model.Handle]string
	schemas    openapi3.Schemas
}

var componentChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func (b *builder) componentName(n *model.TypeNode) string {
	if n.Origin == model.OriginInstance {
		return names.Pascal(n.Name)
	}
	return componentChars.ReplaceAllString(n.Name, "_")
}

// ref returns the schema for a reference to h.
func (b *builder) ref(h model.Handle) *openapi3.SchemaRef {
	if name, ok := b.components[h]; ok {
		return &openapi3.SchemaRef{Ref: componentPrefix + name, Value: b.schemas[name].Value}
	}
	n := b.m.Node(h)
	if n == nil {
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
	if n.Origin == model.OriginBuiltin {
		return openapi3.NewSchemaRef("", primitive(n.Metatype, raml.Facets{}))
	}
	return openapi3.NewSchemaRef("", b.define(n))
}

// define builds the schema of a type declaration or anonymous type.
func (b *builder) define(n *model.TypeNode) *openapi3.Schema {
	var s *openapi3.Schema
	facets := b.m.Facets(n.Handle)
	switch n.Metatype {
	case model.Object:
		s = b.object(n)
	case model.Array:
		s = &openapi3.Schema{Type: "array", Items: b.ref(n.Items)}
		if facets.MinItems != nil {
			s.MinItems = uint64(*facets.MinItems)
		}
		if facets.MaxItems != nil {
			v := uint64(*facets.MaxItems)
			s.MaxItems = &v
		}
		s.UniqueItems = facets.UniqueItems
	case model.Union:
		s = &openapi3.Schema{}
		for _, mem := range n.Members {
			if mn := b.m.Node(mem); mn != nil && mn.Metatype == model.Null && mn.Origin == model.OriginBuiltin {
				s.Nullable = true
				continue
			}
			s.OneOf = append(s.OneOf, b.ref(mem))
		}
	default:
		s = primitive(n.Metatype, facets)
		if n.IsEnum() {
			for _, e := range n.Enum {
				s.Enum = append(s.Enum, enumValue(n.Metatype, e.Name))
			}
		}
	}
	s.Description = strings.TrimSpace(n.Description)
	s.Title = n.DisplayName
	if n.Default != nil {
		var v any
		raw := generator.RenderExample(b.log, b.m, n.Handle, raml.Example{Name: "default", Value: n.Default, Strict: true}).JSON()
		if err := json.Unmarshal(raw, &v); err == nil {
			s.Default = v
		}
	}
	if len(n.Examples) > 0 {
		s.Example = generator.RenderExample(b.log, b.m, n.Handle, n.Examples[0]).JSON()
	}
	return s
}

func (b *builder) object(n *model.TypeNode) *openapi3.Schema {
	own := &openapi3.Schema{Type: "object", Properties: openapi3.Schemas{}}
	props := n.Properties
	var super *openapi3.SchemaRef
	if _, ok := b.components[n.Supertype]; ok {
		super = b.ref(n.Supertype)
	} else {
		props = n.EffectiveProperties()
	}
	for _, p := range props {
		if p.Pattern {
			continue
		}
		ps := b.ref(p.Type)
		if p.Description != "" && ps.Ref == "" {
			ps.Value.Description = strings.TrimSpace(p.Description)
		}
		own.Properties[p.Name] = ps
		if p.Required {
			own.Required = append(own.Required, p.Name)
		}
	}
	facets := b.m.Facets(n.Handle)
	if facets.MinProperties != nil {
		own.MinProps = uint64(*facets.MinProperties)
	}
	if facets.MaxProperties != nil {
		v := uint64(*facets.MaxProperties)
		own.MaxProps = &v
	}
	if d := n.Facets.Discriminator; d != "" {
		own.Discriminator = &openapi3.Discriminator{PropertyName: d}
		for _, sub := range b.m.DerivedTypes(n.Handle) {
			if name, ok := b.components[sub.Handle]; ok {
				if own.Discriminator.Mapping == nil {
					own.Discriminator.Mapping = map[string]string{}
				}
				own.Discriminator.Mapping[b.m.DiscriminatorValue(sub.Handle)] = componentPrefix + name
			}
		}
	}
	if len(own.Properties) == 0 {
		own.Properties = nil
	}
	if super == nil {
		return own
	}
	if own.Properties == nil && own.Discriminator == nil {
		return &openapi3.Schema{AllOf: openapi3.SchemaRefs{super}}
	}
	return &openapi3.Schema{AllOf: openapi3.SchemaRefs{super, openapi3.NewSchemaRef("", own)}}
}

// resource adds the operations of r and its children. inherited carries
// the URI parameters declared by enclosing resources.
func (b *builder) resource(doc *openapi3.T, r *model.Resource, inherited []model.Parameter) error {
	uriParams := append(append([]model.Parameter(nil), inherited...), r.URIParams...)
	if len(r.Methods) > 0 {
		item := &openapi3.PathItem{Summary: r.DisplayName, Description: r.Description}
		for i := range r.Methods {
			op := b.operation(r, &r.Methods[i], uriParams)
			item.SetOperation(strings.ToUpper(string(r.Methods[i].Method)), op)
		}
		doc.Paths[r.Path] = item
	}
	for _, child := range r.Resources {
		if err := b.resource(doc, child, uriParams); err != nil {
			return err
		}
	}
	return nil
}

var templateVar = regexp.MustCompile(`\{([^{}]+)\}`)

func (b *builder) operation(r *model.Resource, rm *model.Method, uriParams []model.Parameter) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: names.Camel(rm.ID(r)),
		Summary:     rm.DisplayName,
		Description: strings.TrimSpace(rm.Description),
		Responses:   openapi3.Responses{},
	}

	declared := map[string]model.Parameter{}
	for _, p := range uriParams {
		declared[p.Name] = p
	}
	for _, match := range templateVar.FindAllStringSubmatch(r.Path, -1) {
		p, ok := declared[match[1]]
		if !ok {
			p = model.Parameter{Name: match[1], Type: model.Handle(model.String)}
		}
		op.Parameters = append(op.Parameters, b.parameter(openapi3.ParameterInPath, p, true))
	}
	for _, p := range rm.QueryParams {
		op.Parameters = append(op.Parameters, b.parameter(openapi3.ParameterInQuery, p, p.Required))
	}
	for _, p := range rm.Headers {
		op.Parameters = append(op.Parameters, b.parameter(openapi3.ParameterInHeader, p, p.Required))
	}

	if len(rm.Body) > 0 {
		op.RequestBody = &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
			Required: true,
			Content:  b.content(rm.Body),
		}}
	}

	for _, resp := range rm.Responses {
		desc := strings.TrimSpace(resp.Description)
		if desc == "" {
			if code, err := strconv.Atoi(resp.Code); err == nil {
				desc = http.StatusText(code)
			}
		}
		out := &openapi3.Response{Description: &desc}
		if len(resp.Body) > 0 {
			out.Content = b.content(resp.Body)
		}
		if len(resp.Headers) > 0 {
			out.Headers = openapi3.Headers{}
			for _, hp := range resp.Headers {
				out.Headers[hp.Name] = &openapi3.HeaderRef{Value: &openapi3.Header{Parameter: openapi3.Parameter{
					Description: hp.Description,
					Required:    hp.Required,
					Schema:      b.ref(hp.Type),
				}}}
			}
		}
		op.Responses[resp.Code] = &openapi3.ResponseRef{Value: out}
	}
	if len(op.Responses) == 0 {
		desc := "Default response"
		op.Responses["default"] = &openapi3.ResponseRef{Value: &openapi3.Response{Description: &desc}}
	}
	return op
}

func (b *builder) parameter(in string, p model.Parameter, required bool) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name:        p.Name,
		In:          in,
		Description: p.Description,
		Required:    required,
		Schema:      b.ref(p.Type),
	}}
}

func (b *builder) content(bodies []model.Body) openapi3.Content {
	c := openapi3.Content{}
	for _, body := range bodies {
		mt := &openapi3.MediaType{Schema: b.ref(body.Type)}
		// Named types carry their examples in the component schema.
		if n := b.m.Node(body.Type); n != nil && n.Origin == model.OriginSynthetic && len(n.Examples) > 1 {
			mt.Examples = openapi3.Examples{}
			for i, ex := range n.Examples {
				key := ex.Name
				if key == "" {
					key = "example" + strconv.Itoa(i+1)
				}
				mt.Examples[key] = &openapi3.ExampleRef{Value: &openapi3.Example{
					Summary:     ex.DisplayName,
					Description: ex.Description,
					Value:       generator.RenderExample(b.log, b.m, n.Handle, ex).JSON(),
				}}
			}
			mt.Schema.Value.Example = nil
		}
		c[body.MediaType] = mt
	}
	return c
}

func sortedKeys(s openapi3.Schemas) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// primitive maps a built-in metatype and its facets to a schema.
func primitive(mt model.Metatype, f raml.Facets) *openapi3.Schema {
	s := &openapi3.Schema{}
	switch mt {
	case model.Any, model.Union:
		return s
	case model.Null:
		s.Nullable = true
		return s
	case model.Boolean:
		s.Type = "boolean"
	case model.Integer:
		s.Type = "integer"
		switch f.Format {
		case "int64", "long":
			s.Format = "int64"
		case "int32", "int", "int16", "int8":
			s.Format = "int32"
		}
	case model.Number:
		s.Type = "number"
		switch f.Format {
		case "float", "double":
			s.Format = f.Format
		}
	case model.File:
		s.Type = "string"
		s.Format = "binary"
	case model.Datetime:
		s.Type = "string"
		s.Format = "date-time"
	case model.DateOnly:
		s.Type = "string"
		s.Format = "date"
	case model.Object:
		s.Type = "object"
	case model.Array:
		s.Type = "array"
		s.Items = openapi3.NewSchemaRef("", &openapi3.Schema{})
	default:
		s.Type = "string"
	}

	switch mt {
	case model.Integer, model.Number:
		s.Min = f.Minimum
		s.Max = f.Maximum
		s.MultipleOf = f.MultipleOf
	case model.String:
		s.Pattern = f.Pattern
		if f.MinLength != nil {
			s.MinLength = uint64(*f.MinLength)
		}
		if f.MaxLength != nil {
			v := uint64(*f.MaxLength)
			s.MaxLength = &v
		}
	}
	return s
}

func enumValue(mt model.Metatype, lit string) any {
	switch mt {
	case model.Integer:
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return i
		}
	case model.Number:
		if f, err := strconv.ParseFloat(lit, 64); err == nil {
			return f
		}
	case model.Boolean:
		if b, err := strconv.ParseBool(lit); err == nil {
			return b
		}
	}
	return lit
}
