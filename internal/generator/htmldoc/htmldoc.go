// Package htmldoc renders a single page HTML reference of the types and
// resources of an API.
package htmldoc

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/names"
	"github.com/mark3labs/ramlgen/internal/raml"
)

//go:embed templates/index.html.tmpl templates/screen.css
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html.tmpl").
	Funcs(template.FuncMap{"upper": strings.ToUpper}).
	ParseFS(templateFS, "templates/index.html.tmpl"))

// Generator writes index.html and css/screen.css.
type Generator struct{}

// New returns the HTML documentation generator.
func New() *Generator { return &Generator{} }

func (*Generator) Name() string { return "html" }

func (g *Generator) Generate(ctx context.Context, m *model.ApiModel, cfg generator.OutputConfig) (*generator.Result, error) {
	if m == nil {
		return nil, errors.New("html: nil model")
	}
	v := newPage(m, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, v); err != nil {
		return nil, errors.Wrap(err, "html: render index.html")
	}
	css, err := templateFS.ReadFile("templates/screen.css")
	if err != nil {
		return nil, errors.Wrap(err, "html: read stylesheet")
	}
	files := generator.Files{}
	files.Add("index.html", buf.Bytes())
	files.Add("css/screen.css", css)
	return generator.Emit(g.Name(), cfg, files)
}

type page struct {
	Title       string
	Version     string
	BaseURI     string
	Description string
	MediaType   string
	Types       []typeView
	Resources   []resourceView
}

type typeView struct {
	Anchor      string
	Name        string
	Kind        string
	Supertype   template.HTML
	Params      []string
	Description string
	Properties  []propertyView
	Enum        []model.EnumValue
	Definition  template.HTML
	Derived     []template.HTML
	Examples    []exampleView
}

type propertyView struct {
	Name        string
	Type        template.HTML
	Required    bool
	Inherited   bool
	Description string
}

type exampleView struct {
	Name string
	JSON string
}

type resourceView struct {
	Anchor      string
	Path        string
	DisplayName string
	Description string
	URIParams   []paramView
	Methods     []methodView
}

type methodView struct {
	Anchor      string
	Method      string
	DisplayName string
	Description string
	QueryParams []paramView
	Headers     []paramView
	Body        []bodyView
	Responses   []responseView
}

type paramView struct {
	Name        string
	Type        template.HTML
	Required    bool
	Description string
}

type bodyView struct {
	MediaType string
	Type      template.HTML
	Examples  []exampleView
}

type responseView struct {
	Code        string
	Description string
	Headers     []paramView
	Body        []bodyView
}

type pageBuilder struct {
	m   *model.ApiModel
	cfg generator.OutputConfig
}

func newPage(m *model.ApiModel, cfg generator.OutputConfig) page {
	b := &pageBuilder{m: m, cfg: cfg}
	p := page{
		Title:       m.Title,
		Version:     m.Version,
		BaseURI:     m.BaseURI,
		Description: strings.TrimSpace(m.Description),
		MediaType:   strings.Join(m.MediaType, ", "),
	}
	for _, n := range m.SortedTypes() {
		p.Types = append(p.Types, b.typeView(n))
	}
	var walk func(rs []*model.Resource)
	walk = func(rs []*model.Resource) {
		for _, r := range rs {
			if len(r.Methods) > 0 || len(r.Resources) == 0 {
				p.Resources = append(p.Resources, b.resourceView(r))
			}
			walk(r.Resources)
		}
	}
	walk(m.Resources())
	return p
}

func anchor(name string) string { return "type-" + names.Kebab(name) }

// link renders a reference to h, linking every named type it mentions.
func (b *pageBuilder) link(h model.Handle) template.HTML {
	return b.linkRef(generator.Resolve(b.m, h))
}

func (b *pageBuilder) linkRef(r generator.Ref) template.HTML {
	esc := template.HTMLEscapeString
	switch r.Kind {
	case generator.RefNamed:
		return template.HTML(`<a href="#` + esc(anchor(r.Node.Name)) + `">` + esc(r.Node.Name) + `</a>`)
	case generator.RefInstance:
		args := make([]string, len(r.Args))
		for i, a := range r.Args {
			args[i] = string(b.linkRef(a))
		}
		return template.HTML(string(b.linkRef(generator.Ref{Kind: generator.RefNamed, Node: r.Node})) +
			"&lt;" + strings.Join(args, ", ") + "&gt;")
	case generator.RefParam:
		return template.HTML(`<var>` + esc(r.Node.Param) + `</var>`)
	case generator.RefArray:
		elem := string(b.linkRef(*r.Elem))
		if r.Elem.Kind == generator.RefUnion {
			elem = "(" + elem + ")"
		}
		return template.HTML(elem + "[]")
	case generator.RefUnion:
		parts := make([]string, len(r.Members))
		for i, mem := range r.Members {
			parts[i] = string(b.linkRef(mem))
		}
		return template.HTML(strings.Join(parts, " | "))
	case generator.RefInline:
		return "object"
	case generator.RefEnum:
		vals := make([]string, len(r.Node.Enum))
		for i, e := range r.Node.Enum {
			vals[i] = esc(e.Name)
		}
		return template.HTML(esc(r.Node.Metatype.Literal()) + " (" + strings.Join(vals, ", ") + ")")
	default:
		return template.HTML(esc(r.Metatype.Literal()))
	}
}

func (b *pageBuilder) typeView(n *model.TypeNode) typeView {
	v := typeView{
		Anchor:      anchor(n.Name),
		Name:        n.Name,
		Kind:        n.Metatype.Literal(),
		Params:      n.TypeParams,
		Description: strings.TrimSpace(n.Description),
		Enum:        n.Enum,
	}
	if n.Supertype != model.NoHandle {
		v.Supertype = b.link(n.Supertype)
	}
	switch n.Metatype {
	case model.Object:
		for _, p := range n.EffectiveProperties() {
			name := p.Name
			if p.Pattern {
				name = "/" + p.Name + "/"
			}
			v.Properties = append(v.Properties, propertyView{
				Name:        name,
				Type:        b.link(p.Type),
				Required:    p.Required,
				Inherited:   p.DeclaredBy != n.Handle,
				Description: strings.TrimSpace(p.Description),
			})
		}
	case model.Array:
		v.Definition = b.link(n.Items) + "[]"
	case model.Union:
		v.Definition = b.linkRef(generator.Ref{Kind: generator.RefUnion, Members: unionMembers(b.m, n)})
	}
	for _, d := range b.m.DerivedTypes(n.Handle) {
		v.Derived = append(v.Derived, b.link(d.Handle))
	}
	v.Examples = b.examples(n.Handle, n.Examples)
	return v
}

func unionMembers(m *model.ApiModel, n *model.TypeNode) []generator.Ref {
	out := make([]generator.Ref, len(n.Members))
	for i, mem := range n.Members {
		out[i] = generator.Resolve(m, mem)
	}
	return out
}

func (b *pageBuilder) examples(h model.Handle, exs []raml.Example) []exampleView {
	out := make([]exampleView, 0, len(exs))
	for i, ex := range exs {
		name := ex.DisplayName
		if name == "" {
			name = ex.Name
		}
		if name == "" && len(exs) > 1 {
			name = "Example " + strconv.Itoa(i+1)
		}
		rendered := generator.RenderExample(b.cfg.Log(), b.m, h, ex)
		out = append(out, exampleView{Name: name, JSON: rendered.PrettyJSON()})
	}
	return out
}

func (b *pageBuilder) params(ps []model.Parameter) []paramView {
	out := make([]paramView, 0, len(ps))
	for _, p := range ps {
		out = append(out, paramView{
			Name:        p.Name,
			Type:        b.link(p.Type),
			Required:    p.Required,
			Description: strings.TrimSpace(p.Description),
		})
	}
	return out
}

func (b *pageBuilder) bodies(bs []model.Body) []bodyView {
	out := make([]bodyView, 0, len(bs))
	for _, body := range bs {
		bv := bodyView{MediaType: body.MediaType, Type: b.link(body.Type)}
		if n := b.m.Node(body.Type); n != nil && n.Origin == model.OriginSynthetic {
			bv.Examples = b.examples(body.Type, n.Examples)
		}
		out = append(out, bv)
	}
	return out
}

func (b *pageBuilder) resourceView(r *model.Resource) resourceView {
	rv := resourceView{
		Anchor:      "resource-" + names.Kebab(r.Path),
		Path:        r.Path,
		DisplayName: r.DisplayName,
		Description: strings.TrimSpace(r.Description),
		URIParams:   b.params(r.URIParams),
	}
	for _, m := range r.Methods {
		mv := methodView{
			Anchor:      names.Kebab(m.ID(r)),
			Method:      string(m.Method),
			DisplayName: m.DisplayName,
			Description: strings.TrimSpace(m.Description),
			QueryParams: b.params(m.QueryParams),
			Headers:     b.params(m.Headers),
			Body:        b.bodies(m.Body),
		}
		for _, resp := range m.Responses {
			mv.Responses = append(mv.Responses, responseView{
				Code:        resp.Code,
				Description: strings.TrimSpace(resp.Description),
				Headers:     b.params(resp.Headers),
				Body:        b.bodies(resp.Body),
			})
		}
		rv.Methods = append(rv.Methods, mv)
	}
	return rv
}
