package model

import (
	"context"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/ramlgen/internal/raml"
)

// BuildOption configures how the ApiModel is built from a parsed document.
type BuildOption func(*buildConfig)

type buildConfig struct {
	log      *zap.Logger
	methods  map[HttpMethod]struct{}
	patterns []string
}

// WithLogger sets the logger used while resolving. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMethods keeps only resource methods using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) BuildOption {
	return func(c *buildConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[HttpMethod]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[HttpMethod(strings.ToLower(string(m)))] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only resource methods whose full path matches at
// least one of the provided regular expressions. An invalid pattern makes
// Build fail.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			if p = strings.TrimSpace(p); p != "" {
				c.patterns = append(c.patterns, p)
			}
		}
	}
}

// Build resolves a parsed document into an ApiModel. Any resolution error is
// terminal; no partially resolved model is returned.
func Build(ctx context.Context, doc *raml.Document, opts ...BuildOption) (*ApiModel, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	cfg := &buildConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	pathRes := make([]*regexp.Regexp, 0, len(cfg.patterns))
	for _, p := range cfg.patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid path pattern %q", p)
		}
		pathRes = append(pathRes, re)
	}

	m := newApiModel()
	m.Title = strings.TrimSpace(doc.Title)
	m.Version = strings.TrimSpace(doc.Version)
	m.BaseURI = strings.TrimSpace(doc.BaseURI)
	m.Description = strings.TrimSpace(doc.Description)
	m.MediaType = doc.MediaType
	m.Annotations = doc.Annotations
	m.Libraries = doc.Libraries
	m.Source = doc.Location

	r := newResolver(m, cfg.log)
	if err := r.register(doc.Types); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.resolveAll(); err != nil {
		return nil, err
	}

	for _, decl := range doc.AnnotationTypes {
		h, err := r.inline("("+decl.Name+")", decl, NoHandle, NoHandle)
		if err != nil {
			return nil, err
		}
		m.annotationTypes = append(m.annotationTypes, AnnotationType{Name: decl.Name, Type: h})
	}

	rb := &resourceBuilder{r: r, cfg: cfg, pathRes: pathRes}
	for _, res := range doc.Resources {
		out, err := rb.resource(res, "")
		if err != nil {
			return nil, err
		}
		if out != nil {
			m.resources = append(m.resources, out)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.finish(); err != nil {
		return nil, err
	}
	m.indexDerived()
	cfg.log.Debug("built api model",
		zap.String("title", m.Title),
		zap.Int("types", len(m.Types())),
		zap.Int("resources", len(m.resources)))
	return m, nil
}

type resourceBuilder struct {
	r       *resolver
	cfg     *buildConfig
	pathRes []*regexp.Regexp
}

func (b *resourceBuilder) filtered() bool { return len(b.cfg.methods) > 0 || len(b.pathRes) > 0 }

func (b *resourceBuilder) allow(method HttpMethod, path string) bool {
	if len(b.cfg.methods) > 0 {
		if _, ok := b.cfg.methods[method]; !ok {
			return false
		}
	}
	if len(b.pathRes) == 0 {
		return true
	}
	for _, re := range b.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// resource converts one resource and its children. With filters active a
// resource left without methods and children is dropped (nil).
func (b *resourceBuilder) resource(res *raml.Resource, parent string) (*Resource, error) {
	out := &Resource{
		RelativeURI: res.RelativeURI,
		Path:        parent + res.RelativeURI,
		DisplayName: strings.TrimSpace(res.DisplayName),
		Description: strings.TrimSpace(res.Description),
		Annotations: res.Annotations,
	}
	var err error
	if out.URIParams, err = b.params(out.Path+" uriParameters", res.URIParams); err != nil {
		return nil, err
	}

	byName := make(map[HttpMethod]*raml.Method, len(res.Methods))
	for _, rm := range res.Methods {
		byName[HttpMethod(strings.ToLower(rm.Name))] = rm
	}
	for _, hm := range methodOrder {
		rm, ok := byName[hm]
		if !ok || !b.allow(hm, out.Path) {
			continue
		}
		method, err := b.method(hm, rm, out.Path)
		if err != nil {
			return nil, err
		}
		out.Methods = append(out.Methods, method)
	}

	for _, child := range res.Resources {
		c, err := b.resource(child, out.Path)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out.Resources = append(out.Resources, c)
		}
	}
	if b.filtered() && len(out.Methods) == 0 && len(out.Resources) == 0 {
		return nil, nil
	}
	return out, nil
}

func (b *resourceBuilder) method(hm HttpMethod, rm *raml.Method, path string) (Method, error) {
	id := string(hm) + " " + path
	out := Method{
		Method:      hm,
		DisplayName: strings.TrimSpace(rm.DisplayName),
		Description: strings.TrimSpace(rm.Description),
		Annotations: rm.Annotations,
	}
	var err error
	if out.QueryParams, err = b.params(id+" queryParameters", rm.QueryParams); err != nil {
		return out, err
	}
	if out.Headers, err = b.params(id+" headers", rm.Headers); err != nil {
		return out, err
	}
	if out.Body, err = b.bodies(id+" body", rm.Body); err != nil {
		return out, err
	}
	for _, resp := range rm.Responses {
		prefix := id + " " + resp.Code
		r := Response{Code: resp.Code, Description: strings.TrimSpace(resp.Description)}
		if r.Headers, err = b.params(prefix+" headers", resp.Headers); err != nil {
			return out, err
		}
		if r.Body, err = b.bodies(prefix+" body", resp.Body); err != nil {
			return out, err
		}
		out.Responses = append(out.Responses, r)
	}
	return out, nil
}

func (b *resourceBuilder) params(prefix string, ps []*raml.Parameter) ([]Parameter, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	out := make([]Parameter, 0, len(ps))
	for _, p := range ps {
		t, err := b.r.typeOf(prefix+" "+p.Name, p.Type, NoHandle, NoHandle)
		if err != nil {
			return nil, err
		}
		out = append(out, Parameter{
			Name:        p.Name,
			Type:        t,
			Required:    p.Required,
			Description: strings.TrimSpace(p.Type.Description),
		})
	}
	return out, nil
}

func (b *resourceBuilder) bodies(prefix string, bs []*raml.Body) ([]Body, error) {
	if len(bs) == 0 {
		return nil, nil
	}
	out := make([]Body, 0, len(bs))
	for _, body := range bs {
		referrer := prefix
		if body.MediaType != "" {
			referrer += " " + body.MediaType
		}
		t, err := b.r.typeOf(referrer, body.Type, NoHandle, NoHandle)
		if err != nil {
			return nil, err
		}
		out = append(out, Body{MediaType: body.MediaType, Type: t})
	}
	return out, nil
}
