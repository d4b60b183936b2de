package openapi

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"

	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
)

// SwaggerGenerator writes the same API as a Swagger 2.0 document, for
// consumers that have not moved to OpenAPI 3. It builds the OpenAPI 3
// document first and converts it down.
type SwaggerGenerator struct{}

// NewSwagger returns the Swagger 2.0 generator.
func NewSwagger() *SwaggerGenerator { return &SwaggerGenerator{} }

func (*SwaggerGenerator) Name() string { return "swagger" }

func (g *SwaggerGenerator) Generate(ctx context.Context, m *model.ApiModel, cfg generator.OutputConfig) (*generator.Result, error) {
	if m == nil {
		return nil, errors.New("swagger: nil model")
	}
	doc, err := BuildSwagger(ctx, m, cfg)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "swagger: marshal document")
	}
	files, err := encode(raw, cfg.BaseName("swagger"), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "swagger")
	}
	return generator.Emit(g.Name(), cfg, files)
}

// BuildSwagger converts the model into a Swagger 2.0 document.
// Union schemas have no Swagger 2.0 form and come out untyped.
func BuildSwagger(ctx context.Context, m *model.ApiModel, cfg generator.OutputConfig) (*openapi2.T, error) {
	doc3, err := Build(ctx, m, cfg.Log())
	if err != nil {
		return nil, err
	}
	doc2, err := openapi2conv.FromV3(doc3)
	if err != nil {
		return nil, errors.Wrap(err, "swagger: convert from OpenAPI 3")
	}
	return doc2, nil
}
