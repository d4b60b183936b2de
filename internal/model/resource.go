package model

import "github.com/mark3labs/ramlgen/internal/raml"

type HttpMethod string

const (
    GET     HttpMethod = "get"
    POST    HttpMethod = "post"
    PUT     HttpMethod = "put"
    DELETE  HttpMethod = "delete"
    PATCH   HttpMethod = "patch"
    HEAD    HttpMethod = "head"
    OPTIONS HttpMethod = "options"
    TRACE   HttpMethod = "trace"
)

// methodOrder is the stable order methods are listed in.
var methodOrder = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

type Resource struct {
    RelativeURI string
    // Path is the full URI template from the API root, e.g. "/pets/{id}".
    Path        string
    DisplayName string
    Description string
    URIParams   []Parameter
    Methods     []Method
    Resources   []*Resource
    Annotations []raml.Annotation
}

type Method struct {
    Method      HttpMethod
    DisplayName string
    Description string
    QueryParams []Parameter
    Headers     []Parameter
    Body        []Body
    Responses   []Response
    Annotations []raml.Annotation
}

// ID returns "method path", e.g. "get /pets/{id}".
func (m Method) ID(r *Resource) string { return string(m.Method) + " " + r.Path }

type Parameter struct {
    Name        string
    Type        Handle
    Required    bool
    Description string
}

type Body struct {
    MediaType string
    Type      Handle
}

type Response struct {
    Code        string
    Description string
    Headers     []Parameter
    Body        []Body
}
