// Package example coerces raw example values into values whose scalar kinds
// and shape follow the declared type.
package example

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/raml"
)

// ExampleMismatchError reports an example that does not fit its type. Path
// locates the offending node, "$" being the example root.
type ExampleMismatchError struct {
	Type   string
	Path   string
	Reason string
	Cause  error
}

func (e *ExampleMismatchError) Error() string {
	return fmt.Sprintf("example for %s at %s: %s", e.Type, e.Path, e.Reason)
}

func (e *ExampleMismatchError) Unwrap() error { return e.Cause }

// Render coerces ex against the type h of m.
//
// Unions try their members in declaration order and keep the first that
// renders; there is no disambiguation by discriminator. An unquoted YAML
// null renders as null against any type.
func Render(m *model.ApiModel, h model.Handle, ex raml.ExampleValue) (RenderedValue, error) {
	r := &renderer{m: m, patterns: map[string]*regexp.Regexp{}}
	return r.render(h, ex, "$")
}

// Infer renders ex without a type: scalar kinds follow the YAML tags.
func Infer(ex raml.ExampleValue) RenderedValue {
	v, _ := (&renderer{}).any(ex, "$")
	return v
}

type renderer struct {
	m        *model.ApiModel
	patterns map[string]*regexp.Regexp
}

func (r *renderer) mismatch(n *model.TypeNode, path, format string, args ...any) *ExampleMismatchError {
	return &ExampleMismatchError{Type: n.Name, Path: path, Reason: fmt.Sprintf(format, args...)}
}

func (r *renderer) render(h model.Handle, ex raml.ExampleValue, path string) (RenderedValue, error) {
	n := r.m.Node(h)
	if n == nil {
		return RenderedValue{}, &ExampleMismatchError{Type: "?", Path: path, Reason: "unknown type"}
	}
	if s, ok := ex.(raml.Scalar); ok && s.IsNull() {
		return Null, nil
	}
	if ex == nil {
		return Null, nil
	}

	switch n.Metatype {
	case model.Any:
		return r.any(ex, path)
	case model.Object:
		return r.object(n, ex, path)
	case model.Array:
		return r.array(n, ex, path)
	case model.Union:
		return r.union(n, ex, path)
	}

	s, ok := ex.(raml.Scalar)
	if !ok {
		return RenderedValue{}, r.mismatch(n, path, "expected a scalar for %s, got %s", n.Metatype, shape(ex))
	}
	v, err := r.scalar(n, s, path)
	if err != nil {
		return RenderedValue{}, err
	}
	if n.IsEnum() && !enumContains(n.Enum, s.Value) {
		return RenderedValue{}, r.mismatch(n, path, "%q is not one of the enumerated values", s.Value)
	}
	return v, nil
}

func (r *renderer) scalar(n *model.TypeNode, s raml.Scalar, path string) (RenderedValue, error) {
	lit := strings.TrimSpace(s.Value)
	switch n.Metatype {
	case model.Null:
		return RenderedValue{}, r.mismatch(n, path, "expected null, got %q", s.Value)
	case model.Boolean:
		switch strings.ToLower(lit) {
		case "true":
			return RenderedValue{Kind: BooleanKind, Bool: true}, nil
		case "false":
			return RenderedValue{Kind: BooleanKind, Bool: false}, nil
		}
		return RenderedValue{}, r.mismatch(n, path, "%q is not a boolean", s.Value)
	case model.Integer:
		i, err := parseInteger(lit)
		if err != nil {
			return RenderedValue{}, &ExampleMismatchError{Type: n.Name, Path: path, Reason: fmt.Sprintf("%q is not an integer", s.Value), Cause: err}
		}
		return RenderedValue{Kind: IntegerKind, Int: i}, nil
	case model.Number:
		f, err := parseNumber(lit)
		if err != nil {
			return RenderedValue{}, &ExampleMismatchError{Type: n.Name, Path: path, Reason: fmt.Sprintf("%q is not a number", s.Value), Cause: err}
		}
		return RenderedValue{Kind: NumberKind, Float: f}, nil
	case model.DateOnly, model.TimeOnly, model.DatetimeOnly, model.Datetime:
		format := r.m.Facets(n.Handle).Format
		if err := checkTemporal(n.Metatype, format, lit); err != nil {
			return RenderedValue{}, &ExampleMismatchError{Type: n.Name, Path: path, Reason: fmt.Sprintf("%q is not a valid %s", s.Value, n.Metatype), Cause: err}
		}
		return RenderedValue{Kind: StringKind, Str: lit}, nil
	default:
		// string and file
		return RenderedValue{Kind: StringKind, Str: s.Value}, nil
	}
}

func (r *renderer) object(n *model.TypeNode, ex raml.ExampleValue, path string) (RenderedValue, error) {
	st, ok := structured(ex).(raml.Structure)
	if !ok {
		return RenderedValue{}, r.mismatch(n, path, "expected an object, got %s", shape(ex))
	}
	// additionalProperties defaults to true.
	closed := r.m.Facets(n.Handle).AdditionalProperties
	additional := closed == nil || *closed

	out := RenderedValue{Kind: ObjectKind, Fields: make([]Field, 0, len(st.Fields))}
	for _, f := range st.Fields {
		fp := path + "." + f.Name
		var (
			v   RenderedValue
			err error
		)
		if p, found := n.Property(f.Name); found {
			v, err = r.render(p.Type, f.Value, fp)
		} else if pp, found := r.patternProperty(n, f.Name); found {
			v, err = r.render(pp.Type, f.Value, fp)
		} else if additional {
			v, err = r.any(f.Value, fp)
		} else {
			return RenderedValue{}, r.mismatch(n, fp, "%q is not a property of %s", f.Name, n.Name)
		}
		if err != nil {
			return RenderedValue{}, err
		}
		out.Fields = append(out.Fields, Field{Name: f.Name, Value: v})
	}
	return out, nil
}

func (r *renderer) patternProperty(n *model.TypeNode, name string) (model.Property, bool) {
	for _, p := range n.EffectiveProperties() {
		if !p.Pattern {
			continue
		}
		re, ok := r.patterns[p.Name]
		if !ok {
			re, _ = regexp.Compile(p.Name)
			r.patterns[p.Name] = re
		}
		if re != nil && re.MatchString(name) {
			return p, true
		}
	}
	return model.Property{}, false
}

func (r *renderer) array(n *model.TypeNode, ex raml.ExampleValue, path string) (RenderedValue, error) {
	seq, ok := structured(ex).(raml.Sequence)
	if !ok {
		return RenderedValue{}, r.mismatch(n, path, "expected an array, got %s", shape(ex))
	}
	out := RenderedValue{Kind: ArrayKind, Items: make([]RenderedValue, 0, len(seq.Items))}
	for i, item := range seq.Items {
		v, err := r.render(n.Items, item, path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return RenderedValue{}, err
		}
		out.Items = append(out.Items, v)
	}
	return out, nil
}

func (r *renderer) union(n *model.TypeNode, ex raml.ExampleValue, path string) (RenderedValue, error) {
	var first error
	for _, member := range n.Members {
		v, err := r.render(member, ex, path)
		if err == nil {
			return v, nil
		}
		if first == nil {
			first = err
		}
	}
	return RenderedValue{}, &ExampleMismatchError{Type: n.Name, Path: path, Reason: "example matches no member of the union", Cause: first}
}

func (r *renderer) any(ex raml.ExampleValue, path string) (RenderedValue, error) {
	switch v := ex.(type) {
	case raml.Scalar:
		return inferScalar(v), nil
	case raml.Sequence:
		out := RenderedValue{Kind: ArrayKind, Items: make([]RenderedValue, 0, len(v.Items))}
		for i, item := range v.Items {
			iv, err := r.any(item, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return RenderedValue{}, err
			}
			out.Items = append(out.Items, iv)
		}
		return out, nil
	case raml.Structure:
		out := RenderedValue{Kind: ObjectKind, Fields: make([]Field, 0, len(v.Fields))}
		for _, f := range v.Fields {
			fv, err := r.any(f.Value, path+"."+f.Name)
			if err != nil {
				return RenderedValue{}, err
			}
			out.Fields = append(out.Fields, Field{Name: f.Name, Value: fv})
		}
		return out, nil
	default:
		return Null, nil
	}
}

func inferScalar(s raml.Scalar) RenderedValue {
	switch s.Tag {
	case "!!null":
		return Null
	case "!!bool":
		return RenderedValue{Kind: BooleanKind, Bool: strings.EqualFold(s.Value, "true")}
	case "!!int":
		if i, err := parseInteger(s.Value); err == nil {
			return RenderedValue{Kind: IntegerKind, Int: i}
		}
		if f, err := parseNumber(s.Value); err == nil {
			return RenderedValue{Kind: NumberKind, Float: f}
		}
	case "!!float":
		if f, err := parseNumber(s.Value); err == nil {
			return RenderedValue{Kind: NumberKind, Float: f}
		}
	}
	return RenderedValue{Kind: StringKind, Str: s.Value}
}

// structured decodes a string example written as JSON or YAML text when an
// object or array is expected.
func structured(ex raml.ExampleValue) raml.ExampleValue {
	s, ok := ex.(raml.Scalar)
	if !ok {
		return ex
	}
	text := strings.TrimSpace(s.Value)
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return ex
	}
	v, err := raml.ParseExampleText(text)
	if err != nil {
		return ex
	}
	return v
}

func shape(ex raml.ExampleValue) string {
	switch ex.(type) {
	case raml.Sequence:
		return "a sequence"
	case raml.Structure:
		return "a structure"
	default:
		return "a scalar"
	}
}

func enumContains(values []model.EnumValue, lit string) bool {
	for _, v := range values {
		if v.Name == lit {
			return true
		}
	}
	return false
}

// parseInteger accepts decimal literals and the YAML hex and octal forms;
// fractions and exponents are rejected.
func parseInteger(lit string) (int64, error) {
	lit = strings.ReplaceAll(strings.TrimPrefix(lit, "+"), "_", "")
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return i, nil
	}
	switch {
	case strings.HasPrefix(lit, "0x"), strings.HasPrefix(lit, "0o"), strings.HasPrefix(lit, "-0x"), strings.HasPrefix(lit, "-0o"):
		return strconv.ParseInt(lit, 0, 64)
	}
	return 0, fmt.Errorf("invalid integer literal %q", lit)
}

func parseNumber(lit string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(lit, "_", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%q is not a finite number", lit)
	}
	return f, nil
}

const (
	layoutDate         = "2006-01-02"
	layoutTime         = "15:04:05"
	layoutDatetimeOnly = "2006-01-02T15:04:05"
)

// checkTemporal validates a literal against the RAML date/time formats.
// Fractional seconds are accepted by the time layouts when parsing.
func checkTemporal(mt model.Metatype, format, lit string) error {
	var err error
	switch mt {
	case model.DateOnly:
		_, err = time.Parse(layoutDate, lit)
	case model.TimeOnly:
		_, err = time.Parse(layoutTime, lit)
	case model.DatetimeOnly:
		_, err = time.Parse(layoutDatetimeOnly, lit)
	case model.Datetime:
		if strings.EqualFold(format, "rfc2616") {
			_, err = time.Parse(time.RFC1123, lit)
		} else {
			_, err = time.Parse(time.RFC3339, lit)
		}
	}
	return err
}
