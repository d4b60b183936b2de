package example

import (
	"bytes"
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind is the concrete kind of a rendered value.
type Kind uint8

const (
	NullKind Kind = iota
	BooleanKind
	IntegerKind
	NumberKind
	StringKind
	ObjectKind
	ArrayKind
)

var kindNames = [...]string{"null", "boolean", "integer", "number", "string", "object", "array"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Field is one name/value pair of an object value.
type Field struct {
	Name  string
	Value RenderedValue
}

// RenderedValue is an example value after type-directed coercion. Only the
// fields matching Kind are set. Object fields keep the order of the example.
type RenderedValue struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Fields []Field
	Items  []RenderedValue
}

// Null is the rendered null value.
var Null = RenderedValue{Kind: NullKind}

// Lookup returns the value of the named field of an object value.
func (v RenderedValue) Lookup(name string) (RenderedValue, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return RenderedValue{}, false
}

// MarshalJSON encodes the value with object fields in example order.
func (v RenderedValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v RenderedValue) writeJSON(buf *bytes.Buffer) error {
	switch v.Kind {
	case NullKind:
		buf.WriteString("null")
	case BooleanKind:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case IntegerKind:
		buf.WriteString(strconv.FormatInt(v.Int, 10))
	case NumberKind:
		b, err := json.Marshal(v.Float)
		if err != nil {
			return err
		}
		buf.Write(b)
	case StringKind:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case ObjectKind:
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(f.Name)
			if err != nil {
				return err
			}
			buf.Write(name)
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case ArrayKind:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	return nil
}

// JSON returns the compact JSON encoding. It can be embedded in other
// encoded documents as a raw message.
func (v RenderedValue) JSON() json.RawMessage {
	b, err := v.MarshalJSON()
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

// PrettyJSON returns the JSON encoding indented by two spaces.
func (v RenderedValue) PrettyJSON() string {
	var out bytes.Buffer
	if err := json.Indent(&out, v.JSON(), "", "  "); err != nil {
		return string(v.JSON())
	}
	return out.String()
}

// MarshalYAML encodes the value as a YAML node tree, keeping field order.
func (v RenderedValue) MarshalYAML() (interface{}, error) {
	return v.Node(), nil
}

// Node returns the value as a YAML node.
func (v RenderedValue) Node() *yaml.Node {
	switch v.Kind {
	case BooleanKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool)}
	case IntegerKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Int, 10)}
	case NumberKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.Float, 'g', -1, 64)}
	case StringKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
	case ObjectKind:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range v.Fields {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
				f.Value.Node())
		}
		return n
	case ArrayKind:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items {
			n.Content = append(n.Content, item.Node())
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
