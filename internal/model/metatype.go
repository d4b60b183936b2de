package model

import "sync"

// Metatype classifies every resolved type. The set is closed.
type Metatype int

const (
	Any Metatype = iota
	Null
	Boolean
	Number
	Integer
	String
	File
	TimeOnly
	Datetime
	DatetimeOnly
	DateOnly
	Object
	Array
	Union

	metatypeCount
)

var metatypeLiterals = [metatypeCount]string{
	Any:          "any",
	Null:         "null",
	Boolean:      "boolean",
	Number:       "number",
	Integer:      "integer",
	String:       "string",
	File:         "file",
	TimeOnly:     "time-only",
	Datetime:     "datetime",
	DatetimeOnly: "datetime-only",
	DateOnly:     "date",
	Object:       "object",
	Array:        "array",
	Union:        "union",
}

// literalTable maps built-in type names, including the RAML spellings
// "nil" and "date-only", to their metatype.
var literalTable = sync.OnceValue(func() map[string]Metatype {
	m := make(map[string]Metatype, metatypeCount+2)
	for mt, lit := range metatypeLiterals {
		m[lit] = Metatype(mt)
	}
	m["nil"] = Null
	m["date-only"] = DateOnly
	return m
})

// Literal returns the built-in type name of the metatype.
func (m Metatype) Literal() string {
	if m < 0 || m >= metatypeCount {
		return ""
	}
	return metatypeLiterals[m]
}

func (m Metatype) String() string { return m.Literal() }

// IsPrimitive reports whether values of the metatype are scalars.
func (m Metatype) IsPrimitive() bool {
	return m != Object && m != Array && m != Union && m != Any
}

// IsTemporal reports whether the metatype is one of the date/time kinds.
func (m Metatype) IsTemporal() bool {
	return m == TimeOnly || m == Datetime || m == DatetimeOnly || m == DateOnly
}

// LookupMetatype returns the metatype of a built-in type name.
func LookupMetatype(literal string) (Metatype, bool) {
	m, ok := literalTable()[literal]
	return m, ok
}

// IsBuiltin reports whether name denotes a built-in type rather than a
// user declared one.
func IsBuiltin(name string) bool {
	_, ok := LookupMetatype(name)
	return ok
}

// Metatypes returns all metatypes in declaration order.
func Metatypes() []Metatype {
	out := make([]Metatype, metatypeCount)
	for i := range out {
		out[i] = Metatype(i)
	}
	return out
}
