package model

import (
	"fmt"
	"strings"
)

// DuplicateTypeError reports a declaration whose name is already taken by a
// built-in or another declaration.
type DuplicateTypeError struct {
	Name    string
	Builtin bool
}

func (e *DuplicateTypeError) Error() string {
	if e.Builtin {
		return fmt.Sprintf("type %q redeclares a built-in type", e.Name)
	}
	return fmt.Sprintf("type %q is declared more than once", e.Name)
}

// UnresolvedReferenceError reports a reference to a name that is neither a
// built-in, a declared type, nor (when Param is set) a declared type
// parameter of the enclosing generic.
type UnresolvedReferenceError struct {
	Referrer string
	Missing  string
	Param    bool
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Param {
		return fmt.Sprintf("%s: undeclared type parameter %q", e.Referrer, e.Missing)
	}
	return fmt.Sprintf("%s: unresolved type reference %q", e.Referrer, e.Missing)
}

// CyclicInheritanceError reports a supertype chain that loops. Cycle lists
// the chain and repeats the first name at the end.
type CyclicInheritanceError struct {
	Cycle []string
}

func (e *CyclicInheritanceError) Error() string {
	return "cyclic inheritance: " + strings.Join(e.Cycle, " -> ")
}

// GenericArityError reports a generic reference with the wrong number of
// type arguments.
type GenericArityError struct {
	Referrer string
	Generic  string
	Want     int
	Got      int
}

func (e *GenericArityError) Error() string {
	return fmt.Sprintf("%s: generic type %q takes %d type argument(s), got %d", e.Referrer, e.Generic, e.Want, e.Got)
}
