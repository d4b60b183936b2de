// Package names derives identifiers, file names and package names for
// generated artifacts from RAML type names, titles and enumeration values.
package names

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// clean turns every run of characters other than ASCII letters and digits
// into a single space, so that generic brackets and library dots separate
// words: "Response<Animal>" becomes "Response Animal".
func clean(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}), " ")
}

func digitGuard(s, prefix string) string {
	if s != "" && unicode.IsDigit([]rune(s)[0]) {
		return prefix + s
	}
	return s
}

// Pascal returns an upper camel case identifier: "Response<Animal>" becomes
// "ResponseAnimal", "pet-owner" becomes "PetOwner".
func Pascal(s string) string {
	return digitGuard(strcase.ToCamel(clean(s)), "_")
}

// Camel returns a lower camel case identifier.
func Camel(s string) string {
	return digitGuard(strcase.ToLowerCamel(clean(s)), "_")
}

// Kebab returns a lower case hyphenated name: "PetOwner" becomes "pet-owner".
func Kebab(s string) string {
	return strcase.ToKebab(clean(s))
}

// Snake returns a lower case underscored name.
func Snake(s string) string {
	return digitGuard(strcase.ToSnake(clean(s)), "_")
}

// Constant returns an upper snake case name for enumeration constants:
// "inProgress" becomes "IN_PROGRESS".
func Constant(s string) string {
	c := digitGuard(strcase.ToScreamingSnake(clean(s)), "_")
	if c == "" {
		return "EMPTY"
	}
	return c
}

// Escape appends an underscore to name when it is a reserved word.
func Escape(name string, reserved map[string]bool) string {
	if reserved[name] {
		return name + "_"
	}
	return name
}

// Slug derives a lower case, hyphen separated name from a title, e.g.
// "Pet Store API" becomes "pet-store-api".
func Slug(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	parts := strings.Fields(repl.Replace(t))
	b := strings.Builder{}
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('-')
		}
		for _, r := range p {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
				b.WriteRune(r)
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// NpmPackage sanitizes an npm package name: lower case letters, digits,
// dots, dashes and underscores.
func NpmPackage(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "-", "/", "-").Replace(name)
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-.")
}

// GoPackage sanitizes a Go package name: lower case letters and digits only.
func GoPackage(name string) string {
	b := strings.Builder{}
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return digitGuard(b.String(), "p")
}
