package raml

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseTypeExpr parses a RAML type expression such as "Person",
// "string[]", "Cat | Dog" or "(Cat | Dog)[]".
func ParseTypeExpr(src string) (TypeExpr, error) {
	p := &exprParser{src: src}
	p.skipSpace()
	if p.eof() {
		return nil, fmt.Errorf("empty type expression")
	}
	expr, err := p.union()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("type expression %q: unexpected %q at offset %d", src, p.src[p.pos:], p.pos)
	}
	return expr, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) eof() bool { return p.pos >= len(p.src) }

func (p *exprParser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) union() (TypeExpr, error) {
	first, err := p.array()
	if err != nil {
		return nil, err
	}
	members := []TypeExpr{first}
	for {
		p.skipSpace()
		if p.eof() || p.src[p.pos] != '|' {
			break
		}
		p.pos++
		next, err := p.array()
		if err != nil {
			return nil, err
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return first, nil
	}
	return UnionExpr{Members: members}, nil
}

func (p *exprParser) array() (TypeExpr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "[]") {
			return expr, nil
		}
		p.pos += 2
		expr = ArrayExpr{Elem: expr}
	}
}

func (p *exprParser) primary() (TypeExpr, error) {
	p.skipSpace()
	if p.eof() {
		return nil, fmt.Errorf("type expression %q: unexpected end", p.src)
	}
	if p.src[p.pos] == '(' {
		p.pos++
		inner, err := p.union()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.eof() || p.src[p.pos] != ')' {
			return nil, fmt.Errorf("type expression %q: missing ')'", p.src)
		}
		p.pos++
		return inner, nil
	}
	start := p.pos
	for !p.eof() && isNameRune(rune(p.src[p.pos])) {
		p.pos++
	}
	if start == p.pos {
		return nil, fmt.Errorf("type expression %q: unexpected %q at offset %d", p.src, p.src[p.pos:], p.pos)
	}
	return NameRef{Name: p.src[start:p.pos]}, nil
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'
}

// qualify rewrites names declared in a library to "alias.Name".
func qualify(expr TypeExpr, alias string, local map[string]bool) TypeExpr {
	switch e := expr.(type) {
	case NameRef:
		if local[e.Name] {
			return NameRef{Name: alias + "." + e.Name}
		}
		return e
	case ArrayExpr:
		return ArrayExpr{Elem: qualify(e.Elem, alias, local)}
	case UnionExpr:
		members := make([]TypeExpr, len(e.Members))
		for i, m := range e.Members {
			members[i] = qualify(m, alias, local)
		}
		return UnionExpr{Members: members}
	default:
		return expr
	}
}
