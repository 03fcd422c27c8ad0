package directive

import (
	"go/scanner"
	"go/token"
	"strconv"

	"builder-generator/internal/analyze"
	"builder-generator/internal/diagnostic"
)

// Value is the right-hand side of a marker pair.
type Value struct {
	// Tok is the literal kind: token.STRING, token.INT, token.FLOAT,
	// token.CHAR, token.IMAG or token.IDENT.
	Tok token.Token
	// Lit is the literal as written.
	Lit string
}

// IsString reports whether the value is a string literal.
func (v Value) IsString() bool {
	return v.Tok == token.STRING
}

// String returns the unquoted value of a string literal, or Lit otherwise.
func (v Value) String() string {
	if v.Tok == token.STRING {
		if s, err := strconv.Unquote(v.Lit); err == nil {
			return s
		}
	}

	return v.Lit
}

// Pair is one key = value argument.
type Pair struct {
	Key      string
	Value    Value
	Location diagnostic.Location
	// ValueLocation points at the value literal.
	ValueLocation diagnostic.Location
}

// Marker is a parsed marker.
type Marker struct {
	Namespace string
	// HasArgs is false for a bare marker without parentheses.
	HasArgs  bool
	Pairs    []Pair
	Location diagnostic.Location
}

// ParseMarker parses raw if its namespace equals namespace. The boolean is
// false, with a nil error, for markers of any other namespace.
func ParseMarker(raw analyze.RawDirective, namespace string) (Marker, bool, error) {
	p := newMarkerParser(raw)

	pos, tok, lit := p.next()
	if tok != token.IDENT || lit != namespace {
		return Marker{}, false, nil
	}

	m := Marker{Namespace: lit, Location: p.loc(pos)}

	pos, tok, lit = p.next()
	switch tok {
	case token.EOF:
		return m, true, p.err
	case token.LPAREN:
		m.HasArgs = true
	default:
		return m, true, p.errorf(pos, "unexpected %s after %s", describe(tok, lit), namespace)
	}

	for {
		pos, tok, lit = p.next()
		if tok == token.RPAREN {
			if len(m.Pairs) > 0 {
				return m, true, p.errorf(pos, "expected key after ,, found %s", describe(tok, lit))
			}

			break
		}

		if tok != token.IDENT {
			return m, true, p.errorf(pos, "expected key, found %s", describe(tok, lit))
		}

		pair := Pair{Key: lit, Location: p.loc(pos)}

		pos, tok, lit = p.next()
		if tok != token.ASSIGN {
			return m, true, p.errorf(pos, "expected = after %s, found %s", pair.Key, describe(tok, lit))
		}

		value, valuePos, err := p.value()
		if err != nil {
			return m, true, err
		}

		pair.Value = value
		pair.ValueLocation = p.loc(valuePos)
		m.Pairs = append(m.Pairs, pair)

		pos, tok, lit = p.next()
		if tok == token.RPAREN {
			break
		}

		if tok != token.COMMA {
			return m, true, p.errorf(pos, "expected , or ), found %s", describe(tok, lit))
		}
	}

	if pos, tok, lit = p.next(); tok != token.EOF {
		return m, true, p.errorf(pos, "unexpected %s after )", describe(tok, lit))
	}

	return m, true, p.err
}

type markerParser struct {
	raw  analyze.RawDirective
	file *token.File
	sc   scanner.Scanner
	err  error
}

func newMarkerParser(raw analyze.RawDirective) *markerParser {
	src := []byte(raw.Text)

	fset := token.NewFileSet()
	p := &markerParser{raw: raw, file: fset.AddFile("", fset.Base(), len(src))}

	p.sc.Init(p.file, src, func(pos token.Position, msg string) {
		if p.err == nil {
			p.err = p.errorAt(pos.Offset, "%s", msg)
		}
	}, 0)

	return p
}

// next returns the next token, folding the automatic semicolon the scanner
// inserts at the end of input into EOF.
func (p *markerParser) next() (token.Pos, token.Token, string) {
	pos, tok, lit := p.sc.Scan()
	if tok == token.SEMICOLON && lit == "\n" {
		return pos, token.EOF, ""
	}

	return pos, tok, lit
}

func (p *markerParser) value() (Value, token.Pos, error) {
	pos, tok, lit := p.next()

	switch tok {
	case token.STRING, token.INT, token.FLOAT, token.IMAG, token.CHAR, token.IDENT:
		return Value{Tok: tok, Lit: lit}, pos, nil
	case token.SUB:
		_, numTok, numLit := p.next()
		if numTok == token.INT || numTok == token.FLOAT || numTok == token.IMAG {
			return Value{Tok: numTok, Lit: "-" + numLit}, pos, nil
		}

		return Value{}, pos, p.errorf(pos, "expected number after -, found %s", describe(numTok, numLit))
	default:
		return Value{}, pos, p.errorf(pos, "expected value, found %s", describe(tok, lit))
	}
}

// loc translates a position inside the marker text into a source location.
func (p *markerParser) loc(pos token.Pos) diagnostic.Location {
	return p.locAt(p.file.Offset(pos))
}

func (p *markerParser) locAt(offset int) diagnostic.Location {
	loc := p.raw.Location
	if loc.Column > 0 {
		// +1 accounts for the "+" stripped from the marker text.
		loc.Column += offset + 1
	}

	return loc
}

func (p *markerParser) errorf(pos token.Pos, format string, args ...any) error {
	if p.err != nil {
		return p.err
	}

	return p.errorAt(p.file.Offset(pos), format, args...)
}

func (p *markerParser) errorAt(offset int, format string, args ...any) error {
	return diagnostic.New(diagnostic.KindMalformedDirective, p.locAt(offset), format, args...)
}

func describe(tok token.Token, lit string) string {
	switch {
	case tok == token.EOF:
		return "end of marker"
	case lit != "":
		return strconv.Quote(lit)
	default:
		return strconv.Quote(tok.String())
	}
}
