// Package specpath provides the path expression language used by overlay targets.
//
// The grammar is deliberately closed: it covers exactly what overlay authors
// need to address nodes in a JSON-RPC specification document and nothing more,
// so every production can be validated and tested exhaustively.
//
// Supported syntax:
//   - $ (root)
//   - .field or ['field'] (child access)
//   - [0] (array index, negative counts from the end)
//   - [?(@.field=='value')] (single-field equality predicate)
//
// Unlike a general JSONPath evaluator, resolution yields mutation handles:
// each match records the parent container and the key or index within it,
// which is what a patching engine needs to replace or splice the node.
package specpath

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Path represents a parsed path expression.
type Path struct {
	raw      string
	segments []segment
}

// String returns the original path expression.
func (p *Path) String() string {
	return p.raw
}

// segment is a single step in a path expression.
type segment interface {
	// segmentType returns a string identifying the segment type for debugging.
	segmentType() string
}

// childSegment selects a child property (.field or ['field']).
type childSegment struct {
	Key string
}

func (s childSegment) segmentType() string { return "child" }

// indexSegment selects an array element ([n]).
type indexSegment struct {
	Index int
}

func (s indexSegment) segmentType() string { return "index" }

// filterSegment selects collection members whose field equals a literal ([?(@.f=='v')]).
type filterSegment struct {
	Field string
	Value any
}

func (s filterSegment) segmentType() string { return "filter" }

// Parse parses a path expression string into a Path.
//
// Examples:
//
//	Parse("$.methods")
//	Parse("$.methods[0].name")
//	Parse("$.methods[?(@.name=='eth_chainId')].examples[0]")
func Parse(expr string) (*Path, error) {
	if expr == "" {
		return nil, fmt.Errorf("specpath: empty expression")
	}

	p := &parser{input: expr}

	segments, err := p.parse()
	if err != nil {
		return nil, err
	}

	return &Path{
		raw:      expr,
		segments: segments,
	}, nil
}

// parser is the internal expression parser.
type parser struct {
	input string
	pos   int
}

func (p *parser) parse() ([]segment, error) {
	var segments []segment

	// Must start with $
	if !p.consume('$') {
		return nil, fmt.Errorf("specpath: expression must start with '$'")
	}

	for p.pos < len(p.input) {
		ch := p.peek()

		switch ch {
		case '.':
			p.advance()
			seg, err := p.parseDotSegment()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)

		case '[':
			p.advance()
			seg, err := p.parseBracketSegment()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)

		default:
			return nil, fmt.Errorf("specpath: unexpected character %q at position %d", ch, p.pos)
		}
	}

	return segments, nil
}

func (p *parser) parseDotSegment() (segment, error) {
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("specpath: unexpected end after '.'")
	}

	key := p.parseIdentifier()
	if key == "" {
		return nil, fmt.Errorf("specpath: expected identifier after '.' at position %d", p.pos)
	}

	return childSegment{Key: key}, nil
}

func (p *parser) parseBracketSegment() (segment, error) {
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("specpath: unexpected end after '['")
	}

	ch := p.peek()

	// Predicate: [?(@.field=='value')]
	if ch == '?' {
		p.advance()
		return p.parseFilterSegment()
	}

	// Quoted key: ['key'] or ["key"]
	if ch == '\'' || ch == '"' {
		quote := ch
		p.advance()
		key, err := p.parseQuotedString(quote)
		if err != nil {
			return nil, err
		}
		if !p.consume(']') {
			return nil, fmt.Errorf("specpath: expected ']' after quoted key")
		}
		return childSegment{Key: key}, nil
	}

	// Numeric index
	if unicode.IsDigit(rune(ch)) || ch == '-' {
		numStr := p.parseNumber()
		if !p.consume(']') {
			return nil, fmt.Errorf("specpath: expected ']' after index")
		}
		idx, err := strconv.Atoi(numStr)
		if err != nil {
			return nil, fmt.Errorf("specpath: invalid index %q: %w", numStr, err)
		}
		return indexSegment{Index: idx}, nil
	}

	return nil, fmt.Errorf("specpath: unexpected character %q in bracket at position %d", ch, p.pos)
}

func (p *parser) parseFilterSegment() (segment, error) {
	// Parenthesized form [?(...)] is canonical; bare [?@...] is accepted too.
	hadParen := p.consume('(')

	p.consume('@')

	if !p.consume('.') {
		return nil, fmt.Errorf("specpath: expected '@.' in predicate at position %d", p.pos)
	}

	field := p.parseIdentifier()
	if field == "" {
		return nil, fmt.Errorf("specpath: expected field name in predicate at position %d", p.pos)
	}

	p.skipWhitespace()

	if !p.consume('=') || !p.consume('=') {
		return nil, fmt.Errorf("specpath: expected '==' in predicate at position %d", p.pos)
	}

	p.skipWhitespace()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if hadParen {
		p.skipWhitespace()
		if !p.consume(')') {
			return nil, fmt.Errorf("specpath: expected ')' after predicate")
		}
	}

	if !p.consume(']') {
		return nil, fmt.Errorf("specpath: expected ']' after predicate")
	}

	return filterSegment{Field: field, Value: value}, nil
}

func (p *parser) parseIdentifier() string {
	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		// Allow alphanumeric, underscore, hyphen (method names use underscores)
		if isIdentChar(ch) {
			p.pos++
		} else {
			break
		}
	}
	return p.input[start:p.pos]
}

func (p *parser) parseQuotedString(quote byte) (string, error) {
	var result strings.Builder
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == quote {
			p.pos++
			return result.String(), nil
		}
		if ch == '\\' && p.pos+1 < len(p.input) {
			p.pos++
			escaped := p.input[p.pos]
			switch escaped {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case '\\':
				result.WriteByte('\\')
			case '\'':
				result.WriteByte('\'')
			case '"':
				result.WriteByte('"')
			default:
				result.WriteByte(escaped)
			}
			p.pos++
			continue
		}
		result.WriteByte(ch)
		p.pos++
	}
	return "", fmt.Errorf("specpath: unterminated string at position %d", p.pos)
}

func (p *parser) parseNumber() string {
	start := p.pos
	if p.pos < len(p.input) && p.input[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && unicode.IsDigit(rune(p.input[p.pos])) {
		p.pos++
	}
	// Decimal part
	if p.pos < len(p.input) && p.input[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.input) && unicode.IsDigit(rune(p.input[p.pos])) {
			p.pos++
		}
	}
	return p.input[start:p.pos]
}

func (p *parser) parseValue() (any, error) {
	p.skipWhitespace()

	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("specpath: expected value at position %d", p.pos)
	}

	ch := p.peek()

	// Quoted string
	if ch == '\'' || ch == '"' {
		quote := ch
		p.advance()
		return p.parseQuotedString(quote)
	}

	// Boolean
	if strings.HasPrefix(p.input[p.pos:], "true") {
		p.pos += 4
		return true, nil
	}
	if strings.HasPrefix(p.input[p.pos:], "false") {
		p.pos += 5
		return false, nil
	}

	// Number
	if unicode.IsDigit(rune(ch)) || ch == '-' {
		numStr := p.parseNumber()
		if strings.Contains(numStr, ".") {
			f, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return nil, fmt.Errorf("specpath: invalid number %q: %w", numStr, err)
			}
			return f, nil
		}
		i, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("specpath: invalid number %q: %w", numStr, err)
		}
		return i, nil
	}

	return nil, fmt.Errorf("specpath: unexpected character %q when parsing value at position %d", ch, p.pos)
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) advance() {
	if p.pos < len(p.input) {
		p.pos++
	}
}

func (p *parser) consume(ch byte) bool {
	if p.peek() == ch {
		p.advance()
		return true
	}
	return false
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_' || ch == '-'
}
