package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/gneedle/internal/assembly"
	"github.com/funvibe/gneedle/internal/config"
)

// TypeName is a parsed runtime rendering of a type, such as
//
//	System.Collections.Generic.Dictionary`2[System.Int32,System.String]
//	System.Collections.Generic.List`1[[System.Int32, System.Private.CoreLib, Version=8.0.0.0]]
//	System.Int32[], System.Private.CoreLib
type TypeName struct {
	// Name is the namespace-qualified metadata name with '+' between nested types.
	Name string
	Args []*TypeName
	// Suffix holds array, pointer and by-ref decorations ("[]", "[,]", "*", "&").
	Suffix string
	// Assembly is the assembly qualification, empty when absent.
	Assembly string
}

// ParseTypeName parses a bracketed (runtime) or angle-bracketed (IL)
// rendering. Arguments may be bare or wrapped in brackets with an assembly
// qualification. Inside a bare bracketed argument a comma starts an
// assembly qualification only when the rest of the argument is a display
// name with properties; otherwise it starts the next argument. Angle
// bracket lists never carry qualifications.
func ParseTypeName(s string) (*TypeName, error) {
	p := &typeNameParser{src: s}
	p.skipSpace()
	tn, err := p.parse(true, "")
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	return tn, nil
}

// Strip returns a copy without any assembly qualification.
func (tn *TypeName) Strip() *TypeName {
	stripped := &TypeName{Name: tn.Name, Suffix: tn.Suffix}
	if len(tn.Args) > 0 {
		stripped.Args = make([]*TypeName, len(tn.Args))
		for i, arg := range tn.Args {
			stripped.Args[i] = arg.Strip()
		}
	}
	return stripped
}

// String renders the bracketed runtime form. Qualified arguments are
// wrapped in their own brackets.
func (tn *TypeName) String() string {
	var sb strings.Builder
	tn.write(&sb)
	if tn.Assembly != "" {
		sb.WriteString(", ")
		sb.WriteString(tn.Assembly)
	}
	return sb.String()
}

func (tn *TypeName) write(sb *strings.Builder) {
	sb.WriteString(tn.Name)
	if len(tn.Args) > 0 {
		sb.WriteByte('[')
		for i, arg := range tn.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			if arg.Assembly != "" {
				sb.WriteByte('[')
				sb.WriteString(arg.String())
				sb.WriteByte(']')
			} else {
				arg.write(sb)
			}
		}
		sb.WriteByte(']')
	}
	sb.WriteString(tn.Suffix)
}

type typeNameParser struct {
	src string
	pos int
}

func (p *typeNameParser) done() bool { return p.pos >= len(p.src) }

func (p *typeNameParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeNameParser) peekAt(offset int) byte {
	if p.pos+offset >= len(p.src) {
		return 0
	}
	return p.src[p.pos+offset]
}

func (p *typeNameParser) skipSpace() {
	for !p.done() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *typeNameParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrInvalidTypeName, fmt.Sprintf(format, args...), p.pos, p.src)
}

// parse reads one type name. qualified allows a trailing assembly
// qualification; closer is the bracket that ends the enclosing argument.
func (p *typeNameParser) parse(qualified bool, closer string) (*TypeName, error) {
	tn := &TypeName{}
	start := p.pos
	for !p.done() && !strings.ContainsRune("[]<>,*&", rune(p.peek())) {
		p.pos++
	}
	name := strings.TrimSpace(p.src[start:p.pos])
	if name == "" {
		return nil, p.errorf("missing type name")
	}
	tn.Name = strings.ReplaceAll(name, string(config.ILNestedSeparator), string(config.NestedSeparator))

	if c := p.peek(); (c == '[' || c == '<') && !isArrayRank(p.peekAt(1)) {
		if err := p.parseArgs(tn); err != nil {
			return nil, err
		}
	}
	if err := p.parseSuffix(tn); err != nil {
		return nil, err
	}

	p.skipSpace()
	if qualified && p.peek() == ',' {
		p.pos++
		tn.Assembly = p.readUntil(closer)
		if tn.Assembly == "" {
			return nil, p.errorf("empty assembly qualification")
		}
	}
	return tn, nil
}

func (p *typeNameParser) parseArgs(tn *TypeName) error {
	closer := "]"
	if p.peek() == '<' {
		closer = ">"
	}
	p.pos++
	for {
		p.skipSpace()
		var arg *TypeName
		var err error
		if p.peek() == '[' {
			p.pos++
			p.skipSpace()
			arg, err = p.parse(true, "]")
			if err != nil {
				return err
			}
			if p.peek() != ']' {
				return p.errorf("expected ']'")
			}
			p.pos++
		} else {
			arg, err = p.parse(false, closer)
			if err != nil {
				return err
			}
			if closer == "]" && p.peek() == ',' {
				if qualification, ok := p.assemblyAhead(closer); ok {
					arg.Assembly = qualification
				}
			}
		}
		tn.Args = append(tn.Args, arg)

		p.skipSpace()
		switch c := p.peek(); {
		case c == ',':
			p.pos++
		case string(c) == closer:
			p.pos++
			return nil
		default:
			return p.errorf("expected ',' or %q", closer)
		}
	}
}

func (p *typeNameParser) parseSuffix(tn *TypeName) error {
	for {
		switch c := p.peek(); {
		case c == '*' || c == '&':
			tn.Suffix += string(c)
			p.pos++
		case c == '[' && isArrayRank(p.peekAt(1)):
			start := p.pos
			p.pos++
			for p.peek() == ',' || p.peek() == '*' {
				p.pos++
			}
			if p.peek() != ']' {
				return p.errorf("unterminated array rank")
			}
			p.pos++
			tn.Suffix += p.src[start:p.pos]
		default:
			return nil
		}
	}
}

// assemblyAhead checks whether the text after the comma at the current
// position, up to closer, is an assembly display name carrying at least one
// property ("Asm, Version=..."). If so it is consumed and returned.
// Otherwise nothing is consumed and the comma separates arguments.
func (p *typeNameParser) assemblyAhead(closer string) (string, bool) {
	rest := p.src[p.pos+1:]
	end := strings.Index(rest, closer)
	if end < 0 {
		return "", false
	}
	candidate := strings.TrimSpace(rest[:end])
	if !strings.Contains(candidate, "=") || strings.ContainsAny(candidate, "[]<>") {
		return "", false
	}
	if _, err := assembly.Parse(candidate); err != nil {
		return "", false
	}
	p.pos += 1 + end
	return candidate, true
}

// readUntil consumes text up to the closer (not included) or the end of
// input and returns it trimmed.
func (p *typeNameParser) readUntil(closer string) string {
	start := p.pos
	for !p.done() && (closer == "" || string(p.peek()) != closer) {
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

func isArrayRank(c byte) bool {
	return c == ']' || c == ',' || c == '*'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
