package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/gneedle/internal/clr"
	"github.com/funvibe/gneedle/internal/config"
	"github.com/funvibe/gneedle/internal/typesystem"
)

// exprNode is a parsed type expression: a chain of names, each optionally
// followed by an argument list. "List<int>.Enumerator" has two segments.
type exprNode struct {
	segments []exprSegment
}

type exprSegment struct {
	name string
	args []*exprNode
}

// bare reports whether the node is a lone identifier that could name a
// generic parameter.
func (n *exprNode) bare() bool {
	if len(n.segments) != 1 || len(n.segments[0].args) > 0 {
		return false
	}
	return !strings.ContainsAny(n.segments[0].name, ".`+")
}

func (n *exprNode) String() string {
	var sb strings.Builder
	for i, seg := range n.segments {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.name)
		if len(seg.args) > 0 {
			sb.WriteByte('<')
			for j, arg := range seg.args {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(arg.String())
			}
			sb.WriteByte('>')
		}
	}
	return sb.String()
}

// ParseExpr parses a C#-like type expression and resolves it against the
// catalog:
//
//	int                          System.Int32
//	Dictionary<TKey, int>        TKey stays a generic parameter
//	List<int>.Enumerator         nested type of an instantiation
//	System.Collections.Generic.List`1+Enumerator<int>
//
// Identifiers that resolve to no type become generic parameters when they
// appear in an argument list. At the top level they are an error.
func (c *Catalog) ParseExpr(src string) (typesystem.Type, error) {
	p := &exprParser{src: src}
	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return c.resolve(node, false)
}

func (c *Catalog) resolve(node *exprNode, argument bool) (typesystem.Type, error) {
	def, args, err := c.resolveDefinition(node)
	if err != nil {
		var unknown *UnknownTypeError
		if argument && node.bare() && errors.As(err, &unknown) {
			return typesystem.NewGenericParameterType(node.segments[0].name)
		}
		return nil, err
	}

	if len(args) == 0 {
		return typesystem.FromHandle(def)
	}
	types := make([]typesystem.Type, len(args))
	for i, arg := range args {
		if types[i], err = c.resolve(arg, true); err != nil {
			return nil, err
		}
	}
	if !def.IsGenericTypeDefinition() {
		return nil, typesystem.NewGenericShapeError(def.FullName())
	}
	return typesystem.NewGenericType(def, types...)
}

// resolveDefinition walks the segments down to the named definition and
// collects the arguments given along the way, outermost first.
func (c *Catalog) resolveDefinition(node *exprNode) (*clr.Type, []*exprNode, error) {
	var (
		def  *clr.Type
		args []*exprNode
	)
	for i, seg := range node.segments {
		name := seg.name
		if len(seg.args) > 0 && !strings.ContainsRune(name, config.ArityMarker) {
			name += string(config.ArityMarker) + strconv.Itoa(len(seg.args))
		}
		var ok bool
		if i == 0 {
			def, ok = c.Resolve(name)
		} else {
			ok = true
			for _, part := range strings.Split(name, ".") {
				if def, ok = c.Lookup(def.FullName() + string(config.NestedSeparator) + part); !ok {
					break
				}
			}
		}
		if !ok {
			return nil, nil, NewUnknownTypeError(node.String())
		}
		args = append(args, seg.args...)
	}
	return def, args, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) done() bool { return p.pos >= len(p.src) }

func (p *exprParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) skipSpace() {
	for !p.done() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %q at offset %d: %s", typesystem.ErrInvalidTypeName, p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) parseNode() (*exprNode, error) {
	node := &exprNode{}
	for {
		p.skipSpace()
		name := p.ident()
		if name == "" {
			if p.done() {
				return nil, p.errorf("missing type name")
			}
			return nil, p.errorf("unexpected %q", p.peek())
		}
		seg := exprSegment{name: name}
		p.skipSpace()
		if p.peek() == '<' {
			p.pos++
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			seg.args = args
		}
		node.segments = append(node.segments, seg)

		// A dot after an argument list continues with a nested type. Dots
		// inside an identifier were consumed by ident.
		if len(seg.args) == 0 || p.peek() != '.' {
			return node, nil
		}
		p.pos++
	}
}

func (p *exprParser) parseArgs() ([]*exprNode, error) {
	var args []*exprNode
	for {
		arg, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return args, nil
		case 0:
			return nil, p.errorf("unterminated argument list")
		default:
			return nil, p.errorf("unexpected %q", p.peek())
		}
	}
}

// ident reads a possibly qualified name: letters, digits, '_', '.', the
// arity marker and the nested separator.
func (p *exprParser) ident() string {
	start := p.pos
	for !p.done() {
		c := p.src[p.pos]
		if c == '_' || c == '.' || c == config.ArityMarker || c == config.NestedSeparator ||
			('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || c >= 0x80 {
			p.pos++
			continue
		}
		break
	}
	return strings.Trim(p.src[start:p.pos], ".")
}
