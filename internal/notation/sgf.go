package notation

import (
	"fmt"
	"strings"
)

// Property is one SGF property: an identifier and its values, e.g. AB[aa][bb].
type Property struct {
	ID     string
	Values []string
}

// Node is an SGF node, a ';' followed by properties in written order.
type Node struct {
	Properties []Property
}

// Get returns the first value of property id.
func (n Node) Get(id string) (string, bool) {
	for _, p := range n.Properties {
		if p.ID == id && len(p.Values) > 0 {
			return p.Values[0], true
		}
	}
	return "", false
}

// Add appends a property with a single value.
func (n *Node) Add(id, value string) {
	n.Properties = append(n.Properties, Property{ID: id, Values: []string{value}})
}

// GameTree is the main line of an SGF collection. Variations are not used by
// Hex records and are rejected by the parser.
type GameTree struct {
	Nodes []Node
}

// String serializes the tree, e.g. "(;FF[4]SZ[4];B[a1])".
func (t *GameTree) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, node := range t.Nodes {
		sb.WriteByte(';')
		for _, p := range node.Properties {
			sb.WriteString(p.ID)
			for _, v := range p.Values {
				sb.WriteByte('[')
				sb.WriteString(escape(v))
				sb.WriteByte(']')
			}
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func escape(v string) string {
	if !strings.ContainsAny(v, `]\`) {
		return v
	}
	var sb strings.Builder
	for _, r := range v {
		if r == ']' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Parse reads a single game tree without variations.
func Parse(s string) (*GameTree, error) {
	p := &parser{src: s}
	tree, err := p.parseTree()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing data")
	}
	return tree, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: offset %d: %s", errSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, bool) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) parseTree() (*GameTree, error) {
	if c, ok := p.peek(); !ok || c != '(' {
		return nil, p.errorf("expected '('")
	}
	p.pos++

	tree := &GameTree{}
	for {
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated game tree")
		}
		switch c {
		case ';':
			p.pos++
			node, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			tree.Nodes = append(tree.Nodes, node)
		case ')':
			p.pos++
			if len(tree.Nodes) == 0 {
				return nil, p.errorf("game tree has no nodes")
			}
			return tree, nil
		case '(':
			return nil, p.errorf("variations are not supported")
		default:
			return nil, p.errorf("unexpected character %q", c)
		}
	}
}

func (p *parser) parseNode() (Node, error) {
	var node Node
	for {
		c, ok := p.peek()
		if !ok || c < 'A' || c > 'Z' {
			return node, nil
		}
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= 'A' && p.src[p.pos] <= 'Z' {
			p.pos++
		}
		prop := Property{ID: p.src[start:p.pos]}

		for {
			c, ok := p.peek()
			if !ok || c != '[' {
				break
			}
			p.pos++
			value, err := p.parseValue()
			if err != nil {
				return node, err
			}
			prop.Values = append(prop.Values, value)
		}
		if len(prop.Values) == 0 {
			return node, p.errorf("property %s has no value", prop.ID)
		}
		node.Properties = append(node.Properties, prop)
	}
}

func (p *parser) parseValue() (string, error) {
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errorf("dangling escape")
			}
			sb.WriteByte(p.src[p.pos])
			p.pos++
		case ']':
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated property value")
}
