package yamlhost

import (
	"fmt"
	"go/token"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sirkon/trylower/internal/tir"
)

// fields returns values of a mapping node by key. Keys outside of allowed
// and repeated keys are errors.
func (p *parser) fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "mapping expected")
	}

	res := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		key := n.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return nil, p.errorf(key, "unexpected key %q, expected one of %s", key.Value, strings.Join(allowed, ", "))
		}
		if _, ok := res[key.Value]; ok {
			return nil, p.errorf(key, "duplicate key %q", key.Value)
		}
		res[key.Value] = n.Content[i+1]
	}

	return res, nil
}

// scalar returns the value of a scalar node.
func (p *parser) scalar(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", p.errorf(n, "%s must be a scalar", what)
	}

	return n.Value, nil
}

func (p *parser) pos(n *yaml.Node) token.Pos {
	return p.at(n.Line, n.Column)
}

// span covers n with all its descendants. It ends at the last character of
// the first line of the last scalar.
func (p *parser) span(n *yaml.Node) tir.Span {
	last := n
	for len(last.Content) > 0 {
		last = last.Content[len(last.Content)-1]
	}

	value, _, _ := strings.Cut(last.Value, "\n")
	width := max(len(value)-1, 0)

	return tir.Span{
		From: p.pos(n),
		To:   p.at(last.Line, last.Column+width),
	}
}

func (p *parser) at(line, column int) token.Pos {
	if line < 1 || line > p.file.LineCount() {
		return token.NoPos
	}

	offset := p.file.Offset(p.file.LineStart(line)) + column - 1
	offset = min(max(offset, 0), p.file.Size())
	return p.file.Pos(offset)
}

func (p *parser) errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%d:%d: %s", n.Line, n.Column, fmt.Sprintf(format, args...))
}
