package yamlhost

import (
	"gopkg.in/yaml.v3"

	"github.com/sirkon/trylower/internal/tir"
)

// unresolved is the err value of a call whose error type is unknown.
const unresolved = "?"

type callDecl struct {
	Ok   string  `yaml:"ok"`
	Err  *string `yaml:"err"`
	Type string  `yaml:"type"`
}

func (p *parser) calls(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return p.errorf(n, "calls must be a mapping")
	}

	for i := 0; i < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]

		var decl callDecl
		if err := value.Decode(&decl); err != nil {
			return p.errorf(value, "call %s: %s", key.Value, err)
		}

		switch {
		case decl.Err != nil && decl.Type != "":
			return p.errorf(value, "call %s: type is for plain calls, use ok with err", key.Value)
		case decl.Err != nil:
			errType := tir.Type(*decl.Err)
			if *decl.Err == unresolved {
				errType = tir.NoType
			}
			p.types.Fallible(key.Value, typeOrUnit(decl.Ok), errType)
		case decl.Ok != "":
			return p.errorf(value, "call %s: ok without err, use type for plain calls", key.Value)
		default:
			p.types.Plain(key.Value, typeOrUnit(decl.Type))
		}
	}

	return nil
}

func (p *parser) assignable(n *yaml.Node) error {
	var pairs [][]string
	if err := n.Decode(&pairs); err != nil {
		return p.errorf(n, "%s", err)
	}

	for i, pair := range pairs {
		if len(pair) != 2 {
			return p.errorf(n.Content[i], "[from, to] pair expected, got %d items", len(pair))
		}
		p.types.AllowAssign(tir.Type(pair[0]), tir.Type(pair[1]))
	}

	return nil
}

func typeOrUnit(name string) tir.Type {
	if name == "" {
		return tir.Unit
	}

	return tir.Type(name)
}
