package yamlhost

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sirkon/trylower/internal/hosttypes"
	"github.com/sirkon/trylower/internal/tir"
)

// Unit is a parsed compilation unit.
type Unit struct {
	Name  string
	Funcs []*tir.Func
	Types *hosttypes.Table
}

// Load reads and parses the unit file, registering it in fset.
func Load(fset *token.FileSet, path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}

	return Parse(fset, path, data)
}

// Parse parses unit data registered in fset under the given name.
func Parse(fset *token.FileSet, name string, data []byte) (*Unit, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode unit %s: %w", name, err)
	}

	file := fset.AddFile(name, -1, len(data))
	file.SetLinesForContent(data)

	p := &parser{
		file:  file,
		types: hosttypes.New(),
	}
	funcs, err := p.unit(&doc)
	if err != nil {
		return nil, fmt.Errorf("parse unit %s: %w", name, err)
	}

	return &Unit{
		Name:  name,
		Funcs: funcs,
		Types: p.types,
	}, nil
}

type parser struct {
	file  *token.File
	types *hosttypes.Table
}

func (p *parser) unit(doc *yaml.Node) ([]*tir.Func, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}

	fields, err := p.fields(doc.Content[0], "calls", "assignable", "functions")
	if err != nil {
		return nil, err
	}

	if n, ok := fields["calls"]; ok {
		if err := p.calls(n); err != nil {
			return nil, fmt.Errorf("calls: %w", err)
		}
	}
	if n, ok := fields["assignable"]; ok {
		if err := p.assignable(n); err != nil {
			return nil, fmt.Errorf("assignable: %w", err)
		}
	}

	n, ok := fields["functions"]
	if !ok {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, p.errorf(n, "functions must be a list")
	}

	res := make([]*tir.Func, 0, len(n.Content))
	for _, fn := range n.Content {
		f, err := p.function(fn)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}

	return res, nil
}
