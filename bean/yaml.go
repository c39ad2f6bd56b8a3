package bean

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlDocument mirrors the YAML document shape. Decoding runs with
// KnownFields, so misspelled keys are reported instead of silently dropped.
type yamlDocument struct {
	Beans   []yamlBean        `yaml:"beans"`
	Aliases map[string]string `yaml:"aliases"`
}

type yamlBean struct {
	ID            string         `yaml:"id"`
	Class         string         `yaml:"class"`
	Scope         string         `yaml:"scope"`
	LazyInit      bool           `yaml:"lazy-init"`
	DependsOn     []string       `yaml:"depends-on"`
	Autowire      string         `yaml:"autowire"`
	InitMethod    string         `yaml:"init-method"`
	DestroyMethod string         `yaml:"destroy-method"`
	Args          []yamlArg      `yaml:"constructor-args"`
	Properties    []yamlProperty `yaml:"properties"`
}

type yamlArg struct {
	Ref   string  `yaml:"ref"`
	Value *string `yaml:"value"`
}

type yamlProperty struct {
	Name  string  `yaml:"name"`
	Ref   string  `yaml:"ref"`
	Value *string `yaml:"value"`
}

// ParseYAML reads a beans document from r and validates it.
//
// Scalar values keep their literal text, quoted or not. The exception is an
// unquoted null (or a bare "value:"), which counts as no value at all; quote
// it to pass the four-letter word.
func ParseYAML(r io.Reader) (*Definitions, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty file is an empty set of definitions.
			return &Definitions{}, nil
		}
		return nil, fmt.Errorf("bean: parsing yaml: %w", err)
	}

	ds := &Definitions{Beans: make([]Definition, 0, len(doc.Beans))}
	for _, b := range doc.Beans {
		def := Definition{
			ID:            b.ID,
			Class:         b.Class,
			Scope:         Scope(b.Scope),
			LazyInit:      b.LazyInit,
			DependsOn:     b.DependsOn,
			Autowire:      Autowire(b.Autowire),
			InitMethod:    b.InitMethod,
			DestroyMethod: b.DestroyMethod,
		}
		for _, a := range b.Args {
			def.Args = append(def.Args, Arg{
				Ref:      a.Ref,
				Value:    deref(a.Value),
				HasValue: a.Value != nil,
			})
		}
		for _, p := range b.Properties {
			def.Properties = append(def.Properties, Property{
				Name:     p.Name,
				Ref:      p.Ref,
				Value:    deref(p.Value),
				HasValue: p.Value != nil,
			})
		}
		ds.Beans = append(ds.Beans, def)
	}
	if len(doc.Aliases) > 0 {
		ds.Aliases = doc.Aliases
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}
