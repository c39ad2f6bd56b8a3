package bean

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// xmlDocument mirrors the on-disk <beans> schema. Unknown elements and
// attributes are ignored by the decoder; a wrong root element is an error.
type xmlDocument struct {
	XMLName xml.Name   `xml:"beans"`
	Beans   []xmlBean  `xml:"bean"`
	Aliases []xmlAlias `xml:"alias"`
}

type xmlBean struct {
	ID            string        `xml:"id,attr"`
	Class         string        `xml:"class,attr"`
	Scope         string        `xml:"scope,attr"`
	LazyInit      bool          `xml:"lazy-init,attr"`
	DependsOn     string        `xml:"depends-on,attr"`
	Autowire      string        `xml:"autowire,attr"`
	InitMethod    string        `xml:"init-method,attr"`
	DestroyMethod string        `xml:"destroy-method,attr"`
	Args          []xmlArg      `xml:"constructor-arg"`
	Properties    []xmlProperty `xml:"property"`
}

// value attributes are pointers so an explicit value="" stays
// distinguishable from an absent attribute.
type xmlArg struct {
	Ref   string  `xml:"ref,attr"`
	Value *string `xml:"value,attr"`
}

type xmlProperty struct {
	Name  string  `xml:"name,attr"`
	Ref   string  `xml:"ref,attr"`
	Value *string `xml:"value,attr"`
}

type xmlAlias struct {
	Name  string `xml:"name,attr"`
	Alias string `xml:"alias,attr"`
}

// ParseXML reads a <beans> document from r and validates it.
func ParseXML(r io.Reader) (*Definitions, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("bean: parsing xml: %w", err)
	}

	ds := &Definitions{Beans: make([]Definition, 0, len(doc.Beans))}
	for _, b := range doc.Beans {
		def := Definition{
			ID:            b.ID,
			Class:         b.Class,
			Scope:         Scope(b.Scope),
			LazyInit:      b.LazyInit,
			DependsOn:     splitNames(b.DependsOn),
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
		ds.Aliases = make(map[string]string, len(doc.Aliases))
		for _, a := range doc.Aliases {
			if _, dup := ds.Aliases[a.Alias]; dup {
				return nil, ValidationError{Errs: []error{DuplicateBeanError{Name: a.Alias}}}
			}
			ds.Aliases[a.Alias] = a.Name
		}
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// splitNames splits a depends-on attribute on commas, semicolons, and
// whitespace.
func splitNames(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
