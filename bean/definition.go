package bean

import (
	"fmt"
	"sort"
	"strings"
)

// Scope controls how many instances a definition yields.
type Scope string

const (
	// ScopeSingleton beans are created once and cached by the container.
	ScopeSingleton Scope = "singleton"

	// ScopePrototype beans are created anew on every lookup.
	ScopePrototype Scope = "prototype"
)

// Autowire selects how unset fields are filled after explicit injection.
type Autowire string

const (
	// AutowireNone disables autowiring; only declared args and properties
	// are injected. This is the default.
	AutowireNone Autowire = "no"

	// AutowireByName fills unset exported fields from beans whose name
	// matches the field name.
	AutowireByName Autowire = "byName"

	// AutowireByType fills unset exported fields from the single
	// definition whose class is assignable to the field type.
	AutowireByType Autowire = "byType"
)

// Arg is one positional constructor argument: a reference to another bean
// or a literal value, never both.
type Arg struct {
	// Ref names another bean in the same document.
	Ref string

	// Value is a literal, resolved for ${...} placeholders before use.
	Value string

	// HasValue records that Value was given explicitly, keeping an empty
	// literal distinguishable from an absent one.
	HasValue bool
}

// Property is one named injection target, filled after construction through
// a Set<Name> method or an exported field.
type Property struct {
	// Name of the setter or field, matched case-insensitively.
	Name string

	// Ref names another bean in the same document.
	Ref string

	// Value is a literal, resolved for ${...} placeholders before use.
	Value string

	// HasValue records that Value was given explicitly.
	HasValue bool
}

// Definition describes a single bean: which class to instantiate, how to
// construct it, and what to inject afterwards.
type Definition struct {
	// ID is the bean's unique name within the document.
	ID string

	// Class names a registered type or constructor (see Registry).
	Class string

	// Scope defaults to ScopeSingleton when empty.
	Scope Scope

	// LazyInit skips eager creation for singleton beans.
	LazyInit bool

	// DependsOn lists beans that must be created before this one.
	DependsOn []string

	// Autowire defaults to AutowireNone when empty.
	Autowire Autowire

	// InitMethod, when set, names a niladic method called once the bean is
	// fully injected. It may return an error.
	InitMethod string

	// DestroyMethod, when set, names a niladic method called on Close for
	// singleton beans. It may return an error.
	DestroyMethod string

	// Args are positional constructor arguments.
	Args []Arg

	// Properties are injections applied after construction.
	Properties []Property
}

// scope returns the effective scope.
func (d *Definition) scope() Scope {
	if d.Scope == "" {
		return ScopeSingleton
	}
	return d.Scope
}

// autowire returns the effective autowire mode.
func (d *Definition) autowire() Autowire {
	if d.Autowire == "" {
		return AutowireNone
	}
	return d.Autowire
}

// Definitions is an ordered bean document plus its aliases.
type Definitions struct {
	// Beans in document order. Order matters for eager creation and
	// reporting; references always resolve by name.
	Beans []Definition

	// Aliases maps an alternate name to the id (or alias) it stands for.
	Aliases map[string]string
}

// Validate checks the document's structure: unique non-empty names, known
// scope and autowire values, exactly one of ref/value per injection, and
// references that resolve within the document. Every problem found is
// collected into a single ValidationError.
//
// Validate does not consult a Registry; class names are checked when a
// container is built.
func (ds *Definitions) Validate() error {
	if ds == nil {
		return ErrNilDefinitions
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	// First pass collects ids so later references can be checked.
	ids := make(map[string]bool, len(ds.Beans))
	for i := range ds.Beans {
		d := &ds.Beans[i]
		if d.ID == "" {
			fail("bean: definition %d has empty id", i)
			continue
		}
		if ids[d.ID] {
			errs = append(errs, DuplicateBeanError{Name: d.ID})
			continue
		}
		ids[d.ID] = true
	}

	aliasNames := make([]string, 0, len(ds.Aliases))
	for alias := range ds.Aliases {
		aliasNames = append(aliasNames, alias)
	}
	sort.Strings(aliasNames)

	for _, alias := range aliasNames {
		target := ds.Aliases[alias]
		switch {
		case alias == "":
			fail("bean: alias with empty name (target %q)", target)
		case target == "":
			fail("bean: alias %q has empty target", alias)
		case ids[alias]:
			errs = append(errs, DuplicateBeanError{Name: alias})
		}
	}

	// Alias chains may point at other aliases but must reach a bean id.
	for _, alias := range aliasNames {
		if alias == "" || ds.Aliases[alias] == "" || ids[alias] {
			continue
		}
		cur := ds.Aliases[alias]
		for steps := 0; !ids[cur]; steps++ {
			next, ok := ds.Aliases[cur]
			if !ok {
				errs = append(errs, DanglingRefError{Bean: alias, Ref: cur, Where: "alias target"})
				break
			}
			if steps >= len(ds.Aliases) {
				fail("bean: alias %q never resolves to a bean id", alias)
				break
			}
			cur = next
		}
	}

	resolvable := func(name string) bool {
		if ids[name] {
			return true
		}
		_, ok := ds.Aliases[name]
		return ok
	}

	for i := range ds.Beans {
		d := &ds.Beans[i]
		id := d.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}

		if d.Class == "" {
			fail("bean: bean %q has empty class", id)
		}
		switch d.Scope {
		case "", ScopeSingleton, ScopePrototype:
		default:
			fail("bean: bean %q has unknown scope %q", id, d.Scope)
		}
		switch d.Autowire {
		case "", AutowireNone, AutowireByName, AutowireByType:
		default:
			fail("bean: bean %q has unknown autowire mode %q", id, d.Autowire)
		}

		for j, a := range d.Args {
			switch {
			case a.Ref != "" && a.HasValue:
				fail("bean: bean %q constructor-arg %d has both ref and value", id, j)
			case a.Ref == "" && !a.HasValue:
				fail("bean: bean %q constructor-arg %d needs a ref or a value", id, j)
			case a.Ref != "" && !resolvable(a.Ref):
				errs = append(errs, DanglingRefError{Bean: id, Ref: a.Ref, Where: "constructor-arg"})
			}
		}

		// Property names share one namespace with the case-insensitive
		// matching used at injection time.
		props := make(map[string]bool, len(d.Properties))
		for _, p := range d.Properties {
			if p.Name == "" {
				fail("bean: bean %q has a property with no name", id)
				continue
			}
			lower := strings.ToLower(p.Name)
			if props[lower] {
				fail("bean: bean %q sets property %q twice", id, p.Name)
			}
			props[lower] = true
			switch {
			case p.Ref != "" && p.HasValue:
				fail("bean: bean %q property %q has both ref and value", id, p.Name)
			case p.Ref == "" && !p.HasValue:
				fail("bean: bean %q property %q needs a ref or a value", id, p.Name)
			case p.Ref != "" && !resolvable(p.Ref):
				errs = append(errs, DanglingRefError{Bean: id, Ref: p.Ref, Where: "property"})
			}
		}

		for _, dep := range d.DependsOn {
			if dep == "" {
				fail("bean: bean %q has an empty depends-on entry", id)
				continue
			}
			if !resolvable(dep) {
				errs = append(errs, DanglingRefError{Bean: id, Ref: dep, Where: "depends-on"})
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return ValidationError{Errs: errs}
}
