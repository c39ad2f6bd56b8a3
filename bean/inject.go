package bean

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// getBean resolves a name to an instance, creating it if needed. The
// container lock must be held; creation recurses through here for every
// reference, so the active-creation stack stays coherent.
func (c *Container) getBean(name string) (any, error) {
	id, ok := c.canonical(name)
	if !ok {
		return nil, NoSuchBeanError{Name: name}
	}
	def := c.byID[id]

	if def.scope() == ScopeSingleton {
		if v, ok := c.singletons[id]; ok {
			return v, nil
		}
	}

	for _, active := range c.creating {
		if active == id {
			return nil, CycleError{Path: append(append([]string{}, c.creating...), id)}
		}
	}
	c.creating = append(c.creating, id)
	defer func() { c.creating = c.creating[:len(c.creating)-1] }()

	v, err := c.create(def)
	if err != nil {
		return nil, CreationError{Bean: id, Err: err}
	}
	return v, nil
}

// create runs the full pipeline for one definition: depends-on, construct,
// expose, inject, init.
func (c *Container) create(def *Definition) (any, error) {
	for _, dep := range def.DependsOn {
		if _, err := c.getBean(dep); err != nil {
			return nil, err
		}
	}

	entry, ok := c.reg.lookup(def.Class)
	if !ok {
		return nil, UnknownClassError{Bean: def.ID, Class: def.Class}
	}

	inst, err := c.instantiate(def, entry)
	if err != nil {
		return nil, err
	}

	single := def.scope() == ScopeSingleton
	if single {
		// Expose the instance before properties are filled, so reference
		// cycles between singletons resolve to the same pointer instead
		// of failing.
		c.singletons[def.ID] = inst
		c.created = append(c.created, def.ID)
	}

	err = c.populate(def, inst)
	if err == nil {
		err = c.autowireFields(def, inst)
	}
	if err == nil {
		err = c.callInit(def, inst)
	}
	if err != nil {
		if single {
			delete(c.singletons, def.ID)
			for i, id := range c.created {
				if id == def.ID {
					c.created = append(c.created[:i], c.created[i+1:]...)
					break
				}
			}
		}
		return nil, err
	}

	c.log.Debug().
		Str("bean", def.ID).
		Str("class", def.Class).
		Str("scope", string(def.scope())).
		Msg("bean created")
	return inst, nil
}

// instantiate builds the raw instance. Definitions with constructor-args
// need a registered constructor; without args a zero-arg constructor is
// preferred, then a plain zero value of the registered type.
func (c *Container) instantiate(def *Definition, entry classEntry) (any, error) {
	if len(def.Args) > 0 {
		if entry.ctor == nil {
			return nil, MissingCtorError{Bean: def.ID, Class: def.Class}
		}
		return c.callCtor(def, entry.ctor)
	}
	if entry.ctor != nil && len(entry.ctor.params) == 0 {
		return c.callCtor(def, entry.ctor)
	}
	if entry.typ != nil {
		return reflect.New(entry.typ).Interface(), nil
	}
	return nil, ArgCountError{Bean: def.ID, Want: len(entry.ctor.params), Got: 0}
}

func (c *Container) callCtor(def *Definition, ctor *ctorInfo) (any, error) {
	if len(def.Args) != len(ctor.params) {
		return nil, ArgCountError{Bean: def.ID, Want: len(ctor.params), Got: len(def.Args)}
	}
	args := make([]reflect.Value, len(def.Args))
	for i, a := range def.Args {
		v, err := c.injectedValue(a.Ref, a.Value, ctor.params[i])
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	out := ctor.fn.Call(args)
	if ctor.hasErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// injectedValue resolves a ref or literal to the target type. Refs must be
// assignable; literals run through placeholder resolution and conversion.
func (c *Container) injectedValue(ref, literal string, target reflect.Type) (reflect.Value, error) {
	if ref != "" {
		dep, err := c.getBean(ref)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.ValueOf(dep)
		if !rv.Type().AssignableTo(target) {
			return reflect.Value{}, WrongBeanTypeError{Name: ref, Want: target.String(), Got: rv.Type().String()}
		}
		return rv, nil
	}
	resolved, err := resolvePlaceholders(literal, c.sources)
	if err != nil {
		return reflect.Value{}, err
	}
	return convertValue(resolved, target)
}

// populate applies the definition's properties through setters or exported
// fields.
func (c *Container) populate(def *Definition, inst any) error {
	rv := reflect.ValueOf(inst)
	for _, p := range def.Properties {
		if err := c.setProperty(def, rv, p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) setProperty(def *Definition, rv reflect.Value, p Property) error {
	// A Set<Name> method wins over a matching field.
	if m, ok := findSetter(rv, p.Name); ok {
		val, err := c.injectedValue(p.Ref, p.Value, m.Type().In(0))
		if err != nil {
			return err
		}
		out := m.Call([]reflect.Value{val})
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		c.log.Trace().Str("bean", def.ID).Str("property", p.Name).Msg("property set")
		return nil
	}
	if f, ok := findField(rv, p.Name); ok {
		val, err := c.injectedValue(p.Ref, p.Value, f.Type())
		if err != nil {
			return err
		}
		f.Set(val)
		c.log.Trace().Str("bean", def.ID).Str("property", p.Name).Msg("property set")
		return nil
	}
	return NoSuchPropertyError{Bean: def.ID, Property: p.Name}
}

// findSetter looks for a method named Set<name>, compared
// case-insensitively after the Set prefix, taking exactly one argument and
// returning nothing or an error.
func findSetter(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if len(m.Name) <= 3 || !strings.HasPrefix(m.Name, "Set") {
			continue
		}
		if !strings.EqualFold(m.Name[3:], name) {
			continue
		}
		mt := m.Type
		if mt.NumIn() != 2 { // receiver plus the value
			continue
		}
		switch mt.NumOut() {
		case 0:
		case 1:
			if mt.Out(0) != errType {
				continue
			}
		default:
			continue
		}
		return rv.Method(i), true
	}
	return reflect.Value{}, false
}

// findField matches an exported, settable struct field case-insensitively.
func findField(rv reflect.Value, name string) (reflect.Value, bool) {
	elem := rv.Elem()
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || !strings.EqualFold(f.Name, name) {
			continue
		}
		fv := elem.Field(i)
		if !fv.CanSet() {
			continue
		}
		return fv, true
	}
	return reflect.Value{}, false
}

// autowireFields fills exported fields still at their zero value after
// explicit injection ran.
func (c *Container) autowireFields(def *Definition, inst any) error {
	mode := def.autowire()
	if mode == AutowireNone {
		return nil
	}
	elem := reflect.ValueOf(inst).Elem()
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := elem.Field(i)
		if !f.IsExported() || !fv.CanSet() || !fv.IsZero() {
			continue
		}
		var err error
		switch mode {
		case AutowireByName:
			err = c.autowireByName(def, f, fv)
		case AutowireByType:
			err = c.autowireByType(def, f, fv)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// autowireByName wires a field from the bean whose name matches the field
// name, compared case-insensitively. No matching bean leaves the field
// alone; a matching bean of the wrong type is an error.
func (c *Container) autowireByName(def *Definition, f reflect.StructField, fv reflect.Value) error {
	name, ok := c.beanNamed(f.Name)
	if !ok {
		return nil
	}
	dep, err := c.getBean(name)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(dep)
	if !rv.Type().AssignableTo(f.Type) {
		return WrongBeanTypeError{Name: name, Want: f.Type.String(), Got: rv.Type().String()}
	}
	fv.Set(rv)
	c.log.Trace().Str("bean", def.ID).Str("field", f.Name).Str("ref", name).Msg("autowired by name")
	return nil
}

// beanNamed finds the bean id or alias matching a field name. Exact matches
// win, then case-insensitive ones; ids are preferred over aliases.
func (c *Container) beanNamed(field string) (string, bool) {
	if _, ok := c.byID[field]; ok {
		return field, true
	}
	if _, ok := c.aliases[field]; ok {
		return field, true
	}
	for _, id := range c.order {
		if strings.EqualFold(id, field) {
			return id, true
		}
	}
	for _, alias := range c.aliasOrder {
		if strings.EqualFold(alias, field) {
			return alias, true
		}
	}
	return "", false
}

// autowireByType wires a field from the single definition whose instance
// type is assignable to the field type. No candidate skips the field;
// several candidates are an error.
func (c *Container) autowireByType(def *Definition, f reflect.StructField, fv reflect.Value) error {
	var matches []string
	for _, id := range c.order {
		if id == def.ID {
			continue
		}
		entry, ok := c.reg.lookup(c.byID[id].Class)
		if !ok {
			continue
		}
		if entry.instanceType().AssignableTo(f.Type) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return nil
	case 1:
	default:
		return AutowireAmbiguityError{Bean: def.ID, Field: f.Name, Candidates: matches}
	}

	dep, err := c.getBean(matches[0])
	if err != nil {
		return err
	}
	fv.Set(reflect.ValueOf(dep))
	c.log.Trace().Str("bean", def.ID).Str("field", f.Name).Str("ref", matches[0]).Msg("autowired by type")
	return nil
}

// callMethod invokes a niladic method that may return an error. It backs
// both init-method and destroy-method.
func callMethod(inst any, class, name string) error {
	m := reflect.ValueOf(inst).MethodByName(name)
	if !m.IsValid() {
		return MethodError{Class: class, Method: name, Reason: "not found"}
	}
	mt := m.Type()
	if mt.NumIn() != 0 {
		return MethodError{Class: class, Method: name, Reason: "takes arguments"}
	}
	switch mt.NumOut() {
	case 0:
		m.Call(nil)
		return nil
	case 1:
		if mt.Out(0) != errType {
			return MethodError{Class: class, Method: name, Reason: "returns a non-error value"}
		}
		if out := m.Call(nil); !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	default:
		return MethodError{Class: class, Method: name, Reason: "returns multiple values"}
	}
}

func (c *Container) callInit(def *Definition, inst any) error {
	if def.InitMethod == "" {
		return nil
	}
	if err := callLifecycle(inst, def.Class, def.InitMethod, "init-method"); err != nil {
		return err
	}
	c.log.Trace().Str("bean", def.ID).Str("method", def.InitMethod).Msg("init-method called")
	return nil
}

// callLifecycle adds method context to errors the method itself returned;
// signature problems already name the class and method.
func callLifecycle(inst any, class, method, phase string) error {
	err := callMethod(inst, class, method)
	if err == nil {
		return nil
	}
	var me MethodError
	if errors.As(err, &me) {
		return err
	}
	return fmt.Errorf("%s %q: %w", phase, method, err)
}
