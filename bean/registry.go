package bean

import (
	"reflect"
	"sort"
	"sync"
)

// classEntry holds what the registry knows about one class name: the
// concrete struct type, a parsed constructor, or both halves.
type classEntry struct {
	typ  reflect.Type // struct type; nil when only a constructor is known
	ctor *ctorInfo    // nil when only the type is known
}

// instanceType returns the pointer type instances of this class have.
func (e classEntry) instanceType() reflect.Type {
	if e.typ != nil {
		return reflect.PointerTo(e.typ)
	}
	return e.ctor.out
}

// ctorInfo is a registered constructor, parsed once at registration.
type ctorInfo struct {
	fn     reflect.Value
	params []reflect.Type
	out    reflect.Type // pointer to the constructed struct
	hasErr bool
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// parseCtor validates a constructor's shape up front so misuse surfaces at
// registration, not at first bean creation.
func parseCtor(ctor any) (*ctorInfo, error) {
	if ctor == nil {
		return nil, ErrNilCtor
	}
	fn := reflect.ValueOf(ctor)
	t := fn.Type()
	if t.Kind() != reflect.Func {
		return nil, InvalidCtorError{Reason: "not a function (" + t.String() + ")"}
	}
	if t.IsVariadic() {
		return nil, InvalidCtorError{Reason: "variadic constructors are not supported"}
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errType {
			return nil, InvalidCtorError{Reason: "second return value must be error, got " + t.Out(1).String()}
		}
	default:
		return nil, InvalidCtorError{Reason: "must return *T or (*T, error)"}
	}
	out := t.Out(0)
	if out.Kind() != reflect.Pointer || out.Elem().Kind() != reflect.Struct {
		return nil, InvalidCtorError{Reason: "must return a pointer to a struct, got " + out.String()}
	}

	info := &ctorInfo{fn: fn, out: out, hasErr: t.NumOut() == 2}
	for i := 0; i < t.NumIn(); i++ {
		info.params = append(info.params, t.In(i))
	}
	return info, nil
}

// Registry maps class names, as written in bean documents, to the Go types
// and constructors that implement them. It is the Go stand-in for a
// classpath: a document can only instantiate what was registered.
//
// A class name can carry a plain type, a constructor, or both; the two
// halves merge as long as they agree on the concrete struct type.
//
// The zero value is not usable; call NewRegistry. All methods are safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*classEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*classEntry)}
}

// RegisterType registers v's struct type under its natural class name, the
// type's String() form (e.g. computer.OS). v may be a value or a pointer;
// only the type is retained.
func (r *Registry) RegisterType(v any) error {
	t, err := structTypeOf(v)
	if err != nil {
		return err
	}
	return r.registerType(t.String(), t)
}

// RegisterTypeAs registers v's struct type under an explicit class name.
func (r *Registry) RegisterTypeAs(name string, v any) error {
	t, err := structTypeOf(v)
	if err != nil {
		return err
	}
	return r.registerType(name, t)
}

// RegisterCtor registers a constructor under the natural class name of the
// struct it returns. Accepted shapes are func(...) *T and
// func(...) (*T, error) where T is a struct type.
func (r *Registry) RegisterCtor(ctor any) error {
	info, err := parseCtor(ctor)
	if err != nil {
		return err
	}
	return r.registerCtor(info.out.Elem().String(), info)
}

// RegisterCtorAs registers a constructor under an explicit class name.
func (r *Registry) RegisterCtorAs(name string, ctor any) error {
	info, err := parseCtor(ctor)
	if err != nil {
		return err
	}
	return r.registerCtor(name, info)
}

// Types returns the registered class names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookup returns a snapshot of the entry for a class name. Returning a copy
// keeps later half-merges from racing with container reads.
func (r *Registry) lookup(name string) (classEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return classEntry{}, false
	}
	return *e, true
}

func (r *Registry) registerType(name string, t reflect.Type) error {
	if name == "" {
		return ErrEmptyClass
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[name]
	if e == nil {
		r.entries[name] = &classEntry{typ: t}
		return nil
	}
	if e.typ != nil {
		return AlreadyRegisteredError{Name: name}
	}
	// A constructor came first; the halves must agree on the type.
	if e.ctor.out.Elem() != t {
		return AlreadyRegisteredError{Name: name}
	}
	e.typ = t
	return nil
}

func (r *Registry) registerCtor(name string, info *ctorInfo) error {
	if name == "" {
		return ErrEmptyClass
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[name]
	if e == nil {
		r.entries[name] = &classEntry{ctor: info}
		return nil
	}
	if e.ctor != nil {
		return AlreadyRegisteredError{Name: name}
	}
	if e.typ != nil && info.out.Elem() != e.typ {
		return AlreadyRegisteredError{Name: name}
	}
	e.ctor = info
	return nil
}

func structTypeOf(v any) (reflect.Type, error) {
	if v == nil {
		return nil, ErrNilType
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, InvalidTypeError{Got: t.String()}
	}
	return t, nil
}

// ----- default registry ------------------------------------------------------

// DefaultRegistry is the process-wide registry used by containers built
// without an explicit WithRegistry option. Small programs register into it
// directly, the way encoding/gob registers concrete types.
var DefaultRegistry = NewRegistry()

// RegisterType registers into DefaultRegistry.
func RegisterType(v any) error { return DefaultRegistry.RegisterType(v) }

// RegisterTypeAs registers into DefaultRegistry.
func RegisterTypeAs(name string, v any) error { return DefaultRegistry.RegisterTypeAs(name, v) }

// RegisterCtor registers into DefaultRegistry.
func RegisterCtor(ctor any) error { return DefaultRegistry.RegisterCtor(ctor) }

// RegisterCtorAs registers into DefaultRegistry.
func RegisterCtorAs(name string, ctor any) error { return DefaultRegistry.RegisterCtorAs(name, ctor) }
