package bean

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Container instantiates and wires the beans of one definitions document.
//
// Singleton beans are created once, eagerly at build time unless marked
// lazy-init, and shared by every lookup. Prototype beans are created per
// lookup. Definitions, aliases, and the registry binding are fixed once the
// container is built; only instance state changes afterwards.
type Container struct {
	reg     *Registry
	sources []PropertySource
	log     zerolog.Logger

	defs       []Definition
	byID       map[string]*Definition
	order      []string // ids in document order
	aliases    map[string]string
	aliasOrder []string // alias names, sorted

	mu         sync.Mutex
	singletons map[string]any
	created    []string // singleton ids in creation order
	creating   []string // active creation stack, for cycle detection
	closed     bool
}

// Option customizes a container before any bean is created.
type Option func(*Container)

// WithRegistry resolves class names through reg instead of DefaultRegistry.
func WithRegistry(reg *Registry) Option {
	return func(c *Container) {
		if reg != nil {
			c.reg = reg
		}
	}
}

// WithLogger routes container events to log. The default logger discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Container) { c.log = log }
}

// WithProperties adds an in-memory placeholder source.
func WithProperties(props map[string]string) Option {
	return func(c *Container) { c.sources = append(c.sources, MapSource(props)) }
}

// WithPropertySource appends src to the placeholder source chain. Sources
// are consulted in the order they were added; the first hit wins.
func WithPropertySource(src PropertySource) Option {
	return func(c *Container) {
		if src != nil {
			c.sources = append(c.sources, src)
		}
	}
}

// WithEnvLookup appends the process environment to the source chain.
func WithEnvLookup() Option {
	return func(c *Container) { c.sources = append(c.sources, EnvSource{}) }
}

// WithViper appends a viper configuration to the source chain.
func WithViper(v *viper.Viper) Option {
	return func(c *Container) {
		if v != nil {
			c.sources = append(c.sources, ViperSource{V: v})
		}
	}
}

// New builds a container from defs. The document is validated, every class
// is checked against the registry, and non-lazy singletons are created in
// document order before New returns.
func New(defs *Definitions, opts ...Option) (*Container, error) {
	if defs == nil {
		return nil, ErrNilDefinitions
	}
	if err := defs.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		reg:        DefaultRegistry,
		log:        zerolog.Nop(),
		singletons: make(map[string]any),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.defs = make([]Definition, len(defs.Beans))
	copy(c.defs, defs.Beans)
	c.byID = make(map[string]*Definition, len(c.defs))
	c.order = make([]string, 0, len(c.defs))
	for i := range c.defs {
		d := &c.defs[i]
		c.byID[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	if len(defs.Aliases) > 0 {
		c.aliases = make(map[string]string, len(defs.Aliases))
		for alias, target := range defs.Aliases {
			c.aliases[alias] = target
			c.aliasOrder = append(c.aliasOrder, alias)
		}
		sort.Strings(c.aliasOrder)
	}

	// Fail on unknown classes up front, lazy-init or not.
	for i := range c.defs {
		d := &c.defs[i]
		if _, ok := c.reg.lookup(d.Class); !ok {
			return nil, UnknownClassError{Bean: d.ID, Class: d.Class}
		}
	}

	c.log.Debug().
		Int("beans", len(c.defs)).
		Int("aliases", len(c.aliases)).
		Msg("definitions loaded")

	if err := c.preInstantiate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadXML parses an XML document and builds a container from it.
func LoadXML(r io.Reader, opts ...Option) (*Container, error) {
	ds, err := ParseXML(r)
	if err != nil {
		return nil, err
	}
	return New(ds, opts...)
}

// LoadYAML parses a YAML document and builds a container from it.
func LoadYAML(r io.Reader, opts ...Option) (*Container, error) {
	ds, err := ParseYAML(r)
	if err != nil {
		return nil, err
	}
	return New(ds, opts...)
}

// ParseFile reads a definitions document, picking the parser from the file
// extension: .xml, .yaml, or .yml.
func ParseFile(path string) (*Definitions, error) {
	var parse func(io.Reader) (*Definitions, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		parse = ParseXML
	case ".yaml", ".yml":
		parse = ParseYAML
	default:
		return nil, fmt.Errorf("bean: unsupported definitions file %q (want .xml, .yaml, or .yml)", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bean: %w", err)
	}
	defer func() { _ = f.Close() }()
	return parse(f)
}

// LoadFile builds a container from a definitions file.
func LoadFile(path string, opts ...Option) (*Container, error) {
	ds, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(ds, opts...)
}

// preInstantiate eagerly creates non-lazy singletons in document order.
func (c *Container) preInstantiate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.order {
		def := c.byID[id]
		if def.scope() != ScopeSingleton || def.LazyInit {
			continue
		}
		if _, err := c.getBean(id); err != nil {
			return err
		}
	}
	c.log.Debug().Int("singletons", len(c.singletons)).Msg("container ready")
	return nil
}

// Bean returns the bean for name, which may be an id or an alias.
// Singletons are cached; prototypes are created per call.
func (c *Container) Bean(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getBean(name)
}

// Get returns the bean for name typed as T.
func Get[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.Bean(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, WrongBeanTypeError{
			Name: name,
			Want: reflect.TypeOf(&zero).Elem().String(),
			Got:  reflect.TypeOf(v).String(),
		}
	}
	return t, nil
}

// MustGet is Get for wiring code that treats a missing bean as fatal: it
// panics on error.
func MustGet[T any](c *Container, name string) T {
	v, err := Get[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether name resolves to a definition, directly or through
// aliases.
func (c *Container) Has(name string) bool {
	_, ok := c.canonical(name)
	return ok
}

// Names returns the bean ids in document order.
func (c *Container) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// IsSingleton reports whether name resolves to a singleton definition.
func (c *Container) IsSingleton(name string) (bool, error) {
	id, ok := c.canonical(name)
	if !ok {
		return false, NoSuchBeanError{Name: name}
	}
	return c.byID[id].scope() == ScopeSingleton, nil
}

// canonical follows aliases until it reaches a definition id. The id and
// alias tables are fixed at build time, so no lock is needed.
func (c *Container) canonical(name string) (string, bool) {
	cur := name
	for steps := 0; steps <= len(c.aliases); steps++ {
		if _, ok := c.byID[cur]; ok {
			return cur, true
		}
		next, ok := c.aliases[cur]
		if !ok {
			return "", false
		}
		cur = next
	}
	return "", false
}

// Close calls destroy-methods on created singletons in reverse creation
// order and reports every failure. Close is idempotent. It does not seal
// the container: cached singletons stay resolvable, which keeps shutdown
// paths that still read configuration beans working.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for i := len(c.created) - 1; i >= 0; i-- {
		id := c.created[i]
		def := c.byID[id]
		if def.DestroyMethod == "" {
			continue
		}
		if err := callLifecycle(c.singletons[id], def.Class, def.DestroyMethod, "destroy-method"); err != nil {
			errs = append(errs, fmt.Errorf("bean: destroying bean %q: %w", id, err))
			continue
		}
		c.log.Debug().Str("bean", id).Str("method", def.DestroyMethod).Msg("destroy-method called")
	}
	c.log.Debug().Msg("container closed")
	return errors.Join(errs...)
}
