// Package bean is a small inversion-of-control container driven by XML or
// YAML bean documents.
//
// A document declares beans by id and class, and says how each one is
// built: positional constructor-args for constructor injection, properties
// for setter and field injection, or both. Class names are bound to Go
// types and constructors through a Registry, the way encoding/gob binds
// names to concrete types. Containers then create, wire, and cache the
// declared instances.
//
// Design goals:
//   - Documents over code: wiring lives in data files, so a tool can lint
//     and diff it (see cmd/beanctl) without loading any application code.
//   - Explicit classes: only registered types and constructors can be
//     instantiated; nothing is scanned or discovered.
//   - Predictable lifecycle: eager singletons in document order, declared
//     init-methods after wiring, destroy-methods in reverse on Close.
//   - Typed errors: failures carry bean ids and class names as values, not
//     just formatted strings.
//
// Literal values may embed ${key} placeholders resolved against property
// sources (maps, the environment, or a viper configuration) with
// ${key:default} fallbacks.
//
// runnable wirings can be found under examples/constructor and
// examples/setter
//
// Import
//
//	"github.com/khaledsh/beanbox/bean"
package bean
