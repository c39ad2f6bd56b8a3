package bean

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNilDefinitions is returned when a container is built from a nil
	// definitions document.
	ErrNilDefinitions = errors.New("bean: nil definitions")

	// ErrNilType is returned when a nil value is registered as a type.
	ErrNilType = errors.New("bean: nil type")

	// ErrNilCtor is returned when a nil function is registered as a
	// constructor.
	ErrNilCtor = errors.New("bean: nil constructor")

	// ErrEmptyClass is returned when a type or constructor is registered
	// under an empty class name.
	ErrEmptyClass = errors.New("bean: empty class name")

	// ErrUnterminatedPlaceholder is returned when a value opens a ${
	// placeholder and never closes it.
	ErrUnterminatedPlaceholder = errors.New("bean: unterminated ${ placeholder")
)

// NoSuchBeanError is returned when a requested bean name matches neither a
// definition id nor an alias.
type NoSuchBeanError struct{ Name string }

// Error implements the error interface.
func (e NoSuchBeanError) Error() string {
	// Example: bean: no bean named "laptop"
	return "bean: no bean named " + strconv.Quote(e.Name)
}

// DuplicateBeanError is reported by validation when two definitions share an
// id, or an alias collides with an id or another alias.
type DuplicateBeanError struct{ Name string }

// Error implements the error interface.
func (e DuplicateBeanError) Error() string {
	// Example: bean: duplicate bean name "os"
	return "bean: duplicate bean name " + strconv.Quote(e.Name)
}

// WrongBeanTypeError is returned when a bean exists but its type does not
// fit where it is being used: a typed lookup, a constructor argument, or an
// injected property.
type WrongBeanTypeError struct {
	// Name is the bean that was resolved.
	Name string

	// Want is the type the use site requires.
	Want string

	// Got is reflect.TypeOf(instance).String() for the resolved bean.
	Got string
}

// Error implements the error interface.
func (e WrongBeanTypeError) Error() string {
	// Example: bean: bean "laptop" has type *computer.OS, want *computer.Laptop
	return "bean: bean " + strconv.Quote(e.Name) + " has type " + e.Got + ", want " + e.Want
}

// UnknownClassError is returned when a definition names a class that was
// never registered.
type UnknownClassError struct {
	// Bean is the definition id.
	Bean string

	// Class is the unregistered class name.
	Class string
}

// Error implements the error interface.
func (e UnknownClassError) Error() string {
	// Example: bean: bean "os" references unregistered class "computer.OS"
	return "bean: bean " + strconv.Quote(e.Bean) + " references unregistered class " + strconv.Quote(e.Class)
}

// AlreadyRegisteredError is returned when a registry already holds the same
// half (type or constructor) under a class name, or the halves disagree on
// the concrete type.
type AlreadyRegisteredError struct{ Name string }

// Error implements the error interface.
func (e AlreadyRegisteredError) Error() string {
	// Example: bean: class "computer.OS" already registered
	return "bean: class " + strconv.Quote(e.Name) + " already registered"
}

// InvalidTypeError is returned when a registered value is not a struct or a
// pointer to one.
type InvalidTypeError struct{ Got string }

// Error implements the error interface.
func (e InvalidTypeError) Error() string {
	// Example: bean: cannot register non-struct type int
	return "bean: cannot register non-struct type " + e.Got
}

// InvalidCtorError is returned when a registered constructor does not have
// an accepted signature.
type InvalidCtorError struct{ Reason string }

// Error implements the error interface.
func (e InvalidCtorError) Error() string {
	// Example: bean: invalid constructor: must return a pointer to a struct
	return "bean: invalid constructor: " + e.Reason
}

// MissingCtorError is returned when a definition carries constructor
// arguments but the class was registered without a constructor.
type MissingCtorError struct {
	Bean  string
	Class string
}

// Error implements the error interface.
func (e MissingCtorError) Error() string {
	// Example: bean: bean "laptop" has constructor-args but class "computer.Laptop" has no registered constructor
	return "bean: bean " + strconv.Quote(e.Bean) + " has constructor-args but class " +
		strconv.Quote(e.Class) + " has no registered constructor"
}

// ArgCountError is returned when the number of constructor arguments in a
// definition does not match the registered constructor.
type ArgCountError struct {
	Bean string
	Want int
	Got  int
}

// Error implements the error interface.
func (e ArgCountError) Error() string {
	// Example: bean: bean "laptop" constructor wants 2 args, got 1
	return "bean: bean " + strconv.Quote(e.Bean) + " constructor wants " +
		strconv.Itoa(e.Want) + " args, got " + strconv.Itoa(e.Got)
}

// CycleError is returned when bean creation re-enters a bean that is still
// being constructed. Path holds the creation chain, ending at the bean that
// closed the cycle.
type CycleError struct{ Path []string }

// Error implements the error interface.
func (e CycleError) Error() string {
	// Example: bean: dependency cycle: a -> b -> a
	return "bean: dependency cycle: " + strings.Join(e.Path, " -> ")
}

// NoSuchPropertyError is returned when a property name matches neither a
// setter method nor an exported field on the bean's type.
type NoSuchPropertyError struct {
	Bean     string
	Property string
}

// Error implements the error interface.
func (e NoSuchPropertyError) Error() string {
	// Example: bean: bean "laptop" has no settable property "weight"
	return "bean: bean " + strconv.Quote(e.Bean) + " has no settable property " + strconv.Quote(e.Property)
}

// DanglingRefError is reported by validation when a ref, depends-on entry,
// or alias target names a bean that does not exist in the document.
type DanglingRefError struct {
	// Bean is the definition (or alias) carrying the reference.
	Bean string

	// Ref is the name that failed to resolve.
	Ref string

	// Where names the attribute that carried the reference, e.g.
	// "constructor-arg" or "depends-on".
	Where string
}

// Error implements the error interface.
func (e DanglingRefError) Error() string {
	// Example: bean: bean "laptop" constructor-arg references unknown bean "oss"
	return "bean: bean " + strconv.Quote(e.Bean) + " " + e.Where +
		" references unknown bean " + strconv.Quote(e.Ref)
}

// MethodError is returned when a lifecycle method (init-method or
// destroy-method) is missing or has an unusable signature.
type MethodError struct {
	Class  string
	Method string
	Reason string
}

// Error implements the error interface.
func (e MethodError) Error() string {
	// Example: bean: class "computer.OS" method "Boot" takes arguments
	return "bean: class " + strconv.Quote(e.Class) + " method " + strconv.Quote(e.Method) + " " + e.Reason
}

// AutowireAmbiguityError is returned by byType autowiring when more than one
// definition can satisfy a field.
type AutowireAmbiguityError struct {
	Bean       string
	Field      string
	Candidates []string
}

// Error implements the error interface.
func (e AutowireAmbiguityError) Error() string {
	// Example: bean: bean "laptop" field "System" matches multiple beans: os1, os2
	return "bean: bean " + strconv.Quote(e.Bean) + " field " + strconv.Quote(e.Field) +
		" matches multiple beans: " + strings.Join(e.Candidates, ", ")
}

// PlaceholderError is returned when a ${key} placeholder has no value in any
// property source and no default.
type PlaceholderError struct{ Key string }

// Error implements the error interface.
func (e PlaceholderError) Error() string {
	// Example: bean: unresolvable placeholder "LAPTOP_BRAND"
	return "bean: unresolvable placeholder " + strconv.Quote(e.Key)
}

// ConvertError is returned when a literal value cannot be converted to the
// type a constructor argument, setter, or field requires.
type ConvertError struct {
	// Value is the literal after placeholder resolution.
	Value string

	// Target is the Go type the value was converted toward.
	Target string

	// Err is the underlying conversion failure, if any.
	Err error
}

// Error implements the error interface.
func (e ConvertError) Error() string {
	// Example: bean: cannot convert "abc" to int: ...
	msg := "bean: cannot convert " + strconv.Quote(e.Value) + " to " + e.Target
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying conversion failure.
func (e ConvertError) Unwrap() error { return e.Err }

// CreationError wraps any failure that happens while creating a bean, so
// callers keep the failing bean's id even when the root cause sits several
// references deep.
type CreationError struct {
	Bean string
	Err  error
}

// Error implements the error interface.
func (e CreationError) Error() string {
	// Example: bean: creating bean "laptop": bean: no bean named "os"
	return "bean: creating bean " + strconv.Quote(e.Bean) + ": " + e.Err.Error()
}

// Unwrap returns the wrapped failure.
func (e CreationError) Unwrap() error { return e.Err }

// ValidationError collects every structural problem found in a definitions
// document. Errs is never empty.
type ValidationError struct{ Errs []error }

// Error implements the error interface.
func (e ValidationError) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	var b strings.Builder
	b.WriteString("bean: invalid definitions (")
	b.WriteString(strconv.Itoa(len(e.Errs)))
	b.WriteString(" problems):")
	for _, err := range e.Errs {
		b.WriteString("\n\t")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e ValidationError) Unwrap() []error { return e.Errs }
