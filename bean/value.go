package bean

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// PropertySource supplies values for ${...} placeholders in bean documents.
type PropertySource interface {
	// Lookup returns the value for key and whether the source has it.
	Lookup(key string) (string, bool)
}

// MapSource is an in-memory PropertySource.
type MapSource map[string]string

// Lookup implements PropertySource.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvSource resolves keys from process environment variables.
type EnvSource struct{}

// Lookup implements PropertySource.
func (EnvSource) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// ViperSource adapts a viper configuration into a PropertySource, so bean
// documents can draw values from whatever config files, flags, and env
// bindings the host application already loads.
type ViperSource struct{ V *viper.Viper }

// Lookup implements PropertySource.
func (s ViperSource) Lookup(key string) (string, bool) {
	if s.V == nil {
		return "", false
	}
	if s.V.IsSet(key) {
		return s.V.GetString(key), true
	}
	// IsSet skips the defaults of bound-but-unchanged flags; a plain read
	// still sees them.
	if v := s.V.GetString(key); v != "" {
		return v, true
	}
	return "", false
}

// resolvePlaceholders expands ${key} and ${key:default} against the source
// chain; the first source holding the key wins. The sequence $${ escapes a
// literal ${.
func resolvePlaceholders(s string, sources []PropertySource) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], "$${") {
			b.WriteString("${")
			i += 3
			continue
		}
		if strings.HasPrefix(s[i:], "${") {
			end := strings.Index(s[i:], "}")
			if end < 0 {
				return "", fmt.Errorf("%w in %q", ErrUnterminatedPlaceholder, s)
			}
			key, def, hasDef := strings.Cut(s[i+2:i+end], ":")
			val, ok := lookupChain(key, sources)
			switch {
			case ok:
				b.WriteString(val)
			case hasDef:
				b.WriteString(def)
			default:
				return "", PlaceholderError{Key: key}
			}
			i += end + 1
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), nil
}

func lookupChain(key string, sources []PropertySource) (string, bool) {
	for _, src := range sources {
		if v, ok := src.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	errOverflow  = errors.New("value overflows target type")
)

// convertValue converts a resolved literal into the exact type a
// constructor parameter, setter, or field requires. Conversions go through
// spf13/cast; integer kinds are overflow-checked against the destination
// width.
func convertValue(s string, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(s).Convert(t), nil

	case reflect.Bool:
		v, err := cast.ToBoolE(s)
		if err != nil {
			return reflect.Value{}, ConvertError{Value: s, Target: t.String(), Err: err}
		}
		out := reflect.New(t).Elem()
		out.SetBool(v)
		return out, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if t == durationType {
			d, err := cast.ToDurationE(s)
			if err != nil {
				return reflect.Value{}, ConvertError{Value: s, Target: t.String(), Err: err}
			}
			return reflect.ValueOf(d), nil
		}
		v, err := cast.ToInt64E(s)
		if err != nil {
			return reflect.Value{}, ConvertError{Value: s, Target: t.String(), Err: err}
		}
		out := reflect.New(t).Elem()
		if out.OverflowInt(v) {
			return reflect.Value{}, ConvertError{Value: s, Target: t.String(), Err: errOverflow}
		}
		out.SetInt(v)
		return out, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := cast.ToUint64E(s)
		if err != nil {
			return reflect.Value{}, ConvertError{Value: s, Target: t.String(), Err: err}
		}
		out := reflect.New(t).Elem()
		if out.OverflowUint(v) {
			return reflect.Value{}, ConvertError{Value: s, Target: t.String(), Err: errOverflow}
		}
		out.SetUint(v)
		return out, nil

	case reflect.Float32, reflect.Float64:
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return reflect.Value{}, ConvertError{Value: s, Target: t.String(), Err: err}
		}
		out := reflect.New(t).Elem()
		if out.OverflowFloat(v) {
			return reflect.Value{}, ConvertError{Value: s, Target: t.String(), Err: errOverflow}
		}
		out.SetFloat(v)
		return out, nil

	default:
		return reflect.Value{}, ConvertError{
			Value:  s,
			Target: t.String(),
			Err:    errors.New("unsupported kind " + t.Kind().String()),
		}
	}
}
