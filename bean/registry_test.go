package bean

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cog struct {
	Teeth int
}

type sprocket struct {
	Size int
}

func newCog() *cog { return &cog{Teeth: 8} }

func newSizedCog(teeth int) *cog { return &cog{Teeth: teeth} }

//
// -----------------------------------------------------------------------------
// type registration
// -----------------------------------------------------------------------------

// TestRegistry_RegisterType verifies the natural class name and that values
// and pointers register the same type.
func TestRegistry_RegisterType(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterType(cog{}))

	e, ok := r.lookup("bean.cog")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(cog{}), e.typ)
	assert.Nil(t, e.ctor)

	// A pointer registers the element type, so this is the same name twice.
	err := r.RegisterType(&cog{})
	var already AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "bean.cog", already.Name)
}

// TestRegistry_RegisterTypeAs verifies explicit class names.
func TestRegistry_RegisterTypeAs(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterTypeAs("machine.Cog", cog{}))

	_, ok := r.lookup("machine.Cog")
	assert.True(t, ok)
	_, ok = r.lookup("bean.cog")
	assert.False(t, ok)

	assert.ErrorIs(t, r.RegisterTypeAs("", cog{}), ErrEmptyClass)
}

// TestRegistry_RegisterType_Invalid rejects nils and non-structs.
func TestRegistry_RegisterType_Invalid(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.ErrorIs(t, r.RegisterType(nil), ErrNilType)

	err := r.RegisterType(42)
	var invalid InvalidTypeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "int", invalid.Got)
}

//
// -----------------------------------------------------------------------------
// constructor registration
// -----------------------------------------------------------------------------

// TestRegistry_RegisterCtor verifies the natural name comes from the
// constructed struct.
func TestRegistry_RegisterCtor(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterCtor(newSizedCog))

	e, ok := r.lookup("bean.cog")
	require.True(t, ok)
	require.NotNil(t, e.ctor)
	assert.Nil(t, e.typ)
	assert.Equal(t, []reflect.Type{reflect.TypeOf(0)}, e.ctor.params)
	assert.Equal(t, reflect.TypeOf(&cog{}), e.ctor.out)
	assert.False(t, e.ctor.hasErr)
}

// TestParseCtor covers the accepted and rejected constructor shapes.
func TestParseCtor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		ctor   any
		reason string // empty means accepted
	}{
		{"niladic", func() *cog { return nil }, ""},
		{"with params", func(int, string) *cog { return nil }, ""},
		{"with error", func() (*cog, error) { return nil, nil }, ""},
		{"not a function", 42, "not a function"},
		{"variadic", func(...int) *cog { return nil }, "variadic"},
		{"no returns", func() {}, "must return *T or (*T, error)"},
		{"three returns", func() (*cog, *cog, error) { return nil, nil, nil }, "must return *T or (*T, error)"},
		{"second not error", func() (*cog, int) { return nil, 0 }, "second return value must be error"},
		{"returns value", func() cog { return cog{} }, "pointer to a struct"},
		{"returns non-struct", func() *int { return nil }, "pointer to a struct"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			info, err := parseCtor(tc.ctor)
			if tc.reason == "" {
				require.NoError(t, err)
				assert.NotNil(t, info)
				return
			}
			var invalid InvalidCtorError
			require.ErrorAs(t, err, &invalid, "ctor %s", tc.name)
			assert.Contains(t, invalid.Reason, tc.reason)
		})
	}

	_, err := parseCtor(nil)
	assert.ErrorIs(t, err, ErrNilCtor)
}

// TestParseCtor_ErrorShape verifies the (*T, error) form is detected.
func TestParseCtor_ErrorShape(t *testing.T) {
	t.Parallel()

	info, err := parseCtor(func(n int) (*cog, error) {
		if n < 0 {
			return nil, errors.New("negative")
		}
		return &cog{Teeth: n}, nil
	})
	require.NoError(t, err)
	assert.True(t, info.hasErr)
	require.Len(t, info.params, 1)
}

//
// -----------------------------------------------------------------------------
// half merges
// -----------------------------------------------------------------------------

// TestRegistry_Merge verifies a type and a constructor for the same struct
// share one class name.
func TestRegistry_Merge(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterType(cog{}))
	require.NoError(t, r.RegisterCtor(newCog))

	e, ok := r.lookup("bean.cog")
	require.True(t, ok)
	assert.NotNil(t, e.typ)
	assert.NotNil(t, e.ctor)

	// Same half twice stays an error.
	var already AlreadyRegisteredError
	assert.ErrorAs(t, r.RegisterCtor(newSizedCog), &already)
}

// TestRegistry_MergeCtorFirst verifies merge order does not matter.
func TestRegistry_MergeCtorFirst(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterCtor(newCog))
	require.NoError(t, r.RegisterType(cog{}))

	e, ok := r.lookup("bean.cog")
	require.True(t, ok)
	assert.NotNil(t, e.typ)
	assert.NotNil(t, e.ctor)
}

// TestRegistry_MergeConflict verifies halves naming different structs do not
// merge.
func TestRegistry_MergeConflict(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterTypeAs("machine.Part", cog{}))

	err := r.RegisterCtorAs("machine.Part", func() *sprocket { return nil })
	var already AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "machine.Part", already.Name)

	r2 := NewRegistry()
	require.NoError(t, r2.RegisterCtorAs("machine.Part", func() *sprocket { return nil }))
	assert.ErrorAs(t, r2.RegisterTypeAs("machine.Part", cog{}), &already)
}

//
// -----------------------------------------------------------------------------
// inspection
// -----------------------------------------------------------------------------

// TestRegistry_Types verifies names come back sorted.
func TestRegistry_Types(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterTypeAs("z.Last", cog{}))
	require.NoError(t, r.RegisterTypeAs("a.First", sprocket{}))
	require.NoError(t, r.RegisterType(cog{}))

	assert.Equal(t, []string{"a.First", "bean.cog", "z.Last"}, r.Types())
}

// TestClassEntry_InstanceType verifies both halves report the pointer type.
func TestClassEntry_InstanceType(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterType(cog{}))
	e, _ := r.lookup("bean.cog")
	assert.Equal(t, reflect.TypeOf(&cog{}), e.instanceType())

	r2 := NewRegistry()
	require.NoError(t, r2.RegisterCtor(newCog))
	e2, _ := r2.lookup("bean.cog")
	assert.Equal(t, reflect.TypeOf(&cog{}), e2.instanceType())
}

//
// -----------------------------------------------------------------------------
// default registry
// -----------------------------------------------------------------------------

type defaultAnchor struct {
	Hint string
}

// TestDefaultRegistry verifies the package-level helpers land in
// DefaultRegistry. The anchor type is registered nowhere else.
func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	require.NoError(t, RegisterType(defaultAnchor{}))
	_, ok := DefaultRegistry.lookup("bean.defaultAnchor")
	assert.True(t, ok)

	require.NoError(t, RegisterCtorAs("anchor.Made", func() *defaultAnchor { return nil }))
	_, ok = DefaultRegistry.lookup("anchor.Made")
	assert.True(t, ok)

	require.NoError(t, RegisterTypeAs("anchor.Named", defaultAnchor{}))
	assert.ErrorIs(t, RegisterCtor(nil), ErrNilCtor)
}

//
// -----------------------------------------------------------------------------
// concurrency
// -----------------------------------------------------------------------------

// TestRegistry_Concurrent registers and reads from many goroutines at once;
// the race detector carries most of the assertion weight here.
func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("load.Part%d", i)
			assert.NoError(t, r.RegisterTypeAs(name, cog{}))
			_, ok := r.lookup(name)
			assert.True(t, ok)
			_ = r.Types()
		}()
	}

	// The two halves of one class arrive from different goroutines and must
	// merge whichever lands first.
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, r.RegisterTypeAs("load.Shared", cog{}))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, r.RegisterCtorAs("load.Shared", newCog))
	}()
	wg.Wait()

	assert.Len(t, r.Types(), 9)
	e, ok := r.lookup("load.Shared")
	require.True(t, ok)
	assert.NotNil(t, e.typ)
	assert.NotNil(t, e.ctor)
}