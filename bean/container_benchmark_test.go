package bean_test

import (
	"strings"
	"testing"

	"github.com/khaledsh/beanbox/bean"
)

/*
   Shared helpers (NOT counted in benchmarks)
*/

func benchContainer(b *testing.B) *bean.Container {
	b.Helper()
	c, err := bean.LoadXML(strings.NewReader(towerXML), bean.WithRegistry(testRegistry(b)))
	if err != nil {
		b.Fatal(err)
	}
	return c
}

/*
   Benchmarks
*/

func BenchmarkContainer_SingletonLookup(b *testing.B) {
	c := benchContainer(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Bean("tower"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkContainer_TypedLookup(b *testing.B) {
	c := benchContainer(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bean.Get[*Tower](c, "rig"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkContainer_PrototypeCreate(b *testing.B) {
	defs := &bean.Definitions{Beans: []bean.Definition{{
		ID:    "disk",
		Class: "pc.Disk",
		Scope: bean.ScopePrototype,
		Properties: []bean.Property{
			{Name: "label", Value: "scratch", HasValue: true},
			{Name: "size", Value: "256", HasValue: true},
		},
	}}}
	c, err := bean.New(defs, bean.WithRegistry(testRegistry(b)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Bean("disk"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseXML(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := bean.ParseXML(strings.NewReader(towerXML)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNew_EagerGraph(b *testing.B) {
	ds, err := bean.ParseXML(strings.NewReader(towerXML))
	if err != nil {
		b.Fatal(err)
	}
	reg := testRegistry(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bean.New(ds, bean.WithRegistry(reg)); err != nil {
			b.Fatal(err)
		}
	}
}
