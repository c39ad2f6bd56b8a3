// Package bean provides an XML/YAML-driven inversion-of-control container.
//
// This repository shows document-driven wiring in two flavors:
//
//   - constructor injection: beans declare positional constructor-args and
//     are built through registered constructor functions
//   - setter injection: beans are built empty and filled through Set<Name>
//     methods or exported fields declared as properties
//
// The goal is to keep wiring in data files that tools can check (see
// cmd/beanctl), while the Go side stays plain structs and constructors with
// no tags and no code generation.
//
// Start with the two programs under examples for end-to-end wiring style.
//
// See subpackages:
//   - bean: the container, registry, and document parsers
//   - cmd/beanctl: lint and inspect bean documents from the command line
//   - examples/constructor, examples/setter: runnable wiring demos
//   - examples/computer: the demo component types the two programs share
package bean
