// Command beanctl — lint and inspect bean definition documents
//
// beanctl works on the XML/YAML documents the bean package loads. It parses
// and validates; it never consults a type registry and never instantiates a
// bean, so it runs anywhere the documents live, with no application code on
// hand.
//
// Commands
//
//   - lint <file>...      parse + validate each document, report problems
//   - beans <file>        list definitions (--format table|names)
//   - graph <file>        print reference edges, one per line
//
// The --verbose / -v flag narrates work on stderr; data output always goes
// to stdout.
//
// Lint
//
// Each file prints one line, "path: ok (N beans)" or the failure. Problems
// beanctl catches include duplicate ids, unknown scope or autowire values,
// injections carrying both ref and value, and references to beans the
// document never defines:
//
//	$ beanctl lint config/beans.xml
//	config/beans.xml: bean: bean "laptop" constructor-arg references unknown bean "oss"
//
// What lint cannot catch: class names are bound at runtime through a
// Registry, so an unregistered class only fails when a container loads the
// document.
//
// Beans
//
//	$ beanctl beans config/beans.xml
//	ID      CLASS            SCOPE      ARGS  PROPS
//	os      computer.OS      singleton  0     2
//	laptop  computer.Laptop  singleton  2     0
//
// Graph
//
// Edges print as "from -> to (kind)", where kind is depends-on,
// constructor-arg N, property <name>, or alias:
//
//	$ beanctl graph config/beans.xml
//	laptop -> os (constructor-arg 0)
//	notebook -> laptop (alias)
//
// Exit status
//
// beanctl exits 0 when everything succeeded and 1 otherwise, including lint
// findings.
package main
