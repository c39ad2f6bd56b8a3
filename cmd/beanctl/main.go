// cmd/beanctl/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/khaledsh/beanbox/bean"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// run builds and executes the command tree and returns an exit code. It
// exists separately from main to allow unit testing without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// newRootCmd assembles beanctl: lint, beans, and graph over definition
// documents. Documents are parsed and validated only; no registry is
// consulted and no bean is instantiated.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "beanctl",
		Short:        "Lint and inspect bean definition documents",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "narrate work on stderr")

	logger := func() zerolog.Logger {
		if !verbose {
			return zerolog.Nop()
		}
		return zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger()
	}

	root.AddCommand(newLintCmd(stdout, logger))
	root.AddCommand(newBeansCmd(stdout))
	root.AddCommand(newGraphCmd(stdout))
	return root
}

// newLintCmd parses and validates documents, reporting per-file results.
func newLintCmd(stdout io.Writer, logger func() zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file>...",
		Short: "Parse and validate bean documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			log := logger()
			bad := 0
			for _, path := range args {
				ds, err := bean.ParseFile(path)
				if err != nil {
					bad++
					fmt.Fprintf(stdout, "%s: %v\n", path, err)
					continue
				}
				log.Debug().Str("file", path).Int("beans", len(ds.Beans)).Msg("document ok")
				fmt.Fprintf(stdout, "%s: ok (%d beans)\n", path, len(ds.Beans))
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d documents failed", bad, len(args))
			}
			return nil
		},
	}
}

// newBeansCmd lists what a document defines.
func newBeansCmd(stdout io.Writer) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "beans <file>",
		Short: "List the beans a document defines",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ds, err := bean.ParseFile(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "table":
				return printTable(stdout, ds)
			case "names":
				for _, d := range ds.Beans {
					fmt.Fprintln(stdout, d.ID)
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (want table or names)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or names")
	return cmd
}

func printTable(w io.Writer, ds *bean.Definitions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLASS\tSCOPE\tARGS\tPROPS")
	for _, d := range ds.Beans {
		scope := d.Scope
		if scope == "" {
			scope = bean.ScopeSingleton
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", d.ID, d.Class, scope, len(d.Args), len(d.Properties))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, alias := range sortedKeys(ds.Aliases) {
		fmt.Fprintf(w, "alias %s -> %s\n", alias, ds.Aliases[alias])
	}
	return nil
}

// newGraphCmd prints reference edges, one per line, in document order.
func newGraphCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <file>",
		Short: "Print bean reference edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ds, err := bean.ParseFile(args[0])
			if err != nil {
				return err
			}
			for _, d := range ds.Beans {
				for _, dep := range d.DependsOn {
					fmt.Fprintf(stdout, "%s -> %s (depends-on)\n", d.ID, dep)
				}
				for i, a := range d.Args {
					if a.Ref != "" {
						fmt.Fprintf(stdout, "%s -> %s (constructor-arg %d)\n", d.ID, a.Ref, i)
					}
				}
				for _, p := range d.Properties {
					if p.Ref != "" {
						fmt.Fprintf(stdout, "%s -> %s (property %s)\n", d.ID, p.Ref, p.Name)
					}
				}
			}
			for _, alias := range sortedKeys(ds.Aliases) {
				fmt.Fprintf(stdout, "%s -> %s (alias)\n", alias, ds.Aliases[alias])
			}
			return nil
		},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
