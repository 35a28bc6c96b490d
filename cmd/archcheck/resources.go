package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/c360studio/archcheck/processor/conformance"
)

func resourcesCmd(global *globalOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "Print the resource bindings of every feature root",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(global.logLevel)
			cfg, err := loadConfig(*global, logger)
			if err != nil {
				return err
			}

			engine, err := conformance.NewEngine(conformance.EngineConfig{Config: cfg, Logger: logger})
			if err != nil {
				return err
			}
			return printResources(stdout, engine.Roots())
		},
	}
}

func printResources(w io.Writer, roots []*conformance.Root) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, root := range roots {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		resourceDir := root.ResourceDir
		if resourceDir == "" {
			resourceDir = "(none)"
		}
		fmt.Fprintf(tw, "%s\tresources: %s\talias: %s\n", root.Path, resourceDir, root.ResourceAlias)
		if root.Mapping.Len() == 0 {
			fmt.Fprintln(tw, "  (no bindings)\t\t")
			continue
		}
		for _, b := range root.Mapping.Bindings() {
			spec, _ := root.Mapping.Specifier(root.ResourceAlias, b.Prefix)
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", b.Prefix, b.Identifier, spec)
		}
	}
	return tw.Flush()
}
