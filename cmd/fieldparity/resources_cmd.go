package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newResourcesCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resources [resource...]",
		Short: "Print the resources and the files each resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd, opts)
			if err != nil {
				return err
			}

			located, err := eng.Locate(args)
			if err != nil {
				return exitCodeError{code: 1, err: err}
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(located)
			}

			rs := eng.Resolver()
			fmt.Fprintf(out, "schema-a root: %s\nschema-b root: %s\n\n", rs.SchemaARoot(), rs.SchemaBRoot())

			for _, res := range located {
				header := res.SchemaBFile
				if !res.HeaderFound {
					header += " (missing)"
				}
				fmt.Fprintf(out, "%s\n  header: %s\n", res.Resource, header)
				if len(res.SchemaAFiles) == 0 {
					fmt.Fprintln(out, "  sources: none")
					continue
				}
				fmt.Fprintln(out, "  sources:")
				for _, f := range res.SchemaAFiles {
					fmt.Fprintf(out, "    - %s\n", f)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}
