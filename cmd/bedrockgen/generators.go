package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/generator"
)

func newGeneratorsCmd(c *cli) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "generators",
		Aliases: []string{"ls"},
		Short:   "List configured generators",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig(false)
			if err != nil {
				return err
			}

			// Info does not need a Bedrock connection.
			reg := generator.NewRegistry()
			if err := reg.Register(generator.NewClaude2(nil, cfg.Generator.Options()...)); err != nil {
				return err
			}
			infos := reg.List()

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(api.GeneratorList{Object: "list", Data: infos})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMODEL\tSTREAMABLE\tCONTEXT WINDOW\tDESCRIPTION")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%s\n",
					info.Name, info.ModelName, info.Streamable, info.ContextWindow, info.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
