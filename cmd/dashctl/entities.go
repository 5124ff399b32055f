package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Josphat84/myoffice-sub003/internal/entity"
)

func newEntitiesCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List the dashboard entity types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			all := reg.All()
			infos := make([]entity.Info, 0, len(all))
			for _, e := range all {
				infos = append(infos, e.Info())
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, infos)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLABEL\tSTATUS FIELD\tDEFAULT SORT\tSEARCHES")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.Name, info.Label, dash(info.StatusField), dash(info.DefaultSort), strings.Join(info.SearchableFields, ","))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
