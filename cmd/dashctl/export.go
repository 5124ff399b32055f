package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Josphat84/myoffice-sub003/internal/export"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		flags  listFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every record matching the criteria as CSV or XLSX",
		Long: `Export writes every record matching the search, filters and date range in
sort order. Pagination does not apply. With no --out the file is named after
the entity and today's date; --out - writes to standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			svc, err := opts.service(flags.file)
			if err != nil {
				return err
			}

			file, err := svc.Export(context.Background(), flags.entity, req, f)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(file.Data)
				return err
			}
			if out == "" {
				out = file.Filename
			}
			if err := writeFile(out, file.Data); err != nil {
				return err
			}
			slog.Info("export written", slog.String("path", out), slog.Int("bytes", len(file.Data)))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", string(export.CSV), "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "O", "", "output path, or - for standard output")
	return cmd
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
