package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
)

// listFlags are the criteria flags shared by query and export.
type listFlags struct {
	entity   string
	file     string
	search   string
	filters  []string
	sort     string
	page     int
	pageSize int
	from     string
	to       string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.entity, "entity", "e", "", "entity type (see dashctl entities)")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "JSON collection file")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive search term")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "field=value filter (repeatable; repeated fields match any value)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort as field:asc or field:desc")
	cmd.Flags().StringVar(&f.from, "from", "", "inclusive start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "inclusive end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("file")
}

func (f *listFlags) request() (domain.ListRequest, error) {
	req := domain.ListRequest{
		Search:   f.search,
		Sort:     f.sort,
		Page:     f.page,
		PageSize: f.pageSize,
		From:     f.from,
		To:       f.to,
	}
	if len(f.filters) == 0 {
		return req, nil
	}
	req.Filters = make(map[string][]string, len(f.filters))
	for _, raw := range f.filters {
		field, value, ok := strings.Cut(raw, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return req, fmt.Errorf("invalid --filter %q: want field=value", raw)
		}
		req.Filters[field] = append(req.Filters[field], value)
	}
	return req, nil
}

func newQueryCmd(opts *globalOptions) *cobra.Command {
	var (
		flags  listFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search, filter, sort and page the records of one entity",
		Example: `  dashctl query -e inventory -f inventory.json --filter status=low-stock --sort currentStock:asc
  dashctl query -e training -f training.json --from 2024-01-01 --to 2024-12-31 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "json" {
				return fmt.Errorf("invalid --output %q: must be table or json", output)
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			svc, err := opts.service(flags.file)
			if err != nil {
				return err
			}
			info, err := svc.Entity(flags.entity)
			if err != nil {
				return err
			}

			start := time.Now()
			resp, err := svc.List(context.Background(), flags.entity, req)
			if err != nil {
				return err
			}
			slog.Debug("query finished",
				slog.String("entity", flags.entity),
				slog.Int("matched", resp.TotalMatched),
				slog.Duration("took", time.Since(start)),
			)

			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return writeTable(cmd.OutOrStdout(), info.Columns, resp)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&flags.page, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "records per page (default: the entity's page size)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table or json)")
	return cmd
}
