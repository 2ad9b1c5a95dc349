package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/trivy"
)

type listOptions struct {
	catalogDir string
	types      []string
}

func newListCommand(a *app) *cobra.Command {
	opts := listOptions{catalogDir: a.cfg.CatalogDir}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in dashboard sets, or the records stored in a catalog",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.catalogDir == "" {
				return a.listSets()
			}
			return a.listCatalog(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalogDir, "catalog", opts.catalogDir, "catalog directory to list")
	f.StringSliceVar(&opts.types, "type", nil, "only list these saved object types (index-pattern, dashboard)")
	return cmd
}

func (a *app) listSets() error {
	for _, name := range trivy.SetNames() {
		specs, err := trivy.Dashboards(name)
		if err != nil {
			return err
		}
		color.New(color.Bold).Fprintf(a.out, "%s", name)
		fmt.Fprintf(a.out, " -> %s, %d dashboards\n", trivy.FileName(name), len(specs))
		for _, spec := range specs {
			fmt.Fprintf(a.out, "  %-32s %s\n", spec.ID, spec.Title)
		}
	}
	return nil
}

func (a *app) listCatalog(ctx context.Context, opts listOptions) error {
	var filter catalog.ListFilter
	for _, t := range opts.types {
		switch typ := savedobject.Type(t); typ {
		case savedobject.IndexPatternType, savedobject.DashboardType:
			filter.Types = append(filter.Types, typ)
		default:
			return savedobject.Invalidf("unknown saved object type %q", t)
		}
	}

	return a.withCatalog(opts.catalogDir, func(cat catalog.Catalog) error {
		entries, err := cat.List(ctx, filter)
		if err != nil {
			return err
		}
		stats, err := cat.Stats(ctx)
		if err != nil {
			return err
		}

		for _, e := range entries {
			fmt.Fprintf(a.out, "%-32s %-14s %s %s\n",
				e.ID, e.Type, e.Title, color.HiBlackString("(%s)", humanize.Time(e.StoredAt)))
		}
		fmt.Fprintf(a.out, "%d of %d records, %s on disk\n",
			len(entries), stats.TotalRecords, humanize.Bytes(stats.SizeBytes))
		return nil
	})
}
