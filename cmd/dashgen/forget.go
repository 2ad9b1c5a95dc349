package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

func newForgetCommand(a *app) *cobra.Command {
	catalogDir := a.cfg.CatalogDir

	cmd := &cobra.Command{
		Use:   "forget --catalog DIR ID...",
		Short: "Remove saved objects from a catalog",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.forget(cmd.Context(), catalogDir, args)
		},
	}
	cmd.Flags().StringVar(&catalogDir, "catalog", catalogDir, "catalog directory")
	return cmd
}

func (a *app) forget(ctx context.Context, catalogDir string, ids []string) error {
	if catalogDir == "" {
		return savedobject.Invalidf("--catalog is required")
	}
	return a.withCatalog(catalogDir, func(cat catalog.Catalog) error {
		n, err := cat.Delete(ctx, ids...)
		if err != nil {
			return err
		}
		log.Info().Int("removed", n).Str("catalog", catalogDir).Msg("🗑️  catalog pruned")
		fmt.Fprintf(a.out, "removed %d of %d objects\n", n, len(ids))
		return nil
	})
}
