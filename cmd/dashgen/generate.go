package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/blueprint"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/dashboard"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/export"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/trivy"
)

type generateOptions struct {
	outputDir        string
	combine          string
	blueprints       []string
	catalogDir       string
	stamp            bool
	allowMissingRefs bool
}

func newGenerateCommand(a *app) *cobra.Command {
	opts := generateOptions{outputDir: a.cfg.OutputDir, catalogDir: a.cfg.CatalogDir}

	cmd := &cobra.Command{
		Use:   "generate [SET...]",
		Short: "Write dashboard sets and blueprints as export files",
		Long: "Builds the named built-in sets (" + strings.Join(trivy.SetNames(), ", ") + ") and any\n" +
			"blueprints, then writes one trivy-<set>.ndjson per set. Without arguments every\n" +
			"built-in set is written. Files are replaced together: if any document is invalid\n" +
			"or cannot be written, every target keeps its previous content.",
		Example: "  dashgen generate\n" +
			"  dashgen generate overview unified -d exports\n" +
			"  dashgen generate all --blueprint audit.yaml --combine trivy-everything",
		ValidArgs: trivy.SetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context(), opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outputDir, "output-dir", "d", opts.outputDir, "directory export files are written to")
	f.StringVar(&opts.combine, "combine", "", "write everything into one file with this name")
	f.StringArrayVarP(&opts.blueprints, "blueprint", "b", nil, "YAML blueprint with extra data views and dashboards (repeatable)")
	f.StringVar(&opts.catalogDir, "catalog", opts.catalogDir, "also store the generated records in the catalog at this directory")
	f.BoolVar(&opts.stamp, "stamp", false, "stamp records with the current time instead of "+config.DefaultTimestamp)
	f.BoolVar(&opts.allowMissingRefs, "allow-missing-refs", false, "write documents with unresolved references and list them in the summary")
	return cmd
}

func (a *app) generate(ctx context.Context, opts generateOptions, sets []string) error {
	var dopts dashboard.Options
	if opts.stamp {
		dopts.Stamp = a.now()
	}
	if len(sets) == 0 && len(opts.blueprints) == 0 {
		sets = trivy.SetNames()
	}

	outputs, err := a.planOutputs(opts, sets, dopts)
	if err != nil {
		return err
	}

	// Build every document before the first file is touched.
	eopts := export.Options{AllowMissingRefs: opts.allowMissingRefs}
	var stored []savedobject.Record
	for _, o := range outputs {
		doc, err := export.Build(o.Records, eopts)
		if err != nil {
			return errors.Wrapf(err, "%s", o.Path)
		}
		stored = append(stored, doc.Records...)
	}

	write := func() ([]*export.ExportResult, error) {
		results, err := export.NewExporter(a.fs, eopts).ExportFiles(outputs)
		if err != nil {
			return nil, err
		}
		for _, res := range results {
			log.Info().Str("path", res.Path).Int("objects", res.ExportedCount).Msg("✅ export written")
		}
		return results, nil
	}

	var results []*export.ExportResult
	if opts.catalogDir == "" {
		results, err = write()
	} else {
		err = a.withCatalog(opts.catalogDir, func(cat catalog.Catalog) error {
			res, err := write()
			if err != nil {
				return err
			}
			results = res
			put, err := cat.Put(ctx, stored)
			if err != nil {
				return errors.Wrap(err, "failed to store records in catalog")
			}
			log.Info().Str("catalog", opts.catalogDir).
				Int("written", put.Written).Int("unchanged", put.Unchanged).
				Msg("💾 catalog updated")
			return nil
		})
	}
	if err != nil {
		return err
	}

	a.printResults(results)
	return nil
}

// planOutputs builds the records of every set and blueprint and assigns
// them to files.
func (a *app) planOutputs(opts generateOptions, sets []string, dopts dashboard.Options) ([]export.FileExport, error) {
	var outputs []export.FileExport
	for _, name := range sets {
		records, err := trivy.Set(name, dopts)
		if err != nil {
			return nil, errors.Wrapf(err, "set %q", name)
		}
		outputs = append(outputs, export.FileExport{
			Path:    filepath.Join(opts.outputDir, trivy.FileName(name)),
			Records: records,
		})
	}

	for _, path := range opts.blueprints {
		bp, err := blueprint.Load(a.fs, path)
		if err != nil {
			return nil, err
		}
		records, err := bp.Records(dopts)
		if err != nil {
			return nil, errors.Wrapf(err, "blueprint %s", path)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outputs = append(outputs, export.FileExport{
			Path:    filepath.Join(opts.outputDir, withExtension(name)),
			Records: records,
		})
	}

	if opts.combine == "" {
		return outputs, nil
	}
	var all []savedobject.Record
	for _, o := range outputs {
		all = append(all, o.Records...)
	}
	return []export.FileExport{{Path: filepath.Join(opts.outputDir, withExtension(opts.combine)), Records: all}}, nil
}

func withExtension(name string) string {
	if strings.HasSuffix(name, config.FileExtension) {
		return name
	}
	return name + config.FileExtension
}
