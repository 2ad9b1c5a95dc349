package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/export"
)

func newVerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE...",
		Short: "Check export files for structural problems",
		Long: "Checks that every line is a JSON object, the summary is the single last line\n" +
			"and its counters match, ids and panel indexes are unique, and every reference\n" +
			"resolves or is listed as missing.",
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.verify(args)
		},
	}
}

func (a *app) verify(paths []string) error {
	importer := export.NewImporter(a.fs)

	failed := 0
	for _, path := range paths {
		report, err := importer.VerifyFile(path)
		if err != nil {
			return err
		}
		if report.OK() {
			fmt.Fprintf(a.out, "%s %s (%d objects)\n", color.GreenString("ok  "), path, report.Records)
			continue
		}

		failed++
		fmt.Fprintf(a.out, "%s %s\n", color.RedString("FAIL"), path)
		for _, problem := range report.Problems {
			fmt.Fprintf(a.out, "       %s\n", problem)
		}
	}

	if failed > 0 {
		return errors.Newf("%d of %d documents failed verification", failed, len(paths))
	}
	return nil
}
