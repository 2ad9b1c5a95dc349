package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/export"
)

// printResults shows what was written and how to import it.
func (a *app) printResults(results []*export.ExportResult) {
	bold := color.New(color.Bold)
	for _, res := range results {
		bold.Fprintf(a.out, "%s", res.Path)
		fmt.Fprintf(a.out, " (%d objects, %s)\n", res.ExportedCount, humanize.Bytes(uint64(res.BytesWritten)))
		for i, obj := range res.Objects {
			fmt.Fprintf(a.out, "  %2d. %s %s\n", i+1, obj.Title, color.HiBlackString("[%s]", obj.Type))
		}
		if n := len(res.MissingReferences); n > 0 {
			fmt.Fprintln(a.out, color.YellowString("  %d unresolved references are listed in the summary line", n))
		}
	}
	if len(results) == 0 {
		return
	}

	file := filepath.Base(results[len(results)-1].Path)
	fmt.Fprintf(a.out, "\nImport into Kibana:\n")
	fmt.Fprintf(a.out, "  1. Stack Management > Saved Objects > Import\n")
	fmt.Fprintf(a.out, "  2. Select %s and confirm\n", file)
	fmt.Fprintf(a.out, "  3. Open Analytics > Dashboard\n")
	fmt.Fprintf(a.out, "or with the API:\n")
	fmt.Fprintf(a.out, "  curl -X POST \"$KIBANA_URL/api/saved_objects/_import?overwrite=true\" -H \"kbn-xsrf: true\" --form file=@%s\n", file)
}
