package trivy

import (
	"sort"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/dashboard"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// Set names
const (
	SetOverview   = "overview"
	SetUnified    = "unified"
	SetNavigation = "navigation"
	SetAll        = "all"
)

var sets = map[string]func() []dashboard.Spec{
	SetOverview:   Overview,
	SetUnified:    func() []dashboard.Spec { return []dashboard.Spec{Unified()} },
	SetNavigation: Navigation,
	SetAll:        func() []dashboard.Spec { return append(Overview(), Navigation()...) },
}

// SetNames returns the built-in set names, sorted.
func SetNames() []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DataView is the index pattern every built-in dashboard queries.
func DataView() dashboard.IndexPatternSpec {
	return dashboard.IndexPatternSpec{}
}

// Dashboards returns the dashboard specs of a named set.
func Dashboards(name string) ([]dashboard.Spec, error) {
	fn, ok := sets[name]
	if !ok {
		return nil, savedobject.Invalidf("unknown dashboard set %q (known: %v)", name, SetNames())
	}
	return fn(), nil
}

// Set builds the records of a named set: the data view first, then its
// dashboards in order.
func Set(name string, opts dashboard.Options) ([]savedobject.Record, error) {
	specs, err := Dashboards(name)
	if err != nil {
		return nil, err
	}

	ip, err := dashboard.IndexPattern(DataView(), opts).Record()
	if err != nil {
		return nil, err
	}
	records := []savedobject.Record{ip}
	for _, spec := range specs {
		d, err := dashboard.New(spec, opts)
		if err != nil {
			return nil, err
		}
		rec, err := d.Record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FileName is the export file a set is written to.
func FileName(set string) string {
	return config.DefaultFilePrefix + set + config.FileExtension
}
