package dashboard

import (
	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// IndexPatternSpec describes a data view. Empty fields take the Trivy
// report defaults.
type IndexPatternSpec struct {
	ID        string
	Title     string // index pattern, e.g. trivy-reports-*
	Name      string // display name
	TimeField string
}

// IndexPattern builds an index-pattern record.
func IndexPattern(spec IndexPatternSpec, opts Options) savedobject.IndexPattern {
	ts := opts.timestamp()
	return savedobject.IndexPattern{
		Attributes: savedobject.IndexPatternAttributes{
			FieldAttrs:      "{}",
			FieldFormatMap:  "{}",
			Fields:          "[]",
			Name:            orDefault(spec.Name, config.DefaultDataViewName),
			RuntimeFieldMap: "{}",
			SourceFilters:   "[]",
			TimeFieldName:   orDefault(spec.TimeField, config.DefaultTimeField),
			Title:           orDefault(spec.Title, config.DefaultDataViewTitle),
			TypeMeta:        "{}",
		},
		CoreMigrationVersion: config.KibanaVersion,
		CreatedAt:            ts,
		ID:                   orDefault(spec.ID, config.DefaultDataViewID),
		References:           []savedobject.Reference{},
		Type:                 savedobject.IndexPatternType,
		TypeMigrationVersion: config.IndexPatternMigrationVersion,
		UpdatedAt:            ts,
		Version:              config.ObjectVersion,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
