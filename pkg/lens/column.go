package lens

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// Agg is a Lens column operation.
type Agg string

const (
	Count         Agg = "count"
	Terms         Agg = "terms"
	DateHistogram Agg = "date_histogram"
)

// Sort directions for terms columns
const (
	Desc = "desc"
	Asc  = "asc"
)

// ColumnSpec describes one column of a panel's data layer.
type ColumnSpec struct {
	// ID defaults to colN, N being the 1-based position.
	ID    string
	Label string
	// Field is the source field. Required for terms; count falls back to
	// document count and date_histogram to @timestamp.
	Field string
	// Agg defaults to terms when Field is set and count otherwise.
	Agg Agg

	// terms only
	Size           int
	OrderBy        string
	OrderDirection string

	// date_histogram only
	Interval string

	// Filter is a KQL expression restricting the rows this column counts.
	Filter string
}

func (c ColumnSpec) agg() Agg {
	if c.Agg != "" {
		return c.Agg
	}
	if c.Field != "" {
		return Terms
	}
	return Count
}

// BuildLayer turns column specs into a data layer. Column order follows specs.
func BuildLayer(specs []ColumnSpec) (Layer, error) {
	if len(specs) == 0 {
		return Layer{}, savedobject.Invalidf("layer has no columns")
	}

	ids := make([]string, len(specs))
	seen := make(map[string]bool, len(specs))
	firstMetric := ""
	for i, spec := range specs {
		id := spec.ID
		if id == "" {
			id = fmt.Sprintf("col%d", i+1)
		}
		if seen[id] {
			return Layer{}, savedobject.Invalidf("duplicate column id %q", id)
		}
		seen[id] = true
		ids[i] = id

		if spec.agg() == Count && firstMetric == "" {
			firstMetric = id
		}
	}

	layer := Layer{
		ColumnOrder: ids,
		Columns:     make(map[string]Column, len(specs)),
	}
	for i, spec := range specs {
		col, err := buildColumn(spec, firstMetric, specs, ids)
		if err != nil {
			return Layer{}, errors.Wrapf(err, "column %q", ids[i])
		}
		layer.Columns[ids[i]] = col
	}
	return layer, nil
}

func buildColumn(spec ColumnSpec, firstMetric string, specs []ColumnSpec, ids []string) (Column, error) {
	var col Column
	switch spec.agg() {
	case Count:
		col = countColumn(spec)
	case Terms:
		orderBy, err := resolveOrderBy(spec.OrderBy, firstMetric, specs, ids)
		if err != nil {
			return Column{}, err
		}
		col, err = termsColumn(spec, orderBy)
		if err != nil {
			return Column{}, err
		}
	case DateHistogram:
		col = dateHistogramColumn(spec)
	default:
		return Column{}, savedobject.Invalidf("unsupported aggregation %q", spec.Agg)
	}

	if spec.Filter != "" {
		col.Filter = &Query{Query: spec.Filter, Language: config.QueryLanguage}
	}
	return col, nil
}

func resolveOrderBy(orderBy, firstMetric string, specs []ColumnSpec, ids []string) (string, error) {
	if orderBy == "" {
		if firstMetric == "" {
			return "", savedobject.Invalidf("terms column needs a count column to order by")
		}
		return firstMetric, nil
	}
	for i, id := range ids {
		if id != orderBy {
			continue
		}
		if specs[i].agg() != Count {
			return "", savedobject.Invalidf("cannot order by %q: not a count column", orderBy)
		}
		return id, nil
	}
	return "", savedobject.Invalidf("cannot order by unknown column %q", orderBy)
}

func countColumn(spec ColumnSpec) Column {
	field := spec.Field
	if field == "" {
		field = config.RecordsField
	}
	label := spec.Label
	if label == "" {
		label = "Count"
	}
	return Column{
		Label:         label,
		DataType:      "number",
		OperationType: string(Count),
		Scale:         "ratio",
		SourceField:   field,
		IsBucketed:    false,
		Params:        &ColumnParams{EmptyAsNull: true},
	}
}

func termsColumn(spec ColumnSpec, orderBy string) (Column, error) {
	if spec.Field == "" {
		return Column{}, savedobject.Invalidf("terms column has no field")
	}

	size := spec.Size
	if size == 0 {
		size = config.DefaultTermsSize
	}
	if size < 0 {
		return Column{}, savedobject.Invalidf("terms size must be positive, got %d", size)
	}

	direction := spec.OrderDirection
	if direction == "" {
		direction = Desc
	}
	if direction != Desc && direction != Asc {
		return Column{}, savedobject.Invalidf("unknown order direction %q", direction)
	}

	label := spec.Label
	if label == "" {
		label = spec.Field
	}

	return Column{
		Label:         label,
		DataType:      "string",
		OperationType: string(Terms),
		Scale:         "ordinal",
		SourceField:   spec.Field,
		IsBucketed:    true,
		Params: &ColumnParams{
			Size:           size,
			OrderBy:        &OrderBy{Type: "column", ColumnID: orderBy},
			OrderDirection: direction,
			OtherBucket:    boolPtr(false),
			MissingBucket:  boolPtr(false),
			ParentFormat:   &Format{ID: string(Terms)},
		},
	}, nil
}

func dateHistogramColumn(spec ColumnSpec) Column {
	field := spec.Field
	if field == "" {
		field = config.DefaultTimeField
	}
	label := spec.Label
	if label == "" {
		label = field
	}
	interval := spec.Interval
	if interval == "" {
		interval = "auto"
	}
	return Column{
		Label:         label,
		DataType:      "date",
		OperationType: string(DateHistogram),
		Scale:         "interval",
		SourceField:   field,
		IsBucketed:    true,
		Params: &ColumnParams{
			Interval:         interval,
			IncludeEmptyRows: boolPtr(true),
			DropPartials:     boolPtr(false),
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
