package lens

import (
	"github.com/cockroachdb/errors"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// GridColumns is the width of the Kibana dashboard grid.
const GridColumns = 48

// Kind selects the visualization a panel renders.
type Kind string

const (
	Table  Kind = "table"
	Metric Kind = "metric"
	Pie    Kind = "pie"
	XY     Kind = "xy"
)

// Lens visualization type tags
const (
	VisDatatable = "lnsDatatable"
	VisMetric    = "lnsMetric"
	VisPie       = "lnsPie"
	VisXY        = "lnsXY"
)

// SeriesType is the rendering of an XY layer.
type SeriesType string

const (
	Bar                  SeriesType = "bar"
	BarStacked           SeriesType = "bar_stacked"
	BarHorizontal        SeriesType = "bar_horizontal"
	BarHorizontalStacked SeriesType = "bar_horizontal_stacked"
	Line                 SeriesType = "line"
	Area                 SeriesType = "area"
	AreaStacked          SeriesType = "area_stacked"
)

var seriesTypes = map[SeriesType]bool{
	Bar: true, BarStacked: true, BarHorizontal: true, BarHorizontalStacked: true,
	Line: true, Area: true, AreaStacked: true,
}

// Pie shapes
const (
	ShapeDonut = "donut"
	ShapePie   = "pie"
)

const layerType = "data"

// Grid is a panel rectangle in grid units.
type Grid struct {
	X, Y, W, H int
}

// PanelSpec is the input of Build.
type PanelSpec struct {
	ID    string
	Kind  Kind
	Title string
	Grid  Grid
	// Query is a KQL string applied to the whole panel. It is never parsed.
	Query string
	// DataSource is the index-pattern id the layer reads from.
	DataSource string
	Columns    []ColumnSpec

	// Shape applies to pie panels, Series to xy panels.
	Shape  string
	Series SeriesType
}

// DataSourceID returns the data source the panel references.
func (s PanelSpec) DataSourceID() string {
	if s.DataSource == "" {
		return config.DefaultDataViewID
	}
	return s.DataSource
}

// LayerReferenceName is the reference name Lens uses for a layer's data view.
func LayerReferenceName(layerID string) string {
	return "indexpattern-datasource-layer-" + layerID
}

// Build renders a panel spec into a Lens panel. Errors are configuration
// errors and name the panel.
func Build(spec PanelSpec) (Panel, error) {
	p, err := build(spec)
	if err != nil {
		return Panel{}, errors.Wrapf(err, "panel %q", spec.ID)
	}
	return p, nil
}

func build(spec PanelSpec) (Panel, error) {
	if spec.ID == "" {
		return Panel{}, savedobject.Invalidf("panel has no id")
	}
	if err := validateGrid(spec.Grid); err != nil {
		return Panel{}, err
	}

	kind := spec.Kind
	if kind == "" {
		kind = Table
	}
	columns := spec.Columns
	if kind == Metric && len(columns) == 0 {
		columns = []ColumnSpec{{Agg: Count, Label: spec.Title}}
	}

	layer, err := BuildLayer(columns)
	if err != nil {
		return Panel{}, err
	}

	var visType string
	var vis any
	switch kind {
	case Table:
		visType, vis = VisDatatable, datatable(layer)
	case Metric:
		visType = VisMetric
		vis, err = metric(layer)
	case Pie:
		visType = VisPie
		vis, err = pie(layer, spec.Shape)
	case XY:
		visType = VisXY
		vis, err = xy(layer, spec.Series)
	default:
		return Panel{}, savedobject.Invalidf("unknown panel kind %q", spec.Kind)
	}
	if err != nil {
		return Panel{}, err
	}

	return Panel{
		Version: config.KibanaVersion,
		Type:    savedobject.LensType,
		GridData: GridData{
			X: spec.Grid.X,
			Y: spec.Grid.Y,
			W: spec.Grid.W,
			H: spec.Grid.H,
			I: spec.ID,
		},
		PanelIndex: spec.ID,
		EmbeddableConfig: EmbeddableConfig{
			Attributes: Attributes{
				Title:             spec.Title,
				Type:              savedobject.LensType,
				VisualizationType: visType,
				State: State{
					DatasourceStates: DatasourceStates{
						FormBased: FormBased{
							Layers: map[string]Layer{config.DefaultLayerID: layer},
						},
					},
					Visualization: vis,
					Query:         Query{Query: spec.Query, Language: config.QueryLanguage},
					Filters:       []any{},
				},
				References: []savedobject.Reference{{
					ID:   spec.DataSourceID(),
					Name: LayerReferenceName(config.DefaultLayerID),
					Type: savedobject.IndexPatternType,
				}},
			},
			Enhancements: map[string]any{},
		},
	}, nil
}

func validateGrid(g Grid) error {
	switch {
	case g.W <= 0 || g.H <= 0:
		return savedobject.Invalidf("grid size %dx%d must be positive", g.W, g.H)
	case g.X < 0 || g.Y < 0:
		return savedobject.Invalidf("grid position (%d,%d) must not be negative", g.X, g.Y)
	case g.X+g.W > GridColumns:
		return savedobject.Invalidf("grid x+w = %d exceeds %d columns", g.X+g.W, GridColumns)
	}
	return nil
}

func datatable(layer Layer) DatatableVisualization {
	cols := make([]DatatableColumn, len(layer.ColumnOrder))
	for i, id := range layer.ColumnOrder {
		cols[i] = DatatableColumn{ColumnID: id}
	}
	return DatatableVisualization{
		LayerID:   config.DefaultLayerID,
		LayerType: layerType,
		Columns:   cols,
	}
}

func metric(layer Layer) (MetricVisualization, error) {
	metrics := layer.Metrics()
	if len(layer.ColumnOrder) != 1 || len(metrics) != 1 {
		return MetricVisualization{}, savedobject.Invalidf("metric panel needs exactly one count column, got %d columns", len(layer.ColumnOrder))
	}
	return MetricVisualization{
		LayerID:        config.DefaultLayerID,
		LayerType:      layerType,
		MetricAccessor: metrics[0],
	}, nil
}

func pie(layer Layer, shape string) (PieVisualization, error) {
	buckets, metrics := layer.Buckets(), layer.Metrics()
	if len(buckets) == 0 || len(metrics) == 0 {
		return PieVisualization{}, savedobject.Invalidf("pie panel needs a bucket column and a count column")
	}
	if shape == "" {
		shape = ShapeDonut
	}
	if shape != ShapeDonut && shape != ShapePie {
		return PieVisualization{}, savedobject.Invalidf("unknown pie shape %q", shape)
	}
	return PieVisualization{
		Shape: shape,
		Layers: []PieLayer{{
			LayerID:         config.DefaultLayerID,
			PrimaryGroups:   buckets,
			Metrics:         metrics,
			NumberDisplay:   "percent",
			CategoryDisplay: "default",
			LegendDisplay:   "default",
			LayerType:       layerType,
		}},
	}, nil
}

func xy(layer Layer, series SeriesType) (XYVisualization, error) {
	buckets, metrics := layer.Buckets(), layer.Metrics()
	if len(buckets) == 0 || len(metrics) == 0 {
		return XYVisualization{}, savedobject.Invalidf("xy panel needs an x column and a count column")
	}
	if len(buckets) > 2 {
		return XYVisualization{}, savedobject.Invalidf("xy panel takes at most two bucket columns, got %d", len(buckets))
	}

	if series == "" {
		series = BarHorizontal
		if layer.Columns[buckets[0]].OperationType == string(DateHistogram) {
			series = AreaStacked
		}
	}
	if !seriesTypes[series] {
		return XYVisualization{}, savedobject.Invalidf("unknown series type %q", series)
	}

	l := XYLayer{
		LayerID:    config.DefaultLayerID,
		Accessors:  metrics,
		Position:   "top",
		SeriesType: series,
		LayerType:  layerType,
		XAccessor:  buckets[0],
	}
	if len(buckets) == 2 {
		l.SplitAccessor = buckets[1]
	}

	all := AxisVisibility{X: true, YLeft: true, YRight: true}
	return XYVisualization{
		Legend:                       Legend{IsVisible: true, Position: "right"},
		ValueLabels:                  "hide",
		FittingFunction:              "Linear",
		AxisTitlesVisibilitySettings: all,
		TickLabelsVisibilitySettings: all,
		GridlinesVisibilitySettings:  all,
		PreferredSeriesType:          series,
		Layers:                       []XYLayer{l},
	}, nil
}
