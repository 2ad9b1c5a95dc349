package lens

import "github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"

// Panel is one Lens tile in a dashboard's panelsJSON.
type Panel struct {
	Version          string           `json:"version"`
	Type             savedobject.Type `json:"type"`
	GridData         GridData         `json:"gridData"`
	PanelIndex       string           `json:"panelIndex"`
	EmbeddableConfig EmbeddableConfig `json:"embeddableConfig"`
}

// GridData places a panel on the 48-column dashboard grid. I repeats the
// panelIndex.
type GridData struct {
	X int    `json:"x"`
	Y int    `json:"y"`
	W int    `json:"w"`
	H int    `json:"h"`
	I string `json:"i"`
}

type EmbeddableConfig struct {
	Attributes   Attributes     `json:"attributes"`
	Enhancements map[string]any `json:"enhancements"`
}

// Attributes is the by-value Lens visualization embedded in a panel.
type Attributes struct {
	Title             string                  `json:"title"`
	Type              savedobject.Type        `json:"type"`
	VisualizationType string                  `json:"visualizationType"`
	State             State                   `json:"state"`
	References        []savedobject.Reference `json:"references"`
}

type State struct {
	DatasourceStates DatasourceStates `json:"datasourceStates"`
	Visualization    any              `json:"visualization"`
	Query            Query            `json:"query"`
	Filters          []any            `json:"filters"`
}

// Query is a KQL expression. dashgen never parses it.
type Query struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

type DatasourceStates struct {
	FormBased FormBased `json:"formBased"`
}

type FormBased struct {
	Layers map[string]Layer `json:"layers"`
}

// Layer holds the columns of one data layer. ColumnOrder lists exactly the
// keys of Columns, in display order.
type Layer struct {
	ColumnOrder []string          `json:"columnOrder"`
	Columns     map[string]Column `json:"columns"`
}

// Buckets returns the ids of bucketed columns in display order.
func (l Layer) Buckets() []string {
	var ids []string
	for _, id := range l.ColumnOrder {
		if l.Columns[id].IsBucketed {
			ids = append(ids, id)
		}
	}
	return ids
}

// Metrics returns the ids of metric columns in display order.
func (l Layer) Metrics() []string {
	var ids []string
	for _, id := range l.ColumnOrder {
		if !l.Columns[id].IsBucketed {
			ids = append(ids, id)
		}
	}
	return ids
}

type Column struct {
	Label         string        `json:"label"`
	DataType      string        `json:"dataType"`
	OperationType string        `json:"operationType"`
	Scale         string        `json:"scale"`
	SourceField   string        `json:"sourceField"`
	IsBucketed    bool          `json:"isBucketed"`
	Params        *ColumnParams `json:"params,omitempty"`
	Filter        *Query        `json:"filter,omitempty"`
}

// ColumnParams is the union of the params Kibana accepts for the supported
// operations; unset fields are omitted.
type ColumnParams struct {
	// terms
	Size           int      `json:"size,omitempty"`
	OrderBy        *OrderBy `json:"orderBy,omitempty"`
	OrderDirection string   `json:"orderDirection,omitempty"`
	OtherBucket    *bool    `json:"otherBucket,omitempty"`
	MissingBucket  *bool    `json:"missingBucket,omitempty"`
	ParentFormat   *Format  `json:"parentFormat,omitempty"`

	// count
	EmptyAsNull bool `json:"emptyAsNull,omitempty"`

	// date_histogram
	Interval         string `json:"interval,omitempty"`
	IncludeEmptyRows *bool  `json:"includeEmptyRows,omitempty"`
	DropPartials     *bool  `json:"dropPartials,omitempty"`
}

type OrderBy struct {
	Type     string `json:"type"`
	ColumnID string `json:"columnId,omitempty"`
}

type Format struct {
	ID string `json:"id"`
}

// DatatableVisualization is the lnsDatatable state.
type DatatableVisualization struct {
	LayerID   string            `json:"layerId"`
	LayerType string            `json:"layerType"`
	Columns   []DatatableColumn `json:"columns"`
}

type DatatableColumn struct {
	ColumnID string `json:"columnId"`
}

// MetricVisualization is the lnsMetric state.
type MetricVisualization struct {
	LayerID        string `json:"layerId"`
	LayerType      string `json:"layerType"`
	MetricAccessor string `json:"metricAccessor"`
}

// PieVisualization is the lnsPie state.
type PieVisualization struct {
	Shape  string     `json:"shape"`
	Layers []PieLayer `json:"layers"`
}

type PieLayer struct {
	LayerID         string   `json:"layerId"`
	PrimaryGroups   []string `json:"primaryGroups"`
	Metrics         []string `json:"metrics"`
	NumberDisplay   string   `json:"numberDisplay"`
	CategoryDisplay string   `json:"categoryDisplay"`
	LegendDisplay   string   `json:"legendDisplay"`
	NestedLegend    bool     `json:"nestedLegend"`
	LayerType       string   `json:"layerType"`
}

// XYVisualization is the lnsXY state.
type XYVisualization struct {
	Legend                       Legend         `json:"legend"`
	ValueLabels                  string         `json:"valueLabels"`
	FittingFunction              string         `json:"fittingFunction"`
	AxisTitlesVisibilitySettings AxisVisibility `json:"axisTitlesVisibilitySettings"`
	TickLabelsVisibilitySettings AxisVisibility `json:"tickLabelsVisibilitySettings"`
	GridlinesVisibilitySettings  AxisVisibility `json:"gridlinesVisibilitySettings"`
	PreferredSeriesType          SeriesType     `json:"preferredSeriesType"`
	Layers                       []XYLayer      `json:"layers"`
}

type Legend struct {
	IsVisible bool   `json:"isVisible"`
	Position  string `json:"position"`
}

type AxisVisibility struct {
	X      bool `json:"x"`
	YLeft  bool `json:"yLeft"`
	YRight bool `json:"yRight"`
}

type XYLayer struct {
	LayerID       string     `json:"layerId"`
	Accessors     []string   `json:"accessors"`
	Position      string     `json:"position"`
	SeriesType    SeriesType `json:"seriesType"`
	ShowGridlines bool       `json:"showGridlines"`
	LayerType     string     `json:"layerType"`
	XAccessor     string     `json:"xAccessor"`
	SplitAccessor string     `json:"splitAccessor,omitempty"`
}
