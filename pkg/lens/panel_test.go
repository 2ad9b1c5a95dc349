package lens

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

func namespaceTable() PanelSpec {
	return PanelSpec{
		ID:    "panel-1",
		Kind:  Table,
		Title: "Vulnerabilities by namespace",
		Grid:  Grid{X: 0, Y: 0, W: 48, H: 15},
		Query: `event.dataset: "trivy.vulnerability"`,
		Columns: []ColumnSpec{
			{Label: "Namespace", Field: "kubernetes.namespace", Agg: Terms, Size: 50},
			{Label: "Count", Agg: Count},
		},
	}
}

func TestBuild_TableColumnOrder(t *testing.T) {
	p, err := Build(namespaceTable())
	require.NoError(t, err)

	layer := p.EmbeddableConfig.Attributes.State.DatasourceStates.FormBased.Layers["layer1"]
	require.Equal(t, []string{"col1", "col2"}, layer.ColumnOrder)
	require.Len(t, layer.Columns, 2)
	for _, id := range layer.ColumnOrder {
		require.Contains(t, layer.Columns, id)
	}

	ns := layer.Columns["col1"]
	require.Equal(t, "terms", ns.OperationType)
	require.Equal(t, "kubernetes.namespace", ns.SourceField)
	require.Equal(t, 50, ns.Params.Size)
	require.Equal(t, "col2", ns.Params.OrderBy.ColumnID)
	require.Equal(t, "desc", ns.Params.OrderDirection)

	require.Equal(t, "count", layer.Columns["col2"].OperationType)
	require.Equal(t, "___records___", layer.Columns["col2"].SourceField)

	attrs := p.EmbeddableConfig.Attributes
	require.Equal(t, VisDatatable, attrs.VisualizationType)
	require.Equal(t, `event.dataset: "trivy.vulnerability"`, attrs.State.Query.Query)
	require.Equal(t, "kuery", attrs.State.Query.Language)
	require.Equal(t, []savedobject.Reference{{
		ID:   "trivy-reports",
		Name: "indexpattern-datasource-layer-layer1",
		Type: savedobject.IndexPatternType,
	}}, attrs.References)
}

func TestBuild_EncodedShape(t *testing.T) {
	p, err := Build(namespaceTable())
	require.NoError(t, err)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	doc := gjson.ParseBytes(raw)

	require.Equal(t, "panel-1", doc.Get("panelIndex").String())
	require.Equal(t, "panel-1", doc.Get("gridData.i").String())
	require.Equal(t, "lens", doc.Get("type").String())
	require.Equal(t, "8.8.0", doc.Get("version").String())
	require.True(t, doc.Get("embeddableConfig.enhancements").IsObject())
	require.True(t, doc.Get("embeddableConfig.attributes.state.filters").IsArray())

	col := doc.Get("embeddableConfig.attributes.state.datasourceStates.formBased.layers.layer1.columns.col1")
	require.False(t, col.Get("params.otherBucket").Bool())
	require.True(t, col.Get("params.otherBucket").Exists())
	require.Equal(t, "terms", col.Get("params.parentFormat.id").String())
	require.False(t, col.Get("filter").Exists())

	vis := doc.Get("embeddableConfig.attributes.state.visualization")
	require.Equal(t, "layer1", vis.Get("layerId").String())
	require.Equal(t, []string{"col1", "col2"}, stringsOf(vis.Get("columns.#.columnId")))
}

func TestBuild_ColumnFilter(t *testing.T) {
	spec := namespaceTable()
	spec.Columns = append(spec.Columns, ColumnSpec{
		ID:     "critical",
		Label:  "Critical",
		Agg:    Count,
		Filter: "vulnerability.severity: critical",
	})

	p, err := Build(spec)
	require.NoError(t, err)

	layer := p.EmbeddableConfig.Attributes.State.DatasourceStates.FormBased.Layers["layer1"]
	require.Equal(t, []string{"col1", "col2", "critical"}, layer.ColumnOrder)
	require.Equal(t, &Query{Query: "vulnerability.severity: critical", Language: "kuery"}, layer.Columns["critical"].Filter)
}

func TestBuild_OrderByExplicitColumn(t *testing.T) {
	spec := namespaceTable()
	spec.Columns = []ColumnSpec{
		{Label: "Pod", Field: "kubernetes.pod.name", OrderBy: "critical", Size: 100},
		{ID: "critical", Label: "Critical", Filter: "tags: critical"},
		{Label: "Total"},
	}

	p, err := Build(spec)
	require.NoError(t, err)
	layer := p.EmbeddableConfig.Attributes.State.DatasourceStates.FormBased.Layers["layer1"]
	require.Equal(t, "critical", layer.Columns["col1"].Params.OrderBy.ColumnID)
	require.Equal(t, "terms", layer.Columns["col1"].OperationType)
	require.Equal(t, "count", layer.Columns["col3"].OperationType)
}

func TestBuild_Metric(t *testing.T) {
	p, err := Build(PanelSpec{
		ID:    "metric-vulns",
		Kind:  Metric,
		Title: "Vulnerabilities",
		Grid:  Grid{W: 8, H: 8},
		Query: `event.dataset: "trivy.vulnerability"`,
	})
	require.NoError(t, err)

	attrs := p.EmbeddableConfig.Attributes
	require.Equal(t, VisMetric, attrs.VisualizationType)
	require.Equal(t, MetricVisualization{LayerID: "layer1", LayerType: "data", MetricAccessor: "col1"}, attrs.State.Visualization)
	layer := attrs.State.DatasourceStates.FormBased.Layers["layer1"]
	require.Equal(t, "Vulnerabilities", layer.Columns["col1"].Label)
}

func TestBuild_Pie(t *testing.T) {
	p, err := Build(PanelSpec{
		ID:    "severity",
		Kind:  Pie,
		Title: "Vulnerabilities by severity",
		Grid:  Grid{W: 24, H: 15},
		Columns: []ColumnSpec{
			{Label: "Severity", Field: "vulnerability.severity"},
			{Label: "Count"},
		},
	})
	require.NoError(t, err)

	vis, ok := p.EmbeddableConfig.Attributes.State.Visualization.(PieVisualization)
	require.True(t, ok)
	require.Equal(t, "donut", vis.Shape)
	require.Equal(t, []string{"col1"}, vis.Layers[0].PrimaryGroups)
	require.Equal(t, []string{"col2"}, vis.Layers[0].Metrics)
}

func TestBuild_XY(t *testing.T) {
	p, err := Build(PanelSpec{
		ID:    "timeline",
		Kind:  XY,
		Title: "Findings over time",
		Grid:  Grid{X: 24, W: 24, H: 15},
		Columns: []ColumnSpec{
			{Agg: DateHistogram},
			{Label: "Count"},
			{Label: "Report Type", Field: "event.dataset", Size: 5},
		},
	})
	require.NoError(t, err)

	vis, ok := p.EmbeddableConfig.Attributes.State.Visualization.(XYVisualization)
	require.True(t, ok)
	require.Equal(t, AreaStacked, vis.PreferredSeriesType)
	require.Len(t, vis.Layers, 1)
	require.Equal(t, "col1", vis.Layers[0].XAccessor)
	require.Equal(t, "col3", vis.Layers[0].SplitAccessor)
	require.Equal(t, []string{"col2"}, vis.Layers[0].Accessors)

	layer := p.EmbeddableConfig.Attributes.State.DatasourceStates.FormBased.Layers["layer1"]
	hist := layer.Columns["col1"]
	require.Equal(t, "@timestamp", hist.SourceField)
	require.Equal(t, "auto", hist.Params.Interval)
	require.True(t, *hist.Params.IncludeEmptyRows)
}

func TestBuild_XYDefaultsToHorizontalBars(t *testing.T) {
	p, err := Build(PanelSpec{
		ID:   "namespaces",
		Kind: XY,
		Grid: Grid{W: 48, H: 15},
		Columns: []ColumnSpec{
			{Field: "kubernetes.namespace"},
			{Label: "Count"},
		},
	})
	require.NoError(t, err)
	vis := p.EmbeddableConfig.Attributes.State.Visualization.(XYVisualization)
	require.Equal(t, BarHorizontal, vis.Layers[0].SeriesType)
	require.Empty(t, vis.Layers[0].SplitAccessor)
}

func TestBuild_Errors(t *testing.T) {
	valid := namespaceTable

	tests := []struct {
		name   string
		mutate func(*PanelSpec)
	}{
		{"empty id", func(s *PanelSpec) { s.ID = "" }},
		{"zero width", func(s *PanelSpec) { s.Grid.W = 0 }},
		{"negative y", func(s *PanelSpec) { s.Grid.Y = -1 }},
		{"wider than grid", func(s *PanelSpec) { s.Grid.X = 24 }},
		{"no columns", func(s *PanelSpec) { s.Columns = nil }},
		{"unknown kind", func(s *PanelSpec) { s.Kind = "gauge" }},
		{"duplicate column id", func(s *PanelSpec) { s.Columns[1].ID = "col1" }},
		{"terms without metric", func(s *PanelSpec) { s.Columns = s.Columns[:1] }},
		{"terms without field", func(s *PanelSpec) { s.Columns[0].Field = "" }},
		{"order by unknown column", func(s *PanelSpec) { s.Columns[0].OrderBy = "nope" }},
		{"order by bucket column", func(s *PanelSpec) {
			s.Columns[0].ID = "ns"
			s.Columns[0].OrderBy = "ns"
		}},
		{"bad direction", func(s *PanelSpec) { s.Columns[0].OrderDirection = "up" }},
		{"negative size", func(s *PanelSpec) { s.Columns[0].Size = -5 }},
		{"unknown agg", func(s *PanelSpec) { s.Columns[1].Agg = "median" }},
		{"metric with bucket", func(s *PanelSpec) { s.Kind = Metric }},
		{"pie without bucket", func(s *PanelSpec) {
			s.Kind = Pie
			s.Columns = s.Columns[1:]
		}},
		{"bad pie shape", func(s *PanelSpec) {
			s.Kind = Pie
			s.Shape = "square"
		}},
		{"xy without metric", func(s *PanelSpec) {
			s.Kind = XY
			s.Columns = []ColumnSpec{{Agg: DateHistogram}}
		}},
		{"bad series", func(s *PanelSpec) {
			s.Kind = XY
			s.Series = "scatter"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid()
			tt.mutate(&spec)
			_, err := Build(spec)
			require.Error(t, err)
			require.True(t, savedobject.IsInvalidConfig(err), "expected configuration error, got %v", err)
		})
	}
}

func stringsOf(res gjson.Result) []string {
	var out []string
	for _, r := range res.Array() {
		out = append(out, r.String())
	}
	return out
}
