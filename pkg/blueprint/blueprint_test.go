package blueprint

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/dashboard"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/lens"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

const auditBlueprint = `
data_views:
  - id: k8s-audit
    title: k8s-audit-*
    name: Kubernetes audit
dashboards:
  - id: audit-overview
    title: Audit overview
    description: Who did what
    time_from: now-24h
    controls:
      - field: kubernetes.namespace
        title: Namespace
        placeholder: All namespaces
    panels:
      - kind: table
        title: Top users
        data_view: k8s-audit
        query: 'verb: delete'
        grid: {x: 0, y: 0, w: 24, h: 15}
        columns:
          - {label: User, field: user.name, size: 20}
          - {label: Events}
          - {id: denied, label: Denied, filter: 'response.code >= 403'}
      - id: over-time
        kind: xy
        title: Events over time
        data_view: k8s-audit
        series: bar_stacked
        grid: {x: 24, y: 0, w: 24, h: 15}
        columns:
          - {agg: date_histogram}
          - {label: Events}
`

func TestParse_Blueprint(t *testing.T) {
	bp, err := Parse(strings.NewReader(auditBlueprint))
	require.NoError(t, err)

	require.Equal(t, []dashboard.IndexPatternSpec{
		{ID: "k8s-audit", Title: "k8s-audit-*", Name: "Kubernetes audit"},
	}, bp.IndexPatternSpecs())

	specs := bp.DashboardSpecs()
	require.Len(t, specs, 1)
	d := specs[0]
	require.Equal(t, "audit-overview", d.ID)
	require.Equal(t, "now-24h", d.TimeFrom)
	require.Equal(t, []dashboard.ControlSpec{
		{Field: "kubernetes.namespace", Title: "Namespace", Placeholder: "All namespaces"},
	}, d.Controls)

	require.Len(t, d.Panels, 2)
	table := d.Panels[0]
	require.Equal(t, PanelID("audit-overview", 0, "Top users"), table.ID)
	require.Equal(t, lens.Table, table.Kind)
	require.Equal(t, lens.Grid{W: 24, H: 15}, table.Grid)
	require.Equal(t, "k8s-audit", table.DataSource)
	require.Equal(t, lens.ColumnSpec{Label: "User", Field: "user.name", Size: 20}, table.Columns[0])
	require.Equal(t, "response.code >= 403", table.Columns[2].Filter)

	require.Equal(t, "over-time", d.Panels[1].ID)
	require.Equal(t, lens.BarStacked, d.Panels[1].Series)
	require.Equal(t, lens.DateHistogram, d.Panels[1].Columns[0].Agg)
}

func TestPanelID_Stable(t *testing.T) {
	a := PanelID("audit-overview", 0, "Top users")
	require.Equal(t, a, PanelID("audit-overview", 0, "Top users"))
	require.NotEqual(t, a, PanelID("audit-overview", 1, "Top users"))
	require.NotEqual(t, a, PanelID("other", 0, "Top users"))
	require.Len(t, a, 36)
}

func TestRecords(t *testing.T) {
	bp, err := Parse(strings.NewReader(auditBlueprint))
	require.NoError(t, err)

	records, err := bp.Records(dashboard.Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, savedobject.IndexPatternType, records[0].Type)
	require.Equal(t, "k8s-audit", records[0].ID)
	require.Equal(t, "audit-overview", records[1].ID)

	for _, ref := range records[1].References {
		require.Equal(t, "k8s-audit", ref.ID)
	}
	denied := records[1].Panels().Get("0.embeddableConfig.attributes.state.datasourceStates.formBased.layers.layer1.columns.denied")
	require.Equal(t, "response.code >= 403", denied.Get("filter.query").String())
	require.Equal(t, "kuery", denied.Get("filter.language").String())

	again, err := bp.Records(dashboard.Options{})
	require.NoError(t, err)
	require.Equal(t, records[1].Fingerprint(), again[1].Fingerprint())
}

func TestRecords_InvalidPanel(t *testing.T) {
	bp, err := Parse(strings.NewReader(`
dashboards:
  - id: broken
    title: Broken
    panels:
      - kind: metric
        title: Two columns
        grid: {w: 8, h: 8}
        columns:
          - {field: a}
          - {label: Count}
`))
	require.NoError(t, err)

	_, err = bp.Records(dashboard.Options{})
	require.Error(t, err)
	require.True(t, savedobject.IsInvalidConfig(err))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"nothing defined", "dashboards: []\n"},
		{"unknown key", "dashboards:\n  - id: a\n    titel: typo\n"},
		{"bad type", "dashboards:\n  - id: a\n    panels:\n      - grid: {w: wide}\n"},
		{"not yaml", "dashboards: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			require.True(t, savedobject.IsInvalidConfig(err), "expected configuration error, got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bp/audit.yaml", []byte(auditBlueprint), 0o644))

	bp, err := Load(fs, "/bp/audit.yaml")
	require.NoError(t, err)
	require.Len(t, bp.Dashboards, 1)

	_, err = Load(fs, "/bp/missing.yaml")
	require.Error(t, err)
	require.False(t, savedobject.IsInvalidConfig(err))
}
