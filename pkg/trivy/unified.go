package trivy

import (
	"github.com/AnarchicSoul/trivy-dashgen/pkg/dashboard"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/lens"
)

const UnifiedID = "trivy-unified-dashboard"

// tile is one summary count across the top row.
type tile struct {
	id, title, dataset string
}

var unifiedTiles = []tile{
	{"metric-vuln", "Total Vulnerabilities", DatasetVulnerability},
	{"metric-config", "Config Issues", DatasetConfigAudit},
	{"metric-secrets", "Exposed Secrets", DatasetSecret},
	{"metric-rbac", "RBAC Issues", DatasetRBAC},
	{"metric-infra", "Infra Issues", DatasetInfra},
	{"metric-total", "Total Reports", ""},
}

var severities = []struct{ level, label string }{
	{"critical", "Critical"},
	{"high", "High"},
	{"medium", "Medium"},
	{"low", "Low"},
}

// severityTable describes one "top pods by critical" table.
type severityTable struct {
	id, title, dataset string
	grid               lens.Grid
	namespace          bool
}

// Unified returns the single-page dashboard: summary tiles, severity and
// timeline charts, namespace ranking and per-report-type pod tables, with a
// namespace picker on top.
func Unified() dashboard.Spec {
	const tileW, tileH = 8, 8

	var panels []lens.PanelSpec
	for i, t := range unifiedTiles {
		q := ""
		if t.dataset != "" {
			q = datasetQuery(t.dataset)
		}
		panels = append(panels, lens.PanelSpec{
			ID:    t.id,
			Kind:  lens.Metric,
			Title: t.title,
			Grid:  lens.Grid{X: i * tileW, Y: 0, W: tileW, H: tileH},
			Query: q,
		})
	}

	vulns := datasetQuery(DatasetVulnerability)
	panels = append(panels,
		lens.PanelSpec{
			ID: "vuln-severity", Kind: lens.Pie, Title: "Vulnerabilities by Severity",
			Grid:  lens.Grid{X: 0, Y: 8, W: 24, H: 15},
			Query: vulns,
			Columns: []lens.ColumnSpec{
				{Label: "Severity", Field: fieldVulnSeverity},
				{Label: "Count"},
			},
		},
		lens.PanelSpec{
			ID: "timeline", Kind: lens.XY, Title: "Security Issues Over Time",
			Grid: lens.Grid{X: 24, Y: 8, W: 24, H: 15},
			Columns: []lens.ColumnSpec{
				{Agg: lens.DateHistogram},
				{Label: "Report Type", Field: fieldDataset},
				{Label: "Count"},
			},
		},
		lens.PanelSpec{
			ID: "namespaces", Kind: lens.XY, Title: "Top Vulnerable Namespaces",
			Grid:  lens.Grid{X: 0, Y: 23, W: 48, H: 15},
			Query: vulns,
			Columns: []lens.ColumnSpec{
				{Label: "Namespace", Field: fieldNamespace, Size: 15},
				{Label: "Issues"},
			},
		},
	)

	tables := []severityTable{
		{"vuln-table", "Vulnerability Reports - Top Pods by Critical", DatasetVulnerability, lens.Grid{X: 0, Y: 38, W: 48, H: 18}, true},
		{"config-table", "Config Audit Reports - Top Pods by Critical", DatasetConfigAudit, lens.Grid{X: 0, Y: 56, W: 48, H: 15}, true},
		{"secrets-table", "Exposed Secrets Reports - Top Pods by Critical", DatasetSecret, lens.Grid{X: 0, Y: 71, W: 48, H: 15}, true},
		{"rbac-table", "RBAC Assessment Reports - Top Resources by Critical", DatasetRBAC, lens.Grid{X: 0, Y: 86, W: 24, H: 15}, true},
		{"infra-table", "Infrastructure Assessment Reports - Top Resources by Critical", DatasetInfra, lens.Grid{X: 24, Y: 86, W: 24, H: 15}, false},
	}
	for _, t := range tables {
		panels = append(panels, t.panel())
	}

	return dashboard.Spec{
		ID:          UnifiedID,
		Title:       "Trivy - Unified Security Dashboard",
		Description: "All Trivy reports on one page, filterable by namespace",
		Panels:      panels,
		Controls: []dashboard.ControlSpec{{
			ID:          "control_namespace",
			Field:       fieldNamespace,
			Title:       "Namespace",
			Placeholder: "All namespaces",
		}},
	}
}

func (t severityTable) panel() lens.PanelSpec {
	cols := []lens.ColumnSpec{
		{ID: "col_pod", Label: "Pod", Field: fieldPod, Size: 100, OrderBy: "col_critical"},
	}
	if t.namespace {
		cols = append(cols, lens.ColumnSpec{ID: "col_namespace", Label: "Namespace", Field: fieldNamespace, Size: 100, OrderBy: "col_critical"})
	}
	for _, sev := range severities {
		cols = append(cols, lens.ColumnSpec{
			ID:     "col_" + sev.level,
			Label:  sev.label,
			Filter: "tags: " + sev.level + " OR " + fieldVulnSeverity + ": " + sev.level,
		})
	}
	cols = append(cols, lens.ColumnSpec{ID: "col_total", Label: "Total"})

	return lens.PanelSpec{
		ID:      t.id,
		Kind:    lens.Table,
		Title:   t.title,
		Grid:    t.grid,
		Query:   datasetQuery(t.dataset),
		Columns: cols,
	}
}
