package trivy

import (
	"github.com/AnarchicSoul/trivy-dashgen/pkg/dashboard"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/lens"
)

// Overview dashboard ids
const (
	SecurityOverviewID      = "trivy-security-overview"
	VulnerabilityDeepDiveID = "trivy-vulnerability-deep-dive"
	ComplianceID            = "trivy-compliance"
)

// Overview returns the three overview dashboards.
func Overview() []dashboard.Spec {
	return []dashboard.Spec{
		SecurityOverview(),
		VulnerabilityDeepDive(),
		Compliance(),
	}
}

func SecurityOverview() dashboard.Spec {
	vulns := datasetQuery(DatasetVulnerability)
	return dashboard.Spec{
		ID:          SecurityOverviewID,
		Title:       "Trivy Security Overview",
		Description: "Overview dashboard for Trivy security reports",
		Panels: []lens.PanelSpec{
			{
				ID: "panel-1", Kind: lens.Pie, Title: "Vulnerabilities by Severity",
				Grid:  lens.Grid{X: 0, Y: 0, W: 24, H: 15},
				Query: vulns,
				Columns: []lens.ColumnSpec{
					{Label: "Severity", Field: fieldVulnSeverity},
					{Label: "Count"},
				},
			},
			{
				ID: "panel-2", Kind: lens.XY, Title: "Security Issues Over Time",
				Grid:  lens.Grid{X: 24, Y: 0, W: 24, H: 15},
				Query: vulns,
				Columns: []lens.ColumnSpec{
					{Agg: lens.DateHistogram},
					{Label: "Dataset", Field: fieldDataset, Size: 5},
					{Label: "Count"},
				},
			},
			{
				ID: "panel-3", Kind: lens.XY, Title: "Top Vulnerable Namespaces",
				Grid:  lens.Grid{X: 0, Y: 15, W: 48, H: 15},
				Query: vulns,
				Columns: []lens.ColumnSpec{
					{Label: "Namespace", Field: fieldNamespace},
					{Label: "Count"},
				},
			},
		},
	}
}

func VulnerabilityDeepDive() dashboard.Spec {
	vulns := datasetQuery(DatasetVulnerability)
	return dashboard.Spec{
		ID:          VulnerabilityDeepDiveID,
		Title:       "Trivy Vulnerability Deep Dive",
		Description: "Detailed vulnerability analysis with CVE and severity information",
		Panels: []lens.PanelSpec{
			{
				ID: "panel-1", Kind: lens.XY, Title: "Top CVEs",
				Grid:   lens.Grid{X: 0, Y: 0, W: 24, H: 20},
				Query:  vulns,
				Series: lens.BarHorizontal,
				Columns: []lens.ColumnSpec{
					{Label: "Top 15 CVEs", Field: fieldVulnID, Size: 15},
					{Label: "Count"},
				},
			},
			{
				ID: "panel-2", Kind: lens.XY, Title: "Vulnerabilities Over Time by Severity",
				Grid:  lens.Grid{X: 24, Y: 0, W: 24, H: 20},
				Query: vulns,
				Columns: []lens.ColumnSpec{
					{Agg: lens.DateHistogram},
					{Label: "Severity", Field: fieldVulnSeverity},
					{Label: "Count"},
				},
			},
			{
				ID: "panel-3", Kind: lens.XY, Title: "Vulnerable Resources by Namespace",
				Grid:   lens.Grid{X: 0, Y: 20, W: 48, H: 15},
				Query:  vulns,
				Series: lens.BarHorizontalStacked,
				Columns: []lens.ColumnSpec{
					{Label: "Namespace", Field: fieldNamespace},
					{Label: "Severity", Field: fieldVulnSeverity, Size: 5},
					{Label: "Count"},
				},
			},
		},
	}
}

func Compliance() dashboard.Spec {
	return dashboard.Spec{
		ID:          ComplianceID,
		Title:       "Trivy Compliance Dashboard",
		Description: "Compliance dashboard showing config audits, secrets, and infrastructure assessments",
		Panels: []lens.PanelSpec{
			{
				ID: "panel-1", Kind: lens.XY, Title: "All Security Issues Timeline",
				Grid: lens.Grid{X: 0, Y: 0, W: 48, H: 15},
				Columns: []lens.ColumnSpec{
					{Agg: lens.DateHistogram},
					{Label: "Dataset", Field: fieldDataset},
					{Label: "Count"},
				},
			},
			{
				ID: "panel-2", Kind: lens.Pie, Title: "Config Audit by Category",
				Grid:  lens.Grid{X: 0, Y: 15, W: 16, H: 15},
				Query: datasetQuery(DatasetConfigAudit),
				Columns: []lens.ColumnSpec{
					{Label: "Category", Field: fieldMetadataCategory},
					{Label: "Count"},
				},
			},
			{
				ID: "panel-3", Kind: lens.XY, Title: "Config Issues by Severity",
				Grid:   lens.Grid{X: 16, Y: 15, W: 16, H: 15},
				Query:  datasetQuery(DatasetConfigAudit),
				Series: lens.BarStacked,
				Columns: []lens.ColumnSpec{
					{Label: "Severity", Field: fieldEventSeverity, Size: 5},
					{Label: "Count"},
				},
			},
			{
				ID: "panel-4", Kind: lens.Pie, Title: "Exposed Secrets by Type",
				Grid:  lens.Grid{X: 32, Y: 15, W: 16, H: 15},
				Query: datasetQuery(DatasetSecret),
				Columns: []lens.ColumnSpec{
					{Label: "Secret Type", Field: fieldMetadataCategory},
					{Label: "Count"},
				},
			},
		},
	}
}
