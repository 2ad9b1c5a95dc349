package trivy

import (
	"github.com/AnarchicSoul/trivy-dashgen/pkg/dashboard"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/lens"
)

// navTable is a navigation dashboard: one full-width table.
type navTable struct {
	id, title, description, query string
	columns                       []lens.ColumnSpec
}

func (n navTable) spec() dashboard.Spec {
	return dashboard.Spec{
		ID:          n.id,
		Title:       n.title,
		Description: n.description,
		Panels: []lens.PanelSpec{{
			ID:      "panel-1",
			Kind:    lens.Table,
			Title:   n.title,
			Grid:    lens.Grid{W: lens.GridColumns, H: 30},
			Query:   n.query,
			Columns: n.columns,
		}},
	}
}

func severityCount(label, query string) lens.ColumnSpec {
	return lens.ColumnSpec{Label: label, Filter: query}
}

// resourceColumns lists resources by namespace with a total and optional
// severity breakdowns.
func resourceColumns(resourceLabel, resourceField string, namespace bool, extra ...lens.ColumnSpec) []lens.ColumnSpec {
	var cols []lens.ColumnSpec
	if namespace {
		cols = append(cols, lens.ColumnSpec{Label: "Namespace", Field: fieldNamespace, Size: 100})
	}
	cols = append(cols,
		lens.ColumnSpec{Label: resourceLabel, Field: resourceField, Size: 100},
		lens.ColumnSpec{Label: "Total"},
	)
	return append(cols, extra...)
}

// detailColumns lists findings by severity and id.
func detailColumns(bucketed ...lens.ColumnSpec) []lens.ColumnSpec {
	return append(bucketed, lens.ColumnSpec{Label: "Count"})
}

var navigation = []navTable{
	{
		id:          "trivy-nav-main",
		title:       "Trivy Reports - Navigation",
		description: "Main navigation - Click on a report type to drill down",
		columns: []lens.ColumnSpec{
			{Label: "Report Type", Field: fieldDataset},
			{Label: "Total Reports"},
			severityCount("Critical", `vulnerability.severity: "CRITICAL" OR check.severity: "CRITICAL"`),
			severityCount("High", `vulnerability.severity: "HIGH" OR check.severity: "HIGH"`),
		},
	},
	{
		id:          "trivy-vuln-pods",
		title:       "Trivy - Vulnerability Reports by Pod",
		description: "Pods with vulnerabilities - Click on a pod to see details",
		query:       datasetQuery(DatasetVulnerability),
		columns: resourceColumns("Pod", fieldPod, true,
			severityCount("Critical", `vulnerability.severity: "CRITICAL"`),
			severityCount("High", `vulnerability.severity: "HIGH"`),
		),
	},
	{
		id:          "trivy-vuln-details",
		title:       "Trivy - Vulnerability Details",
		description: "Detailed vulnerability information",
		query:       datasetQuery(DatasetVulnerability),
		columns: detailColumns(
			lens.ColumnSpec{Label: "Severity", Field: fieldVulnSeverity},
			lens.ColumnSpec{Label: "CVE ID", Field: fieldVulnID, Size: 1000},
			lens.ColumnSpec{Label: "Container", Field: fieldContainer, Size: 100},
			lens.ColumnSpec{Label: "Title", Field: fieldVulnTitle, Size: 100},
		),
	},
	{
		id:          "trivy-config-pods",
		title:       "Trivy - Config Audit by Pod",
		description: "Pods with configuration issues",
		query:       datasetQuery(DatasetConfigAudit),
		columns: resourceColumns("Pod", fieldPod, true,
			severityCount("Critical", `check.severity: "CRITICAL"`),
		),
	},
	{
		id:          "trivy-config-details",
		title:       "Trivy - Config Audit Details",
		description: "Detailed configuration issue information",
		query:       failedChecks(DatasetConfigAudit),
		columns: detailColumns(
			lens.ColumnSpec{Label: "Severity", Field: fieldCheckSeverity},
			lens.ColumnSpec{Label: "Check ID", Field: fieldCheckID, Size: 1000},
			lens.ColumnSpec{Label: "Title", Field: fieldCheckTitle, Size: 100},
			lens.ColumnSpec{Label: "Category", Field: fieldCheckCategory, Size: 100},
		),
	},
	{
		id:          "trivy-secrets-pods",
		title:       "Trivy - Exposed Secrets by Pod",
		description: "Pods with exposed secrets",
		query:       datasetQuery(DatasetSecret),
		columns:     resourceColumns("Pod", fieldPod, true),
	},
	{
		id:          "trivy-secrets-details",
		title:       "Trivy - Exposed Secrets Details",
		description: "Detailed exposed secrets information",
		query:       datasetQuery(DatasetSecret),
		columns: detailColumns(
			lens.ColumnSpec{Label: "Severity", Field: fieldSecretSeverity},
			lens.ColumnSpec{Label: "Rule ID", Field: fieldSecretRule, Size: 1000},
			lens.ColumnSpec{Label: "Category", Field: fieldSecretCategory, Size: 100},
			lens.ColumnSpec{Label: "Title", Field: fieldSecretTitle, Size: 100},
		),
	},
	{
		id:          "trivy-rbac-resources",
		title:       "Trivy - RBAC Assessment",
		description: "RBAC resources with issues",
		query:       datasetQuery(DatasetRBAC),
		columns:     resourceColumns("Resource", fieldResource, true),
	},
	{
		id:          "trivy-rbac-details",
		title:       "Trivy - RBAC Assessment Details",
		description: "Detailed RBAC issue information",
		query:       failedChecks(DatasetRBAC),
		columns: detailColumns(
			lens.ColumnSpec{Label: "Severity", Field: fieldCheckSeverity},
			lens.ColumnSpec{Label: "Check ID", Field: fieldCheckID, Size: 1000},
			lens.ColumnSpec{Label: "Title", Field: fieldCheckTitle, Size: 100},
		),
	},
	{
		id:          "trivy-infra-resources",
		title:       "Trivy - Infrastructure Assessment",
		description: "Infrastructure resources with issues",
		query:       datasetQuery(DatasetInfra),
		columns:     resourceColumns("Resource", fieldResource, false),
	},
	{
		id:          "trivy-infra-details",
		title:       "Trivy - Infrastructure Assessment Details",
		description: "Detailed infrastructure issue information",
		query:       failedChecks(DatasetInfra),
		columns: detailColumns(
			lens.ColumnSpec{Label: "Severity", Field: fieldCheckSeverity},
			lens.ColumnSpec{Label: "Check ID", Field: fieldCheckID, Size: 1000},
			lens.ColumnSpec{Label: "Title", Field: fieldCheckTitle, Size: 100},
		),
	},
}

// Navigation returns the drill-down dashboards, starting with the report
// type index.
func Navigation() []dashboard.Spec {
	specs := make([]dashboard.Spec, len(navigation))
	for i, n := range navigation {
		specs[i] = n.spec()
	}
	return specs
}
