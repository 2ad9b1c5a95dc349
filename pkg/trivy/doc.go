// Package trivy holds the built-in dashboards for Trivy security reports.
//
// All dashboards query the "trivy-reports" data view (trivy-reports-*,
// time field @timestamp) populated by the Trivy ECS exporter. They are
// grouped into named sets:
//
//	overview     security overview, vulnerability deep dive, compliance
//	unified      one page with summary tiles, charts and pod tables
//	navigation   eleven drill-down tables, one per report type and detail level
//	all          overview and navigation together
//
// Every set begins with the data view so its references resolve within a
// single export.
package trivy
