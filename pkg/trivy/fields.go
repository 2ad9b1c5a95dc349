package trivy

// Event datasets written by the Trivy ECS exporter.
const (
	DatasetVulnerability = "trivy.vulnerability"
	DatasetConfigAudit   = "trivy.config-audit"
	DatasetSecret        = "trivy.exposed-secret"
	DatasetRBAC          = "trivy.rbac-assessment"
	DatasetInfra         = "trivy.infra-assessment"
)

// Document fields the dashboards aggregate on.
const (
	fieldDataset   = "event.dataset"
	fieldNamespace = "kubernetes.namespace"
	fieldPod       = "kubernetes.pod.name"
	fieldContainer = "kubernetes.container.name"
	fieldResource  = "resource.name"

	fieldVulnID       = "vulnerability.id"
	fieldVulnSeverity = "vulnerability.severity"
	fieldVulnTitle    = "vulnerability.title"

	fieldCheckID       = "check.id"
	fieldCheckSeverity = "check.severity"
	fieldCheckTitle    = "check.title"
	fieldCheckCategory = "check.category"

	fieldSecretRule     = "secret.rule_id"
	fieldSecretSeverity = "secret.severity"
	fieldSecretCategory = "secret.category"
	fieldSecretTitle    = "secret.title"

	fieldEventSeverity    = "event.severity"
	fieldMetadataCategory = "metadata.category"
)

// datasetQuery is the KQL query selecting one dataset.
func datasetQuery(dataset string) string {
	return fieldDataset + `: "` + dataset + `"`
}

// failedChecks narrows an assessment dataset to failing checks.
func failedChecks(dataset string) string {
	return datasetQuery(dataset) + " AND check.success: false"
}
