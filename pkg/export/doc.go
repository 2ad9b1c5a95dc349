// Package export writes, reads and verifies Kibana saved-object export
// documents.
//
// # Format
//
// An export document is newline-delimited JSON: one compact saved object per
// line, followed by exactly one summary line. Every line, including the last,
// ends with "\n":
//
//	{"attributes":{...},"id":"trivy-reports","type":"index-pattern",...}
//	{"attributes":{...},"id":"trivy-security-overview","type":"dashboard",...}
//	{"excludedObjects":[],"excludedObjectsCount":0,"exportedCount":2,"missingRefCount":0,"missingReferences":[]}
//
// Kibana imports such a file through Stack Management > Saved Objects >
// Import, or POST /api/saved_objects/_import.
//
// # Exporting
//
//	exporter := export.NewExporter(afero.NewOsFs(), export.Options{})
//	result, err := exporter.ExportFile("trivy-overview.ndjson", records)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Exported %d objects\n", result.ExportedCount)
//
// Records are merged by id before writing: an identical repeat is dropped, a
// different record reusing an id is a configuration error. References that do
// not resolve within the record set are a configuration error unless
// Options.AllowMissingRefs is set, in which case the summary lists them.
//
// ExportFile is all-or-nothing. The document is built in memory, written to a
// temporary file next to the target and renamed into place.
//
// # Importing
//
// Importer reads records back from earlier exports so they can be combined
// into a new document. Lines are kept verbatim; the old summary is dropped
// and a fresh one is computed on export.
//
//	importer := export.NewImporter(afero.NewOsFs())
//	records, err := importer.ReadFiles("trivy-overview.ndjson", "trivy-navigation.ndjson")
//
// Verify checks an existing document without modifying it.
package export
