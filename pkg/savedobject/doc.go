// Package savedobject models the Kibana saved objects dashgen exports.
//
// Builders produce typed objects (Dashboard, IndexPattern). Before export each
// object is encoded into a Record: a single compact JSON line plus the header
// fields (id, type, references) needed to assemble and check a document.
// Records read back from earlier exports are parsed into the same type and
// written verbatim, so built and re-used objects flow through one path.
//
// An export document is a sequence of record lines followed by one Summary
// line:
//
//	{"attributes":{...},"id":"trivy-reports","type":"index-pattern",...}
//	{"attributes":{...},"id":"trivy-unified-dashboard","type":"dashboard",...}
//	{"excludedObjects":[],"excludedObjectsCount":0,"exportedCount":2,"missingRefCount":0,"missingReferences":[]}
package savedobject
