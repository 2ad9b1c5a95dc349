package savedobject

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Summary is the trailing line of an export document.
type Summary struct {
	ExcludedObjects      []ExcludedObject   `json:"excludedObjects"`
	ExcludedObjectsCount int                `json:"excludedObjectsCount"`
	ExportedCount        int                `json:"exportedCount"`
	MissingRefCount      int                `json:"missingRefCount"`
	MissingReferences    []MissingReference `json:"missingReferences"`
}

// ExcludedObject is an object left out of an export.
type ExcludedObject struct {
	ID     string `json:"id"`
	Type   Type   `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// MissingReference is a reference whose target is not in the export.
type MissingReference struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`
}

// NewSummary builds the summary for exported objects. Lists are never nil so
// they encode as [] rather than null.
func NewSummary(exported int, missing []MissingReference) Summary {
	if missing == nil {
		missing = []MissingReference{}
	}
	return Summary{
		ExcludedObjects:   []ExcludedObject{},
		ExportedCount:     exported,
		MissingRefCount:   len(missing),
		MissingReferences: missing,
	}
}

// IsSummary reports whether line is an export summary rather than a record.
func IsSummary(line []byte) bool {
	doc := gjson.ParseBytes(line)
	return doc.IsObject() && doc.Get("exportedCount").Exists() && !doc.Get("type").Exists()
}

// ParseSummary decodes a summary line.
func ParseSummary(line []byte) (Summary, error) {
	var s Summary
	if err := json.Unmarshal(line, &s); err != nil {
		return Summary{}, errors.Wrap(err, "failed to decode export summary")
	}
	return s, nil
}
