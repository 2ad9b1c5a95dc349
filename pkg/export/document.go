package export

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// Options configures how records are assembled into a document.
type Options struct {
	// AllowMissingRefs writes documents whose references point outside the
	// record set. The summary then lists them. Without it such a document is
	// a configuration error.
	AllowMissingRefs bool
}

// Document is a validated record set plus its summary, ready to serialize.
type Document struct {
	Records []savedobject.Record
	Summary savedobject.Summary

	// Duplicates counts records dropped because an identical record with the
	// same id came earlier.
	Duplicates int
}

// Build merges records by id and computes the summary. Order is preserved;
// the first occurrence of an id keeps its position.
func Build(records []savedobject.Record, opts Options) (*Document, error) {
	if len(records) == 0 {
		return nil, savedobject.Invalidf("no saved objects to export")
	}

	doc := &Document{Records: make([]savedobject.Record, 0, len(records))}
	byID := make(map[string]savedobject.Record, len(records))
	for _, rec := range records {
		prev, ok := byID[rec.ID]
		if !ok {
			byID[rec.ID] = rec
			doc.Records = append(doc.Records, rec)
			continue
		}
		if prev.Fingerprint() != rec.Fingerprint() {
			return nil, savedobject.Invalidf("conflicting saved objects with id %q", rec.ID)
		}
		doc.Duplicates++
	}

	missing := MissingReferences(doc.Records)
	if len(missing) > 0 && !opts.AllowMissingRefs {
		ids := make([]string, len(missing))
		for i, m := range missing {
			ids[i] = string(m.Type) + "/" + m.ID
		}
		return nil, savedobject.Invalidf("%d unresolved references: %s", len(missing), strings.Join(ids, ", "))
	}

	doc.Summary = savedobject.NewSummary(len(doc.Records), missing)
	return doc, nil
}

// MissingReferences lists, in first-seen order, the references whose target
// id is not among records.
func MissingReferences(records []savedobject.Record) []savedobject.MissingReference {
	ids := make(map[string]bool, len(records))
	for _, rec := range records {
		ids[rec.ID] = true
	}

	var missing []savedobject.MissingReference
	seen := make(map[savedobject.MissingReference]bool)
	for _, rec := range records {
		for _, ref := range rec.References {
			m := savedobject.MissingReference{ID: ref.ID, Type: ref.Type}
			if ids[ref.ID] || seen[m] {
				continue
			}
			seen[m] = true
			missing = append(missing, m)
		}
	}
	return missing
}

// Bytes serializes the document: one compact line per record, then the
// summary, each terminated by a newline. Nothing is returned on error.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	for _, rec := range d.Records {
		line, err := rec.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	var summary bytes.Buffer
	enc := json.NewEncoder(&summary)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d.Summary); err != nil {
		return nil, errors.Wrap(err, "failed to encode export summary")
	}
	buf.Write(summary.Bytes())
	return buf.Bytes(), nil
}
