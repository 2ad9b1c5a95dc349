package export

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// Report is the outcome of verifying an export document.
type Report struct {
	Path     string
	Lines    int
	Records  int
	Summary  *savedobject.Summary
	Problems []string
}

// OK reports whether the document passed every check.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) problemf(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Verify checks an export document for the properties Kibana relies on when
// importing it:
//   - every line is one JSON object and the file ends with a newline
//   - the last line, and only the last line, is the summary
//   - exportedCount equals the number of records
//   - record ids are unique
//   - every reference resolves to a record, or is listed in missingReferences
//   - panelIndex values are unique within each dashboard
//
// The returned error is reserved for read failures; findings go in the report.
func Verify(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read export")
	}

	report := &Report{}
	if len(data) == 0 {
		report.problemf("document is empty")
		return report, nil
	}
	if data[len(data)-1] != '\n' {
		report.problemf("document does not end with a newline")
	}

	lines := bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n"))
	report.Lines = len(lines)

	var records []savedobject.Record
	for i, line := range lines {
		n := i + 1
		if len(bytes.TrimSpace(line)) == 0 {
			report.problemf("line %d: blank line", n)
			continue
		}
		if !utf8.Valid(line) {
			report.problemf("line %d: not valid UTF-8", n)
			continue
		}
		if !gjson.ValidBytes(line) || !gjson.ParseBytes(line).IsObject() {
			report.problemf("line %d: not a JSON object", n)
			continue
		}

		if savedobject.IsSummary(line) {
			if n != len(lines) {
				report.problemf("line %d: summary is not the last line", n)
			}
			if report.Summary != nil {
				report.problemf("line %d: more than one summary", n)
			}
			s, err := savedobject.ParseSummary(line)
			if err != nil {
				report.problemf("line %d: %v", n, err)
				continue
			}
			report.Summary = &s
			continue
		}

		rec, err := savedobject.Parse(line)
		if err != nil {
			report.problemf("line %d: %v", n, err)
			continue
		}
		records = append(records, rec)
	}
	report.Records = len(records)

	if report.Summary == nil {
		report.problemf("no summary line")
	} else {
		checkSummary(report, records)
	}
	checkRecords(report, records)
	return report, nil
}

func checkSummary(report *Report, records []savedobject.Record) {
	s := report.Summary
	if s.ExportedCount != len(records) {
		report.problemf("exportedCount is %d but document has %d records", s.ExportedCount, len(records))
	}
	if s.MissingRefCount != len(s.MissingReferences) {
		report.problemf("missingRefCount is %d but %d missing references are listed", s.MissingRefCount, len(s.MissingReferences))
	}
	if s.ExcludedObjectsCount != len(s.ExcludedObjects) {
		report.problemf("excludedObjectsCount is %d but %d excluded objects are listed", s.ExcludedObjectsCount, len(s.ExcludedObjects))
	}

	listed := make(map[savedobject.MissingReference]bool, len(s.MissingReferences))
	for _, m := range s.MissingReferences {
		listed[m] = true
	}
	for _, m := range MissingReferences(records) {
		if !listed[m] {
			report.problemf("reference %s/%s does not resolve and is not listed as missing", m.Type, m.ID)
		}
	}
}

func checkRecords(report *Report, records []savedobject.Record) {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.ID] {
			report.problemf("duplicate id %q", rec.ID)
		}
		seen[rec.ID] = true

		if rec.Type != savedobject.DashboardType {
			continue
		}
		if t := rec.Get("attributes.panelsJSON").Type; t != gjson.String {
			report.problemf("dashboard %q: panelsJSON is not a string", rec.ID)
			continue
		}
		panels := rec.Panels()
		if !panels.IsArray() {
			report.problemf("dashboard %q: panelsJSON is not a list", rec.ID)
			continue
		}
		indexes := make(map[string]bool)
		for _, p := range panels.Array() {
			idx := p.Get("panelIndex").String()
			if indexes[idx] {
				report.problemf("dashboard %q: duplicate panelIndex %q", rec.ID, idx)
			}
			indexes[idx] = true
		}
	}
}

// VerifyFile verifies the export document at path.
func (im *Importer) VerifyFile(path string) (*Report, error) {
	f, err := im.fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	report, err := Verify(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	report.Path = path
	return report, nil
}
